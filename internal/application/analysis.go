package app

import (
	"context"
	"fmt"
	"log"
	"sort"

	"tumorviz/internal/domain/entity"
	"tumorviz/internal/domain/port"
	"tumorviz/internal/metrics"
	"tumorviz/internal/saliency"
)

// AnalysisService классифицирует снимок, строит карту значимости
// и запрашивает текстовое пояснение.
type AnalysisService struct {
	models       map[string]port.Classifier
	defaultModel string
	saliency     *SaliencyService
	explainer    port.Explainer
	metrics      *metrics.Metrics
}

// NewAnalysisService создаёт сервис. explainer и metrics могут быть nil.
func NewAnalysisService(models map[string]port.Classifier, defaultModel string, pipeline *SaliencyService, explainer port.Explainer, m *metrics.Metrics) *AnalysisService {
	return &AnalysisService{
		models:       models,
		defaultModel: defaultModel,
		saliency:     pipeline,
		explainer:    explainer,
		metrics:      m,
	}
}

// Models возвращает имена доступных классификаторов.
func (s *AnalysisService) Models() []string {
	names := make([]string, 0, len(s.models))
	for name := range s.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasModel сообщает, загружен ли классификатор с таким именем.
func (s *AnalysisService) HasModel(name string) bool {
	_, ok := s.models[name]
	return ok
}

// DefaultModel имя классификатора по умолчанию.
func (s *AnalysisService) DefaultModel() string {
	return s.defaultModel
}

// Analyze прогоняет загруженный снимок через выбранный классификатор.
// Ошибка пояснения не прерывает анализ: текст остаётся пустым.
func (s *AnalysisService) Analyze(ctx context.Context, modelName string, upload entity.Upload) (*entity.AnalysisResult, error) {
	if modelName == "" {
		modelName = s.defaultModel
	}
	model, ok := s.models[modelName]
	if !ok {
		return nil, fmt.Errorf("%w %q", entity.ErrUnknownModel, modelName)
	}

	adapter := saliency.NewAdapter(model)
	img, err := saliency.DecodeInputImage(upload.Data, adapter.InputSize())
	if err != nil {
		return nil, err
	}
	x, err := adapter.NewInputTensor(img)
	if err != nil {
		return nil, err
	}

	probs, err := adapter.Predict(ctx, x)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	prediction := entity.NewPrediction(adapter.Spec().Classes, probs)
	s.metrics.ObservePrediction(modelName, prediction.Label())

	sal, err := s.saliency.Run(ctx, SaliencyRequest{
		Model:      adapter,
		Image:      img,
		Tensor:     x,
		ClassIndex: prediction.ClassIndex,
		Upload:     upload,
	})
	if err != nil {
		return nil, err
	}

	result := &entity.AnalysisResult{
		Model:      modelName,
		Prediction: prediction,
		Saliency:   sal,
	}

	if s.explainer != nil {
		text, err := s.explainer.Explain(ctx, sal.CompositePath, prediction.Label(), prediction.Confidence())
		if err != nil {
			log.Printf("Error explaining %s: %v", upload.Filename, err)
		} else {
			result.Explanation = text
		}
	}

	return result, nil
}
