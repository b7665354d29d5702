package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"gorgonia.org/tensor"

	"tumorviz/internal/domain/entity"
	"tumorviz/internal/domain/port"
	"tumorviz/internal/metrics"
	"tumorviz/internal/saliency"
)

// SaliencyOptions параметры маски и порога.
type SaliencyOptions struct {
	Margin     int
	Percentile float64
	Degenerate saliency.DegeneratePolicy
}

// DefaultSaliencyOptions отступ 10 пикселей, порог по 80-му перцентилю.
func DefaultSaliencyOptions() SaliencyOptions {
	return SaliencyOptions{
		Margin:     saliency.DefaultMargin,
		Percentile: saliency.DefaultPercentile,
		Degenerate: saliency.DegenerateKeep,
	}
}

// SaliencyRequest всё, что нужно одному прогону конвейера.
type SaliencyRequest struct {
	Model      *saliency.Adapter
	Image      image.Image   // снимок, уже приведённый к входному размеру модели
	Tensor     *tensor.Dense // тот же снимок в виде батча (1, H, W, 3)
	ClassIndex int
	Upload     entity.Upload
}

// SaliencyService строит карту значимости, накладывает её на снимок
// и сохраняет результат.
type SaliencyService struct {
	renderer port.HeatmapRenderer
	store    port.ArtifactStore
	metrics  *metrics.Metrics
	opts     SaliencyOptions
}

// NewSaliencyService создаёт конвейер. metrics может быть nil.
func NewSaliencyService(renderer port.HeatmapRenderer, store port.ArtifactStore, m *metrics.Metrics, opts SaliencyOptions) *SaliencyService {
	return &SaliencyService{
		renderer: renderer,
		store:    store,
		metrics:  m,
		opts:     opts,
	}
}

// Run выполняет градиент → маску → нормализацию с порогом → раскраску → сохранение.
// Повторов нет: первая ошибка прерывает прогон.
func (s *SaliencyService) Run(ctx context.Context, req SaliencyRequest) (res *entity.SaliencyResult, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRun(start, err) }()

	size := req.Model.InputSize()

	attribution, err := saliency.Attribute(ctx, req.Model, req.Tensor, req.ClassIndex, size)
	if err != nil {
		return nil, fmt.Errorf("attribute: %w", err)
	}

	mask, err := saliency.BuildMask(size.X, size.Y, s.opts.Margin)
	if err != nil {
		return nil, fmt.Errorf("build mask: %w", err)
	}

	if err := saliency.NormalizeAndThreshold(attribution, mask, s.opts.Percentile, s.opts.Degenerate); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	hotspot := saliency.FindHotspot(attribution)

	heat, err := s.renderer.Render(attribution, size)
	if err != nil {
		return nil, fmt.Errorf("render heatmap: %w", err)
	}

	composite, err := saliency.Composite(heat, req.Image)
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}

	uploadPath, err := s.store.SaveUpload(ctx, req.Upload.Filename, req.Upload.Data)
	if err != nil {
		return nil, persistenceError("save upload", err)
	}
	compositePath, err := s.store.SaveComposite(ctx, req.Upload.Filename, composite)
	if err != nil {
		return nil, persistenceError("save composite", err)
	}

	return &entity.SaliencyResult{
		Composite:     composite,
		UploadPath:    uploadPath,
		CompositePath: compositePath,
		Hotspot:       hotspot,
	}, nil
}

func persistenceError(op string, err error) error {
	if errors.Is(err, entity.ErrPersistence) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, entity.ErrPersistence, err)
}
