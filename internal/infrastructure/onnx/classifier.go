// Package onnx запускает классификатор снимков через ONNX Runtime.
package onnx

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"tumorviz/internal/domain/entity"
	"tumorviz/internal/domain/port"
)

var (
	envOnce sync.Once
	envErr  error
)

// InitEnvironment загружает библиотеку ONNX Runtime один раз на процесс.
func InitEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			envErr = fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	})
	return envErr
}

// DestroyEnvironment освобождает ONNX Runtime после закрытия всех моделей.
func DestroyEnvironment() error {
	return ort.DestroyEnvironment()
}

// Classifier ONNX модель с заранее выделенными тензорами.
// Вызовы сериализуются: тензоры общие для всех запросов.
type Classifier struct {
	mu   sync.Mutex
	meta Metadata

	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]

	gradSession *ort.AdvancedSession
	classMask   *ort.Tensor[float32]
	gradOutput  *ort.Tensor[float32]
}

// NewClassifier загружает модель по файлу метаданных.
// Окружение должно быть инициализировано через InitEnvironment.
func NewClassifier(metadataPath string) (*Classifier, error) {
	meta, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	c := &Classifier{meta: *meta}
	if err := c.open(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Classifier) open() error {
	var err error
	c.input, err = ort.NewEmptyTensor[float32](ort.NewShape(c.meta.InputShape...))
	if err != nil {
		return fmt.Errorf("failed to create input tensor: %w", err)
	}
	c.output, err = ort.NewEmptyTensor[float32](ort.NewShape(c.meta.OutputShape...))
	if err != nil {
		return fmt.Errorf("failed to create output tensor: %w", err)
	}

	c.session, err = ort.NewAdvancedSession(c.meta.Model,
		[]string{c.meta.InputName}, []string{c.meta.OutputName},
		[]ort.ArbitraryTensor{c.input}, []ort.ArbitraryTensor{c.output},
		nil)
	if err != nil {
		return fmt.Errorf("failed to create ONNX session: %w", err)
	}

	g := c.meta.Gradient
	if g == nil {
		return nil
	}

	c.classMask, err = ort.NewEmptyTensor[float32](ort.NewShape(c.meta.OutputShape...))
	if err != nil {
		return fmt.Errorf("failed to create class mask tensor: %w", err)
	}
	c.gradOutput, err = ort.NewEmptyTensor[float32](ort.NewShape(c.meta.InputShape...))
	if err != nil {
		return fmt.Errorf("failed to create gradient tensor: %w", err)
	}

	c.gradSession, err = ort.NewAdvancedSession(g.Model,
		[]string{c.meta.InputName, g.ClassInput}, []string{g.Output},
		[]ort.ArbitraryTensor{c.input, c.classMask}, []ort.ArbitraryTensor{c.gradOutput},
		nil)
	if err != nil {
		return fmt.Errorf("failed to create ONNX gradient session: %w", err)
	}
	return nil
}

// Spec возвращает входной размер и метки классов.
func (c *Classifier) Spec() entity.ModelSpec {
	return entity.ModelSpec{
		Name:      c.meta.Name,
		InputSize: c.meta.ImageSize,
		Classes:   c.meta.Classes,
	}
}

// Predict запускает модель и возвращает вероятности классов.
func (c *Classifier) Predict(ctx context.Context, input []float32) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(input); err != nil {
		return nil, err
	}
	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := make([]float32, len(c.meta.Classes))
	copy(out, c.output.GetData())
	return out, nil
}

// InputGradient запускает граф градиента. Без графа возвращает nil:
// выход модели в этой сборке недифференцируем по входу.
func (c *Classifier) InputGradient(ctx context.Context, input []float32, classIndex int) ([]float32, error) {
	if c.gradSession == nil {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.load(input); err != nil {
		return nil, err
	}
	mask := c.classMask.GetData()
	for i := range mask {
		mask[i] = 0
	}
	mask[classIndex] = 1

	if err := c.gradSession.Run(); err != nil {
		return nil, fmt.Errorf("gradient inference failed: %w", err)
	}

	out := make([]float32, len(input))
	copy(out, c.gradOutput.GetData())
	return out, nil
}

func (c *Classifier) load(input []float32) error {
	dst := c.input.GetData()
	if len(input) != len(dst) {
		return fmt.Errorf("input has %d values, model %s expects %d", len(input), c.meta.Name, len(dst))
	}
	copy(dst, input)
	return nil
}

// Close освобождает сессии и тензоры.
func (c *Classifier) Close() {
	if c.gradSession != nil {
		c.gradSession.Destroy()
	}
	if c.session != nil {
		c.session.Destroy()
	}
	for _, t := range []*ort.Tensor[float32]{c.input, c.output, c.classMask, c.gradOutput} {
		if t != nil {
			t.Destroy()
		}
	}
}

var _ port.Classifier = (*Classifier)(nil)
