// Package saliency строит карту значимости пикселей для предсказанного класса
// и накладывает её на исходный снимок.
package saliency

import (
	"context"
	"fmt"
	"image"

	"gorgonia.org/tensor"

	"tumorviz/internal/domain/entity"
	"tumorviz/internal/domain/port"
)

// Channels число цветовых каналов входного тензора.
const Channels = 3

// Adapter даёт конвейеру единый интерфейс к классификатору:
// вероятности классов и градиент выхода по входу.
type Adapter struct {
	model port.Classifier
	spec  entity.ModelSpec
}

// NewAdapter оборачивает классификатор. Веса остаются у классификатора.
func NewAdapter(model port.Classifier) *Adapter {
	return &Adapter{
		model: model,
		spec:  model.Spec(),
	}
}

// Spec возвращает описание обёрнутой модели.
func (a *Adapter) Spec() entity.ModelSpec {
	return a.spec
}

// InputSize размер изображения, который ожидает модель.
func (a *Adapter) InputSize() image.Point {
	return image.Pt(a.spec.InputSize, a.spec.InputSize)
}

// InputShape форма входного тензора (1, H, W, 3).
func (a *Adapter) InputShape() tensor.Shape {
	return tensor.Shape{1, a.spec.InputSize, a.spec.InputSize, Channels}
}

// NewInputTensor превращает снимок в батч из одного элемента со значениями в [0, 1].
func (a *Adapter) NewInputTensor(img image.Image) (*tensor.Dense, error) {
	b := img.Bounds()
	if b.Size() != a.InputSize() {
		return nil, fmt.Errorf("%w: image is %dx%d, model expects %dx%d",
			entity.ErrModelInference, b.Dx(), b.Dy(), a.spec.InputSize, a.spec.InputSize)
	}

	data := make([]float32, 0, b.Dx()*b.Dy()*Channels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			data = append(data,
				float32(r>>8)/255.0,
				float32(g>>8)/255.0,
				float32(bl>>8)/255.0,
			)
		}
	}

	return tensor.New(tensor.WithShape(a.InputShape()...), tensor.WithBacking(data)), nil
}

// Predict возвращает вероятности классов для батча из одного снимка.
func (a *Adapter) Predict(ctx context.Context, x *tensor.Dense) ([]float32, error) {
	data, err := a.checkInput(x)
	if err != nil {
		return nil, err
	}

	probs, err := a.model.Predict(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrModelInference, err)
	}
	if len(probs) != len(a.spec.Classes) {
		return nil, fmt.Errorf("%w: got %d outputs for %d classes",
			entity.ErrModelInference, len(probs), len(a.spec.Classes))
	}

	return probs, nil
}

// ForwardGradient возвращает градиент выхода classIndex по входному тензору
// той же формы, что и вход.
func (a *Adapter) ForwardGradient(ctx context.Context, x *tensor.Dense, classIndex int) (*tensor.Dense, error) {
	data, err := a.checkInput(x)
	if err != nil {
		return nil, err
	}
	if classIndex < 0 || classIndex >= len(a.spec.Classes) {
		return nil, fmt.Errorf("%w: class index %d out of range [0, %d)",
			entity.ErrModelInference, classIndex, len(a.spec.Classes))
	}

	grad, err := a.model.InputGradient(ctx, data, classIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrModelInference, err)
	}
	if grad == nil {
		return nil, fmt.Errorf("%w: no gradient for class %d", entity.ErrAttributionUnavailable, classIndex)
	}
	if len(grad) != len(data) {
		return nil, fmt.Errorf("%w: gradient has %d values, input has %d",
			entity.ErrAttributionUnavailable, len(grad), len(data))
	}

	return tensor.New(tensor.WithShape(x.Shape().Clone()...), tensor.WithBacking(grad)), nil
}

func (a *Adapter) checkInput(x *tensor.Dense) ([]float32, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil input tensor", entity.ErrModelInference)
	}
	if !x.Shape().Eq(a.InputShape()) {
		return nil, fmt.Errorf("%w: input shape %v, model %s expects %v",
			entity.ErrModelInference, x.Shape(), a.spec.Name, a.InputShape())
	}
	data, ok := x.Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("%w: input tensor is %v, want float32", entity.ErrModelInference, x.Dtype())
	}
	return data, nil
}
