package saliency

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"tumorviz/internal/domain/entity"
)

func grayImage(size int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestAdapter_NewInputTensor(t *testing.T) {
	a := NewAdapter(&fakeClassifier{size: 4})
	img := grayImage(4, 255)
	img.SetRGBA(1, 0, color.RGBA{R: 0, G: 51, B: 255, A: 255})

	x, err := a.NewInputTensor(img)
	require.NoError(t, err)
	require.True(t, x.Shape().Eq(tensor.Shape{1, 4, 4, 3}))

	data := x.Data().([]float32)
	require.InDelta(t, 1.0, data[0], 1e-6)
	// пиксель (1, 0) лежит сразу за первым, каналы идут подряд
	require.InDelta(t, 0.0, data[3], 1e-6)
	require.InDelta(t, 0.2, data[4], 1e-6)
	require.InDelta(t, 1.0, data[5], 1e-6)
}

func TestAdapter_NewInputTensorWrongSize(t *testing.T) {
	a := NewAdapter(&fakeClassifier{size: 4})
	_, err := a.NewInputTensor(grayImage(5, 0))
	require.ErrorIs(t, err, entity.ErrModelInference)
}

func TestAdapter_PredictShapeMismatch(t *testing.T) {
	a := NewAdapter(&fakeClassifier{size: 4, probs: []float32{0.25, 0.25, 0.25, 0.25}})
	x := tensor.New(tensor.WithShape(1, 3, 3, 3), tensor.WithBacking(make([]float32, 27)))

	_, err := a.Predict(context.Background(), x)
	require.ErrorIs(t, err, entity.ErrModelInference)
}

func TestAdapter_PredictWrongOutputLength(t *testing.T) {
	a := NewAdapter(&fakeClassifier{size: 4, probs: []float32{1}})
	x, err := a.NewInputTensor(grayImage(4, 0))
	require.NoError(t, err)

	_, err = a.Predict(context.Background(), x)
	require.ErrorIs(t, err, entity.ErrModelInference)
}

func TestAdapter_PredictBackendError(t *testing.T) {
	a := NewAdapter(&fakeClassifier{size: 4, err: errBackend})
	x, err := a.NewInputTensor(grayImage(4, 0))
	require.NoError(t, err)

	_, err = a.Predict(context.Background(), x)
	require.ErrorIs(t, err, entity.ErrModelInference)
	require.Contains(t, err.Error(), "backend exploded")
}

func TestAdapter_Predict(t *testing.T) {
	probs := []float32{0.1, 0.7, 0.1, 0.1}
	a := NewAdapter(&fakeClassifier{size: 4, probs: probs})
	x, err := a.NewInputTensor(grayImage(4, 0))
	require.NoError(t, err)

	got, err := a.Predict(context.Background(), x)
	require.NoError(t, err)
	require.Equal(t, probs, got)
}

func TestAdapter_ForwardGradientNil(t *testing.T) {
	a := NewAdapter(&fakeClassifier{size: 4})
	x, err := a.NewInputTensor(grayImage(4, 0))
	require.NoError(t, err)

	_, err = a.ForwardGradient(context.Background(), x, 0)
	require.ErrorIs(t, err, entity.ErrAttributionUnavailable)
}

func TestAdapter_ForwardGradientClassOutOfRange(t *testing.T) {
	a := NewAdapter(&fakeClassifier{size: 4, gradient: constantGradient(1)})
	x, err := a.NewInputTensor(grayImage(4, 0))
	require.NoError(t, err)

	_, err = a.ForwardGradient(context.Background(), x, 4)
	require.ErrorIs(t, err, entity.ErrModelInference)
	_, err = a.ForwardGradient(context.Background(), x, -1)
	require.ErrorIs(t, err, entity.ErrModelInference)
}

func TestAdapter_ForwardGradientShape(t *testing.T) {
	a := NewAdapter(&fakeClassifier{size: 4, gradient: constantGradient(2)})
	x, err := a.NewInputTensor(grayImage(4, 0))
	require.NoError(t, err)

	g, err := a.ForwardGradient(context.Background(), x, 1)
	require.NoError(t, err)
	require.True(t, g.Shape().Eq(x.Shape()))
}
