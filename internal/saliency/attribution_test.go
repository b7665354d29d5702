package saliency

import (
	"context"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"tumorviz/internal/domain/entity"
)

func TestAttribute_AbsMaxOverChannels(t *testing.T) {
	grad := func(input []float32, _ int) []float32 {
		out := make([]float32, len(input))
		// пиксель 0: (-3, 1, 2) → 3; пиксель 1: (0.5, -0.25, 0) → 0.5
		copy(out, []float32{-3, 1, 2, 0.5, -0.25, 0})
		return out
	}
	a := NewAdapter(&fakeClassifier{size: 2, gradient: grad})
	x, err := a.NewInputTensor(grayImage(2, 10))
	require.NoError(t, err)

	m, err := Attribute(context.Background(), a, x, 0, image.Pt(2, 2))
	require.NoError(t, err)
	require.Equal(t, []float64{3, 0.5, 0, 0}, m.Values)
}

func TestAttribute_Unavailable(t *testing.T) {
	a := NewAdapter(&fakeClassifier{size: 4})
	x, err := a.NewInputTensor(grayImage(4, 10))
	require.NoError(t, err)

	_, err = Attribute(context.Background(), a, x, 0, image.Pt(4, 4))
	require.ErrorIs(t, err, entity.ErrAttributionUnavailable)
}

func TestAttribute_NonFinite(t *testing.T) {
	grad := func(input []float32, _ int) []float32 {
		out := make([]float32, len(input))
		out[5] = float32(math.NaN())
		return out
	}
	a := NewAdapter(&fakeClassifier{size: 4, gradient: grad})
	x, err := a.NewInputTensor(grayImage(4, 10))
	require.NoError(t, err)

	_, err = Attribute(context.Background(), a, x, 0, image.Pt(4, 4))
	require.ErrorIs(t, err, entity.ErrAttributionUnavailable)
}

func TestAttribute_ResizesToTarget(t *testing.T) {
	a := NewAdapter(&fakeClassifier{size: 8, gradient: constantGradient(-2)})
	x, err := a.NewInputTensor(grayImage(8, 10))
	require.NoError(t, err)

	m, err := Attribute(context.Background(), a, x, 3, image.Pt(16, 12))
	require.NoError(t, err)
	require.Equal(t, 16, m.Width)
	require.Equal(t, 12, m.Height)
	for _, v := range m.Values {
		require.InDelta(t, 2.0, v, 1e-12)
	}
}

func TestResizeMap_Bilinear(t *testing.T) {
	src := entity.NewAttributionMap(2, 1)
	src.Values = []float64{0, 1}

	dst := ResizeMap(src, image.Pt(4, 1))
	// центры пикселей: -0.25 → 0, 0.25, 0.75, 1.25 → 1
	require.InDeltaSlice(t, []float64{0, 0.25, 0.75, 1}, dst.Values, 1e-12)
}

func TestResizeMap_SameSize(t *testing.T) {
	src := entity.NewAttributionMap(3, 3)
	require.Same(t, src, ResizeMap(src, image.Pt(3, 3)))
}
