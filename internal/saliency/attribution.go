package saliency

import (
	"context"
	"fmt"
	"image"
	"math"

	"gorgonia.org/tensor"

	"tumorviz/internal/domain/entity"
)

// Attribute считает карту значимости обычным градиентом (vanilla gradient):
// один обратный проход, затем max по каналам от |градиента| и приведение к size.
func Attribute(ctx context.Context, a *Adapter, x *tensor.Dense, classIndex int, size image.Point) (*entity.AttributionMap, error) {
	grad, err := a.ForwardGradient(ctx, x, classIndex)
	if err != nil {
		return nil, err
	}

	shape := grad.Shape()
	h, w, c := shape[1], shape[2], shape[3]
	data := grad.Data().([]float32)

	raw := entity.NewAttributionMap(w, h)
	for i := 0; i < w*h; i++ {
		best := 0.0
		for k := 0; k < c; k++ {
			v := math.Abs(float64(data[i*c+k]))
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite gradient at pixel %d", entity.ErrAttributionUnavailable, i)
			}
			if v > best {
				best = v
			}
		}
		raw.Values[i] = best
	}

	return ResizeMap(raw, size), nil
}

// ResizeMap билинейно масштабирует карту к size, совмещая центры пикселей.
// При совпадении размеров возвращает исходную карту.
func ResizeMap(src *entity.AttributionMap, size image.Point) *entity.AttributionMap {
	if src.Width == size.X && src.Height == size.Y {
		return src
	}

	dst := entity.NewAttributionMap(size.X, size.Y)
	scaleX := float64(src.Width) / float64(size.X)
	scaleY := float64(src.Height) / float64(size.Y)

	for y := 0; y < size.Y; y++ {
		y0, y1, wy := sampleAxis(y, scaleY, src.Height)
		for x := 0; x < size.X; x++ {
			x0, x1, wx := sampleAxis(x, scaleX, src.Width)
			top := (1-wx)*src.At(x0, y0) + wx*src.At(x1, y0)
			bottom := (1-wx)*src.At(x0, y1) + wx*src.At(x1, y1)
			dst.Set(x, y, (1-wy)*top+wy*bottom)
		}
	}
	return dst
}

// sampleAxis возвращает два соседних индекса исходной оси и вес второго.
func sampleAxis(i int, scale float64, n int) (int, int, float64) {
	f := (float64(i)+0.5)*scale - 0.5
	if f <= 0 {
		return 0, 0, 0
	}
	i0 := int(f)
	if i0 >= n-1 {
		return n - 1, n - 1, 0
	}
	return i0, i0 + 1, f - float64(i0)
}
