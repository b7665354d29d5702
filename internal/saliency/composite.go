package saliency

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"tumorviz/internal/domain/entity"
)

// Веса наложения тепловой карты на снимок.
const (
	HeatmapWeight = 0.7
	ImageWeight   = 0.3
)

// Composite смешивает тепловую карту со снимком: 0.7*heat + 0.3*original,
// каждый канал ограничен [0, 255].
func Composite(heat, original image.Image) (*image.RGBA, error) {
	hb, ob := heat.Bounds(), original.Bounds()
	if hb.Size() != ob.Size() {
		return nil, fmt.Errorf("%w: heatmap %v, image %v", entity.ErrInvalidImageDimensions, hb.Size(), ob.Size())
	}

	out := image.NewRGBA(image.Rect(0, 0, hb.Dx(), hb.Dy()))
	for y := 0; y < hb.Dy(); y++ {
		for x := 0; x < hb.Dx(); x++ {
			hr, hg, hbl, _ := heat.At(hb.Min.X+x, hb.Min.Y+y).RGBA()
			or, og, obl, _ := original.At(ob.Min.X+x, ob.Min.Y+y).RGBA()
			out.SetRGBA(x, y, color.RGBA{
				R: blend(hr, or),
				G: blend(hg, og),
				B: blend(hbl, obl),
				A: 255,
			})
		}
	}
	return out, nil
}

func blend(h, o uint32) uint8 {
	v := HeatmapWeight*float64(h>>8) + ImageWeight*float64(o>>8)
	return uint8(math.Min(math.Max(v, 0), 255))
}
