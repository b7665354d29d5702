package saliency

import (
	"fmt"
	"image"

	"tumorviz/internal/domain/entity"
)

// DefaultMargin отступ круга маски от края кадра в пикселях.
const DefaultMargin = 10

// BuildMask строит круглую маску мозга по размерам кадра, без учёта содержимого.
// Центр (W/2, H/2), радиус min(центр) - margin.
func BuildMask(width, height, margin int) (*entity.ROIMask, error) {
	center := image.Pt(width/2, height/2)
	radius := min(center.X, center.Y) - margin
	if radius <= 0 {
		return nil, fmt.Errorf("%w: %dx%d image leaves mask radius %d with margin %d",
			entity.ErrInvalidImageDimensions, width, height, radius, margin)
	}

	mask := &entity.ROIMask{
		Width:  width,
		Height: height,
		Center: center,
		Radius: radius,
		Inside: make([]bool, width*height),
	}

	r2 := radius * radius
	for y := 0; y < height; y++ {
		dy := y - center.Y
		for x := 0; x < width; x++ {
			dx := x - center.X
			mask.Inside[y*width+x] = dx*dx+dy*dy <= r2
		}
	}
	return mask, nil
}
