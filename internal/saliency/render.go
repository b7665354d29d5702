package saliency

import (
	"image"
	"math"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"tumorviz/internal/domain/entity"
	"tumorviz/internal/domain/port"
)

// Renderer сглаживает и раскрашивает карту без OpenCV.
type Renderer struct {
	KernelSize int
	Sigma      float64 // при 0 выводится из KernelSize
}

// NewRenderer создаёт рендерер с ядром 11×11.
func NewRenderer() *Renderer {
	return &Renderer{KernelSize: DefaultKernelSize}
}

// Render сглаживает карту (на месте), переводит её в палитру jet
// и приводит результат к size.
func (r *Renderer) Render(m *entity.AttributionMap, size image.Point) (*image.RGBA, error) {
	GaussianBlur(m, r.KernelSize, r.Sigma)

	heat := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := math.Min(math.Max(m.At(x, y), 0), 1)
			heat.SetRGBA(x, y, Jet(uint8(255*v)))
		}
	}

	return FitSize(heat, size), nil
}

// FitSize масштабирует изображение к size, если размеры отличаются.
func FitSize(img *image.RGBA, size image.Point) *image.RGBA {
	if img.Bounds().Size() == size {
		return img
	}

	resized := resize.Resize(uint(size.X), uint(size.Y), img, resize.Bilinear)
	out := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(out, out.Bounds(), resized, resized.Bounds().Min, draw.Src)
	return out
}

var _ port.HeatmapRenderer = (*Renderer)(nil)
