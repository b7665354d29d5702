//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"image"
	"image/draw"

	"gocv.io/x/gocv"

	"tumorviz/internal/domain/entity"
	"tumorviz/internal/domain/port"
	"tumorviz/internal/saliency"
)

// Available сообщает, собран ли пакет с OpenCV.
const Available = true

// GoCVRenderer сглаживает и раскрашивает карту средствами OpenCV.
type GoCVRenderer struct {
	KernelSize int
	Sigma      float64 // при 0 OpenCV выводит sigma из размера ядра
}

// NewGoCVRenderer создаёт рендерер с ядром 11×11.
func NewGoCVRenderer() *GoCVRenderer {
	return &GoCVRenderer{KernelSize: saliency.DefaultKernelSize}
}

// Render размывает карту, переводит в палитру jet и приводит к size.
// Сглаженные значения записываются обратно в карту.
func (r *GoCVRenderer) Render(m *entity.AttributionMap, size image.Point) (*image.RGBA, error) {
	src := gocv.NewMatWithSize(m.Height, m.Width, gocv.MatTypeCV32F)
	defer src.Close()
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			src.SetFloatAt(y, x, float32(m.At(x, y)))
		}
	}

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(src, &blur, image.Pt(r.KernelSize, r.KernelSize), r.Sigma, r.Sigma, gocv.BorderReflect101)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			m.Set(x, y, float64(blur.GetFloatAt(y, x)))
		}
	}

	// ConvertTo насыщает значения в [0, 255].
	scaled := gocv.NewMat()
	defer scaled.Close()
	blur.ConvertToWithParams(&scaled, gocv.MatTypeCV8U, 255, 0)

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(scaled, &colored, gocv.ColormapJet)

	if colored.Cols() != size.X || colored.Rows() != size.Y {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(colored, &resized, size, 0, 0, gocv.InterpolationLinear)
		return toRGBA(resized)
	}
	return toRGBA(colored)
}

// toRGBA переводит BGR матрицу в RGBA изображение.
func toRGBA(mat gocv.Mat) (*image.RGBA, error) {
	if mat.Empty() {
		return nil, errors.New("empty heatmap")
	}
	// ToImage сам меняет порядок каналов BGR → RGB.
	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, nil
}

var _ port.HeatmapRenderer = (*GoCVRenderer)(nil)
