//go:build !gocv
// +build !gocv

package vision

import (
	"errors"
	"image"

	"tumorviz/internal/domain/entity"
	"tumorviz/internal/saliency"
)

// Available сообщает, собран ли пакет с OpenCV.
const Available = false

type GoCVRenderer struct {
	KernelSize int
	Sigma      float64
}

// NewGoCVRenderer создаёт рендерер-заглушку (без OpenCV).
func NewGoCVRenderer() *GoCVRenderer {
	return &GoCVRenderer{KernelSize: saliency.DefaultKernelSize}
}

// Render возвращает ошибку, если сборка без тега gocv.
func (r *GoCVRenderer) Render(*entity.AttributionMap, image.Point) (*image.RGBA, error) {
	return nil, errors.New("gocv build tag is not enabled")
}
