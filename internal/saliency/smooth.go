package saliency

import (
	"math"

	"tumorviz/internal/domain/entity"
)

// DefaultKernelSize сторона ядра сглаживания.
const DefaultKernelSize = 11

// GaussianKernel возвращает нормированное одномерное ядро Гаусса.
// При sigma <= 0 sigma выводится из размера ядра так же, как в OpenCV.
func GaussianKernel(size int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}

	kernel := make([]float64, size)
	half := float64(size-1) / 2
	sum := 0.0
	for i := range kernel {
		d := float64(i) - half
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianBlur сглаживает карту на месте раздельным ядром size×size.
// Граница отражается без повтора крайнего пикселя (BORDER_REFLECT_101).
func GaussianBlur(m *entity.AttributionMap, size int, sigma float64) {
	kernel := GaussianKernel(size, sigma)
	half := size / 2
	tmp := make([]float64, len(m.Values))

	for y := 0; y < m.Height; y++ {
		row := y * m.Width
		for x := 0; x < m.Width; x++ {
			acc := 0.0
			for k, w := range kernel {
				acc += w * m.Values[row+reflect101(x+k-half, m.Width)]
			}
			tmp[row+x] = acc
		}
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			acc := 0.0
			for k, w := range kernel {
				acc += w * tmp[reflect101(y+k-half, m.Height)*m.Width+x]
			}
			m.Values[y*m.Width+x] = acc
		}
	}
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}
