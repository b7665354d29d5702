package saliency

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"tumorviz/internal/domain/entity"
)

// DefaultPercentile перцентиль порога: остаются ~20% самых значимых пикселей маски.
const DefaultPercentile = 80

// DegeneratePolicy что делать, если все значения внутри маски равны.
type DegeneratePolicy int

const (
	DegenerateKeep DegeneratePolicy = iota // оставить значения без масштабирования
	DegenerateZero                         // обнулить маску
	DegenerateOne                          // выставить маску в 1
)

func (p DegeneratePolicy) String() string {
	switch p {
	case DegenerateKeep:
		return "keep"
	case DegenerateZero:
		return "zero"
	case DegenerateOne:
		return "one"
	default:
		return "unknown"
	}
}

// ParseDegeneratePolicy разбирает имя политики из конфигурации.
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch s {
	case "", "keep":
		return DegenerateKeep, nil
	case "zero":
		return DegenerateZero, nil
	case "one":
		return DegenerateOne, nil
	default:
		return DegenerateKeep, fmt.Errorf("unknown degenerate policy %q", s)
	}
}

// NormalizeAndThreshold изменяет карту на месте: обнуляет всё вне маски,
// приводит значения маски к [0, 1] и обнуляет пиксели ниже перцентиля,
// посчитанного только по маске. Вне маски после вызова всегда 0.
func NormalizeAndThreshold(m *entity.AttributionMap, mask *entity.ROIMask, percentile float64, policy DegeneratePolicy) error {
	if m.Width != mask.Width || m.Height != mask.Height {
		return fmt.Errorf("%w: map %dx%d, mask %dx%d",
			entity.ErrInvalidImageDimensions, m.Width, m.Height, mask.Width, mask.Height)
	}
	if percentile < 0 || percentile > 100 {
		return fmt.Errorf("percentile %v out of range [0, 100]", percentile)
	}

	masked := make([]float64, 0, len(m.Values))
	for i, in := range mask.Inside {
		if !in {
			m.Values[i] = 0
			continue
		}
		masked = append(masked, m.Values[i])
	}
	if len(masked) == 0 {
		return fmt.Errorf("%w: empty mask", entity.ErrInvalidImageDimensions)
	}

	lo, hi := floats.Min(masked), floats.Max(masked)
	switch {
	case hi > lo:
		span := hi - lo
		for i, v := range masked {
			masked[i] = (v - lo) / span
		}
	case policy == DegenerateZero:
		floats.Scale(0, masked)
	case policy == DegenerateOne:
		for i := range masked {
			masked[i] = 1
		}
	}

	j := 0
	for i, in := range mask.Inside {
		if in {
			m.Values[i] = masked[j]
			j++
		}
	}

	sort.Float64s(masked)
	threshold := Percentile(masked, percentile)
	for i, v := range m.Values {
		if v < threshold {
			m.Values[i] = 0
		}
	}
	return nil
}

// Percentile линейная интерполяция между соседними порядковыми статистиками,
// h = (n-1)*p/100, как np.percentile по умолчанию. sorted должен быть
// отсортирован по возрастанию и не пуст.
func Percentile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p / 100
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// FindHotspot возвращает рамку вокруг ненулевых пикселей карты.
func FindHotspot(m *entity.AttributionMap) entity.Hotspot {
	minX, minY := m.Width, m.Height
	maxX, maxY := -1, -1
	area := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) == 0 {
				continue
			}
			area++
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if area == 0 {
		return entity.Hotspot{}
	}
	return entity.Hotspot{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX + 1,
		Height: maxY - minY + 1,
		Area:   area,
	}
}
