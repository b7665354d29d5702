package entity

import "image"

// AttributionMap карта значимости пикселей, хранится построчно.
type AttributionMap struct {
	Width  int
	Height int
	Values []float64
}

// NewAttributionMap создаёт нулевую карту размером width×height.
func NewAttributionMap(width, height int) *AttributionMap {
	return &AttributionMap{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
}

// At возвращает значение в точке (x, y).
func (m *AttributionMap) At(x, y int) float64 {
	return m.Values[y*m.Width+x]
}

// Set записывает значение в точку (x, y).
func (m *AttributionMap) Set(x, y int, v float64) {
	m.Values[y*m.Width+x] = v
}

// Size возвращает размеры карты.
func (m *AttributionMap) Size() image.Point {
	return image.Pt(m.Width, m.Height)
}

// ROIMask круглая маска области мозга внутри кадра.
type ROIMask struct {
	Width  int
	Height int
	Center image.Point
	Radius int
	Inside []bool
}

// Contains сообщает, попадает ли точка (x, y) в маску.
func (m *ROIMask) Contains(x, y int) bool {
	return m.Inside[y*m.Width+x]
}

// Count возвращает число пикселей внутри маски.
func (m *ROIMask) Count() int {
	n := 0
	for _, in := range m.Inside {
		if in {
			n++
		}
	}
	return n
}

// Upload исходный файл, присланный пользователем.
type Upload struct {
	Filename string
	Data     []byte
}

// SaliencyResult итог одного прогона конвейера.
type SaliencyResult struct {
	Composite     *image.RGBA // наложение тепловой карты на снимок
	UploadPath    string      // копия исходного файла
	CompositePath string      // сохранённое наложение
	Hotspot       Hotspot     // область, оставшаяся после порога
}
