package port

import (
	"image"

	"tumorviz/internal/domain/entity"
)

// HeatmapRenderer сглаживает карту значимости и раскрашивает её.
type HeatmapRenderer interface {
	// Render возвращает RGB тепловую карту размера size
	Render(m *entity.AttributionMap, size image.Point) (*image.RGBA, error)
}
