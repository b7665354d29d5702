package vision

import (
	"log"

	"tumorviz/internal/domain/port"
	"tumorviz/internal/saliency"
)

// NewRenderer выбирает рендерер тепловой карты: OpenCV, если он запрошен
// и доступен в сборке, иначе реализация на Go.
func NewRenderer(preferGoCV bool) port.HeatmapRenderer {
	if preferGoCV {
		if Available {
			return NewGoCVRenderer()
		}
		log.Printf("gocv renderer requested but binary built without gocv tag, using pure Go renderer")
	}
	return saliency.NewRenderer()
}
