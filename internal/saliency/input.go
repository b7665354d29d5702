package saliency

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"tumorviz/internal/domain/entity"
)

// DecodeInputImage декодирует JPEG или PNG и приводит его к size
// ближайшим соседом, как при загрузке снимков для обучения модели.
// Прозрачность отбрасывается: цвет пикселя остаётся как есть, без умножения на альфу.
func DecodeInputImage(data []byte, size image.Point) (*image.RGBA, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %w", entity.ErrInvalidUpload, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.NearestNeighbor.Scale(dst, dst.Rect, dropAlpha(src), src.Bounds(), draw.Src, nil)
	return dst, nil
}

// dropAlpha копирует изображение в непрозрачное RGBA с неумноженными каналами.
func dropAlpha(src image.Image) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			out.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return out
}
