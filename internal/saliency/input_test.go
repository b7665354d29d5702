package saliency

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"tumorviz/internal/domain/entity"
)

func TestDecodeInputImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			c := color.RGBA{A: 255}
			if x >= 5 {
				c.R = 255
			}
			src.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := DecodeInputImage(buf.Bytes(), image.Pt(20, 20))
	require.NoError(t, err)
	require.Equal(t, image.Pt(20, 20), img.Bounds().Size())
	require.Equal(t, uint8(0), img.RGBAAt(2, 2).R)
	require.Equal(t, uint8(255), img.RGBAAt(17, 2).R)
}

func TestDecodeInputImage_DropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 128})
		}
	}
	src.SetNRGBA(0, 0, color.NRGBA{R: 90, G: 60, B: 30, A: 0})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := DecodeInputImage(buf.Bytes(), image.Pt(4, 4))
	require.NoError(t, err)
	require.Equal(t, color.RGBA{R: 200, G: 100, B: 50, A: 255}, img.RGBAAt(2, 2))
	require.Equal(t, color.RGBA{R: 90, G: 60, B: 30, A: 255}, img.RGBAAt(0, 0))
}

func TestDecodeInputImage_Garbage(t *testing.T) {
	_, err := DecodeInputImage([]byte("definitely not an image"), image.Pt(20, 20))
	require.ErrorIs(t, err, entity.ErrInvalidUpload)
}
