package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"tumorviz/internal/domain/entity"
	"tumorviz/internal/domain/port"
)

// linearClassifier детерминированная модель: градиент класса c по входу равен
// входу, умноженному на (c+1) и на вес, зависящий от положения пикселя.
type linearClassifier struct {
	size     int
	probs    []float32
	noGrad   bool
	predErr  error
	gradCall int
}

func (f *linearClassifier) Spec() entity.ModelSpec {
	return entity.ModelSpec{Name: "linear", InputSize: f.size, Classes: entity.Labels}
}

func (f *linearClassifier) Predict(ctx context.Context, input []float32) ([]float32, error) {
	if f.predErr != nil {
		return nil, f.predErr
	}
	return f.probs, nil
}

func (f *linearClassifier) InputGradient(ctx context.Context, input []float32, classIndex int) ([]float32, error) {
	f.gradCall++
	if f.noGrad {
		return nil, nil
	}
	out := make([]float32, len(input))
	for i, v := range input {
		pixel := i / 3
		out[i] = v * float32(classIndex+1) * float32(pixel%17-8)
	}
	return out, nil
}

// uniformClassifier градиент 1.0 в каждом пикселе.
type uniformClassifier struct {
	size int
}

func (f *uniformClassifier) Spec() entity.ModelSpec {
	return entity.ModelSpec{Name: "uniform", InputSize: f.size, Classes: entity.Labels}
}

func (f *uniformClassifier) Predict(ctx context.Context, input []float32) ([]float32, error) {
	return []float32{0.7, 0.1, 0.1, 0.1}, nil
}

func (f *uniformClassifier) InputGradient(ctx context.Context, input []float32, classIndex int) ([]float32, error) {
	out := make([]float32, len(input))
	for i := range out {
		out[i] = 1
	}
	return out, nil
}

// recordingRenderer запоминает карту, пришедшую на раскраску.
type recordingRenderer struct {
	values []float64
	inner  port.HeatmapRenderer
}

func (r *recordingRenderer) Render(m *entity.AttributionMap, size image.Point) (*image.RGBA, error) {
	r.values = append([]float64(nil), m.Values...)
	return r.inner.Render(m, size)
}

type fakeExplainer struct {
	text  string
	err   error
	path  string
	label string
	conf  float32
}

func (e *fakeExplainer) Explain(ctx context.Context, imagePath, label string, confidence float32) (string, error) {
	e.path, e.label, e.conf = imagePath, label, confidence
	return e.text, e.err
}

// failingStore хранилище, которое не может писать.
type failingStore struct{}

func (failingStore) SaveUpload(ctx context.Context, filename string, data []byte) (string, error) {
	return "", errors.New("disk full")
}

func (failingStore) SaveComposite(ctx context.Context, filename string, img image.Image) (string, error) {
	return "", errors.New("disk full")
}

func pngUpload(t *testing.T, name string, size int, fill func(x, y int) color.RGBA) entity.Upload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, fill(x, y))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return entity.Upload{Filename: name, Data: buf.Bytes()}
}

func midGray(x, y int) color.RGBA {
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}

func gradientFill(x, y int) color.RGBA {
	return color.RGBA{R: uint8(x * 3), G: uint8(y * 2), B: uint8((x + y) % 256), A: 255}
}
