package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tumorviz/internal/domain/entity"
)

func TestLoadModels_SkipsMissing(t *testing.T) {
	dir := t.TempDir()
	_, _, err := loadModels(map[string]string{
		"xception": filepath.Join(dir, "xception.json"),
		"cnn":      filepath.Join(dir, "cnn.json"),
	})
	require.EqualError(t, err, "no models loaded")
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, &entity.AnalysisResult{
		Model:      "cnn",
		Prediction: entity.NewPrediction(entity.Labels, []float32{0.1, 0.1, 0.1, 0.7}),
		Saliency: &entity.SaliencyResult{
			UploadPath:    "out/scan.jpg",
			CompositePath: "out/scan_saliency.jpg",
			Hotspot:       entity.Hotspot{X: 1, Y: 2, Width: 3, Height: 4, Area: 5},
		},
	})

	out := buf.String()
	require.Contains(t, out, "prediction: Pituitary (0.7000)")
	require.Contains(t, out, "saliency:   out/scan_saliency.jpg")
	require.Contains(t, out, "Pituitary")
	require.Contains(t, out, "0.7000")
	require.Contains(t, out, "CLASS")
	require.Contains(t, out, "hotspot:    x=1 y=2 w=3 h=4 area=5")
}

func TestRootCommand(t *testing.T) {
	root := newRootCommand()
	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"analyze", "bot", "serve"}, names)
}
