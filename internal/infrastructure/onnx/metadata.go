package onnx

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tumorviz/internal/domain/entity"
)

// Metadata описание ONNX модели, лежит рядом с ней в JSON.
type Metadata struct {
	Name        string            `json:"name"`
	Model       string            `json:"model"`
	InputShape  []int64           `json:"input_shape"`
	OutputShape []int64           `json:"output_shape"`
	Classes     []string          `json:"classes"`
	ImageSize   int               `json:"image_size"`
	InputName   string            `json:"input_name"`
	OutputName  string            `json:"output_name"`
	Gradient    *GradientMetadata `json:"gradient,omitempty"`
}

// GradientMetadata граф, считающий градиент выхода класса по входу.
// Принимает снимок и one-hot маску класса, возвращает градиент формы входа.
type GradientMetadata struct {
	Model      string `json:"model"`
	ClassInput string `json:"class_input"`
	Output     string `json:"output"`
}

// LoadMetadata читает и проверяет метаданные. Пути к моделям
// разрешаются относительно каталога файла метаданных, без classes
// используются четыре класса опухолей из entity.Labels.
func LoadMetadata(path string) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if meta.InputName == "" {
		meta.InputName = "input"
	}
	if meta.OutputName == "" {
		meta.OutputName = "output"
	}
	if len(meta.Classes) == 0 {
		meta.Classes = entity.Labels
	}
	if meta.Name == "" {
		meta.Name = trimExt(filepath.Base(path))
	}

	dir := filepath.Dir(path)
	meta.Model = resolve(dir, meta.Model)
	if meta.Gradient != nil {
		meta.Gradient.Model = resolve(dir, meta.Gradient.Model)
	}

	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata %s: %w", path, err)
	}
	return &meta, nil
}

// Validate проверяет согласованность форм, размеров и классов.
func (m *Metadata) Validate() error {
	if m.Model == "" {
		return errors.New("model path is empty")
	}
	if len(m.Classes) == 0 {
		return errors.New("no classes")
	}
	if m.ImageSize <= 0 {
		return fmt.Errorf("image_size %d must be positive", m.ImageSize)
	}

	want := []int64{1, int64(m.ImageSize), int64(m.ImageSize), 3}
	if !equalShape(m.InputShape, want) {
		return fmt.Errorf("input_shape %v, want %v", m.InputShape, want)
	}
	if !equalShape(m.OutputShape, []int64{1, int64(len(m.Classes))}) {
		return fmt.Errorf("output_shape %v does not match %d classes", m.OutputShape, len(m.Classes))
	}

	if g := m.Gradient; g != nil {
		if g.Model == "" || g.ClassInput == "" || g.Output == "" {
			return errors.New("gradient block needs model, class_input and output")
		}
	}
	return nil
}

func equalShape(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
