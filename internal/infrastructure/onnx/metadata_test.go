package onnx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tumorviz/internal/domain/entity"
)

func writeMeta(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xception.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMetadata(t *testing.T) {
	path := writeMeta(t, `{
		"model": "xception.onnx",
		"input_shape": [1, 299, 299, 3],
		"output_shape": [1, 4],
		"classes": ["Glioma", "Meningioma", "No Tumor", "Pituitary"],
		"image_size": 299,
		"gradient": {"model": "xception_grad.onnx", "class_input": "class_mask", "output": "input_grad"}
	}`)

	meta, err := LoadMetadata(path)
	require.NoError(t, err)
	require.Equal(t, "xception", meta.Name)
	require.Equal(t, "input", meta.InputName)
	require.Equal(t, "output", meta.OutputName)
	require.Equal(t, filepath.Join(filepath.Dir(path), "xception.onnx"), meta.Model)
	require.Equal(t, filepath.Join(filepath.Dir(path), "xception_grad.onnx"), meta.Gradient.Model)
}

func TestLoadMetadata_DefaultClasses(t *testing.T) {
	path := writeMeta(t, `{
		"model": "cnn.onnx",
		"input_shape": [1, 224, 224, 3],
		"output_shape": [1, 4],
		"image_size": 224
	}`)

	meta, err := LoadMetadata(path)
	require.NoError(t, err)
	require.Equal(t, entity.Labels, meta.Classes)
	require.Nil(t, meta.Gradient)
}

func TestMetadata_ValidateNoClasses(t *testing.T) {
	meta := Metadata{Model: "m.onnx", InputShape: []int64{1, 8, 8, 3}, OutputShape: []int64{1, 0}, ImageSize: 8}
	require.EqualError(t, meta.Validate(), "no classes")
}

func TestLoadMetadata_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad json":       `{`,
		"no model":       `{"input_shape":[1,224,224,3],"output_shape":[1,4],"classes":["a","b","c","d"],"image_size":224}`,
		"shape mismatch": `{"model":"m.onnx","input_shape":[1,224,224,3],"output_shape":[1,4],"classes":["a","b","c","d"],"image_size":299}`,
		"class mismatch": `{"model":"m.onnx","input_shape":[1,224,224,3],"output_shape":[1,3],"classes":["a","b","c","d"],"image_size":224}`,
		"half gradient":  `{"model":"m.onnx","input_shape":[1,224,224,3],"output_shape":[1,4],"classes":["a","b","c","d"],"image_size":224,"gradient":{"model":"g.onnx"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadMetadata(writeMeta(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadMetadata_MissingFile(t *testing.T) {
	_, err := LoadMetadata(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
