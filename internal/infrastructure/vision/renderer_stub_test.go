//go:build !gocv
// +build !gocv

package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"tumorviz/internal/domain/entity"
)

func TestGoCVRenderer_StubFails(t *testing.T) {
	require.False(t, Available)
	_, err := NewGoCVRenderer().Render(entity.NewAttributionMap(8, 8), image.Pt(8, 8))
	require.EqualError(t, err, "gocv build tag is not enabled")
}
