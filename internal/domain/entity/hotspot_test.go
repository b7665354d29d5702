package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHotspotCenter(t *testing.T) {
	h := Hotspot{X: 10, Y: 20, Width: 8, Height: 6, Area: 30}
	x, y := h.Center()
	require.Equal(t, 14, x)
	require.Equal(t, 23, y)
	require.False(t, h.Empty())
}

func TestHotspotEmpty(t *testing.T) {
	require.True(t, Hotspot{}.Empty())
}
