package sandcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransform_WorldToScreenIdentityAtUnitZoom(t *testing.T) {
	tr := NewTransform(100, 100, 100, 100)
	sx, sy := tr.WorldToScreen(50, 50)
	assert.Equal(t, 50, sx)
	assert.Equal(t, 50, sy)
}

func TestTransform_ScreenToWorldRoundTrips(t *testing.T) {
	tr := NewTransform(200, 150, 400, 300)
	tr.SetZoomPan(2, 10, -5)

	for _, wp := range [][2]int{{0, 0}, {50, 40}, {199, 149}} {
		sx, sy := tr.WorldToScreen(float32(wp[0]), float32(wp[1]))
		wx, wy := tr.ScreenToWorld(sx, sy)
		// P9: round-trips up to a +/-1 floor error.
		assert.LessOrEqual(t, abs(wx-wp[0]), 1)
		assert.LessOrEqual(t, abs(wy-wp[1]), 1)
	}
}

func TestTransform_SetZoomPanClampsRange(t *testing.T) {
	tr := NewTransform(10, 10, 10, 10)
	tr.SetZoomPan(0.0001, 0, 0)
	assert.Equal(t, float32(MinZoom), tr.Zoom)

	tr.SetZoomPan(1000, 0, 0)
	assert.Equal(t, float32(MaxZoom), tr.Zoom)
}

func TestTransform_LetterboxesNonMatchingAspect(t *testing.T) {
	tr := NewTransform(100, 50, 100, 100)
	sx, sy := tr.WorldToScreen(0, 0)
	assert.Equal(t, 0, sx)
	assert.Equal(t, 25, sy, "a wide world in a square viewport should letterbox vertically")
}

func TestTransform_ScreenToWorldZeroWorldSizeIsSafe(t *testing.T) {
	tr := NewTransform(0, 0, 100, 100)
	assert.NotPanics(t, func() {
		wx, wy := tr.ScreenToWorld(50, 50)
		assert.Equal(t, 0, wx)
		assert.Equal(t, 0, wy)
	})
}
