package sandcore

import "github.com/go-gl/mathgl/mgl32"

const (
	MinZoom = 0.05
	MaxZoom = 50
)

// Transform is the coordinate/transform model shared between host and
// engine (Component I). Both sides build the same matrices from the same
// inputs so pipette/brush coordinates agree bit-for-bit (spec §4.I).
type Transform struct {
	WorldW, WorldH         int
	ViewportW, ViewportH   int
	Zoom, PanX, PanY       float32
}

func NewTransform(worldW, worldH, viewportW, viewportH int) *Transform {
	t := &Transform{WorldW: worldW, WorldH: worldH, ViewportW: viewportW, ViewportH: viewportH, Zoom: 1}
	return t
}

func (t *Transform) SetViewport(w, h int) { t.ViewportW, t.ViewportH = w, h }

func (t *Transform) SetWorldSize(w, h int) { t.WorldW, t.WorldH = w, h }

// SetZoomPan applies a TRANSFORM message, clamping zoom to [MinZoom,MaxZoom].
func (t *Transform) SetZoomPan(zoom, panX, panY float32) {
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	t.Zoom, t.PanX, t.PanY = zoom, panX, panY
}

// fitScale is the aspect-fit (letterbox) scale mapping one world pixel to
// one viewport pixel before zoom/pan.
func (t *Transform) fitScale() float32 {
	if t.WorldW == 0 || t.WorldH == 0 {
		return 1
	}
	sx := float32(t.ViewportW) / float32(t.WorldW)
	sy := float32(t.ViewportH) / float32(t.WorldH)
	if sx < sy {
		return sx
	}
	return sy
}

// worldToViewport builds the affine matrix mapping world pixel coordinates
// (origin top-left) to viewport pixel coordinates: aspect-fit, center,
// zoom about the viewport center, then pan.
func (t *Transform) worldToViewport() mgl32.Mat3 {
	fitW := float32(t.WorldW) * t.fitScale()
	fitH := float32(t.WorldH) * t.fitScale()
	letterboxX := (float32(t.ViewportW) - fitW) / 2
	letterboxY := (float32(t.ViewportH) - fitH) / 2

	cx, cy := float32(t.ViewportW)/2, float32(t.ViewportH)/2

	// Compose: translate to letterboxed position -> move to viewport
	// center -> scale by zoom ratio -> move back -> pan.
	m := mgl32.Ident3()
	m = mgl32.Translate2D(letterboxX, letterboxY).Mul3(m)
	zoomRatio := t.Zoom
	m = mgl32.Translate2D(cx, cy).
		Mul3(mgl32.Scale2D(zoomRatio, zoomRatio)).
		Mul3(mgl32.Translate2D(-cx, -cy)).
		Mul3(m)
	m = mgl32.Translate2D(t.PanX, t.PanY).Mul3(m)
	return m
}

// WorldToScreen maps a world-pixel coordinate to an integer viewport pixel.
func (t *Transform) WorldToScreen(wx, wy float32) (sx, sy int) {
	m := t.worldToViewport()
	fit := t.fitScale()
	v := m.Mul3x1(mgl32.Vec3{wx * fit, wy * fit, 1})
	return int(v.X()), int(v.Y())
}

// ScreenToWorld inverts WorldToScreen and floors to integers (spec §4.I /
// P9: round-trips up to a ±1 floor error).
func (t *Transform) ScreenToWorld(sx, sy int) (wx, wy int) {
	m := t.worldToViewport()
	inv := m.Inv()
	v := inv.Mul3x1(mgl32.Vec3{float32(sx), float32(sy), 1})
	fit := t.fitScale()
	if fit == 0 {
		return 0, 0
	}
	return floorInt(v.X() / fit), floorInt(v.Y() / fit)
}

func floorInt(f float32) int {
	i := int(f)
	if f < 0 && float32(i) != f {
		i--
	}
	return i
}
