package render

import "github.com/go-gl/glfw/v3.3/glfw"

// InputState polls mouse state each frame the way the teacher's
// inputSystem polls glfw every PreUpdate tick, generalized down to just
// what a brush/pipette tool needs: cursor position, button edges, and
// scroll delta for zoom.
type InputState struct {
	win *glfw.Window

	MouseX, MouseY float64

	LeftDown, RightDown           bool
	LeftJustPressed, LeftJustReleased bool

	ScrollDeltaY float64
}

func newInputState(win *glfw.Window) *InputState {
	in := &InputState{win: win}
	win.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		in.ScrollDeltaY += yoff
	})
	return in
}

// Poll refreshes button/cursor state; call once per frame after
// glfw.PollEvents.
func (in *InputState) Poll() {
	in.MouseX, in.MouseY = in.win.GetCursorPos()

	wasDown := in.LeftDown
	in.LeftDown = in.win.GetMouseButton(glfw.MouseButtonLeft) == glfw.Press
	in.LeftJustPressed = in.LeftDown && !wasDown
	in.LeftJustReleased = !in.LeftDown && wasDown

	in.RightDown = in.win.GetMouseButton(glfw.MouseButtonRight) == glfw.Press
}

// ConsumeScroll returns the accumulated scroll delta since the last call
// and resets it.
func (in *InputState) ConsumeScroll() float64 {
	d := in.ScrollDeltaY
	in.ScrollDeltaY = 0
	return d
}
