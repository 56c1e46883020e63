// Package render is a reference renderer that consumes an Engine's
// CellViews/UploadPlan from the outside, exercising the memory-view guard
// and dirty-upload planner contracts without being part of the core. It is
// grounded on the teacher's window/GPU bring-up (gpu_operations.go):
// glfw owns the window and input, cogentcore/webgpu owns the surface and
// device.
package render

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/sandforge/sandcore"
)

// Window owns the glfw window and wgpu device used to present a world.
type Window struct {
	win    *glfw.Window
	width  int
	height int

	instance      *wgpu.Instance
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration

	tex   *Texture
	Input *InputState
}

// NewWindow opens a window sized to the viewport and brings up its wgpu
// surface, following the teacher's createWindowState/createGpuState
// sequence.
func NewWindow(title string, width, height int) (*Window, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	w := &Window{win: win, width: width, height: height}
	w.Input = newInputState(win)

	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "sandcore-view device"})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}

	caps := surface.GetCapabilities(adapter)
	cfg := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &cfg)

	w.instance = instance
	w.surface = surface
	w.adapter = adapter
	w.device = device
	w.queue = device.GetQueue()
	w.surfaceConfig = &cfg

	return w, nil
}

// ShouldClose reports whether the OS asked the window to close.
func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

// PollEvents drains the glfw event queue for this frame.
func (w *Window) PollEvents() { glfw.PollEvents() }

// BindWorld (re)allocates the presentation texture at the world's
// dimensions; called once at startup and again after a RESIZE response.
func (w *Window) BindWorld(worldW, worldH int) {
	w.tex = newTexture(w.device, w.queue, worldW, worldH)
}

// Present uploads the dirty regions described by plan from cv and submits
// one frame. A PlanFullFrame plan re-uploads the whole cell buffer; a
// PlanChunks/PlanRects plan uploads only the listed rectangles — the same
// distinction Component F computes to avoid a full re-upload every frame.
func (w *Window) Present(cv sandcore.CellViews, plan sandcore.UploadPlan, mode sandcore.RenderMode) error {
	if w.tex == nil {
		return fmt.Errorf("render: BindWorld not called")
	}
	w.tex.upload(cv, plan, mode)

	surfaceTex, err := w.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("get current texture: %w", err)
	}
	view, err := surfaceTex.Texture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}
	defer view.Release()

	encoder, err := w.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	w.tex.draw(pass)
	pass.End()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	w.queue.Submit(cmd)
	w.surface.Present()
	return nil
}

// Close releases GPU resources and the window.
func (w *Window) Close() {
	if w.tex != nil {
		w.tex.release()
	}
	w.win.Destroy()
	glfw.Terminate()
}
