package render

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/sandforge/sandcore"
)

// textureShader draws a single full-screen triangle sampling the world
// texture, the minimal pipeline needed to present Component F's uploaded
// rectangles without a vertex/index buffer.
const textureShader = `
struct VertexOutput {
	@builtin(position) position: vec4<f32>,
	@location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> VertexOutput {
	var out: VertexOutput;
	let x = f32((idx << 1u) & 2u);
	let y = f32(idx & 2u);
	out.position = vec4<f32>(x * 2.0 - 1.0, 1.0 - y * 2.0, 0.0, 1.0);
	out.uv = vec2<f32>(x, y);
	return out;
}

@group(0) @binding(0) var worldTex: texture_2d<f32>;
@group(0) @binding(1) var worldSampler: sampler;

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
	return textureSample(worldTex, worldSampler, in.uv);
}
`

// Texture holds the GPU-side world texture and the pipeline that presents
// it, plus a CPU-side RGBA staging buffer reused across frames. Each
// uploaded rectangle (PlanChunks/PlanRects) is copied out of the staging
// buffer into a freshly allocated region buffer before WriteTexture.
type Texture struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	w, h    int
	tex     *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler

	pipeline *wgpu.RenderPipeline
	bindGrp  *wgpu.BindGroup

	staging []byte
}

func newTexture(device *wgpu.Device, queue *wgpu.Queue, w, h int) *Texture {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		panic(err)
	}
	sampler, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		MagFilter: wgpu.FilterModeNearest,
		MinFilter: wgpu.FilterModeNearest,
	})
	if err != nil {
		panic(err)
	}

	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "sandcore world shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: textureShader},
	})
	if err != nil {
		panic(err)
	}
	defer shader.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Vertex: wgpu.VertexState{Module: shader, EntryPoint: "vs_main"},
		Fragment: &wgpu.FragmentState{
			Module: shader, EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{Format: wgpu.TextureFormatBGRA8Unorm, WriteMask: wgpu.ColorWriteMaskAll}},
		},
		Primitive: wgpu.PrimitiveState{Topology: wgpu.PrimitiveTopologyTriangleList},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		panic(err)
	}

	layout := pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	bindGrp, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: sampler},
		},
	})
	if err != nil {
		panic(err)
	}

	return &Texture{
		device: device, queue: queue, w: w, h: h,
		tex: tex, view: view, sampler: sampler,
		pipeline: pipeline, bindGrp: bindGrp,
		staging: make([]byte, w*h*4),
	}
}

// upload writes plan's rectangles (or the whole buffer on PlanFullFrame)
// from cv into the GPU texture. RenderThermal maps temperature to a
// blue-red ramp instead of the element color.
func (t *Texture) upload(cv sandcore.CellViews, plan sandcore.UploadPlan, mode sandcore.RenderMode) {
	switch plan.Kind {
	case sandcore.PlanFullFrame:
		t.fillStaging(cv, mode, 0, 0, t.w, t.h)
		t.writeRegion(0, 0, t.w, t.h)
	default:
		for _, r := range plan.Rects {
			t.fillStaging(cv, mode, r.X, r.Y, r.W, r.H)
			t.writeRegion(r.X, r.Y, r.W, r.H)
		}
	}
}

func (t *Texture) fillStaging(cv sandcore.CellViews, mode sandcore.RenderMode, x0, y0, w, h int) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			i := y*t.w + x
			var px uint32
			if mode == sandcore.RenderThermal && i < len(cv.Temperature) {
				px = thermalColor(cv.Temperature[i])
			} else if i < len(cv.Colors) {
				px = cv.Colors[i]
			}
			o := (y*t.w + x) * 4
			t.staging[o+0] = byte(px)
			t.staging[o+1] = byte(px >> 8)
			t.staging[o+2] = byte(px >> 16)
			t.staging[o+3] = byte(px >> 24)
		}
	}
}

func (t *Texture) writeRegion(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	rowBytes := w * 4
	region := make([]byte, rowBytes*h)
	for row := 0; row < h; row++ {
		srcOff := ((y+row)*t.w + x) * 4
		copy(region[row*rowBytes:(row+1)*rowBytes], t.staging[srcOff:srcOff+rowBytes])
	}

	t.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: t.tex, Origin: wgpu.Origin3D{X: uint32(x), Y: uint32(y)}},
		region,
		&wgpu.TextureDataLayout{BytesPerRow: uint32(rowBytes), RowsPerImage: uint32(h)},
		&wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
}

// thermalColor maps a temperature in [-273,5000] to a blue(cold)-red(hot)
// RGBA8 pixel for RenderThermal mode.
func thermalColor(temp float32) uint32 {
	t := (temp + 273) / 5273
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	r := byte(255 * t)
	b := byte(255 * (1 - t))
	return uint32(0xFF)<<24 | uint32(b)<<16 | uint32(0)<<8 | uint32(r)
}

func (t *Texture) draw(pass *wgpu.RenderPassEncoder) {
	pass.SetPipeline(t.pipeline)
	pass.SetBindGroup(0, t.bindGrp, nil)
	pass.Draw(3, 1, 0, 0)
}

func (t *Texture) release() {
	t.view.Release()
	t.tex.Release()
	t.sampler.Release()
	t.pipeline.Release()
}
