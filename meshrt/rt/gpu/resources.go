package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const DepthFormat = wgpu.TextureFormatDepth24Plus

// TransformSize is the byte size of the transform uniform (one matrix per pass).
const TransformSize = uint64(len(mgl32.Mat4{}) * 4)

// Buffer is a GPU buffer created once from CPU data.
type Buffer struct {
	Label string
	Size  uint64
	buf   *wgpu.Buffer
}

func (b *Buffer) Release() {
	if b == nil || b.buf == nil {
		return
	}
	b.buf.Release()
	b.buf = nil
}

// Uniform is a fixed-size uniform buffer bound through its own bind group.
// Its contents are rewritten every frame; it is never resized.
type Uniform struct {
	Label string
	Size  uint64
	Group uint32
	buf   *wgpu.Buffer
	bind  *wgpu.BindGroup
}

func (u *Uniform) Release() {
	if u == nil {
		return
	}
	if u.bind != nil {
		u.bind.Release()
		u.bind = nil
	}
	if u.buf != nil {
		u.buf.Release()
		u.buf = nil
	}
}

// DepthTexture matches one drawable size. It is replaced, never resized.
type DepthTexture struct {
	Width  uint32
	Height uint32
	tex    *wgpu.Texture
	view   *wgpu.TextureView
}

func (d *DepthTexture) Release() {
	if d == nil {
		return
	}
	if d.view != nil {
		d.view.Release()
		d.view = nil
	}
	if d.tex != nil {
		d.tex.Release()
		d.tex = nil
	}
}

// DepthStencilState is attached to pipelines at creation time.
type DepthStencilState struct {
	state wgpu.DepthStencilState
}

func (d *DepthStencilState) Format() wgpu.TextureFormat { return d.state.Format }

// CreateBufferWithData uploads data into a new buffer. The contents are
// padded to a multiple of four bytes.
func (rc *RenderContext) CreateBufferWithData(label string, data []byte, usage wgpu.BufferUsage) (*Buffer, error) {
	if len(data) == 0 {
		return nil, errors.Errorf("buffer %s: no data", label)
	}
	if rem := len(data) % 4; rem != 0 {
		padded := make([]byte, len(data)+4-rem)
		copy(padded, data)
		data = padded
	}
	buf, err := rc.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: data,
		Usage:    usage,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create buffer %s", label)
	}
	return &Buffer{Label: label, Size: uint64(len(data)), buf: buf}, nil
}

func (rc *RenderContext) CreateVertexBuffer(label string, vertices []mgl32.Vec3) (*Buffer, error) {
	return rc.CreateBufferWithData(label, wgpu.ToBytes(vertices), wgpu.BufferUsageVertex)
}

func (rc *RenderContext) CreateIndexBuffer(label string, indices []uint32) (*Buffer, error) {
	return rc.CreateBufferWithData(label, wgpu.ToBytes(indices), wgpu.BufferUsageIndex)
}

// CreateUniform reserves a uniform buffer of size bytes and binds it to
// group of pipeline at binding 0.
func (rc *RenderContext) CreateUniform(label string, size uint64, pipeline *PipelineState, group uint32) (*Uniform, error) {
	buf, err := rc.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create uniform %s", label)
	}

	layout := pipeline.pipeline.GetBindGroupLayout(group)
	defer layout.Release()

	bind, err := rc.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		buf.Release()
		return nil, errors.Wrapf(err, "bind uniform %s", label)
	}
	return &Uniform{Label: label, Size: size, Group: group, buf: buf, bind: bind}, nil
}

func (rc *RenderContext) CreateDepthTexture(width, height uint32) (*DepthTexture, error) {
	if width == 0 || height == 0 {
		return nil, errors.Errorf("depth texture %dx%d: zero size", width, height)
	}
	tex, err := rc.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create depth texture %dx%d", width, height)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, errors.Wrap(err, "create depth view")
	}
	return &DepthTexture{Width: width, Height: height, tex: tex, view: view}, nil
}

// CreateDepthStencilState returns a less-than depth test with writes on and
// no stencil.
func (rc *RenderContext) CreateDepthStencilState() *DepthStencilState {
	keep := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	return &DepthStencilState{state: wgpu.DepthStencilState{
		Format:            DepthFormat,
		DepthWriteEnabled: true,
		DepthCompare:      wgpu.CompareFunctionLess,
		StencilFront:      keep,
		StencilBack:       keep,
	}}
}
