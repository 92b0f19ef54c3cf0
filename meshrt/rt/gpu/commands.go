package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Drawable is a presentable image valid for one frame. It must be released
// before the next one is acquired.
type Drawable interface {
	Size() (width, height uint32)
	Release()
}

// ClearValues are the load values of a render pass.
type ClearValues struct {
	Color wgpu.Color
	Depth float32
}

// CommandBuffer records one frame of GPU work.
type CommandBuffer interface {
	// BeginRenderPass starts a pass clearing target and depth. depth may be
	// nil for a pass without depth.
	BeginRenderPass(target Drawable, depth *DepthTexture, clear ClearValues) (RenderPass, error)
	// Submit hands the recorded work to the queue. Execution is asynchronous.
	Submit() error
	Release()
}

type RenderPass interface {
	SetPipeline(p *PipelineState)
	// SetVertexBuffer binds b to slot starting offset bytes in.
	SetVertexBuffer(slot uint32, b *Buffer, offset uint64)
	// SetIndexBuffer binds 32-bit indices starting offset bytes in.
	SetIndexBuffer(b *Buffer, offset uint64)
	// SetTransform writes m into u and binds it for the following draws.
	// A uniform holds one matrix per pass: queue writes land before the pass
	// runs, so a second, different matrix for the same uniform is rejected
	// and reported by End.
	SetTransform(u *Uniform, m mgl32.Mat4)
	DrawIndexed(indexCount uint32)
	End() error
}

type surfaceDrawable struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	width   uint32
	height  uint32
}

func (d *surfaceDrawable) Size() (uint32, uint32) { return d.width, d.height }

func (d *surfaceDrawable) Release() {
	if d.view != nil {
		d.view.Release()
		d.view = nil
	}
	if d.texture != nil {
		d.texture.Release()
		d.texture = nil
	}
}

type commandBuffer struct {
	queue   *wgpu.Queue
	encoder *wgpu.CommandEncoder
	pass    *renderPass
}

// NewCommandBuffer starts recording a frame. Buffers are submitted and run
// in the order Submit is called.
func (rc *RenderContext) NewCommandBuffer() (CommandBuffer, error) {
	encoder, err := rc.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, errors.Wrap(err, "create command encoder")
	}
	return &commandBuffer{queue: rc.queue, encoder: encoder}, nil
}

func (c *commandBuffer) BeginRenderPass(target Drawable, depth *DepthTexture, clear ClearValues) (RenderPass, error) {
	if c.encoder == nil {
		return nil, errors.New("command buffer already submitted")
	}
	sd, ok := target.(*surfaceDrawable)
	if !ok || sd.view == nil {
		return nil, errors.New("render target is not a live surface drawable")
	}

	desc := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       sd.view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clear.Color,
		}},
	}
	if depth != nil && depth.view != nil {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            depth.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: clear.Depth,
		}
	}

	c.pass = &renderPass{
		queue:      c.queue,
		pass:       c.encoder.BeginRenderPass(desc),
		transforms: make(passTransforms),
	}
	return c.pass, nil
}

func (c *commandBuffer) Submit() error {
	if c.encoder == nil {
		return errors.New("command buffer already submitted")
	}
	cmd, err := c.encoder.Finish(nil)
	if err != nil {
		return errors.Wrap(err, "finish command buffer")
	}
	c.queue.Submit(cmd)
	cmd.Release()
	c.encoder.Release()
	c.encoder = nil
	return nil
}

func (c *commandBuffer) Release() {
	if c.pass != nil {
		c.pass.release()
		c.pass = nil
	}
	if c.encoder != nil {
		c.encoder.Release()
		c.encoder = nil
	}
}

type renderPass struct {
	queue *wgpu.Queue
	pass  *wgpu.RenderPassEncoder

	transforms passTransforms
	err        error
}

// passTransforms records the matrix written to each uniform in a pass.
type passTransforms map[*Uniform]mgl32.Mat4

// set reports whether m must be written to u. Rewriting u with another
// matrix in the same pass is an error.
func (t passTransforms) set(u *Uniform, m mgl32.Mat4) (bool, error) {
	prev, ok := t[u]
	if !ok {
		t[u] = m
		return true, nil
	}
	if prev != m {
		return false, errors.Errorf("uniform %s: second transform in one pass", u.Label)
	}
	return false, nil
}

func (p *renderPass) SetPipeline(ps *PipelineState) {
	p.pass.SetPipeline(ps.pipeline)
}

func (p *renderPass) SetVertexBuffer(slot uint32, b *Buffer, offset uint64) {
	p.pass.SetVertexBuffer(slot, b.buf, offset, wgpu.WholeSize)
}

func (p *renderPass) SetIndexBuffer(b *Buffer, offset uint64) {
	p.pass.SetIndexBuffer(b.buf, wgpu.IndexFormatUint32, offset, wgpu.WholeSize)
}

func (p *renderPass) SetTransform(u *Uniform, m mgl32.Mat4) {
	write, err := p.transforms.set(u, m)
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return
	}
	if write {
		p.queue.WriteBuffer(u.buf, 0, wgpu.ToBytes(m[:]))
	}
	p.pass.SetBindGroup(u.Group, u.bind, nil)
}

func (p *renderPass) DrawIndexed(indexCount uint32) {
	p.pass.DrawIndexed(indexCount, 1, 0, 0, 0)
}

func (p *renderPass) End() error {
	if p.pass == nil {
		return errors.New("render pass already ended")
	}
	err := p.pass.End()
	p.release()
	if p.err != nil {
		return p.err
	}
	return err
}

func (p *renderPass) release() {
	if p.pass != nil {
		p.pass.Release()
		p.pass = nil
	}
}
