package app

import (
	"fmt"
	"time"

	"github.com/gekko3d/meshloop"
	"github.com/gekko3d/meshloop/meshrt/rt/core"
	"github.com/gekko3d/meshloop/meshrt/rt/gpu"
	"github.com/gekko3d/meshloop/meshrt/rt/mesh"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const (
	positionStride = 12 // float32x3
	indexStride    = 4  // uint32

	profileEvery = 120
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUpdating
	PhaseEncoding
	PhasePresenting
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUpdating:
		return "updating"
	case PhaseEncoding:
		return "encoding"
	case PhasePresenting:
		return "presenting"
	case PhaseStopped:
		return "stopped"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Device is the part of the render context the loop drives.
// *gpu.RenderContext implements it.
type Device interface {
	Resize(width, height uint32)
	DrawableSize() (uint32, uint32)
	NextDrawable() (gpu.Drawable, bool)
	NewCommandBuffer() (gpu.CommandBuffer, error)
	Present(d gpu.Drawable, cb gpu.CommandBuffer) error
	CreateDepthTexture(width, height uint32) (*gpu.DepthTexture, error)
}

// TitleSink receives the per-frame window title.
type TitleSink interface {
	SetTitle(title string)
}

// Resources are the long-lived GPU objects drawn every frame. They are
// created once at startup and only read by the loop.
type Resources struct {
	Pipeline   *gpu.PipelineState
	Positions  *gpu.Buffer
	Normals    *gpu.Buffer
	Indices    *gpu.Buffer
	Transform  *gpu.Uniform
	Primitives []mesh.MeshPrimitive
	Bounds     core.AABB
}

type LoopOptions struct {
	Title string
	Look  core.LookMode
	Fov   float32 // degrees
	Near  float32
	Far   float32
	Clear gpu.ClearValues
}

// FrameLoop holds all per-frame state and runs Idle → Updating → Encoding →
// Presenting → Idle once per Tick until a CloseEvent stops it.
type FrameLoop struct {
	dev    Device
	res    Resources
	opts   LoopOptions
	camera *core.CameraRig
	clock  *core.FrameClock
	depth  *gpu.DepthTexture
	title  TitleSink
	log    meshloop.Logger

	projection mgl32.Mat4
	viewProj   mgl32.Mat4
	pending    []core.CameraCommand
	phase      Phase
	dt         float32

	Profiler *Profiler
	Frames   int
	Skipped  int
}

// NewFrameLoop sizes the depth texture and projection to the device's
// current drawable. now starts the frame clock.
func NewFrameLoop(dev Device, res Resources, camera *core.CameraRig, opts LoopOptions, now time.Time, log meshloop.Logger) (*FrameLoop, error) {
	l := &FrameLoop{
		dev:      dev,
		res:      res,
		opts:     opts,
		camera:   camera,
		clock:    core.NewFrameClock(now),
		log:      meshloop.OrNop(log),
		Profiler: NewProfiler(),
	}
	w, h := dev.DrawableSize()
	if w > 0 && h > 0 {
		if err := l.resizeTargets(w, h); err != nil {
			return nil, err
		}
	} else {
		l.projection = core.Perspective(opts.Fov, w, h, opts.Near, opts.Far)
	}
	l.viewProj = l.projection.Mul4(l.view())
	return l, nil
}

func (l *FrameLoop) SetTitleSink(t TitleSink) { l.title = t }

func (l *FrameLoop) Phase() Phase { return l.phase }

func (l *FrameLoop) Stopped() bool { return l.phase == PhaseStopped }

// Dt is the elapsed time measured by the last Update.
func (l *FrameLoop) Dt() float32 { return l.dt }

func (l *FrameLoop) ViewProjection() mgl32.Mat4 { return l.viewProj }

func (l *FrameLoop) Projection() mgl32.Mat4 { return l.projection }

func (l *FrameLoop) Camera() *core.CameraRig { return l.camera }

func (l *FrameLoop) DepthTexture() *gpu.DepthTexture { return l.depth }

// HandleEvent translates a platform event into camera commands or a
// lifecycle change. Nothing is drawn here.
func (l *FrameLoop) HandleEvent(ev Event) error {
	switch e := ev.(type) {
	case CloseEvent:
		l.phase = PhaseStopped
	case ResizeEvent:
		return l.resize(e.Width, e.Height)
	case KeyEvent:
		if cmd, ok := CommandForKey(e.Key); ok {
			l.pending = append(l.pending, cmd)
		}
	}
	return nil
}

func (l *FrameLoop) resize(width, height int) error {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	w, h := uint32(width), uint32(height)
	l.dev.Resize(w, h)
	if w == 0 || h == 0 {
		return nil
	}
	return l.resizeTargets(w, h)
}

func (l *FrameLoop) resizeTargets(w, h uint32) error {
	l.projection = core.Perspective(l.opts.Fov, w, h, l.opts.Near, l.opts.Far)
	if l.depth != nil && l.depth.Width == w && l.depth.Height == h {
		return nil
	}
	depth, err := l.dev.CreateDepthTexture(w, h)
	if err != nil {
		return errors.Wrap(err, "resize depth texture")
	}
	l.depth.Release()
	l.depth = depth
	l.log.Debugf("render targets resized to %dx%d", w, h)
	return nil
}

func (l *FrameLoop) view() mgl32.Mat4 {
	mode, point := l.opts.Look, mgl32.Vec3{}
	if mode == core.LookAtPoint {
		if l.res.Bounds.IsEmpty() {
			mode = core.LookForward
		} else {
			point = l.res.Bounds.Center()
		}
	}
	return l.camera.Transform().ViewMatrix(mode, point)
}

// Update measures dt, applies pending commands and advances the camera.
func (l *FrameLoop) Update(now time.Time) {
	l.phase = PhaseUpdating
	l.dt = l.clock.Tick(now)
	for _, cmd := range l.pending {
		l.camera.Apply(cmd)
	}
	l.pending = l.pending[:0]
	l.camera.Update(l.dt)
	l.viewProj = l.projection.Mul4(l.view())
}

// Encode records the frame. It reports false when no drawable is available;
// the frame is then skipped. Everything acquired is released by scope.
func (l *FrameLoop) Encode(scope *frameScope) (gpu.Drawable, gpu.CommandBuffer, bool, error) {
	l.phase = PhaseEncoding
	d, ok := l.dev.NextDrawable()
	if !ok {
		return nil, nil, false, nil
	}
	scope.Defer(d.Release)

	cb, err := l.dev.NewCommandBuffer()
	if err != nil {
		return nil, nil, false, err
	}
	scope.Defer(cb.Release)

	pass, err := cb.BeginRenderPass(d, l.depth, l.opts.Clear)
	if err != nil {
		return nil, nil, false, errors.Wrap(err, "begin render pass")
	}
	pass.SetPipeline(l.res.Pipeline)

	draws := 0
	for _, p := range l.res.Primitives {
		if p.IndexCount == 0 {
			continue
		}
		pass.SetVertexBuffer(0, l.res.Positions, uint64(p.VertexOffset)*positionStride)
		pass.SetVertexBuffer(1, l.res.Normals, uint64(p.VertexOffset)*positionStride)
		pass.SetIndexBuffer(l.res.Indices, uint64(p.IndexOffset)*indexStride)
		pass.SetTransform(l.res.Transform, l.viewProj)
		pass.DrawIndexed(p.IndexCount)
		draws++
	}
	if err := pass.End(); err != nil {
		return nil, nil, false, errors.Wrap(err, "end render pass")
	}
	l.Profiler.Add("draws", draws)
	return d, cb, true, nil
}

// Present submits cb and schedules d.
func (l *FrameLoop) Present(d gpu.Drawable, cb gpu.CommandBuffer) error {
	l.phase = PhasePresenting
	if err := l.dev.Present(d, cb); err != nil {
		return errors.Wrap(err, "present frame")
	}
	return nil
}

// Tick runs one frame. A stopped loop does nothing. Transient frame
// resources are released on every return path.
func (l *FrameLoop) Tick(now time.Time) error {
	if l.phase == PhaseStopped {
		return nil
	}
	scope := &frameScope{}
	defer scope.Release()
	defer func() {
		if l.phase != PhaseStopped {
			l.phase = PhaseIdle
		}
	}()

	l.Profiler.BeginScope("update")
	l.Update(now)
	l.Profiler.EndScope("update")
	// The title follows every update, drawn or not.
	if l.title != nil {
		l.title.SetTitle(fmt.Sprintf("%s: %v seconds", l.opts.Title, l.dt))
	}

	l.Profiler.BeginScope("encode")
	d, cb, ok, err := l.Encode(scope)
	l.Profiler.EndScope("encode")
	if err != nil {
		return err
	}
	if !ok {
		l.Skipped++
		l.Profiler.Add("skipped", 1)
		return nil
	}

	l.Profiler.BeginScope("present")
	err = l.Present(d, cb)
	l.Profiler.EndScope("present")
	if err != nil {
		return err
	}

	l.Frames++
	if l.log.DebugEnabled() && l.Frames%profileEvery == 0 {
		l.log.Debugf("%s", l.Profiler)
	}
	return nil
}

// Release frees the depth texture. The shared Resources belong to the
// caller.
func (l *FrameLoop) Release() {
	l.depth.Release()
	l.depth = nil
}
