package app

import (
	"fmt"
	"os"
	"time"

	"github.com/gekko3d/meshloop"
	"github.com/gekko3d/meshloop/meshrt/rt/config"
	"github.com/gekko3d/meshloop/meshrt/rt/core"
	"github.com/gekko3d/meshloop/meshrt/rt/gpu"
	"github.com/gekko3d/meshloop/meshrt/rt/mesh"
	"github.com/gekko3d/meshloop/meshrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// Movement keys are polled every frame while held.
var heldKeys = map[glfw.Key]Key{
	glfw.KeyW: KeyW,
	glfw.KeyS: KeyS,
	glfw.KeyA: KeyA,
	glfw.KeyD: KeyD,
}

// Rotation keys fire once per press.
var pressedKeys = map[glfw.Key]Key{
	glfw.KeyZ: KeyZ,
	glfw.KeyX: KeyX,
}

type App struct {
	Window *glfw.Window
	Config config.Config
	Log    meshloop.Logger

	Context  *gpu.RenderContext
	Geometry *mesh.Geometry
	Loop     *FrameLoop

	res       Resources
	shaderDir string
}

func NewApp(window *glfw.Window, cfg config.Config, log meshloop.Logger) *App {
	return &App{
		Window: window,
		Config: cfg,
		Log:    meshloop.OrNop(log),
	}
}

// Init creates every long-lived resource. Any error is fatal to the caller.
func (a *App) Init() error {
	width, height := a.Window.GetFramebufferSize()
	ctx, err := gpu.NewRenderContext(wgpuglfw.GetSurfaceDescriptor(a.Window), uint32(width), uint32(height), a.Log)
	if err != nil {
		return errors.Wrap(err, "render context")
	}
	a.Context = ctx

	prims, err := a.loadScene()
	if err != nil {
		return err
	}
	if a.Geometry, err = a.ingest(prims); err != nil {
		return err
	}
	if err := a.upload(); err != nil {
		return err
	}
	if err := a.buildPipeline(); err != nil {
		return err
	}

	cam := a.Config.Camera
	rig := core.NewCameraRig(cam.Start())
	rig.Speed = cam.Speed
	rig.MaxDt = cam.MaxDt
	rig.SetSmoothing(cam.Smoothing)

	look, err := cam.LookMode()
	if err != nil {
		return err
	}
	cc := a.Config.ClearColor
	a.Loop, err = NewFrameLoop(ctx, a.res, rig, LoopOptions{
		Title: a.Config.Window.Title,
		Look:  look,
		Fov:   cam.Fov,
		Near:  cam.Near,
		Far:   cam.Far,
		Clear: gpu.ClearValues{Color: wgpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}, Depth: 1},
	}, time.Now(), a.Log)
	if err != nil {
		return err
	}
	a.Loop.SetTitleSink(a.Window)

	a.Window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		a.dispatch(ResizeEvent{Width: width, Height: height})
	})
	a.Window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if key == glfw.KeyEscape {
			w.SetShouldClose(true)
			return
		}
		if k, ok := pressedKeys[key]; ok {
			a.dispatch(KeyEvent{Key: k})
		}
	})
	return nil
}

func (a *App) loadScene() ([]mesh.Primitive, error) {
	if a.Config.Scene == "" {
		a.Log.Infof("no scene set, drawing the built-in triangle")
		return mesh.Triangle(), nil
	}
	res, err := mesh.LoadGLTF(a.Config.Scene)
	if err != nil {
		return nil, err
	}
	if res.Skipped > 0 {
		a.Log.Warnf("scene %s: skipped %d non-triangle primitives", a.Config.Scene, res.Skipped)
	}
	return res.Primitives, nil
}

func (a *App) ingest(prims []mesh.Primitive) (*mesh.Geometry, error) {
	var in mesh.Ingestor
	if a.Config.Progress && len(prims) > 0 {
		bar := progressbar.Default(int64(len(prims)), "ingesting primitives")
		defer bar.Finish()
		in.Progress = func(done, total int) {
			_ = bar.Set(done)
		}
	}
	g, err := in.Ingest(prims)
	if err != nil {
		return nil, errors.Wrap(err, "ingest scene")
	}
	if err := g.CheckDrawable(); err != nil {
		return nil, errors.Wrapf(err, "scene %q", a.Config.Scene)
	}
	a.Log.Infof("scene %s: %d primitives, %d vertices, %d indices, bounds %v..%v",
		g.ID, len(g.Primitives), g.VertexCount(), g.IndexCount(), g.Bounds.Min, g.Bounds.Max)
	return g, nil
}

func (a *App) upload() error {
	g := a.Geometry
	var err error
	a.res.Primitives = g.Primitives
	a.res.Bounds = g.Bounds
	if a.res.Positions, err = a.Context.CreateVertexBuffer(fmt.Sprintf("%s positions", g.ID), g.Positions); err != nil {
		return err
	}
	if a.res.Normals, err = a.Context.CreateVertexBuffer(fmt.Sprintf("%s normals", g.ID), g.Normals); err != nil {
		return err
	}
	if a.res.Indices, err = a.Context.CreateIndexBuffer(fmt.Sprintf("%s indices", g.ID), g.Indices); err != nil {
		return err
	}
	return nil
}

func (a *App) buildPipeline() error {
	dir, err := os.MkdirTemp("", "meshloop-shaders")
	if err != nil {
		return errors.Wrap(err, "shader dir")
	}
	a.shaderDir = dir

	sh := a.Config.Shader
	path, err := shaders.Resolve(sh.Library, dir)
	if err != nil {
		return err
	}
	b := gpu.NewPipelineBuilder().
		WithShaderLibrary(path).
		WithVertexFunction(sh.Vertex).
		WithFragmentFunction(sh.Fragment).
		WithColorAttachment(a.Context.SurfaceFormat())

	a.res.Pipeline, err = a.Context.CreateRasterPipeline(b, a.Context.CreateDepthStencilState())
	if err != nil {
		return err
	}
	a.res.Transform, err = a.Context.CreateUniform("Transform", gpu.TransformSize, a.res.Pipeline, 0)
	return err
}

func (a *App) dispatch(ev Event) {
	if err := a.Loop.HandleEvent(ev); err != nil {
		a.Log.Warnf("event %T: %v", ev, err)
	}
}

func (a *App) pollHeldKeys() {
	for gk, k := range heldKeys {
		if a.Window.GetKey(gk) == glfw.Press {
			a.dispatch(KeyEvent{Key: k})
		}
	}
}

// Run drives the loop until the window is closed.
func (a *App) Run() {
	for !a.Loop.Stopped() {
		glfw.PollEvents()
		if a.Window.ShouldClose() {
			a.dispatch(CloseEvent{})
			break
		}
		a.pollHeldKeys()
		if err := a.Loop.Tick(time.Now()); err != nil {
			a.Log.Warnf("frame %d: %v", a.Loop.Frames, err)
		}
	}
	a.Log.Infof("stopped after %d frames (%d skipped)", a.Loop.Frames, a.Loop.Skipped)
}

func (a *App) Release() {
	if a.Loop != nil {
		a.Loop.Release()
	}
	a.res.Transform.Release()
	a.res.Pipeline.Release()
	a.res.Indices.Release()
	a.res.Normals.Release()
	a.res.Positions.Release()
	if a.Context != nil {
		a.Context.Release()
	}
	if a.shaderDir != "" {
		os.RemoveAll(a.shaderDir)
	}
}
