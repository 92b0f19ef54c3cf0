package config

import (
	"os"

	"github.com/gekko3d/meshloop/meshrt/rt/core"
	"github.com/gekko3d/meshloop/meshrt/rt/shaders"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	LookForward = "forward"
	LookCenter  = "center"
)

// Config is the viewer configuration. Zero shader fields are filled by
// Resolve depending on whether a scene is set.
type Config struct {
	Window     Window     `yaml:"window"`
	Shader     Shader     `yaml:"shader"`
	Scene      string     `yaml:"scene"`
	Camera     Camera     `yaml:"camera"`
	ClearColor [4]float64 `yaml:"clear_color"`
	Debug      bool       `yaml:"debug"`
	Progress   bool       `yaml:"progress"`
}

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type Shader struct {
	Library  string `yaml:"library"`
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

type Camera struct {
	Look      string     `yaml:"look"`
	Speed     float32    `yaml:"speed"`
	Smoothing float32    `yaml:"smoothing"` // seconds
	MaxDt     float32    `yaml:"max_dt"`    // seconds
	Fov       float32    `yaml:"fov"`       // degrees, vertical
	Near      float32    `yaml:"near"`
	Far       float32    `yaml:"far"`
	Position  [3]float32 `yaml:"position"`
}

func Default() Config {
	return Config{
		Window: Window{Width: 1280, Height: 720, Title: "Window App"},
		Camera: Camera{
			Look:      LookForward,
			Speed:     core.DefaultCameraSpeed,
			Smoothing: core.DefaultCameraSmoothing,
			MaxDt:     core.DefaultCameraMaxDt,
			Fov:       65,
			Near:      0.1,
			Far:       1000,
		},
		ClearColor: [4]float64{0.1, 0.2, 0.3, 1.0},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// The result is not resolved or validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config file %s", path)
	}
	return cfg, nil
}

// Resolve fills unset shader fields from the built-in triangle library
// without a scene, or the mesh library with one. It then validates the
// result.
func (c *Config) Resolve() error {
	lib, vs, fs := shaders.TriangleLibrary, shaders.TriangleVertex, shaders.TriangleFragment
	if c.Scene != "" {
		lib, vs, fs = shaders.MeshLibrary, shaders.MeshVertex, shaders.MeshFragment
	}
	if c.Shader.Library == "" {
		c.Shader.Library = lib
	}
	if c.Shader.Vertex == "" {
		c.Shader.Vertex = vs
	}
	if c.Shader.Fragment == "" {
		c.Shader.Fragment = fs
	}
	return c.Validate()
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Shader.Library == "" {
		return errors.New("shader library is not set")
	}
	if c.Shader.Vertex == "" || c.Shader.Fragment == "" {
		return errors.New("shader entry points must be named")
	}
	if _, err := c.Camera.LookMode(); err != nil {
		return err
	}
	cam := c.Camera
	if cam.Fov <= 0 || cam.Fov >= 180 {
		return errors.Errorf("camera fov %v out of range (0, 180)", cam.Fov)
	}
	if cam.Near <= 0 {
		return errors.Errorf("camera near plane %v must be positive", cam.Near)
	}
	if cam.Far <= cam.Near {
		return errors.Errorf("camera far plane %v must be beyond near plane %v", cam.Far, cam.Near)
	}
	if cam.Smoothing <= 0 {
		return errors.Errorf("camera smoothing %v must be positive", cam.Smoothing)
	}
	if cam.MaxDt <= 0 {
		return errors.Errorf("camera max_dt %v must be positive", cam.MaxDt)
	}
	return nil
}

func (c Camera) LookMode() (core.LookMode, error) {
	switch c.Look {
	case LookForward, "":
		return core.LookForward, nil
	case LookCenter:
		return core.LookAtPoint, nil
	}
	return core.LookForward, errors.Errorf("unknown camera look mode %q", c.Look)
}

func (c Camera) Start() core.CameraState {
	return core.CameraState{Position: mgl32.Vec3(c.Position)}
}
