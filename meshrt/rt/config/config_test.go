package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/meshloop/meshrt/rt/core"
	"github.com/gekko3d/meshloop/meshrt/rt/shaders"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ResolvesToTriangle(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Resolve())

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "Window App", cfg.Window.Title)
	assert.Equal(t, Shader{
		Library:  shaders.TriangleLibrary,
		Vertex:   shaders.TriangleVertex,
		Fragment: shaders.TriangleFragment,
	}, cfg.Shader)
	assert.Equal(t, float32(65), cfg.Camera.Fov)
	assert.Equal(t, mgl32.Vec3{}, cfg.Camera.Start().Position)
}

func TestResolve_SceneUsesMeshShader(t *testing.T) {
	cfg := Default()
	cfg.Scene = "scene.glb"
	require.NoError(t, cfg.Resolve())
	assert.Equal(t, shaders.MeshLibrary, cfg.Shader.Library)
	assert.Equal(t, shaders.MeshVertex, cfg.Shader.Vertex)

	// An explicit library keeps its own entry points.
	cfg = Default()
	cfg.Shader = Shader{Library: "custom.wgsl", Vertex: "vs", Fragment: "fs"}
	require.NoError(t, cfg.Resolve())
	assert.Equal(t, Shader{Library: "custom.wgsl", Vertex: "vs", Fragment: "fs"}, cfg.Shader)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
window:
  width: 800
  height: 600
scene: models/box.gltf
camera:
  look: center
  position: [0, 1, 5]
debug: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Resolve())

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, "Window App", cfg.Window.Title)
	assert.Equal(t, "models/box.gltf", cfg.Scene)
	assert.True(t, cfg.Debug)
	assert.Equal(t, float32(1000), cfg.Camera.Far)
	assert.Equal(t, mgl32.Vec3{0, 1, 5}, cfg.Camera.Start().Position)

	mode, err := cfg.Camera.LookMode()
	require.NoError(t, err)
	assert.Equal(t, core.LookAtPoint, mode)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: [1, 2"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"negative height", func(c *Config) { c.Window.Height = -1 }},
		{"empty vertex", func(c *Config) { c.Shader.Vertex = "" }},
		{"empty fragment", func(c *Config) { c.Shader.Fragment = "" }},
		{"unknown look", func(c *Config) { c.Camera.Look = "sideways" }},
		{"zero fov", func(c *Config) { c.Camera.Fov = 0 }},
		{"flat fov", func(c *Config) { c.Camera.Fov = 180 }},
		{"zero near", func(c *Config) { c.Camera.Near = 0 }},
		{"far before near", func(c *Config) { c.Camera.Far = 0.05 }},
		{"zero smoothing", func(c *Config) { c.Camera.Smoothing = 0 }},
		{"zero max dt", func(c *Config) { c.Camera.MaxDt = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, cfg.Resolve())
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
