package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/gekko3d/meshloop"
	"github.com/gekko3d/meshloop/meshrt/rt/app"
	"github.com/gekko3d/meshloop/meshrt/rt/config"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML viewer configuration")
	scene := flag.String("scene", "", "glTF scene to draw (default: built-in triangle)")
	shader := flag.String("shader", "", "Shader library (WGSL or SPIR-V)")
	debug := flag.Bool("debug", false, "Enable debug logging and frame timings")
	progress := flag.Bool("progress", false, "Show scene ingestion progress")
	flag.Parse()

	logger := meshloop.NewDefaultLogger("meshrt", *debug)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(logger, err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			cfg.Scene = *scene
		case "shader":
			cfg.Shader.Library = *shader
		case "debug":
			cfg.Debug = *debug
		case "progress":
			cfg.Progress = *progress
		}
	})
	if err := cfg.Resolve(); err != nil {
		fatal(logger, err)
	}
	logger.SetDebug(cfg.Debug)

	if err := glfw.Init(); err != nil {
		fatal(logger, err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		fatal(logger, err)
	}
	defer window.Destroy()

	application := app.NewApp(window, cfg, logger)
	defer application.Release()
	if err := application.Init(); err != nil {
		fatal(logger, err)
	}
	application.Run()
}

// fatal ends the process. Deferred cleanup does not run; the OS reclaims
// the window and device.
func fatal(logger meshloop.Logger, err error) {
	logger.Errorf("%v", err)
	os.Exit(1)
}
