package app

import (
	"github.com/gekko3d/meshloop/meshrt/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

// Event is a platform event translated for the FrameLoop: CloseEvent,
// ResizeEvent or KeyEvent.
type Event interface {
	isEvent()
}

type CloseEvent struct{}

// ResizeEvent carries the new drawable size in pixels.
type ResizeEvent struct {
	Width  int
	Height int
}

type KeyEvent struct {
	Key Key
}

func (CloseEvent) isEvent()  {}
func (ResizeEvent) isEvent() {}
func (KeyEvent) isEvent()    {}

type Key int

const (
	KeyUnknown Key = iota
	KeyZ
	KeyX
	KeyW
	KeyS
	KeyA
	KeyD
)

var keyCommands = map[Key]core.CameraCommand{
	KeyZ: core.RotateYaw(-90),
	KeyX: core.RotateYaw(90),
	KeyW: core.Move(mgl32.Vec3{0, 0, -1}),
	KeyS: core.Move(mgl32.Vec3{0, 0, 1}),
	KeyA: core.Move(mgl32.Vec3{-1, 0, 0}),
	KeyD: core.Move(mgl32.Vec3{1, 0, 0}),
}

// CommandForKey maps a key to its camera command.
func CommandForKey(k Key) (core.CameraCommand, bool) {
	cmd, ok := keyCommands[k]
	return cmd, ok
}
