package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// clipDepthCorrection maps OpenGL clip depth [-1, 1] onto WebGPU's [0, 1].
var clipDepthCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Perspective builds a right-handed projection with a [0, 1] depth range.
// fovY is in degrees. A zero-area viewport uses aspect 1.
func Perspective(fovY float32, width, height uint32, near, far float32) mgl32.Mat4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return clipDepthCorrection.Mul4(mgl32.Perspective(mgl32.DegToRad(fovY), aspect, near, far))
}
