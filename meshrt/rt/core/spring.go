package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Spring is a critically damped spring integrated in closed form, so the
// step is exact for any dt and never overshoots a fixed target.
type Spring struct {
	// Omega is the natural frequency in 1/s. Use SpringOmega to derive it
	// from a smoothing time.
	Omega float32
}

// SpringOmega converts a smoothing time constant in seconds to a natural
// frequency. Non-positive values disable smoothing.
func SpringOmega(smoothing float32) float32 {
	if smoothing <= 0 {
		return 0
	}
	return 2 / smoothing
}

// Step advances current toward target and returns the new value and
// velocity.
func (s Spring) Step(current, target, velocity, dt float32) (float32, float32) {
	if s.Omega <= 0 {
		return target, 0
	}
	if dt <= 0 {
		return current, velocity
	}
	x := current - target
	decay := float32(math.Exp(float64(-s.Omega * dt)))
	temp := (velocity + s.Omega*x) * dt
	velocity = (velocity - s.Omega*temp) * decay
	x = (x + temp) * decay
	return target + x, velocity
}

// StepVec3 applies Step per component.
func (s Spring) StepVec3(current, target, velocity mgl32.Vec3, dt float32) (mgl32.Vec3, mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		current[i], velocity[i] = s.Step(current[i], target[i], velocity[i], dt)
	}
	return current, velocity
}
