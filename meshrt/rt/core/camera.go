package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultCameraSpeed     = 2.0
	DefaultCameraSmoothing = 1.0
	DefaultCameraMaxDt     = 0.25

	maxPitch = 89.0 * math.Pi / 180.0
)

var worldUp = mgl32.Vec3{0, 1, 0}

// CameraState is a position plus yaw/pitch in radians. Yaw 0, pitch 0 looks
// down -Z with +Y up; positive yaw turns toward +X.
type CameraState struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
}

func (c CameraState) Rotation() mgl32.Quat {
	yaw := mgl32.QuatRotate(-c.Yaw, worldUp)
	pitch := mgl32.QuatRotate(c.Pitch, mgl32.Vec3{1, 0, 0})
	return yaw.Mul(pitch).Normalize()
}

func (c CameraState) GetForward() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Sin(float64(c.Yaw)) * math.Cos(float64(c.Pitch))),
		float32(math.Sin(float64(c.Pitch))),
		float32(-math.Cos(float64(c.Yaw)) * math.Cos(float64(c.Pitch))),
	}
}

func (c CameraState) GetRight() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Yaw))),
		0,
		float32(math.Sin(float64(c.Yaw))),
	}
}

// CameraTransform is the rendered camera pose.
type CameraTransform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func (t CameraTransform) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

// LookMode selects what the view matrix looks at.
type LookMode int

const (
	// LookForward looks from the position along the camera's forward vector.
	LookForward LookMode = iota
	// LookAtPoint keeps looking at a fixed point, usually the scene center.
	LookAtPoint
)

// ViewMatrix derives the view matrix for mode. point is only used by
// LookAtPoint; if the camera sits on the point it falls back to LookForward.
func (t CameraTransform) ViewMatrix(mode LookMode, point mgl32.Vec3) mgl32.Mat4 {
	eye := t.Position
	target := eye.Add(t.Forward())
	if mode == LookAtPoint && point.Sub(eye).Len() > 1e-6 {
		target = point
	}
	up := worldUp
	dir := target.Sub(eye).Normalize()
	if math.Abs(float64(dir.Dot(up))) > 0.999 {
		// Looking straight up or down: the camera's right axis stays horizontal.
		right := t.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
		up = right.Cross(dir).Normalize()
	}
	return mgl32.LookAtV(eye, target, up)
}

type CommandKind int

const (
	CommandRotateYaw CommandKind = iota
	CommandMove
)

// CameraCommand is a discrete input command. Commands only touch the target
// state; the smoothed state follows in Update.
type CameraCommand struct {
	Kind      CommandKind
	Angle     float32    // radians, CommandRotateYaw
	Direction mgl32.Vec3 // camera-local unit axis, CommandMove
}

func RotateYaw(degrees float32) CameraCommand {
	return CameraCommand{Kind: CommandRotateYaw, Angle: mgl32.DegToRad(degrees)}
}

func Move(direction mgl32.Vec3) CameraCommand {
	return CameraCommand{Kind: CommandMove, Direction: direction}
}

// CameraRig keeps a raw target pose driven by commands and a smoothed pose
// that chases it with a critically damped spring.
type CameraRig struct {
	Target   CameraState
	Smoothed CameraState

	Speed float32
	MaxDt float32

	spring   Spring
	move     mgl32.Vec3
	velocity mgl32.Vec3
	yawVel   float32
	pitchVel float32
}

func NewCameraRig(start CameraState) *CameraRig {
	return &CameraRig{
		Target:   start,
		Smoothed: start,
		Speed:    DefaultCameraSpeed,
		MaxDt:    DefaultCameraMaxDt,
		spring:   Spring{Omega: SpringOmega(DefaultCameraSmoothing)},
	}
}

// SetSmoothing sets the spring time constant in seconds, shared by position
// and orientation.
func (r *CameraRig) SetSmoothing(seconds float32) {
	r.spring.Omega = SpringOmega(seconds)
}

func (r *CameraRig) Apply(cmd CameraCommand) {
	switch cmd.Kind {
	case CommandRotateYaw:
		r.Target.Yaw += cmd.Angle
	case CommandMove:
		r.move = r.move.Add(cmd.Direction)
	}
}

// Update advances the rig by dt seconds and clears the movement accumulated
// since the previous update.
func (r *CameraRig) Update(dt float32) {
	if dt <= 0 {
		r.move = mgl32.Vec3{}
		return
	}
	if r.MaxDt > 0 && dt > r.MaxDt {
		dt = r.MaxDt
	}

	input := r.move
	if input.Len() > 1 {
		input = input.Normalize()
	}
	r.move = mgl32.Vec3{}

	velocity := r.Smoothed.Rotation().Rotate(input).Mul(r.Speed)
	r.Target.Position = r.Target.Position.Add(velocity.Mul(dt))
	r.Target.Pitch = clampPitch(r.Target.Pitch)

	r.Smoothed.Position, r.velocity = r.spring.StepVec3(r.Smoothed.Position, r.Target.Position, r.velocity, dt)
	r.Smoothed.Yaw, r.yawVel = r.spring.Step(r.Smoothed.Yaw, r.Target.Yaw, r.yawVel, dt)
	r.Smoothed.Pitch, r.pitchVel = r.spring.Step(r.Smoothed.Pitch, r.Target.Pitch, r.pitchVel, dt)
}

func (r *CameraRig) Transform() CameraTransform {
	return CameraTransform{
		Position: r.Smoothed.Position,
		Rotation: r.Smoothed.Rotation(),
	}
}

func clampPitch(p float32) float32 {
	if p > maxPitch {
		return maxPitch
	}
	if p < -maxPitch {
		return -maxPitch
	}
	return p
}
