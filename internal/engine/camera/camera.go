// Package camera provides camera implementations for 3D rendering.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// FlyCamera is a free-look camera driven by yaw/pitch and WASD-style
// movement.
type FlyCamera struct {
	Position mgl32.Vec3

	// Orientation (radians); yaw 0 looks toward -Z, positive pitch
	// looks up.
	Yaw   float32
	Pitch float32

	// Constraints
	MinPitch float32
	MaxPitch float32

	// Sensitivity
	MoveSpeed       float32 // units per second
	LookSensitivity float32 // radians per pixel

	// Projection
	FOV  float32 // vertical, radians
	Near float32
	Far  float32
}

// NewFlyCamera creates a fly camera with default settings at the given
// position.
func NewFlyCamera(pos mgl32.Vec3) *FlyCamera {
	return &FlyCamera{
		Position:        pos,
		Pitch:           -0.3,
		MinPitch:        -1.55,
		MaxPitch:        1.55,
		MoveSpeed:       24.0,
		LookSensitivity: 0.0025,
		FOV:             mgl32.DegToRad(70),
		Near:            0.1,
		Far:             512.0,
	}
}

// Forward returns the unit view direction.
func (c *FlyCamera) Forward() mgl32.Vec3 {
	cy := float32(gomath.Cos(float64(c.Yaw)))
	sy := float32(gomath.Sin(float64(c.Yaw)))
	cp := float32(gomath.Cos(float64(c.Pitch)))
	sp := float32(gomath.Sin(float64(c.Pitch)))
	return mgl32.Vec3{-sy * cp, sp, -cy * cp}
}

// Right returns the unit right vector on the horizontal plane.
func (c *FlyCamera) Right() mgl32.Vec3 {
	cy := float32(gomath.Cos(float64(c.Yaw)))
	sy := float32(gomath.Sin(float64(c.Yaw)))
	return mgl32.Vec3{cy, 0, -sy}
}

// ViewMatrix returns the view matrix for this camera.
func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns the perspective projection for the given
// aspect ratio.
func (c *FlyCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view for the given aspect ratio.
func (c *FlyCamera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}

// HandleLook updates orientation from a mouse delta in pixels.
func (c *FlyCamera) HandleLook(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.LookSensitivity
	c.Pitch -= deltaY * c.LookSensitivity

	// Clamp pitch
	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
}

// HandleMovement translates the camera: forward, right and up are
// -1..1 axis inputs, dt is the frame time in seconds.
func (c *FlyCamera) HandleMovement(forward, right, up, dt float32) {
	step := c.MoveSpeed * dt
	c.Position = c.Position.
		Add(c.Forward().Mul(forward * step)).
		Add(c.Right().Mul(right * step)).
		Add(mgl32.Vec3{0, up * step, 0})
}
