package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func vecNear(a, b mgl32.Vec3) bool {
	return a.Sub(b).Len() < 1e-5
}

func TestFlyCameraAxes(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{})
	c.Yaw = 0
	c.Pitch = 0

	if f := c.Forward(); !vecNear(f, mgl32.Vec3{0, 0, -1}) {
		t.Errorf("Forward at rest = %v, want (0,0,-1)", f)
	}
	if r := c.Right(); !vecNear(r, mgl32.Vec3{1, 0, 0}) {
		t.Errorf("Right at rest = %v, want (1,0,0)", r)
	}

	// Quarter turn left: forward swings to -X, right to -Z.
	c.Yaw = mgl32.DegToRad(90)
	if f := c.Forward(); !vecNear(f, mgl32.Vec3{-1, 0, 0}) {
		t.Errorf("Forward after quarter turn = %v, want (-1,0,0)", f)
	}
	if r := c.Right(); !vecNear(r, mgl32.Vec3{0, 0, -1}) {
		t.Errorf("Right after quarter turn = %v, want (0,0,-1)", r)
	}
}

func TestFlyCameraPitchClamp(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{})

	c.HandleLook(0, -1e6)
	if c.Pitch != c.MaxPitch {
		t.Errorf("Pitch after looking far up = %v, want clamp at %v", c.Pitch, c.MaxPitch)
	}
	c.HandleLook(0, 1e6)
	if c.Pitch != c.MinPitch {
		t.Errorf("Pitch after looking far down = %v, want clamp at %v", c.Pitch, c.MinPitch)
	}
}

func TestFlyCameraMovement(t *testing.T) {
	c := NewFlyCamera(mgl32.Vec3{})
	c.Yaw = 0
	c.Pitch = 0
	c.MoveSpeed = 10

	c.HandleMovement(1, 0, 0, 0.5)
	if !vecNear(c.Position, mgl32.Vec3{0, 0, -5}) {
		t.Errorf("Position after forward move = %v, want (0,0,-5)", c.Position)
	}

	c.HandleMovement(0, 1, 1, 0.1)
	if !vecNear(c.Position, mgl32.Vec3{1, 1, -5}) {
		t.Errorf("Position after strafe = %v, want (1,1,-5)", c.Position)
	}
}
