package render

import (
	"math"
	"testing"

	"github.com/taigrr/nifview/pkg/math3d"
)

func TestCameraLookAt(t *testing.T) {
	tests := []struct {
		name   string
		pos    math3d.Vec3
		target math3d.Vec3
	}{
		{"down -Z", math3d.V3(0, 0, 10), math3d.Zero3()},
		{"from the side", math3d.V3(10, 0, 0), math3d.Zero3()},
		{"from above", math3d.V3(0, 5, 5), math3d.V3(0, 0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCamera()
			c.SetPosition(tc.pos)
			c.LookAt(tc.target)

			want := tc.target.Sub(tc.pos).Normalize()
			if got := c.Forward(); got.Sub(want).Len() > 1e-9 {
				t.Errorf("Forward() = %v, want %v", got, want)
			}
			x, y, _, ok := c.WorldToScreen(tc.target, 100, 100)
			if !ok || math.Abs(x-50) > 1e-6 || math.Abs(y-50) > 1e-6 {
				t.Errorf("target projects to (%v, %v, %v), want screen center", x, y, ok)
			}
		})
	}
}

func TestCameraFrame(t *testing.T) {
	s := math3d.NewSphere(math3d.V3(3, -2, 1), 4)
	c := NewCamera()
	c.Frame(s)

	x, y, _, ok := c.WorldToScreen(s.Center, 80, 80)
	if !ok || math.Abs(x-40) > 1e-6 || math.Abs(y-40) > 1e-6 {
		t.Fatalf("center projects to (%v, %v, %v)", x, y, ok)
	}
	for _, d := range []math3d.Vec3{
		math3d.V3(1, 0, 0), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0),
		math3d.V3(0, -1, 0), math3d.V3(0, 0, 1), math3d.V3(0, 0, -1),
	} {
		p := s.Center.AddScaled(d, s.Radius)
		if _, _, _, ok := c.WorldToScreen(p, 80, 80); !ok {
			t.Errorf("sphere extreme %v is not visible", p)
		}
	}
}

func TestCameraFrameEmptySphere(t *testing.T) {
	c := NewCamera()
	c.Frame(math3d.Sphere{})
	if c.Position.Z <= 0 || c.Near <= 0 || c.Far <= c.Near {
		t.Errorf("degenerate framing: pos %v near %v far %v", c.Position, c.Near, c.Far)
	}
}

func TestWorldToScreenBehindCamera(t *testing.T) {
	c := NewCamera()
	if _, _, _, ok := c.WorldToScreen(math3d.V3(0, 0, 20), 10, 10); ok {
		t.Error("point behind the camera reported visible")
	}
}
