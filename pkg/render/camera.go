package render

import (
	"math"

	"github.com/taigrr/nifview/pkg/math3d"
)

// Camera is a perspective camera with yaw and pitch orientation.
type Camera struct {
	Position math3d.Vec3

	Pitch float64 // Around X, look up/down
	Yaw   float64 // Around Y, look left/right

	FOV         float64 // Vertical field of view in radians
	AspectRatio float64
	Near        float64
	Far         float64

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	dirty          bool
}

// NewCamera creates a camera at (0, 0, 10) looking down -Z.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, 0, 10),
		FOV:         math.Pi / 3,
		AspectRatio: 1,
		Near:        0.1,
		Far:         1000,
		dirty:       true,
	}
}

// SetPosition moves the camera.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.dirty = true
}

// SetFOV sets the vertical field of view in radians.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.dirty = true
}

// SetAspectRatio sets width / height.
func (c *Camera) SetAspectRatio(aspect float64) {
	if aspect <= 0 {
		return
	}
	c.AspectRatio = aspect
	c.dirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.dirty = true
}

// Forward returns the viewing direction.
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// LookAt turns the camera toward target.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()
	if dir.LenSq() == 0 {
		return
	}
	c.Pitch = math.Asin(dir.Y)
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
	c.dirty = true
}

// Frame places the camera on the +Z side of a bounding sphere at a
// distance where the whole sphere fits the vertical field of view, and
// adjusts the clip planes around it.
func (c *Camera) Frame(s math3d.Sphere) {
	r := s.Radius
	if r <= 0 {
		r = 1
	}
	dist := r / math.Sin(c.FOV/2) * 1.1
	c.Position = s.Center.Add(math3d.V3(0, 0, dist))
	c.Near = max(dist-r*2, dist*0.01)
	c.Far = dist + r*2
	c.LookAt(s.Center)
}

// ViewMatrix returns the world to camera matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	c.update()
	return c.viewMatrix
}

// ProjectionMatrix returns the perspective projection.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	c.update()
	return c.projMatrix
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	c.update()
	return c.viewProjMatrix
}

func (c *Camera) update() {
	if !c.dirty {
		return
	}
	rot := math3d.RotateX(-c.Pitch).Mul(math3d.RotateY(-c.Yaw))
	c.viewMatrix = rot.Mul(math3d.Translate(c.Position.Negate()))
	c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
	c.viewProjMatrix = c.projMatrix.Mul(c.viewMatrix)
	c.dirty = false
}

// Frustum returns the current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// WorldToScreen projects a world point to pixel coordinates.
// visible is false for points behind the camera or outside the view volume.
func (c *Camera) WorldToScreen(p math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}
	x = (ndc.X + 1) * 0.5 * float64(width)
	y = (1 - ndc.Y) * 0.5 * float64(height)
	return x, y, ndc.Z, true
}
