package render

import (
	"github.com/taigrr/nifview/pkg/math3d"
)

// Plane is the plane Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point,
// positive on the side the normal points to.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six view planes with inward facing normals.
type Frustum struct {
	Planes [6]Plane
}

// Frustum plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts the planes of a column-major
// view-projection matrix (Gribb/Hartmann).
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	// Row i, column j lives at m[i+4*j].
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	w, wd := row(3)

	var f Frustum
	for axis := 0; axis < 3; axis++ {
		n, d := row(axis)
		f.Planes[axis*2] = Plane{Normal: w.Add(n), D: wd + d}
		f.Planes[axis*2+1] = Plane{Normal: w.Sub(n), D: wd - d}
	}
	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// ContainsPoint reports whether p is inside all six planes.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether any part of s can be inside the
// frustum. A zero radius sphere is tested as a point.
func (f Frustum) IntersectsSphere(s math3d.Sphere) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}
