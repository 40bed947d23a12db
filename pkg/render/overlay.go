package render

import (
	"math"

	"github.com/taigrr/nifview/pkg/math3d"
)

// VectorKind selects a per-vertex direction for the vector overlay.
type VectorKind int

const (
	VectorNormal VectorKind = iota
	VectorTangent
	VectorBitangent
)

func (k VectorKind) String() string {
	switch k {
	case VectorNormal:
		return "normals"
	case VectorTangent:
		return "tangents"
	case VectorBitangent:
		return "bitangents"
	}
	return "unknown"
}

// Color returns the overlay color for the kind.
func (k VectorKind) Color() Color {
	switch k {
	case VectorTangent:
		return ColorTangent
	case VectorBitangent:
		return ColorBitangent
	}
	return ColorNormal
}

// VectorLength is the overlay line length for a shape of the given
// bounding radius.
func VectorLength(radius float64) float64 {
	return max(radius/20, 0.1)
}

// DrawVectors draws a line of the given length from each point along its
// direction. Extra points or directions are ignored.
func (r *Rasterizer) DrawVectors(points, dirs []math3d.Vec3, transform math3d.Transform, length float64, color Color) {
	n := min(len(points), len(dirs))
	for i := 0; i < n; i++ {
		d := transform.Rotate(dirs[i]).Normalize()
		if d.LenSq() == 0 {
			continue
		}
		p := transform.Apply(points[i])
		r.drawLine3D(p, p.AddScaled(d, length), color)
	}
}

// pointBias lets points sitting on a surface win the depth test.
const pointBias = 1e-3

// DrawVertices plots every vertex of the mesh as a single pixel, hidden
// behind nearer surfaces.
func (r *Rasterizer) DrawVertices(mesh MeshRenderer, transform math3d.Transform, color Color) {
	if r.cull(mesh, transform) {
		return
	}
	w, h := r.Width(), r.Height()
	for i := 0; i < mesh.VertexCount(); i++ {
		p, _, _ := mesh.GetVertex(i)
		x, y, z, ok := r.camera.WorldToScreen(transform.Apply(p), w, h)
		if !ok {
			continue
		}
		px, py := min(int(x), w-1), min(int(y), h-1)
		idx := py*w + px
		if z <= r.zbuffer[idx]+pointBias {
			r.fb.Pixels[idx] = color
		}
	}
}

// sphereSegments is the number of segments per great circle.
const sphereSegments = 24

// DrawSphere outlines a bounding sphere with its three axis aligned great
// circles. Spheres outside the frustum are skipped.
func (r *Rasterizer) DrawSphere(s math3d.Sphere, transform math3d.Transform, color Color) {
	s = s.Transform(transform)
	if s.Radius <= 0 || !r.IsSphereVisible(s) {
		return
	}
	circle := func(u, v math3d.Vec3) {
		prev := s.Center.AddScaled(u, s.Radius)
		for i := 1; i <= sphereSegments; i++ {
			a := 2 * math.Pi * float64(i) / sphereSegments
			next := s.Center.AddScaled(u, s.Radius*math.Cos(a)).AddScaled(v, s.Radius*math.Sin(a))
			r.drawLine3D(prev, next, color)
			prev = next
		}
	}
	x, y, z := math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, 1)
	circle(x, y)
	circle(y, z)
	circle(z, x)
}
