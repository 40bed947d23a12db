package math3d

import "math"

// Sphere is a bounding sphere.
type Sphere struct {
	Center Vec3
	Radius float64
}

// NewSphere creates a sphere.
func NewSphere(center Vec3, radius float64) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// SphereFromPoints bounds a point set: the center is the middle of the
// axis-aligned box and the radius the farthest point from it.
// An empty set gives the zero sphere.
func SphereFromPoints(points []Vec3) Sphere {
	if len(points) == 0 {
		return Sphere{}
	}

	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	center := lo.Add(hi).Scale(0.5)

	var r2 float64
	for _, p := range points {
		if d := p.Sub(center).LenSq(); d > r2 {
			r2 = d
		}
	}
	return Sphere{Center: center, Radius: math.Sqrt(r2)}
}

// Transform maps the sphere through t.
func (s Sphere) Transform(t Transform) Sphere {
	scale := t.Scale
	if scale < 0 {
		scale = -scale
	}
	return Sphere{Center: t.Apply(s.Center), Radius: s.Radius * scale}
}

// InverseTransform maps the sphere through the inverse of t.
func (s Sphere) InverseTransform(t Transform) Sphere {
	return s.Transform(t.Inverse())
}

// Merge returns a sphere enclosing both. Spheres with a non-positive
// radius are treated as empty.
func (s Sphere) Merge(o Sphere) Sphere {
	switch {
	case o.Radius <= 0:
		return s
	case s.Radius <= 0:
		return o
	}

	d := o.Center.Sub(s.Center)
	dist := d.Len()
	if dist+o.Radius <= s.Radius {
		return s
	}
	if dist+s.Radius <= o.Radius {
		return o
	}

	radius := (dist + s.Radius + o.Radius) / 2
	center := s.Center.AddScaled(d, (radius-s.Radius)/dist)
	return Sphere{Center: center, Radius: radius}
}
