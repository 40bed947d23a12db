package math3d

import "math"

// Transform is a rigid transform with uniform scale, the form every node
// and bone transform takes in block data. Points map as
// Rotation*p*Scale + Translation.
type Transform struct {
	Rotation    Mat3
	Translation Vec3
	Scale       float64
}

// IdentityTransform returns the transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{Rotation: Identity3(), Scale: 1}
}

// NewTransform builds a transform from its parts.
func NewTransform(rotation Mat3, translation Vec3, scale float64) Transform {
	return Transform{Rotation: rotation, Translation: translation, Scale: scale}
}

// Mul composes two transforms so that a.Mul(b).Apply(p) == a.Apply(b.Apply(p)).
func (a Transform) Mul(b Transform) Transform {
	return Transform{
		Rotation:    a.Rotation.Mul(b.Rotation),
		Translation: a.Translation.Add(a.Rotation.MulVec3(b.Translation).Scale(a.Scale)),
		Scale:       a.Scale * b.Scale,
	}
}

// Apply transforms a point.
func (t Transform) Apply(p Vec3) Vec3 {
	return t.Rotation.MulVec3(p).Scale(t.Scale).Add(t.Translation)
}

// Rotate transforms a direction by the rotation part only.
// Translation and scale never touch directions.
func (t Transform) Rotate(d Vec3) Vec3 {
	return t.Rotation.MulVec3(d)
}

// Inverse returns the inverse transform. A zero scale inverts to a zero
// scale rather than dividing by zero.
func (t Transform) Inverse() Transform {
	rt := t.Rotation.Transpose()
	inv := 0.0
	if t.Scale != 0 {
		inv = 1 / t.Scale
	}
	return Transform{
		Rotation:    rt,
		Translation: rt.MulVec3(t.Translation.Negate()).Scale(inv),
		Scale:       inv,
	}
}

// Mat4 expands the transform into a column-major matrix.
func (t Transform) Mat4() Mat4 {
	r, s := t.Rotation, t.Scale
	return Mat4{
		r[0] * s, r[1] * s, r[2] * s, 0,
		r[3] * s, r[4] * s, r[5] * s, 0,
		r[6] * s, r[7] * s, r[8] * s, 0,
		t.Translation.X, t.Translation.Y, t.Translation.Z, 1,
	}
}

// TransformFromMat4 decomposes an affine matrix into rotation, translation
// and a uniform scale (the mean column length). Shear and non-uniform
// scale are not representable and are averaged away.
func TransformFromMat4(m Mat4) Transform {
	basis := m.Mat3()
	c0, c1, c2 := basis.Column(0), basis.Column(1), basis.Column(2)
	l0, l1, l2 := c0.Len(), c1.Len(), c2.Len()

	scale := (l0 + l1 + l2) / 3
	if scale == 0 || math.IsNaN(scale) {
		return Transform{Rotation: Identity3(), Translation: m.Translation(), Scale: 0}
	}

	c0, c1, c2 = c0.Normalize(), c1.Normalize(), c2.Normalize()
	return Transform{
		Rotation: Mat3{
			c0.X, c0.Y, c0.Z,
			c1.X, c1.Y, c1.Z,
			c2.X, c2.Y, c2.Z,
		},
		Translation: m.Translation(),
		Scale:       scale,
	}
}
