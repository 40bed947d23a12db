package math3d

import "math"

// Mat4 is a column-major 4x4 matrix: element (row, col) is at
// col*4 + row. Only the camera and rasterizer use it; bone math stays
// on Transform.
type Mat4 [16]float64

// affine builds [basis | t] with a bottom row of 0 0 0 1.
func affine(basis Mat3, t Vec3) Mat4 {
	var m Mat4
	for col := range 3 {
		c := basis.Column(col)
		m[col*4], m[col*4+1], m[col*4+2] = c.X, c.Y, c.Z
	}
	m[12], m[13], m[14], m[15] = t.X, t.Y, t.Z, 1
	return m
}

func Translate(v Vec3) Mat4 { return affine(Identity3(), v) }

// RotateX and RotateY turn counter-clockwise about their axis when
// looking down it toward the origin.
func RotateX(angle float64) Mat4 { return affine(Rotation3(V3(1, 0, 0), angle), Vec3{}) }

func RotateY(angle float64) Mat4 { return affine(Rotation3(V3(0, 1, 0), angle), Vec3{}) }

// Perspective is the OpenGL style projection: eye space looks down -Z and
// depth maps to [-1, 1] between near and far.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	focal := 1 / math.Tan(fovy/2)
	inv := 1 / (near - far)
	var m Mat4
	m[0] = focal / aspect
	m[5] = focal
	m[10] = (far + near) * inv
	m[11] = -1
	m[14] = 2 * far * near * inv
	return m
}

// Mul returns a*b.
func (a Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for i := range out {
		row, col := i%4, i/4
		out[i] = a[row]*b[col*4] + a[row+4]*b[col*4+1] + a[row+8]*b[col*4+2] + a[row+12]*b[col*4+3]
	}
	return out
}

func (m Mat4) MulVec4(v Vec4) Vec4 {
	var out [4]float64
	for row := range out {
		out[row] = m[row]*v.X + m[row+4]*v.Y + m[row+8]*v.Z + m[row+12]*v.W
	}
	return Vec4{out[0], out[1], out[2], out[3]}
}

// MulVec3 maps a point with w = 1 and divides by the resulting w.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).PerspectiveDivide()
}

// Translation is the fourth column.
func (m Mat4) Translation() Vec3 { return Vec3{m[12], m[13], m[14]} }

// Mat3 is the upper left block: rotation times scale for an affine matrix.
func (m Mat4) Mat3() Mat3 {
	return Mat3{m[0], m[1], m[2], m[4], m[5], m[6], m[8], m[9], m[10]}
}
