// Package math3d provides the 3D math primitives nifview skins and draws with.
package math3d

import "math"

// Vec2 is a texture coordinate.
type Vec2 struct {
	X, Y float64
}

func V2(x, y float64) Vec2 { return Vec2{x, y} }

// Vec3 is a position or direction. Block data stores these as float32;
// everything past decoding works in float64.
type Vec3 struct {
	X, Y, Z float64
}

func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func Zero3() Vec3 { return Vec3{} }

// V3FromFloat32 widens a stored float32 triple.
func V3FromFloat32(f [3]float32) Vec3 {
	return Vec3{float64(f[0]), float64(f[1]), float64(f[2])}
}

// Float32 narrows v to the precision block data is stored at.
func (a Vec3) Float32() [3]float32 {
	return [3]float32{float32(a.X), float32(a.Y), float32(a.Z)}
}

func (a Vec3) Add(b Vec3) Vec3 { return a.AddScaled(b, 1) }

func (a Vec3) Sub(b Vec3) Vec3 { return a.AddScaled(b, -1) }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{s * a.X, s * a.Y, s * a.Z} }

func (a Vec3) Negate() Vec3 { return a.Scale(-1) }

// AddScaled returns a + s*b. Skinning accumulates every weighted
// influence through it.
func (a Vec3) AddScaled(b Vec3, s float64) Vec3 {
	return Vec3{a.X + s*b.X, a.Y + s*b.Y, a.Z + s*b.Z}
}

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross returns a × b (right handed).
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) LenSq() float64 { return a.Dot(a) }

func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }

func (a Vec3) Distance(b Vec3) float64 { return b.Sub(a).Len() }

// Normalize scales a to unit length. Zero stays zero, so directions no
// bone reached come out of the skinning pass as zero.
func (a Vec3) Normalize() Vec3 {
	if l := a.Len(); l > 0 {
		return Vec3{a.X / l, a.Y / l, a.Z / l}
	}
	return Vec3{}
}

// Min and Max work per component.
func (a Vec3) Min(b Vec3) Vec3 { return Vec3{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)} }

func (a Vec3) Max(b Vec3) Vec3 { return Vec3{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)} }

// Vec4 is a homogeneous point. Dynamic shapes also store positions as
// Vec4 with W unused.
type Vec4 struct {
	X, Y, Z, W float64
}

func V4(x, y, z, w float64) Vec4 { return Vec4{x, y, z, w} }

func V4FromV3(v Vec3, w float64) Vec4 { return Vec4{v.X, v.Y, v.Z, w} }

// Vec3 drops W.
func (v Vec4) Vec3() Vec3 { return Vec3{v.X, v.Y, v.Z} }

// PerspectiveDivide divides through by W. A zero W is treated as one.
func (v Vec4) PerspectiveDivide() Vec3 {
	if v.W == 0 {
		return v.Vec3()
	}
	return Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}
}
