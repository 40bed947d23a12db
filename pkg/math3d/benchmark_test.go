package math3d

import (
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

func BenchmarkTransformMul(b *testing.B) {
	t1 := NewTransform(Rotation3(V3(0, 1, 0), 0.5), V3(1, 2, 3), 2)
	t2 := NewTransform(Rotation3(V3(1, 0, 0), 0.25), V3(-1, 0, 4), 0.5)

	for b.Loop() {
		_ = t1.Mul(t2)
	}
}

func BenchmarkTransformApply(b *testing.B) {
	t := NewTransform(Rotation3(V3(0, 1, 0), 0.5), V3(1, 2, 3), 2)
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = t.Apply(v)
	}
}

func BenchmarkTransformInverse(b *testing.B) {
	t := NewTransform(Rotation3(V3(0, 1, 1), 0.5), V3(1, 2, 3), 2)

	for b.Loop() {
		_ = t.Inverse()
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec3AddScaled(b *testing.B) {
	v1 := V3(1, 2, 3)
	v2 := V3(4, 5, 6)

	for b.Loop() {
		_ = v1.AddScaled(v2, 0.25)
	}
}

func BenchmarkSphereFromPoints(b *testing.B) {
	points := make([]Vec3, 10000)
	for i := range points {
		f := float64(i)
		points[i] = V3(f, -f/2, f*0.1)
	}

	for b.Loop() {
		_ = SphereFromPoints(points)
	}
}
