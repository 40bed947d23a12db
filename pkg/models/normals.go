package models

import (
	"math"

	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
)

// smoothNormals computes averaged normals for smooth shading.
func smoothNormals(positions []math3d.Vec3, tris []blocks.Triangle) []math3d.Vec3 {
	normals := make([]math3d.Vec3, len(positions))

	// Accumulate unnormalized face normals so larger faces weigh more
	for _, f := range tris {
		v0 := positions[f[0]]
		v1 := positions[f[1]]
		v2 := positions[f[2]]
		normal := v1.Sub(v0).Cross(v2.Sub(v0))

		normals[f[0]] = normals[f[0]].Add(normal)
		normals[f[1]] = normals[f[1]].Add(normal)
		normals[f[2]] = normals[f[2]].Add(normal)
	}

	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}

// orthogonal returns a unit tangent perpendicular to n, for assets that
// ship without tangents. The handedness is always +1.
func orthogonal(n math3d.Vec3) [4]float64 {
	axis := math3d.V3(0, 1, 0)
	if math.Abs(n.Y) > 0.9 {
		axis = math3d.V3(1, 0, 0)
	}
	t := axis.Cross(n).Normalize()
	return [4]float64{t.X, t.Y, t.Z, 1}
}

// bitangent rebuilds the bitangent from a normal and a tangent with
// handedness in w.
func bitangent(n math3d.Vec3, t [4]float64) math3d.Vec3 {
	return n.Cross(math3d.V3(t[0], t[1], t[2])).Scale(t[3])
}
