package shape

import (
	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
)

// BoneLookup finds the live transform of a bone in a skeleton the caller
// owns. Bones that are not found report false.
type BoneLookup interface {
	BoneTransform(bone blocks.Ref) (math3d.Transform, bool)
}

// Frame carries the per-frame transforms a skinning pass needs: the view
// transform baked into skinned output and the shape's own world transform.
type Frame struct {
	View  math3d.Transform
	World math3d.Transform
}

// IdentityFrame returns a frame with identity view and world transforms.
func IdentityFrame() Frame {
	return Frame{View: math3d.IdentityTransform(), World: math3d.IdentityTransform()}
}

// Skin blends the raw geometry through the bone transforms into out and
// returns the bound of the result in the shape's local frame.
//
// Each bone contributes View * bone * Bind, scaled by its weight, to the
// positions it influences and the rotation part alone to the normals,
// tangents and bitangents. Directions are normalized afterwards; positions
// are not. Vertices no bone reaches stay at the origin.
func Skin(g *Geometry, weights []BoneWeights, bones BoneLookup, f Frame, out *Buffers) math3d.Sphere {
	return skin(g, weights, bones, f, out, nil)
}

func skin(g *Geometry, weights []BoneWeights, bones BoneLookup, f Frame, out *Buffers, rep *reporter) math3d.Sphere {
	n := len(g.Positions)
	out.Positions = zeroed(out.Positions, n)
	out.Normals = zeroed(out.Normals, n)
	out.Tangents = zeroed(out.Tangents, n)
	out.Bitangents = zeroed(out.Bitangents, n)
	out.UVs = cloneInto(out.UVs, g.UVs)
	out.Colors = cloneInto(out.Colors, g.Colors)
	out.Triangles = cloneInto(out.Triangles, g.Triangles)

	hasNormals := len(g.Normals) >= n
	hasTangents := len(g.Tangents) >= n
	hasBitangents := len(g.Bitangents) >= n

	for i := range weights {
		bw := &weights[i]
		bone, ok := bones.BoneTransform(bw.Bone)
		if !ok {
			rep.note(IssueDanglingBone, "bone not in skeleton", "bone", int(bw.Bone))
			continue
		}
		t := f.View.Mul(bone).Mul(bw.Bind)

		for _, w := range bw.Influences {
			v := w.Vertex
			if v < 0 || v >= n {
				rep.note(IssueIndexOutOfRange, "influence past vertex count", "vertex", v, "vertices", n)
				continue
			}
			out.Positions[v] = out.Positions[v].AddScaled(t.Apply(g.Positions[v]), w.Weight)
			if hasNormals {
				out.Normals[v] = out.Normals[v].AddScaled(t.Rotate(g.Normals[v]), w.Weight)
			}
			if hasTangents {
				out.Tangents[v] = out.Tangents[v].AddScaled(t.Rotate(g.Tangents[v]), w.Weight)
			}
			if hasBitangents {
				out.Bitangents[v] = out.Bitangents[v].AddScaled(t.Rotate(g.Bitangents[v]), w.Weight)
			}
		}
	}

	for v := 0; v < n; v++ {
		out.Normals[v] = out.Normals[v].Normalize()
		out.Tangents[v] = out.Tangents[v].Normalize()
		out.Bitangents[v] = out.Bitangents[v].Normalize()
	}

	return math3d.SphereFromPoints(out.Positions).InverseTransform(f.View.Mul(f.World))
}

// CopyRigid copies the raw geometry into out unchanged.
func CopyRigid(g *Geometry, out *Buffers) {
	out.Positions = cloneInto(out.Positions, g.Positions)
	out.Normals = cloneInto(out.Normals, g.Normals)
	out.Tangents = cloneInto(out.Tangents, g.Tangents)
	out.Bitangents = cloneInto(out.Bitangents, g.Bitangents)
	out.UVs = cloneInto(out.UVs, g.UVs)
	out.Colors = cloneInto(out.Colors, g.Colors)
	out.Triangles = cloneInto(out.Triangles, g.Triangles)
}
