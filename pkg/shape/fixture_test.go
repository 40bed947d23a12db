package shape

import (
	"testing"

	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
)

// vert is one row of a synthetic vertex table.
type vert struct {
	pos     math3d.Vec3
	weights []float64
	bones   []uint8
	color   *[4]uint8
}

// fixture is a skinned shape with two bones under a root node.
type fixture struct {
	g      *blocks.Graph
	root   blocks.Ref
	bones  []blocks.Ref
	shape  blocks.Ref
	inst   blocks.Ref
	data   blocks.Ref
	part   blocks.Ref
	shader blocks.Ref
}

func setVertexRows(g *blocks.Graph, owner blocks.Ref, verts []vert) blocks.Rows {
	rows := g.AddRows(owner, blocks.FieldVertexData, len(verts))
	for i, v := range verts {
		r := rows[i]
		g.Set(r, blocks.FieldVertex, v.pos)
		g.Set(r, blocks.FieldUV, blocks.EncodeHalf2(math3d.V2(0.5, 0.25)))
		g.Set(r, blocks.FieldNormal, [3]uint8{128, 128, 255})
		g.Set(r, blocks.FieldTangent, [3]uint8{255, 128, 128})
		g.Set(r, blocks.FieldBitangentX, 0.0)
		g.Set(r, blocks.FieldBitangentY, 255)
		g.Set(r, blocks.FieldBitangentZ, 128)
		if v.weights != nil {
			g.Set(r, blocks.FieldBoneWeights, v.weights)
		}
		if v.bones != nil {
			g.Set(r, blocks.FieldBoneIndices, v.bones)
		}
		if v.color != nil {
			g.Set(r, blocks.FieldVertexColors, *v.color)
		}
	}
	return rows
}

func weighted(pos math3d.Vec3, bone uint8) vert {
	return vert{pos: pos, weights: []float64{1, 0, 0, 0}, bones: []uint8{bone, 0, 0, 0}}
}

// newFixture builds a skinned shape for version v. For VersionSSE the
// vertices live on a skin partition split into one partition per
// triangle.
func newFixture(t *testing.T, v blocks.Version, verts []vert, tris []blocks.Triangle) *fixture {
	t.Helper()
	g := blocks.NewGraph(v)
	f := &fixture{g: g, part: blocks.None, shader: blocks.None}

	f.root = g.AddBlock(blocks.KindNiNode)
	f.bones = []blocks.Ref{g.AddBlock(blocks.KindNiNode), g.AddBlock(blocks.KindNiNode)}
	f.shape = g.AddBlock(blocks.KindBSTriShape)
	g.Set(f.root, blocks.FieldChildren, []blocks.Ref{f.bones[0], f.bones[1], f.shape})

	instKind, dataKind := blocks.SkinKinds(v)
	f.inst = g.AddBlock(instKind)
	f.data = g.AddBlock(dataKind)

	g.Set(f.shape, blocks.FieldName, "Body")
	g.Set(f.shape, blocks.FieldVertexFlags, blocks.VertexFlagSkinned)
	g.Set(f.shape, blocks.FieldSkin, f.inst)
	g.Set(f.inst, blocks.FieldData, f.data)
	g.Set(f.inst, blocks.FieldBones, f.bones)
	g.Set(f.inst, blocks.FieldSkeletonRoot, f.root)

	list := g.AddRows(f.data, blocks.FieldBoneList, len(f.bones))
	for _, row := range list {
		g.SetTransform(row, math3d.IdentityTransform())
		g.SetSphere(row, blocks.FieldBoundingSphere, math3d.NewSphere(math3d.Zero3(), 1))
	}

	if v == blocks.VersionSSE {
		f.part = g.AddBlock(blocks.KindNiSkinPartition)
		g.Set(f.inst, blocks.FieldSkinPartition, f.part)
		g.Set(f.part, blocks.FieldVertexSize, 12)
		g.Set(f.part, blocks.FieldDataSize, 12*len(verts))
		setVertexRows(g, f.part, verts)
		parts := g.AddRows(f.part, blocks.FieldPartition, len(tris))
		for i, tri := range tris {
			g.Set(parts[i], blocks.FieldTriangles, []blocks.Triangle{tri})
		}
		return f
	}

	g.Set(f.shape, blocks.FieldNumVertices, len(verts))
	g.Set(f.shape, blocks.FieldNumTriangles, len(tris))
	g.Set(f.shape, blocks.FieldTriangles, tris)
	setVertexRows(g, f.shape, verts)
	return f
}

func (f *fixture) withShader(flags2 int) *fixture {
	f.shader = f.g.AddBlock(blocks.KindBSLightingShaderProperty)
	f.g.Set(f.shader, blocks.FieldShaderFlags2, flags2)
	f.g.Set(f.shape, blocks.FieldShaderProperty, f.shader)
	return f
}

// boneMap is a BoneLookup over fixed transforms.
type boneMap map[blocks.Ref]math3d.Transform

func (m boneMap) BoneTransform(ref blocks.Ref) (math3d.Transform, bool) {
	t, ok := m[ref]
	return t, ok
}

func translate(x, y, z float64) math3d.Transform {
	return math3d.NewTransform(math3d.Identity3(), math3d.V3(x, y, z), 1)
}

func triangleVerts() []vert {
	return []vert{
		weighted(math3d.V3(0, 0, 0), 0),
		weighted(math3d.V3(1, 0, 0), 0),
		weighted(math3d.V3(0, 1, 0), 1),
	}
}
