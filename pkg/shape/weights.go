package shape

import (
	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
)

// influencesPerVertex is the number of weight slots each vertex row holds.
const influencesPerVertex = 4

// VertexWeight is one bone's influence on one vertex. Weights are used as
// stored; a vertex's weights need not sum to one.
type VertexWeight struct {
	Vertex int
	Weight float64
}

// BoneWeights is one slot of the weight table: the bone it binds to, the
// bind correction read from the skin data, and the vertices it moves.
type BoneWeights struct {
	Bone       blocks.Ref
	Bind       math3d.Transform
	Bounds     math3d.Sphere
	Influences []VertexWeight
}

// BuildWeights builds the weight table for a binding. It returns one slot
// per bone of the skin instance, or nil when the shape is not skinned or
// lacks skin data. Vertices with fewer than four weights or indices are
// skipped, as are indices naming a bone outside the table.
func BuildWeights(src blocks.Source, b Binding, vertexCount int) []BoneWeights {
	return buildWeights(src, b, vertexCount, nil)
}

func buildWeights(src blocks.Source, b Binding, vertexCount int, rep *reporter) []BoneWeights {
	if !b.Skinned || !b.Instance.Valid() || !b.Data.Valid() {
		return nil
	}
	bones, err := src.LinkArray(b.Instance, blocks.FieldBones)
	if err != nil {
		rep.note(IssueMissingData, "skin instance has no bone list", "err", err)
		return nil
	}

	weights := make([]BoneWeights, len(bones))
	for i, bone := range bones {
		weights[i] = BoneWeights{Bone: bone, Bind: math3d.IdentityTransform()}
	}
	readBindPose(src, b.Data, weights, rep)

	vt, err := src.Table(b.VertexTable(), blocks.FieldVertexData)
	if err != nil {
		rep.note(IssueMissingData, "no vertex table for weights", "err", err)
		return weights
	}
	n := min(vertexCount, src.RowCount(vt))
	for v := 0; v < n; v++ {
		row := src.Row(vt, v)
		wts, errW := src.Floats(row, blocks.FieldBoneWeights)
		idx, errI := src.Bytes(row, blocks.FieldBoneIndices)
		if errW != nil || errI != nil || len(wts) < influencesPerVertex || len(idx) < influencesPerVertex {
			rep.note(IssueMalformedVertex, "vertex has short weight list",
				"vertex", v, "weights", len(wts), "indices", len(idx))
			continue
		}
		for j := 0; j < influencesPerVertex; j++ {
			if wts[j] <= 0 {
				continue
			}
			bone := int(idx[j])
			if bone >= len(weights) {
				rep.note(IssueIndexOutOfRange, "bone index outside table", "vertex", v, "bone", bone)
				continue
			}
			weights[bone].Influences = append(weights[bone].Influences, VertexWeight{Vertex: v, Weight: wts[j]})
		}
	}
	return weights
}

// readBindPose fills the bind correction and bone bounds of each slot from
// the skin data's per bone rows.
func readBindPose(src blocks.Source, data blocks.Ref, weights []BoneWeights, rep *reporter) {
	list, err := src.Table(data, blocks.FieldBoneList)
	if err != nil {
		rep.note(IssueMissingData, "skin data has no bone list", "err", err)
		return
	}
	rows := src.RowCount(list)
	if rows < len(weights) {
		rep.note(IssueMissingData, "skin data lists fewer bones than instance", "rows", rows, "bones", len(weights))
	}
	for i := range weights[:min(rows, len(weights))] {
		row := src.Row(list, i)
		weights[i].Bind = blocks.ReadTransform(src, row)
		if s, err := blocks.ReadSphere(src, row, blocks.FieldBoundingSphere); err == nil {
			weights[i].Bounds = s
		}
	}
}

// HasInfluences reports whether any bone moves at least one vertex.
func HasInfluences(weights []BoneWeights) bool {
	for i := range weights {
		if len(weights[i].Influences) > 0 {
			return true
		}
	}
	return false
}

// InfluenceCount returns the total number of influences in the table.
func InfluenceCount(weights []BoneWeights) int {
	n := 0
	for i := range weights {
		n += len(weights[i].Influences)
	}
	return n
}
