package shape

import (
	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
)

// Geometry is the raw vertex buffer set of a shape. Every populated slice
// has one entry per vertex; Colors is nil when the vertex table carries
// no colors. Triangle indices are all below the vertex count.
type Geometry struct {
	Positions  []math3d.Vec3
	Normals    []math3d.Vec3
	Tangents   []math3d.Vec3
	Bitangents []math3d.Vec3
	UVs        []math3d.Vec2
	Colors     []math3d.Color4
	Triangles  []blocks.Triangle
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// Empty reports whether there is nothing to draw.
func (g *Geometry) Empty() bool {
	return len(g.Positions) == 0
}

func (g *Geometry) reset() {
	g.Positions = g.Positions[:0]
	g.Normals = g.Normals[:0]
	g.Tangents = g.Tangents[:0]
	g.Bitangents = g.Bitangents[:0]
	g.UVs = g.UVs[:0]
	g.Colors = nil
	g.Triangles = g.Triangles[:0]
}

// Extract reads the vertex buffers and triangles of a shape in the layout
// chosen by its binding. It returns false with empty geometry when a
// required table is missing.
func Extract(src blocks.Source, block blocks.Ref, b Binding) (Geometry, bool) {
	var g Geometry
	ok := extract(src, block, b, &g, nil)
	return g, ok
}

func extract(src blocks.Source, block blocks.Ref, b Binding, g *Geometry, rep *reporter) bool {
	g.reset()
	var ok bool
	switch b.Layout {
	case LayoutOnSkinPartition:
		ok = extractFromPartition(src, b, g, rep)
	default:
		ok = extractFromShape(src, block, b, g, rep)
	}
	if !ok {
		g.reset()
		return false
	}

	if b.VertexAlphaAnim {
		for i := range g.Colors {
			g.Colors[i].A = 1
		}
	}
	dropOutOfRange(g, rep)
	return true
}

func extractFromShape(src blocks.Source, block blocks.Ref, b Binding, g *Geometry, rep *reporter) bool {
	vt, err := src.Table(block, blocks.FieldVertexData)
	if err != nil {
		rep.note(IssueMissingData, "shape has no vertex table", "err", err)
		return false
	}
	tris, err := src.Triangles(block, blocks.FieldTriangles)
	if err != nil {
		rep.note(IssueMissingData, "shape has no triangles", "err", err)
		return false
	}

	declared, _ := src.Int(block, blocks.FieldNumVertices)
	numVerts := clamp(declared, src.RowCount(vt))
	declared, _ = src.Int(block, blocks.FieldNumTriangles)
	numTris := clamp(declared, len(tris))

	if !readVertices(src, block, b, vt, numVerts, g, rep) {
		return false
	}
	g.Triangles = append(g.Triangles, tris[:numTris]...)
	return true
}

func extractFromPartition(src blocks.Source, b Binding, g *Geometry, rep *reporter) bool {
	part := b.Partition
	if !part.Valid() {
		rep.note(IssueMissingData, "skinned shape without skin partition")
		return false
	}
	vt, err := src.Table(part, blocks.FieldVertexData)
	if err != nil {
		rep.note(IssueMissingData, "skin partition has no vertex table", "err", err)
		return false
	}
	dataSize, _ := src.Int(part, blocks.FieldDataSize)
	vertexSize, _ := src.Int(part, blocks.FieldVertexSize)
	if dataSize <= 0 || vertexSize <= 0 {
		rep.note(IssueMissingData, "skin partition has no vertex data size",
			"data_size", dataSize, "vertex_size", vertexSize)
		return false
	}

	numVerts := dataSize / vertexSize
	if rows := src.RowCount(vt); rows < numVerts {
		rep.note(IssueIndexOutOfRange, "vertex table shorter than data size", "rows", rows, "want", numVerts)
		numVerts = rows
	}
	if !readVertices(src, b.Shape, b, vt, numVerts, g, rep) {
		return false
	}

	parts, err := src.Table(part, blocks.FieldPartition)
	if err != nil {
		rep.note(IssueMissingData, "skin partition has no partitions", "err", err)
		return true
	}
	for i := 0; i < src.RowCount(parts); i++ {
		tris, err := src.Triangles(src.Row(parts, i), blocks.FieldTriangles)
		if err != nil {
			rep.note(IssueMissingData, "partition has no triangles", "partition", i)
			continue
		}
		g.Triangles = append(g.Triangles, tris...)
	}
	return true
}

// readVertices decodes n rows of the vertex table. Dynamic shapes take
// positions from the shape's Vertices array instead, and the vertex count
// shrinks to whichever of the two is shorter.
func readVertices(src blocks.Source, shape blocks.Ref, b Binding, vt blocks.TableRef, n int, g *Geometry, rep *reporter) bool {
	if b.Dynamic {
		dyn, err := src.Vec4s(shape, blocks.FieldVertices)
		if err != nil {
			rep.note(IssueMissingData, "dynamic shape has no vertices", "err", err)
			return false
		}
		if len(dyn) < n {
			rep.note(IssueIndexOutOfRange, "dynamic vertices shorter than vertex table", "vertices", len(dyn), "rows", n)
			n = len(dyn)
		}
		for _, v := range dyn[:n] {
			g.Positions = append(g.Positions, v.Vec3())
		}
	}

	hasColors := n > 0 && src.Has(src.Row(vt, 0), blocks.FieldVertexColors)
	if hasColors {
		g.Colors = make([]math3d.Color4, 0, n)
	}

	for i := 0; i < n; i++ {
		row := src.Row(vt, i)
		if !b.Dynamic {
			p, _ := src.Vec3(row, blocks.FieldVertex)
			g.Positions = append(g.Positions, p)
		}

		var uv math3d.Vec2
		if h, err := src.Half2(row, blocks.FieldUV); err == nil {
			uv = blocks.DecodeHalf2(h)
		}
		g.UVs = append(g.UVs, uv)

		g.Normals = append(g.Normals, byteVector(src, row, blocks.FieldNormal))
		g.Tangents = append(g.Tangents, byteVector(src, row, blocks.FieldTangent))

		bx, _ := src.Float(row, blocks.FieldBitangentX)
		g.Bitangents = append(g.Bitangents, math3d.V3(
			bx,
			unitByte(src, row, blocks.FieldBitangentY),
			unitByte(src, row, blocks.FieldBitangentZ),
		))

		if hasColors {
			c := math3d.Color4{R: 1, G: 1, B: 1, A: 1}
			if raw, err := src.Bytes4(row, blocks.FieldVertexColors); err == nil {
				c = blocks.DecodeByteColor4(raw)
			}
			g.Colors = append(g.Colors, c)
		}
	}
	return true
}

func byteVector(src blocks.Source, row blocks.Ref, field string) math3d.Vec3 {
	raw, err := src.Bytes3(row, field)
	if err != nil {
		return math3d.Vec3{}
	}
	return blocks.DecodeByteVector3(raw)
}

func unitByte(src blocks.Source, row blocks.Ref, field string) float64 {
	v, err := src.Int(row, field)
	if err != nil {
		return 0
	}
	return blocks.DecodeUnitByte(uint8(v))
}

// dropOutOfRange removes triangles that reference missing vertices.
func dropOutOfRange(g *Geometry, rep *reporter) {
	n := len(g.Positions)
	kept := g.Triangles[:0]
	for _, t := range g.Triangles {
		if int(t[0]) >= n || int(t[1]) >= n || int(t[2]) >= n {
			rep.note(IssueIndexOutOfRange, "triangle references missing vertex",
				"triangle", [3]int{int(t[0]), int(t[1]), int(t[2])}, "vertices", n)
			continue
		}
		kept = append(kept, t)
	}
	g.Triangles = kept
}

func clamp(declared, available int) int {
	if declared < 0 {
		return 0
	}
	return min(declared, available)
}
