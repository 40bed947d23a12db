package shape

import (
	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
)

// Buffers is the transformed vertex set handed to a renderer. Its slices
// are owned by the shape and are only valid until the next skinning pass.
type Buffers struct {
	Positions  []math3d.Vec3
	Normals    []math3d.Vec3
	Tangents   []math3d.Vec3
	Bitangents []math3d.Vec3
	UVs        []math3d.Vec2
	Colors     []math3d.Color4
	Triangles  []blocks.Triangle
}

// VertexCount returns the number of vertices.
func (b *Buffers) VertexCount() int {
	return len(b.Positions)
}

// TriangleCount returns the number of triangles.
func (b *Buffers) TriangleCount() int {
	return len(b.Triangles)
}

// GetVertex returns the position, normal and texture coordinate of vertex i.
func (b *Buffers) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	pos = b.Positions[i]
	if i < len(b.Normals) {
		normal = b.Normals[i]
	}
	if i < len(b.UVs) {
		uv = b.UVs[i]
	}
	return pos, normal, uv
}

// GetFace returns the vertex indices of triangle i.
func (b *Buffers) GetFace(i int) [3]int {
	t := b.Triangles[i]
	return [3]int{int(t[0]), int(t[1]), int(t[2])}
}

// GetColor returns the color of vertex i, if the shape has colors.
func (b *Buffers) GetColor(i int) (math3d.Color4, bool) {
	if i < 0 || i >= len(b.Colors) {
		return math3d.Color4{}, false
	}
	return b.Colors[i], true
}

// Reset empties the buffers, keeping their capacity.
func (b *Buffers) Reset() {
	b.Positions = b.Positions[:0]
	b.Normals = b.Normals[:0]
	b.Tangents = b.Tangents[:0]
	b.Bitangents = b.Bitangents[:0]
	b.UVs = b.UVs[:0]
	b.Colors = b.Colors[:0]
	b.Triangles = b.Triangles[:0]
}

// Clone returns a deep copy that stays valid across skinning passes.
func (b *Buffers) Clone() *Buffers {
	return &Buffers{
		Positions:  cloneInto(nil, b.Positions),
		Normals:    cloneInto(nil, b.Normals),
		Tangents:   cloneInto(nil, b.Tangents),
		Bitangents: cloneInto(nil, b.Bitangents),
		UVs:        cloneInto(nil, b.UVs),
		Colors:     cloneInto(nil, b.Colors),
		Triangles:  cloneInto(nil, b.Triangles),
	}
}

// cloneInto copies src into dst's storage. A nil src gives a nil result so
// absent colors stay absent.
func cloneInto[T any](dst, src []T) []T {
	if src == nil {
		return nil
	}
	return append(dst[:0], src...)
}

// zeroed resizes s to n zero values, reusing its storage when it can.
func zeroed(s []math3d.Vec3, n int) []math3d.Vec3 {
	if cap(s) < n {
		return make([]math3d.Vec3, n)
	}
	s = s[:n]
	clear(s)
	return s
}
