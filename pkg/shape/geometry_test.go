package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
)

func assertParallel(t *testing.T, g *Geometry, n int) {
	t.Helper()
	assert.Len(t, g.Positions, n)
	assert.Len(t, g.Normals, n)
	assert.Len(t, g.Tangents, n)
	assert.Len(t, g.Bitangents, n)
	assert.Len(t, g.UVs, n)
	if g.Colors != nil {
		assert.Len(t, g.Colors, n)
	}
	for _, tri := range g.Triangles {
		for _, idx := range tri {
			assert.Less(t, int(idx), n)
		}
	}
}

func TestExtractOnShape(t *testing.T) {
	verts := append(triangleVerts(), weighted(math3d.V3(5, 5, 5), 0))
	tris := []blocks.Triangle{{0, 1, 2}, {1, 2, 3}, {0, 2, 3}}
	f := newFixture(t, blocks.VersionFO4, verts, tris)
	// Declared counts below the table sizes win.
	f.g.Set(f.shape, blocks.FieldNumVertices, 3)
	f.g.Set(f.shape, blocks.FieldNumTriangles, 2)

	g, ok := Extract(f.g, f.shape, ResolveBinding(f.g, f.shape))
	require.True(t, ok)
	assertParallel(t, &g, 3)

	// {1,2,3} references the fourth vertex, which was cut off.
	assert.Equal(t, []blocks.Triangle{{0, 1, 2}}, g.Triangles)
	assert.Equal(t, math3d.V3(1, 0, 0), g.Positions[1])
	assert.Equal(t, math3d.V2(0.5, 0.25), g.UVs[0])
	assert.InDelta(t, 1.0, g.Normals[0].Z, 1e-12)
	assert.InDelta(t, 1.0, g.Tangents[0].X, 1e-12)
	assert.InDelta(t, 0.0, g.Bitangents[0].X, 1e-12)
	assert.InDelta(t, 1.0, g.Bitangents[0].Y, 1e-12)
	assert.InDelta(t, 128.0/255.0*2.0-1.0, g.Bitangents[0].Z, 1e-12)
	assert.Nil(t, g.Colors)
}

func TestExtractDeclaredCountAboveTable(t *testing.T) {
	f := newFixture(t, blocks.VersionFO4, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
	f.g.Set(f.shape, blocks.FieldNumVertices, 100)
	f.g.Set(f.shape, blocks.FieldNumTriangles, 100)

	g, ok := Extract(f.g, f.shape, ResolveBinding(f.g, f.shape))
	require.True(t, ok)
	assertParallel(t, &g, 3)
	assert.Len(t, g.Triangles, 1)
}

func TestExtractOnSkinPartition(t *testing.T) {
	tris := []blocks.Triangle{{0, 1, 2}, {2, 1, 0}}
	f := newFixture(t, blocks.VersionSSE, triangleVerts(), tris)
	// A stale table on the shape must be ignored.
	setVertexRows(f.g, f.shape, []vert{weighted(math3d.V3(9, 9, 9), 0)})
	f.g.Set(f.shape, blocks.FieldNumVertices, 1)
	f.g.Set(f.shape, blocks.FieldTriangles, []blocks.Triangle{{0, 0, 0}})

	b := ResolveBinding(f.g, f.shape)
	require.Equal(t, LayoutOnSkinPartition, b.Layout)

	g, ok := Extract(f.g, f.shape, b)
	require.True(t, ok)
	assertParallel(t, &g, 3)
	assert.Equal(t, math3d.V3(0, 1, 0), g.Positions[2])
	assert.Equal(t, tris, g.Triangles, "partitions concatenate in order")
}

func TestExtractOnSkinPartitionDataSize(t *testing.T) {
	tests := []struct {
		name       string
		dataSize   int
		vertexSize int
		ok         bool
		verts      int
	}{
		{"zero data size", 0, 12, false, 0},
		{"zero vertex size", 36, 0, false, 0},
		{"exact", 36, 12, true, 3},
		{"partial vertex", 30, 12, true, 2},
		{"larger than table", 120, 12, true, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, blocks.VersionSSE, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
			f.g.Set(f.part, blocks.FieldDataSize, tc.dataSize)
			f.g.Set(f.part, blocks.FieldVertexSize, tc.vertexSize)

			g, ok := Extract(f.g, f.shape, ResolveBinding(f.g, f.shape))
			assert.Equal(t, tc.ok, ok)
			assertParallel(t, &g, tc.verts)
			if !ok {
				assert.Empty(t, g.Triangles)
			}
		})
	}
}

func TestExtractMissingTables(t *testing.T) {
	t.Run("no vertex table", func(t *testing.T) {
		f := newFixture(t, blocks.VersionFO4, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
		f.g.Delete(f.shape, blocks.FieldVertexData)
		g, ok := Extract(f.g, f.shape, ResolveBinding(f.g, f.shape))
		assert.False(t, ok)
		assert.True(t, g.Empty())
	})

	t.Run("no triangles", func(t *testing.T) {
		f := newFixture(t, blocks.VersionFO4, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
		f.g.Delete(f.shape, blocks.FieldTriangles)
		g, ok := Extract(f.g, f.shape, ResolveBinding(f.g, f.shape))
		assert.False(t, ok)
		assert.True(t, g.Empty())
	})

	t.Run("no partition", func(t *testing.T) {
		f := newFixture(t, blocks.VersionSSE, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
		f.g.Delete(f.inst, blocks.FieldSkinPartition)
		g, ok := Extract(f.g, f.shape, ResolveBinding(f.g, f.shape))
		assert.False(t, ok)
		assert.True(t, g.Empty())
	})
}

func TestExtractDynamic(t *testing.T) {
	g := blocks.NewGraph(blocks.VersionFO4)
	s := g.AddBlock(blocks.KindBSDynamicTriShape)
	setVertexRows(g, s, []vert{{}, {}, {}})
	g.Set(s, blocks.FieldNumVertices, 3)
	g.Set(s, blocks.FieldNumTriangles, 1)
	g.Set(s, blocks.FieldTriangles, []blocks.Triangle{{0, 1, 2}})
	g.Set(s, blocks.FieldVertices, []math3d.Vec4{
		math3d.V4(1, 2, 3, 0),
		math3d.V4(4, 5, 6, 0),
		math3d.V4(7, 8, 9, 0),
	})

	b := ResolveBinding(g, s)
	require.True(t, b.Dynamic)
	geom, ok := Extract(g, s, b)
	require.True(t, ok)
	assertParallel(t, &geom, 3)
	assert.Equal(t, math3d.V3(4, 5, 6), geom.Positions[1])

	// Fewer dynamic positions than rows shrink the vertex count and drop
	// the triangle that used the missing vertex.
	g.Set(s, blocks.FieldVertices, []math3d.Vec4{math3d.V4(1, 2, 3, 0), math3d.V4(4, 5, 6, 0)})
	geom, ok = Extract(g, s, b)
	require.True(t, ok)
	assertParallel(t, &geom, 2)
	assert.Empty(t, geom.Triangles)

	g.Delete(s, blocks.FieldVertices)
	_, ok = Extract(g, s, b)
	assert.False(t, ok)
}

func TestExtractColors(t *testing.T) {
	red := [4]uint8{255, 0, 0, 51}
	verts := triangleVerts()
	for i := range verts {
		verts[i].color = &red
	}

	f := newFixture(t, blocks.VersionFO4, verts, []blocks.Triangle{{0, 1, 2}})
	g, ok := Extract(f.g, f.shape, ResolveBinding(f.g, f.shape))
	require.True(t, ok)
	require.Len(t, g.Colors, 3)
	assert.InDelta(t, 0.2, g.Colors[0].A, 1e-12)

	f.withShader(blocks.ShaderFlag2TreeAnim)
	g, ok = Extract(f.g, f.shape, ResolveBinding(f.g, f.shape))
	require.True(t, ok)
	for _, c := range g.Colors {
		assert.Equal(t, 1.0, c.A)
		assert.Equal(t, 1.0, c.R)
	}
}

func TestExtractUnskinnedSSEUsesShape(t *testing.T) {
	f := newFixture(t, blocks.VersionSSE, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
	f.g.Set(f.shape, blocks.FieldVertexFlags, 0)
	setVertexRows(f.g, f.shape, []vert{weighted(math3d.V3(9, 9, 9), 0)})
	f.g.Set(f.shape, blocks.FieldNumVertices, 1)
	f.g.Set(f.shape, blocks.FieldTriangles, []blocks.Triangle{})

	g, ok := Extract(f.g, f.shape, ResolveBinding(f.g, f.shape))
	require.True(t, ok)
	assert.Equal(t, []math3d.Vec3{math3d.V3(9, 9, 9)}, g.Positions)
}
