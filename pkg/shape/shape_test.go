package shape

import (
	"bytes"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
	"github.com/taigrr/nifview/pkg/scene"
)

func cloneGeometry(g *Geometry) Geometry {
	return Geometry{
		Positions:  slices.Clone(g.Positions),
		Normals:    slices.Clone(g.Normals),
		Tangents:   slices.Clone(g.Tangents),
		Bitangents: slices.Clone(g.Bitangents),
		UVs:        slices.Clone(g.UVs),
		Colors:     slices.Clone(g.Colors),
		Triangles:  slices.Clone(g.Triangles),
	}
}

func cloneWeights(w []BoneWeights) []BoneWeights {
	out := slices.Clone(w)
	for i := range out {
		out[i].Influences = slices.Clone(out[i].Influences)
	}
	return out
}

func TestShapeLifecycle(t *testing.T) {
	for _, v := range []blocks.Version{blocks.VersionFO4, blocks.VersionSSE} {
		f := newFixture(t, v, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
		skel, err := scene.FromSource(f.g, f.root)
		require.NoError(t, err)
		skel.SetLocal(f.bones[1], translate(0, 0, 2))

		s := New(f.g, f.shape, DefaultOptions())
		assert.Equal(t, uint64(1), s.TopologyVersion())
		assert.False(t, s.Skinning(), "weights are built by Transform")

		s.Transform()
		require.True(t, s.Skinning())
		require.Len(t, s.Weights(), 2)

		s.TransformShapes(skel, IdentityFrame())
		assert.False(t, s.Rigid())

		buf := s.Buffers()
		require.Equal(t, 3, buf.VertexCount())
		require.Equal(t, 1, buf.TriangleCount())
		assert.Len(t, buf.Normals, 3)
		assert.Len(t, buf.Tangents, 3)
		assert.Len(t, buf.Bitangents, 3)
		assertVec3(t, math3d.V3(1, 0, 0), buf.Positions[1])
		assertVec3(t, math3d.V3(0, 1, 2), buf.Positions[2])
		assert.Equal(t, [3]int{0, 1, 2}, buf.GetFace(0))
		assert.Equal(t, 0, s.Diagnostics().Total(), s.Diagnostics().String())

		s.SetSkinning(false)
		s.TransformShapes(skel, IdentityFrame())
		assert.True(t, s.Rigid())
		assertVec3(t, math3d.V3(0, 1, 0), s.Buffers().Positions[2])
	}
}

func TestShapeUnskinnedCopies(t *testing.T) {
	f := newFixture(t, blocks.VersionFO4, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
	f.g.Set(f.shape, blocks.FieldVertexFlags, 0)

	s := New(f.g, f.shape, DefaultOptions())
	s.Transform()
	assert.False(t, s.Skinning())
	assert.Nil(t, s.Weights())

	s.TransformShapes(boneMap{}, IdentityFrame())
	assert.True(t, s.Rigid())
	assert.Equal(t, s.Geometry().Positions, s.Buffers().Positions)
}

func TestShapeUpdateIsIdempotent(t *testing.T) {
	f := newFixture(t, blocks.VersionSSE, triangleVerts(), []blocks.Triangle{{0, 1, 2}, {2, 1, 0}})
	s := New(f.g, f.shape, DefaultOptions())
	s.Transform()
	geom := cloneGeometry(s.Geometry())
	weights := cloneWeights(s.Weights())

	require.True(t, s.Update(f.shape))
	s.Transform()

	assert.Equal(t, geom, cloneGeometry(s.Geometry()))
	assert.Equal(t, weights, s.Weights())
	assert.Equal(t, uint64(2), s.TopologyVersion())
}

func TestShapeUpdateTriggers(t *testing.T) {
	f := newFixture(t, blocks.VersionFO4, triangleVerts(), []blocks.Triangle{{0, 1, 2}}).withShader(0)
	unrelated := f.g.AddBlock(blocks.KindNiNode)
	s := New(f.g, f.shape, DefaultOptions())

	tests := []struct {
		name    string
		changed blocks.Ref
		want    bool
	}{
		{"shape", f.shape, true},
		{"skin instance", f.inst, true},
		{"skin data", f.data, true},
		{"shader property", f.shader, true},
		{"unrelated node", unrelated, false},
		{"bone", f.bones[0], false},
		{"none", blocks.None, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := s.TopologyVersion()
			assert.Equal(t, tc.want, s.Update(tc.changed))
			if tc.want {
				assert.Equal(t, before+1, s.TopologyVersion())
			} else {
				assert.Equal(t, before, s.TopologyVersion())
			}
		})
	}
}

func TestShapeRebuildsAfterEdit(t *testing.T) {
	f := newFixture(t, blocks.VersionFO4, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
	s := New(f.g, f.shape, DefaultOptions())
	s.Transform()
	require.True(t, s.Skinning())

	// Dropping the skinned flag turns the shape rigid on the next update.
	f.g.Set(f.shape, blocks.FieldVertexFlags, 0)
	assert.True(t, s.Update(f.shape))
	s.Transform()
	assert.False(t, s.Skinning())
	assert.Nil(t, s.Weights())

	f.g.Set(f.shape, blocks.FieldNumVertices, 2)
	s.Update(f.shape)
	assert.Equal(t, 2, s.Geometry().VertexCount())
	assert.Empty(t, s.Geometry().Triangles)
}

func TestShapeBounds(t *testing.T) {
	f := newFixture(t, blocks.VersionFO4, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
	s := New(f.g, f.shape, DefaultOptions())
	s.Transform()

	local := s.LocalBounds()
	assertVec3(t, math3d.V3(0.5, 0.5, 0), local.Center)

	world := translate(0, 0, 3)
	s.TransformShapes(boneMap{f.bones[0]: math3d.IdentityTransform(), f.bones[1]: math3d.IdentityTransform()},
		Frame{View: math3d.IdentityTransform(), World: world})
	// Bones sit at the identity, so the skinned mesh matches the rest pose
	// and the world offset is removed from the local bound.
	assertVec3(t, math3d.V3(0.5, 0.5, -3), s.LocalBounds().Center)
	assertVec3(t, math3d.V3(0.5, 0.5, 0), s.Bounds().Center)
}

func TestShapeBoundsFallback(t *testing.T) {
	f := newFixture(t, blocks.VersionFO4, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
	f.g.Delete(f.shape, blocks.FieldVertexData)
	f.g.SetSphere(f.shape, blocks.FieldBoundingSphere, math3d.NewSphere(math3d.V3(1, 2, 3), 4))

	s := New(f.g, f.shape, DefaultOptions())
	s.Transform()
	s.TransformShapes(boneMap{}, IdentityFrame())

	assert.True(t, s.Geometry().Empty())
	assert.Equal(t, 0, s.Buffers().VertexCount())
	assert.Equal(t, math3d.NewSphere(math3d.V3(1, 2, 3), 4), s.Bounds())
	assert.NotZero(t, s.Diagnostics().Count(IssueMissingData))
}

func TestShapeVertexBlock(t *testing.T) {
	f := newFixture(t, blocks.VersionSSE, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
	s := New(f.g, f.shape, DefaultOptions())

	vt, err := f.g.Table(f.part, blocks.FieldVertexData)
	require.NoError(t, err)
	assert.Equal(t, f.g.Row(vt, 2), s.VertexBlock(2))
	assert.Equal(t, blocks.None, s.VertexBlock(3))
}

func TestShapeClear(t *testing.T) {
	f := newFixture(t, blocks.VersionFO4, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
	s := New(f.g, f.shape, DefaultOptions())
	s.Transform()
	s.TransformShapes(boneMap{}, IdentityFrame())

	s.Clear()
	assert.True(t, s.Geometry().Empty())
	assert.Equal(t, 0, s.Buffers().VertexCount())
	assert.False(t, s.Skinning())
	assert.False(t, s.Update(f.root))
	assert.Equal(t, f.shape, s.Block())
	assert.Equal(t, "Body", s.Name())
}

func TestShapeLogsIssues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	f := newFixture(t, blocks.VersionFO4, triangleVerts(), []blocks.Triangle{{0, 1, 2}})
	f.g.Delete(f.shape, blocks.FieldTriangles)
	New(f.g, f.shape, Options{DoSkinning: true, Logger: logger})

	out := buf.String()
	assert.True(t, strings.Contains(out, "kind=missing_data"), out)
	assert.True(t, strings.Contains(out, "level=DEBUG"), out)
}
