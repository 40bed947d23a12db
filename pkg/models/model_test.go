package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/nifview/pkg/math3d"
	"github.com/taigrr/nifview/pkg/shape"
)

func TestDrawableFrames(t *testing.T) {
	m, err := NewGLTFLoader().FromDocument(legDoc(legJoints()), "leg")
	require.NoError(t, err)
	view := math3d.NewTransform(math3d.Rotation3(math3d.V3(0, 1, 0), math.Pi/2), math3d.V3(0, 0, -5), 2)

	skinned := m.NewShapes(shape.DefaultOptions())
	m.Evaluate(skinned, view)
	d := m.Drawable(skinned[0], view)
	assert.Equal(t, math3d.IdentityTransform(), d.Transform, "skinned output is already in view space")

	opts := shape.DefaultOptions()
	opts.DoSkinning = false
	rigid := m.NewShapes(opts)
	m.Evaluate(rigid, view)
	r := m.Drawable(rigid[0], view)
	require.True(t, rigid[0].Rigid())

	// Both paths place every vertex and the bound at the same spot.
	for i := range d.Positions {
		want := d.Transform.Apply(d.Positions[i])
		got := r.Transform.Apply(r.Positions[i])
		assert.InDelta(t, 0, want.Distance(got), 1e-6, "vertex %d", i)
	}
	ds, rs := d.BoundingSphere().Transform(d.Transform), r.BoundingSphere().Transform(r.Transform)
	assert.InDelta(t, 0, ds.Center.Distance(rs.Center), 1e-6)
	assert.InDelta(t, ds.Radius, rs.Radius, 1e-6)
}
