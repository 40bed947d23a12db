package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/nifview/pkg/config"
	"github.com/taigrr/nifview/pkg/math3d"
	"github.com/taigrr/nifview/pkg/render"
)

func loadLeg(t *testing.T, a *app) *loaded {
	t.Helper()
	l, err := a.load(writeLeg(t))
	require.NoError(t, err)
	return l
}

func TestOrbit(t *testing.T) {
	c := math3d.V3(1, 2, 3)
	for _, angles := range [][2]float64{{0, 0}, {1, 0}, {0, 1}, {0.7, -0.4}} {
		o := orbit(c, angles[0], angles[1])
		p := o.Apply(c)
		assert.InDelta(t, 0, p.Len(), 1e-9)
		q := o.Apply(c.Add(math3d.V3(1, 2, 2)))
		assert.InDelta(t, 3, q.Len(), 1e-9, "orbit preserves distance to center")
	}

	// Yaw alone leaves the vertical axis in place.
	q := orbit(c, 1.2, 0).Apply(c.Add(math3d.V3(0, 2, 0)))
	assert.InDelta(t, 0, q.X, 1e-9)
	assert.InDelta(t, 2, q.Y, 1e-9)
	assert.InDelta(t, 0, q.Z, 1e-9)
}

func TestViewState(t *testing.T) {
	cfg := config.Default()
	vs, err := newViewState(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.ModeShaded, vs.Mode)
	assert.InDelta(t, 1, vs.Light.Len(), 1e-9)
	assert.Equal(t, render.RGB(24, 24, 32), vs.Background)

	for _, want := range []string{config.ModeWireframe, config.ModePoints, config.ModeShaded} {
		vs.cycleMode()
		assert.Equal(t, want, vs.Mode)
	}

	cfg.Render.Background = "red"
	_, err = newViewState(cfg)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestPoser(t *testing.T) {
	l := loadLeg(t, testApp())
	p := newPoser(l, 30)
	require.Equal(t, 2, p.Len())

	name, target, ok := p.Selected()
	require.True(t, ok)
	assert.Equal(t, "Hip", name)
	assert.Zero(t, target)

	p.Next()
	name, _, _ = p.Selected()
	assert.Equal(t, "Knee", name)
	p.Bend(6)
	_, target, _ = p.Selected()
	assert.InDelta(t, math.Pi/2, target, 1e-9)

	knee, ok := l.model.Skeleton.Find("Knee")
	require.True(t, ok)
	for range 300 {
		p.Step()
	}
	n, _ := l.model.Skeleton.Node(knee)
	x := n.Local.Rotate(math3d.V3(1, 0, 0))
	assert.InDelta(t, 0, x.X, 1e-3)
	assert.InDelta(t, 1, math.Abs(x.Y), 1e-3)
	assert.InDelta(t, 1, n.Local.Translation.Y, 1e-9, "bending keeps the joint in place")

	p.Reset()
	n, _ = l.model.Skeleton.Node(knee)
	assert.Equal(t, math3d.IdentityTransform().Rotation, n.Local.Rotation)
	_, target, _ = p.Selected()
	assert.Zero(t, target)

	p.Next()
	name, _, _ = p.Selected()
	assert.Equal(t, "Hip", name, "selection wraps")
}

func TestPoserWithoutBones(t *testing.T) {
	p := newPoser(&loaded{model: loadLeg(t, testApp()).model}, 30)
	assert.Zero(t, p.Len())
	_, _, ok := p.Selected()
	assert.False(t, ok)
	p.Next()
	p.Bend(1)
	p.Step()
	p.Reset()
}

func TestApplyBends(t *testing.T) {
	l := loadLeg(t, testApp())
	skel := l.model.Skeleton

	for _, bad := range []string{"Knee", "Knee=up", "Ankle=10"} {
		assert.Error(t, applyBends(skel, []string{bad}), bad)
	}

	require.NoError(t, applyBends(skel, []string{"Knee=90"}))
	knee, _ := skel.Find("Knee")
	n, _ := skel.Node(knee)
	x := n.Local.Rotate(math3d.V3(1, 0, 0))
	assert.InDelta(t, 0, x.X, 1e-9)
}

func TestSnapshot(t *testing.T) {
	a := testApp()
	a.cfg.Snapshot.Size = 32
	a.cfg.Snapshot.Supersample = 2
	l := loadLeg(t, a)

	img, err := a.snapshot(l)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())

	bg := render.RGB(24, 24, 32)
	drawn := 0
	for y := range 32 {
		for x := range 32 {
			if img.RGBAAt(x, y) != bg {
				drawn++
			}
		}
	}
	assert.Greater(t, drawn, 32, "model covers part of the image")

	path := filepath.Join(t.TempDir(), "leg.png")
	require.NoError(t, render.SaveImage(path, img))
}

func TestDrawModelModes(t *testing.T) {
	a := testApp()
	l := loadLeg(t, a)
	vs, err := newViewState(a.cfg)
	require.NoError(t, err)
	vs.Vectors = [3]bool{true, true, true}
	vs.BoneSpheres = true

	fb := render.NewFramebuffer(64, 64)
	cam := render.NewCamera()
	view := orbit(l.model.Center(), 0, 0)
	cam.Frame(l.model.Bounds().Transform(view))
	r := render.NewRasterizer(cam, fb)

	for _, mode := range []string{config.ModeShaded, config.ModeWireframe, config.ModePoints} {
		vs.Mode = mode
		r.BeginFrame(vs.Background)
		drawModel(r, l, view, vs)
		assert.Equal(t, 1, r.Stats.MeshesDrawn, mode)
		assert.Zero(t, r.Stats.TrianglesSkipped, mode)
	}
}
