package main

import (
	"github.com/taigrr/nifview/pkg/config"
	"github.com/taigrr/nifview/pkg/math3d"
	"github.com/taigrr/nifview/pkg/render"
	"github.com/taigrr/nifview/pkg/shape"
)

// viewState holds the drawing settings the viewer toggles at runtime.
type viewState struct {
	Mode         string
	Vectors      [3]bool // Indexed by render.VectorKind
	BoneSpheres  bool
	VertexColors bool
	DoubleSided  bool
	ShowHUD      bool
	Light        math3d.Vec3
	Background   render.Color
}

func newViewState(cfg config.Config) (*viewState, error) {
	rgb, err := cfg.BackgroundRGB()
	if err != nil {
		return nil, err
	}
	l := cfg.Render.Light
	return &viewState{
		Mode:         cfg.Render.Mode,
		VertexColors: cfg.Skin.VertexColors,
		DoubleSided:  cfg.Render.DoubleSided,
		Light:        math3d.V3(l[0], l[1], l[2]).Normalize(),
		Background:   render.RGB(rgb[0], rgb[1], rgb[2]),
	}, nil
}

// cycleMode steps shaded, wireframe, points.
func (v *viewState) cycleMode() {
	switch v.Mode {
	case config.ModeShaded:
		v.Mode = config.ModeWireframe
	case config.ModeWireframe:
		v.Mode = config.ModePoints
	default:
		v.Mode = config.ModeShaded
	}
}

// orbit turns the model about center, pitch after yaw, and moves center to
// the origin.
func orbit(center math3d.Vec3, yaw, pitch float64) math3d.Transform {
	rot := math3d.Rotation3(math3d.V3(1, 0, 0), pitch).Mul(math3d.Rotation3(math3d.V3(0, 1, 0), yaw))
	return math3d.NewTransform(rot, math3d.Zero3(), 1).
		Mul(math3d.NewTransform(math3d.Identity3(), center.Negate(), 1))
}

// drawModel runs the skinning pass for every shape under view and draws
// the result with the enabled overlays. The caller begins the frame.
func drawModel(r *render.Rasterizer, l *loaded, view math3d.Transform, vs *viewState) {
	l.model.Evaluate(l.shapes, view)
	r.DisableBackfaceCulling = vs.DoubleSided
	r.VertexColors = vs.VertexColors

	for _, s := range l.shapes {
		d := l.model.Drawable(s, view)
		switch vs.Mode {
		case config.ModeWireframe:
			r.DrawMeshWireframe(d, d.Transform, render.ColorWire)
		case config.ModePoints:
			r.DrawVertices(d, d.Transform, render.ColorVertex)
		default:
			r.DrawMeshGouraud(d, d.Transform, render.ColorSurface, vs.Light)
		}

		length := render.VectorLength(d.Sphere.Transform(d.Transform).Radius)
		for k, on := range vs.Vectors {
			if !on {
				continue
			}
			kind := render.VectorKind(k)
			r.DrawVectors(d.Positions, directions(d.Buffers, kind), d.Transform, length, kind.Color())
		}
		if vs.BoneSpheres {
			drawBones(r, l, s, view)
		}
	}
}

func directions(b *shape.Buffers, kind render.VectorKind) []math3d.Vec3 {
	switch kind {
	case render.VectorTangent:
		return b.Tangents
	case render.VectorBitangent:
		return b.Bitangents
	default:
		return b.Normals
	}
}

// drawBones outlines the bound of every bone a shape is weighted to, at
// the bone's current pose.
func drawBones(r *render.Rasterizer, l *loaded, s *shape.Shape, view math3d.Transform) {
	for _, bw := range s.Weights() {
		world, ok := l.model.Skeleton.World(bw.Bone)
		if !ok {
			continue
		}
		r.DrawSphere(bw.Bounds, view.Mul(world), render.ColorBone)
	}
}
