// Package models imports skinned assets into a block graph that the shape
// pipeline reads, along with the skeleton the shapes are bound to.
package models

import (
	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
	"github.com/taigrr/nifview/pkg/scene"
	"github.com/taigrr/nifview/pkg/shape"
)

// Model is an imported asset.
type Model struct {
	Name     string
	Graph    *blocks.Graph
	Skeleton *scene.Skeleton
	Root     blocks.Ref
	Shapes   []blocks.Ref

	// Warnings lists data the format could not represent.
	Warnings []string

	// parents maps each shape block to the node it hangs from.
	parents map[blocks.Ref]blocks.Ref
}

// ShapeWorld returns the world transform of the node a shape hangs from.
func (m *Model) ShapeWorld(ref blocks.Ref) math3d.Transform {
	parent, ok := m.parents[ref]
	if !ok {
		return math3d.IdentityTransform()
	}
	t, _ := m.Skeleton.World(parent)
	return t
}

// NewShapes creates one shape entity per imported shape block.
func (m *Model) NewShapes(opts shape.Options) []*shape.Shape {
	out := make([]*shape.Shape, len(m.Shapes))
	for i, ref := range m.Shapes {
		out[i] = shape.New(m.Graph, ref, opts)
	}
	return out
}

// Evaluate runs the weight and skinning phases of every shape against the
// model's current pose.
func (m *Model) Evaluate(shapes []*shape.Shape, view math3d.Transform) {
	for _, s := range shapes {
		s.Transform()
		s.TransformShapes(m.Skeleton, shape.Frame{View: view, World: m.ShapeWorld(s.Block())})
	}
}

// Drawable is a shape's transformed buffers ready for a renderer.
type Drawable struct {
	*shape.Buffers
	// Transform maps buffer positions to world space.
	Transform math3d.Transform
	// Sphere bounds the buffers in their own frame.
	Sphere math3d.Sphere
}

// BoundingSphere returns the bound in the buffers' frame.
func (d Drawable) BoundingSphere() math3d.Sphere { return d.Sphere }

// Drawable returns the buffers of s as left by Evaluate with view. Skinned
// output already has the view and bone transforms baked in; rigid output is
// still in the shape's own frame.
func (m *Model) Drawable(s *shape.Shape, view math3d.Transform) Drawable {
	if s.Rigid() {
		return Drawable{
			Buffers:   s.Buffers(),
			Transform: view.Mul(m.ShapeWorld(s.Block())),
			Sphere:    s.LocalBounds(),
		}
	}
	return Drawable{
		Buffers:   s.Buffers(),
		Transform: math3d.IdentityTransform(),
		Sphere:    s.Bounds().Transform(view),
	}
}

// Bounds merges the authored bounds of every shape in world space.
func (m *Model) Bounds() math3d.Sphere {
	var out math3d.Sphere
	for _, ref := range m.Shapes {
		s, err := blocks.ReadSphere(m.Graph, ref, blocks.FieldBoundingSphere)
		if err != nil {
			continue
		}
		out = out.Merge(s.Transform(m.ShapeWorld(ref)))
	}
	return out
}

// Center returns the center of the model's bounds.
func (m *Model) Center() math3d.Vec3 {
	return m.Bounds().Center
}

// Size returns the diameter of the model's bounds.
func (m *Model) Size() float64 {
	return m.Bounds().Radius * 2
}

// VertexCount returns the number of vertices over all shapes.
func (m *Model) VertexCount() int {
	n := 0
	for _, ref := range m.Shapes {
		v, _ := m.Graph.Int(ref, blocks.FieldNumVertices)
		n += v
	}
	return n
}

// TriangleCount returns the number of triangles over all shapes.
func (m *Model) TriangleCount() int {
	n := 0
	for _, ref := range m.Shapes {
		v, _ := m.Graph.Int(ref, blocks.FieldNumTriangles)
		n += v
	}
	return n
}
