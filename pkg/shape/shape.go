package shape

import (
	"log/slog"

	"github.com/taigrr/nifview/pkg/blocks"
	"github.com/taigrr/nifview/pkg/math3d"
)

// Options controls how a shape is evaluated.
type Options struct {
	// DoSkinning enables the blend pass. When false, skinned shapes are
	// drawn in their bind pose like rigid ones.
	DoSkinning bool
	// Logger receives debug records for recoverable data problems.
	Logger *slog.Logger
}

// DefaultOptions enables skinning and discards log output.
func DefaultOptions() Options {
	return Options{DoSkinning: true, Logger: slog.New(slog.DiscardHandler)}
}

// Shape owns the raw geometry, weight table and transformed buffers of one
// shape block.
type Shape struct {
	src   blocks.Source
	block blocks.Ref
	opts  Options

	binding  Binding
	geom     Geometry
	weights  []BoneWeights
	authored math3d.Sphere
	buffers  Buffers
	bounds   BoundsCache
	world    math3d.Transform

	updateSkin bool
	doSkinning bool
	rigid      bool
	topology   uint64

	topoDiag Diagnostics
	passDiag Diagnostics
}

// New binds a shape to block and runs the first topology update.
func New(src blocks.Source, block blocks.Ref, opts Options) *Shape {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Shape{
		src:     src,
		block:   block,
		opts:    opts,
		world:   math3d.IdentityTransform(),
		binding: unbound(block),
		rigid:   true,
	}
	s.Update(block)
	return s
}

// Update reacts to a change of block data. Only changes to the shape
// itself, its skin instance, its skin data or a shader property matter;
// for those the geometry and binding are rebuilt from scratch and the
// topology version advances. It reports whether anything was rebuilt.
func (s *Shape) Update(changed blocks.Ref) bool {
	if !s.block.Valid() || !changed.Valid() {
		return false
	}
	if changed != s.block && changed != s.binding.Instance && changed != s.binding.Data &&
		!isShaderProperty(s.src, changed) {
		return false
	}

	s.topoDiag = Diagnostics{}
	rep := s.reporter(&s.topoDiag)

	s.binding = resolveBinding(s.src, s.block, rep)
	s.authored, _ = blocks.ReadSphere(s.src, s.block, blocks.FieldBoundingSphere)
	extract(s.src, s.block, s.binding, &s.geom, rep)

	s.weights = nil
	s.doSkinning = false
	s.updateSkin = s.binding.Skinned
	s.rigid = !s.binding.Skinned
	s.bounds.Invalidate()
	s.topology++
	return true
}

// Transform rebuilds the weight table when the binding changed since the
// last call.
func (s *Shape) Transform() {
	if !s.updateSkin {
		return
	}
	s.updateSkin = false
	s.weights = buildWeights(s.src, s.binding, len(s.geom.Positions), s.reporter(&s.topoDiag))
	s.doSkinning = HasInfluences(s.weights)
}

// TransformShapes produces this frame's buffers. Skinned shapes are blended
// through bones when skinning is enabled; everything else is copied.
// The skeleton must already hold this frame's pose.
func (s *Shape) TransformShapes(bones BoneLookup, f Frame) {
	s.world = f.World
	s.passDiag = Diagnostics{}

	if s.doSkinning && s.opts.DoSkinning && bones != nil {
		s.rigid = false
		s.bounds.Set(skin(&s.geom, s.weights, bones, f, &s.buffers, s.reporter(&s.passDiag)))
		return
	}

	if !s.rigid {
		// The cached bound came from a posed mesh.
		s.bounds.Invalidate()
	}
	s.rigid = true
	CopyRigid(&s.geom, &s.buffers)
}

// SetSkinning turns the blend pass on or off.
func (s *Shape) SetSkinning(enabled bool) {
	s.opts.DoSkinning = enabled
}

// Clear drops all buffers and the binding.
func (s *Shape) Clear() {
	s.geom.reset()
	s.buffers.Reset()
	s.weights = nil
	s.binding = unbound(s.block)
	s.doSkinning = false
	s.updateSkin = false
	s.rigid = true
	s.bounds.Invalidate()
	s.topology++
}

func (s *Shape) reporter(d *Diagnostics) *reporter {
	return &reporter{log: s.opts.Logger, diag: d, block: s.block}
}

// Block returns the shape's block ref.
func (s *Shape) Block() blocks.Ref { return s.block }

// Name returns the shape block's name, if any.
func (s *Shape) Name() string {
	name, _ := s.src.Text(s.block, blocks.FieldName)
	return name
}

// Binding returns the resolved skin binding.
func (s *Shape) Binding() Binding { return s.binding }

// Geometry returns the raw buffers. They are rebuilt in place by Update.
func (s *Shape) Geometry() *Geometry { return &s.geom }

// Weights returns the weight table, or nil before Transform.
func (s *Shape) Weights() []BoneWeights { return s.weights }

// Buffers returns the buffers of the last TransformShapes call.
func (s *Shape) Buffers() *Buffers { return &s.buffers }

// Skinning reports whether the weight table moves any vertex.
func (s *Shape) Skinning() bool { return s.doSkinning }

// Rigid reports whether the last pass copied the raw geometry.
func (s *Shape) Rigid() bool { return s.rigid }

// TopologyVersion advances every time the raw buffers are rebuilt.
func (s *Shape) TopologyVersion() uint64 { return s.topology }

// Diagnostics returns the issues of the last rebuild and skinning pass.
func (s *Shape) Diagnostics() Diagnostics { return s.topoDiag.Add(s.passDiag) }

// LocalBounds returns the cached bound in the shape's own frame.
func (s *Shape) LocalBounds() math3d.Sphere {
	return s.bounds.Get(s.geom.Positions, s.authored)
}

// Bounds returns the bound in world space.
func (s *Shape) Bounds() math3d.Sphere {
	return s.LocalBounds().Transform(s.world)
}

// VertexBlock returns the record that holds vertex i's position: a row of
// the active vertex table, or the shape itself for dynamic shapes whose
// positions live in the Vertices array.
func (s *Shape) VertexBlock(i int) blocks.Ref {
	if s.binding.Dynamic {
		return s.block
	}
	t, err := s.src.Table(s.binding.VertexTable(), blocks.FieldVertexData)
	if err != nil {
		return blocks.None
	}
	return s.src.Row(t, i)
}
