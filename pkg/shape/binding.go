package shape

import "github.com/taigrr/nifview/pkg/blocks"

// Binding is the resolved skin state of a shape block.
type Binding struct {
	Version blocks.Version
	Shape   blocks.Ref
	Kind    blocks.Kind
	Dynamic bool
	Skinned bool
	Layout  Layout

	Instance     blocks.Ref
	Data         blocks.Ref
	Partition    blocks.Ref
	SkeletonRoot blocks.Ref

	ShaderProperty  blocks.Ref
	VertexAlphaAnim bool
	VertexColors    bool
}

// VertexTable returns the block whose Vertex Data table is active.
func (b Binding) VertexTable() blocks.Ref {
	if b.Layout == LayoutOnSkinPartition {
		return b.Partition
	}
	return b.Shape
}

// ResolveBinding locates the skin instance, skin data and skin partition
// of a shape and selects its layout. A shape counts as skinned only when
// its vertex flags carry the skinned bit and the instance resolves.
func ResolveBinding(src blocks.Source, block blocks.Ref) Binding {
	return resolveBinding(src, block, nil)
}

// unbound returns a binding with every link unresolved.
func unbound(block blocks.Ref) Binding {
	return Binding{
		Shape:          block,
		Instance:       blocks.None,
		Data:           blocks.None,
		Partition:      blocks.None,
		SkeletonRoot:   blocks.None,
		ShaderProperty: blocks.None,
	}
}

func resolveBinding(src blocks.Source, block blocks.Ref, rep *reporter) Binding {
	b := unbound(block)
	b.Version = src.Version()
	b.Kind = src.Kind(block)
	b.Dynamic = src.Inherits(block, blocks.KindBSDynamicTriShape)

	flags, _ := src.Int(block, blocks.FieldVertexFlags)
	skinned := flags&blocks.VertexFlagSkinned != 0

	instKind, dataKind := blocks.SkinKinds(b.Version)
	if inst, ok := src.Link(block, blocks.FieldSkin, instKind); ok {
		b.Instance = inst
	} else {
		if skinned {
			rep.note(IssueMissingData, "skinned shape without skin instance", "want", instKind.String())
		}
		skinned = false
	}

	if skinned {
		b.Skinned = true
		if data, ok := src.Link(b.Instance, blocks.FieldData, dataKind); ok {
			b.Data = data
		} else {
			rep.note(IssueMissingData, "skin instance without skin data", "want", dataKind.String())
		}
		if part, ok := src.Link(b.Instance, blocks.FieldSkinPartition, blocks.KindNiSkinPartition); ok {
			b.Partition = part
		}
		if root, ok := src.Link(b.Instance, blocks.FieldSkeletonRoot, blocks.KindNiNode); ok {
			b.SkeletonRoot = root
		}
	}
	b.Layout = SelectLayout(b.Version, b.Skinned)

	if prop, ok := src.Link(block, blocks.FieldShaderProperty, blocks.KindNone); ok && isShaderProperty(src, prop) {
		b.ShaderProperty = prop
		flags2, _ := src.Int(prop, blocks.FieldShaderFlags2)
		b.VertexAlphaAnim = flags2&blocks.ShaderFlag2TreeAnim != 0
		b.VertexColors = flags2&blocks.ShaderFlag2VertexColors != 0
	}
	return b
}

func isShaderProperty(src blocks.Source, ref blocks.Ref) bool {
	return src.Inherits(ref, blocks.KindBSLightingShaderProperty) ||
		src.Inherits(ref, blocks.KindBSEffectShaderProperty)
}
