// Package blocks describes the attributed block graph that skinned shapes
// are read from: block kinds, format versions, field names, the Source
// capability the shape pipeline queries, and an in-memory Graph.
package blocks

// Version is the format's user version tag. It decides which skin block
// types are used and where skinned vertex data lives.
type Version uint32

const (
	// VersionSSE stores skinned vertex data on the skin partition.
	VersionSSE Version = 100
	// VersionFO4 uses the BSSkin instance and bone data blocks.
	VersionFO4 Version = 130
)

// Kind is a block type, resolved once when a graph is built instead of
// comparing type name strings on every access.
type Kind uint8

const (
	KindNone Kind = iota // untyped row record
	KindNiNode
	KindBSTriShape
	KindBSDynamicTriShape
	KindBSSubIndexTriShape
	KindNiSkinInstance
	KindBSDismemberSkinInstance
	KindBSSkinInstance
	KindNiSkinData
	KindBSSkinBoneData
	KindNiSkinPartition
	KindBSLightingShaderProperty
	KindBSEffectShaderProperty
	kindCount
)

var kindNames = [kindCount]string{
	KindNone:                     "",
	KindNiNode:                   "NiNode",
	KindBSTriShape:               "BSTriShape",
	KindBSDynamicTriShape:        "BSDynamicTriShape",
	KindBSSubIndexTriShape:       "BSSubIndexTriShape",
	KindNiSkinInstance:           "NiSkinInstance",
	KindBSDismemberSkinInstance:  "BSDismemberSkinInstance",
	KindBSSkinInstance:           "BSSkin::Instance",
	KindNiSkinData:               "NiSkinData",
	KindBSSkinBoneData:           "BSSkin::BoneData",
	KindNiSkinPartition:          "NiSkinPartition",
	KindBSLightingShaderProperty: "BSLightingShaderProperty",
	KindBSEffectShaderProperty:   "BSEffectShaderProperty",
}

var kindParents = [kindCount]Kind{
	KindBSDynamicTriShape:       KindBSTriShape,
	KindBSSubIndexTriShape:      KindBSTriShape,
	KindBSDismemberSkinInstance: KindNiSkinInstance,
}

// String returns the on-disk type name.
func (k Kind) String() string {
	if k >= kindCount {
		return "Unknown"
	}
	return kindNames[k]
}

// Parent returns the kind k derives from, or KindNone.
func (k Kind) Parent() Kind {
	if k >= kindCount {
		return KindNone
	}
	return kindParents[k]
}

// Inherits reports whether k is base or derives from it.
func (k Kind) Inherits(base Kind) bool {
	for ; k != KindNone; k = k.Parent() {
		if k == base {
			return true
		}
	}
	return base == KindNone
}

// ParseKind maps an on-disk type name to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k := KindNiNode; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return KindNone, false
}

// SkinKinds returns the skin instance and skin data kinds for a version.
func SkinKinds(v Version) (instance, data Kind) {
	if v == VersionFO4 {
		return KindBSSkinInstance, KindBSSkinBoneData
	}
	return KindNiSkinInstance, KindNiSkinData
}
