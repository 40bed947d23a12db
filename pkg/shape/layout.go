package shape

import "github.com/taigrr/nifview/pkg/blocks"

// Layout says which block physically holds a shape's vertex table.
type Layout uint8

const (
	// LayoutOnShape reads vertices and triangles from the shape block.
	LayoutOnShape Layout = iota
	// LayoutOnSkinPartition reads vertices from the skin partition and
	// concatenates each partition's triangles.
	LayoutOnSkinPartition
)

func (l Layout) String() string {
	switch l {
	case LayoutOnShape:
		return "shape"
	case LayoutOnSkinPartition:
		return "skin-partition"
	}
	return "unknown"
}

// SelectLayout picks the layout for a version and skinned state. Only
// skinned shapes of VersionSSE keep their vertices on the partition.
func SelectLayout(v blocks.Version, skinned bool) Layout {
	if v == blocks.VersionSSE && skinned {
		return LayoutOnSkinPartition
	}
	return LayoutOnShape
}
