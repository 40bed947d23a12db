package models

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/nifview/pkg/blocks"
)

func TestSplitPartitions(t *testing.T) {
	// Vertex i is bound to bone i alone.
	indices := [][4]uint8{{0}, {1}, {2}, {3}, {4}, {5}}
	weights := [][4]float64{{1}, {1}, {1}, {1}, {1}, {1}}
	tris := []blocks.Triangle{{0, 1, 2}, {1, 2, 3}, {3, 4, 5}, {0, 4, 5}}

	tests := []struct {
		name     string
		maxBones int
		want     int
	}{
		{"unlimited", 0, 1},
		{"all fit", 6, 1},
		{"four bones", 4, 2},
		{"three bones", 3, 4},
		{"below a triangle", 2, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			groups := splitPartitions(tris, indices, weights, tc.maxBones)
			assert.Len(t, groups, tc.want)
			assert.Equal(t, tris, slices.Concat(groups...), "order preserved")
		})
	}
}

func TestSplitPartitionsIgnoresZeroWeights(t *testing.T) {
	indices := [][4]uint8{{0, 9}, {0, 8}, {0, 7}}
	weights := [][4]float64{{1, 0}, {1, 0}, {1, 0}}
	groups := splitPartitions([]blocks.Triangle{{0, 1, 2}, {2, 1, 0}}, indices, weights, 1)
	assert.Len(t, groups, 1)
	assert.Nil(t, splitPartitions(nil, nil, nil, 1))
}
