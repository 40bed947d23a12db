package models

import "github.com/taigrr/nifview/pkg/blocks"

// splitPartitions groups consecutive triangles so that no group references
// more than maxBones distinct bones. Order is preserved, so concatenating
// the groups gives back tris. A triangle that alone exceeds the limit gets
// a group of its own. A non-positive limit yields a single group.
func splitPartitions(tris []blocks.Triangle, indices [][4]uint8, weights [][4]float64, maxBones int) [][]blocks.Triangle {
	if len(tris) == 0 {
		return nil
	}
	if maxBones <= 0 {
		return [][]blocks.Triangle{tris}
	}

	var (
		groups [][]blocks.Triangle
		cur    []blocks.Triangle
		used   = make(map[uint8]struct{})
	)
	for _, t := range tris {
		added := newBones(t, indices, weights, used)
		if len(cur) > 0 && len(used)+len(added) > maxBones {
			groups = append(groups, cur)
			cur = nil
			clear(used)
			added = newBones(t, indices, weights, used)
		}
		for _, b := range added {
			used[b] = struct{}{}
		}
		cur = append(cur, t)
	}
	return append(groups, cur)
}

// newBones lists the bones a triangle uses that are not yet in used.
func newBones(t blocks.Triangle, indices [][4]uint8, weights [][4]float64, used map[uint8]struct{}) []uint8 {
	var out []uint8
	for _, v := range t {
		for k := 0; k < 4; k++ {
			if weights[v][k] <= 0 {
				continue
			}
			b := indices[v][k]
			if _, ok := used[b]; ok {
				continue
			}
			dup := false
			for _, o := range out {
				if o == b {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, b)
			}
		}
	}
	return out
}
