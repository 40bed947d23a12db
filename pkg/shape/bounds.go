package shape

import "github.com/taigrr/nifview/pkg/math3d"

// BoundsCache memoizes a shape's local bounding sphere.
type BoundsCache struct {
	sphere math3d.Sphere
	fresh  bool
}

// Invalidate forces the next Get to recompute.
func (c *BoundsCache) Invalidate() {
	c.fresh = false
}

// Set stores a sphere computed elsewhere, such as by a skinning pass.
func (c *BoundsCache) Set(s math3d.Sphere) {
	c.sphere = s
	c.fresh = true
}

// Fresh reports whether a cached sphere is available.
func (c *BoundsCache) Fresh() bool {
	return c.fresh
}

// Get returns the cached sphere, recomputing it from positions if stale.
// With no positions it falls back to the authored sphere.
func (c *BoundsCache) Get(positions []math3d.Vec3, fallback math3d.Sphere) math3d.Sphere {
	if !c.fresh {
		if len(positions) > 0 {
			c.sphere = math3d.SphereFromPoints(positions)
		} else {
			c.sphere = fallback
		}
		c.fresh = true
	}
	return c.sphere
}
