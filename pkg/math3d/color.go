package math3d

import "math"

// Color4 is a floating point RGBA color with channels in [0, 1].
type Color4 struct {
	R, G, B, A float64
}

// RGBA8 quantizes the color to 8 bits per channel.
func (c Color4) RGBA8() (r, g, b, a uint8) {
	return unit8(c.R), unit8(c.G), unit8(c.B), unit8(c.A)
}

func unit8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
