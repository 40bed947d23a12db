package render

import (
	"image/color"

	"github.com/taigrr/nifview/pkg/math3d"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Overlay colors.
var (
	ColorBackground = RGB(24, 24, 32)
	ColorSurface    = RGB(200, 200, 200)
	ColorWire       = RGB(120, 220, 120)
	ColorVertex     = RGB(255, 255, 0)
	ColorNormal     = RGB(80, 140, 255)
	ColorTangent    = RGB(255, 80, 80)
	ColorBitangent  = RGB(80, 255, 80)
	ColorBone       = RGB(255, 160, 0)
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}

// FromColor4 quantizes a floating point vertex color.
func FromColor4(c math3d.Color4) Color {
	r, g, b, a := c.RGBA8()
	return Color{r, g, b, a}
}

// shade scales the color channels by intensity, keeping alpha.
func shade(c Color, intensity float64) Color {
	return Color{
		R: clamp8(float64(c.R) * intensity),
		G: clamp8(float64(c.G) * intensity),
		B: clamp8(float64(c.B) * intensity),
		A: c.A,
	}
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
