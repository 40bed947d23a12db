package blocks

import (
	"math"

	"github.com/x448/float16"

	"github.com/taigrr/nifview/pkg/math3d"
)

// DecodeUnitByte maps an unsigned byte onto [-1, 1].
func DecodeUnitByte(b uint8) float64 {
	return float64(b)/255.0*2.0 - 1.0
}

// EncodeUnitByte is the inverse of DecodeUnitByte, clamped and rounded.
func EncodeUnitByte(v float64) uint8 {
	return quantize((v + 1) / 2)
}

// DecodeByteVector3 decodes a compressed direction.
func DecodeByteVector3(b [3]uint8) math3d.Vec3 {
	return math3d.V3(DecodeUnitByte(b[0]), DecodeUnitByte(b[1]), DecodeUnitByte(b[2]))
}

// EncodeByteVector3 compresses a direction into three bytes.
func EncodeByteVector3(v math3d.Vec3) [3]uint8 {
	return [3]uint8{EncodeUnitByte(v.X), EncodeUnitByte(v.Y), EncodeUnitByte(v.Z)}
}

// DecodeHalf2 decodes a half precision texture coordinate.
func DecodeHalf2(h [2]uint16) math3d.Vec2 {
	return math3d.V2(
		float64(float16.Frombits(h[0]).Float32()),
		float64(float16.Frombits(h[1]).Float32()),
	)
}

// EncodeHalf2 packs a texture coordinate into half floats.
func EncodeHalf2(v math3d.Vec2) [2]uint16 {
	return [2]uint16{
		float16.Fromfloat32(float32(v.X)).Bits(),
		float16.Fromfloat32(float32(v.Y)).Bits(),
	}
}

// DecodeByteColor4 decodes an RGBA byte color.
func DecodeByteColor4(b [4]uint8) math3d.Color4 {
	return math3d.Color4{
		R: float64(b[0]) / 255.0,
		G: float64(b[1]) / 255.0,
		B: float64(b[2]) / 255.0,
		A: float64(b[3]) / 255.0,
	}
}

// EncodeByteColor4 quantizes a color to bytes.
func EncodeByteColor4(c math3d.Color4) [4]uint8 {
	return [4]uint8{quantize(c.R), quantize(c.G), quantize(c.B), quantize(c.A)}
}

func quantize(unit float64) uint8 {
	if math.IsNaN(unit) || unit <= 0 {
		return 0
	}
	if unit >= 1 {
		return 255
	}
	return uint8(math.Round(unit * 255))
}
