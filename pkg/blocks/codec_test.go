package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/nifview/pkg/math3d"
)

func TestDecodeUnitByte(t *testing.T) {
	assert.InDelta(t, -1.0, DecodeUnitByte(0), 1e-12)
	assert.InDelta(t, 1.0, DecodeUnitByte(255), 1e-12)
	assert.InDelta(t, 128.0/255.0*2.0-1.0, DecodeUnitByte(128), 1e-12)
}

func TestUnitByteRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		b := uint8(i)
		assert.Equal(t, b, EncodeUnitByte(DecodeUnitByte(b)))
	}
	assert.Equal(t, uint8(0), EncodeUnitByte(-3))
	assert.Equal(t, uint8(255), EncodeUnitByte(3))
}

func TestByteVector3(t *testing.T) {
	v := DecodeByteVector3(EncodeByteVector3(math3d.V3(0, 0, 1)))
	assert.InDelta(t, 0, v.X, 1.0/255)
	assert.InDelta(t, 0, v.Y, 1.0/255)
	assert.InDelta(t, 1, v.Z, 1e-12)
}

func TestHalf2(t *testing.T) {
	uv := DecodeHalf2(EncodeHalf2(math3d.V2(0.5, 0.25)))
	assert.Equal(t, 0.5, uv.X)
	assert.Equal(t, 0.25, uv.Y)

	// 0x3C00 is 1.0 in IEEE half precision.
	one := DecodeHalf2([2]uint16{0x3C00, 0})
	assert.Equal(t, 1.0, one.X)
	assert.Equal(t, 0.0, one.Y)
}

func TestByteColor4(t *testing.T) {
	c := DecodeByteColor4([4]uint8{255, 0, 51, 255})
	assert.InDelta(t, 1.0, c.R, 1e-12)
	assert.InDelta(t, 0.0, c.G, 1e-12)
	assert.InDelta(t, 0.2, c.B, 1e-12)
	assert.Equal(t, [4]uint8{255, 0, 51, 255}, EncodeByteColor4(c))
}
