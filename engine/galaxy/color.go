package galaxy

import (
	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/chewxy/math32"
)

// BlackbodyColor approximates the colour of a blackbody at temperature kelvin with the
// Tanner Helland curve fit. Channels are in [0, 1].
func BlackbodyColor(kelvin float32) [3]float32 {
	t := common.Clamp(kelvin, 1000, 40000) / 100

	var r, g, b float32
	if t <= 66 {
		r = 255
		g = 99.4708025861*math32.Log(t) - 161.1195681661
	} else {
		r = 329.698727446 * math32.Pow(t-60, -0.1332047592)
		g = 288.1221695283 * math32.Pow(t-60, -0.0755148492)
	}
	switch {
	case t >= 66:
		b = 255
	case t <= 19:
		b = 0
	default:
		b = 138.5177312231*math32.Log(t-10) - 305.0447927307
	}
	return [3]float32{
		common.Saturate(r / 255),
		common.Saturate(g / 255),
		common.Saturate(b / 255),
	}
}

// PackRGBA8 packs an opaque colour with red in the low byte, the layout WGSL unpack4x8unorm reads.
func PackRGBA8(c [3]float32) uint32 {
	q := func(v float32) uint32 { return uint32(math32.Round(common.Saturate(v) * 255)) }
	return q(c[0]) | q(c[1])<<8 | q(c[2])<<16 | 255<<24
}

// UnpackRGBA8 is the inverse of PackRGBA8, ignoring alpha.
func UnpackRGBA8(v uint32) [3]float32 {
	return [3]float32{
		float32(v&0xFF) / 255,
		float32(v>>8&0xFF) / 255,
		float32(v>>16&0xFF) / 255,
	}
}
