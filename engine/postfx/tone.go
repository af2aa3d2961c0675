package postfx

import (
	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
)

// Constants of the Hable curve that are not exposed as parameters.
const (
	linearAngle     = 0.1
	toeNumerator    = 0.02
	toeDenominator  = 0.3
	shadowMaskDelta = 1e-4
)

// Filmic is the CPU mirror of the tone mapper's filmic curve. The GPU shader evaluates the
// same expression; tests and the census tool use this copy.
type Filmic struct {
	Toe        float32
	Shoulder   float32
	Contrast   float32
	WhitePoint float32
}

// NewFilmic builds the curve for the given parameters.
func NewFilmic(p *sim.Params) Filmic {
	return Filmic{Toe: p.Toe, Shoulder: p.Shoulder, Contrast: p.Contrast, WhitePoint: p.WhitePoint}
}

func (f Filmic) hable(x float32) float32 {
	a, b, d := f.Shoulder, f.Contrast, f.Toe
	num := x*(a*x+linearAngle*b) + d*toeNumerator
	den := x*(a*x+b) + d*toeDenominator
	return num/den - toeNumerator/toeDenominator
}

// Curve returns the unnormalized curve shifted so that Curve(0) is exactly 0.
func (f Filmic) Curve(x float32) float32 {
	return f.hable(x) - f.hable(0)
}

// WhiteScale returns the factor mapping the white point to 1, or 0 for a degenerate curve.
func (f Filmic) WhiteScale() float32 {
	w := f.Curve(f.WhitePoint)
	if w <= 0 {
		return 0
	}
	return 1 / w
}

// Apply maps a linear HDR channel value to [0, 1].
//
// Parameters:
//   - x: the exposed channel value
//
// Returns:
//   - float32: the display-linear value
func (f Filmic) Apply(x float32) float32 {
	x = common.Clamp(x, 0, f.WhitePoint)
	return max(f.Curve(x)*f.WhiteScale(), 0)
}

// Luminance returns the Rec. 709 luminance of a linear colour.
func Luminance(c [3]float32) float32 {
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}

// ToneMap is the CPU mirror of the tone mapping fragment shader, stopping before the sRGB
// transfer. Black input with no bloom returns exactly black.
//
// Parameters:
//   - hdr: the stabilized HDR colour
//   - bloom: the blurred bloom colour
//   - p: the simulation parameters
//
// Returns:
//   - [3]float32: the display-linear colour in [0, 1]
func ToneMap(hdr, bloom [3]float32, p *sim.Params) [3]float32 {
	f := NewFilmic(p)
	scale := f.WhiteScale()

	var c [3]float32
	for i := range c {
		x := common.Clamp(hdr[i]*p.Exposure+bloom[i]*p.BloomIntensity, 0, f.WhitePoint)
		c[i] = max(f.Curve(x)*scale, 0)
	}

	lum := Luminance(c)
	for i := range c {
		c[i] = max(common.Mix(lum, c[i], p.Saturation), 0)
	}
	if lum > p.ShadowFloor {
		mask := common.Smoothstep(p.ShadowFloor, p.ShadowFloor*2+shadowMaskDelta, lum)
		for i := range c {
			c[i] += p.ShadowLift * mask * (1 - common.Saturate(c[i]))
		}
	}
	for i := range c {
		c[i] = common.Saturate(c[i])
	}
	return c
}
