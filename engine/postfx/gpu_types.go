package postfx

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
)

// minKnee keeps the extract smoothstep from collapsing into a hard step with equal edges.
const minKnee = 1e-4

// GPUExtractParams matches the WGSL ExtractParams uniform. Size: 16 bytes.
type GPUExtractParams struct {
	Texel     [2]float32 // offset 0: 1 / source size
	Threshold float32    // offset 8
	Knee      float32    // offset 12
}

// NewGPUExtractParams packs the bright-pass uniform for a source of the given size.
func NewGPUExtractParams(p *sim.Params, source common.Extent) GPUExtractParams {
	return GPUExtractParams{
		Texel:     texel(source),
		Threshold: p.BloomThreshold,
		Knee:      max(p.BloomKnee, minKnee),
	}
}

// Size returns the size of the struct in bytes (16).
func (g *GPUExtractParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform for upload.
func (g *GPUExtractParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloat32(buf, 0, g.Texel[0])
	common.PutFloat32(buf, 4, g.Texel[1])
	common.PutFloat32(buf, 8, g.Threshold)
	common.PutFloat32(buf, 12, g.Knee)
	return buf
}

// GPUBlurParams matches the WGSL BlurParams uniform. Size: 32 bytes.
type GPUBlurParams struct {
	Direction [2]float32 // offset  0: (1,0) horizontal, (0,1) vertical
	Texel     [2]float32 // offset  8: 1 / bloom target size
	Radius    float32    // offset 16: Gaussian sigma in texels
	_         [3]float32 // offset 20
}

// NewGPUBlurParams packs one direction of the separable blur.
func NewGPUBlurParams(p *sim.Params, bloom common.Extent, direction [2]float32) GPUBlurParams {
	return GPUBlurParams{
		Direction: direction,
		Texel:     texel(bloom),
		Radius:    p.BloomRadius,
	}
}

// Size returns the size of the struct in bytes (32).
func (g *GPUBlurParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform for upload.
func (g *GPUBlurParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutFloat32(buf, 0, g.Direction[0])
	common.PutFloat32(buf, 4, g.Direction[1])
	common.PutFloat32(buf, 8, g.Texel[0])
	common.PutFloat32(buf, 12, g.Texel[1])
	common.PutFloat32(buf, 16, g.Radius)
	return buf
}

// GPUToneParams matches the WGSL ToneParams uniform. Size: 48 bytes.
type GPUToneParams struct {
	Exposure       float32 // offset  0
	Toe            float32 // offset  4
	Shoulder       float32 // offset  8
	Contrast       float32 // offset 12
	WhitePoint     float32 // offset 16
	WhiteScale     float32 // offset 20: 1 / filmic(white point)
	Saturation     float32 // offset 24
	ShadowLift     float32 // offset 28
	ShadowFloor    float32 // offset 32
	BloomIntensity float32 // offset 36
	EncodeSRGB     uint32  // offset 40: 1 when the surface is not an sRGB format
	_              uint32  // offset 44
}

// NewGPUToneParams packs the tone mapping uniform.
//
// Parameters:
//   - p: the simulation parameters
//   - encodeSRGB: true when the shader must apply the sRGB transfer itself
//
// Returns:
//   - GPUToneParams: the packed uniform
func NewGPUToneParams(p *sim.Params, encodeSRGB bool) GPUToneParams {
	f := NewFilmic(p)
	return GPUToneParams{
		Exposure:       p.Exposure,
		Toe:            f.Toe,
		Shoulder:       f.Shoulder,
		Contrast:       f.Contrast,
		WhitePoint:     f.WhitePoint,
		WhiteScale:     f.WhiteScale(),
		Saturation:     p.Saturation,
		ShadowLift:     p.ShadowLift,
		ShadowFloor:    p.ShadowFloor,
		BloomIntensity: p.BloomIntensity,
		EncodeSRGB:     common.BoolToUint32(encodeSRGB),
	}
}

// Size returns the size of the struct in bytes (48).
func (g *GPUToneParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform for upload.
func (g *GPUToneParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	floats := [...]float32{
		g.Exposure, g.Toe, g.Shoulder, g.Contrast,
		g.WhitePoint, g.WhiteScale, g.Saturation, g.ShadowLift,
		g.ShadowFloor, g.BloomIntensity,
	}
	for i, f := range floats {
		common.PutFloat32(buf, i*4, f)
	}
	common.PutUint32(buf, 40, g.EncodeSRGB)
	return buf
}

func texel(e common.Extent) [2]float32 {
	return [2]float32{1 / float32(max(e.Width, 1)), 1 / float32(max(e.Height, 1))}
}
