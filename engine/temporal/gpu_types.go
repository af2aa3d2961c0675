package temporal

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
)

// GPUDenoiseParams matches the WGSL DenoiseParams uniform. Size: 48 bytes.
type GPUDenoiseParams struct {
	ReprojectScale  [2]float32 // offset  0
	ReprojectOffset [2]float32 // offset  8
	Texel           [2]float32 // offset 16: 1 / canvas size
	SpatialSigma    float32    // offset 24
	ColorSigma      float32    // offset 28
	MaxHistory      float32    // offset 32
	VarianceClamp   float32    // offset 36
	ForceCurrent    uint32     // offset 40
	Enabled         uint32     // offset 44
}

// NewGPUDenoiseParams packs the denoise parameters for one frame.
//
// Parameters:
//   - p: the simulation parameters
//   - extent: the canvas size
//   - reprojection: the history affine for this frame
//   - forceCurrent: true inside the reset window
//
// Returns:
//   - GPUDenoiseParams: the packed uniform
func NewGPUDenoiseParams(p *sim.Params, extent common.Extent, reprojection Reprojection, forceCurrent bool) GPUDenoiseParams {
	return GPUDenoiseParams{
		ReprojectScale:  reprojection.Scale,
		ReprojectOffset: reprojection.Offset,
		Texel:           [2]float32{1 / float32(max(extent.Width, 1)), 1 / float32(max(extent.Height, 1))},
		SpatialSigma:    p.DenoiseSpatialSigma,
		ColorSigma:      p.DenoiseColorSigma,
		MaxHistory:      common.Saturate(p.DenoiseMaxHistory),
		VarianceClamp:   p.DenoiseVarianceClamp,
		ForceCurrent:    common.BoolToUint32(forceCurrent),
		Enabled:         common.BoolToUint32(p.DenoiseEnabled),
	}
}

// Size returns the size of the struct in bytes (48).
func (g *GPUDenoiseParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform for upload.
func (g *GPUDenoiseParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	floats := [...]float32{
		g.ReprojectScale[0], g.ReprojectScale[1],
		g.ReprojectOffset[0], g.ReprojectOffset[1],
		g.Texel[0], g.Texel[1],
		g.SpatialSigma, g.ColorSigma, g.MaxHistory, g.VarianceClamp,
	}
	for i, f := range floats {
		common.PutFloat32(buf, i*4, f)
	}
	common.PutUint32(buf, 40, g.ForceCurrent)
	common.PutUint32(buf, 44, g.Enabled)
	return buf
}
