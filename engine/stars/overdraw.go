package stars

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
)

// OverdrawKey identifies the overdraw counter buffer. A disabled key never owns a buffer.
type OverdrawKey struct {
	Extent  common.Extent
	Enabled bool
}

// Bytes returns the size of the per-pixel u32 counter buffer for the key.
func (k OverdrawKey) Bytes() uint64 {
	if !k.Enabled {
		return 0
	}
	return k.Extent.Pixels() * 4
}

// gpuOverdrawParams matches the WGSL OverdrawParams struct (16 bytes).
type gpuOverdrawParams struct {
	Viewport [2]uint32
	Limit    uint32
	_pad     uint32
}

func newGPUOverdrawParams(extent common.Extent, limit uint32) gpuOverdrawParams {
	return gpuOverdrawParams{
		Viewport: [2]uint32{extent.Width, extent.Height},
		Limit:    limit,
	}
}

func (g *gpuOverdrawParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

func (g *gpuOverdrawParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutUint32(buf, 0, g.Viewport[0])
	common.PutUint32(buf, 4, g.Viewport[1])
	common.PutUint32(buf, 8, g.Limit)
	return buf
}
