// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Extent is a pixel size in device pixels. It is the cache key for every canvas-sized GPU resource.
type Extent struct {
	Width  uint32
	Height uint32
}

// NewExtent builds an Extent from signed window dimensions, clamping negatives to zero.
//
// Parameters:
//   - width: width in device pixels
//   - height: height in device pixels
//
// Returns:
//   - Extent: the clamped extent
func NewExtent(width, height int) Extent {
	return Extent{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))}
}

// Empty reports whether either dimension is zero. Nothing can be rendered into an empty extent.
func (e Extent) Empty() bool {
	return e.Width == 0 || e.Height == 0
}

// Half returns the extent at half resolution, never smaller than 1x1.
//
// Returns:
//   - Extent: the half-resolution extent
func (e Extent) Half() Extent {
	return Extent{Width: max(e.Width/2, 1), Height: max(e.Height/2, 1)}
}

// Pixels returns the number of pixels covered by the extent.
func (e Extent) Pixels() uint64 {
	return uint64(e.Width) * uint64(e.Height)
}

// Aspect returns width divided by height, or 1 for an empty extent.
func (e Extent) Aspect() float32 {
	if e.Empty() {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// This is primarily used in the BindGroupProvider to stage sampler data before creating the GPU sampler and bind group.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// Descriptor returns the sampler descriptor for s. Zero fields fall back to linear filtering,
// clamp-to-edge addressing, a 32 level LOD range and no anisotropy.
func (s SamplerStagingData) Descriptor(label string) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  orDefault(s.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  orDefault(s.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  orDefault(s.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     orDefault(s.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     orDefault(s.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  orDefault(s.MipmapFilter, wgpu.MipmapFilterModeNearest),
		LodMinClamp:   s.LodMinClamp,
		LodMaxClamp:   orDefault(s.LodMaxClamp, 32),
		MaxAnisotropy: orDefault(s.MaxAnisotropy, 1),
	}
}

func orDefault[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}

// LinearClampSampler is the sampler used by every fullscreen pass that reads a canvas-sized texture.
var LinearClampSampler = SamplerStagingData{
	AddressModeU: wgpu.AddressModeClampToEdge,
	AddressModeV: wgpu.AddressModeClampToEdge,
	AddressModeW: wgpu.AddressModeClampToEdge,
	MagFilter:    wgpu.FilterModeLinear,
	MinFilter:    wgpu.FilterModeLinear,
	MipmapFilter: wgpu.MipmapFilterModeNearest,
	LodMaxClamp:  1,
}
