package renderer

import (
	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// HDRFormat is the colour format of every intermediate canvas-sized target.
const HDRFormat = wgpu.TextureFormatRGBA16Float

// RenderTargetSpec describes a 2D texture rendered into and usually sampled afterwards.
type RenderTargetSpec struct {
	Extent      common.Extent
	Format      wgpu.TextureFormat
	SampleCount uint32
	Usage       wgpu.TextureUsage
}

// withDefaults fills in RGBA16Float, one sample, and attachment plus binding usage.
// Multisampled textures cannot be bound, so their default usage is attachment only.
func (s RenderTargetSpec) withDefaults() RenderTargetSpec {
	if s.Format == wgpu.TextureFormatUndefined {
		s.Format = HDRFormat
	}
	if s.SampleCount == 0 {
		s.SampleCount = 1
	}
	if s.Usage == 0 {
		s.Usage = wgpu.TextureUsageRenderAttachment
		if s.SampleCount == 1 {
			s.Usage |= wgpu.TextureUsageTextureBinding
		}
	}
	return s
}

// Bytes estimates the device memory of a texture created from the spec.
func (s RenderTargetSpec) Bytes() uint64 {
	s = s.withDefaults()
	return s.Extent.Pixels() * BytesPerPixel(s.Format) * uint64(s.SampleCount)
}

// BytesPerPixel returns the texel size of the formats this renderer creates.
// Unknown formats are counted as 4 bytes.
func BytesPerPixel(format wgpu.TextureFormat) uint64 {
	switch format {
	case wgpu.TextureFormatRGBA16Float:
		return 8
	case wgpu.TextureFormatRGBA32Float:
		return 16
	default:
		return 4
	}
}

// IsSRGB reports whether writes to format are encoded to sRGB by the hardware.
func IsSRGB(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	default:
		return false
	}
}

// RenderTarget is a texture plus its default view.
type RenderTarget struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Spec    RenderTargetSpec
}

// Release destroys the view and the texture.
func (t *RenderTarget) Release() {
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// Bytes returns the estimated device memory of the target.
func (t *RenderTarget) Bytes() uint64 {
	return t.Spec.Bytes()
}
