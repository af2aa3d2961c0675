package common

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestDispatchSizeCoversEveryInvocation(t *testing.T) {
	cases := []uint32{1, 63, 64, 65, 1_017_000, 64 * MaxWorkgroupsPerDimension, 64*MaxWorkgroupsPerDimension + 1, 10_000_000}
	for _, n := range cases {
		d := DispatchSize(n, 64)
		assert.LessOrEqual(t, d[0], uint32(MaxWorkgroupsPerDimension), n)
		assert.GreaterOrEqual(t, uint64(d[0])*uint64(d[1])*64, uint64(n), n)
		assert.Equal(t, uint32(1), d[2])
	}
	assert.Equal(t, [3]uint32{1, 1, 1}, DispatchSize(0, 64))
}

func TestSmoothstep(t *testing.T) {
	assert.Equal(t, float32(0), Smoothstep(0, 1, -1))
	assert.Equal(t, float32(1), Smoothstep(0, 1, 2))
	assert.InDelta(t, 0.5, Smoothstep(0, 1, 0.5), 1e-6)
	assert.Equal(t, float32(1), Smoothstep(1, 1, 1))
}

func TestExtentHalfNeverEmpty(t *testing.T) {
	assert.Equal(t, Extent{Width: 1, Height: 1}, Extent{Width: 1, Height: 1}.Half())
	assert.Equal(t, Extent{Width: 640, Height: 360}, Extent{Width: 1280, Height: 720}.Half())
	assert.True(t, NewExtent(-5, 10).Empty())
}

func TestSamplerDescriptorDefaults(t *testing.T) {
	d := SamplerStagingData{}.Descriptor("empty")
	assert.Equal(t, "empty", d.Label)
	assert.Equal(t, wgpu.AddressModeClampToEdge, d.AddressModeU)
	assert.Equal(t, wgpu.FilterModeLinear, d.MinFilter)
	assert.Equal(t, float32(32), d.LodMaxClamp)
	assert.Equal(t, uint16(1), d.MaxAnisotropy)

	d = LinearClampSampler.Descriptor("linear")
	assert.Equal(t, float32(1), d.LodMaxClamp)
	assert.Equal(t, wgpu.MipmapFilterModeNearest, d.MipmapFilter)
}
