package renderer

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTargetSpecDefaults(t *testing.T) {
	s := RenderTargetSpec{Extent: common.Extent{Width: 100, Height: 50}}.withDefaults()
	assert.Equal(t, HDRFormat, s.Format)
	assert.Equal(t, uint32(1), s.SampleCount)
	assert.NotZero(t, s.Usage&wgpu.TextureUsageTextureBinding)

	msaa := RenderTargetSpec{Extent: common.Extent{Width: 100, Height: 50}, SampleCount: 4}.withDefaults()
	assert.Zero(t, msaa.Usage&wgpu.TextureUsageTextureBinding)
	assert.Equal(t, uint64(100*50*8*4), msaa.Bytes())
}

func TestIsSRGB(t *testing.T) {
	assert.True(t, IsSRGB(wgpu.TextureFormatBGRA8UnormSrgb))
	assert.False(t, IsSRGB(wgpu.TextureFormatBGRA8Unorm))
}

func TestParsePresentMode(t *testing.T) {
	assert.Equal(t, PresentModeVSync, ParsePresentMode("vsync"))
	assert.Equal(t, PresentModeUncapped, ParsePresentMode("uncapped"))
	assert.Equal(t, PresentModeUncapped, ParsePresentMode(""))
}

func TestReadbackMachineSkipsWhileBusy(t *testing.T) {
	var m readbackMachine
	require.True(t, m.tryCopy())
	assert.False(t, m.tryCopy(), "a second copy must be skipped while the first is in flight")
	require.True(t, m.beginMap())
	assert.False(t, m.beginMap())
	assert.True(t, m.busy())
	m.finish()
	assert.False(t, m.busy())
	assert.True(t, m.tryCopy())
	m.cancelCopy()
	assert.False(t, m.busy())
}

func TestTimestampDurations(t *testing.T) {
	raw := make([]byte, 4*8)
	for i, ts := range []uint64{1000, 1500, 1500, 4000} {
		binary.LittleEndian.PutUint64(raw[i*8:], ts)
	}
	d := TimestampDurations(raw, []string{"compute", "stars", "post"})
	require.NotNil(t, d)
	assert.Equal(t, 500*time.Nanosecond, d["compute"])
	assert.Equal(t, time.Duration(0), d["stars"])
	assert.Equal(t, 2500*time.Nanosecond, d["post"])

	assert.Nil(t, TimestampDurations(raw[:16], []string{"a", "b"}))
}

func TestNilGPUTimerIsInert(t *testing.T) {
	var timer *GPUTimer
	assert.NotPanics(t, func() {
		timer.Mark(nil, 0)
		timer.Resolve(nil)
		timer.Map()
		timer.Cancel()
		timer.Release()
	})
	assert.Nil(t, timer.Durations())
}
