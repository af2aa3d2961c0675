package postfx

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShadersCompile(t *testing.T) {
	for _, s := range Shaders() {
		_, err := shader.Validate(s)
		if errors.Is(err, shader.ErrValidatorUnsupported) {
			t.Logf("skipping %s: %v", s.Key(), err)
			continue
		}
		require.NoError(t, err, s.Key())
	}
}

func TestToneMapLayout(t *testing.T) {
	fs := Shaders()[5]
	desc := fs.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 4)
	assert.Equal(t, uint64(48), desc.Entries[3].Buffer.MinBindingSize)

	for key, want := range map[shader.AnnotationArg]int{
		shader.AnnotationArgSourceTexture: 0,
		shader.AnnotationArgBloomTexture:  1,
		shader.AnnotationArgLinearSampler: 2,
		shader.AnnotationArgPassParams:    3,
	} {
		_, binding, ok := fs.Binding(key)
		require.True(t, ok, key)
		assert.Equal(t, want, binding, key)
	}
}

func TestUniformSizes(t *testing.T) {
	p := sim.DefaultParams()
	extract := NewGPUExtractParams(&p, common.Extent{Width: 800, Height: 600})
	blur := NewGPUBlurParams(&p, common.Extent{Width: 400, Height: 300}, vertical)
	tone := NewGPUToneParams(&p, true)

	assert.Len(t, extract.Marshal(), 16)
	assert.Len(t, blur.Marshal(), 32)
	assert.Len(t, tone.Marshal(), 48)

	assert.Equal(t, []float32{1.0 / 400, 1.0 / 300}, blur.Texel[:])
	assert.Equal(t, uint32(1), tone.EncodeSRGB)
}

func TestExtractKneeNeverZero(t *testing.T) {
	p := sim.DefaultParams()
	p.BloomKnee = 0
	extract := NewGPUExtractParams(&p, common.Extent{Width: 1, Height: 1})
	assert.Greater(t, extract.Knee, float32(0))
}

func TestFilmicEndpoints(t *testing.T) {
	p := sim.DefaultParams()
	f := NewFilmic(&p)

	assert.Equal(t, float32(0), f.Curve(0))
	assert.Equal(t, float32(0), f.Apply(0))
	assert.InDelta(t, 1.0, f.Apply(f.WhitePoint), 1e-5)
	assert.InDelta(t, 1.0, f.Apply(f.WhitePoint*4), 1e-5)
	assert.Equal(t, float32(0), f.Apply(-3))
}

func TestFilmicMonotonic(t *testing.T) {
	p := sim.DefaultParams()
	f := NewFilmic(&p)

	prev := float32(-1)
	for x := float32(0); x <= f.WhitePoint; x += f.WhitePoint / 512 {
		y := f.Apply(x)
		assert.GreaterOrEqual(t, y, prev, "x=%v", x)
		prev = y
	}
}

func TestFilmicDegenerateWhitePoint(t *testing.T) {
	f := Filmic{Toe: 0.2, Shoulder: 0.15, Contrast: 0.5, WhitePoint: 0}
	assert.Equal(t, float32(0), f.WhiteScale())
	assert.Equal(t, float32(0), f.Apply(1))
}

func TestToneMapBlackStaysBlack(t *testing.T) {
	p := sim.DefaultParams()
	p.ShadowLift = 0.5
	p.Saturation = 2

	out := ToneMap([3]float32{}, [3]float32{}, &p)
	assert.Equal(t, [3]float32{}, out)
}

func TestToneMapOutputInRange(t *testing.T) {
	p := sim.DefaultParams()
	p.Saturation = 3
	for _, hdr := range [][3]float32{
		{0.001, 0.002, 0.0005},
		{0.5, 0.2, 0.9},
		{40, 0.1, 0.1},
		{float32(math.Inf(1)), 1, 1},
	} {
		out := ToneMap(hdr, [3]float32{0.1, 0.1, 0.1}, &p)
		for i, c := range out {
			assert.GreaterOrEqual(t, c, float32(0), "%v[%d]", hdr, i)
			assert.LessOrEqual(t, c, float32(1), "%v[%d]", hdr, i)
		}
	}
}

func TestToneMapBloomAddsLight(t *testing.T) {
	p := sim.DefaultParams()
	hdr := [3]float32{0.2, 0.2, 0.2}
	plain := ToneMap(hdr, [3]float32{}, &p)
	bloomed := ToneMap(hdr, [3]float32{0.5, 0.5, 0.5}, &p)
	assert.Greater(t, Luminance(bloomed), Luminance(plain))

	p.BloomIntensity = 0
	assert.Equal(t, plain, ToneMap(hdr, [3]float32{0.5, 0.5, 0.5}, &p))
}

func TestShadowLiftOnlyAboveFloor(t *testing.T) {
	p := sim.DefaultParams()
	p.ShadowFloor = 0.05

	lifted := p
	lifted.ShadowLift = 0.2

	dim := [3]float32{0.001, 0.001, 0.001}
	assert.Equal(t, ToneMap(dim, [3]float32{}, &p), ToneMap(dim, [3]float32{}, &lifted))

	bright := [3]float32{1, 1, 1}
	assert.Greater(t, Luminance(ToneMap(bright, [3]float32{}, &lifted)), Luminance(ToneMap(bright, [3]float32{}, &p)))
}
