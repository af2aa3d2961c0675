package particles

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/galaxy"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShadersCompile(t *testing.T) {
	for _, s := range Shaders() {
		_, err := shader.Validate(s)
		if errors.Is(err, shader.ErrValidatorUnsupported) {
			t.Skipf("validator limitation: %v", err)
		}
		require.NoError(t, err, s.Key())
	}
}

func TestGenerateLayout(t *testing.T) {
	s := Shaders()[0]
	assert.Equal(t, [3]uint32{WorkgroupSize, 1, 1}, s.WorkgroupSize())

	p := pipeline.NewPipeline(PipelineKeyGenerate, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(s))
	group, binding, ok := p.Binding(shader.AnnotationArgGalaxyParams)
	require.True(t, ok)
	assert.Equal(t, 0, group)
	assert.Equal(t, 0, binding)

	group, binding, ok = p.Binding(shader.AnnotationArgParticle)
	require.True(t, ok)
	assert.Equal(t, 0, group)
	assert.Equal(t, 1, binding)

	desc := p.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 2)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, desc.Entries[1].Buffer.Type)
	assert.Equal(t, uint64(galaxy.ParticleStride), desc.Entries[1].Buffer.MinBindingSize)
}

func TestRegenerationRetriesDroppedFrame(t *testing.T) {
	var r regeneration
	assert.False(t, r.take())

	r.mark()
	assert.True(t, r.take())
	assert.False(t, r.take(), "a taken dispatch is not repeated within the frame")

	r.complete(false)
	assert.True(t, r.dirty, "a dropped frame leaves the regeneration pending")
	assert.True(t, r.take())

	r.complete(true)
	assert.False(t, r.dirty)
	assert.False(t, r.take())

	r.complete(false)
	assert.False(t, r.dirty, "completing without a dispatch in flight changes nothing")
}
