package stars

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
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
			t.Logf("skipping %s: %v", s.Key(), err)
			continue
		}
		require.NoError(t, err, s.Key())
	}
}

func TestEntryPoints(t *testing.T) {
	for _, s := range Shaders() {
		switch s.ShaderType() {
		case shader.ShaderTypeVertex:
			assert.Equal(t, "vs_main", s.EntryPoint(), s.Key())
		case shader.ShaderTypeFragment:
			assert.Equal(t, "fs_main", s.EntryPoint(), s.Key())
		}
	}
}

func TestOverdrawPipelineLayout(t *testing.T) {
	set := newShaderSet()
	p := pipeline.NewPipeline(PipelineKeyOverdraw, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(set.vertex),
		pipeline.WithFragmentShader(set.overdraw),
	)

	layouts := p.BindGroupLayoutDescriptors()
	require.Len(t, layouts, 2)
	assert.Len(t, layouts[0].Entries, 4)
	for _, e := range layouts[0].Entries {
		assert.Equal(t, wgpu.ShaderStageVertex, e.Visibility)
	}

	group, binding, ok := p.Binding(shader.AnnotationArgOverdraw)
	require.True(t, ok)
	assert.Equal(t, 1, group)
	assert.Equal(t, 0, binding)

	counters := layouts[1].Entries[0]
	assert.Equal(t, wgpu.BufferBindingTypeStorage, counters.Buffer.Type)
	assert.Equal(t, wgpu.ShaderStageFragment, counters.Visibility)

	params := layouts[1].Entries[1]
	assert.Equal(t, wgpu.BufferBindingTypeUniform, params.Buffer.Type)
	assert.Equal(t, uint64(16), params.Buffer.MinBindingSize)
}

func TestOverdrawKeyBytes(t *testing.T) {
	extent := common.Extent{Width: 640, Height: 360}
	assert.Equal(t, uint64(640*360*4), OverdrawKey{Extent: extent, Enabled: true}.Bytes())
	assert.Zero(t, OverdrawKey{Extent: extent}.Bytes())
	assert.NotEqual(t, OverdrawKey{Extent: extent, Enabled: true}, OverdrawKey{Extent: extent})
}

func TestOverdrawParamsMarshal(t *testing.T) {
	p := newGPUOverdrawParams(common.Extent{Width: 1920, Height: 1080}, 24)
	require.Equal(t, 16, p.Size())

	buf := p.Marshal()
	assert.Equal(t, uint32(1920), binary.LittleEndian.Uint32(buf[0:]))
	assert.Equal(t, uint32(1080), binary.LittleEndian.Uint32(buf[4:]))
	assert.Equal(t, uint32(24), binary.LittleEndian.Uint32(buf[8:]))
	assert.Zero(t, binary.LittleEndian.Uint32(buf[12:]))
}
