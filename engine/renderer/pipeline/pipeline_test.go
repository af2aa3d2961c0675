package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexSource = `//@oxy:include camera
//@oxy:group 0 0 storage_uniform camera camera
struct Out {
    @builtin(position) position: vec4<f32>,
};
@vertex
fn vs_main(@builtin(vertex_index) vi: u32) -> Out {
    var out: Out;
    out.position = camera.view_proj * vec4<f32>(f32(vi), 0.0, 0.0, 1.0);
    return out;
}
`

const fragmentSource = `//@oxy:include camera
//@oxy:group 0 0 storage_uniform camera camera
struct Tint { color: vec4<f32> };
//@oxy:provider 1 0 pass_params
@group(1) @binding(0) var<uniform> tint: Tint;
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return tint.color * camera.time;
}
`

func TestMergedLayoutsUnionVisibility(t *testing.T) {
	p := NewPipeline("test", PipelineTypeRender,
		WithVertexShader(shader.NewShader("test_vs", shader.ShaderTypeVertex, vertexSource)),
		WithFragmentShader(shader.NewShader("test_fs", shader.ShaderTypeFragment, fragmentSource)),
	)

	layouts := p.BindGroupLayoutDescriptors()
	require.Len(t, layouts, 2)

	g0 := p.BindGroupLayoutDescriptor(0)
	require.Len(t, g0.Entries, 1)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, g0.Entries[0].Visibility)
	assert.Equal(t, uint64(112), g0.Entries[0].Buffer.MinBindingSize)

	g1 := p.BindGroupLayoutDescriptor(1)
	require.Len(t, g1.Entries, 1)
	assert.Equal(t, wgpu.ShaderStageFragment, g1.Entries[0].Visibility)

	group, binding, ok := p.Binding(shader.AnnotationArgPassParams)
	require.True(t, ok)
	assert.Equal(t, 1, group)
	assert.Equal(t, 0, binding)
}

func TestBuilderDefaults(t *testing.T) {
	p := NewPipeline("defaults", PipelineTypeRender)
	state := p.RenderState()
	assert.Equal(t, wgpu.TextureFormatUndefined, state.Format)
	assert.Equal(t, uint32(1), state.SampleCount)
	assert.Nil(t, state.Blend)
	assert.Equal(t, wgpu.ColorWriteMaskAll, state.WriteMask)
	assert.Empty(t, p.Shaders())
	assert.Nil(t, p.RenderPipeline())

	p = NewPipeline("stars", PipelineTypeRender,
		WithTargetFormat(wgpu.TextureFormatRGBA16Float),
		WithSampleCount(4),
		WithAdditiveBlend(),
		WithWriteMask(wgpu.ColorWriteMaskNone),
	)
	state = p.RenderState()
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, state.Format)
	assert.Equal(t, uint32(4), state.SampleCount)
	require.NotNil(t, state.Blend)
	assert.Equal(t, wgpu.BlendFactorOne, state.Blend.Color.DstFactor)
	assert.Equal(t, wgpu.ColorWriteMaskNone, state.WriteMask)

	assert.Equal(t, uint32(1), NewPipeline("zero", PipelineTypeRender, WithSampleCount(0)).RenderState().SampleCount)
}

func TestStagesIndexedByType(t *testing.T) {
	vs := shader.NewShader("test_vs", shader.ShaderTypeVertex, vertexSource)
	fs := shader.NewShader("test_fs", shader.ShaderTypeFragment, fragmentSource)
	p := NewPipeline("order", PipelineTypeRender, WithFragmentShader(fs), WithVertexShader(vs), WithComputeShader(nil))

	assert.Same(t, vs, p.Shader(shader.ShaderTypeVertex))
	assert.Same(t, fs, p.Shader(shader.ShaderTypeFragment))
	assert.Nil(t, p.Shader(shader.ShaderTypeCompute))
	assert.Nil(t, p.Shader(shader.ShaderType(7)))
	assert.Equal(t, []shader.Shader{vs, fs}, p.Shaders())
}
