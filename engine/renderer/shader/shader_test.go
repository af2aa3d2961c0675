package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testComputeSource = `//@oxy:include particle
//@oxy:include galaxy_params
//@oxy:include particle
//@oxy:group 0 0 storage_uniform galaxy galaxy_params
//@oxy:group 0 1 storage_read particles array<particle>
//@oxy:provider 0 2 visible_count
@group(0) @binding(2) var<storage, read_write> visible_count: atomic<u32>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    if (id.x >= galaxy.total_particles) { return; }
    if (particles[id.x].kind == 0u) {
        atomicAdd(&visible_count, 1u);
    }
}
`

const testFragmentSource = `//@oxy:include fullscreen
struct Params {
    texel: vec2<f32>,
    strength: f32,
    enabled: u32,
};
//@oxy:provider 0 0 frame_textures source_texture
@group(0) @binding(0) var source_tex: texture_2d<f32>;
//@oxy:provider 0 1 frame_textures linear_sampler
@group(0) @binding(1) var linear: sampler;
//@oxy:provider 0 2 pass_params
@group(0) @binding(2) var<uniform> params: Params;

@vertex
fn vs_main(@builtin(vertex_index) vi: u32) -> FullscreenVaryings {
    return fullscreen_vertex(vi);
}

@fragment
fn fs_main(in: FullscreenVaryings) -> @location(0) vec4<f32> {
    return textureSampleLevel(source_tex, linear, in.uv, 0.0) * params.strength;
}
`

func TestPreProcessorIncludesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process(testComputeSource)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "struct Particle {"))
	assert.Equal(t, 1, strings.Count(out, "struct GalaxyParams {"))
	assert.Contains(t, out, "@group(0) @binding(0) var<uniform> galaxy: GalaxyParams;")
	assert.Contains(t, out, "@group(0) @binding(1) var<storage, read> particles: array<Particle>;")
	assert.NotContains(t, out, "@oxy:")
	assert.Len(t, pp.Declarations(), 3)
}

func TestPreProcessorRejectsUnknownArguments(t *testing.T) {
	cases := []string{
		"//@oxy:include lights",
		"//@oxy:group 0 0 storage_uniform g galaxy",
		"//@oxy:group 0 0 storage_private g camera",
		"//@oxy:provider 0 0 material",
		"//@oxy:provider 0 0 frame_textures diffuse_texture",
		"//@oxy:frobnicate",
	}
	for _, src := range cases {
		_, err := NewPreProcessor().Process(src)
		assert.Error(t, err, src)
	}
}

func TestFindBindingByKey(t *testing.T) {
	s := NewShader("test_compute", ShaderTypeCompute, testComputeSource)

	group, binding, ok := s.Binding(AnnotationArgParticle)
	require.True(t, ok)
	assert.Equal(t, 0, group)
	assert.Equal(t, 1, binding)

	_, binding, ok = s.Binding(AnnotationArgVisibleCount)
	require.True(t, ok)
	assert.Equal(t, 2, binding)

	_, _, ok = s.Binding(AnnotationArgOverdraw)
	assert.False(t, ok)

	f := NewShader("test_fragment", ShaderTypeFragment, testFragmentSource)
	_, binding, ok = f.Binding(AnnotationArgLinearSampler)
	require.True(t, ok)
	assert.Equal(t, 1, binding)
}

func TestComputeShaderLayout(t *testing.T) {
	s := NewShader("test_compute", ShaderTypeCompute, testComputeSource)

	assert.Equal(t, "main", s.EntryPoint())
	assert.Equal(t, [3]uint32{64, 1, 1}, s.WorkgroupSize())

	desc := s.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 3)

	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[0].Buffer.Type)
	assert.Equal(t, uint64(144), desc.Entries[0].Buffer.MinBindingSize)

	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, desc.Entries[1].Buffer.Type)
	assert.Equal(t, uint64(40), desc.Entries[1].Buffer.MinBindingSize)

	assert.Equal(t, wgpu.BufferBindingTypeStorage, desc.Entries[2].Buffer.Type)
	assert.Equal(t, uint64(4), desc.Entries[2].Buffer.MinBindingSize)

	for _, e := range desc.Entries {
		assert.Equal(t, wgpu.ShaderStageCompute, e.Visibility)
	}
	assert.Equal(t, "particles", s.BindGroupVarName(0, 1))
}

func TestFullscreenShaderLayout(t *testing.T) {
	v := NewShader("test_vertex", ShaderTypeVertex, testFragmentSource)
	f := NewShader("test_fragment", ShaderTypeFragment, testFragmentSource)

	assert.Equal(t, "vs_main", v.EntryPoint())
	assert.Equal(t, "fs_main", f.EntryPoint())

	desc := f.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 3)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, desc.Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, desc.Entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, desc.Entries[1].Sampler.Type)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[2].Buffer.Type)
	assert.Equal(t, uint64(16), desc.Entries[2].Buffer.MinBindingSize)
}

func TestNewShaderPanicsOnBadAnnotation(t *testing.T) {
	assert.Panics(t, func() {
		NewShader("bad", ShaderTypeCompute, "//@oxy:include nothing\n")
	})
	assert.Panics(t, func() {
		NewShader("empty", ShaderTypeCompute, "")
	})
}

func TestValidateCompilesToSPIRV(t *testing.T) {
	for _, s := range []Shader{
		NewShader("test_compute", ShaderTypeCompute, testComputeSource),
		NewShader("test_fragment", ShaderTypeFragment, testFragmentSource),
	} {
		spirv, err := Validate(s)
		if errors.Is(err, ErrValidatorUnsupported) {
			t.Skipf("validator limitation: %v", err)
		}
		require.NoError(t, err, s.Key())
		require.GreaterOrEqual(t, len(spirv), 4)
	}
}

func TestFullscreenVertexShader(t *testing.T) {
	s := NewFullscreenVertexShader("test_fullscreen")

	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Empty(t, s.BindGroupLayoutDescriptors())

	_, err := Validate(s)
	if errors.Is(err, ErrValidatorUnsupported) {
		t.Skipf("validator limitation: %v", err)
	}
	require.NoError(t, err)
}

func TestPreProcessorResolvesDependencies(t *testing.T) {
	src := `//@oxy:include galaxy
//@oxy:group 0 0 storage_uniform camera camera
//@oxy:include particle
`
	out, err := NewPreProcessor().Process(src)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "struct Particle {"))
	assert.Equal(t, 1, strings.Count(out, "struct GalaxyParams {"))
	assert.Equal(t, 1, strings.Count(out, "struct CameraUniform {"))
	assert.Less(t, strings.Index(out, "struct Particle {"), strings.Index(out, "@group(0) @binding(0)"))
}
