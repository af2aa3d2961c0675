package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveLayouts(t *testing.T) {
	lr := newLayoutResolver("")
	cases := []struct {
		typeName string
		want     typeLayout
	}{
		{"f32", typeLayout{4, 4}},
		{"vec2<f32>", typeLayout{8, 8}},
		{"vec3f", typeLayout{12, 16}},
		{"vec3<u32>", typeLayout{12, 16}},
		{"vec4h", typeLayout{8, 8}},
		{"mat3x3<f32>", typeLayout{48, 16}},
		{"mat4x4f", typeLayout{64, 16}},
		{"mat4x2<f32>", typeLayout{32, 8}},
		{"atomic<u32>", typeLayout{4, 4}},
		{"array<vec3<f32>, 4>", typeLayout{64, 16}},
		{"array<u32>", typeLayout{4, 4}},
		{"array<array<f32, 2>, 3>", typeLayout{24, 4}},
	}
	for _, c := range cases {
		got, ok := lr.resolve(c.typeName)
		require.True(t, ok, c.typeName)
		assert.Equal(t, c.want, got, c.typeName)
	}

	for _, bad := range []string{"Unknown", "array<f32, N>", "vec5<f32>", "vec3<bool2>"} {
		_, ok := lr.resolve(bad)
		assert.False(t, ok, bad)
	}
}

func TestStructLayouts(t *testing.T) {
	lr := newLayoutResolver(`
struct Light {
    direction: vec3<f32>,
    intensity: f32,
    color: vec3<f32>,
};
struct Frame {
    view_proj: mat4x4<f32>,
    light: Light,
    @align(16) frame: u32,
    @size(8) time: f32,
};
struct Counts {
    total: u32,
    bins: array<atomic<u32>>,
};
struct Loop {
    next: Loop,
};
`)
	light, ok := lr.resolve("Light")
	require.True(t, ok)
	assert.Equal(t, typeLayout{32, 16}, light)

	frame, ok := lr.resolve("Frame")
	require.True(t, ok)
	// 64 matrix + 32 light + frame at 96 + time padded to 8 bytes, rounded to 16
	assert.Equal(t, typeLayout{112, 16}, frame)

	counts, ok := lr.resolve("Counts")
	require.True(t, ok)
	assert.Equal(t, uint64(8), counts.size)

	_, ok = lr.resolve("Loop")
	assert.False(t, ok)
}

func TestReflectSkipsComments(t *testing.T) {
	src := `
/* @group(0) @binding(0) var<uniform> hidden: f32; /* nested */ still hidden */
// @group(0) @binding(1) var<uniform> also_hidden: f32;
@group(1) @binding(0) var<storage, read> values: array<vec4<f32>>;
@group(1) @binding(1) var depth: texture_depth_2d;
@group(1) @binding(2) var msaa: texture_multisampled_2d<f32>;
@group(1) @binding(3) var out_tex: texture_storage_2d<rgba16float, write>;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(0.0);
}
`
	r := reflectSource(src, ShaderTypeFragment)
	assert.Equal(t, "fs_main", r.entryPoint)
	assert.Equal(t, [3]uint32{1, 1, 1}, r.workgroup)
	assert.NotContains(t, r.layouts, 0)

	entries := r.layouts[1].Entries
	require.Len(t, entries, 4)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, entries[0].Buffer.Type)
	assert.Equal(t, uint64(16), entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, entries[1].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, entries[1].Texture.ViewDimension)
	assert.True(t, entries[2].Texture.Multisampled)
	assert.Equal(t, wgpu.TextureSampleTypeUnfilterableFloat, entries[2].Texture.SampleType)
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, entries[3].StorageTexture.Format)
	assert.Equal(t, wgpu.StorageTextureAccessWriteOnly, entries[3].StorageTexture.Access)
	assert.Equal(t, "out_tex", r.varNames[1][3])

	assert.Empty(t, reflectSource(src, ShaderTypeVertex).entryPoint)
}

func TestReflectWorkgroupSize(t *testing.T) {
	r := reflectSource("@compute @workgroup_size(8, 4)\nfn main() {}\n", ShaderTypeCompute)
	assert.Equal(t, "main", r.entryPoint)
	assert.Equal(t, [3]uint32{8, 4, 1}, r.workgroup)
}

func TestStripCommentsKeepsLines(t *testing.T) {
	src := "a // one\n/* two\nthree */b\n// last"
	assert.Equal(t, "a \n\nb\n", stripComments(src))
}
