package shader

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// reflection is the pipeline metadata recovered from pre-processed WGSL.
type reflection struct {
	entryPoint string
	workgroup  [3]uint32
	layouts    map[int]wgpu.BindGroupLayoutDescriptor
	varNames   map[int]map[int]string
}

var stageAttribute = map[ShaderType]string{
	ShaderTypeVertex:   "vertex",
	ShaderTypeFragment: "fragment",
	ShaderTypeCompute:  "compute",
}

var stageVisibility = map[ShaderType]wgpu.ShaderStage{
	ShaderTypeVertex:   wgpu.ShaderStageVertex,
	ShaderTypeFragment: wgpu.ShaderStageFragment,
	ShaderTypeCompute:  wgpu.ShaderStageCompute,
}

var (
	entryPointRegex    = regexp.MustCompile(`(?s)@(vertex|fragment|compute)\b.*?\bfn\s+(\w+)`)
	workgroupSizeRegex = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*(?:,\s*(\d+)\s*)?)?\)`)

	// @group(0) @binding(2) var<storage, read_write> name: type;
	bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// reflectSource recovers the entry point, workgroup size and bind group layouts of one stage.
// Every binding in the source is attributed to that stage.
//
// Parameters:
//   - source: the pre-processed WGSL source
//   - stage: the stage the source is compiled for
//
// Returns:
//   - reflection: the recovered metadata; the entry point is empty if the stage has none
func reflectSource(source string, stage ShaderType) reflection {
	src := stripComments(source)
	r := reflection{
		workgroup: [3]uint32{1, 1, 1},
		layouts:   make(map[int]wgpu.BindGroupLayoutDescriptor),
		varNames:  make(map[int]map[int]string),
	}

	for _, m := range entryPointRegex.FindAllStringSubmatch(src, -1) {
		if m[1] == stageAttribute[stage] {
			r.entryPoint = m[2]
			break
		}
	}
	if stage == ShaderTypeCompute {
		if m := workgroupSizeRegex.FindStringSubmatch(src); m != nil {
			for i, dim := range m[1:] {
				if v, err := strconv.ParseUint(dim, 10, 32); err == nil && v > 0 {
					r.workgroup[i] = uint32(v)
				}
			}
		}
	}

	types := newLayoutResolver(src)
	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	for _, m := range bindingDeclRegex.FindAllStringSubmatch(src, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		typeName := strings.TrimSpace(m[5])

		entry := bindingEntry(uint32(binding), stageVisibility[stage], strings.TrimSpace(m[3]), typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := types.resolve(typeName); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		entries[group] = append(entries[group], entry)

		if r.varNames[group] == nil {
			r.varNames[group] = make(map[int]string)
		}
		r.varNames[group][binding] = m[4]
	}
	for group, list := range entries {
		slices.SortFunc(list, func(a, b wgpu.BindGroupLayoutEntry) int { return int(a.Binding) - int(b.Binding) })
		r.layouts[group] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return r
}

// bindingEntry builds the layout entry for one resource declaration from its address space and type.
func bindingEntry(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}
	space, access, _ := strings.Cut(addressSpace, ",")
	space, access = strings.TrimSpace(space), strings.TrimSpace(access)
	base, params := splitTypeParams(typeName)

	switch {
	case space == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case space == "storage" && access == "read_write":
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
	case space == "storage":
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	case space != "":
	case base == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case base == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(base, "texture_storage_"):
		storageTextureEntry(&entry, base, params)
	case strings.HasPrefix(base, "texture_"):
		sampledTextureEntry(&entry, base, params)
	}
	return entry
}

var textureDimensions = map[string]wgpu.TextureViewDimension{
	"1d":         wgpu.TextureViewDimension1D,
	"2d":         wgpu.TextureViewDimension2D,
	"2d_array":   wgpu.TextureViewDimension2DArray,
	"3d":         wgpu.TextureViewDimension3D,
	"cube":       wgpu.TextureViewDimensionCube,
	"cube_array": wgpu.TextureViewDimensionCubeArray,
}

var textureSampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// sampledTextureEntry handles texture_2d<f32>, texture_depth_2d, texture_multisampled_2d<f32> and
// their relatives.
func sampledTextureEntry(entry *wgpu.BindGroupLayoutEntry, base, param string) {
	shape := strings.TrimPrefix(base, "texture_")
	depth := false
	if rest, ok := strings.CutPrefix(shape, "depth_"); ok {
		shape, depth = rest, true
	}
	if rest, ok := strings.CutPrefix(shape, "multisampled_"); ok {
		shape, entry.Texture.Multisampled = rest, true
	}
	entry.Texture.ViewDimension = textureDimensions[shape]

	switch {
	case depth:
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
	case entry.Texture.Multisampled && param == "f32":
		// Multisampled float textures cannot be filtered.
		entry.Texture.SampleType = wgpu.TextureSampleTypeUnfilterableFloat
	default:
		entry.Texture.SampleType = textureSampleTypes[param]
	}
}

var storageTextureFormats = map[string]wgpu.TextureFormat{
	"rgba8unorm":  wgpu.TextureFormatRGBA8Unorm,
	"rgba8snorm":  wgpu.TextureFormatRGBA8Snorm,
	"rgba8uint":   wgpu.TextureFormatRGBA8Uint,
	"rgba8sint":   wgpu.TextureFormatRGBA8Sint,
	"bgra8unorm":  wgpu.TextureFormatBGRA8Unorm,
	"rgba16uint":  wgpu.TextureFormatRGBA16Uint,
	"rgba16sint":  wgpu.TextureFormatRGBA16Sint,
	"rgba16float": wgpu.TextureFormatRGBA16Float,
	"r32uint":     wgpu.TextureFormatR32Uint,
	"r32sint":     wgpu.TextureFormatR32Sint,
	"r32float":    wgpu.TextureFormatR32Float,
	"rg32uint":    wgpu.TextureFormatRG32Uint,
	"rg32sint":    wgpu.TextureFormatRG32Sint,
	"rg32float":   wgpu.TextureFormatRG32Float,
	"rgba32uint":  wgpu.TextureFormatRGBA32Uint,
	"rgba32sint":  wgpu.TextureFormatRGBA32Sint,
	"rgba32float": wgpu.TextureFormatRGBA32Float,
}

var storageTextureAccess = map[string]wgpu.StorageTextureAccess{
	"write":      wgpu.StorageTextureAccessWriteOnly,
	"read":       wgpu.StorageTextureAccessReadOnly,
	"read_write": wgpu.StorageTextureAccessReadWrite,
}

// storageTextureEntry handles texture_storage_2d<rgba16float, write> and its relatives.
func storageTextureEntry(entry *wgpu.BindGroupLayoutEntry, base, params string) {
	entry.StorageTexture.ViewDimension = textureDimensions[strings.TrimPrefix(base, "texture_storage_")]
	format, access, _ := strings.Cut(params, ",")
	entry.StorageTexture.Format = storageTextureFormats[strings.TrimSpace(format)]
	entry.StorageTexture.Access = storageTextureAccess[strings.TrimSpace(access)]
}

// splitTypeParams splits "texture_2d<f32>" into ("texture_2d", "f32"). Unparameterized types
// return an empty parameter string.
func splitTypeParams(typeName string) (base, params string) {
	before, after, ok := strings.Cut(typeName, "<")
	if !ok {
		return strings.TrimSpace(typeName), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(after), ">"))
}

// stripComments removes line comments and nested block comments. Newlines are kept so the
// remaining text still lines up with the original.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		rest := source[i:]
		switch {
		case strings.HasPrefix(rest, "/*"):
			depth++
			i++
		case depth > 0 && strings.HasPrefix(rest, "*/"):
			depth--
			i++
		case depth > 0:
			if source[i] == '\n' {
				sb.WriteByte('\n')
			}
		case strings.HasPrefix(rest, "//"):
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				return sb.String()
			}
			// Resume on the newline so it is kept.
			i += end - 1
		default:
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
