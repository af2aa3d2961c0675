package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType is the pipeline stage a shader source is compiled for.
type ShaderType int

const (
	// ShaderTypeCompute is a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is the @vertex entry point of a render pipeline.
	ShaderTypeVertex

	// ShaderTypeFragment is the @fragment entry point of a render pipeline.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	if name, ok := stageAttribute[t]; ok {
		return name
	}
	return fmt.Sprintf("ShaderType(%d)", int(t))
}

// Shader is one pre-processed WGSL stage plus the layout metadata reflected from it. Pipelines
// build their bind group layouts from it; passes look up their bindings by declaration key.
type Shader interface {
	// Key is the unique pipeline-cache key of the shader.
	Key() string

	// Source is the WGSL after @oxy annotations have been expanded.
	Source() string

	// ShaderType is the stage the shader was reflected for.
	ShaderType() ShaderType

	// EntryPoint is the name of the stage's entry function.
	EntryPoint() string

	// WorkgroupSize is the @workgroup_size of a compute shader, [1, 1, 1] when the attribute
	// omits dimensions, and zero for render stages.
	WorkgroupSize() [3]uint32

	// BindGroupLayoutDescriptor returns the reflected layout of one group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout, empty if the shader does not use the group
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every reflected layout keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the WGSL variable bound at group and binding, or "".
	BindGroupVarName(group, binding int) string

	// Declarations returns the group and provider annotations of the source.
	Declarations() []Annotation

	// Binding resolves a declaration key (struct type, provider identity or binding role) to its
	// group and binding index.
	//
	// Parameters:
	//   - key: the declaration key to look up
	//
	// Returns:
	//   - group: the @group index
	//   - binding: the @binding index
	//   - ok: false when the shader declares no such binding
	Binding(key AnnotationArg) (group, binding int, ok bool)
}

type shader struct {
	key        string
	shaderType ShaderType
	source     string
	reflected  reflection
	pp         PreProcessor
}

var _ Shader = &shader{}

// NewShader pre-processes a WGSL source, usually a go:embed asset, and reflects its layout.
// Malformed sources panic since shaders are compiled into the binary.
//
// Parameters:
//   - key: the unique pipeline-cache key
//   - shaderType: the stage to reflect
//   - source: the WGSL source including @oxy annotations
//
// Returns:
//   - Shader: the reflected shader
func NewShader(key string, shaderType ShaderType, source string) Shader {
	if key == "" {
		panic("shader: a shader needs a key")
	}
	if source == "" {
		panic(fmt.Sprintf("shader: %s has no WGSL source", key))
	}
	s := &shader{key: key, shaderType: shaderType, pp: NewPreProcessor()}

	var err error
	if s.source, err = s.pp.Process(source); err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process %s: %v", key, err))
	}
	s.reflected = reflectSource(s.source, shaderType)
	if shaderType != ShaderTypeCompute {
		s.reflected.workgroup = [3]uint32{}
	}
	return s
}

func (s *shader) Key() string { return s.key }
func (s *shader) Source() string { return s.source }
func (s *shader) ShaderType() ShaderType { return s.shaderType }
func (s *shader) EntryPoint() string { return s.reflected.entryPoint }
func (s *shader) WorkgroupSize() [3]uint32 { return s.reflected.workgroup }

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.reflected.layouts[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.reflected.layouts
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.reflected.varNames[group][binding]
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

func (s *shader) Binding(key AnnotationArg) (group, binding int, ok bool) {
	return FindBinding(s.pp.Declarations(), key)
}
