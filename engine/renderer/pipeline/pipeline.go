package pipeline

import (
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute runs a single @compute entry point.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender runs a @vertex and a @fragment entry point into one colour target.
	PipelineTypeRender
)

// RenderState is the fixed-function state of a render pipeline. Every pass in the viewer draws
// non-indexed triangles into a single colour target without depth.
type RenderState struct {
	// Format of the colour target. TextureFormatUndefined renders into the surface format.
	Format wgpu.TextureFormat
	// SampleCount of the colour target, at least 1.
	SampleCount uint32
	// Blend is nil for opaque writes.
	Blend     *wgpu.BlendState
	WriteMask wgpu.ColorWriteMask
	Topology  wgpu.PrimitiveTopology
}

// AdditiveBlend adds every fragment to the target on all four channels.
var AdditiveBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
	Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
}

// Pipeline is a compute or render pipeline definition: its stages, its render state and, once
// the renderer has registered it, the compiled GPU object.
type Pipeline interface {
	// Type returns whether this is a render or compute pipeline.
	Type() PipelineType

	// PipelineKey returns the unique key used by the renderer's pipeline cache.
	PipelineKey() string

	// Shader returns the stage of the given type, or nil.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - shader.Shader: the stage, nil if the pipeline has none of that type
	Shader(shaderType shader.ShaderType) shader.Shader

	// Shaders returns the attached stages in vertex, fragment, compute order.
	Shaders() []shader.Shader

	// RenderState returns the fixed-function state. Compute pipelines ignore it.
	RenderState() RenderState

	// BindGroupLayoutDescriptors returns the bind group layouts of all stages merged per group.
	// Bindings declared by several stages have their visibility OR-ed together.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptor returns the merged layout of a single group, empty if unused.
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// Binding resolves a declaration key against every stage of the pipeline.
	//
	// Parameters:
	//   - key: a struct type key, provider identity or binding role
	//
	// Returns:
	//   - group: the @group index
	//   - binding: the @binding index
	//   - ok: false if no stage declares the key
	Binding(key shader.AnnotationArg) (group, binding int, ok bool)

	// RenderPipeline returns the compiled render pipeline, nil until registered.
	RenderPipeline() *wgpu.RenderPipeline

	// ComputePipeline returns the compiled compute pipeline, nil until registered.
	ComputePipeline() *wgpu.ComputePipeline

	// SetRenderPipeline stores the compiled render pipeline, releasing any previous one.
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// SetComputePipeline stores the compiled compute pipeline, releasing any previous one.
	SetComputePipeline(p *wgpu.ComputePipeline)

	// Release frees the compiled GPU pipeline. The definition stays usable for re-registration.
	Release()
}

type pipeline struct {
	pipelineType PipelineType
	key          string
	stages       [3]shader.Shader // indexed by shader.ShaderType
	state        RenderState

	layouts map[int]wgpu.BindGroupLayoutDescriptor

	render  *wgpu.RenderPipeline
	compute *wgpu.ComputePipeline
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline definition. The GPU object is created by the renderer when
// the pipeline is registered.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - pipelineType: render or compute
//   - opts: stage and render state options
//
// Returns:
//   - Pipeline: the pipeline definition
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineType: pipelineType,
		key:          pipelineKey,
		state: RenderState{
			Format:      wgpu.TextureFormatUndefined,
			SampleCount: 1,
			WriteMask:   wgpu.ColorWriteMaskAll,
			Topology:    wgpu.PrimitiveTopologyTriangleList,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType { return p.pipelineType }
func (p *pipeline) PipelineKey() string { return p.key }
func (p *pipeline) RenderState() RenderState { return p.state }

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	if shaderType < 0 || int(shaderType) >= len(p.stages) {
		return nil
	}
	return p.stages[shaderType]
}

func (p *pipeline) Shaders() []shader.Shader {
	var out []shader.Shader
	for _, t := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment, shader.ShaderTypeCompute} {
		if s := p.stages[t]; s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (p *pipeline) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	if p.layouts == nil {
		p.layouts = make(map[int]wgpu.BindGroupLayoutDescriptor)
		for _, s := range p.Shaders() {
			p.layouts = mergeBindGroupLayouts(p.layouts, s.BindGroupLayoutDescriptors())
		}
	}
	return p.layouts
}

func (p *pipeline) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return p.BindGroupLayoutDescriptors()[group]
}

func (p *pipeline) Binding(key shader.AnnotationArg) (group, binding int, ok bool) {
	for _, s := range p.Shaders() {
		if group, binding, ok = s.Binding(key); ok {
			return group, binding, true
		}
	}
	return 0, 0, false
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline { return p.render }
func (p *pipeline) ComputePipeline() *wgpu.ComputePipeline { return p.compute }

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	if p.render != nil && p.render != rp {
		p.render.Release()
	}
	p.render = rp
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	if p.compute != nil && p.compute != cp {
		p.compute.Release()
	}
	p.compute = cp
}

func (p *pipeline) Release() {
	p.SetRenderPipeline(nil)
	p.SetComputePipeline(nil)
}
