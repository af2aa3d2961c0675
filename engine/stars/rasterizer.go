package stars

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/scene"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

var (
	//go:embed assets/star_varyings.wgsl
	starVaryingsSource string

	//go:embed assets/stars_vs.wgsl
	starVertexSource string

	//go:embed assets/stars_fs.wgsl
	starFragmentSource string

	//go:embed assets/overdraw_fs.wgsl
	overdrawFragmentSource string

	//go:embed assets/heat_fs.wgsl
	heatFragmentSource string
)

const (
	// PipelineKeyStars is the renderer cache key of the additive billboard pipeline.
	PipelineKeyStars = "stars.draw"
	// PipelineKeyOverdraw is the renderer cache key of the overdraw counting pipeline.
	PipelineKeyOverdraw = "stars.overdraw"
	// PipelineKeyHeat is the renderer cache key of the overdraw heat map pipeline.
	PipelineKeyHeat = "stars.heat"
)

// shaderSet holds one instance of every shader the rasterizer uses.
type shaderSet struct {
	vertex, fragment, overdraw, fullscreen, heat shader.Shader
}

func newShaderSet() shaderSet {
	return shaderSet{
		vertex:     shader.NewShader(PipelineKeyStars+".vs", shader.ShaderTypeVertex, starVaryingsSource+starVertexSource),
		fragment:   shader.NewShader(PipelineKeyStars+".fs", shader.ShaderTypeFragment, starVaryingsSource+starFragmentSource),
		overdraw:   shader.NewShader(PipelineKeyOverdraw+".fs", shader.ShaderTypeFragment, starVaryingsSource+overdrawFragmentSource),
		fullscreen: shader.NewFullscreenVertexShader(PipelineKeyHeat + ".vs"),
		heat:       shader.NewShader(PipelineKeyHeat+".fs", shader.ShaderTypeFragment, heatFragmentSource),
	}
}

// Shaders returns a fresh copy of every shader the rasterizer uses.
func Shaders() []shader.Shader {
	s := newShaderSet()
	return []shader.Shader{s.vertex, s.fragment, s.overdraw, s.fullscreen, s.heat}
}

// ParticleSource is the particle storage buffer the billboards are expanded from.
type ParticleSource interface {
	Buffer() *wgpu.Buffer
	Slot() resource.Node
}

// VisibleSet is the culler output: the compacted indices and the indirect draw arguments.
type VisibleSet interface {
	VisibleBuffer() *wgpu.Buffer
	VisibleSlot() resource.Node
	IndirectBuffer() *wgpu.Buffer
}

// Rasterizer draws one additive billboard per visible particle into the HDR raw texture, or in
// overdraw debug mode a heat map of how many billboards cover each pixel.
type Rasterizer interface {
	renderer.TargetSource

	// Prepare ensures the targets match extent and, when the overdraw limit is set, the counter
	// buffer and its uniform. Disabling the limit releases the counter buffer.
	//
	// Parameters:
	//   - params: the simulation parameters
	//   - extent: the canvas size
	//
	// Returns:
	//   - error: a resource error
	Prepare(params *sim.Params, extent common.Extent) error

	// Record records the star pass, or the overdraw and heat passes, into the open frame.
	//
	// Parameters:
	//   - params: the simulation parameters
	//
	// Returns:
	//   - error: an error if a pass could not be recorded
	Record(params *sim.Params) error

	// OverdrawView reports whether the last recorded frame showed the heat map.
	OverdrawView() bool

	// Sized returns the slots counted in the VRAM estimate.
	Sized() []resource.Sized

	// Release destroys every target, buffer and bind group.
	Release()
}

// rasterizer is the implementation of the Rasterizer interface.
type rasterizer struct {
	renderer  renderer.Renderer
	scene     scene.Scene
	particles ParticleSource
	visible   VisibleSet
	logger    *zap.Logger

	starPipeline     pipeline.Pipeline
	overdrawPipeline pipeline.Pipeline
	heatPipeline     pipeline.Pipeline
	sampleCount      uint32

	msaa *resource.Slot[common.Extent, *renderer.RenderTarget]
	raw  *resource.Slot[common.Extent, *renderer.RenderTarget]

	overdraw       *resource.Slot[OverdrawKey, *wgpu.Buffer]
	overdrawParams *resource.Slot[uint64, *wgpu.Buffer]
	paramsUniform  resource.Uniform[gpuOverdrawParams]

	starBindGroup     *resource.Slot[uint64, bind_group_provider.BindGroupProvider]
	overdrawBindGroup *resource.Slot[OverdrawKey, bind_group_provider.BindGroupProvider]
	heatBindGroup     *resource.Slot[OverdrawKey, bind_group_provider.BindGroupProvider]

	overdrawView bool
}

var _ Rasterizer = &rasterizer{}

// NewRasterizer creates a Rasterizer and registers its pipelines. The star pipeline renders at
// the renderer's MSAA sample count and resolves into the raw texture.
// Panics if a collaborator is nil.
//
// Parameters:
//   - r: the renderer
//   - sc: the scene owning the camera and galaxy uniforms
//   - particles: the particle buffer
//   - visible: the culler output
//   - options: optional RasterizerBuilderOption values
//
// Returns:
//   - Rasterizer: the new rasterizer
//   - error: an error if a pipeline could not be created
func NewRasterizer(r renderer.Renderer, sc scene.Scene, particles ParticleSource, visible VisibleSet, options ...RasterizerBuilderOption) (Rasterizer, error) {
	if r == nil || sc == nil || particles == nil || visible == nil {
		panic("stars: NewRasterizer requires a renderer, a scene, particles and a visible set")
	}
	rs := &rasterizer{
		renderer:    r,
		scene:       sc,
		particles:   particles,
		visible:     visible,
		logger:      zap.NewNop(),
		sampleCount: r.SampleCount(),
	}
	for _, opt := range options {
		opt(rs)
	}

	shaders := newShaderSet()
	if err := r.RegisterPipelines(
		pipeline.NewPipeline(PipelineKeyStars, pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(shaders.vertex),
			pipeline.WithFragmentShader(shaders.fragment),
			pipeline.WithTargetFormat(renderer.HDRFormat),
			pipeline.WithSampleCount(rs.sampleCount),
			pipeline.WithAdditiveBlend(),
		),
		pipeline.NewPipeline(PipelineKeyOverdraw, pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(shaders.vertex),
			pipeline.WithFragmentShader(shaders.overdraw),
			pipeline.WithTargetFormat(renderer.HDRFormat),
			pipeline.WithWriteMask(wgpu.ColorWriteMaskNone),
		),
		pipeline.NewPipeline(PipelineKeyHeat, pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(shaders.fullscreen),
			pipeline.WithFragmentShader(shaders.heat),
			pipeline.WithTargetFormat(renderer.HDRFormat),
		),
	); err != nil {
		return nil, err
	}
	rs.starPipeline = r.Pipeline(PipelineKeyStars)
	rs.overdrawPipeline = r.Pipeline(PipelineKeyOverdraw)
	rs.heatPipeline = r.Pipeline(PipelineKeyHeat)

	if rs.sampleCount > 1 {
		rs.msaa = renderer.NewTargetSlot(r, "Star MSAA Target", renderer.RenderTargetSpec{SampleCount: rs.sampleCount})
	}
	rs.raw = renderer.NewTargetSlot(r, "Star Raw Target", renderer.RenderTargetSpec{})

	rs.overdraw = resource.WithSize(
		resource.NewSlot("Overdraw Counters", rs.createOverdrawBuffer, resource.WithLogger(rs.logger)),
		OverdrawKey.Bytes,
	)
	rs.overdrawParams = renderer.NewBufferSlot(r, "Overdraw Params", wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)

	rs.starBindGroup = resource.NewSlot("Star Bind Group", rs.createStarBindGroup, resource.WithLogger(rs.logger)).
		DependsOn(sc.CameraSlot(), sc.GalaxySlot(), particles.Slot(), visible.VisibleSlot())
	rs.overdrawBindGroup = resource.NewSlot("Overdraw Bind Group", rs.createOverdrawBindGroup, resource.WithLogger(rs.logger)).
		DependsOn(rs.overdraw, rs.overdrawParams)
	rs.heatBindGroup = resource.NewSlot("Heat Bind Group", rs.createHeatBindGroup, resource.WithLogger(rs.logger)).
		DependsOn(rs.overdraw, rs.overdrawParams)
	return rs, nil
}

func (rs *rasterizer) createOverdrawBuffer(key OverdrawKey) (*wgpu.Buffer, error) {
	if !key.Enabled {
		return nil, fmt.Errorf("overdraw counters requested while disabled")
	}
	return rs.renderer.CreateBuffer("Overdraw Counters", key.Bytes(), wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
}

func (rs *rasterizer) createStarBindGroup(uint64) (bind_group_provider.BindGroupProvider, error) {
	return renderer.CreateBindGroup(rs.renderer, renderer.BindGroupSpec{
		Label:    "Stars",
		Pipeline: rs.starPipeline,
		Group:    0,
		Buffers: map[shader.AnnotationArg]*wgpu.Buffer{
			shader.AnnotationArgCamera:         rs.scene.CameraBuffer(),
			shader.AnnotationArgGalaxyParams:   rs.scene.GalaxyBuffer(),
			shader.AnnotationArgParticle:       rs.particles.Buffer(),
			shader.AnnotationArgVisibleIndices: rs.visible.VisibleBuffer(),
		},
	})
}

func (rs *rasterizer) counterBuffers() map[shader.AnnotationArg]*wgpu.Buffer {
	counters, _ := rs.overdraw.Get()
	params, _ := rs.overdrawParams.Get()
	return map[shader.AnnotationArg]*wgpu.Buffer{
		shader.AnnotationArgOverdraw:   counters,
		shader.AnnotationArgPassParams: params,
	}
}

func (rs *rasterizer) createOverdrawBindGroup(OverdrawKey) (bind_group_provider.BindGroupProvider, error) {
	return renderer.CreateBindGroup(rs.renderer, renderer.BindGroupSpec{
		Label:    "Overdraw",
		Pipeline: rs.overdrawPipeline,
		Group:    1,
		Buffers:  rs.counterBuffers(),
	})
}

func (rs *rasterizer) createHeatBindGroup(OverdrawKey) (bind_group_provider.BindGroupProvider, error) {
	return renderer.CreateBindGroup(rs.renderer, renderer.BindGroupSpec{
		Label:    "Overdraw Heat",
		Pipeline: rs.heatPipeline,
		Group:    0,
		Buffers:  rs.counterBuffers(),
	})
}

func (rs *rasterizer) Prepare(params *sim.Params, extent common.Extent) error {
	if err := resource.Require(rs.scene.CameraSlot(), rs.scene.GalaxySlot(), rs.particles.Slot(), rs.visible.VisibleSlot()); err != nil {
		return err
	}
	if rs.msaa != nil {
		if _, _, err := rs.msaa.Ensure(extent); err != nil {
			return err
		}
	}
	if _, _, err := rs.raw.Ensure(extent); err != nil {
		return err
	}
	if _, _, err := rs.starBindGroup.Ensure(0); err != nil {
		return err
	}

	key := OverdrawKey{Extent: extent, Enabled: params.OverdrawActive()}
	if !key.Enabled {
		if rs.overdraw.State() != resource.StateUninitialized {
			rs.logger.Debug("overdraw counters released")
		}
		rs.overdraw.Release()
		rs.overdrawParams.Release()
		rs.paramsUniform.Reset()
		return nil
	}
	if _, _, err := rs.overdraw.Ensure(key); err != nil {
		return err
	}
	data := newGPUOverdrawParams(extent, params.OverdrawLimit)
	paramsBuf, created, err := rs.overdrawParams.Ensure(uint64(data.Size()))
	if err != nil {
		return err
	}
	if created {
		rs.paramsUniform.Reset()
	}
	if rs.paramsUniform.Changed(data) {
		rs.renderer.WriteBuffer(paramsBuf, 0, data.Marshal())
	}
	if _, _, err := rs.overdrawBindGroup.Ensure(key); err != nil {
		return err
	}
	if _, _, err := rs.heatBindGroup.Ensure(key); err != nil {
		return err
	}
	return nil
}

func (rs *rasterizer) Record(params *sim.Params) error {
	raw, err := rs.raw.Get()
	if err != nil {
		return err
	}
	starBG, err := rs.starBindGroup.Get()
	if err != nil {
		return err
	}
	indirect := rs.visible.IndirectBuffer()

	rs.overdrawView = params.OverdrawActive() && params.OverdrawView
	if rs.overdrawView {
		return rs.recordOverdraw(raw, starBG, indirect)
	}

	attachment := renderer.ColorAttachment{View: raw.View}
	if rs.msaa != nil {
		msaa, err := rs.msaa.Get()
		if err != nil {
			return err
		}
		attachment = renderer.ColorAttachment{View: msaa.View, ResolveTarget: raw.View, Discard: true}
	}
	if err := rs.renderer.BeginRenderPass("Stars", attachment); err != nil {
		return err
	}
	defer rs.renderer.EndRenderPass()
	return rs.renderer.DrawIndirect(PipelineKeyStars, []bind_group_provider.BindGroupProvider{starBG}, indirect)
}

func (rs *rasterizer) recordOverdraw(raw *renderer.RenderTarget, starBG bind_group_provider.BindGroupProvider, indirect *wgpu.Buffer) error {
	counters, err := rs.overdraw.Get()
	if err != nil {
		return err
	}
	overdrawBG, err := rs.overdrawBindGroup.Get()
	if err != nil {
		return err
	}
	heatBG, err := rs.heatBindGroup.Get()
	if err != nil {
		return err
	}
	rs.renderer.ClearBuffer(counters, 0, rs.overdraw.Bytes())

	if err := rs.renderer.BeginRenderPass("Overdraw", renderer.ColorAttachment{View: raw.View}); err != nil {
		return err
	}
	err = rs.renderer.DrawIndirect(PipelineKeyOverdraw, []bind_group_provider.BindGroupProvider{starBG, overdrawBG}, indirect)
	rs.renderer.EndRenderPass()
	if err != nil {
		return err
	}

	if err := rs.renderer.BeginRenderPass("Overdraw Heat", renderer.ColorAttachment{View: raw.View}); err != nil {
		return err
	}
	defer rs.renderer.EndRenderPass()
	return rs.renderer.Draw(PipelineKeyHeat, []bind_group_provider.BindGroupProvider{heatBG}, shader.FullscreenVertexCount, 1)
}

func (rs *rasterizer) Output() (*renderer.RenderTarget, int, error) {
	raw, err := rs.raw.Get()
	return raw, 0, err
}

func (rs *rasterizer) OutputSlots() []resource.Node {
	return []resource.Node{rs.raw}
}

func (rs *rasterizer) OverdrawView() bool {
	return rs.overdrawView
}

func (rs *rasterizer) Sized() []resource.Sized {
	sized := []resource.Sized{rs.raw, rs.overdraw, rs.overdrawParams}
	if rs.msaa != nil {
		sized = append(sized, rs.msaa)
	}
	return sized
}

func (rs *rasterizer) Release() {
	rs.starBindGroup.Release()
	rs.overdrawBindGroup.Release()
	rs.heatBindGroup.Release()
	rs.overdraw.Release()
	rs.overdrawParams.Release()
	rs.paramsUniform.Reset()
	if rs.msaa != nil {
		rs.msaa.Release()
	}
	rs.raw.Release()
}
