package postfx

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

//go:embed assets/extract.wgsl
var extractSource string

//go:embed assets/blur.wgsl
var blurSource string

//go:embed assets/tonemap.wgsl
var toneMapSource string

// Pipeline keys of the post-processing passes.
const (
	PipelineKeyExtract = "postfx.extract"
	PipelineKeyBlur    = "postfx.blur"
	PipelineKeyToneMap = "postfx.tonemap"
)

var (
	horizontal = [2]float32{1, 0}
	vertical   = [2]float32{0, 1}
)

// Shaders returns a fresh copy of every shader the chain uses, vertex stage first for each pass.
func Shaders() []shader.Shader {
	return []shader.Shader{
		shader.NewFullscreenVertexShader(PipelineKeyExtract + ".vs"),
		shader.NewShader(PipelineKeyExtract+".fs", shader.ShaderTypeFragment, extractSource),
		shader.NewFullscreenVertexShader(PipelineKeyBlur + ".vs"),
		shader.NewShader(PipelineKeyBlur+".fs", shader.ShaderTypeFragment, blurSource),
		shader.NewFullscreenVertexShader(PipelineKeyToneMap + ".vs"),
		shader.NewShader(PipelineKeyToneMap+".fs", shader.ShaderTypeFragment, toneMapSource),
	}
}

// Chain adds bloom to the stabilized frame and tone maps it onto the surface.
//
// Bloom runs at half resolution: a soft-threshold extract into target A, a horizontal blur
// into B and a vertical blur back into A. The tone mapper combines the source and bloom A.
type Chain interface {
	// Prepare ensures the bloom targets, uniforms and bind groups for this frame.
	//
	// Parameters:
	//   - params: the simulation parameters
	//   - extent: the canvas size
	//
	// Returns:
	//   - error: a resource error
	Prepare(params *sim.Params, extent common.Extent) error

	// RecordBloom records the extract and both blur passes. Nothing is recorded while the
	// bloom intensity is zero.
	RecordBloom() error

	// RecordToneMap records the tone mapping pass onto the surface texture.
	RecordToneMap() error

	// Sized returns the slots counted in the VRAM estimate.
	Sized() []resource.Sized

	// Release destroys every GPU resource owned by the chain.
	Release()
}

// chain is the implementation of the Chain interface.
type chain struct {
	renderer renderer.Renderer
	source   renderer.TargetSource
	logger   *zap.Logger

	extractPipeline pipeline.Pipeline
	blurPipeline    pipeline.Pipeline
	tonePipeline    pipeline.Pipeline

	bloom [2]*resource.Slot[common.Extent, *renderer.RenderTarget]

	extractParams  *resource.Slot[uint64, *wgpu.Buffer]
	blurParams     [2]*resource.Slot[uint64, *wgpu.Buffer]
	toneParams     *resource.Slot[uint64, *wgpu.Buffer]
	extractUniform resource.Uniform[GPUExtractParams]
	blurUniforms   [2]resource.Uniform[GPUBlurParams]
	toneUniform    resource.Uniform[GPUToneParams]

	// Indexed by the source's output slot.
	extractGroups []*resource.Slot[common.Extent, bind_group_provider.BindGroupProvider]
	toneGroups    []*resource.Slot[common.Extent, bind_group_provider.BindGroupProvider]
	blurGroups    [2]*resource.Slot[common.Extent, bind_group_provider.BindGroupProvider]

	sourceIndex int
	bloomOn     bool
}

var _ Chain = &chain{}

// NewChain creates the post-processing chain reading the output of source and registers its
// pipelines. Panics if r or source is nil.
//
// Parameters:
//   - r: the renderer
//   - source: the pass producing the stabilized frame
//   - options: optional ChainBuilderOption values
//
// Returns:
//   - Chain: the new chain
//   - error: an error if a pipeline could not be created
func NewChain(r renderer.Renderer, source renderer.TargetSource, options ...ChainBuilderOption) (Chain, error) {
	if r == nil || source == nil {
		panic("postfx: NewChain requires a renderer and a source")
	}
	c := &chain{
		renderer: r,
		source:   source,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		opt(c)
	}

	shaders := Shaders()
	if err := r.RegisterPipelines(
		pipeline.NewPipeline(PipelineKeyExtract, pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(shaders[0]),
			pipeline.WithFragmentShader(shaders[1]),
			pipeline.WithTargetFormat(renderer.HDRFormat),
		),
		pipeline.NewPipeline(PipelineKeyBlur, pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(shaders[2]),
			pipeline.WithFragmentShader(shaders[3]),
			pipeline.WithTargetFormat(renderer.HDRFormat),
		),
		pipeline.NewPipeline(PipelineKeyToneMap, pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(shaders[4]),
			pipeline.WithFragmentShader(shaders[5]),
		),
	); err != nil {
		return nil, err
	}
	c.extractPipeline = r.Pipeline(PipelineKeyExtract)
	c.blurPipeline = r.Pipeline(PipelineKeyBlur)
	c.tonePipeline = r.Pipeline(PipelineKeyToneMap)

	uniformUsage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	c.bloom[0] = renderer.NewTargetSlot(r, "Bloom A", renderer.RenderTargetSpec{})
	c.bloom[1] = renderer.NewTargetSlot(r, "Bloom B", renderer.RenderTargetSpec{})
	c.extractParams = renderer.NewBufferSlot(r, "Bloom Extract Params", uniformUsage)
	c.blurParams[0] = renderer.NewBufferSlot(r, "Bloom Blur H Params", uniformUsage)
	c.blurParams[1] = renderer.NewBufferSlot(r, "Bloom Blur V Params", uniformUsage)
	c.toneParams = renderer.NewBufferSlot(r, "Tone Params", uniformUsage)

	// Blur H reads A and writes B; blur V reads B and writes A.
	for k := range c.blurGroups {
		c.blurGroups[k] = resource.NewSlot("Bloom Blur Bind Group", func(common.Extent) (bind_group_provider.BindGroupProvider, error) {
			return c.createBlurBindGroup(k)
		}, resource.WithLogger(c.logger)).DependsOn(c.bloom[k], c.blurParams[k])
	}

	for i, out := range source.OutputSlots() {
		c.extractGroups = append(c.extractGroups, resource.NewSlot("Bloom Extract Bind Group", func(common.Extent) (bind_group_provider.BindGroupProvider, error) {
			return c.createExtractBindGroup()
		}, resource.WithLogger(c.logger)).DependsOn(out, c.bloom[0], c.extractParams))
		c.toneGroups = append(c.toneGroups, resource.NewSlot("Tone Map Bind Group", func(common.Extent) (bind_group_provider.BindGroupProvider, error) {
			return c.createToneBindGroup()
		}, resource.WithLogger(c.logger)).DependsOn(out, c.bloom[0], c.toneParams))
		c.logger.Debug("post-processing input registered", zap.Int("index", i))
	}
	return c, nil
}

func (c *chain) createExtractBindGroup() (bind_group_provider.BindGroupProvider, error) {
	src, _, err := c.source.Output()
	if err != nil {
		return nil, err
	}
	params, err := c.extractParams.Get()
	if err != nil {
		return nil, err
	}
	return renderer.CreateBindGroup(c.renderer, renderer.BindGroupSpec{
		Label:    "Bloom Extract",
		Pipeline: c.extractPipeline,
		Group:    0,
		Buffers:  map[shader.AnnotationArg]*wgpu.Buffer{shader.AnnotationArgPassParams: params},
		Views:    map[shader.AnnotationArg]*wgpu.TextureView{shader.AnnotationArgSourceTexture: src.View},
		Samplers: map[shader.AnnotationArg]common.SamplerStagingData{
			shader.AnnotationArgLinearSampler: common.LinearClampSampler,
		},
	})
}

func (c *chain) createBlurBindGroup(k int) (bind_group_provider.BindGroupProvider, error) {
	src, err := c.bloom[k].Get()
	if err != nil {
		return nil, err
	}
	params, err := c.blurParams[k].Get()
	if err != nil {
		return nil, err
	}
	return renderer.CreateBindGroup(c.renderer, renderer.BindGroupSpec{
		Label:    "Bloom Blur",
		Pipeline: c.blurPipeline,
		Group:    0,
		Buffers:  map[shader.AnnotationArg]*wgpu.Buffer{shader.AnnotationArgPassParams: params},
		Views:    map[shader.AnnotationArg]*wgpu.TextureView{shader.AnnotationArgSourceTexture: src.View},
		Samplers: map[shader.AnnotationArg]common.SamplerStagingData{
			shader.AnnotationArgLinearSampler: common.LinearClampSampler,
		},
	})
}

func (c *chain) createToneBindGroup() (bind_group_provider.BindGroupProvider, error) {
	src, _, err := c.source.Output()
	if err != nil {
		return nil, err
	}
	bloom, err := c.bloom[0].Get()
	if err != nil {
		return nil, err
	}
	params, err := c.toneParams.Get()
	if err != nil {
		return nil, err
	}
	return renderer.CreateBindGroup(c.renderer, renderer.BindGroupSpec{
		Label:    "Tone Map",
		Pipeline: c.tonePipeline,
		Group:    0,
		Buffers:  map[shader.AnnotationArg]*wgpu.Buffer{shader.AnnotationArgPassParams: params},
		Views: map[shader.AnnotationArg]*wgpu.TextureView{
			shader.AnnotationArgSourceTexture: src.View,
			shader.AnnotationArgBloomTexture:  bloom.View,
		},
		Samplers: map[shader.AnnotationArg]common.SamplerStagingData{
			shader.AnnotationArgLinearSampler: common.LinearClampSampler,
		},
	})
}

// ensureUniform ensures slot holds a buffer of size bytes and calls reset when it was recreated.
func ensureUniform(slot *resource.Slot[uint64, *wgpu.Buffer], size int, reset func()) (*wgpu.Buffer, error) {
	buf, created, err := slot.Ensure(uint64(size))
	if err != nil {
		return nil, err
	}
	if created {
		reset()
	}
	return buf, nil
}

func (c *chain) Prepare(params *sim.Params, extent common.Extent) error {
	if err := resource.Require(c.source.OutputSlots()...); err != nil {
		return err
	}
	_, index, err := c.source.Output()
	if err != nil {
		return err
	}
	c.sourceIndex = index
	c.bloomOn = params.BloomIntensity > 0

	half := extent.Half()
	for _, b := range c.bloom {
		if _, _, err := b.Ensure(half); err != nil {
			return err
		}
	}

	extract := NewGPUExtractParams(params, extent)
	buf, err := ensureUniform(c.extractParams, extract.Size(), c.extractUniform.Reset)
	if err != nil {
		return err
	}
	if c.extractUniform.Changed(extract) {
		c.renderer.WriteBuffer(buf, 0, extract.Marshal())
	}

	for k, dir := range [2][2]float32{horizontal, vertical} {
		blur := NewGPUBlurParams(params, half, dir)
		buf, err := ensureUniform(c.blurParams[k], blur.Size(), c.blurUniforms[k].Reset)
		if err != nil {
			return err
		}
		if c.blurUniforms[k].Changed(blur) {
			c.renderer.WriteBuffer(buf, 0, blur.Marshal())
		}
	}

	tone := NewGPUToneParams(params, !renderer.IsSRGB(c.renderer.SurfaceFormat()))
	buf, err = ensureUniform(c.toneParams, tone.Size(), c.toneUniform.Reset)
	if err != nil {
		return err
	}
	if c.toneUniform.Changed(tone) {
		c.renderer.WriteBuffer(buf, 0, tone.Marshal())
	}

	for _, bg := range []*resource.Slot[common.Extent, bind_group_provider.BindGroupProvider]{
		c.extractGroups[index], c.toneGroups[index], c.blurGroups[0], c.blurGroups[1],
	} {
		if _, _, err := bg.Ensure(extent); err != nil {
			return err
		}
	}
	return nil
}

// fullscreenPass records a single fullscreen draw into target.
func (c *chain) fullscreenPass(label, key string, target *wgpu.TextureView, bg *resource.Slot[common.Extent, bind_group_provider.BindGroupProvider]) error {
	group, err := bg.Get()
	if err != nil {
		return err
	}
	if err := c.renderer.BeginRenderPass(label, renderer.ColorAttachment{View: target}); err != nil {
		return err
	}
	defer c.renderer.EndRenderPass()
	return c.renderer.Draw(key, []bind_group_provider.BindGroupProvider{group}, shader.FullscreenVertexCount, 1)
}

func (c *chain) RecordBloom() error {
	if !c.bloomOn {
		return nil
	}
	a, err := c.bloom[0].Get()
	if err != nil {
		return err
	}
	b, err := c.bloom[1].Get()
	if err != nil {
		return err
	}
	if err := c.fullscreenPass("Bloom Extract", PipelineKeyExtract, a.View, c.extractGroups[c.sourceIndex]); err != nil {
		return err
	}
	if err := c.fullscreenPass("Bloom Blur H", PipelineKeyBlur, b.View, c.blurGroups[0]); err != nil {
		return err
	}
	return c.fullscreenPass("Bloom Blur V", PipelineKeyBlur, a.View, c.blurGroups[1])
}

// RecordToneMap draws to the surface: a nil attachment view selects the swapchain texture.
func (c *chain) RecordToneMap() error {
	return c.fullscreenPass("Tone Map", PipelineKeyToneMap, nil, c.toneGroups[c.sourceIndex])
}

func (c *chain) Sized() []resource.Sized {
	return []resource.Sized{c.bloom[0], c.bloom[1], c.extractParams, c.blurParams[0], c.blurParams[1], c.toneParams}
}

func (c *chain) Release() {
	for _, bg := range c.extractGroups {
		bg.Release()
	}
	for _, bg := range c.toneGroups {
		bg.Release()
	}
	for _, bg := range c.blurGroups {
		bg.Release()
	}
	c.bloom[0].Release()
	c.bloom[1].Release()
	c.extractParams.Release()
	c.blurParams[0].Release()
	c.blurParams[1].Release()
	c.toneParams.Release()
	c.extractUniform.Reset()
	c.blurUniforms[0].Reset()
	c.blurUniforms[1].Reset()
	c.toneUniform.Reset()
}
