package particles

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/galaxy"
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

//go:embed assets/generate.wgsl
var generateSource string

// PipelineKeyGenerate is the renderer cache key of the generation compute pipeline.
const PipelineKeyGenerate = "particles.generate"

// WorkgroupSize is the workgroup width declared by generate.wgsl.
const WorkgroupSize = 64

// ErrEmpty is returned by Prepare when the parameters ask for zero particles.
var ErrEmpty = errors.New("particles: particle count is zero")

// Shaders returns a fresh copy of every shader the generator uses.
func Shaders() []shader.Shader {
	return []shader.Shader{
		shader.NewShader(PipelineKeyGenerate, shader.ShaderTypeCompute, generateSource),
	}
}

// Generator fills the particle storage buffer on the GPU. The buffer is regenerated only when it
// is recreated or when the galaxy shape changed, never every frame.
type Generator interface {
	// Prepare ensures the particle buffer holds params.TotalParticles particles and that the
	// bind group is current. The scene must have been prepared first.
	//
	// Parameters:
	//   - params: the simulation parameters
	//
	// Returns:
	//   - error: ErrEmpty for zero particles, or a resource error
	Prepare(params *sim.Params) error

	// Record records the generation dispatch into the open frame when a regeneration is due.
	//
	// Returns:
	//   - bool: true if a dispatch was recorded
	//   - error: an error if the dispatch could not be recorded
	Record() (bool, error)

	// Complete tells the generator whether the frame holding its last dispatch was submitted.
	// A dropped frame leaves the regeneration pending.
	Complete(submitted bool)

	// MarkDirty schedules a regeneration for the next frame.
	MarkDirty()

	// Dirty reports whether a regeneration is pending.
	Dirty() bool

	// Count returns the particle count of the current buffer.
	Count() uint32

	// Buffer returns the particle storage buffer, or nil before Prepare.
	Buffer() *wgpu.Buffer

	// Slot returns the particle buffer's cache node for dependency registration.
	Slot() resource.Node

	// Sized returns the slots counted in the VRAM estimate.
	Sized() []resource.Sized

	// Release destroys the particle buffer and bind group.
	Release()
}

// generator is the implementation of the Generator interface.
type generator struct {
	renderer renderer.Renderer
	scene    scene.Scene
	logger   *zap.Logger
	pipeline pipeline.Pipeline

	particles *resource.Slot[uint64, *wgpu.Buffer]
	bindGroup *resource.Slot[uint64, bind_group_provider.BindGroupProvider]

	count uint32
	regen regeneration
}

var _ Generator = &generator{}

// NewGenerator creates a Generator and registers its compute pipeline.
// Panics if r or sc is nil.
//
// Parameters:
//   - r: the renderer
//   - sc: the scene owning the galaxy uniform
//   - options: optional GeneratorBuilderOption values
//
// Returns:
//   - Generator: the new generator
//   - error: an error if the pipeline could not be created
func NewGenerator(r renderer.Renderer, sc scene.Scene, options ...GeneratorBuilderOption) (Generator, error) {
	if r == nil || sc == nil {
		panic("particles: NewGenerator requires a renderer and a scene")
	}
	g := &generator{
		renderer: r,
		scene:    sc,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		opt(g)
	}

	p := pipeline.NewPipeline(PipelineKeyGenerate, pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(Shaders()[0]),
	)
	if err := r.RegisterPipelines(p); err != nil {
		return nil, err
	}
	g.pipeline = r.Pipeline(PipelineKeyGenerate)

	g.particles = renderer.NewBufferSlot(r, "Particle Buffer", wgpu.BufferUsageStorage)
	g.bindGroup = resource.NewSlot("Generate Bind Group", g.createBindGroup, resource.WithLogger(g.logger)).
		DependsOn(g.particles, sc.GalaxySlot())
	g.regen.mark()
	return g, nil
}

func (g *generator) createBindGroup(uint64) (bind_group_provider.BindGroupProvider, error) {
	return renderer.CreateBindGroup(g.renderer, renderer.BindGroupSpec{
		Label:    "Generate",
		Pipeline: g.pipeline,
		Group:    0,
		Buffers: map[shader.AnnotationArg]*wgpu.Buffer{
			shader.AnnotationArgGalaxyParams: g.scene.GalaxyBuffer(),
			shader.AnnotationArgParticle:     g.Buffer(),
		},
	})
}

func (g *generator) Prepare(params *sim.Params) error {
	if params.TotalParticles == 0 {
		return ErrEmpty
	}
	if err := resource.Require(g.scene.GalaxySlot()); err != nil {
		return err
	}

	size := uint64(params.TotalParticles) * galaxy.ParticleStride
	_, created, err := g.particles.Ensure(size)
	if err != nil {
		return err
	}
	if created {
		g.regen.mark()
		g.logger.Debug("particle buffer sized",
			zap.Uint32("particles", params.TotalParticles),
			zap.Uint64("bytes", size),
		)
	}
	g.count = params.TotalParticles

	if _, _, err := g.bindGroup.Ensure(size); err != nil {
		return err
	}
	return nil
}

func (g *generator) Record() (bool, error) {
	if !g.regen.take() {
		return false, nil
	}
	bg, err := g.bindGroup.Get()
	if err != nil {
		g.regen.complete(false)
		return false, err
	}
	groups := common.DispatchSize(g.count, WorkgroupSize)
	if err := g.renderer.DispatchCompute(PipelineKeyGenerate, []bind_group_provider.BindGroupProvider{bg}, groups); err != nil {
		g.regen.complete(false)
		return false, fmt.Errorf("failed to dispatch particle generation: %w", err)
	}
	return true, nil
}

func (g *generator) Complete(submitted bool) {
	g.regen.complete(submitted)
}

func (g *generator) MarkDirty() {
	g.regen.mark()
}

func (g *generator) Dirty() bool {
	return g.regen.dirty
}

func (g *generator) Count() uint32 {
	return g.count
}

func (g *generator) Buffer() *wgpu.Buffer {
	buf, _ := g.particles.Get()
	return buf
}

func (g *generator) Slot() resource.Node {
	return g.particles
}

func (g *generator) Sized() []resource.Sized {
	return []resource.Sized{g.particles}
}

func (g *generator) Release() {
	g.bindGroup.Release()
	g.particles.Release()
	g.count = 0
	g.regen = regeneration{}
	g.regen.mark()
}

// regeneration tracks whether the particle buffer content is stale. A dispatch taken by take is
// in flight until complete reports whether its frame was submitted.
type regeneration struct {
	dirty    bool
	inFlight bool
}

func (r *regeneration) mark() {
	r.dirty = true
}

// take clears the dirty flag and reports whether a dispatch is due.
func (r *regeneration) take() bool {
	if !r.dirty {
		return false
	}
	r.dirty = false
	r.inFlight = true
	return true
}

func (r *regeneration) complete(submitted bool) {
	if r.inFlight && !submitted {
		r.dirty = true
	}
	r.inFlight = false
}
