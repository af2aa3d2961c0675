package culling

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/galaxy"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

var (
	//go:embed assets/cull.wgsl
	cullSource string

	//go:embed assets/prepare_draw.wgsl
	prepareDrawSource string
)

const (
	// PipelineKeyCull is the renderer cache key of the frustum cull pipeline.
	PipelineKeyCull = "culling.cull"
	// PipelineKeyPrepareDraw is the renderer cache key of the indirect argument pipeline.
	PipelineKeyPrepareDraw = "culling.prepare_draw"
)

// WorkgroupSize is the workgroup width declared by cull.wgsl.
const WorkgroupSize = 64

// counterSize is the byte size of the atomic visible counter.
const counterSize = 4

var zeroCounter = make([]byte, counterSize)

// Shaders returns a fresh copy of every shader the culler uses, cull first.
func Shaders() []shader.Shader {
	return []shader.Shader{
		shader.NewShader(PipelineKeyCull, shader.ShaderTypeCompute, cullSource),
		shader.NewShader(PipelineKeyPrepareDraw, shader.ShaderTypeCompute, prepareDrawSource),
	}
}

// ParticleSource is the particle storage buffer the culler reads.
type ParticleSource interface {
	Buffer() *wgpu.Buffer
	Slot() resource.Node
	Count() uint32
}

// Culler compacts the indices of particles inside the view frustum into a storage buffer and
// writes the indirect draw arguments for them, entirely on the GPU.
type Culler interface {
	// Prepare ensures the visible-index buffer matches the particle count and that both bind
	// groups are current. The scene and the particle source must be prepared first.
	//
	// Returns:
	//   - error: a resource error
	Prepare() error

	// Record clears the visible counter and records the cull and argument passes into the open
	// frame, followed by a best-effort copy of the counter for readback.
	//
	// Returns:
	//   - error: an error if a pass could not be recorded
	Record() error

	// Complete starts the counter readback map after submission, or forgets the copy when the
	// frame was dropped.
	Complete(submitted bool)

	// VisibleCount returns the most recently read back visible count.
	VisibleCount() uint32

	// VisibleBuffer returns the compacted index buffer, or nil before Prepare.
	VisibleBuffer() *wgpu.Buffer

	// IndirectBuffer returns the indirect draw arguments buffer, or nil before Prepare.
	IndirectBuffer() *wgpu.Buffer

	// VisibleSlot returns the index buffer's cache node for dependency registration.
	VisibleSlot() resource.Node

	// IndirectSlot returns the indirect buffer's cache node.
	IndirectSlot() resource.Node

	// Sized returns the slots counted in the VRAM estimate.
	Sized() []resource.Sized

	// Release destroys every buffer and bind group.
	Release()
}

// culler is the implementation of the Culler interface.
type culler struct {
	renderer  renderer.Renderer
	scene     scene.Scene
	particles ParticleSource
	logger    *zap.Logger

	cullPipeline    pipeline.Pipeline
	preparePipeline pipeline.Pipeline

	visible  *resource.Slot[uint64, *wgpu.Buffer]
	counter  *resource.Slot[uint64, *wgpu.Buffer]
	indirect *resource.Slot[uint64, *wgpu.Buffer]

	cullBindGroup    *resource.Slot[uint64, bind_group_provider.BindGroupProvider]
	prepareBindGroup *resource.Slot[uint64, bind_group_provider.BindGroupProvider]

	readback       *renderer.Readback
	readbackEnable bool
	visibleCount   atomic.Uint32
}

var _ Culler = &culler{}

// NewCuller creates a Culler and registers its two compute pipelines.
// Panics if a collaborator is nil.
//
// Parameters:
//   - r: the renderer
//   - sc: the scene owning the camera and galaxy uniforms
//   - particles: the particle buffer to cull
//   - options: optional CullerBuilderOption values
//
// Returns:
//   - Culler: the new culler
//   - error: an error if a pipeline or the readback buffer could not be created
func NewCuller(r renderer.Renderer, sc scene.Scene, particles ParticleSource, options ...CullerBuilderOption) (Culler, error) {
	if r == nil || sc == nil || particles == nil {
		panic("culling: NewCuller requires a renderer, a scene and a particle source")
	}
	c := &culler{
		renderer:       r,
		scene:          sc,
		particles:      particles,
		logger:         zap.NewNop(),
		readbackEnable: true,
	}
	for _, opt := range options {
		opt(c)
	}

	shaders := Shaders()
	if err := r.RegisterPipelines(
		pipeline.NewPipeline(PipelineKeyCull, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(shaders[0])),
		pipeline.NewPipeline(PipelineKeyPrepareDraw, pipeline.PipelineTypeCompute, pipeline.WithComputeShader(shaders[1])),
	); err != nil {
		return nil, err
	}
	c.cullPipeline = r.Pipeline(PipelineKeyCull)
	c.preparePipeline = r.Pipeline(PipelineKeyPrepareDraw)

	c.visible = renderer.NewBufferSlot(r, "Visible Indices", wgpu.BufferUsageStorage)
	c.counter = renderer.NewBufferSlot(r, "Visible Counter", wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst|wgpu.BufferUsageCopySrc)
	c.indirect = renderer.NewBufferSlot(r, "Draw Indirect Args", wgpu.BufferUsageStorage|wgpu.BufferUsageIndirect|wgpu.BufferUsageCopyDst)

	c.cullBindGroup = resource.NewSlot("Cull Bind Group", c.createCullBindGroup, resource.WithLogger(c.logger)).
		DependsOn(sc.CameraSlot(), sc.GalaxySlot(), particles.Slot(), c.visible, c.counter)
	c.prepareBindGroup = resource.NewSlot("Prepare Draw Bind Group", c.createPrepareBindGroup, resource.WithLogger(c.logger)).
		DependsOn(c.counter, c.indirect)

	if c.readbackEnable {
		rb, err := renderer.NewReadback(r, "Visible Count", counterSize, c.storeCount)
		if err != nil {
			return nil, err
		}
		c.readback = rb
	}
	return c, nil
}

func (c *culler) storeCount(data []byte) {
	if len(data) < counterSize {
		return
	}
	c.visibleCount.Store(binary.LittleEndian.Uint32(data))
}

func (c *culler) createCullBindGroup(uint64) (bind_group_provider.BindGroupProvider, error) {
	return renderer.CreateBindGroup(c.renderer, renderer.BindGroupSpec{
		Label:    "Cull",
		Pipeline: c.cullPipeline,
		Group:    0,
		Buffers: map[shader.AnnotationArg]*wgpu.Buffer{
			shader.AnnotationArgCamera:         c.scene.CameraBuffer(),
			shader.AnnotationArgGalaxyParams:   c.scene.GalaxyBuffer(),
			shader.AnnotationArgParticle:       c.particles.Buffer(),
			shader.AnnotationArgVisibleIndices: c.VisibleBuffer(),
			shader.AnnotationArgVisibleCount:   c.counterBuffer(),
		},
	})
}

func (c *culler) createPrepareBindGroup(uint64) (bind_group_provider.BindGroupProvider, error) {
	return renderer.CreateBindGroup(c.renderer, renderer.BindGroupSpec{
		Label:    "Prepare Draw",
		Pipeline: c.preparePipeline,
		Group:    0,
		Buffers: map[shader.AnnotationArg]*wgpu.Buffer{
			shader.AnnotationArgVisibleCount:     c.counterBuffer(),
			shader.AnnotationArgDrawIndirectArgs: c.IndirectBuffer(),
		},
	})
}

func (c *culler) Prepare() error {
	if err := resource.Require(c.scene.CameraSlot(), c.scene.GalaxySlot(), c.particles.Slot()); err != nil {
		return err
	}
	count := c.particles.Count()
	size := uint64(count) * 4
	if _, created, err := c.visible.Ensure(size); err != nil {
		return err
	} else if created {
		c.logger.Debug("visible index buffer sized", zap.Uint32("particles", count))
	}
	if _, _, err := c.counter.Ensure(counterSize); err != nil {
		return err
	}
	if _, _, err := c.indirect.Ensure(galaxy.DrawIndirectArgsSize); err != nil {
		return err
	}
	if _, _, err := c.cullBindGroup.Ensure(size); err != nil {
		return err
	}
	if _, _, err := c.prepareBindGroup.Ensure(0); err != nil {
		return err
	}
	return nil
}

func (c *culler) Record() error {
	cullBG, err := c.cullBindGroup.Get()
	if err != nil {
		return err
	}
	prepareBG, err := c.prepareBindGroup.Get()
	if err != nil {
		return err
	}
	counter := c.counterBuffer()
	c.renderer.WriteBuffer(counter, 0, zeroCounter)

	groups := common.DispatchSize(c.particles.Count(), WorkgroupSize)
	if err := c.renderer.DispatchCompute(PipelineKeyCull, []bind_group_provider.BindGroupProvider{cullBG}, groups); err != nil {
		return fmt.Errorf("failed to dispatch cull: %w", err)
	}
	if err := c.renderer.DispatchCompute(PipelineKeyPrepareDraw, []bind_group_provider.BindGroupProvider{prepareBG}, [3]uint32{1, 1, 1}); err != nil {
		return fmt.Errorf("failed to dispatch draw argument preparation: %w", err)
	}
	if c.readback != nil {
		c.readback.Copy(c.renderer, counter, 0)
	}
	return nil
}

func (c *culler) Complete(submitted bool) {
	if c.readback == nil {
		return
	}
	if submitted {
		c.readback.Map()
		return
	}
	c.readback.Cancel()
}

func (c *culler) VisibleCount() uint32 {
	return c.visibleCount.Load()
}

func (c *culler) counterBuffer() *wgpu.Buffer {
	buf, _ := c.counter.Get()
	return buf
}

func (c *culler) VisibleBuffer() *wgpu.Buffer {
	buf, _ := c.visible.Get()
	return buf
}

func (c *culler) IndirectBuffer() *wgpu.Buffer {
	buf, _ := c.indirect.Get()
	return buf
}

func (c *culler) VisibleSlot() resource.Node {
	return c.visible
}

func (c *culler) IndirectSlot() resource.Node {
	return c.indirect
}

func (c *culler) Sized() []resource.Sized {
	return []resource.Sized{c.visible, c.counter, c.indirect}
}

func (c *culler) Release() {
	c.cullBindGroup.Release()
	c.prepareBindGroup.Release()
	c.visible.Release()
	c.counter.Release()
	c.indirect.Release()
	if c.readback != nil {
		c.readback.Release()
	}
}
