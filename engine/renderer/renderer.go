package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend
	logger      *zap.Logger

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	sampleCount          MSAASampleCount
}

// Renderer defines the interface for the rendering system.
//
// A frame is recorded into a single command encoder: BeginFrame, any number of compute
// dispatches, buffer operations and render passes, then EndFrame submits everything at once
// and Present shows the swapchain texture if a pass drew into it. Pipelines are cached by key.
type Renderer interface {
	// Logger returns the renderer's logger.
	Logger() *zap.Logger

	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines registers one or more pipelines by creating the corresponding GPU
	// pipeline objects (render or compute) via the backend, then caching them by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Extent returns the current surface size. It is empty while the window is minimised.
	Extent() common.Extent

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SurfaceFormat returns the swapchain colour format.
	SurfaceFormat() wgpu.TextureFormat

	// SampleCount returns the MSAA sample count configured for the star target.
	SampleCount() uint32

	// SupportsTimestamps reports whether GPU pass timing is available.
	SupportsTimestamps() bool

	// CreateBuffer creates an uninitialised GPU buffer.
	//
	// Parameters:
	//   - label: debug label
	//   - size: size in bytes
	//   - usage: buffer usage flags
	//
	// Returns:
	//   - *wgpu.Buffer: the new buffer
	//   - error: an error if creation fails
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// CreateRenderTarget creates a 2D texture and view.
	//
	// Parameters:
	//   - label: debug label
	//   - spec: extent, format, sample count and usage; zero fields take defaults
	//
	// Returns:
	//   - *RenderTarget: the texture and view
	//   - error: an error if creation fails
	CreateRenderTarget(label string, spec RenderTargetSpec) (*RenderTarget, error)

	// CreateQuerySet creates a timestamp query set of count entries.
	CreateQuerySet(label string, count uint32) (*wgpu.QuerySet, error)

	// InitBindGroup creates missing GPU buffers and a bind group from a layout descriptor and stores them
	// on the given BindGroupProvider. Texture views must already be set and samplers created with
	// InitSampler. Buffer usage and size can be overridden per binding.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferUsageOverrides: additional buffer usage flags to OR into the derived usage, keyed by binding index (nil safe)
	//   - bufferSizeOverrides: custom buffer sizes to use instead of MinBindingSize, keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitSampler creates a GPU sampler from staging data and adopts it into the given BindGroupProvider
	// at the specified binding index. Must be called before InitBindGroup for any sampler bindings.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffer queues a write into buf.
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)

	// Poll runs finished GPU callbacks without blocking.
	Poll()

	// BeginFrame creates the frame's command encoder.
	//
	// Returns:
	//   - error: an error if a frame is already open or the encoder could not be created
	BeginFrame() error

	// ClearBuffer records a zero fill.
	ClearBuffer(buf *wgpu.Buffer, offset, size uint64)

	// CopyBufferToBuffer records a buffer copy.
	CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset, size uint64)

	// WriteTimestamp records a timestamp between passes.
	WriteTimestamp(querySet *wgpu.QuerySet, index uint32)

	// ResolveQuerySet records the resolution of timestamps into dst.
	ResolveQuerySet(querySet *wgpu.QuerySet, first, count uint32, dst *wgpu.Buffer, dstOffset uint64)

	// DispatchCompute looks up the cached compute Pipeline by key and records a compute pass.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached compute Pipeline to use
	//   - bindGroups: providers bound in order starting at group 0
	//   - workGroupCount: the number of workgroups to dispatch in the x, y, and z dimensions
	//
	// Returns:
	//   - error: an error if the pipeline is not found
	DispatchCompute(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error

	// BeginRenderPass opens a render pass. A nil attachment view targets the swapchain.
	//
	// Parameters:
	//   - label: debug label
	//   - attachment: the colour target
	//
	// Returns:
	//   - error: an error if the pass could not be opened
	BeginRenderPass(label string, attachment ColorAttachment) error

	// Draw records a non-indexed draw within the open render pass.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached render Pipeline to use
	//   - bindGroups: providers bound in order starting at group 0
	//   - vertexCount: vertices per instance
	//   - instanceCount: the number of instances to draw
	//
	// Returns:
	//   - error: an error if the pipeline is not found
	Draw(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider, vertexCount, instanceCount uint32) error

	// DrawIndirect records a non-indexed indirect draw within the open render pass.
	// The vertex and instance counts are read from indirectBuffer on the GPU, so a compute pass
	// can decide how much is drawn without CPU readback.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached render Pipeline to use
	//   - bindGroups: providers bound in order starting at group 0
	//   - indirectBuffer: the GPU buffer containing DrawIndirect arguments (16 bytes)
	//
	// Returns:
	//   - error: an error if the pipeline is not found
	DrawIndirect(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider, indirectBuffer *wgpu.Buffer) error

	// EndRenderPass closes the open render pass.
	EndRenderPass()

	// EndFrame finishes the frame encoder and submits it.
	// Does not present the surface, call Present() after EndFrame to display the frame.
	EndFrame() error

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// AbortFrame drops the open frame without submitting it.
	AbortFrame()

	// Release destroys every cached pipeline and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type for the given window.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	if window == nil {
		panic("renderer: NewRenderer requires a window")
	}
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		logger:        zap.NewNop(),
		sampleCount:   MSAA4x,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, r.logger)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())
	r.logger.Info("renderer ready",
		zap.String("surface_format", r.backend.SurfaceFormat().String()),
		zap.Uint32("msaa", uint32(r.sampleCount)),
		zap.Bool("timestamps", r.backend.SupportsTimestamps()),
	)
	return r
}

func (r *renderer) Logger() *zap.Logger {
	return r.logger
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Extent() common.Extent {
	return r.backend.Extent()
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) SampleCount() uint32 {
	return uint32(r.sampleCount)
}

func (r *renderer) SupportsTimestamps() bool {
	return r.backend.SupportsTimestamps()
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			if err := r.backend.RegisterComputePipeline(p); err != nil {
				return fmt.Errorf("failed to register compute pipeline %q: %w", key, err)
			}
		case pipeline.PipelineTypeRender:
			if err := r.backend.RegisterRenderPipeline(p); err != nil {
				return fmt.Errorf("failed to register render pipeline %q: %w", key, err)
			}
		}
		r.pipelineCache[key] = p
		r.logger.Debug("pipeline registered", zap.String("pipeline", key))
	}
	return nil
}

func (r *renderer) lookup(key string) (pipeline.Pipeline, error) {
	r.mu.Lock()
	p, exists := r.pipelineCache[key]
	r.mu.Unlock()
	if !exists {
		return nil, fmt.Errorf("pipeline %q not found in cache", key)
	}
	return p, nil
}

func (r *renderer) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return r.backend.CreateBuffer(label, size, usage)
}

func (r *renderer) CreateRenderTarget(label string, spec RenderTargetSpec) (*RenderTarget, error) {
	return r.backend.CreateRenderTarget(label, spec)
}

func (r *renderer) CreateQuerySet(label string, count uint32) (*wgpu.QuerySet, error) {
	return r.backend.CreateQuerySet(label, count)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	r.backend.WriteBuffer(buf, offset, data)
}

func (r *renderer) Poll() {
	r.backend.Poll()
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) ClearBuffer(buf *wgpu.Buffer, offset, size uint64) {
	r.backend.ClearBuffer(buf, offset, size)
}

func (r *renderer) CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset, size uint64) {
	r.backend.CopyBufferToBuffer(src, srcOffset, dst, dstOffset, size)
}

func (r *renderer) WriteTimestamp(querySet *wgpu.QuerySet, index uint32) {
	r.backend.WriteTimestamp(querySet, index)
}

func (r *renderer) ResolveQuerySet(querySet *wgpu.QuerySet, first, count uint32, dst *wgpu.Buffer, dstOffset uint64) {
	r.backend.ResolveQuerySet(querySet, first, count, dst, dstOffset)
}

func (r *renderer) DispatchCompute(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error {
	p, err := r.lookup(pipelineKey)
	if err != nil {
		return err
	}
	r.backend.DispatchCompute(p, bindGroups, workGroupCount)
	return nil
}

func (r *renderer) BeginRenderPass(label string, attachment ColorAttachment) error {
	return r.backend.BeginRenderPass(label, attachment)
}

func (r *renderer) Draw(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider, vertexCount, instanceCount uint32) error {
	p, err := r.lookup(pipelineKey)
	if err != nil {
		return err
	}
	r.backend.Draw(p, bindGroups, vertexCount, instanceCount)
	return nil
}

func (r *renderer) DrawIndirect(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider, indirectBuffer *wgpu.Buffer) error {
	p, err := r.lookup(pipelineKey)
	if err != nil {
		return err
	}
	r.backend.DrawIndirect(p, bindGroups, indirectBuffer)
	return nil
}

func (r *renderer) EndRenderPass() {
	r.backend.EndRenderPass()
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) AbortFrame() {
	r.backend.AbortFrame()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	r.backend.Release()
}
