package renderer

import (
	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode maps a config string to a PresentMode. Anything but "vsync" is uncapped.
func ParsePresentMode(s string) PresentMode {
	if s == "vsync" {
		return PresentModeVSync
	}
	return PresentModeUncapped
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4 only.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// ColorAttachment describes the single colour target of a render pass.
type ColorAttachment struct {
	// View is the texture rendered into. Nil targets the swapchain, which is acquired on first use.
	View *wgpu.TextureView
	// ResolveTarget receives the resolved samples when View is multisampled.
	ResolveTarget *wgpu.TextureView
	// Load keeps the existing contents instead of clearing them.
	Load bool
	// ClearColor is used when Load is false.
	ClearColor wgpu.Color
	// Discard drops View's contents after the pass; used for MSAA targets once resolved.
	Discard bool
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Adapter() *wgpu.Adapter

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	// A zero width or height leaves the surface unconfigured.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Extent returns the configured surface size.
	Extent() common.Extent

	// SurfaceFormat returns the colour format of the swapchain.
	SurfaceFormat() wgpu.TextureFormat

	// SupportsTimestamps reports whether the device was created with timestamp queries.
	SupportsTimestamps() bool

	// RegisterRenderPipeline creates the GPU render pipeline for p and stores it on p.
	//
	// Parameters:
	//   - p: the pipeline object containing the shaders and configuration for the pipeline
	//
	// Returns:
	//   - error: an error if the pipeline could not be created, otherwise nil
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterComputePipeline creates the GPU compute pipeline for p and stores it on p.
	//
	// Parameters:
	//   - p: the pipeline object containing the compute shader
	//
	// Returns:
	//   - error: an error if the pipeline could not be created, otherwise nil
	RegisterComputePipeline(p pipeline.Pipeline) error

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

	// CreateRenderTarget creates a 2D texture and its default view.
	//
	// Parameters:
	//   - label: debug label
	//   - spec: size, format, sample count and usage of the texture
	//
	// Returns:
	//   - *RenderTarget: the texture and view
	//   - error: an error if creation fails
	CreateRenderTarget(label string, spec RenderTargetSpec) (*RenderTarget, error)

	// CreateQuerySet creates a timestamp query set.
	//
	// Parameters:
	//   - label: debug label
	//   - count: number of timestamps
	//
	// Returns:
	//   - *wgpu.QuerySet: the query set
	//   - error: an error if creation fails
	CreateQuerySet(label string, count uint32) (*wgpu.QuerySet, error)

	// InitBindGroup creates any missing buffers of descriptor and the bind group itself, storing both on provider.
	// Buffers created here are adopted by the provider; buffers already set on the provider are borrowed.
	//
	// Parameters:
	//   - provider: the BindGroupProvider receiving the bind group
	//   - descriptor: the BindGroupLayoutDescriptor describing the layout of the bind group
	//   - bufferUsageOverrides: extra usage flags per binding
	//   - bufferSizeOverrides: buffer sizes per binding replacing MinBindingSize
	//
	// Returns:
	//   - error: an error if the bind group could not be initialized, otherwise nil
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitSampler creates a GPU sampler and adopts it into provider at bindingKey.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if the sampler could not be created
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffer queues a write of data into buf at offset.
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte)

	// Poll processes finished GPU work without blocking, running pending map callbacks.
	Poll()

	// BeginFrame creates the single command encoder every pass of the frame is recorded into.
	//
	// Returns:
	//   - error: an error if a frame is already open or the encoder could not be created
	BeginFrame() error

	// ClearBuffer records a zero fill of size bytes at offset.
	ClearBuffer(buf *wgpu.Buffer, offset, size uint64)

	// CopyBufferToBuffer records a buffer copy.
	CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset, size uint64)

	// WriteTimestamp records a timestamp write outside any pass.
	WriteTimestamp(querySet *wgpu.QuerySet, index uint32)

	// ResolveQuerySet records the resolution of count timestamps into dst.
	ResolveQuerySet(querySet *wgpu.QuerySet, first, count uint32, dst *wgpu.Buffer, dstOffset uint64)

	// DispatchCompute records one compute pass.
	//
	// Parameters:
	//   - p: the registered compute Pipeline
	//   - bindGroups: providers bound in order starting at group 0
	//   - workGroupCount: the number of workgroups in x, y and z
	DispatchCompute(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider, workGroupCount [3]uint32)

	// BeginRenderPass opens a render pass on the frame encoder.
	//
	// Parameters:
	//   - label: debug label
	//   - attachment: the colour target
	//
	// Returns:
	//   - error: an error if no frame is open, a pass is already open, or the swapchain could not be acquired
	BeginRenderPass(label string, attachment ColorAttachment) error

	// Draw records a non-indexed draw in the open render pass.
	Draw(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider, vertexCount, instanceCount uint32)

	// DrawIndirect records a non-indexed indirect draw whose arguments live in indirectBuffer.
	DrawIndirect(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider, indirectBuffer *wgpu.Buffer)

	// EndRenderPass closes the open render pass.
	EndRenderPass()

	// EndFrame finishes the frame encoder and submits it in a single submission.
	//
	// Returns:
	//   - error: an error if no frame is open or the encoder could not be finished
	EndFrame() error

	// Present presents the swapchain texture acquired during the frame, if any.
	Present()

	// AbortFrame drops everything recorded in the open frame without submitting it.
	AbortFrame()

	// Release destroys the device, surface and instance.
	Release()
}
