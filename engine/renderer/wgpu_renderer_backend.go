package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

var (
	// ErrNoFrame is returned when a recording call is made outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("no frame is being recorded")
	// ErrFrameInProgress is returned by BeginFrame while the previous frame is still open.
	ErrFrameInProgress = errors.New("previous frame not yet submitted")
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	logger *zap.Logger

	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	extent        common.Extent
	configured    bool

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	timestamps  bool

	// Frame state. Every pass of a frame is recorded into frameEncoder and submitted once.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, logger *zap.Logger) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		logger:      logger,
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	var features []wgpu.FeatureName
	if a.HasFeature(wgpu.FeatureNameTimestampQuery) {
		features = append(features, wgpu.FeatureNameTimestampQuery)
		w.timestamps = true
	} else {
		logger.Warn("adapter has no timestamp query support, GPU pass times disabled")
	}

	// Raise the storage binding limit to whatever the adapter offers so large particle
	// buffers fit in one binding.
	limits := wgpu.DefaultLimits()
	if supported := a.GetLimits(); supported.Limits.MaxStorageBufferBindingSize > limits.MaxStorageBufferBindingSize {
		limits.MaxStorageBufferBindingSize = supported.Limits.MaxStorageBufferBindingSize
		limits.MaxBufferSize = max(limits.MaxBufferSize, supported.Limits.MaxBufferSize)
	}

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "Main Device",
		RequiredFeatures: features,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	capabilities := w.surface.GetCapabilities(w.adapter)
	w.surfaceFormat = capabilities.Formats[0]

	return w
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.extent = common.NewExtent(width, height)
	if b.extent.Empty() {
		// Minimised windows report 0x0; configuring a zero-sized surface is a validation error.
		b.configured = false
		return
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       b.extent.Width,
		Height:      b.extent.Height,
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.configured = true
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) Extent() common.Extent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.extent
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) SupportsTimestamps() bool {
	return b.timestamps
}

// pipelineLayout creates one bind group layout per group of the pipeline's merged descriptors.
// Groups must be contiguous from 0.
func (b *wgpuRendererBackendImpl) pipelineLayout(p pipeline.Pipeline) (*wgpu.PipelineLayout, error) {
	descriptors := p.BindGroupLayoutDescriptors()
	groups := make([]int, 0, len(descriptors))
	for g := range descriptors {
		groups = append(groups, g)
	}
	sort.Ints(groups)

	bindGroupLayouts := make([]*wgpu.BindGroupLayout, len(groups))
	for i, g := range groups {
		if g != i {
			return nil, fmt.Errorf("pipeline %q: bind group %d is missing", p.PipelineKey(), i)
		}
		desc := descriptors[g]
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		bindGroupLayouts[i] = layout
	}

	return b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
}

func (b *wgpuRendererBackendImpl) shaderModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	return b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.Source(),
		},
	})
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	vs, err := b.shaderModule(vertexShader)
	if err != nil {
		return fmt.Errorf("vertex shader %s: %w", vertexShader.Key(), err)
	}
	fs, err := b.shaderModule(fragmentShader)
	if err != nil {
		return fmt.Errorf("fragment shader %s: %w", fragmentShader.Key(), err)
	}

	layout, err := b.pipelineLayout(p)
	if err != nil {
		return err
	}

	state := p.RenderState()
	if state.Format == wgpu.TextureFormatUndefined {
		state.Format = b.surfaceFormat
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{{
				Format:    state.Format,
				Blend:     state.Blend,
				WriteMask: state.WriteMask,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  state.Topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: state.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) RegisterComputePipeline(p pipeline.Pipeline) error {
	computeShader := p.Shader(shader.ShaderTypeCompute)
	if computeShader == nil {
		return errors.New("compute shader must be set to create a compute pipeline")
	}

	s, err := b.shaderModule(computeShader)
	if err != nil {
		return fmt.Errorf("compute shader %s: %w", computeShader.Key(), err)
	}

	layout, err := b.pipelineLayout(p)
	if err != nil {
		return err
	}

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.PipelineKey() + " Compute Pipeline",
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     s,
			EntryPoint: computeShader.EntryPoint(),
		},
	})
	if err != nil {
		return err
	}

	p.SetComputePipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
}

func (b *wgpuRendererBackendImpl) CreateRenderTarget(label string, spec RenderTargetSpec) (*RenderTarget, error) {
	spec = spec.withDefaults()
	if spec.Extent.Empty() {
		return nil, fmt.Errorf("render target %s: empty extent", label)
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              spec.Extent.Width,
			Height:             spec.Extent.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   spec.SampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        spec.Format,
		Usage:         spec.Usage,
	})
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &RenderTarget{Texture: tex, View: view, Spec: spec}, nil
}

func (b *wgpuRendererBackendImpl) CreateQuerySet(label string, count uint32) (*wgpu.QuerySet, error) {
	if !b.timestamps {
		return nil, errors.New("timestamp queries are not supported by this device")
	}
	return b.device.CreateQuerySet(&wgpu.QuerySetDescriptor{
		Label: label,
		Type:  wgpu.QueryTypeTimestamp,
		Count: count,
	})
}

// defaultBufferUsage is the usage of a buffer InitBindGroup creates for an empty binding.
func defaultBufferUsage(t wgpu.BufferBindingType) wgpu.BufferUsage {
	if t == wgpu.BufferBindingTypeUniform {
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	}
	return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	if len(descriptor.Entries) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		if layout, err = b.device.CreateBindGroupLayout(&descriptor); err != nil {
			return fmt.Errorf("%s: bind group layout: %w", provider.Label(), err)
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(descriptor.Entries))
	for _, le := range descriptor.Entries {
		entry, ok := provider.Entry(le)
		if !ok {
			binding := int(le.Binding)
			if le.Buffer.Type == wgpu.BufferBindingTypeUndefined {
				return fmt.Errorf("%s: binding %d has no texture view or sampler", provider.Label(), binding)
			}
			size := le.Buffer.MinBindingSize
			if override, has := bufferSizeOverrides[binding]; has {
				size = override
			}
			buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s binding %d", provider.Label(), binding),
				Size:  size,
				Usage: defaultBufferUsage(le.Buffer.Type) | bufferUsageOverrides[binding],
			})
			if err != nil {
				return fmt.Errorf("%s: binding %d: %w", provider.Label(), binding, err)
			}
			provider.AdoptBuffer(binding, buf)
			entry, _ = provider.Entry(le)
		}
		entries = append(entries, entry)
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label(),
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%s: bind group: %w", provider.Label(), err)
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(samplerStagingData.Descriptor(provider.Label() + " Sampler"))
	if err != nil {
		return err
	}
	provider.AdoptSampler(bindingKey, samp)

	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue.WriteBuffer(buf, offset, data)
}

func (b *wgpuRendererBackendImpl) Poll() {
	b.device.Poll(false, nil)
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder != nil || b.frameSurface != nil {
		return ErrFrameInProgress
	}

	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "Frame Encoder"})
	if err != nil {
		return err
	}
	b.frameEncoder = encoder
	return nil
}

func (b *wgpuRendererBackendImpl) ClearBuffer(buf *wgpu.Buffer, offset, size uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frameEncoder == nil {
		return
	}
	b.frameEncoder.ClearBuffer(buf, offset, size)
}

func (b *wgpuRendererBackendImpl) CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset, size uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frameEncoder == nil {
		return
	}
	b.frameEncoder.CopyBufferToBuffer(src, srcOffset, dst, dstOffset, size)
}

func (b *wgpuRendererBackendImpl) WriteTimestamp(querySet *wgpu.QuerySet, index uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frameEncoder == nil || querySet == nil {
		return
	}
	b.frameEncoder.WriteTimestamp(querySet, index)
}

func (b *wgpuRendererBackendImpl) ResolveQuerySet(querySet *wgpu.QuerySet, first, count uint32, dst *wgpu.Buffer, dstOffset uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frameEncoder == nil || querySet == nil {
		return
	}
	b.frameEncoder.ResolveQuerySet(querySet, first, count, dst, dstOffset)
}

func (b *wgpuRendererBackendImpl) DispatchCompute(
	p pipeline.Pipeline,
	bindGroups []bind_group_provider.BindGroupProvider,
	workGroupCount [3]uint32,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return
	}

	pass := b.frameEncoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: p.PipelineKey()})
	pass.SetPipeline(p.ComputePipeline())
	for i, bg := range bindGroups {
		pass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	pass.DispatchWorkgroups(workGroupCount[0], workGroupCount[1], workGroupCount[2])
	pass.End()
	pass.Release()
}

// acquireSurface returns the swapchain view for this frame, acquiring it on first use.
func (b *wgpuRendererBackendImpl) acquireSurface() (*wgpu.TextureView, error) {
	if b.frameView != nil {
		return b.frameView, nil
	}
	if !b.configured {
		return nil, errors.New("surface is not configured")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, err
	}
	b.frameSurface = surfaceTexture
	b.frameView = view
	return view, nil
}

func (b *wgpuRendererBackendImpl) BeginRenderPass(label string, attachment ColorAttachment) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	if b.framePass != nil {
		return fmt.Errorf("render pass %s: another render pass is open", label)
	}

	view := attachment.View
	if view == nil {
		var err error
		if view, err = b.acquireSurface(); err != nil {
			return fmt.Errorf("render pass %s: %w", label, err)
		}
	}

	loadOp := wgpu.LoadOpClear
	if attachment.Load {
		loadOp = wgpu.LoadOpLoad
	}
	storeOp := wgpu.StoreOpStore
	if attachment.Discard {
		storeOp = wgpu.StoreOpDiscard
	}

	b.framePass = b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          view,
				ResolveTarget: attachment.ResolveTarget,
				LoadOp:        loadOp,
				StoreOp:       storeOp,
				ClearValue:    attachment.ClearColor,
			},
		},
	})
	return nil
}

func (b *wgpuRendererBackendImpl) bindPipeline(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) {
	b.framePass.SetPipeline(p.RenderPipeline())
	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
}

func (b *wgpuRendererBackendImpl) Draw(
	p pipeline.Pipeline,
	bindGroups []bind_group_provider.BindGroupProvider,
	vertexCount, instanceCount uint32,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.bindPipeline(p, bindGroups)
	b.framePass.Draw(vertexCount, instanceCount, 0, 0)
}

func (b *wgpuRendererBackendImpl) DrawIndirect(
	p pipeline.Pipeline,
	bindGroups []bind_group_provider.BindGroupProvider,
	indirectBuffer *wgpu.Buffer,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.bindPipeline(p, bindGroups)
	b.framePass.DrawIndirect(indirectBuffer, 0)
}

func (b *wgpuRendererBackendImpl) EndRenderPass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	if b.framePass != nil {
		b.framePass.End()
		b.framePass.Release()
		b.framePass = nil
	}

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseSurfaceLocked()
		return fmt.Errorf("failed to finish frame encoder: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseSurfaceLocked()
}

func (b *wgpuRendererBackendImpl) AbortFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass != nil {
		b.framePass.End()
		b.framePass.Release()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseSurfaceLocked()
}

func (b *wgpuRendererBackendImpl) releaseSurfaceLocked() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.AbortFrame()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Adapter() *wgpu.Adapter {
	return b.adapter
}
