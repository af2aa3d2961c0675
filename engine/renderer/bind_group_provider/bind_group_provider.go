package bind_group_provider

import (
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// resource is whatever sits at one binding. Exactly one of buffer, view or sampler is set.
type resource struct {
	buffer  *wgpu.Buffer
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
	// owned resources were created for this provider and die with it.
	owned bool
}

func (r resource) release() {
	if !r.owned {
		return
	}
	if r.buffer != nil {
		r.buffer.Release()
	}
	if r.sampler != nil {
		r.sampler.Release()
	}
}

type bindGroupProvider struct {
	label     string
	bindGroup *wgpu.BindGroup
	layout    *wgpu.BindGroupLayout
	resources map[int]resource
}

// BindGroupProvider collects the resources of one bind group and holds the bind group built from them.
//
// Borrowed resources (Set*) belong to a cache slot that outlives the bind group, like the particle
// buffer shared by every pass. Adopted resources (Adopt*) were created for this group alone, like a
// pass's parameter uniform, and Release frees them.
//
// A pass fills in the borrowed bindings, Renderer.InitBindGroup creates the missing buffers and the
// bind group, Renderer.WriteBuffer keeps the adopted uniforms current through Buffer(binding) and
// the pass binds BindGroup() while recording.
type BindGroupProvider interface {
	// Label returns the debug label, also used for the GPU objects built from this provider.
	Label() string

	// BindGroup returns the bind group, or nil before Renderer.InitBindGroup.
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group was built against, or nil.
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer at binding, or nil.
	Buffer(binding int) *wgpu.Buffer

	// TextureView returns the texture view at binding, or nil.
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the sampler at binding, or nil.
	Sampler(binding int) *wgpu.Sampler

	// Bindings returns the occupied binding indices in ascending order.
	Bindings() []int

	// Owned reports whether Release frees the resource at binding.
	Owned(binding int) bool

	// Entry builds the bind group entry for a layout entry from the resource at its binding.
	//
	// Parameters:
	//   - layout: one entry of the bind group layout descriptor
	//
	// Returns:
	//   - wgpu.BindGroupEntry: the entry
	//   - bool: false if the binding is empty or holds the wrong kind of resource
	Entry(layout wgpu.BindGroupLayoutEntry) (wgpu.BindGroupEntry, bool)

	// SetBindGroup stores the bind group built by the renderer.
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout stores the layout built by the renderer.
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer binds a borrowed buffer, replacing (without freeing) whatever was there.
	SetBuffer(binding int, buf *wgpu.Buffer)

	// AdoptBuffer binds a buffer the provider owns.
	AdoptBuffer(binding int, buf *wgpu.Buffer)

	// SetTextureView binds a borrowed texture view.
	SetTextureView(binding int, tv *wgpu.TextureView)

	// SetSampler binds a borrowed sampler.
	SetSampler(binding int, s *wgpu.Sampler)

	// AdoptSampler binds a sampler the provider owns.
	AdoptSampler(binding int, s *wgpu.Sampler)

	// Release frees the bind group, its layout and every adopted resource, then forgets all bindings.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: debug label
//   - options: borrowed resources to bind up front
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{label: label, resources: make(map[int]resource)}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string { return p.label }

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup { return p.bindGroup }

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout { return p.layout }

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer { return p.resources[binding].buffer }

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView { return p.resources[binding].view }

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler { return p.resources[binding].sampler }

func (p *bindGroupProvider) Owned(binding int) bool { return p.resources[binding].owned }

func (p *bindGroupProvider) Bindings() []int {
	out := make([]int, 0, len(p.resources))
	for b := range p.resources {
		out = append(out, b)
	}
	slices.Sort(out)
	return out
}

func (p *bindGroupProvider) Entry(layout wgpu.BindGroupLayoutEntry) (wgpu.BindGroupEntry, bool) {
	r := p.resources[int(layout.Binding)]
	entry := wgpu.BindGroupEntry{Binding: layout.Binding}
	switch {
	case layout.Texture.SampleType != wgpu.TextureSampleTypeUndefined,
		layout.StorageTexture.Format != wgpu.TextureFormatUndefined:
		entry.TextureView = r.view
		return entry, r.view != nil
	case layout.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
		entry.Sampler = r.sampler
		return entry, r.sampler != nil
	default:
		entry.Buffer, entry.Size = r.buffer, wgpu.WholeSize
		return entry, r.buffer != nil
	}
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) { p.bindGroup = bg }

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) { p.layout = bgl }

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.resources[binding] = resource{buffer: buf}
}

func (p *bindGroupProvider) AdoptBuffer(binding int, buf *wgpu.Buffer) {
	p.resources[binding] = resource{buffer: buf, owned: true}
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.resources[binding] = resource{view: tv}
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.resources[binding] = resource{sampler: s}
}

func (p *bindGroupProvider) AdoptSampler(binding int, s *wgpu.Sampler) {
	p.resources[binding] = resource{sampler: s, owned: true}
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
	for _, r := range p.resources {
		r.release()
	}
	clear(p.resources)
}
