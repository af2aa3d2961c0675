package renderer

import (
	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// NewBufferSlot returns a cache slot for a buffer keyed by its byte size.
//
// Parameters:
//   - r: the renderer creating the buffer
//   - label: debug label for the slot and buffer
//   - usage: buffer usage flags
//
// Returns:
//   - *resource.Slot[uint64, *wgpu.Buffer]: the slot, reporting its key as its size
func NewBufferSlot(r Renderer, label string, usage wgpu.BufferUsage) *resource.Slot[uint64, *wgpu.Buffer] {
	s := resource.NewSlot(label, func(size uint64) (*wgpu.Buffer, error) {
		return r.CreateBuffer(label, size, usage)
	}, resource.WithLogger(r.Logger()))
	return resource.WithSize(s, func(size uint64) uint64 { return size })
}

// NewTargetSlot returns a cache slot for a render target keyed by extent.
//
// Parameters:
//   - r: the renderer creating the texture
//   - label: debug label for the slot and texture
//   - spec: the target description; its Extent is replaced by the key
//
// Returns:
//   - *resource.Slot[common.Extent, *RenderTarget]: the slot, reporting the texture size
func NewTargetSlot(r Renderer, label string, spec RenderTargetSpec) *resource.Slot[common.Extent, *RenderTarget] {
	s := resource.NewSlot(label, func(extent common.Extent) (*RenderTarget, error) {
		spec := spec
		spec.Extent = extent
		return r.CreateRenderTarget(label, spec)
	}, resource.WithLogger(r.Logger()))
	return resource.WithSize(s, func(extent common.Extent) uint64 {
		spec := spec
		spec.Extent = extent
		return spec.Bytes()
	})
}
