package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption configures a BindGroupProvider at construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBuffer binds a borrowed buffer.
//
// Parameters:
//   - binding: the binding index
//   - buf: the buffer
//
// Returns:
//   - BindGroupProviderOption: the option
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) { p.SetBuffer(binding, buf) }
}

// WithTextureView binds a borrowed texture view.
func WithTextureView(binding int, tv *wgpu.TextureView) BindGroupProviderOption {
	return func(p *bindGroupProvider) { p.SetTextureView(binding, tv) }
}
