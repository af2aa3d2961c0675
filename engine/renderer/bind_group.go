package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// BindGroupSpec names the resources of one bind group by annotation key instead of binding
// index. Every binding of the group that is not listed is created by InitBindGroup and owned
// by the resulting provider, which is how pass-local uniforms come into existence.
type BindGroupSpec struct {
	Label    string
	Pipeline pipeline.Pipeline
	Group    int
	Buffers  map[shader.AnnotationArg]*wgpu.Buffer
	Views    map[shader.AnnotationArg]*wgpu.TextureView
	Samplers map[shader.AnnotationArg]common.SamplerStagingData
	Sizes    map[shader.AnnotationArg]uint64
}

// resolve maps an annotation key to its binding index inside the spec's group.
func (s BindGroupSpec) resolve(key shader.AnnotationArg) (int, error) {
	group, binding, ok := s.Pipeline.Binding(key)
	if !ok {
		return 0, fmt.Errorf("%s: pipeline %q declares no %q binding", s.Label, s.Pipeline.PipelineKey(), key)
	}
	if group != s.Group {
		return 0, fmt.Errorf("%s: %q is in group %d, not %d", s.Label, key, group, s.Group)
	}
	return binding, nil
}

// CreateBindGroup builds a provider from spec and creates its GPU bind group.
//
// Parameters:
//   - r: the renderer
//   - spec: the resources keyed by annotation
//
// Returns:
//   - bind_group_provider.BindGroupProvider: the initialised provider
//   - error: an error if a key is unknown or GPU creation fails; the partial provider is released
func CreateBindGroup(r Renderer, spec BindGroupSpec) (bind_group_provider.BindGroupProvider, error) {
	provider := bind_group_provider.NewBindGroupProvider(spec.Label)

	fail := func(err error) (bind_group_provider.BindGroupProvider, error) {
		provider.Release()
		return nil, err
	}

	for key, buf := range spec.Buffers {
		binding, err := spec.resolve(key)
		if err != nil {
			return fail(err)
		}
		if buf == nil {
			return fail(fmt.Errorf("%s: buffer %q is nil", spec.Label, key))
		}
		provider.SetBuffer(binding, buf)
	}
	for key, view := range spec.Views {
		binding, err := spec.resolve(key)
		if err != nil {
			return fail(err)
		}
		if view == nil {
			return fail(fmt.Errorf("%s: texture view %q is nil", spec.Label, key))
		}
		provider.SetTextureView(binding, view)
	}
	for key, data := range spec.Samplers {
		binding, err := spec.resolve(key)
		if err != nil {
			return fail(err)
		}
		if err := r.InitSampler(provider, binding, data); err != nil {
			return fail(err)
		}
	}

	var sizes map[int]uint64
	for key, size := range spec.Sizes {
		binding, err := spec.resolve(key)
		if err != nil {
			return fail(err)
		}
		if sizes == nil {
			sizes = make(map[int]uint64, len(spec.Sizes))
		}
		sizes[binding] = size
	}

	if err := r.InitBindGroup(provider, spec.Pipeline.BindGroupLayoutDescriptor(spec.Group), nil, sizes); err != nil {
		return fail(fmt.Errorf("%s: %w", spec.Label, err))
	}
	return provider, nil
}
