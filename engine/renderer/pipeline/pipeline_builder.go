package pipeline

import (
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

func withStage(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		if s != nil {
			p.stages[s.ShaderType()] = s
		}
	}
}

// WithVertexShader attaches the vertex stage of a render pipeline.
func WithVertexShader(s shader.Shader) PipelineBuilderOption { return withStage(s) }

// WithFragmentShader attaches the fragment stage of a render pipeline.
func WithFragmentShader(s shader.Shader) PipelineBuilderOption { return withStage(s) }

// WithComputeShader attaches the stage of a compute pipeline.
func WithComputeShader(s shader.Shader) PipelineBuilderOption { return withStage(s) }

// WithTargetFormat sets the colour target format. Pipelines without it render into the
// surface format.
//
// Parameters:
//   - format: the colour attachment format
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithTargetFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.Format = format
	}
}

// WithSampleCount sets the multisample count of the colour target. Zero is treated as 1.
func WithSampleCount(count uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.SampleCount = max(count, 1)
	}
}

// WithAdditiveBlend makes every fragment add its colour to the target.
func WithAdditiveBlend() PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.Blend = AdditiveBlend
	}
}

// WithWriteMask sets which colour channels are written. ColorWriteMaskNone suits passes that
// only have side effects in storage buffers.
func WithWriteMask(mask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.WriteMask = mask
	}
}
