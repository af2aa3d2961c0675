package temporal

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/camera"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

//go:embed assets/denoise.wgsl
var denoiseSource string

// PipelineKeyDenoise is the renderer cache key of the denoise pipeline.
const PipelineKeyDenoise = "temporal.denoise"

// Shaders returns a fresh copy of every shader the stabilizer uses.
func Shaders() []shader.Shader {
	return []shader.Shader{
		shader.NewFullscreenVertexShader(PipelineKeyDenoise + ".vs"),
		shader.NewShader(PipelineKeyDenoise+".fs", shader.ShaderTypeFragment, denoiseSource),
	}
}

// Stabilizer hides sampling noise with a reprojected spatio-temporal denoiser. Two history
// textures are used in turn: each frame writes one while reading the other as history.
type Stabilizer interface {
	renderer.TargetSource

	// Prepare ensures both history textures and bind groups match extent and writes the
	// denoise uniform for the given camera pose. A rotated camera or new textures re-arm the
	// reset window.
	//
	// Parameters:
	//   - params: the simulation parameters
	//   - extent: the canvas size
	//   - pose: the camera pose of this frame
	//
	// Returns:
	//   - error: a resource error
	Prepare(params *sim.Params, extent common.Extent, pose camera.Pose) error

	// Record records the denoise pass into the open frame.
	Record() error

	// Complete swaps the history textures and consumes a reset frame when the frame was submitted.
	Complete(submitted bool)

	// RequestReset forces the current frame for the configured number of frames.
	//
	// Parameters:
	//   - reason: a short description for logging
	RequestReset(reason string)

	// ResetRemaining returns the number of forced frames left.
	ResetRemaining() uint32

	// Params returns the uniform written by the last Prepare.
	Params() GPUDenoiseParams

	// Sized returns the slots counted in the VRAM estimate.
	Sized() []resource.Sized

	// Release destroys the history textures, the uniform and the bind groups.
	Release()
}

// stabilizer is the implementation of the Stabilizer interface.
type stabilizer struct {
	renderer renderer.Renderer
	source   renderer.TargetSource
	logger   *zap.Logger
	pipeline pipeline.Pipeline

	history    [2]*resource.Slot[common.Extent, *renderer.RenderTarget]
	bindGroups [2]*resource.Slot[common.Extent, bind_group_provider.BindGroupProvider]
	params     *resource.Slot[uint64, *wgpu.Buffer]
	uniform    resource.Uniform[GPUDenoiseParams]

	window   *ResetWindow
	write    int
	prevPose camera.Pose
	hasPrev  bool
	pose     camera.Pose
	last     GPUDenoiseParams
}

var _ Stabilizer = &stabilizer{}

// NewStabilizer creates a Stabilizer filtering the output of source and registers its pipeline.
// Panics if r or source is nil.
//
// Parameters:
//   - r: the renderer
//   - source: the pass producing the raw frame
//   - options: optional StabilizerBuilderOption values
//
// Returns:
//   - Stabilizer: the new stabilizer
//   - error: an error if the pipeline could not be created
func NewStabilizer(r renderer.Renderer, source renderer.TargetSource, options ...StabilizerBuilderOption) (Stabilizer, error) {
	if r == nil || source == nil {
		panic("temporal: NewStabilizer requires a renderer and a source")
	}
	s := &stabilizer{
		renderer: r,
		source:   source,
		logger:   zap.NewNop(),
		window:   NewResetWindow(sim.DefaultParams().DenoiseResetFrames),
	}
	for _, opt := range options {
		opt(s)
	}

	shaders := Shaders()
	if err := r.RegisterPipelines(pipeline.NewPipeline(PipelineKeyDenoise, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(shaders[0]),
		pipeline.WithFragmentShader(shaders[1]),
		pipeline.WithTargetFormat(renderer.HDRFormat),
	)); err != nil {
		return nil, err
	}
	s.pipeline = r.Pipeline(PipelineKeyDenoise)

	s.history[0] = renderer.NewTargetSlot(r, "Denoise History A", renderer.RenderTargetSpec{})
	s.history[1] = renderer.NewTargetSlot(r, "Denoise History B", renderer.RenderTargetSpec{})
	s.params = renderer.NewBufferSlot(r, "Denoise Params", wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)

	parents := append([]resource.Node{s.history[0], s.history[1], s.params}, source.OutputSlots()...)
	for k := range s.bindGroups {
		s.bindGroups[k] = resource.NewSlot("Denoise Bind Group", func(common.Extent) (bind_group_provider.BindGroupProvider, error) {
			return s.createBindGroup(k)
		}, resource.WithLogger(s.logger)).DependsOn(parents...)
	}
	s.window.Request("startup")
	return s, nil
}

// createBindGroup builds the group that writes history[k] and reads history[1-k].
func (s *stabilizer) createBindGroup(k int) (bind_group_provider.BindGroupProvider, error) {
	src, _, err := s.source.Output()
	if err != nil {
		return nil, err
	}
	prev, err := s.history[1-k].Get()
	if err != nil {
		return nil, err
	}
	params, err := s.params.Get()
	if err != nil {
		return nil, err
	}
	return renderer.CreateBindGroup(s.renderer, renderer.BindGroupSpec{
		Label:    "Denoise",
		Pipeline: s.pipeline,
		Group:    0,
		Buffers:  map[shader.AnnotationArg]*wgpu.Buffer{shader.AnnotationArgPassParams: params},
		Views: map[shader.AnnotationArg]*wgpu.TextureView{
			shader.AnnotationArgSourceTexture:  src.View,
			shader.AnnotationArgHistoryTexture: prev.View,
		},
		Samplers: map[shader.AnnotationArg]common.SamplerStagingData{
			shader.AnnotationArgLinearSampler: common.LinearClampSampler,
		},
	})
}

func (s *stabilizer) Prepare(params *sim.Params, extent common.Extent, pose camera.Pose) error {
	if err := resource.Require(s.source.OutputSlots()...); err != nil {
		return err
	}
	s.window.SetFrames(params.DenoiseResetFrames)

	for _, h := range s.history {
		if _, created, err := h.Ensure(extent); err != nil {
			return err
		} else if created {
			s.RequestReset("resize")
		}
	}

	reprojection := Identity
	if s.hasPrev {
		if !s.prevPose.SameOrientation(pose) {
			s.RequestReset("camera rotation")
		} else {
			reprojection = NewReprojection(s.prevPose, pose)
		}
	}
	s.pose = pose

	data := NewGPUDenoiseParams(params, extent, reprojection, s.window.Active())
	buf, created, err := s.params.Ensure(uint64(data.Size()))
	if err != nil {
		return err
	}
	if created {
		s.uniform.Reset()
	}
	if s.uniform.Changed(data) {
		s.renderer.WriteBuffer(buf, 0, data.Marshal())
	}
	s.last = data

	for _, bg := range s.bindGroups {
		if _, _, err := bg.Ensure(extent); err != nil {
			return err
		}
	}
	return nil
}

func (s *stabilizer) Record() error {
	out, err := s.history[s.write].Get()
	if err != nil {
		return err
	}
	bg, err := s.bindGroups[s.write].Get()
	if err != nil {
		return err
	}
	if err := s.renderer.BeginRenderPass("Denoise", renderer.ColorAttachment{View: out.View}); err != nil {
		return err
	}
	defer s.renderer.EndRenderPass()
	return s.renderer.Draw(PipelineKeyDenoise, []bind_group_provider.BindGroupProvider{bg}, shader.FullscreenVertexCount, 1)
}

func (s *stabilizer) Complete(submitted bool) {
	if !submitted {
		return
	}
	s.window.Advance()
	s.write = 1 - s.write
	s.prevPose = s.pose
	s.hasPrev = true
}

func (s *stabilizer) RequestReset(reason string) {
	if !s.window.Active() {
		s.logger.Debug("temporal reset", zap.String("reason", reason), zap.Uint32("frames", s.window.Frames()))
	}
	s.window.Request(reason)
}

func (s *stabilizer) ResetRemaining() uint32 {
	return s.window.Remaining()
}

func (s *stabilizer) Params() GPUDenoiseParams {
	return s.last
}

func (s *stabilizer) Output() (*renderer.RenderTarget, int, error) {
	out, err := s.history[s.write].Get()
	return out, s.write, err
}

func (s *stabilizer) OutputSlots() []resource.Node {
	return []resource.Node{s.history[0], s.history[1]}
}

func (s *stabilizer) Sized() []resource.Sized {
	return []resource.Sized{s.history[0], s.history[1], s.params}
}

func (s *stabilizer) Release() {
	for k := range s.bindGroups {
		s.bindGroups[k].Release()
	}
	s.history[0].Release()
	s.history[1].Release()
	s.params.Release()
	s.uniform.Reset()
	s.hasPrev = false
}
