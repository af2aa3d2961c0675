package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/camera"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/culling"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/particles"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/postfx"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/profiler"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/scene"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/stars"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/temporal"
	"go.uber.org/zap"
)

// ErrSkipped reports a frame that was not ready to render. RenderFrame turns it into (false, nil).
var ErrSkipped = errors.New("frame skipped")

// Pass group names, in recording order. They label GPU timings and metrics.
const (
	PassGenerate = "generate"
	PassCull     = "cull"
	PassStars    = "stars"
	PassDenoise  = "denoise"
	PassBloom    = "bloom"
	PassToneMap  = "tonemap"
)

// PassGroups lists every timed pass group in recording order.
var PassGroups = []string{PassGenerate, PassCull, PassStars, PassDenoise, PassBloom, PassToneMap}

// Orchestrator owns every GPU pass and records one frame per RenderFrame call into a single
// command encoder with one submission.
type Orchestrator interface {
	// RenderFrame renders one frame.
	//
	// Parameters:
	//   - now: the frame's wall-clock time; it advances simulated time unless paused
	//
	// Returns:
	//   - bool: true if a frame was submitted and presented
	//   - error: a hard failure; only this frame is dropped
	RenderFrame(now time.Time) (bool, error)

	// Resize reconfigures the surface. Canvas-sized resources follow on the next frame.
	Resize(width, height int)

	// Apply queues parameter changes. They are applied at the start of the next frame.
	Apply(changes sim.ChangeSet)

	// SelectPreset replaces the simulation state with the preset and resets temporal history.
	SelectPreset(p sim.Preset)

	// RequestReset forces the temporal stabilizer to show only the current frame for the
	// configured number of frames.
	RequestReset(reason string)

	// SetPaused freezes or resumes simulated time.
	SetPaused(paused bool)

	// Paused reports whether simulated time is frozen.
	Paused() bool

	// State returns the simulation state. Callers mutate it through sim's update functions and
	// report the result with Apply.
	State() *sim.State

	// Camera returns the camera the scene renders from.
	Camera() camera.Camera

	// Stats returns a snapshot of the last frame.
	Stats() Stats

	// Release destroys every GPU resource in dependency order.
	Release()
}

// orchestrator is the implementation of the Orchestrator interface.
type orchestrator struct {
	renderer renderer.Renderer
	state    *sim.State
	logger   *zap.Logger
	profiler *profiler.Profiler
	cam      camera.Camera

	scene      scene.Scene
	generator  particles.Generator
	culler     culling.Culler
	rasterizer stars.Rasterizer
	stabilizer temporal.Stabilizer
	chain      postfx.Chain
	timer      *renderer.GPUTimer
	tracker    *resource.Tracker

	readback bool
	pending  sim.ChangeSet
	paused   bool
	lastNow  time.Time
	errors   *errorLimiter
	stats    Stats
}

var _ Orchestrator = &orchestrator{}

// NewOrchestrator builds every pass of the pipeline on r. Panics if r or state is nil.
//
// Parameters:
//   - r: the renderer
//   - state: the simulation state driving the frame
//   - options: optional OrchestratorBuilderOption values
//
// Returns:
//   - Orchestrator: the orchestrator
//   - error: an error if a pipeline or the GPU timer could not be created
func NewOrchestrator(r renderer.Renderer, state *sim.State, options ...OrchestratorBuilderOption) (Orchestrator, error) {
	if r == nil || state == nil {
		panic("frame: NewOrchestrator requires a renderer and a state")
	}
	o := &orchestrator{
		renderer: r,
		state:    state,
		logger:   zap.NewNop(),
		readback: true,
		errors:   newErrorLimiter(time.Second),
	}
	for _, opt := range options {
		opt(o)
	}
	if o.profiler == nil {
		o.profiler = profiler.NewProfiler(profiler.WithLogger(o.logger))
	}
	if o.cam == nil {
		o.cam = camera.NewCamera()
	}

	var err error
	o.scene = scene.NewScene(r, scene.WithCamera(o.cam), scene.WithLogger(o.logger))
	if o.generator, err = particles.NewGenerator(r, o.scene, particles.WithLogger(o.logger)); err != nil {
		return nil, fmt.Errorf("particles: %w", err)
	}
	if o.culler, err = culling.NewCuller(r, o.scene, o.generator,
		culling.WithLogger(o.logger),
		culling.WithVisibleCountReadback(o.readback),
	); err != nil {
		return nil, fmt.Errorf("culling: %w", err)
	}
	if o.rasterizer, err = stars.NewRasterizer(r, o.scene, o.generator, o.culler, stars.WithLogger(o.logger)); err != nil {
		return nil, fmt.Errorf("stars: %w", err)
	}
	if o.stabilizer, err = temporal.NewStabilizer(r, o.rasterizer,
		temporal.WithLogger(o.logger),
		temporal.WithResetFrames(state.Params.DenoiseResetFrames),
	); err != nil {
		return nil, fmt.Errorf("temporal: %w", err)
	}
	if o.chain, err = postfx.NewChain(r, o.stabilizer, postfx.WithLogger(o.logger)); err != nil {
		return nil, fmt.Errorf("postfx: %w", err)
	}
	if o.timer, err = renderer.NewGPUTimer(r, PassGroups...); err != nil {
		return nil, err
	}
	if o.timer == nil {
		o.logger.Warn("timestamp queries unsupported, GPU pass times disabled")
	}

	o.tracker = resource.NewTracker(o.scene.Sized()...)
	o.tracker.Track(o.generator.Sized()...)
	o.tracker.Track(o.culler.Sized()...)
	o.tracker.Track(o.rasterizer.Sized()...)
	o.tracker.Track(o.stabilizer.Sized()...)
	o.tracker.Track(o.chain.Sized()...)

	o.pending = sim.ChangeAll
	return o, nil
}

func (o *orchestrator) RenderFrame(now time.Time) (bool, error) {
	start := time.Now()
	o.renderer.Poll()
	o.advanceTime(now)
	o.applyPending()

	err := o.render()
	o.stats.FrameTime = time.Since(start)

	switch {
	case errors.Is(err, ErrSkipped):
		o.stats.Skipped++
		o.refreshStats()
		return false, nil
	case err != nil:
		o.stats.Failed++
		o.errors.warn(o.logger, now, err)
		o.refreshStats()
		return false, err
	}

	o.stats.Frames++
	o.refreshStats()
	o.profiler.Tick(now, profiler.Sample{
		FrameTime:    o.stats.FrameTime,
		PassTimes:    o.stats.PassTimes,
		VRAMBytes:    o.stats.VRAMBytes,
		VisibleCount: o.stats.VisibleCount,
	})
	o.stats.FPS = o.profiler.FPS()
	return true, nil
}

func (o *orchestrator) advanceTime(now time.Time) {
	if !o.lastNow.IsZero() && !o.paused {
		o.state.Advance(now.Sub(o.lastNow).Seconds())
	}
	o.lastNow = now
}

func (o *orchestrator) applyPending() {
	changes := o.pending
	o.pending = 0
	if changes.Empty() {
		return
	}
	plan := planChanges(changes)
	if plan.regenerate {
		o.generator.MarkDirty()
	}
	if plan.reset {
		o.stabilizer.RequestReset(changes.String())
	}
	o.logger.Debug("parameter changes applied",
		zap.Stringer("changes", changes),
		zap.Bool("regenerate", plan.regenerate),
		zap.Bool("reset", plan.reset),
	)
}

// prepare ensures every cached resource and writes the frame's uniforms.
func (o *orchestrator) prepare(params *sim.Params, extent common.Extent) error {
	pose, err := o.scene.Prepare(params, float32(o.state.Time), extent)
	if err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	if err := o.generator.Prepare(params); err != nil {
		if errors.Is(err, particles.ErrEmpty) {
			return ErrSkipped
		}
		return fmt.Errorf("particles: %w", err)
	}
	if err := o.culler.Prepare(); err != nil {
		return fmt.Errorf("culling: %w", err)
	}
	if err := o.rasterizer.Prepare(params, extent); err != nil {
		return fmt.Errorf("stars: %w", err)
	}
	if err := o.stabilizer.Prepare(params, extent, pose); err != nil {
		return fmt.Errorf("temporal: %w", err)
	}
	if err := o.chain.Prepare(params, extent); err != nil {
		return fmt.Errorf("postfx: %w", err)
	}
	return nil
}

// record records every pass group with a timestamp before each group and after the last.
func (o *orchestrator) record(params *sim.Params) error {
	mark := 0
	next := func() {
		o.timer.Mark(o.renderer, mark)
		mark++
	}

	next()
	if _, err := o.generator.Record(); err != nil {
		return err
	}
	next()
	if err := o.culler.Record(); err != nil {
		return fmt.Errorf("culling: %w", err)
	}
	next()
	if err := o.rasterizer.Record(params); err != nil {
		return fmt.Errorf("stars: %w", err)
	}
	next()
	if err := o.stabilizer.Record(); err != nil {
		return fmt.Errorf("temporal: %w", err)
	}
	next()
	if err := o.chain.RecordBloom(); err != nil {
		return fmt.Errorf("bloom: %w", err)
	}
	next()
	if err := o.chain.RecordToneMap(); err != nil {
		return fmt.Errorf("tonemap: %w", err)
	}
	next()
	o.timer.Resolve(o.renderer)
	return nil
}

func (o *orchestrator) render() error {
	extent := o.renderer.Extent()
	if extent.Empty() {
		return ErrSkipped
	}
	params := &o.state.Params
	if err := o.prepare(params, extent); err != nil {
		return err
	}

	if err := o.renderer.BeginFrame(); err != nil {
		return err
	}
	if err := o.record(params); err != nil {
		o.renderer.AbortFrame()
		o.complete(false)
		return err
	}
	if err := o.renderer.EndFrame(); err != nil {
		o.renderer.AbortFrame()
		o.complete(false)
		return err
	}
	o.renderer.Present()
	o.complete(true)
	return nil
}

// complete settles per-frame state. Readback maps begin only after submission.
func (o *orchestrator) complete(submitted bool) {
	o.generator.Complete(submitted)
	o.culler.Complete(submitted)
	o.stabilizer.Complete(submitted)
	if submitted {
		o.timer.Map()
	} else {
		o.timer.Cancel()
	}
}

func (o *orchestrator) refreshStats() {
	o.stats.PassTimes = o.timer.Durations()
	o.stats.VRAMBytes = o.tracker.Bytes()
	o.stats.VRAM = o.tracker.Breakdown()
	o.stats.VisibleCount = o.culler.VisibleCount()
	o.stats.TotalParticles = o.generator.Count()
	o.stats.Denoise = o.stabilizer.Params()
	o.stats.ResetFramesRemaining = o.stabilizer.ResetRemaining()
}

func (o *orchestrator) Resize(width, height int) {
	o.renderer.Resize(width, height)
}

func (o *orchestrator) Apply(changes sim.ChangeSet) {
	o.pending = o.pending.Union(changes)
}

func (o *orchestrator) SelectPreset(p sim.Preset) {
	changes := o.state.ApplyPreset(p)
	o.Apply(changes)
	o.RequestReset("preset " + p.Name)
	o.logger.Info("preset selected", zap.String("preset", p.Name), zap.Stringer("changes", changes))
}

func (o *orchestrator) RequestReset(reason string) {
	o.stabilizer.RequestReset(reason)
}

func (o *orchestrator) SetPaused(paused bool) {
	o.paused = paused
}

func (o *orchestrator) Paused() bool {
	return o.paused
}

func (o *orchestrator) State() *sim.State {
	return o.state
}

func (o *orchestrator) Camera() camera.Camera {
	return o.scene.Camera()
}

func (o *orchestrator) Stats() Stats {
	return o.stats.clone()
}

// Release destroys consumers before the resources they read.
func (o *orchestrator) Release() {
	o.chain.Release()
	o.stabilizer.Release()
	o.rasterizer.Release()
	o.culler.Release()
	o.generator.Release()
	o.scene.Release()
	o.timer.Release()
}
