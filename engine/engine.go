package engine

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/camera"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/frame"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/profiler"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/window"
	"go.uber.org/zap"
)

// engine implements the Engine interface.
// Everything runs on the host thread inside the window's update callback.
type engine struct {
	window       window.Window
	orchestrator frame.Orchestrator
	controller   camera.CameraController
	limiter      *profiler.FrameLimiter
	logger       *zap.Logger

	presets chan sim.Preset

	quitChannel chan struct{}
	quitOnce    sync.Once

	keyCallback   func(key uint32)
	frameCallback func(rendered bool, err error)

	lastUpdate time.Time
}

// Engine is the main entry point for the viewer.
// It drives the frame orchestrator from the window's message loop.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Orchestrator returns the frame orchestrator the engine drives.
	//
	// Returns:
	//   - frame.Orchestrator: the orchestrator
	Orchestrator() frame.Orchestrator

	// SetFrameLimit caps the render rate in frames per second.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// SetKeyCallback registers a function called for every key press before the camera
	// controller sees it.
	//
	// Parameters:
	//   - callback: receives the key code on the host thread
	SetKeyCallback(callback func(key uint32))

	// SetFrameCallback registers a function called after every frame the limiter lets through.
	//
	// Parameters:
	//   - callback: receives RenderFrame's results on the host thread
	SetFrameCallback(callback func(rendered bool, err error))

	// SubmitPreset queues a preset to be selected at the start of the next frame.
	// Safe to call from any goroutine. Returns false if the queue is full.
	//
	// Parameters:
	//   - p: the preset
	//
	// Returns:
	//   - bool: true if the preset was queued
	SubmitPreset(p sim.Preset) bool

	// ForwardPresets submits every preset received on ch until ch is closed or the engine quits.
	//
	// Parameters:
	//   - ch: a channel of preset requests, typically a preset watcher's
	ForwardPresets(ch <-chan sim.Preset)

	// Run processes window messages and renders frames until the window closes (blocks).
	Run()

	// Quit stops the loop at the next iteration.
	// Safe to call from any goroutine and more than once.
	Quit()
}

// NewEngine creates an Engine. Panics if no window or orchestrator option is given.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		limiter:     profiler.NewFrameLimiter(0),
		logger:      zap.NewNop(),
		presets:     make(chan sim.Preset, 8),
		quitChannel: make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.window == nil || e.orchestrator == nil {
		panic("engine: NewEngine requires a window and an orchestrator")
	}
	if e.controller == nil {
		e.controller = camera.NewCameraController(e.orchestrator.Camera())
	}

	e.window.SetResizeCallback(func(width, height int) {
		e.orchestrator.Resize(width, height)
	})
	e.window.SetKeyDownCallback(func(key uint32) {
		if e.keyCallback != nil {
			e.keyCallback(key)
		}
		e.controller.KeyDown(key)
	})
	e.window.SetKeyUpCallback(e.controller.KeyUp)
	e.window.SetScrollCallback(e.controller.Scroll)
	e.window.SetDragCallback(e.controller.Drag)
	e.window.SetUpdateCallback(e.frame)
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Orchestrator() frame.Orchestrator {
	return e.orchestrator
}

func (e *engine) SetFrameLimit(fps float64) {
	e.limiter.SetFPS(fps)
}

func (e *engine) SetKeyCallback(callback func(key uint32)) {
	e.keyCallback = callback
}

func (e *engine) SetFrameCallback(callback func(rendered bool, err error)) {
	e.frameCallback = callback
}

func (e *engine) SubmitPreset(p sim.Preset) bool {
	select {
	case e.presets <- p:
		return true
	default:
		e.logger.Warn("preset queue full, request dropped", zap.String("preset", p.Name))
		return false
	}
}

func (e *engine) ForwardPresets(ch <-chan sim.Preset) {
	go func() {
		for {
			select {
			case <-e.quitChannel:
				return
			case p, ok := <-ch:
				if !ok {
					return
				}
				e.SubmitPreset(p)
			}
		}
	}()
}

func (e *engine) Run() {
	e.lastUpdate = time.Now()
	e.window.ProcessMessages()
}

// Quit signals the loop to close the window.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// frame runs once per message loop iteration: camera input every iteration, rendering only
// when the frame limiter allows.
func (e *engine) frame() {
	select {
	case <-e.quitChannel:
		if err := e.window.Close(); err != nil {
			e.logger.Warn("failed to close window", zap.Error(err))
		}
		return
	default:
	}

	now := time.Now()
	dt := now.Sub(e.lastUpdate)
	e.lastUpdate = now
	e.controller.Update(float32(dt.Seconds()))

	e.drainPresets()
	if !e.limiter.Ready(now) {
		return
	}
	rendered, err := e.orchestrator.RenderFrame(now)
	if e.frameCallback != nil {
		e.frameCallback(rendered, err)
	}
}

// drainPresets applies queued presets in order; only the last one is visible on screen.
func (e *engine) drainPresets() {
	for {
		select {
		case p := <-e.presets:
			e.orchestrator.SelectPreset(p)
		default:
			return
		}
	}
}
