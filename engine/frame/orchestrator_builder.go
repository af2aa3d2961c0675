package frame

import (
	"github.com/Carmen-Shannon/oxy-galaxy/engine/camera"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/profiler"
	"go.uber.org/zap"
)

// OrchestratorBuilderOption is a functional option for configuring an Orchestrator.
type OrchestratorBuilderOption func(o *orchestrator)

// WithLogger sets the logger handed to every pass.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - OrchestratorBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCamera sets the camera the scene renders from. The default is camera.NewCamera().
func WithCamera(cam camera.Camera) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		o.cam = cam
	}
}

// WithProfiler sets the profiler that measures FPS and logs per-window reports. The default
// uses a 1 second window and the orchestrator's logger.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - OrchestratorBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		o.profiler = p
	}
}

// WithVisibleCountReadback enables or disables the asynchronous visible-count readback.
// Without it Stats reports a zero visible count.
func WithVisibleCountReadback(enabled bool) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		o.readback = enabled
	}
}
