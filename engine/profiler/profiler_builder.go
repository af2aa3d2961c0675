package profiler

import (
	"time"

	"go.uber.org/zap"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithLogger sets the logger reports are written to.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithWindow sets the aggregation window. Non-positive values keep the 1 second default.
//
// Parameters:
//   - window: the wall-clock window
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithWindow(window time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if window > 0 {
			p.window = window
		}
	}
}

// WithLogging enables or disables the per-window report.
func WithLogging(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logging = enabled
	}
}
