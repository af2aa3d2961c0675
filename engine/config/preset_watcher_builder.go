package config

import (
	"time"

	"go.uber.org/zap"
)

// PresetWatcherOption is a functional option for configuring a PresetWatcher.
type PresetWatcherOption func(w *PresetWatcher)

// WithLogger sets the watcher's logger.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - PresetWatcherOption: option function to apply
func WithLogger(logger *zap.Logger) PresetWatcherOption {
	return func(w *PresetWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets how long a file must be quiet before it is reloaded. Non-positive values
// keep the 200ms default.
func WithDebounce(d time.Duration) PresetWatcherOption {
	return func(w *PresetWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}
