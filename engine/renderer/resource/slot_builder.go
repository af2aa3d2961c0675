package resource

import "go.uber.org/zap"

type slotConfig struct {
	logger *zap.Logger
	size   func(any) uint64
}

// SlotOption configures a Slot at construction.
type SlotOption func(*slotConfig)

// WithLogger sets the logger used to report resource recreation.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - SlotOption: the option
func WithLogger(logger *zap.Logger) SlotOption {
	return func(c *slotConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBytes sets a fixed byte size reported to a Tracker regardless of the key.
func WithBytes(n uint64) SlotOption {
	return func(c *slotConfig) {
		c.size = func(any) uint64 { return n }
	}
}
