package culling

import "go.uber.org/zap"

// CullerBuilderOption is a functional option for configuring a Culler.
type CullerBuilderOption func(c *culler)

// WithLogger sets the culler's logger.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - CullerBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) CullerBuilderOption {
	return func(c *culler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithVisibleCountReadback enables or disables the best-effort visible count readback.
// It is enabled by default.
//
// Parameters:
//   - enabled: whether to read the counter back
//
// Returns:
//   - CullerBuilderOption: option function to apply
func WithVisibleCountReadback(enabled bool) CullerBuilderOption {
	return func(c *culler) {
		c.readbackEnable = enabled
	}
}
