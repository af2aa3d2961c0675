package postfx

import "go.uber.org/zap"

// ChainBuilderOption is a functional option for configuring a Chain.
type ChainBuilderOption func(c *chain)

// WithLogger sets the chain's logger.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - ChainBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) ChainBuilderOption {
	return func(c *chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}
