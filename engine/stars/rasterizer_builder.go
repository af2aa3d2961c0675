package stars

import "go.uber.org/zap"

// RasterizerBuilderOption is a functional option for configuring a Rasterizer.
type RasterizerBuilderOption func(rs *rasterizer)

// WithLogger sets the rasterizer's logger.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - RasterizerBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) RasterizerBuilderOption {
	return func(rs *rasterizer) {
		if logger != nil {
			rs.logger = logger
		}
	}
}
