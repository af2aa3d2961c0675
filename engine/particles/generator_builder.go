package particles

import "go.uber.org/zap"

// GeneratorBuilderOption is a functional option for configuring a Generator.
type GeneratorBuilderOption func(g *generator)

// WithLogger sets the generator's logger.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - GeneratorBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) GeneratorBuilderOption {
	return func(g *generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}
