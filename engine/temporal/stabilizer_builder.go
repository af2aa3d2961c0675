package temporal

import "go.uber.org/zap"

// StabilizerBuilderOption is a functional option for configuring a Stabilizer.
type StabilizerBuilderOption func(s *stabilizer)

// WithLogger sets the stabilizer's logger.
//
// Parameters:
//   - logger: the logger; nil keeps the no-op default
//
// Returns:
//   - StabilizerBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) StabilizerBuilderOption {
	return func(s *stabilizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithResetFrames sets the initial reset window length. Prepare replaces it with the
// denoise_reset_frames parameter.
//
// Parameters:
//   - frames: forced frames per reset, at least one
//
// Returns:
//   - StabilizerBuilderOption: option function to apply
func WithResetFrames(frames uint32) StabilizerBuilderOption {
	return func(s *stabilizer) {
		s.window.SetFrames(frames)
	}
}
