package renderer

import "github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/resource"

// TargetSource is a pass whose output texture is sampled by a later pass.
type TargetSource interface {
	// Output returns the target written this frame.
	//
	// Returns:
	//   - *RenderTarget: the target
	//   - int: which of OutputSlots holds it
	//   - error: ErrNotInitialized if the pass has not prepared its targets
	Output() (*RenderTarget, int, error)

	// OutputSlots returns the cache nodes of every target Output may return. Consumers register
	// their bind groups as dependents so they are released with the texture.
	OutputSlots() []resource.Node
}
