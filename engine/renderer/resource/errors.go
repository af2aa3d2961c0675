package resource

import "errors"

var (
	// ErrNotInitialized is returned when a slot is read before Ensure has produced a valid object.
	ErrNotInitialized = errors.New("resource not initialized")
	// ErrMissingDependency is returned when a resource is used before a resource it depends on exists.
	ErrMissingDependency = errors.New("missing resource dependency")
)
