package resource

import (
	"fmt"

	"go.uber.org/zap"
)

// Releaser is any GPU object that owns device memory and must be destroyed explicitly.
type Releaser interface {
	Release()
}

// State is the lifecycle state of a Slot.
type State uint8

const (
	// StateUninitialized means the slot holds nothing.
	StateUninitialized State = iota
	// StateValid means the slot holds an object created for its current key.
	StateValid
	// StateStale means the slot still holds an object that must be recreated before use.
	StateStale
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateStale:
		return "stale"
	default:
		return "uninitialized"
	}
}

// Node is the key-independent view of a slot used for dependency tracking. Only slots created
// by NewSlot implement it.
type Node interface {
	Label() string
	State() State
	Release()
	addDependent(Node)
}

// Slot caches one GPU resource keyed by K. Ensure is the only way to create the resource: it
// returns the cached object while the key matches and the slot is valid, and otherwise releases
// the old object exactly once and creates a new one.
type Slot[K comparable, R Releaser] struct {
	label      string
	create     func(K) (R, error)
	size       func(K) uint64
	logger     *zap.Logger
	state      State
	key        K
	value      R
	generation uint64
	dependents []Node
}

var _ Node = &Slot[int, Releaser]{}

// NewSlot creates a new, uninitialized Slot.
//
// Parameters:
//   - label: the name used in logs and errors
//   - create: the factory invoked by Ensure for a new key
//   - options: optional SlotOption values
//
// Returns:
//   - *Slot[K, R]: the new slot
func NewSlot[K comparable, R Releaser](label string, create func(K) (R, error), options ...SlotOption) *Slot[K, R] {
	if create == nil {
		panic("resource: NewSlot requires a create function")
	}
	cfg := slotConfig{logger: zap.NewNop()}
	for _, opt := range options {
		opt(&cfg)
	}
	s := &Slot[K, R]{
		label:  label,
		create: create,
		logger: cfg.logger,
	}
	if cfg.size != nil {
		s.size = func(k K) uint64 { return cfg.size(any(k)) }
	}
	return s
}

// WithSize attaches a byte-size function to the slot so a Tracker can sum it into the VRAM estimate.
func WithSize[K comparable, R Releaser](s *Slot[K, R], size func(K) uint64) *Slot[K, R] {
	s.size = size
	return s
}

// Label returns the slot's name.
func (s *Slot[K, R]) Label() string {
	return s.label
}

// State returns the slot's lifecycle state.
func (s *Slot[K, R]) State() State {
	return s.state
}

// Generation returns how many times the slot has created an object.
func (s *Slot[K, R]) Generation() uint64 {
	return s.generation
}

// Key returns the key of the held object and whether the slot is valid.
func (s *Slot[K, R]) Key() (K, bool) {
	return s.key, s.state == StateValid
}

// Ensure returns an object valid for key, creating it when needed.
//
// Parameters:
//   - key: the size or configuration the object must match
//
// Returns:
//   - R: the cached or freshly created object
//   - bool: true when a new object was created
//   - error: the factory's error; the slot is left uninitialized in that case
func (s *Slot[K, R]) Ensure(key K) (R, bool, error) {
	if s.state == StateValid && s.key == key {
		return s.value, false, nil
	}
	s.Release()

	v, err := s.create(key)
	if err != nil {
		var zero R
		return zero, false, fmt.Errorf("failed to create %s: %w", s.label, err)
	}
	s.value = v
	s.key = key
	s.state = StateValid
	s.generation++
	s.logger.Debug("resource created",
		zap.String("resource", s.label),
		zap.Any("key", key),
		zap.Uint64("generation", s.generation),
	)
	return v, true, nil
}

// Get returns the held object.
//
// Returns:
//   - R: the held object
//   - error: ErrNotInitialized unless the slot is valid
func (s *Slot[K, R]) Get() (R, error) {
	if s.state != StateValid {
		var zero R
		return zero, fmt.Errorf("%w: %s is %s", ErrNotInitialized, s.label, s.state)
	}
	return s.value, nil
}

// Invalidate marks a valid slot stale so the next Ensure recreates it even for the same key.
func (s *Slot[K, R]) Invalidate() {
	if s.state == StateValid {
		s.state = StateStale
	}
}

// Release destroys the held object, releases every dependent slot, and returns the slot to the
// uninitialized state. Releasing an uninitialized slot does nothing.
func (s *Slot[K, R]) Release() {
	if s.state == StateUninitialized {
		return
	}
	for _, d := range s.dependents {
		d.Release()
	}
	s.value.Release()
	var zero R
	s.value = zero
	s.state = StateUninitialized
}

// DependsOn registers s as a dependent of every parent: whenever a parent is recreated or
// released, s is released first.
func (s *Slot[K, R]) DependsOn(parents ...Node) *Slot[K, R] {
	for _, p := range parents {
		p.addDependent(s)
	}
	return s
}

// Bytes returns the byte size of the held object, or 0 when the slot is not valid or has no
// size function.
func (s *Slot[K, R]) Bytes() uint64 {
	if s.state == StateUninitialized || s.size == nil {
		return 0
	}
	return s.size(s.key)
}

func (s *Slot[K, R]) addDependent(n Node) {
	s.dependents = append(s.dependents, n)
}

// Require checks that every slot is valid.
//
// Returns:
//   - error: ErrMissingDependency naming the first slot that is not valid
func Require(slots ...Node) error {
	for _, s := range slots {
		if s.State() != StateValid {
			return fmt.Errorf("%w: %s is %s", ErrMissingDependency, s.Label(), s.State())
		}
	}
	return nil
}
