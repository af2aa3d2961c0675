package resource

// Uniform remembers the last value written to a uniform buffer so identical writes can be skipped.
type Uniform[T comparable] struct {
	last  T
	valid bool
}

// Changed reports whether v differs from the last value and records it when it does.
// The first call after construction or Reset always reports true.
func (u *Uniform[T]) Changed(v T) bool {
	if u.valid && u.last == v {
		return false
	}
	u.last = v
	u.valid = true
	return true
}

// Reset forgets the last value, typically because the backing buffer was recreated.
func (u *Uniform[T]) Reset() {
	u.valid = false
}
