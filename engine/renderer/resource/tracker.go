package resource

// Sized is implemented by slots that report the byte size of their object.
type Sized interface {
	Label() string
	Bytes() uint64
}

// Tracker sums the sizes of a set of slots into a VRAM estimate.
type Tracker struct {
	slots []Sized
}

// NewTracker creates a Tracker over slots.
func NewTracker(slots ...Sized) *Tracker {
	return &Tracker{slots: slots}
}

// Track adds more slots to the tracker.
func (t *Tracker) Track(slots ...Sized) {
	t.slots = append(t.slots, slots...)
}

// Bytes returns the sum of every tracked slot's current size.
func (t *Tracker) Bytes() uint64 {
	var total uint64
	for _, s := range t.slots {
		total += s.Bytes()
	}
	return total
}

// Breakdown returns the current size per slot label.
func (t *Tracker) Breakdown() map[string]uint64 {
	out := make(map[string]uint64, len(t.slots))
	for _, s := range t.slots {
		out[s.Label()] += s.Bytes()
	}
	return out
}
