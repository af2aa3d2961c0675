package temporal

// ResetWindow counts the frames that must ignore history. Any request re-arms the full window.
type ResetWindow struct {
	frames    uint32
	remaining uint32
	reason    string
}

// NewResetWindow creates a disarmed window lasting frames frames once requested. A window is
// never shorter than one frame, since the first frame after a reset has no usable history.
func NewResetWindow(frames uint32) *ResetWindow {
	return &ResetWindow{frames: max(frames, 1)}
}

// SetFrames changes the window length for future requests.
func (w *ResetWindow) SetFrames(frames uint32) {
	w.frames = max(frames, 1)
}

// Frames returns the window length.
func (w *ResetWindow) Frames() uint32 {
	return w.frames
}

// Request re-arms the window.
//
// Parameters:
//   - reason: a short description kept for logging, e.g. "resize"
func (w *ResetWindow) Request(reason string) {
	w.remaining = w.frames
	w.reason = reason
}

// Active reports whether the next frame ignores history.
func (w *ResetWindow) Active() bool {
	return w.remaining > 0
}

// Advance consumes one frame.
//
// Returns:
//   - bool: true if the consumed frame was forced to the current frame
func (w *ResetWindow) Advance() bool {
	if w.remaining == 0 {
		return false
	}
	w.remaining--
	return true
}

// Remaining returns how many forced frames are left.
func (w *ResetWindow) Remaining() uint32 {
	return w.remaining
}

// Reason returns the reason given to the latest Request.
func (w *ResetWindow) Reason() string {
	return w.reason
}
