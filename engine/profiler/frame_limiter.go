package profiler

import "time"

// FrameLimiter gates rendering to a maximum frame rate. A zero rate is uncapped.
type FrameLimiter struct {
	interval time.Duration
	last     time.Time
}

// NewFrameLimiter creates a limiter for fps frames per second.
//
// Parameters:
//   - fps: the maximum rate; values <= 0 are uncapped
//
// Returns:
//   - *FrameLimiter: the limiter
func NewFrameLimiter(fps float64) *FrameLimiter {
	l := &FrameLimiter{}
	l.SetFPS(fps)
	return l
}

// SetFPS changes the maximum rate. Values <= 0 remove the cap.
func (l *FrameLimiter) SetFPS(fps float64) {
	if fps <= 0 {
		l.interval = 0
		return
	}
	l.interval = time.Duration(float64(time.Second) / fps)
}

// Interval returns the minimum time between frames, 0 when uncapped.
func (l *FrameLimiter) Interval() time.Duration {
	return l.interval
}

// Ready reports whether a frame may be rendered at now. A true result marks now as the time
// of the last rendered frame.
//
// Parameters:
//   - now: the current wall-clock time
//
// Returns:
//   - bool: true when at least one interval has elapsed since the last accepted frame
func (l *FrameLimiter) Ready(now time.Time) bool {
	if l.interval > 0 && !l.last.IsZero() && now.Sub(l.last) < l.interval {
		return false
	}
	l.last = now
	return true
}
