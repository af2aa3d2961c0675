package frame

import (
	"time"

	"go.uber.org/zap"
)

// errorLimiter logs each distinct error message at most once per interval.
type errorLimiter struct {
	interval time.Duration
	last     map[string]time.Time
}

func newErrorLimiter(interval time.Duration) *errorLimiter {
	return &errorLimiter{interval: interval, last: make(map[string]time.Time)}
}

// allow reports whether msg may be logged at now and records it when it may.
func (l *errorLimiter) allow(msg string, now time.Time) bool {
	if t, ok := l.last[msg]; ok && now.Sub(t) < l.interval {
		return false
	}
	l.last[msg] = now
	// Drop stale entries once the map grows.
	if len(l.last) > 64 {
		for k, t := range l.last {
			if now.Sub(t) >= l.interval {
				delete(l.last, k)
			}
		}
	}
	return true
}

func (l *errorLimiter) warn(logger *zap.Logger, now time.Time, err error) {
	if l.allow(err.Error(), now) {
		logger.Warn("frame failed", zap.Error(err))
	}
}
