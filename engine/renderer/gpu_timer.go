package renderer

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUTimer measures named groups of passes with timestamp queries. Timestamp i is written
// before group i and the last one after the final group, so n groups use n+1 queries.
type GPUTimer struct {
	labels   []string
	count    uint32
	querySet *wgpu.QuerySet
	resolve  *wgpu.Buffer
	readback *Readback

	mu   sync.Mutex
	last map[string]time.Duration
}

// NewGPUTimer creates a timer for the given pass groups.
// It returns nil without error when the device has no timestamp support.
//
// Parameters:
//   - r: the renderer owning the device
//   - labels: one name per pass group, in recording order
//
// Returns:
//   - *GPUTimer: the timer, or nil when timestamps are unsupported
//   - error: an error if a GPU object could not be created
func NewGPUTimer(r Renderer, labels ...string) (*GPUTimer, error) {
	if !r.SupportsTimestamps() || len(labels) == 0 {
		return nil, nil
	}
	t := &GPUTimer{
		labels: labels,
		count:  uint32(len(labels) + 1),
	}
	size := uint64(t.count) * 8

	var err error
	if t.querySet, err = r.CreateQuerySet("Pass Timestamps", t.count); err != nil {
		return nil, fmt.Errorf("failed to create timestamp query set: %w", err)
	}
	if t.resolve, err = r.CreateBuffer("Pass Timestamps Resolve", size, wgpu.BufferUsageQueryResolve|wgpu.BufferUsageCopySrc); err != nil {
		t.Release()
		return nil, fmt.Errorf("failed to create timestamp resolve buffer: %w", err)
	}
	if t.readback, err = NewReadback(r, "Pass Timestamps", size, t.store); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// Mark records timestamp index into the open frame. Nil timers ignore the call.
func (t *GPUTimer) Mark(r Renderer, index int) {
	if t == nil || index < 0 || uint32(index) >= t.count {
		return
	}
	r.WriteTimestamp(t.querySet, uint32(index))
}

// Resolve records the query resolution and, when the staging buffer is idle, its readback copy.
func (t *GPUTimer) Resolve(r Renderer) {
	if t == nil {
		return
	}
	r.ResolveQuerySet(t.querySet, 0, t.count, t.resolve, 0)
	t.readback.Copy(r, t.resolve, 0)
}

// Map starts the asynchronous map after submission.
func (t *GPUTimer) Map() {
	if t == nil {
		return
	}
	t.readback.Map()
}

// Cancel forgets a readback recorded into a dropped frame.
func (t *GPUTimer) Cancel() {
	if t == nil {
		return
	}
	t.readback.Cancel()
}

// Durations returns the most recent per-group durations, or nil when none have arrived or
// timestamps are unsupported.
func (t *GPUTimer) Durations() map[string]time.Duration {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return nil
	}
	out := make(map[string]time.Duration, len(t.last))
	for k, v := range t.last {
		out[k] = v
	}
	return out
}

func (t *GPUTimer) store(data []byte) {
	d := TimestampDurations(data, t.labels)
	t.mu.Lock()
	t.last = d
	t.mu.Unlock()
}

// Release destroys the query set and buffers.
func (t *GPUTimer) Release() {
	if t == nil {
		return
	}
	if t.readback != nil {
		t.readback.Release()
		t.readback = nil
	}
	if t.resolve != nil {
		t.resolve.Release()
		t.resolve = nil
	}
	if t.querySet != nil {
		t.querySet.Release()
		t.querySet = nil
	}
}

// TimestampDurations converts resolved nanosecond timestamps into per-label durations.
// Timestamp i opens label i and timestamp i+1 closes it. A pair that runs backwards, which
// some drivers report for empty groups, is reported as zero.
//
// Parameters:
//   - raw: little-endian u64 timestamps, at least len(labels)+1 of them
//   - labels: the group names
//
// Returns:
//   - map[string]time.Duration: the duration of each group, or nil if raw is too short
func TimestampDurations(raw []byte, labels []string) map[string]time.Duration {
	if len(raw) < (len(labels)+1)*8 {
		return nil
	}
	out := make(map[string]time.Duration, len(labels))
	for i, label := range labels {
		start := binary.LittleEndian.Uint64(raw[i*8:])
		end := binary.LittleEndian.Uint64(raw[(i+1)*8:])
		if end < start {
			out[label] = 0
			continue
		}
		out[label] = time.Duration(end - start)
	}
	return out
}
