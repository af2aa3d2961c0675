package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// readbackState is the life cycle of a staging buffer: a copy is recorded into a frame, the
// buffer is mapped after submission, and the map callback returns it to idle.
type readbackState uint8

const (
	readbackIdle readbackState = iota
	readbackCopying
	readbackMapping
)

// readbackMachine holds the readback state transitions apart from the GPU buffer.
type readbackMachine struct {
	mu    sync.Mutex
	state readbackState
}

// tryCopy moves idle to copying. It fails while a previous copy is still in flight.
func (m *readbackMachine) tryCopy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != readbackIdle {
		return false
	}
	m.state = readbackCopying
	return true
}

// beginMap moves copying to mapping. It fails when no copy was recorded this frame.
func (m *readbackMachine) beginMap() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != readbackCopying {
		return false
	}
	m.state = readbackMapping
	return true
}

// cancelCopy returns a recorded copy to idle when its frame was dropped.
func (m *readbackMachine) cancelCopy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == readbackCopying {
		m.state = readbackIdle
	}
}

func (m *readbackMachine) finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = readbackIdle
}

func (m *readbackMachine) busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != readbackIdle
}

// Readback is a best-effort, never-blocking GPU to CPU copy. A copy is only recorded when the
// previous one has been delivered; otherwise the frame skips it.
type Readback struct {
	label  string
	size   uint64
	buffer *wgpu.Buffer
	onData func([]byte)
	logger *zap.Logger
	m      readbackMachine
}

// NewReadback creates a MapRead staging buffer of size bytes.
//
// Parameters:
//   - r: the renderer owning the device
//   - label: debug label
//   - size: number of bytes copied each time
//   - onData: called from Poll with a copy of the mapped bytes
//
// Returns:
//   - *Readback: the readback
//   - error: an error if the staging buffer could not be created
func NewReadback(r Renderer, label string, size uint64, onData func([]byte)) (*Readback, error) {
	buf, err := r.CreateBuffer(label+" Staging", size, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("failed to create readback %s: %w", label, err)
	}
	return &Readback{
		label:  label,
		size:   size,
		buffer: buf,
		onData: onData,
		logger: r.Logger(),
	}, nil
}

// Copy records a copy of size bytes from src at offset into the staging buffer.
//
// Returns:
//   - bool: false when the staging buffer is still busy and nothing was recorded
func (rb *Readback) Copy(r Renderer, src *wgpu.Buffer, offset uint64) bool {
	if !rb.m.tryCopy() {
		return false
	}
	r.CopyBufferToBuffer(src, offset, rb.buffer, 0, rb.size)
	return true
}

// Map starts the asynchronous map of a copy submitted this frame. The data callback runs from a
// later Poll on the host thread.
func (rb *Readback) Map() {
	if !rb.m.beginMap() {
		return
	}
	err := rb.buffer.MapAsync(wgpu.MapModeRead, 0, rb.size, func(status wgpu.BufferMapAsyncStatus) {
		defer rb.m.finish()
		if status != wgpu.BufferMapAsyncStatusSuccess {
			rb.logger.Warn("readback map failed", zap.String("readback", rb.label), zap.String("status", status.String()))
			return
		}
		mapped := rb.buffer.GetMappedRange(0, uint(rb.size))
		data := make([]byte, len(mapped))
		copy(data, mapped)
		rb.buffer.Unmap()
		if rb.onData != nil {
			rb.onData(data)
		}
	})
	if err != nil {
		rb.logger.Warn("readback map request failed", zap.String("readback", rb.label), zap.Error(err))
		rb.m.finish()
	}
}

// Cancel forgets a copy recorded into a frame that was never submitted.
func (rb *Readback) Cancel() {
	rb.m.cancelCopy()
}

// Busy reports whether a copy or map is in flight.
func (rb *Readback) Busy() bool {
	return rb.m.busy()
}

// Release destroys the staging buffer.
func (rb *Readback) Release() {
	if rb.buffer != nil {
		rb.buffer.Release()
		rb.buffer = nil
	}
}
