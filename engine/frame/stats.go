package frame

import (
	"maps"
	"time"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/temporal"
)

// Stats is a snapshot of the orchestrator's most recent frame.
type Stats struct {
	// FrameTime is the CPU time spent in the last RenderFrame call.
	FrameTime time.Duration
	// PassTimes maps pass group names to GPU durations. Nil without timestamp support.
	PassTimes map[string]time.Duration
	// VRAMBytes is the summed size of every cached buffer and texture.
	VRAMBytes uint64
	// VRAM breaks VRAMBytes down by resource label.
	VRAM map[string]uint64

	VisibleCount   uint32
	TotalParticles uint32

	Denoise              temporal.GPUDenoiseParams
	ResetFramesRemaining uint32

	FPS float64

	Frames  uint64
	Skipped uint64
	Failed  uint64
}

// clone returns a copy that shares no maps with s.
func (s Stats) clone() Stats {
	out := s
	out.PassTimes = maps.Clone(s.PassTimes)
	out.VRAM = maps.Clone(s.VRAM)
	return out
}
