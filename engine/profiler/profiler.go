package profiler

import (
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Sample is the per-frame data the profiler reports alongside the frame rate.
type Sample struct {
	FrameTime    time.Duration
	PassTimes    map[string]time.Duration
	VRAMBytes    uint64
	VisibleCount uint32
}

// Profiler aggregates frame rate over a fixed wall-clock window and logs one report per window.
// Reports include the latest Sample plus heap and GC statistics.
type Profiler struct {
	logger         *zap.Logger
	window         time.Duration
	logging        bool
	frameCount     int
	windowStart    time.Time
	fps            float64
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with default settings.
// The window defaults to 1 second and logging is enabled.
//
// Parameters:
//   - options: optional ProfilerBuilderOption values
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:  zap.NewNop(),
		window:  time.Second,
		logging: true,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Tick counts one rendered frame. When the window has elapsed it closes the window, updates
// FPS and logs a report.
//
// Parameters:
//   - now: the frame's wall-clock time
//   - sample: the frame's statistics
//
// Returns:
//   - bool: true if a window closed on this tick
func (p *Profiler) Tick(now time.Time, sample Sample) bool {
	if p.windowStart.IsZero() {
		p.windowStart = now
	}
	p.frameCount++

	elapsed := now.Sub(p.windowStart)
	if elapsed < p.window {
		return false
	}
	p.fps = float64(p.frameCount) / elapsed.Seconds()
	if p.logging {
		p.report(elapsed, sample)
	}
	p.frameCount = 0
	p.windowStart = now
	return true
}

// FPS returns the frame rate measured over the last completed window, or 0 before the first.
func (p *Profiler) FPS() float64 {
	return p.fps
}

// Window returns the aggregation window.
func (p *Profiler) Window() time.Duration {
	return p.window
}

// SetLogging enables or disables the per-window log report. FPS is measured either way.
func (p *Profiler) SetLogging(enabled bool) {
	p.logging = enabled
}

func (p *Profiler) report(elapsed time.Duration, sample Sample) {
	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 pauses.
	gcCount := p.memStats.NumGC
	var maxPause time.Duration
	start := p.lastGCCount
	if gcCount-start > 256 {
		start = gcCount - 256
	}
	for i := start; i < gcCount; i++ {
		maxPause = max(maxPause, time.Duration(p.memStats.PauseNs[i%256]))
	}

	fields := []zap.Field{
		zap.Float64("fps", p.fps),
		zap.Duration("cpu_frame", sample.FrameTime),
		zap.Uint64("vram_bytes", sample.VRAMBytes),
		zap.Uint32("visible", sample.VisibleCount),
		zap.Float64("heap_mb", allocMB),
		zap.Float64("alloc_mb_per_s", allocRateMB),
		zap.Uint32("gc", gcCount),
		zap.Duration("gc_max_pause", maxPause),
	}
	names := make([]string, 0, len(sample.PassTimes))
	for name := range sample.PassTimes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fields = append(fields, zap.Duration("gpu_"+name, sample.PassTimes[name]))
	}
	p.logger.Info("profiler", fields...)

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
