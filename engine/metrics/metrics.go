package metrics

import (
	"net/http"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/frame"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports frame statistics as Prometheus gauges and counters on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	frameSeconds   prometheus.Gauge
	passSeconds    *prometheus.GaugeVec
	vramBytes      prometheus.Gauge
	visible        prometheus.Gauge
	particles      prometheus.Gauge
	resetRemaining prometheus.Gauge
	fps            prometheus.Gauge

	framesTotal  prometheus.Counter
	skippedTotal prometheus.Counter
	failedTotal  prometheus.Counter

	last frame.Stats
}

// New creates the collectors and registers them on a fresh registry.
//
// Returns:
//   - *Metrics: the metrics set
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		frameSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "galaxy_frame_seconds",
			Help: "CPU time of the last rendered frame in seconds",
		}),
		passSeconds: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "galaxy_gpu_pass_seconds",
			Help: "GPU time of the last measured frame by pass group in seconds",
		}, []string{"pass"}),
		vramBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "galaxy_vram_bytes",
			Help: "Estimated bytes of GPU memory held by cached resources",
		}),
		visible: factory.NewGauge(prometheus.GaugeOpts{
			Name: "galaxy_visible_particles",
			Help: "Particles that passed visibility culling, read back asynchronously",
		}),
		particles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "galaxy_particles",
			Help: "Particles in the generated galaxy",
		}),
		resetRemaining: factory.NewGauge(prometheus.GaugeOpts{
			Name: "galaxy_temporal_reset_frames",
			Help: "Frames left in the temporal reset window",
		}),
		fps: factory.NewGauge(prometheus.GaugeOpts{
			Name: "galaxy_fps",
			Help: "Frames per second over the last stats window",
		}),
		framesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "galaxy_frames_total",
			Help: "Frames submitted and presented",
		}),
		skippedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "galaxy_frames_skipped_total",
			Help: "Frames skipped because nothing was ready to render",
		}),
		failedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "galaxy_frames_failed_total",
			Help: "Frames dropped after a hard failure",
		}),
	}
}

// Observe updates every collector from a stats snapshot. Counters advance by the difference
// from the previous snapshot.
//
// Parameters:
//   - s: the orchestrator's latest stats
func (m *Metrics) Observe(s frame.Stats) {
	m.frameSeconds.Set(s.FrameTime.Seconds())
	for _, pass := range frame.PassGroups {
		if d, ok := s.PassTimes[pass]; ok {
			m.passSeconds.WithLabelValues(pass).Set(d.Seconds())
		}
	}
	m.vramBytes.Set(float64(s.VRAMBytes))
	m.visible.Set(float64(s.VisibleCount))
	m.particles.Set(float64(s.TotalParticles))
	m.resetRemaining.Set(float64(s.ResetFramesRemaining))
	m.fps.Set(s.FPS)

	m.framesTotal.Add(delta(s.Frames, m.last.Frames))
	m.skippedTotal.Add(delta(s.Skipped, m.last.Skipped))
	m.failedTotal.Add(delta(s.Failed, m.last.Failed))
	m.last = s
}

func delta(cur, prev uint64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur - prev)
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
