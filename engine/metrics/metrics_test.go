package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/frame"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveGauges(t *testing.T) {
	m := New()
	m.Observe(frame.Stats{
		FrameTime:      4 * time.Millisecond,
		PassTimes:      map[string]time.Duration{frame.PassStars: 2 * time.Millisecond},
		VRAMBytes:      1024,
		VisibleCount:   700,
		TotalParticles: 1000,
		FPS:            59.5,
	})

	assert.InDelta(t, 0.004, testutil.ToFloat64(m.frameSeconds), 1e-9)
	assert.InDelta(t, 0.002, testutil.ToFloat64(m.passSeconds.WithLabelValues(frame.PassStars)), 1e-9)
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.vramBytes))
	assert.Equal(t, 700.0, testutil.ToFloat64(m.visible))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.particles))
	assert.Equal(t, 59.5, testutil.ToFloat64(m.fps))
}

func TestObserveSkipsMissingPassTimes(t *testing.T) {
	m := New()
	m.Observe(frame.Stats{})
	assert.Equal(t, 0, testutil.CollectAndCount(m.passSeconds))
}

func TestCountersAdvanceByDelta(t *testing.T) {
	m := New()
	m.Observe(frame.Stats{Frames: 10, Skipped: 2})
	m.Observe(frame.Stats{Frames: 15, Skipped: 2, Failed: 1})

	assert.Equal(t, 15.0, testutil.ToFloat64(m.framesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.skippedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failedTotal))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.Observe(frame.Stats{Frames: 3})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "galaxy_frames_total 3"))
	assert.True(t, strings.Contains(body, "galaxy_fps"))
}
