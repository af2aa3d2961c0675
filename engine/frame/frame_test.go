package frame

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPlanChanges(t *testing.T) {
	tests := []struct {
		name   string
		change sim.ChangeSet
		want   changePlan
	}{
		{"none", 0, changePlan{}},
		{"shape", sim.ChangeShape, changePlan{regenerate: true, reset: true}},
		{"particle size", sim.ChangeParticleSize, changePlan{reset: true}},
		{"overdraw", sim.ChangeOverdraw, changePlan{reset: true}},
		{"tone curve", sim.ChangeToneCurve, changePlan{}},
		{"bloom", sim.ChangeBloom, changePlan{}},
		{"denoise", sim.ChangeDenoise, changePlan{}},
		{"tone and bloom", sim.ChangeToneCurve | sim.ChangeBloom, changePlan{}},
		{"all", sim.ChangeAll, changePlan{regenerate: true, reset: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, planChanges(tt.change))
		})
	}
}

func TestPlanMatchesStateUpdates(t *testing.T) {
	s := sim.NewState()

	changes, err := s.Set("exposure", 2)
	assert.NoError(t, err)
	assert.Equal(t, changePlan{}, planChanges(changes))

	changes, err = s.Set("galaxy_radius", 123)
	assert.NoError(t, err)
	assert.True(t, planChanges(changes).regenerate)
}

func TestErrorLimiter(t *testing.T) {
	l := newErrorLimiter(time.Second)
	t0 := time.Unix(100, 0)

	assert.True(t, l.allow("device lost", t0))
	assert.False(t, l.allow("device lost", t0.Add(500*time.Millisecond)))
	assert.True(t, l.allow("out of memory", t0.Add(500*time.Millisecond)))
	assert.True(t, l.allow("device lost", t0.Add(time.Second)))
}

func TestErrorLimiterPrunes(t *testing.T) {
	l := newErrorLimiter(time.Second)
	t0 := time.Unix(100, 0)
	for i := 0; i < 100; i++ {
		l.allow(string(rune('a'+i%26))+string(rune('A'+i/26)), t0)
	}
	l.allow("late", t0.Add(2*time.Second))
	assert.Len(t, l.last, 1)
}

func TestErrorLimiterWarn(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	l := newErrorLimiter(time.Second)
	t0 := time.Unix(100, 0)

	for i := 0; i < 10; i++ {
		l.warn(logger, t0.Add(time.Duration(i)*50*time.Millisecond), errors.New("bind group creation failed"))
	}
	assert.Equal(t, 1, logs.FilterMessage("frame failed").Len())
}

func TestStatsCloneIsIndependent(t *testing.T) {
	s := Stats{
		PassTimes: map[string]time.Duration{PassStars: time.Millisecond},
		VRAM:      map[string]uint64{"Particles": 40},
	}
	c := s.clone()
	c.PassTimes[PassStars] = time.Second
	c.VRAM["Particles"] = 0

	assert.Equal(t, time.Millisecond, s.PassTimes[PassStars])
	assert.Equal(t, uint64(40), s.VRAM["Particles"])
}

func TestStatsCloneKeepsNilPassTimes(t *testing.T) {
	assert.Nil(t, Stats{}.clone().PassTimes)
}

func TestAllShadersCompile(t *testing.T) {
	shaders := Shaders()
	keys := make(map[string]bool, len(shaders))
	for _, s := range shaders {
		assert.False(t, keys[s.Key()], "duplicate shader key %s", s.Key())
		keys[s.Key()] = true
	}

	skipped, err := shader.ValidateAll(shaders...)
	for _, key := range skipped {
		t.Logf("validator skipped %s", key)
	}
	assert.NoError(t, err)
}
