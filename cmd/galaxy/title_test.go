package main

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/frame"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/stretchr/testify/assert"
)

func TestStatusTitle(t *testing.T) {
	params := sim.DefaultParams()
	stats := frame.Stats{FPS: 59.6, VisibleCount: 1200, TotalParticles: 5000}

	assert.Equal(t, "galaxy | 60 fps | 1200/5000 visible", statusTitle("galaxy", stats, &params, false))

	params.OverdrawLimit = 32
	assert.Equal(t, "galaxy | 60 fps | 1200/5000 visible | overdraw limit 32 | paused",
		statusTitle("galaxy", stats, &params, true))

	params.OverdrawView = true
	assert.Contains(t, statusTitle("galaxy", stats, &params, false), "overdraw view (limit 32)")
}

func TestTitleBarWritesOnChange(t *testing.T) {
	o := &recordingOrchestrator{state: sim.NewState()}
	var titles []string
	bar := &titleBar{base: "galaxy", set: func(s string) { titles = append(titles, s) }}

	bar.update(o)
	bar.update(o)
	o.paused = true
	bar.update(o)

	assert.Len(t, titles, 2)
	assert.Contains(t, titles[1], "paused")
}
