package main

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/camera"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/frame"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordingOrchestrator struct {
	state    *sim.State
	paused   bool
	applied  sim.ChangeSet
	selected []string
	resets   []string
}

func (o *recordingOrchestrator) RenderFrame(time.Time) (bool, error) { return true, nil }
func (o *recordingOrchestrator) Resize(int, int) {}
func (o *recordingOrchestrator) Apply(c sim.ChangeSet) { o.applied = o.applied.Union(c) }
func (o *recordingOrchestrator) SelectPreset(p sim.Preset) { o.selected = append(o.selected, p.Name) }
func (o *recordingOrchestrator) RequestReset(reason string) { o.resets = append(o.resets, reason) }
func (o *recordingOrchestrator) SetPaused(paused bool) { o.paused = paused }
func (o *recordingOrchestrator) Paused() bool { return o.paused }
func (o *recordingOrchestrator) State() *sim.State { return o.state }
func (o *recordingOrchestrator) Camera() camera.Camera { return nil }
func (o *recordingOrchestrator) Stats() frame.Stats { return frame.Stats{} }
func (o *recordingOrchestrator) Release() {}

func newBindings() (*keyBindings, *recordingOrchestrator, *bool) {
	o := &recordingOrchestrator{state: sim.NewState()}
	quit := false
	return &keyBindings{
		orchestrator: o,
		presets:      sim.BuiltinPresets(),
		quit:         func() { quit = true },
		logger:       zap.NewNop(),
	}, o, &quit
}

func TestPresetKeys(t *testing.T) {
	k, o, _ := newBindings()
	assert.True(t, k.handle(common.Key3))
	assert.True(t, k.handle(common.Key1))
	assert.Equal(t, []string{"grand-design", "milky-way"}, o.selected)
}

func TestPresetKeyBeyondList(t *testing.T) {
	k, o, _ := newBindings()
	k.presets = k.presets[:1]
	assert.True(t, k.handle(common.Key4))
	assert.Empty(t, o.selected)
}

func TestResetPauseQuit(t *testing.T) {
	k, o, quit := newBindings()

	k.handle(common.KeyR)
	assert.Equal(t, []string{"manual"}, o.resets)

	k.handle(common.KeySpace)
	assert.True(t, o.paused)
	k.handle(common.KeySpace)
	assert.False(t, o.paused)

	k.handle(common.KeyEsc)
	assert.True(t, *quit)
}

func TestOverdrawToggleEnablesBudget(t *testing.T) {
	k, o, _ := newBindings()
	p := &o.state.Params
	assert.False(t, p.OverdrawActive())

	k.handle(common.KeyO)
	assert.True(t, p.OverdrawView)
	assert.Equal(t, uint32(defaultOverdrawLimit), p.OverdrawLimit)
	assert.Equal(t, sim.ChangeOverdraw, o.applied)

	k.handle(common.KeyO)
	assert.False(t, p.OverdrawView)
	assert.Equal(t, uint32(defaultOverdrawLimit), p.OverdrawLimit)
}

func TestUnboundKey(t *testing.T) {
	k, _, _ := newBindings()
	assert.False(t, k.handle(common.KeyW))
}
