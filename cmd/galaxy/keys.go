package main

import (
	"github.com/Carmen-Shannon/oxy-galaxy/common"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/frame"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"go.uber.org/zap"
)

// defaultOverdrawLimit is the budget switched on when the overdraw view is toggled without one.
const defaultOverdrawLimit = 32

// keyBindings maps the viewer's non-camera keys to orchestrator actions. Arrows, +/- and WASD
// are handled by the camera controller.
type keyBindings struct {
	orchestrator frame.Orchestrator
	presets      []sim.Preset
	quit         func()
	logger       *zap.Logger
}

// handle runs the action bound to key and reports whether one was bound.
func (k *keyBindings) handle(key uint32) bool {
	switch key {
	case common.Key1, common.Key2, common.Key3, common.Key4:
		i := int(key - common.Key1)
		if i < len(k.presets) {
			k.orchestrator.SelectPreset(k.presets[i])
		}
	case common.KeyR:
		k.orchestrator.RequestReset("manual")
	case common.KeyO:
		k.toggleOverdraw()
	case common.KeySpace:
		k.orchestrator.SetPaused(!k.orchestrator.Paused())
		k.logger.Info("time", zap.Bool("paused", k.orchestrator.Paused()))
	case common.KeyEsc:
		k.quit()
	default:
		return false
	}
	return true
}

func (k *keyBindings) toggleOverdraw() {
	state := k.orchestrator.State()
	var changes sim.ChangeSet
	if !state.Params.OverdrawActive() {
		c, err := state.UpdateOverdraw("overdraw_limit", defaultOverdrawLimit)
		if err != nil {
			k.logger.Warn("failed to enable overdraw counting", zap.Error(err))
			return
		}
		changes = changes.Union(c)
	}
	view := 1.0
	if state.Params.OverdrawView {
		view = 0
	}
	c, err := state.UpdateOverdraw("overdraw_view", view)
	if err != nil {
		k.logger.Warn("failed to toggle overdraw view", zap.Error(err))
		return
	}
	k.orchestrator.Apply(changes.Union(c))
	k.logger.Info("overdraw view", zap.Bool("enabled", state.Params.OverdrawView), zap.Uint32("limit", state.Params.OverdrawLimit))
}
