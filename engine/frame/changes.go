package frame

import "github.com/Carmen-Shannon/oxy-galaxy/engine/sim"

// changePlan is the work a set of parameter changes requires beyond uniform rewrites, which the
// passes detect on their own.
type changePlan struct {
	regenerate bool
	reset      bool
}

// planChanges maps change classes to cache actions:
//
//	shape          regenerate particles, reset temporal history
//	particle size  reset temporal history
//	overdraw       reset temporal history (the counter slot re-keys itself)
//	tone curve     none
//	bloom          none
//	denoise        none
func planChanges(c sim.ChangeSet) changePlan {
	return changePlan{
		regenerate: c.Has(sim.ChangeShape),
		reset:      c&(sim.ChangeShape|sim.ChangeParticleSize|sim.ChangeOverdraw) != 0,
	}
}
