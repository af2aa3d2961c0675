package main

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/frame"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
)

// titleBar mirrors frame statistics into the window title, writing only when the text changes.
type titleBar struct {
	base string
	set  func(string)
	last string
}

func (t *titleBar) update(o frame.Orchestrator) {
	title := statusTitle(t.base, o.Stats(), &o.State().Params, o.Paused())
	if title != t.last {
		t.last = title
		t.set(title)
	}
}

func statusTitle(base string, stats frame.Stats, params *sim.Params, paused bool) string {
	var b strings.Builder
	b.WriteString(base)
	fmt.Fprintf(&b, " | %.0f fps | %d/%d visible", stats.FPS, stats.VisibleCount, stats.TotalParticles)
	if params.OverdrawActive() {
		if params.OverdrawView {
			fmt.Fprintf(&b, " | overdraw view (limit %d)", params.OverdrawLimit)
		} else {
			fmt.Fprintf(&b, " | overdraw limit %d", params.OverdrawLimit)
		}
	}
	if paused {
		b.WriteString(" | paused")
	}
	return b.String()
}
