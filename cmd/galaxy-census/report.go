package main

import (
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-galaxy/engine/camera"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/galaxy"
	"github.com/Carmen-Shannon/oxy-galaxy/engine/sim"
	"github.com/olekukonko/tablewriter"
)

// defaultView is the culling view of the viewer's starting camera.
func defaultView(aspect float32) galaxy.View {
	pose := camera.DefaultPose()
	pose.Aspect = aspect
	return galaxy.View{ViewProj: pose.ViewProj(), ProjScale: pose.ProjScale()}
}

// reportRows turns a census into table rows of metric, measured value and expected value.
func reportRows(p sim.Preset, r *galaxy.CensusReport) [][]string {
	params := &p.Params
	bulge, disk, background := galaxy.ArchetypeWeights(params)
	expected := map[galaxy.Archetype]float32{
		galaxy.ArchetypeBulge:      bulge,
		galaxy.ArchetypeDisk:       disk,
		galaxy.ArchetypeBackground: background,
	}

	rows := [][]string{
		{"Metric", "Measured", "Expected"},
		{"preset", p.Name, ""},
		{"particles", fmt.Sprint(r.Total), fmt.Sprint(params.TotalParticles)},
		{"stars", fmt.Sprint(r.Stars), fmt.Sprint(params.EffectiveBrightStars())},
		{"dust", fmt.Sprint(r.Dust), fmt.Sprint(params.TotalParticles - params.EffectiveBrightStars())},
	}
	for _, a := range []galaxy.Archetype{galaxy.ArchetypeBulge, galaxy.ArchetypeDisk, galaxy.ArchetypeBackground} {
		rows = append(rows, []string{
			a.String() + " share",
			fmt.Sprintf("%.4f", r.Share(a)),
			fmt.Sprintf("%.4f", expected[a]),
		})
	}
	visibleShare := 0.0
	if r.Total > 0 {
		visibleShare = float64(r.Visible) / float64(r.Total)
	}
	rows = append(rows,
		[]string{"visible (default camera)", fmt.Sprint(r.Visible), fmt.Sprintf("%.1f%%", visibleShare*100)},
		[]string{"particle buffers", formatBytes(galaxy.EstimateBytes(params.TotalParticles)), ""},
		[]string{"elapsed", r.Elapsed.String(), ""},
	)
	return rows
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// renderReport writes the census table to w.
func renderReport(w io.Writer, p sim.Preset, r *galaxy.CensusReport) error {
	table := tablewriter.NewWriter(w)
	for _, row := range reportRows(p, r) {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
