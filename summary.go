package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/pthm-cable/murmur/telemetry"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

// renderSummary formats completed cycles and the coverage curve of the last
// cycle seen in samples.
func renderSummary(cycles []telemetry.CycleStats, samples []telemetry.ProgressSample) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("murmur: %d cycle(s) complete", len(cycles))))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	for _, c := range cycles {
		row(fmt.Sprintf("cycle %d", c.Cycle), fmt.Sprintf("%d pixels in %.2fs (%d ticks)", c.Targets, c.DurationSec, c.Ticks))
		row("  captures", fmt.Sprintf("%d natural, %d forced", c.NaturalCaptures, c.ForcedCaptures))
		row("  agents", fmt.Sprintf("%d spawned, peak %d, %d kicks", c.Spawned, c.PeakAgents, c.StuckKicks))
		if c.NaturalCaptures > 0 {
			row("  capture time", fmt.Sprintf("p10 %.2fs  p50 %.2fs  p90 %.2fs", c.CaptureP10, c.CaptureP50, c.CaptureP90))
		}
	}

	if curve := coverageCurve(samples); len(curve) > 1 {
		graph := asciigraph.Plot(curve,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("coverage % over time"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}
	return b.String()
}

// coverageCurve returns coverage percentages for the last cycle in samples.
func coverageCurve(samples []telemetry.ProgressSample) []float64 {
	if len(samples) == 0 {
		return nil
	}
	last := samples[len(samples)-1].Cycle
	var curve []float64
	for _, s := range samples {
		if s.Cycle == last {
			curve = append(curve, s.Coverage*100)
		}
	}
	return curve
}
