package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// CycleStats summarizes one completed convergence cycle.
type CycleStats struct {
	Cycle       int     `csv:"cycle"`
	Targets     int     `csv:"targets"`
	Ticks       int     `csv:"ticks"`
	DurationSec float64 `csv:"duration"`

	NaturalCaptures int  `csv:"natural_captures"`
	ForcedCaptures  int  `csv:"forced_captures"`
	SweepForced     bool `csv:"sweep_forced"`

	Spawned        int `csv:"spawned"`
	Despawned      int `csv:"despawned"`
	PeakAgents     int `csv:"peak_agents"`
	StuckKicks     int `csv:"stuck_kicks"`
	DeferredSpawns int `csv:"deferred_spawns"`

	// Seconds into the cycle at which natural captures happened
	CaptureMean float64 `csv:"capture_mean"`
	CaptureP10  float64 `csv:"capture_p10"`
	CaptureP50  float64 `csv:"capture_p50"`
	CaptureP90  float64 `csv:"capture_p90"`
}

// ProgressSample is a coverage snapshot taken once per progress window.
type ProgressSample struct {
	Cycle      int     `csv:"cycle"`
	SimTime    float64 `csv:"sim_time"`
	Captured   int     `csv:"captured"`
	Total      int     `csv:"total"`
	Coverage   float64 `csv:"coverage"`
	Agents     int     `csv:"agents"`
	Captures   int     `csv:"window_captures"`
	Spawned    int     `csv:"window_spawned"`
	Kicks      int     `csv:"window_kicks"`
	SweepArmed bool    `csv:"sweep_armed"`
}

// ComputeCaptureStats returns the mean and the 10th, 50th and 90th
// percentiles of capture times.
func ComputeCaptureStats(times []float64) (mean, p10, p50, p90 float64) {
	if len(times) == 0 {
		return 0, 0, 0, 0
	}

	sorted := slices.Clone(times)
	slices.Sort(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s CycleStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("cycle", s.Cycle),
		slog.Int("targets", s.Targets),
		slog.Int("ticks", s.Ticks),
		slog.Float64("duration", s.DurationSec),
		slog.Int("natural_captures", s.NaturalCaptures),
		slog.Int("forced_captures", s.ForcedCaptures),
		slog.Bool("sweep_forced", s.SweepForced),
		slog.Int("spawned", s.Spawned),
		slog.Int("despawned", s.Despawned),
		slog.Int("peak_agents", s.PeakAgents),
		slog.Int("stuck_kicks", s.StuckKicks),
		slog.Int("deferred_spawns", s.DeferredSpawns),
		slog.Float64("capture_p50", s.CaptureP50),
		slog.Float64("capture_p90", s.CaptureP90),
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (p ProgressSample) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("cycle", p.Cycle),
		slog.Float64("sim_time", p.SimTime),
		slog.Int("captured", p.Captured),
		slog.Int("total", p.Total),
		slog.Float64("coverage", p.Coverage),
		slog.Int("agents", p.Agents),
		slog.Int("window_captures", p.Captures),
		slog.Bool("sweep_armed", p.SweepArmed),
	)
}
