package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies a timed section of the engine tick.
type Phase int

const (
	PhaseSnapshot Phase = iota
	PhaseSpawn
	PhaseSpatialGrid
	PhaseFlocking
	PhaseCapture
	PhaseCleanup
	PhaseRender
	numPhases
)

var phaseNames = [numPhases]string{
	"snapshot", "spawn", "spatial_grid", "flocking", "capture", "cleanup", "render",
}

// String returns the phase name used in logs and CSV headers.
func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

type perfSample struct {
	tick   time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector tracks tick timing over a rolling window.
type PerfCollector struct {
	now func() time.Time

	samples []perfSample
	next    int
	count   int

	current    perfSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame     time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		now:     time.Now,
		samples: make([]perfSample, windowSize),
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.current = perfSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := p.now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

// EndTick closes the running phase and records the sample.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.current.tick = now.Sub(p.tickStart)

	p.samples[p.next] = p.current
	p.next = (p.next + 1) % len(p.samples)
	if p.count < len(p.samples) {
		p.count++
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase >= 0 && p.phase < numPhases {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// RecordFrame records wall time between presented frames.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frameDuration = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTick time.Duration
	MinTick time.Duration
	MaxTick time.Duration

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64

	TicksPerSecond float64
	FPS            float64
}

// Stats aggregates the samples in the current window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p.frameDuration > 0 {
		s.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.count == 0 {
		return s
	}

	var total time.Duration
	var sums [numPhases]time.Duration
	for i := 0; i < p.count; i++ {
		sample := p.samples[i]
		total += sample.tick
		if i == 0 || sample.tick < s.MinTick {
			s.MinTick = sample.tick
		}
		s.MaxTick = max(s.MaxTick, sample.tick)
		for ph, d := range sample.phases {
			sums[ph] += d
		}
	}

	n := time.Duration(p.count)
	s.AvgTick = total / n
	for ph := range sums {
		s.PhaseAvg[ph] = sums[ph] / n
		if s.AvgTick > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTick) * 100
		}
	}
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("min_tick_us", s.MinTick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for ph, pct := range s.PhasePct {
		// Skip noise below a tenth of a percent
		if pct > 0.1 {
			attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat record for perf.csv.
type PerfStatsCSV struct {
	Cycle          int     `csv:"cycle"`
	Tick           int32   `csv:"tick"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	FPS            float64 `csv:"fps"`
	SnapshotPct    float64 `csv:"snapshot_pct"`
	SpawnPct       float64 `csv:"spawn_pct"`
	SpatialGridPct float64 `csv:"spatial_grid_pct"`
	FlockingPct    float64 `csv:"flocking_pct"`
	CapturePct     float64 `csv:"capture_pct"`
	CleanupPct     float64 `csv:"cleanup_pct"`
	RenderPct      float64 `csv:"render_pct"`
}

// ToCSV flattens the stats for CSV export.
func (s PerfStats) ToCSV(cycle int, tick int32) PerfStatsCSV {
	return PerfStatsCSV{
		Cycle:          cycle,
		Tick:           tick,
		AvgTickUS:      s.AvgTick.Microseconds(),
		MinTickUS:      s.MinTick.Microseconds(),
		MaxTickUS:      s.MaxTick.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		FPS:            s.FPS,
		SnapshotPct:    s.PhasePct[PhaseSnapshot],
		SpawnPct:       s.PhasePct[PhaseSpawn],
		SpatialGridPct: s.PhasePct[PhaseSpatialGrid],
		FlockingPct:    s.PhasePct[PhaseFlocking],
		CapturePct:     s.PhasePct[PhaseCapture],
		CleanupPct:     s.PhasePct[PhaseCleanup],
		RenderPct:      s.PhasePct[PhaseRender],
	}
}
