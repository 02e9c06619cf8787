package telemetry

// Collector accumulates events over a cycle and over progress windows.
// Windows are measured in simulated seconds from the start of the cycle.
type Collector struct {
	windowDurationSec float64

	cycle      int
	ticks      int
	peakAgents int
	windowEnd  float64

	// Cycle counters
	spawned    int
	despawned  int
	natural    int
	forced     int
	stuckKicks int
	deferred   int
	captures   []float64

	// Progress window counters
	winCaptures int
	winSpawned  int
	winKicks    int
}

// NewCollector creates a collector flushing progress every windowDurationSec
// simulated seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 1
	}
	c := &Collector{windowDurationSec: windowDurationSec}
	c.StartCycle(1)
	return c
}

// StartCycle resets all counters for a new cycle.
func (c *Collector) StartCycle(cycle int) {
	*c = Collector{
		windowDurationSec: c.windowDurationSec,
		cycle:             cycle,
		windowEnd:         c.windowDurationSec,
		captures:          c.captures[:0],
	}
}

// Cycle returns the current cycle number.
func (c *Collector) Cycle() int {
	return c.cycle
}

// Record counts a single event.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventSpawn:
		c.spawned++
		c.winSpawned++
	case EventDespawn:
		c.despawned++
	case EventCapture:
		c.natural++
		c.winCaptures++
		c.captures = append(c.captures, ev.SimTime)
	case EventForcedCapture:
		c.forced++
	case EventStuckKick:
		c.stuckKicks++
		c.winKicks++
	case EventSpawnDeferred:
		c.deferred++
	}
}

// ObserveTick records per-tick population.
func (c *Collector) ObserveTick(activeAgents int) {
	c.ticks++
	if activeAgents > c.peakAgents {
		c.peakAgents = activeAgents
	}
}

// ShouldFlush returns true once simTime reaches the end of the current window.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime >= c.windowEnd-1e-9
}

// Flush produces a ProgressSample and resets the window counters.
func (c *Collector) Flush(simTime float64, captured, total, agents int, sweepArmed bool) ProgressSample {
	coverage := 1.0
	if total > 0 {
		coverage = float64(captured) / float64(total)
	}
	s := ProgressSample{
		Cycle:      c.cycle,
		SimTime:    simTime,
		Captured:   captured,
		Total:      total,
		Coverage:   coverage,
		Agents:     agents,
		Captures:   c.winCaptures,
		Spawned:    c.winSpawned,
		Kicks:      c.winKicks,
		SweepArmed: sweepArmed,
	}

	c.winCaptures = 0
	c.winSpawned = 0
	c.winKicks = 0
	for c.windowEnd <= simTime+1e-9 {
		c.windowEnd += c.windowDurationSec
	}
	return s
}

// Finish summarizes the cycle. The collector keeps its counters until
// StartCycle is called.
func (c *Collector) Finish(simTime float64, targets int) CycleStats {
	mean, p10, p50, p90 := ComputeCaptureStats(c.captures)
	return CycleStats{
		Cycle:           c.cycle,
		Targets:         targets,
		Ticks:           c.ticks,
		DurationSec:     simTime,
		NaturalCaptures: c.natural,
		ForcedCaptures:  c.forced,
		SweepForced:     c.forced > 0,
		Spawned:         c.spawned,
		Despawned:       c.despawned,
		PeakAgents:      c.peakAgents,
		StuckKicks:      c.stuckKicks,
		DeferredSpawns:  c.deferred,
		CaptureMean:     mean,
		CaptureP10:      p10,
		CaptureP50:      p50,
		CaptureP90:      p90,
	}
}
