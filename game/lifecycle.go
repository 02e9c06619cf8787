package game

import (
	"fmt"

	"github.com/pthm-cable/murmur/systems"
	"github.com/pthm-cable/murmur/telemetry"
)

// Start fetches the target pattern and begins the first cycle. Calling Start
// on a started engine restarts the current cycle like Reset.
func (e *Engine) Start() error {
	if err := e.begin(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	return nil
}

// Reset discards all agents and captures, re-fetches the pattern and begins
// a new cycle. The result is equivalent to a freshly started engine.
func (e *Engine) Reset() error {
	if err := e.begin(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// begin starts a new cycle from an empty canvas.
func (e *Engine) begin() error {
	w, h := e.cfg.Canvas.Width, e.cfg.Canvas.Height
	targets, err := e.provider.TargetPixels(w, h)
	if err != nil {
		return fmt.Errorf("fetch target pattern: %w", err)
	}

	e.clearAgents()
	e.backend.Reset()
	e.waves.Reset()
	e.sweep.Reset()

	e.targets = targets
	e.captured = systems.NewCapturedSet(targets)
	e.index = systems.NewTargetIndex(w, h, targetCellSize)
	e.scanner = systems.NewCaptureScanner(targets, e.cfg.Canvas.Width, e.cfg.Canvas.Height, e.cfg.Capture.Radius, e.cfg.Capture.SampleStep)

	e.cycle++
	e.simTime = 0
	e.hold = 0
	e.state = StateRunning
	e.collector.StartCycle(e.cycle)

	e.log.Info("cycle_started",
		"cycle", e.cycle,
		"targets", targets.Len(),
		"canvas_width", w,
		"canvas_height", h,
	)

	// An empty pattern is complete before the first tick
	e.checkComplete()
	return nil
}

// checkComplete moves a running cycle into the hold state once every
// target is captured.
func (e *Engine) checkComplete() {
	if e.state != StateRunning || !e.captured.Complete() {
		return
	}

	// Final coverage sample for the cycle
	e.emitProgress()

	e.state = StateHolding
	e.hold = 0
	e.completed++

	e.collector.Record(telemetry.NewCycleCompleteEvent(e.tick, e.simTime))
	stats := e.collector.Finish(e.simTime, e.captured.Total())
	e.last = stats

	e.log.Info("cycle_complete", "stats", stats)

	if err := e.opts.Output.WriteCycle(stats); err != nil {
		e.log.Error("failed to write cycle stats", "error", err)
	}
	if e.opts.OnCycle != nil {
		e.opts.OnCycle(stats)
	}
}

// holdExpired reports whether the finished pattern has been shown long
// enough to start the next cycle.
func (e *Engine) holdExpired() bool {
	lc := e.cfg.Lifecycle
	return e.state == StateHolding && lc.AutoReset && e.hold >= lc.HoldSeconds-1e-9
}
