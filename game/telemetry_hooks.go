package game

// flushTelemetry emits a progress sample when the window is due and perf
// stats every perf window.
func (e *Engine) flushTelemetry() {
	if e.state == StateRunning && e.collector.ShouldFlush(e.simTime) {
		e.emitProgress()
	}

	window := int32(e.cfg.Telemetry.PerfWindow)
	if window <= 0 || e.tick%window != 0 {
		return
	}
	perf := e.perf.Stats()
	if e.opts.LogStats {
		e.log.Info("perf", "tick", e.tick, "stats", perf)
	}
	if err := e.opts.Output.WritePerf(perf, e.cycle, e.tick); err != nil {
		e.log.Error("failed to write perf", "error", err)
	}
}

// emitProgress closes the current progress window.
func (e *Engine) emitProgress() {
	sample := e.collector.Flush(e.simTime, e.captured.Len(), e.captured.Total(), e.active, e.sweep.Armed())

	if e.opts.LogStats {
		e.log.Info("progress", "stats", sample)
	}
	if err := e.opts.Output.WriteProgress(sample); err != nil {
		e.log.Error("failed to write progress", "error", err)
	}
	if e.opts.OnProgress != nil {
		e.opts.OnProgress(sample)
	}
}
