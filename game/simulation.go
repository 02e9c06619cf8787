package game

import (
	"fmt"
	"math"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/pattern"
	"github.com/pthm-cable/murmur/telemetry"
)

// Tick advances the simulation by dt simulated seconds and presents one frame.
func (e *Engine) Tick(dt float64) error {
	if e.state == StateIdle {
		return ErrNotStarted
	}
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("tick: invalid dt %v", dt)
	}

	if e.holdExpired() {
		if err := e.Reset(); err != nil {
			return err
		}
	}

	e.perf.StartTick()
	e.tick++
	e.clock += dt

	e.simulationStep(dt)

	e.perf.StartPhase(telemetry.PhaseRender)
	err := e.backend.Render(e.clock)
	e.perf.EndTick()
	if err != nil {
		return fmt.Errorf("tick %d: %w", e.tick, err)
	}
	e.perf.RecordFrame()

	e.flushTelemetry()
	return nil
}

// Render presents the current state again without advancing the simulation.
func (e *Engine) Render() error {
	if e.state == StateIdle {
		return ErrNotStarted
	}
	if err := e.backend.Render(e.clock); err != nil {
		return fmt.Errorf("redraw: %w", err)
	}
	return nil
}

// simulationStep runs one tick. Every agent steers from the same start-of-tick
// snapshot; writes to the world and the captured set happen after the reads.
func (e *Engine) simulationStep(dt float64) {
	running := e.state == StateRunning
	if running {
		e.simTime += dt
	} else {
		e.hold += dt
	}

	e.perf.StartPhase(telemetry.PhaseSpawn)
	if running && e.cfg.Spawn.Enabled {
		e.updateSpawning(dt)
	}

	e.perf.StartPhase(telemetry.PhaseSnapshot)
	e.agents = e.snapshot(e.agents[:0])

	e.perf.StartPhase(telemetry.PhaseSpatialGrid)
	e.grid.Rebuild(e.agents)
	e.index.Rebuild(e.captured)

	e.perf.StartPhase(telemetry.PhaseFlocking)
	e.updateFlocking(dt)

	e.perf.StartPhase(telemetry.PhaseCapture)
	if running {
		e.updateCapture(dt)
	}

	e.perf.StartPhase(telemetry.PhaseCleanup)
	e.cleanupOffscreen()
	e.collector.ObserveTick(e.active)
}

// updateSpawning fires the next wave when it is due.
func (e *Engine) updateSpawning(dt float64) {
	res := e.waves.Update(dt, 1-e.captured.Fraction(), e.active, e.rng)
	if !res.Fired {
		return
	}
	if res.Deferred {
		e.collector.Record(telemetry.NewSpawnDeferredEvent(e.tick, e.simTime))
		e.log.Debug("spawn_deferred",
			"cycle", e.cycle,
			"direction", res.Direction.String(),
			"active", e.active,
		)
		return
	}
	for _, s := range res.Spawns {
		e.spawnAgent(s)
	}
}

// updateFlocking steers every agent from the snapshot, then writes the
// results back to the world.
func (e *Engine) updateFlocking(dt float64) {
	frac := e.captured.Fraction()

	e.motions = e.motions[:0]
	e.birds = e.birds[:0]
	for i := range e.agents {
		m := e.flocker.Steer(i, e.agents, e.grid, e.index, frac, e.clock, dt, e.rng)
		bird := e.agents[i].Bird
		e.flocker.CheckStuck(&bird, &m, e.rng)
		if m.Kicked {
			e.collector.Record(telemetry.NewStuckKickEvent(e.tick, e.simTime, bird.ID))
			e.log.Debug("stuck_kick", "cycle", e.cycle, "agent", bird.ID, "x", m.Pos.X, "y", m.Pos.Y)
		}
		e.motions = append(e.motions, m)
		e.birds = append(e.birds, bird)
	}

	for i := range e.agents {
		a := &e.agents[i]
		m := e.motions[i]

		*e.posMap.Get(a.Entity) = components.Position{X: m.Pos.X, Y: m.Pos.Y}
		*e.velMap.Get(a.Entity) = components.Velocity{X: m.Vel.X, Y: m.Vel.Y}
		*e.birdMap.Get(a.Entity) = e.birds[i]

		// The moved snapshot keeps the start position for path sampling
		a.Prev = a.Pos
		a.Pos = m.Pos
		a.Vel = m.Vel
		a.Bird = e.birds[i]
	}
}

// updateCapture scans the moved snapshot, merges the captures and runs the
// final sweep.
func (e *Engine) updateCapture(dt float64) {
	e.delta = e.scanner.Scan(e.agents, e.captured, e.delta)
	added := e.captured.Merge(e.delta)
	e.light(added, false)

	started, fire := e.sweep.Advance(e.captured.Remaining(), len(added), dt)
	if started {
		reason := "threshold"
		if e.sweep.Stalled() {
			reason = "stall"
		}
		e.log.Info("final_sweep_started",
			"cycle", e.cycle,
			"remaining", e.captured.Remaining(),
			"reason", reason,
			"sim_time", e.simTime,
		)
	}
	if fire {
		forced := e.captured.Merge(e.captured.Missing())
		e.light(forced, true)
		e.log.Warn("final_sweep_forced",
			"cycle", e.cycle,
			"forced", len(forced),
			"elapsed", e.sweep.Elapsed(),
		)
	}

	e.checkComplete()
}

// light draws newly captured pixels and records them.
func (e *Engine) light(points []pattern.Point, forced bool) {
	e.backend.Text().Apply(points)
	for _, p := range points {
		if forced {
			e.collector.Record(telemetry.NewForcedCaptureEvent(e.tick, e.simTime, p.X, p.Y))
		} else {
			e.collector.Record(telemetry.NewCaptureEvent(e.tick, e.simTime, p.X, p.Y))
		}
	}
}

// cleanupOffscreen removes agents beyond the despawn margin and moves the
// sprites of the others.
func (e *Engine) cleanupOffscreen() {
	sprites := e.backend.Sprites()

	e.doomed = e.doomed[:0]
	for i := range e.agents {
		a := &e.agents[i]
		if e.waves.OutOfBounds(a.Pos) {
			e.doomed = append(e.doomed, a.Entity)
			sprites.Release(a.Bird.Slot)
			e.collector.Record(telemetry.NewDespawnEvent(e.tick, e.simTime, a.Bird.ID))
			continue
		}
		sprites.Move(a.Bird.Slot, roundInt(a.Pos.X), roundInt(a.Pos.Y))
	}

	// Structural changes only after iteration
	for _, entity := range e.doomed {
		e.world.RemoveEntity(entity)
	}
	e.active -= len(e.doomed)
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
