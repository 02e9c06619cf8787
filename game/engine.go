// Package game runs the swarm-to-text convergence cycle: agents are spawned in
// waves, flock toward the uncaptured pixels of a target pattern and light them
// as they pass, until the whole pattern is drawn.
package game

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/pattern"
	"github.com/pthm-cable/murmur/renderer"
	"github.com/pthm-cable/murmur/systems"
	"github.com/pthm-cable/murmur/telemetry"
)

// ErrNotStarted is returned by Tick before Start has succeeded.
var ErrNotStarted = errors.New("engine not started")

// targetCellSize is the bucket size of the uncaptured-target index in pixels.
const targetCellSize = 8

// State is the engine lifecycle state.
type State int

const (
	StateIdle    State = iota // Not started
	StateRunning              // Converging on the pattern
	StateHolding              // Pattern complete, holding before the next cycle
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHolding:
		return "holding"
	default:
		return "idle"
	}
}

// Options configures an Engine.
type Options struct {
	Seed int64

	// Sink receives one frame per tick. Defaults to an in-memory sink.
	Sink renderer.Sink

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Output receives CSV telemetry. May be nil.
	Output *telemetry.OutputManager

	// LogStats logs progress and perf samples as they are produced.
	LogStats bool

	// Called when a cycle completes.
	OnCycle func(telemetry.CycleStats)

	// Called for every progress sample.
	OnProgress func(telemetry.ProgressSample)
}

// Engine holds the complete simulation state for one pattern.
type Engine struct {
	cfg      *config.Config
	provider pattern.Provider
	opts     Options
	log      *slog.Logger
	rng      *rand.Rand

	world *ecs.World

	birdMapper *ecs.Map3[components.Position, components.Velocity, components.Bird]
	birdFilter *ecs.Filter3[components.Position, components.Velocity, components.Bird]

	posMap  *ecs.Map1[components.Position]
	velMap  *ecs.Map1[components.Velocity]
	birdMap *ecs.Map1[components.Bird]

	grid    *systems.SpatialGrid
	flocker *systems.Flocker
	waves   *systems.WaveController
	sweep   *systems.FinalSweep
	backend *renderer.Backend

	targets  pattern.TargetSet
	captured *systems.CapturedSet
	index    *systems.TargetIndex
	scanner  *systems.CaptureScanner

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	last      telemetry.CycleStats

	state     State
	tick      int32
	clock     float64 // Simulated seconds since construction
	simTime   float64 // Simulated seconds since the cycle started
	hold      float64 // Simulated seconds spent holding the finished pattern
	cycle     int
	completed int
	nextID    uint32
	active    int

	// Per-tick scratch, reused across ticks
	agents  []systems.AgentState
	birds   []components.Bird
	motions []systems.Motion
	delta   []pattern.Point
	doomed  []ecs.Entity
}

// New creates an engine drawing provider's pattern. The configuration is
// copied. The engine stays idle until Start is called.
func New(cfg *config.Config, provider pattern.Provider, opts Options) *Engine {
	if cfg == nil || provider == nil {
		panic("game: New requires a config and a pattern provider")
	}
	cfg = cfg.Clone()
	cfg.Refresh()

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Sink == nil {
		opts.Sink = renderer.NewMemorySink(cfg.Canvas.Width, cfg.Canvas.Height)
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))
	w, h := float64(cfg.Canvas.Width), float64(cfg.Canvas.Height)

	return &Engine{
		cfg:      cfg,
		provider: provider,
		opts:     opts,
		log:      opts.Logger,
		rng:      rng,
		world:    world,

		birdMapper: ecs.NewMap3[components.Position, components.Velocity, components.Bird](world),
		birdFilter: ecs.NewFilter3[components.Position, components.Velocity, components.Bird](world),
		posMap:     ecs.NewMap1[components.Position](world),
		velMap:     ecs.NewMap1[components.Velocity](world),
		birdMap:    ecs.NewMap1[components.Bird](world),

		grid:    systems.NewSpatialGrid(w, h, cfg.Spawn.Margin, cfg.Flocking.GridCellSize),
		flocker: systems.NewFlocker(cfg, systems.NewWingNoise(opts.Seed)),
		waves:   systems.NewWaveController(cfg),
		sweep:   systems.NewFinalSweep(cfg.Capture.SweepThreshold, cfg.Capture.SweepTimeout),
		backend: renderer.NewBackend(cfg, opts.Sink),

		collector: telemetry.NewCollector(cfg.Telemetry.ProgressWindow),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}
}

// Config returns the engine's configuration. It must not be modified.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// IsComplete reports whether every target pixel of the current cycle is lit.
func (e *Engine) IsComplete() bool {
	return e.state != StateIdle && e.captured.Complete()
}

// Cycle returns the current cycle number, starting at 1.
func (e *Engine) Cycle() int {
	return e.cycle
}

// CompletedCycles returns how many cycles have reached full coverage.
func (e *Engine) CompletedCycles() int {
	return e.completed
}

// TickCount returns the number of ticks run since construction.
func (e *Engine) TickCount() int32 {
	return e.tick
}

// SimTime returns the simulated seconds since the current cycle started.
func (e *Engine) SimTime() float64 {
	return e.simTime
}

// ActiveAgents returns the number of live agents.
func (e *Engine) ActiveAgents() int {
	return e.active
}

// TargetCount returns the size of the current target set.
func (e *Engine) TargetCount() int {
	if e.captured == nil {
		return 0
	}
	return e.captured.Total()
}

// CapturedCount returns the number of lit target pixels.
func (e *Engine) CapturedCount() int {
	if e.captured == nil {
		return 0
	}
	return e.captured.Len()
}

// Captured returns the lit pixels in capture order.
func (e *Engine) Captured() []pattern.Point {
	if e.captured == nil {
		return nil
	}
	return e.captured.Order()
}

// Targets returns the current target set.
func (e *Engine) Targets() pattern.TargetSet {
	return e.targets
}

// SweepArmed reports whether the final sweep timer is running.
func (e *Engine) SweepArmed() bool {
	return e.sweep.Armed()
}

// LastCycle returns the statistics of the most recently completed cycle.
func (e *Engine) LastCycle() telemetry.CycleStats {
	return e.last
}

// Perf returns the rolling tick timing statistics.
func (e *Engine) Perf() telemetry.PerfStats {
	return e.perf.Stats()
}

// Agents returns a copy of every live agent's state.
func (e *Engine) Agents() []systems.AgentState {
	return e.snapshot(nil)
}

// SpawnAgent adds one agent outside the wave schedule. It returns false when
// the agent cap is reached.
func (e *Engine) SpawnAgent(pos, vel r2.Vec) bool {
	bird := components.Bird{
		SpeedMult:        1,
		SeparationRadius: e.cfg.Agent.SeparationRadiusMin,
	}
	vel = systems.ClampSpeed(vel, e.cfg.Agent.MaxSpeed)
	_, ok := e.spawnAgent(systems.Spawn{Pos: pos, Vel: vel, Bird: bird})
	return ok
}

// spawnAgent creates an entity and binds it to a sprite slot.
func (e *Engine) spawnAgent(s systems.Spawn) (ecs.Entity, bool) {
	if e.active >= e.cfg.Spawn.MaxAgents {
		return ecs.Entity{}, false
	}
	slot, ok := e.backend.Sprites().Acquire()
	if !ok {
		return ecs.Entity{}, false
	}

	bird := s.Bird
	bird.ID = e.nextID
	e.nextID++
	bird.Slot = slot
	bird.AnchorX, bird.AnchorY = s.Pos.X, s.Pos.Y
	bird.AnchorAge = 0
	bird.StuckTicks = 0

	pos := components.Position{X: s.Pos.X, Y: s.Pos.Y}
	vel := components.Velocity{X: s.Vel.X, Y: s.Vel.Y}
	entity := e.birdMapper.NewEntity(&pos, &vel, &bird)

	e.active++
	e.backend.Sprites().Move(slot, roundInt(pos.X), roundInt(pos.Y))
	e.collector.Record(telemetry.NewSpawnEvent(e.tick, e.simTime, bird.ID))
	return entity, true
}

// snapshot appends the state of every live agent to dst.
func (e *Engine) snapshot(dst []systems.AgentState) []systems.AgentState {
	query := e.birdFilter.Query()
	for query.Next() {
		pos, vel, bird := query.Get()
		p := pos.Vec()
		dst = append(dst, systems.AgentState{
			Entity: query.Entity(),
			Pos:    p,
			Prev:   p,
			Vel:    vel.Vec(),
			Bird:   *bird,
		})
	}
	return dst
}

// clearAgents removes every agent and parks all sprites.
func (e *Engine) clearAgents() {
	e.doomed = e.doomed[:0]
	query := e.birdFilter.Query()
	for query.Next() {
		e.doomed = append(e.doomed, query.Entity())
	}
	for _, entity := range e.doomed {
		e.world.RemoveEntity(entity)
	}
	e.doomed = e.doomed[:0]
	e.active = 0
	e.backend.Sprites().HideAll()
}
