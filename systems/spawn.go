package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/config"
)

// Direction identifies the edge or corner a wave enters from.
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var directionNames = [...]string{"north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}

// String returns the direction name.
func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "unknown"
	}
	return directionNames[d]
}

// Spawn describes one agent to be created.
type Spawn struct {
	Pos  r2.Vec
	Vel  r2.Vec
	Bird components.Bird
}

// WaveResult describes what the wave controller did this tick.
type WaveResult struct {
	Fired     bool // A wave was due this tick
	Deferred  bool // The wave was skipped because the agent cap was reached
	Direction Direction
	Wave      uint32
	Spawns    []Spawn
}

// WaveController injects batches of agents from the canvas edges.
// Directions are used round-robin; batch size grows and the interval shrinks
// as the cycle progresses.
type WaveController struct {
	cfg    config.SpawnConfig
	agent  config.AgentConfig
	width  float64
	height float64

	order  []Direction
	cursor int
	timer  float64
	wave   uint32
	spawns []Spawn
}

// NewWaveController creates a wave controller from configuration.
func NewWaveController(cfg *config.Config) *WaveController {
	order := []Direction{North, East, South, West}
	if cfg.Spawn.Directions == 8 {
		order = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}
	}

	w := &WaveController{
		cfg:    cfg.Spawn,
		agent:  cfg.Agent,
		width:  float64(cfg.Canvas.Width),
		height: float64(cfg.Canvas.Height),
		order:  order,
	}
	w.Reset()
	return w
}

// Reset rewinds the direction cursor and arms the first wave for the next update.
func (w *WaveController) Reset() {
	w.cursor = 0
	w.wave = 0
	w.timer = math.Inf(1)
}

// BatchSize returns the wave size for the given remaining fraction.
func (w *WaveController) BatchSize(remainingFrac float64) int {
	progress := 1 - clamp01(remainingFrac)
	return int(math.Round(lerp(float64(w.cfg.MinBatch), float64(w.cfg.MaxBatch), progress)))
}

// Interval returns the seconds between waves for the given remaining fraction.
func (w *WaveController) Interval(remainingFrac float64) float64 {
	progress := 1 - clamp01(remainingFrac)
	return lerp(w.cfg.MaxInterval, w.cfg.MinInterval, progress)
}

// NextDirection returns the direction the next wave will use.
func (w *WaveController) NextDirection() Direction {
	return w.order[w.cursor]
}

// Update advances the wave timer by dt. When a wave is due it returns the
// agents to create, never more than the cap allows. The returned spawns are
// reused on the next call.
func (w *WaveController) Update(dt, remainingFrac float64, active int, rng *rand.Rand) WaveResult {
	w.timer += dt
	if w.timer < w.Interval(remainingFrac) {
		return WaveResult{}
	}
	w.timer = 0

	dir := w.order[w.cursor]
	room := w.cfg.MaxAgents - active
	if room <= 0 {
		return WaveResult{Fired: true, Deferred: true, Direction: dir}
	}

	n := min(w.BatchSize(remainingFrac), room)
	w.cursor = (w.cursor + 1) % len(w.order)
	w.wave++
	w.spawns = w.formation(w.spawns[:0], dir, n, rng)

	return WaveResult{Fired: true, Direction: dir, Wave: w.wave, Spawns: w.spawns}
}

// formation lays out n agents in a grid behind an edge point, all sharing
// the wave heading plus a small per-agent jitter.
func (w *WaveController) formation(dst []Spawn, dir Direction, n int, rng *rand.Rand) []Spawn {
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	spacing := w.cfg.FormationSpacing

	// Push the origin out by half the formation width so no agent starts on the canvas
	base := w.edgePoint(dir, w.cfg.EdgeInset+float64(cols-1)/2*spacing, rng)

	// Aim at a point near the canvas center
	aim := r2.Vec{
		X: w.width/2 + (rng.Float64()-0.5)*w.width/2,
		Y: w.height/2 + (rng.Float64()-0.5)*w.height/2,
	}
	heading := unitOrZero(r2.Sub(aim, base))
	angle := math.Atan2(heading.Y, heading.X)
	side := perp(heading)

	for j := 0; j < n; j++ {
		row := j / cols
		col := j % cols
		lateral := (float64(col) - float64(cols-1)/2) * spacing
		depth := float64(row) * spacing
		pos := r2.Add(base, r2.Add(r2.Scale(lateral, side), r2.Scale(-depth, heading)))

		bird := components.Bird{
			Wave:             w.wave,
			Phase:            rng.Float64() * 2 * math.Pi,
			SpeedMult:        lerp(w.agent.SpeedMultMin, w.agent.SpeedMultMax, rng.Float64()),
			SeparationRadius: lerp(w.agent.SeparationRadiusMin, w.agent.SeparationRadiusMax, rng.Float64()),
		}

		cruise := math.Min(w.agent.MaxSpeed*bird.SpeedMult, w.agent.MaxSpeed)
		speed := cruise * lerp(w.cfg.SpeedMin, w.cfg.SpeedMax, rng.Float64())
		jitter := (rng.Float64()*2 - 1) * w.cfg.HeadingJitter
		vel := ClampSpeed(fromAngle(angle+jitter, speed), w.agent.MaxSpeed)

		dst = append(dst, Spawn{Pos: pos, Vel: vel, Bird: bird})
	}
	return dst
}

// edgePoint returns the wave origin just outside the canvas for dir.
func (w *WaveController) edgePoint(dir Direction, inset float64, rng *rand.Rand) r2.Vec {
	alongX := w.width * lerp(0.25, 0.75, rng.Float64())
	alongY := w.height * lerp(0.25, 0.75, rng.Float64())
	left, right := -inset, w.width+inset
	top, bottom := -inset, w.height+inset

	switch dir {
	case North:
		return r2.Vec{X: alongX, Y: top}
	case NorthEast:
		return r2.Vec{X: right, Y: top}
	case East:
		return r2.Vec{X: right, Y: alongY}
	case SouthEast:
		return r2.Vec{X: right, Y: bottom}
	case South:
		return r2.Vec{X: alongX, Y: bottom}
	case SouthWest:
		return r2.Vec{X: left, Y: bottom}
	case West:
		return r2.Vec{X: left, Y: alongY}
	default:
		return r2.Vec{X: left, Y: top}
	}
}

// OutOfBounds reports whether p lies beyond the canvas plus the despawn margin.
func (w *WaveController) OutOfBounds(p r2.Vec) bool {
	m := w.cfg.Margin
	return p.X < -m || p.Y < -m || p.X > w.width+m || p.Y > w.height+m
}
