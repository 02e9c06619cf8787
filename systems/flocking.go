package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/config"
)

// separationCap bounds the separation force at very small distances, in cruise units.
const separationCap = 3.0

// Motion is the result of steering one agent for one tick.
type Motion struct {
	Pos       r2.Vec
	Vel       r2.Vec
	Precision bool // Agent flew straight at a target this tick
	Kicked    bool // Stuck detection randomized the velocity
}

// Flocker computes boids steering plus target attraction for snapshot agents.
type Flocker struct {
	agent    config.AgentConfig
	flock    config.FlockingConfig
	attract  config.AttractionConfig
	stuck    config.StuckConfig
	neighbor float64

	noise     *WingNoise
	neighbors []Neighbor
}

// NewFlocker creates a flocker from configuration.
func NewFlocker(cfg *config.Config, noise *WingNoise) *Flocker {
	return &Flocker{
		agent:     cfg.Agent,
		flock:     cfg.Flocking,
		attract:   cfg.Attraction,
		stuck:     cfg.Stuck,
		neighbor:  cfg.Derived.NeighborRadius,
		noise:     noise,
		neighbors: make([]Neighbor, 0, MaxQueryResults),
	}
}

// AttractionWeight returns the attraction weight for a captured fraction.
// The weight is monotone non-decreasing in the fraction.
func AttractionWeight(cfg config.AttractionConfig, capturedFrac float64) float64 {
	frac := clamp01(capturedFrac)
	exp := cfg.RampExponent
	if exp <= 0 {
		exp = 1
	}
	return cfg.BaseWeight + cfg.RampWeight*math.Pow(frac, exp)
}

// CruiseSpeed returns the agent's nominal speed, never above max speed.
func (f *Flocker) CruiseSpeed(b components.Bird) float64 {
	return math.Min(f.agent.MaxSpeed*b.SpeedMult, f.agent.MaxSpeed)
}

// Steer computes agent i's velocity and position after dt seconds.
// It reads only the snapshot, grid and target index.
func (f *Flocker) Steer(
	i int,
	agents []AgentState,
	grid *SpatialGrid,
	targets *TargetIndex,
	capturedFrac, simTime, dt float64,
	rng *rand.Rand,
) Motion {
	a := agents[i]
	cruise := f.CruiseSpeed(a.Bird)
	v := a.Vel

	target, dist, hasTarget := targets.Nearest(a.Pos)
	toTarget := r2.Vec{}
	if hasTarget {
		toTarget = r2.Sub(r2.Vec{X: float64(target.X), Y: float64(target.Y)}, a.Pos)
	}

	// Precision mode: fly straight at the target at damped speed, no noise
	if hasTarget && dist < f.attract.PrecisionRadius {
		vel := r2.Scale(cruise*f.attract.PrecisionDamping, unitOrZero(toTarget))
		if dist == 0 {
			vel = r2.Vec{}
		}
		vel = ClampSpeed(vel, f.agent.MaxSpeed)
		return Motion{Pos: r2.Add(a.Pos, r2.Scale(dt, vel)), Vel: vel, Precision: true}
	}

	var steer r2.Vec

	if f.flock.Enabled {
		sep, align, coh := f.neighborForces(i, agents, grid, cruise)
		steer = r2.Add(steer, r2.Scale(f.flock.SeparationWeight, sep))
		steer = r2.Add(steer, r2.Scale(f.flock.AlignmentWeight, align))
		steer = r2.Add(steer, r2.Scale(f.flock.CohesionWeight, coh))
	}

	if hasTarget {
		desired := r2.Scale(cruise, unitOrZero(toTarget))
		seek := r2.Sub(desired, v)
		steer = r2.Add(steer, r2.Scale(AttractionWeight(f.attract, capturedFrac), seek))
	}

	k := math.Min(f.agent.Steering*dt, 1)
	v = r2.Add(v, r2.Scale(k, steer))

	// Perturbation fades out as the agent closes on its target
	fade := 1.0
	if hasTarget {
		fade = clamp01(dist / (4 * f.attract.PrecisionRadius))
	}
	if fade > 0 {
		heading := unitOrZero(v)
		flap := f.agent.WingFlap * f.noise.Flap(a.Bird.Phase, simTime*f.agent.WingFlapFreq)
		v = r2.Add(v, r2.Scale(flap*fade*k, perp(heading)))
		if f.agent.Jitter > 0 {
			jitter := fromAngle(rng.Float64()*2*math.Pi, f.agent.Jitter*rng.Float64())
			v = r2.Add(v, r2.Scale(fade*k, jitter))
		}
	}

	v = f.limitSpeed(v, cruise, toTarget)
	return Motion{Pos: r2.Add(a.Pos, r2.Scale(dt, v)), Vel: v}
}

// neighborForces returns the separation, alignment and cohesion forces,
// each in velocity units.
func (f *Flocker) neighborForces(i int, agents []AgentState, grid *SpatialGrid, cruise float64) (sep, align, coh r2.Vec) {
	a := agents[i]
	f.neighbors = grid.QueryRadiusInto(f.neighbors[:0], a.Pos, f.neighbor, i, agents)

	var sepN, alignN, cohN int
	var meanVel, meanOffset r2.Vec
	for _, n := range f.neighbors {
		d := math.Sqrt(n.DistSq)
		if d > 0 && d < a.Bird.SeparationRadius {
			// Push away proportional to 1/d, capped near contact
			strength := math.Min(a.Bird.SeparationRadius/d, separationCap)
			sep = r2.Add(sep, r2.Scale(-strength*cruise/d, n.Delta))
			sepN++
		}
		if d < f.flock.AlignmentRadius {
			meanVel = r2.Add(meanVel, agents[n.Index].Vel)
			alignN++
		}
		if d < f.flock.CohesionRadius {
			meanOffset = r2.Add(meanOffset, n.Delta)
			cohN++
		}
	}

	if sepN > 0 {
		sep = r2.Scale(1/float64(sepN), sep)
	}
	if alignN > 0 {
		align = r2.Sub(r2.Scale(1/float64(alignN), meanVel), a.Vel)
	}
	if cohN > 0 && f.flock.CohesionRadius > 0 {
		// Spring toward the local center, at most cruise speed
		coh = r2.Scale(cruise/f.flock.CohesionRadius, r2.Scale(1/float64(cohN), meanOffset))
	}
	return sep, align, coh
}

// limitSpeed clamps v to the cruise speed and lifts it to the minimum speed.
// A lifted velocity is bent halfway toward the target direction so an agent
// braking against its target turns around instead of holding its old heading.
func (f *Flocker) limitSpeed(v r2.Vec, cruise float64, toward r2.Vec) r2.Vec {
	v = ClampSpeed(v, cruise)

	minSpeed := math.Min(f.agent.MinSpeed, cruise)
	if s := r2.Norm(v); s < minSpeed {
		dir := unitOrZero(r2.Add(unitOrZero(v), unitOrZero(toward)))
		if dir == (r2.Vec{}) {
			dir = unitOrZero(toward)
		}
		v = r2.Scale(minSpeed, dir)
	}
	return ClampSpeed(v, f.agent.MaxSpeed)
}

// CheckStuck advances b's stuck counter for its new position. Each tick the
// agent stays within epsilon of an anchor placed at most window ticks ago
// counts as idle; once the idle count exceeds the threshold, m's velocity is
// randomized.
func (f *Flocker) CheckStuck(b *components.Bird, m *Motion, rng *rand.Rand) {
	anchor := r2.Vec{X: b.AnchorX, Y: b.AnchorY}
	if r2.Norm(r2.Sub(m.Pos, anchor)) >= f.stuck.Epsilon {
		resetAnchor(b, m.Pos)
		b.StuckTicks = 0
		return
	}

	b.StuckTicks++
	b.AnchorAge++
	if b.AnchorAge >= f.stuck.WindowTicks {
		// Slide the window so slow drift is measured per window
		resetAnchor(b, m.Pos)
	}
	if b.StuckTicks <= f.stuck.Threshold {
		return
	}

	b.StuckTicks = 0
	resetAnchor(b, m.Pos)
	speed := math.Min(f.stuck.KickSpeed, f.CruiseSpeed(*b))
	m.Vel = ClampSpeed(fromAngle(rng.Float64()*2*math.Pi, speed), f.agent.MaxSpeed)
	m.Kicked = true
}

func resetAnchor(b *components.Bird, pos r2.Vec) {
	b.AnchorX, b.AnchorY = pos.X, pos.Y
	b.AnchorAge = 0
}
