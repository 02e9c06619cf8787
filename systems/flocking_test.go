package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/pattern"
)

func testFlocker(t *testing.T, mutate func(*config.Config)) (*Flocker, *config.Config) {
	t.Helper()
	cfg := config.MustDefault()
	if mutate != nil {
		mutate(cfg)
	}
	cfg.Refresh()
	return NewFlocker(cfg, NewWingNoise(1)), cfg
}

func bird() components.Bird {
	return components.Bird{SpeedMult: 1, SeparationRadius: 3}
}

func indexFor(points ...pattern.Point) *TargetIndex {
	c := NewCapturedSet(pattern.NewTargetSet(points))
	ix := NewTargetIndex(64, 32, 8)
	ix.Rebuild(c)
	return ix
}

func TestAttractionWeightMonotone(t *testing.T) {
	tests := []config.AttractionConfig{
		{BaseWeight: 0.1, RampWeight: 0.5, RampExponent: 1},
		{BaseWeight: 0.2, RampWeight: 1.0, RampExponent: 2.5},
		{BaseWeight: 0.0, RampWeight: 0.8, RampExponent: 0.5},
	}

	for _, cfg := range tests {
		prev := -1.0
		for i := 0; i <= 20; i++ {
			w := AttractionWeight(cfg, float64(i)/20)
			if w < prev {
				t.Errorf("weight decreased at %d/20: %f < %f", i, w, prev)
			}
			prev = w
		}
		if math.Abs(AttractionWeight(cfg, 0)-cfg.BaseWeight) > 1e-12 {
			t.Errorf("weight at 0 should equal base weight")
		}
		if math.Abs(AttractionWeight(cfg, 1)-(cfg.BaseWeight+cfg.RampWeight)) > 1e-12 {
			t.Errorf("weight at 1 should equal base + ramp")
		}
	}
}

func TestSteerSpeedNeverExceedsMax(t *testing.T) {
	f, cfg := testFlocker(t, nil)
	rng := rand.New(rand.NewSource(11))

	agents := make([]AgentState, 40)
	for i := range agents {
		b := bird()
		b.SpeedMult = 0.7 + rng.Float64()*0.3
		b.Phase = rng.Float64() * 6
		agents[i] = AgentState{
			Pos:  r2.Vec{X: 20 + rng.Float64()*6, Y: 10 + rng.Float64()*6},
			Vel:  r2.Vec{X: rng.Float64()*200 - 100, Y: rng.Float64()*200 - 100}, // deliberately too fast
			Bird: b,
		}
	}
	grid := NewSpatialGrid(64, 32, 25, cfg.Flocking.GridCellSize)
	grid.Rebuild(agents)
	targets := indexFor(pattern.Point{X: 30, Y: 16}, pattern.Point{X: 10, Y: 5})

	for i := range agents {
		m := f.Steer(i, agents, grid, targets, 0.5, 1.0, cfg.Derived.DT, rng)
		if s := r2.Norm(m.Vel); s > cfg.Agent.MaxSpeed+1e-9 {
			t.Errorf("agent %d speed %f exceeds max %f", i, s, cfg.Agent.MaxSpeed)
		}
	}
}

func TestSteerPrecisionMode(t *testing.T) {
	f, cfg := testFlocker(t, nil)
	rng := rand.New(rand.NewSource(1))

	agents := []AgentState{{Pos: r2.Vec{X: 9, Y: 5}, Vel: r2.Vec{X: 0, Y: 30}, Bird: bird()}}
	grid := NewSpatialGrid(64, 32, 25, cfg.Flocking.GridCellSize)
	grid.Rebuild(agents)
	targets := indexFor(pattern.Point{X: 10, Y: 5})

	m := f.Steer(0, agents, grid, targets, 0, 0, cfg.Derived.DT, rng)
	if !m.Precision {
		t.Fatal("expected precision mode within precision radius")
	}

	want := cfg.Agent.MaxSpeed * cfg.Attraction.PrecisionDamping
	if math.Abs(r2.Norm(m.Vel)-want) > 1e-9 {
		t.Errorf("expected damped speed %f, got %f", want, r2.Norm(m.Vel))
	}
	// Straight at the target, no lateral component
	if math.Abs(m.Vel.Y) > 1e-12 || m.Vel.X <= 0 {
		t.Errorf("expected velocity along +x, got %v", m.Vel)
	}
}

func TestSteerSeeksTarget(t *testing.T) {
	f, cfg := testFlocker(t, func(c *config.Config) {
		c.Flocking.Enabled = false
		c.Agent.Jitter = 0
		c.Agent.WingFlap = 0
	})
	rng := rand.New(rand.NewSource(1))

	// Moving away from the target; attraction must turn it around.
	a := AgentState{Pos: r2.Vec{X: 30, Y: 16}, Vel: r2.Vec{X: -20, Y: 0}, Bird: bird()}
	targets := indexFor(pattern.Point{X: 50, Y: 16})
	grid := NewSpatialGrid(64, 32, 25, cfg.Flocking.GridCellSize)

	for tick := 0; tick < 300; tick++ {
		agents := []AgentState{a}
		m := f.Steer(0, agents, grid, targets, 1, float64(tick)*cfg.Derived.DT, cfg.Derived.DT, rng)
		a.Pos, a.Vel = m.Pos, m.Vel
		if m.Precision {
			return
		}
	}
	t.Errorf("agent never reached the target, ended at %v", a.Pos)
}

func TestSeparationPushesApart(t *testing.T) {
	f, cfg := testFlocker(t, func(c *config.Config) {
		c.Flocking.AlignmentWeight = 0
		c.Flocking.CohesionWeight = 0
		c.Agent.Jitter = 0
		c.Agent.WingFlap = 0
	})
	rng := rand.New(rand.NewSource(1))

	agents := []AgentState{
		{Pos: r2.Vec{X: 20, Y: 10}, Vel: r2.Vec{X: 0, Y: 10}, Bird: bird()},
		{Pos: r2.Vec{X: 21, Y: 10}, Vel: r2.Vec{X: 0, Y: 10}, Bird: bird()},
	}
	grid := NewSpatialGrid(64, 32, 25, cfg.Flocking.GridCellSize)
	grid.Rebuild(agents)
	empty := indexFor()

	left := f.Steer(0, agents, grid, empty, 0, 0, cfg.Derived.DT, rng)
	right := f.Steer(1, agents, grid, empty, 0, 0, cfg.Derived.DT, rng)
	if left.Vel.X >= 0 {
		t.Errorf("left agent should be pushed toward -x, got %v", left.Vel)
	}
	if right.Vel.X <= 0 {
		t.Errorf("right agent should be pushed toward +x, got %v", right.Vel)
	}
}

func TestSteerMinimumSpeed(t *testing.T) {
	f, cfg := testFlocker(t, func(c *config.Config) {
		c.Flocking.Enabled = false
		c.Agent.Jitter = 0
		c.Agent.WingFlap = 0
	})
	rng := rand.New(rand.NewSource(1))

	agents := []AgentState{{Pos: r2.Vec{X: 5, Y: 5}, Vel: r2.Vec{}, Bird: bird()}}
	grid := NewSpatialGrid(64, 32, 25, cfg.Flocking.GridCellSize)
	m := f.Steer(0, agents, grid, indexFor(pattern.Point{X: 40, Y: 5}), 0, 0, cfg.Derived.DT, rng)

	if s := r2.Norm(m.Vel); s < cfg.Agent.MinSpeed-1e-9 {
		t.Errorf("expected at least min speed %f, got %f", cfg.Agent.MinSpeed, s)
	}
}

func TestCheckStuckKicks(t *testing.T) {
	f, cfg := testFlocker(t, nil)
	rng := rand.New(rand.NewSource(5))

	b := bird()
	b.AnchorX, b.AnchorY = 10, 10
	kicked := 0
	for tick := 0; tick <= cfg.Stuck.Threshold; tick++ {
		m := Motion{Pos: r2.Vec{X: 10.01, Y: 10}}
		f.CheckStuck(&b, &m, rng)
		if m.Kicked {
			kicked++
			if s := r2.Norm(m.Vel); s <= 0 || s > cfg.Agent.MaxSpeed+1e-9 {
				t.Errorf("kick speed %f out of range", s)
			}
		}
	}
	if kicked != 1 {
		t.Errorf("expected exactly one kick after %d idle ticks, got %d", cfg.Stuck.Threshold+1, kicked)
	}

	// Moving agents never accumulate stuck ticks
	b = bird()
	for tick := 0; tick < 3*cfg.Stuck.WindowTicks; tick++ {
		m := Motion{Pos: r2.Vec{X: float64(tick), Y: 0}}
		f.CheckStuck(&b, &m, rng)
		if m.Kicked {
			t.Fatal("moving agent was kicked")
		}
	}
}

func TestCheckStuckThresholdAndWindow(t *testing.T) {
	tests := []struct {
		name      string
		window    int
		threshold int
		step      float64 // Per-tick drift in pixels
		wantKick  int     // Tick of the first kick, or -1
	}{
		{"parked kicks after threshold", 30, 5, 0, 6},
		{"threshold longer than window", 4, 10, 0, 11},
		{"slow drift within a window", 10, 20, 0.005, 21},
		{"drift past epsilon per window", 10, 20, 0.02, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, cfg := testFlocker(t, func(c *config.Config) {
				c.Stuck.WindowTicks = tt.window
				c.Stuck.Threshold = tt.threshold
				c.Stuck.Epsilon = 0.1
			})
			rng := rand.New(rand.NewSource(9))

			b := bird()
			got := -1
			for tick := 1; tick <= 3*tt.threshold; tick++ {
				m := Motion{Pos: r2.Vec{X: 10 + tt.step*float64(tick), Y: 10}}
				if tick == 1 {
					b.AnchorX, b.AnchorY = m.Pos.X, m.Pos.Y
				}
				f.CheckStuck(&b, &m, rng)
				if m.Kicked {
					got = tick
					break
				}
			}
			if got != tt.wantKick {
				t.Errorf("first kick at tick %d, want %d (window %d, threshold %d, epsilon %g)",
					got, tt.wantKick, tt.window, tt.threshold, cfg.Stuck.Epsilon)
			}
		})
	}
}

func TestWingNoiseRange(t *testing.T) {
	n := NewWingNoise(42)
	for i := 0; i < 1000; i++ {
		v := n.Flap(float64(i)*0.37, float64(i)*0.1)
		if v < -1 || v > 1 {
			t.Fatalf("flap %f out of [-1, 1]", v)
		}
	}
}
