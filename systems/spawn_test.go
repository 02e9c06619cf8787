package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/murmur/config"
)

func testWaves(t *testing.T, mutate func(*config.Config)) (*WaveController, *config.Config) {
	t.Helper()
	cfg := config.MustDefault()
	if mutate != nil {
		mutate(cfg)
	}
	cfg.Refresh()
	return NewWaveController(cfg), cfg
}

func TestWaveFiresImmediately(t *testing.T) {
	w, cfg := testWaves(t, nil)
	rng := rand.New(rand.NewSource(1))

	res := w.Update(cfg.Derived.DT, 1, 0, rng)
	if !res.Fired || res.Deferred {
		t.Fatalf("expected first wave on first update, got %+v", res)
	}
	if len(res.Spawns) != cfg.Spawn.MinBatch {
		t.Errorf("expected %d agents at zero progress, got %d", cfg.Spawn.MinBatch, len(res.Spawns))
	}

	// Next wave only after the interval elapses
	if res := w.Update(cfg.Derived.DT, 1, len(res.Spawns), rng); res.Fired {
		t.Error("second wave fired before its interval")
	}
}

func TestWaveDirectionsRoundRobin(t *testing.T) {
	tests := []struct {
		directions int
		want       []Direction
	}{
		{4, []Direction{North, East, South, West, North}},
		{8, []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest, North}},
	}

	for _, tt := range tests {
		w, _ := testWaves(t, func(c *config.Config) { c.Spawn.Directions = tt.directions })
		rng := rand.New(rand.NewSource(1))

		for i, want := range tt.want {
			res := w.Update(100, 1, 0, rng)
			if res.Direction != want {
				t.Errorf("%d directions, wave %d: got %v, want %v", tt.directions, i, res.Direction, want)
			}
		}
	}
}

func TestWaveRespectsCap(t *testing.T) {
	w, _ := testWaves(t, func(c *config.Config) {
		c.Spawn.MaxAgents = 50
		c.Spawn.MinBatch = 10
		c.Spawn.MaxBatch = 10
	})
	rng := rand.New(rand.NewSource(1))

	active := 0
	deferred := 0
	for i := 0; i < 20; i++ {
		res := w.Update(100, 0.5, active, rng)
		if res.Deferred {
			deferred++
			continue
		}
		active += len(res.Spawns)
		if active > 50 {
			t.Fatalf("active %d exceeds cap", active)
		}
	}
	if active != 50 {
		t.Errorf("expected to fill cap of 50, got %d", active)
	}
	if deferred != 15 {
		t.Errorf("expected 15 deferred waves, got %d", deferred)
	}

	// Partial room yields a partial batch
	res := w.Update(100, 0.5, 47, rng)
	if len(res.Spawns) != 3 {
		t.Errorf("expected 3 agents to fill remaining room, got %d", len(res.Spawns))
	}
}

func TestWaveAdaptsToProgress(t *testing.T) {
	w, cfg := testWaves(t, nil)

	if got := w.BatchSize(1); got != cfg.Spawn.MinBatch {
		t.Errorf("batch at start: got %d, want %d", got, cfg.Spawn.MinBatch)
	}
	if got := w.BatchSize(0); got != cfg.Spawn.MaxBatch {
		t.Errorf("batch at end: got %d, want %d", got, cfg.Spawn.MaxBatch)
	}
	if math.Abs(w.Interval(1)-cfg.Spawn.MaxInterval) > 1e-12 {
		t.Errorf("interval at start: got %f", w.Interval(1))
	}
	if math.Abs(w.Interval(0)-cfg.Spawn.MinInterval) > 1e-12 {
		t.Errorf("interval at end: got %f", w.Interval(0))
	}
	if w.Interval(0.5) >= w.Interval(0.9) {
		t.Error("interval should shrink as progress grows")
	}
}

func TestWaveFormation(t *testing.T) {
	w, cfg := testWaves(t, func(c *config.Config) {
		c.Spawn.MinBatch = 9
		c.Spawn.MaxBatch = 9
	})
	rng := rand.New(rand.NewSource(2))
	width, height := float64(cfg.Canvas.Width), float64(cfg.Canvas.Height)
	center := r2.Vec{X: width / 2, Y: height / 2}

	for wave := 0; wave < 8; wave++ {
		res := w.Update(100, 1, 0, rng)
		if len(res.Spawns) != 9 {
			t.Fatalf("expected 9 spawns, got %d", len(res.Spawns))
		}

		for i, s := range res.Spawns {
			onCanvas := s.Pos.X >= 0 && s.Pos.Y >= 0 && s.Pos.X < width && s.Pos.Y < height
			if onCanvas {
				t.Errorf("wave %v agent %d spawned on canvas at %v", res.Direction, i, s.Pos)
			}
			if w.OutOfBounds(s.Pos) {
				t.Errorf("wave %v agent %d spawned beyond despawn margin at %v", res.Direction, i, s.Pos)
			}
			if r2.Norm(s.Vel) > cfg.Agent.MaxSpeed+1e-9 {
				t.Errorf("spawn speed %f exceeds max", r2.Norm(s.Vel))
			}
			// Heading points into the canvas
			if r2.Dot(s.Vel, r2.Sub(center, s.Pos)) <= 0 {
				t.Errorf("wave %v agent %d heads away from canvas", res.Direction, i)
			}
			if s.Bird.SeparationRadius < cfg.Agent.SeparationRadiusMin || s.Bird.SeparationRadius > cfg.Agent.SeparationRadiusMax {
				t.Errorf("separation radius %f out of range", s.Bird.SeparationRadius)
			}
			if s.Bird.Wave != res.Wave {
				t.Errorf("spawn tagged wave %d, want %d", s.Bird.Wave, res.Wave)
			}
		}
	}
}

func TestWaveResetRewinds(t *testing.T) {
	w, _ := testWaves(t, nil)
	rng := rand.New(rand.NewSource(1))
	w.Update(100, 1, 0, rng)
	w.Update(100, 1, 0, rng)

	w.Reset()
	if w.NextDirection() != North {
		t.Errorf("expected cursor rewound to north, got %v", w.NextDirection())
	}
	if res := w.Update(0, 1, 0, rng); !res.Fired || res.Wave != 1 {
		t.Errorf("expected first wave to fire again after reset, got %+v", res)
	}
}
