package systems

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/murmur/pattern"
)

func moving(from, to r2.Vec) AgentState {
	return AgentState{Prev: from, Pos: to}
}

func TestScanRoundedPosition(t *testing.T) {
	targets := pattern.NewTargetSet([]pattern.Point{{3, 3}, {4, 3}, {10, 10}})
	captured := NewCapturedSet(targets)
	s := NewCaptureScanner(targets, 64, 32, 0.8, 0.5)

	tests := []struct {
		name string
		pos  r2.Vec
		want []pattern.Point
	}{
		{"exact", r2.Vec{X: 3, Y: 3}, []pattern.Point{{3, 3}}},
		{"rounds onto pixel", r2.Vec{X: 3.2, Y: 2.6}, []pattern.Point{{3, 3}}},
		{"between two pixels", r2.Vec{X: 3.5, Y: 3}, []pattern.Point{{3, 3}, {4, 3}}},
		{"too far", r2.Vec{X: 7, Y: 7}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Scan([]AgentState{moving(tt.pos, tt.pos)}, captured, nil)
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanSamplesPath(t *testing.T) {
	// A fast agent crossing a one-pixel stroke in one tick must capture every pixel.
	stroke := []pattern.Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	targets := pattern.NewTargetSet(stroke)
	captured := NewCapturedSet(targets)
	s := NewCaptureScanner(targets, 64, 32, 0.8, 0.5)

	got := s.Scan([]AgentState{moving(r2.Vec{X: -2, Y: 0.2}, r2.Vec{X: 6, Y: 0.2})}, captured, nil)
	if !slices.Equal(got, stroke) {
		t.Errorf("got %v, want %v", got, stroke)
	}
}

func TestScanIgnoresCaptured(t *testing.T) {
	targets := pattern.NewTargetSet([]pattern.Point{{1, 1}, {2, 1}})
	captured := NewCapturedSet(targets)
	captured.Merge([]pattern.Point{{1, 1}})
	s := NewCaptureScanner(targets, 64, 32, 0.8, 0.5)

	got := s.Scan([]AgentState{moving(r2.Vec{X: 0, Y: 1}, r2.Vec{X: 3, Y: 1})}, captured, nil)
	if !slices.Equal(got, []pattern.Point{{2, 1}}) {
		t.Errorf("got %v", got)
	}
}

func TestScanOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	var pts []pattern.Point
	for i := 0; i < 120; i++ {
		pts = append(pts, pattern.Point{X: rng.Intn(40), Y: rng.Intn(20)})
	}
	targets := pattern.NewTargetSet(pts)
	captured := NewCapturedSet(targets)
	s := NewCaptureScanner(targets, 64, 32, 0.9, 0.5)

	agents := make([]AgentState, 60)
	for i := range agents {
		from := r2.Vec{X: rng.Float64() * 40, Y: rng.Float64() * 20}
		to := r2.Add(from, r2.Vec{X: rng.Float64()*4 - 2, Y: rng.Float64()*4 - 2})
		agents[i] = moving(from, to)
	}

	want := slices.Clone(s.Scan(agents, captured, nil))
	if len(want) == 0 {
		t.Fatal("expected some captures in fixture")
	}

	for trial := 0; trial < 10; trial++ {
		shuffled := slices.Clone(agents)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := s.Scan(shuffled, captured, nil)
		if !slices.Equal(got, want) {
			t.Fatalf("trial %d: scan depends on agent order", trial)
		}
	}
}

func TestScanDoesNotMutate(t *testing.T) {
	targets := pattern.NewTargetSet([]pattern.Point{{1, 1}})
	captured := NewCapturedSet(targets)
	s := NewCaptureScanner(targets, 64, 32, 0.8, 0.5)

	s.Scan([]AgentState{moving(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 1, Y: 1})}, captured, nil)
	if captured.Len() != 0 {
		t.Error("scan must buffer captures, not apply them")
	}
}

func TestScanIgnoresOffCanvasSamples(t *testing.T) {
	targets := pattern.NewTargetSet([]pattern.Point{{0, 0}, {0, 5}, {9, 9}})
	s := NewCaptureScanner(targets, 10, 10, 0.8, 0.5)

	tests := []struct {
		name   string
		agents []AgentState
		want   []pattern.Point
	}{
		{
			"parked left of the edge",
			[]AgentState{
				moving(r2.Vec{X: -0.7, Y: 0}, r2.Vec{X: -0.7, Y: 0}),
				moving(r2.Vec{X: -0.75, Y: 5}, r2.Vec{X: -0.75, Y: 5}),
			},
			nil,
		},
		{
			"parked past the far corner",
			[]AgentState{moving(r2.Vec{X: 10.2, Y: 9.4}, r2.Vec{X: 10.2, Y: 9.4})},
			nil,
		},
		{
			"crossing the edge",
			[]AgentState{moving(r2.Vec{X: -3, Y: 5}, r2.Vec{X: 1, Y: 5})},
			[]pattern.Point{{0, 5}},
		},
		{
			"entering from above",
			[]AgentState{moving(r2.Vec{X: 9, Y: -4}, r2.Vec{X: 9, Y: 0.3})},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Scan(tt.agents, NewCapturedSet(targets), nil)
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFinalSweepTiming(t *testing.T) {
	f := NewFinalSweep(20, 2.5)
	const dt = 0.1

	// Above threshold: never arms
	if started, fire := f.Advance(21, 1, dt); started || fire || f.Armed() {
		t.Fatal("sweep armed above threshold")
	}

	started, fire := f.Advance(20, 1, dt)
	if !started || fire {
		t.Fatalf("expected sweep to start, got started=%v fire=%v", started, fire)
	}
	if f.Stalled() {
		t.Error("threshold arming reported as a stall")
	}

	ticks := 1
	for !fire {
		_, fire = f.Advance(5, 1, dt)
		ticks++
		if ticks > 100 {
			t.Fatal("sweep never fired")
		}
	}
	if ticks != 25 {
		t.Errorf("expected fire after 25 ticks of 0.1s, got %d", ticks)
	}
	if f.Armed() {
		t.Error("sweep should disarm after firing")
	}
}

func TestFinalSweepArmsOnStall(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		remaining int
	}{
		{"far above threshold", 20, 500},
		{"just above threshold", 20, 21},
		{"threshold of one", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const (
				timeout = 2.0
				dt      = 1.0 / 30
			)
			f := NewFinalSweep(tt.threshold, timeout)

			var armedAt, firedAt float64
			sim := 0.0
			for i := 0; i < 1000 && firedAt == 0; i++ {
				sim += dt
				started, fire := f.Advance(tt.remaining, 0, dt)
				if started {
					armedAt = sim
					if !f.Stalled() {
						t.Error("stall arming not reported")
					}
				}
				if fire {
					firedAt = sim
				}
			}

			if math.Abs(armedAt-timeout) > dt {
				t.Errorf("armed at %.3fs, want %.3fs", armedAt, timeout)
			}
			if firedAt == 0 || firedAt > 2*timeout+dt {
				t.Errorf("fired at %.3fs, want within %.3fs", firedAt, 2*timeout)
			}
		})
	}
}

func TestFinalSweepCaptureDefersStall(t *testing.T) {
	f := NewFinalSweep(5, 1)
	const dt = 0.1

	// A capture every 0.9s keeps the stall clock from reaching the timeout
	for i := 1; i <= 50; i++ {
		captured := 0
		if i%9 == 0 {
			captured = 1
		}
		if started, _ := f.Advance(100, captured, dt); started {
			t.Fatalf("sweep armed at tick %d despite steady captures", i)
		}
	}

	f.Reset()
	for i := 0; i < 9; i++ {
		if started, _ := f.Advance(100, 0, dt); started {
			t.Fatal("reset did not clear the stall clock")
		}
	}
	if started, _ := f.Advance(100, 0, dt); !started {
		t.Error("sweep should arm once the stall reaches the timeout")
	}
}

func TestFinalSweepDisarmsOnCompletion(t *testing.T) {
	f := NewFinalSweep(20, 1)
	f.Advance(3, 1, 0.5)
	if _, fire := f.Advance(0, 3, 0.6); fire {
		t.Error("sweep fired with nothing remaining")
	}
	if f.Armed() {
		t.Error("sweep should disarm when nothing remains")
	}
}
