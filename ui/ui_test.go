package ui

import (
	"math"
	"testing"

	"github.com/pthm-cable/murmur/game"
)

func TestCommandQueue(t *testing.T) {
	var q commandQueue
	if q.pop() != game.CommandNone {
		t.Error("empty queue should report none")
	}

	q.push(game.CommandNone)
	q.push(game.CommandReset)
	q.push(game.CommandTogglePause)

	if c := q.pop(); c != game.CommandReset {
		t.Errorf("first pop = %v, want reset", c)
	}
	if c := q.pop(); c != game.CommandTogglePause {
		t.Errorf("second pop = %v, want pause", c)
	}
	if c := q.pop(); c != game.CommandNone {
		t.Errorf("drained queue returned %v", c)
	}
}

func TestStatusCoverageAndLabel(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		coverage float64
		label    string
	}{
		{"empty pattern", Status{}, 1, "converging"},
		{"half", Status{Captured: 5, Targets: 10}, 0.5, "converging"},
		{"sweeping", Status{Captured: 9, Targets: 10, SweepArmed: true}, 0.9, "sweeping"},
		{"complete", Status{Captured: 10, Targets: 10}, 1, "complete"},
		{"paused wins", Status{Captured: 10, Targets: 10, Paused: true}, 1, "PAUSED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Coverage(); math.Abs(got-tt.coverage) > 0.001 {
				t.Errorf("coverage = %v, want %v", got, tt.coverage)
			}
			if got := tt.status.stateLabel(); got != tt.label {
				t.Errorf("label = %q, want %q", got, tt.label)
			}
		})
	}
}
