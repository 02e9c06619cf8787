package game

import (
	"context"
	"time"
)

// Command is a host request handled between ticks.
type Command int

const (
	CommandNone Command = iota
	CommandQuit
	CommandReset
	CommandTogglePause
)

// Input is implemented by interactive hosts. Poll must not block.
type Input interface {
	Poll() Command
}

// SpeedControl is implemented by hosts that scale simulated time.
type SpeedControl interface {
	Speed() float64
}

// Clock provides wall time and frame pacing.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Runner drives an engine at a fixed simulated step until a stop condition.
type Runner struct {
	Engine *Engine

	// FPS sets the simulated step to 1/FPS. Zero uses canvas.target_fps.
	FPS int

	// Realtime waits out the remainder of each frame on the clock.
	Realtime bool

	// Stop after this many completed cycles or ticks. Zero means unlimited.
	MaxCycles int
	MaxTicks  int

	Input Input // May be nil
	Clock Clock // Nil uses the wall clock
}

// Run starts the engine if needed and ticks it until a limit is reached, the
// host quits or ctx is cancelled. Render failures stop the loop and are
// returned unchanged.
func (r *Runner) Run(ctx context.Context) error {
	e := r.Engine
	if e.State() == StateIdle {
		if err := e.Start(); err != nil {
			return err
		}
	}

	fps := r.FPS
	if fps <= 0 {
		fps = e.cfg.Canvas.TargetFPS
	}
	dt := 1 / float64(fps)
	frame := time.Duration(float64(time.Second) * dt)

	clock := r.Clock
	if clock == nil {
		clock = wallClock{}
	}
	speed, _ := r.Input.(SpeedControl)

	paused := false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := clock.Now()

		if r.Input != nil {
			switch r.Input.Poll() {
			case CommandQuit:
				return nil
			case CommandReset:
				if err := e.Reset(); err != nil {
					return err
				}
			case CommandTogglePause:
				paused = !paused
				e.log.Info("pause_toggled", "paused", paused, "tick", e.tick)
			}
		}

		step := dt
		if speed != nil {
			step *= max(speed.Speed(), 0)
		}

		var err error
		if paused {
			err = e.Render()
		} else {
			err = e.Tick(step)
		}
		if err != nil {
			return err
		}

		if r.MaxCycles > 0 && e.CompletedCycles() >= r.MaxCycles {
			return nil
		}
		if r.MaxTicks > 0 && int(e.TickCount()) >= r.MaxTicks {
			return nil
		}

		if r.Realtime {
			if err := clock.Sleep(ctx, frame-clock.Now().Sub(start)); err != nil {
				return err
			}
		}
	}
}
