package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/murmur/game"
)

// Speed slider range as a multiple of real time.
const (
	MinSpeed = 0.25
	MaxSpeed = 4.0
)

// Status is the engine state shown in the HUD.
type Status struct {
	Cycle      int
	Captured   int
	Targets    int
	Agents     int
	SimTime    float64
	SweepArmed bool
	Paused     bool
	FPS        int32
}

// Coverage returns the captured fraction, 1 for an empty pattern.
func (s Status) Coverage() float64 {
	if s.Targets == 0 {
		return 1
	}
	return float64(s.Captured) / float64(s.Targets)
}

// StatusOf reads the HUD status from an engine.
func StatusOf(e *game.Engine) Status {
	return Status{
		Cycle:      e.Cycle(),
		Captured:   e.CapturedCount(),
		Targets:    e.TargetCount(),
		Agents:     e.ActiveAgents(),
		SimTime:    e.SimTime(),
		SweepArmed: e.SweepArmed(),
	}
}

// stateLabel returns the short run state shown next to the buttons.
func (s Status) stateLabel() string {
	switch {
	case s.Paused:
		return "PAUSED"
	case s.Targets > 0 && s.Captured == s.Targets:
		return "complete"
	case s.SweepArmed:
		return "sweeping"
	default:
		return "converging"
	}
}

// HUD draws the control panel and reports button presses.
type HUD struct {
	theme Theme
	speed float32
	width int32
}

// NewHUD creates a HUD panel of the given width.
func NewHUD(width int32) *HUD {
	return &HUD{theme: DefaultTheme(), speed: 1, width: width}
}

// Speed returns the simulated-time multiplier selected on the slider.
func (h *HUD) Speed() float64 {
	return float64(h.speed)
}

// Draw renders the panel at (x, y) and returns the command triggered by a
// button this frame.
func (h *HUD) Draw(x, y int32, s Status) game.Command {
	t := h.theme
	height := 7*t.LineHeight + 3*t.Padding + 60
	t.drawPanel(x, y, h.width, height)

	cx := x + t.Padding
	cy := y + t.Padding
	rl.DrawText("murmur", cx, cy, t.HeaderFontSize, t.SectionHeader)
	rl.DrawText(s.stateLabel(), cx+t.LabelWidth, cy, t.FontSize, t.ValueColor)
	cy += t.LineHeight + 4

	cy = t.drawLabelValue(cx, cy, "Cycle", fmt.Sprintf("%d", s.Cycle))
	cy = t.drawLabelValue(cx, cy, "Pixels", fmt.Sprintf("%d / %d", s.Captured, s.Targets))
	cy = t.drawLabelValue(cx, cy, "Agents", fmt.Sprintf("%d", s.Agents))
	cy = t.drawLabelValue(cx, cy, "Time", fmt.Sprintf("%.1fs  %d fps", s.SimTime, s.FPS))

	fill := t.BarFill
	if s.SweepArmed {
		fill = t.BarFillSweep
	}
	cy = t.drawBar(cx, cy, "Coverage", s.Coverage(), h.width-2*t.Padding, fill)
	cy += 4

	rl.DrawText("Speed", cx, cy+3, t.FontSize, t.LabelColor)
	h.speed = gui.SliderBar(
		rl.Rectangle{X: float32(cx + t.LabelWidth), Y: float32(cy), Width: float32(h.width - 2*t.Padding - t.LabelWidth - 50), Height: 18},
		"", fmt.Sprintf("%.2fx", h.speed),
		h.speed, MinSpeed, MaxSpeed,
	)
	cy += 26

	cmd := game.CommandNone
	pauseText := "Pause"
	if s.Paused {
		pauseText = "Resume"
	}
	if gui.Button(rl.Rectangle{X: float32(cx), Y: float32(cy), Width: 90, Height: 26}, pauseText) {
		cmd = game.CommandTogglePause
	}
	if gui.Button(rl.Rectangle{X: float32(cx + 100), Y: float32(cy), Width: 90, Height: 26}, "Reset") {
		cmd = game.CommandReset
	}
	return cmd
}
