// Package ui provides the raylib window host: a texture-backed display sink
// with a raygui control panel.
package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Theme defines colors and sizes for the HUD.
type Theme struct {
	PanelBg     rl.Color
	PanelBorder rl.Color
	Letterbox   rl.Color

	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	BarBg         rl.Color
	BarFill       rl.Color
	BarFillSweep  rl.Color

	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the standard HUD theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 230},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		Letterbox:      rl.Color{R: 10, G: 10, B: 12, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillSweep:   rl.Color{R: 200, G: 180, B: 100, A: 255},
		Padding:        10,
		LineHeight:     18,
		LabelWidth:     70,
		BarHeight:      12,
		FontSize:       14,
		HeaderFontSize: 16,
	}
}

// drawPanel draws a panel background with border.
func (t Theme) drawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, t.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, t.PanelBorder)
}

// drawLabelValue draws a label and value on one line and returns the next Y.
func (t Theme) drawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, t.FontSize, t.LabelColor)
	rl.DrawText(value, x+t.LabelWidth, y, t.FontSize, t.ValueColor)
	return y + t.LineHeight
}

// drawBar draws a [0, 1] progress bar and returns the next Y.
func (t Theme) drawBar(x, y int32, label string, value float64, width int32, fill rl.Color) int32 {
	value = min(max(value, 0), 1)

	barX := x + t.LabelWidth
	barWidth := width - t.LabelWidth - 50

	rl.DrawText(label+":", x, y, t.FontSize, t.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, t.BarHeight, t.BarBg)
	rl.DrawRectangle(barX, y+2, int32(float64(barWidth)*value), t.BarHeight, fill)
	rl.DrawText(fmt.Sprintf("%3.0f%%", value*100), barX+barWidth+5, y, t.FontSize, t.ValueColor)

	return y + t.LineHeight + 2
}
