// Attraction ramp preview tool - plots target attraction weight against the
// captured fraction with sliders for the ramp parameters.
//
// Usage: go run ./cmd/rampview [-config base.yaml] [-out ramp.yaml]
package main

import (
	"flag"
	"fmt"
	"log"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 560
	plotSize     = 512
	panelWidth   = windowWidth - plotSize - 60
	plotSamples  = 128
)

// sampleCurve returns n+1 weights for captured fractions 0, 1/n, ..., 1.
func sampleCurve(cfg config.AttractionConfig, n int) []float64 {
	out := make([]float64, n+1)
	for i := range out {
		out[i] = systems.AttractionWeight(cfg, float64(i)/float64(n))
	}
	return out
}

// plotMax returns the y-axis ceiling for a curve, at least 1.
func plotMax(curve []float64) float64 {
	top := 1.0
	for _, w := range curve {
		top = max(top, w)
	}
	return top
}

// slider draws a labelled slider and returns the new value.
func slider(x, y float32, label string, value, lo, hi float32) float32 {
	rl.DrawText(label, int32(x), int32(y), 14, rl.Gray)
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: y + 18, Width: float32(panelWidth - 80), Height: 20},
		fmt.Sprintf("%.2f", lo), fmt.Sprintf("%.2f", hi),
		value, lo, hi,
	)
	rl.DrawText(fmt.Sprintf("%.3f", v), int32(x+float32(panelWidth-70)), int32(y+20), 16, rl.DarkGray)
	return v
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	outPath := flag.String("out", "ramp_config.yaml", "Where Save writes the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	initial := cfg.Attraction

	rl.InitWindow(windowWidth, windowHeight, "Attraction Ramp Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	status := ""
	for !rl.WindowShouldClose() {
		curve := sampleCurve(cfg.Attraction, plotSamples)
		top := plotMax(curve)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Plot
		const px, py = 30, 20
		rl.DrawRectangleLines(px, py, plotSize, plotSize, rl.DarkGray)
		for i := 1; i < 4; i++ {
			gy := int32(py + plotSize*i/4)
			rl.DrawLine(px, gy, px+plotSize, gy, rl.LightGray)
		}
		toScreen := func(i int, w float64) rl.Vector2 {
			return rl.Vector2{
				X: float32(px) + float32(plotSize)*float32(i)/plotSamples,
				Y: float32(py+plotSize) - float32(plotSize)*float32(w/top),
			}
		}
		for i := 1; i < len(curve); i++ {
			rl.DrawLineEx(toScreen(i-1, curve[i-1]), toScreen(i, curve[i]), 2, rl.DarkBlue)
		}
		rl.DrawText("0", px-12, py+plotSize-8, 14, rl.Gray)
		rl.DrawText(fmt.Sprintf("%.2f", top), px+4, py+4, 14, rl.Gray)
		rl.DrawText("captured fraction", px+plotSize/2-60, py+plotSize+8, 14, rl.Gray)

		// Control panel
		panelX := float32(plotSize + 50)
		panelY := float32(20)
		rl.DrawText("Attraction Ramp", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		a := &cfg.Attraction
		a.BaseWeight = float64(slider(panelX, panelY, "Base weight", float32(a.BaseWeight), 0, 1))
		panelY += 50
		a.RampWeight = float64(slider(panelX, panelY, "Ramp weight", float32(a.RampWeight), 0, 2))
		panelY += 50
		a.RampExponent = float64(slider(panelX, panelY, "Ramp exponent", float32(a.RampExponent), 0.25, 4))
		panelY += 55

		rl.DrawText(fmt.Sprintf("weight(0) = %.3f   weight(0.5) = %.3f   weight(1) = %.3f",
			curve[0], curve[plotSamples/2], curve[plotSamples]), int32(panelX), int32(panelY), 14, rl.DarkGray)
		panelY += 30

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Save") {
			if err := cfg.WriteYAML(*outPath); err != nil {
				status = err.Error()
			} else {
				status = "saved " + *outPath
			}
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset") {
			cfg.Attraction = initial
			status = ""
		}
		panelY += 45
		rl.DrawText(status, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.EndDrawing()
	}
}
