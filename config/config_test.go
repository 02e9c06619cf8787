package config

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsValid(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("embedded defaults do not validate: %v", err)
	}

	if math.Abs(cfg.Derived.DT-1.0/30.0) > 1e-12 {
		t.Errorf("expected DT 1/30, got %f", cfg.Derived.DT)
	}
	if cfg.Derived.NeighborRadius != 12 {
		t.Errorf("expected neighbor radius 12, got %f", cfg.Derived.NeighborRadius)
	}
	if cfg.Derived.Background != (color.RGBA{A: 255}) {
		t.Errorf("expected opaque black background, got %v", cfg.Derived.Background)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := "canvas:\n  width: 32\ncapture:\n  sweep_timeout: 2.0\nrender:\n  background: \"#102030\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Canvas.Width != 32 {
		t.Errorf("expected overridden width 32, got %d", cfg.Canvas.Width)
	}
	if cfg.Canvas.Height != 32 {
		t.Errorf("expected default height 32, got %d", cfg.Canvas.Height)
	}
	if cfg.Capture.SweepTimeout != 2.0 {
		t.Errorf("expected sweep timeout 2.0, got %f", cfg.Capture.SweepTimeout)
	}
	if cfg.Capture.SweepThreshold != 20 {
		t.Errorf("expected default sweep threshold 20, got %d", cfg.Capture.SweepThreshold)
	}
	want := color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}
	if cfg.Derived.Background != want {
		t.Errorf("expected background %v, got %v", want, cfg.Derived.Background)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	cfg := MustDefault()
	cfg.Capture.Radius = 0.5
	cfg.Spawn.Directions = 6
	cfg.Render.Background = "not-a-color"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := err.Error()
	for _, want := range []string{"capture.radius", "spawn.directions", "render.background"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in error, got %q", want, msg)
		}
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero canvas", func(c *Config) { c.Canvas.Width = 0 }},
		{"precision radius too wide", func(c *Config) { c.Attraction.PrecisionRadius = 3 }},
		{"damping above one", func(c *Config) { c.Attraction.PrecisionDamping = 1.5 }},
		{"coarse sampling", func(c *Config) { c.Capture.SampleStep = 1 }},
		{"sweep never arms", func(c *Config) { c.Capture.SweepThreshold = 0 }},
		{"zero stuck threshold", func(c *Config) { c.Stuck.Threshold = 0 }},
		{"inverted batch", func(c *Config) { c.Spawn.MinBatch = 20 }},
		{"margin inside inset", func(c *Config) { c.Spawn.Margin = 1 }},
		{"bad shape", func(c *Config) { c.Render.SpriteShape = "star" }},
		{"unknown source", func(c *Config) { c.Pattern.Source = "font" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := MustDefault()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := MustDefault()
	cfg.Attraction.RampExponent = 1.7
	cfg.Pattern.Text = "HI"

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Attraction.RampExponent != 1.7 {
		t.Errorf("expected ramp exponent 1.7, got %f", loaded.Attraction.RampExponent)
	}
	if loaded.Pattern.Text != "HI" {
		t.Errorf("expected text HI, got %q", loaded.Pattern.Text)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := MustDefault()
	cfg.Pattern.ASCII = []string{"#"}

	clone := cfg.Clone()
	clone.Pattern.ASCII[0] = "."
	clone.Spawn.MaxAgents = 1

	if cfg.Pattern.ASCII[0] != "#" {
		t.Error("clone shares ASCII rows with original")
	}
	if cfg.Spawn.MaxAgents == 1 {
		t.Error("clone shares spawn config with original")
	}
}
