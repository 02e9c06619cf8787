// Package config provides configuration loading and validation for the engine.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Canvas     CanvasConfig     `yaml:"canvas"`
	Pattern    PatternConfig    `yaml:"pattern"`
	Agent      AgentConfig      `yaml:"agent"`
	Flocking   FlockingConfig   `yaml:"flocking"`
	Attraction AttractionConfig `yaml:"attraction"`
	Capture    CaptureConfig    `yaml:"capture"`
	Stuck      StuckConfig      `yaml:"stuck"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Render     RenderConfig     `yaml:"render"`
	Lifecycle  LifecycleConfig  `yaml:"lifecycle"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// CanvasConfig holds the pixel grid dimensions and frame rate.
type CanvasConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
	Scale     int `yaml:"scale"` // Window pixels per canvas pixel (0 = fit)
}

// PatternConfig selects the target pattern.
type PatternConfig struct {
	Source      string   `yaml:"source"`       // "text" or "ascii"
	Text        string   `yaml:"text"`         // Lines separated by \n
	LineSpacing int      `yaml:"line_spacing"` // Extra pixels between text lines
	ASCII       []string `yaml:"ascii"`        // Rows of '#' art, used when source is "ascii"
}

// AgentConfig holds per-agent motion parameters. Speeds are in pixels per second.
type AgentConfig struct {
	MaxSpeed            float64 `yaml:"max_speed"`
	MinSpeed            float64 `yaml:"min_speed"`
	SpeedMultMin        float64 `yaml:"speed_mult_min"`
	SpeedMultMax        float64 `yaml:"speed_mult_max"`
	SeparationRadiusMin float64 `yaml:"separation_radius_min"`
	SeparationRadiusMax float64 `yaml:"separation_radius_max"`
	Steering            float64 `yaml:"steering"`       // Velocity relaxation rate (1/s)
	Jitter              float64 `yaml:"jitter"`         // Random steering amplitude
	WingFlap            float64 `yaml:"wing_flap"`      // Perlin lateral wobble amplitude
	WingFlapFreq        float64 `yaml:"wing_flap_freq"` // Noise samples per second
}

// FlockingConfig holds the neighbor force parameters.
type FlockingConfig struct {
	Enabled          bool    `yaml:"enabled"`
	AlignmentRadius  float64 `yaml:"alignment_radius"`
	CohesionRadius   float64 `yaml:"cohesion_radius"`
	SeparationWeight float64 `yaml:"separation_weight"`
	AlignmentWeight  float64 `yaml:"alignment_weight"`
	CohesionWeight   float64 `yaml:"cohesion_weight"`
	GridCellSize     float64 `yaml:"grid_cell_size"`
}

// AttractionConfig holds the target attraction ramp.
// weight = base_weight + ramp_weight * capturedFraction^ramp_exponent
type AttractionConfig struct {
	BaseWeight       float64 `yaml:"base_weight"`
	RampWeight       float64 `yaml:"ramp_weight"`
	RampExponent     float64 `yaml:"ramp_exponent"`
	PrecisionRadius  float64 `yaml:"precision_radius"`  // Below this distance agents fly straight in
	PrecisionDamping float64 `yaml:"precision_damping"` // Fraction of cruise speed in precision mode
}

// CaptureConfig holds capture and final sweep parameters.
type CaptureConfig struct {
	Radius         float64 `yaml:"radius"`
	SampleStep     float64 `yaml:"sample_step"`     // Path sampling step in pixels
	SweepThreshold int     `yaml:"sweep_threshold"` // Remaining count that arms the sweep timer
	SweepTimeout   float64 `yaml:"sweep_timeout"`   // Simulated seconds before force-capture
}

// StuckConfig holds stuck detection parameters.
type StuckConfig struct {
	WindowTicks int     `yaml:"window_ticks"`
	Epsilon     float64 `yaml:"epsilon"`    // Minimum displacement in pixels over the window
	Threshold   int     `yaml:"threshold"`  // Idle ticks tolerated before a kick
	KickSpeed   float64 `yaml:"kick_speed"` // Speed of the randomized velocity (clamped to max)
}

// SpawnConfig holds wave spawning parameters.
type SpawnConfig struct {
	Enabled          bool    `yaml:"enabled"`
	Directions       int     `yaml:"directions"` // 4 = edges, 8 = edges and corners
	MaxAgents        int     `yaml:"max_agents"`
	MinBatch         int     `yaml:"min_batch"`
	MaxBatch         int     `yaml:"max_batch"`
	MinInterval      float64 `yaml:"min_interval"` // Seconds between waves late in the cycle
	MaxInterval      float64 `yaml:"max_interval"` // Seconds between waves early in the cycle
	HeadingJitter    float64 `yaml:"heading_jitter"`
	FormationSpacing float64 `yaml:"formation_spacing"`
	EdgeInset        float64 `yaml:"edge_inset"` // Distance outside the canvas where waves start
	Margin           float64 `yaml:"margin"`     // Agents beyond canvas + margin are removed
	SpeedMin         float64 `yaml:"speed_min"`  // Initial speed as fraction of cruise
	SpeedMax         float64 `yaml:"speed_max"`
}

// RenderConfig holds palette and sprite parameters.
type RenderConfig struct {
	Background      string  `yaml:"background"` // Hex color
	PaletteSize     int     `yaml:"palette_size"`
	TextSaturation  float64 `yaml:"text_saturation"`
	TextValue       float64 `yaml:"text_value"`
	AgentHueOffset  float64 `yaml:"agent_hue_offset"` // Degrees
	AgentSaturation float64 `yaml:"agent_saturation"`
	AgentValue      float64 `yaml:"agent_value"`
	PhaseSpeed      float64 `yaml:"phase_speed"`     // Palette steps per second
	PositionStride  int     `yaml:"position_stride"` // (x+y)/stride selects a text pixel's base index
	SpriteShape     string  `yaml:"sprite_shape"`    // "dot" or "plus"
}

// LifecycleConfig holds cycle hold/reset parameters.
type LifecycleConfig struct {
	HoldSeconds float64 `yaml:"hold_seconds"`
	AutoReset   bool    `yaml:"auto_reset"`
}

// TelemetryConfig holds statistics and output parameters.
type TelemetryConfig struct {
	ProgressWindow float64 `yaml:"progress_window"` // Seconds between progress samples
	PerfWindow     int     `yaml:"perf_window"`     // Ticks per perf stats window
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	DT             float64    // Seconds per tick at target fps
	NeighborRadius float64    // Largest flocking query radius
	Background     color.RGBA // Parsed background color
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Default returns the embedded defaults with derived values computed.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// MustDefault is like Default but panics on error.
func MustDefault() *Config {
	cfg, err := Default()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Pattern.ASCII = append([]string(nil), c.Pattern.ASCII...)
	return &out
}

// Validate reports every parameter outside its allowed range.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Canvas.Width > 0 && c.Canvas.Height > 0, "canvas: size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	check(c.Canvas.TargetFPS > 0, "canvas.target_fps must be positive, got %d", c.Canvas.TargetFPS)
	check(c.Pattern.Source == "text" || c.Pattern.Source == "ascii", "pattern.source must be text or ascii, got %q", c.Pattern.Source)

	check(c.Agent.MaxSpeed > 0, "agent.max_speed must be positive")
	check(c.Agent.MinSpeed >= 0 && c.Agent.MinSpeed <= c.Agent.MaxSpeed, "agent.min_speed must be in [0, max_speed]")
	check(c.Agent.SpeedMultMin > 0 && c.Agent.SpeedMultMin <= c.Agent.SpeedMultMax, "agent speed multiplier range is empty")
	check(c.Agent.SeparationRadiusMin > 0 && c.Agent.SeparationRadiusMin <= c.Agent.SeparationRadiusMax, "agent separation radius range is empty")
	check(c.Agent.Steering > 0, "agent.steering must be positive")

	check(c.Flocking.GridCellSize > 0, "flocking.grid_cell_size must be positive")

	check(c.Attraction.PrecisionRadius > 0 && c.Attraction.PrecisionRadius < 3, "attraction.precision_radius must be in (0, 3)")
	check(c.Attraction.PrecisionDamping > 0 && c.Attraction.PrecisionDamping <= 1, "attraction.precision_damping must be in (0, 1]")

	check(c.Capture.Radius >= 0.8, "capture.radius must be at least 0.8, got %g", c.Capture.Radius)
	check(c.Capture.SampleStep > 0 && c.Capture.SampleStep <= 0.5, "capture.sample_step must be in (0, 0.5]")
	check(c.Capture.SweepThreshold >= 1, "capture.sweep_threshold must be at least 1")
	check(c.Capture.SweepTimeout > 0, "capture.sweep_timeout must be positive")

	check(c.Stuck.WindowTicks > 0, "stuck.window_ticks must be positive")
	check(c.Stuck.Threshold > 0, "stuck.threshold must be positive")

	check(c.Spawn.Directions == 4 || c.Spawn.Directions == 8, "spawn.directions must be 4 or 8, got %d", c.Spawn.Directions)
	check(c.Spawn.MaxAgents > 0, "spawn.max_agents must be positive")
	check(c.Spawn.MinBatch > 0 && c.Spawn.MinBatch <= c.Spawn.MaxBatch, "spawn batch range is empty")
	check(c.Spawn.MinInterval > 0 && c.Spawn.MinInterval <= c.Spawn.MaxInterval, "spawn interval range is empty")
	check(c.Spawn.Margin > c.Spawn.EdgeInset, "spawn.margin must exceed spawn.edge_inset")

	_, err := colorful.Hex(c.Render.Background)
	check(err == nil, "render.background: %q is not a hex color", c.Render.Background)
	check(c.Render.PaletteSize >= 2 && c.Render.PaletteSize <= 255, "render.palette_size must be in [2, 255]")
	check(c.Render.PositionStride > 0, "render.position_stride must be positive")
	check(c.Render.SpriteShape == "dot" || c.Render.SpriteShape == "plus", "render.sprite_shape must be dot or plus")

	check(c.Lifecycle.HoldSeconds >= 0, "lifecycle.hold_seconds must not be negative")

	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Canvas.TargetFPS > 0 {
		c.Derived.DT = 1.0 / float64(c.Canvas.TargetFPS)
	}

	c.Derived.NeighborRadius = max(c.Flocking.AlignmentRadius, c.Flocking.CohesionRadius, c.Agent.SeparationRadiusMax)

	c.Derived.Background = color.RGBA{A: 255}
	if bg, err := colorful.Hex(c.Render.Background); err == nil {
		r, g, b := bg.RGB255()
		c.Derived.Background = color.RGBA{R: r, G: g, B: b, A: 255}
	}
}

// Refresh recomputes derived values after fields were changed in code.
func (c *Config) Refresh() {
	c.computeDerived()
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
