package main

import (
	"github.com/pthm-cable/murmur/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Column name in the log
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the attraction ramp and precision parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "base_weight", Path: "attraction.base_weight", Min: 0.02, Max: 0.5, Default: 0.1},
			{Name: "ramp_weight", Path: "attraction.ramp_weight", Min: 0.0, Max: 1.5, Default: 0.5},
			{Name: "ramp_exponent", Path: "attraction.ramp_exponent", Min: 0.25, Max: 4.0, Default: 1.0},
			{Name: "precision_radius", Path: "attraction.precision_radius", Min: 0.5, Max: 2.9, Default: 1.5},
			{Name: "precision_damping", Path: "attraction.precision_damping", Min: 0.1, Max: 1.0, Default: 0.3},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Attraction.BaseWeight = c[0]
	cfg.Attraction.RampWeight = c[1]
	cfg.Attraction.RampExponent = c[2]
	cfg.Attraction.PrecisionRadius = c[3]
	cfg.Attraction.PrecisionDamping = c[4]
	cfg.Refresh()
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Attraction.BaseWeight,
		cfg.Attraction.RampWeight,
		cfg.Attraction.RampExponent,
		cfg.Attraction.PrecisionRadius,
		cfg.Attraction.PrecisionDamping,
	}
}
