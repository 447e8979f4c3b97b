package main

import (
	"github.com/pthm-cable/flock/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters for one mode.
type ParamVector struct {
	Mode  string
	Specs []ParamSpec
}

// NewParamVector creates the optimizable rule weights for mode.
// Each mode tunes its own coefficient family plus the perception radius.
func NewParamVector(mode string) *ParamVector {
	if mode == config.ModeVelocity {
		return &ParamVector{
			Mode: mode,
			Specs: []ParamSpec{
				{Name: "alignment_coef", Path: "velocity.alignment_coef", Min: 0, Max: 2, Default: 0.5},
				{Name: "cohesion_coef", Path: "velocity.cohesion_coef", Min: 0, Max: 2, Default: 0.7},
				{Name: "separation_coef", Path: "velocity.separation_coef", Min: 0, Max: 3, Default: 1.0},
				{Name: "accel_blend", Path: "velocity.accel_blend", Min: 0.01, Max: 1, Default: 0.1},
				{Name: "perception_radius", Path: "flock.perception_radius", Min: 20, Max: 160, Default: 80},
			},
		}
	}
	return &ParamVector{
		Mode: config.ModeSteering,
		Specs: []ParamSpec{
			{Name: "alignment_force", Path: "steering.alignment_force", Min: 0, Max: 10, Default: 5.6},
			{Name: "cohesion_force", Path: "steering.cohesion_force", Min: 0, Max: 5, Default: 0.6},
			{Name: "separation_force", Path: "steering.separation_force", Min: 0, Max: 5, Default: 0.6},
			{Name: "steer_force", Path: "steering.steer_force", Min: 0.5, Max: 20, Default: 5.0},
			{Name: "perception_radius", Path: "flock.perception_radius", Min: 20, Max: 160, Default: 80},
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

// ApplyToConfig applies parameter values to a Config struct and refreshes
// its derived block. Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	c := pv.Clamp(values)

	cfg.Flock.Mode = pv.Mode
	if pv.Mode == config.ModeVelocity {
		cfg.Velocity.AlignmentCoef = c[0]
		cfg.Velocity.CohesionCoef = c[1]
		cfg.Velocity.SeparationCoef = c[2]
		cfg.Velocity.AccelBlend = c[3]
	} else {
		cfg.Steering.AlignmentForce = c[0]
		cfg.Steering.CohesionForce = c[1]
		cfg.Steering.SeparationForce = c[2]
		cfg.Steering.SteerForce = c[3]
	}
	cfg.Flock.PerceptionRadius = c[4]

	return cfg.Recompute()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	if pv.Mode == config.ModeVelocity {
		return []float64{
			cfg.Velocity.AlignmentCoef,
			cfg.Velocity.CohesionCoef,
			cfg.Velocity.SeparationCoef,
			cfg.Velocity.AccelBlend,
			cfg.Flock.PerceptionRadius,
		}
	}
	return []float64{
		cfg.Steering.AlignmentForce,
		cfg.Steering.CohesionForce,
		cfg.Steering.SeparationForce,
		cfg.Steering.SteerForce,
		cfg.Flock.PerceptionRadius,
	}
}
