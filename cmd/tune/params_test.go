package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	for _, mode := range []string{config.ModeSteering, config.ModeVelocity} {
		t.Run(mode, func(t *testing.T) {
			pv := NewParamVector(mode)
			def := pv.DefaultVector()
			back := pv.Denormalize(pv.Normalize(def))
			for i := range def {
				if math.Abs(back[i]-def[i]) > 1e-9 {
					t.Errorf("%s: %v -> %v", pv.Specs[i].Name, def[i], back[i])
				}
			}
		})
	}
}

func TestParamVectorDefaultsMatchConfig(t *testing.T) {
	for _, mode := range []string{config.ModeSteering, config.ModeVelocity} {
		cfg := config.Defaults()
		pv := NewParamVector(mode)
		got := pv.ExtractFromConfig(cfg)
		for i, spec := range pv.Specs {
			if math.Abs(got[i]-spec.Default) > 1e-9 {
				t.Errorf("%s/%s: config default %v, spec default %v", mode, spec.Name, got[i], spec.Default)
			}
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector(config.ModeSteering)
	cfg := config.Defaults()

	if err := pv.ApplyToConfig(cfg, []float64{-1, 2, 100, 3, 60}); err != nil {
		t.Fatalf("ApplyToConfig error: %v", err)
	}
	if cfg.Steering.AlignmentForce != 0 {
		t.Errorf("AlignmentForce = %v, want clamped 0", cfg.Steering.AlignmentForce)
	}
	if cfg.Steering.SeparationForce != 5 {
		t.Errorf("SeparationForce = %v, want clamped 5", cfg.Steering.SeparationForce)
	}
	// derived block follows the new perception radius
	if cfg.Derived.SeparationDistance32 != 30 {
		t.Errorf("SeparationDistance32 = %v, want 30", cfg.Derived.SeparationDistance32)
	}
}

func TestComputeQuality(t *testing.T) {
	if q := computeQuality(nil); q != 0 {
		t.Errorf("quality of no windows = %v, want 0", q)
	}

	windows := []telemetry.WindowStats{
		{Agents: 10, Polarization: 0.1},
		{Agents: 10, Polarization: 1, Isolated: 0},
		{Agents: 10, Polarization: 0.8, Isolated: 5},
	}
	// first half skipped: (1 + 0.4) / 2
	if q := computeQuality(windows); math.Abs(q-0.7) > 1e-9 {
		t.Errorf("quality = %v, want 0.7", q)
	}
}
