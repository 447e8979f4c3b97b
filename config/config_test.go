package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Flock.Count != 3000 {
		t.Errorf("Flock.Count = %d, want 3000", cfg.Flock.Count)
	}
	if cfg.Flock.Mode != ModeSteering {
		t.Errorf("Flock.Mode = %q, want %q", cfg.Flock.Mode, ModeSteering)
	}
	if cfg.Derived.MaxSpeed32 != 100 {
		t.Errorf("Derived.MaxSpeed32 = %v, want 100", cfg.Derived.MaxSpeed32)
	}
	// separation_distance 0 resolves to half the perception radius
	if cfg.Derived.SeparationDistance32 != 40 {
		t.Errorf("Derived.SeparationDistance32 = %v, want 40", cfg.Derived.SeparationDistance32)
	}
	// grid_cell_size 0 resolves to the perception radius
	if cfg.Derived.GridCellSize32 != 80 {
		t.Errorf("Derived.GridCellSize32 = %v, want 80", cfg.Derived.GridCellSize32)
	}
	if math.Abs(float64(cfg.Derived.DT32)-1.0/60.0) > 1e-6 {
		t.Errorf("Derived.DT32 = %v, want ~1/60", cfg.Derived.DT32)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	path := writeFile(t, "flock.yaml", `
flock:
  count: 12
  mode: velocity
  separation_distance: 15
physics:
  neighbor_index: kdtree
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Flock.Count != 12 {
		t.Errorf("Flock.Count = %d, want 12", cfg.Flock.Count)
	}
	if cfg.Flock.Mode != ModeVelocity {
		t.Errorf("Flock.Mode = %q, want velocity", cfg.Flock.Mode)
	}
	if cfg.Derived.SeparationDistance32 != 15 {
		t.Errorf("SeparationDistance32 = %v, want 15", cfg.Derived.SeparationDistance32)
	}
	if cfg.Physics.NeighborIndex != IndexKDTree {
		t.Errorf("NeighborIndex = %q, want kdtree", cfg.Physics.NeighborIndex)
	}
	// untouched fields keep their defaults
	if cfg.Flock.MaxSpeed != 100 {
		t.Errorf("Flock.MaxSpeed = %v, want default 100", cfg.Flock.MaxSpeed)
	}
}

func TestLoadTOMLOverride(t *testing.T) {
	path := writeFile(t, "flock.toml", `
[world]
width = 800.0
height = 600.0

[steering]
alignment_force = 2.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.World.Width != 800 || cfg.World.Height != 600 {
		t.Errorf("World = %vx%v, want 800x600", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Steering.AlignmentForce != 2.5 {
		t.Errorf("AlignmentForce = %v, want 2.5", cfg.Steering.AlignmentForce)
	}
	if cfg.Steering.SteerForce != 5.0 {
		t.Errorf("SteerForce = %v, want default 5.0", cfg.Steering.SteerForce)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative radius", "flock:\n  perception_radius: -1\n"},
		{"unknown mode", "flock:\n  mode: swarm\n"},
		{"zero max speed", "flock:\n  max_speed: 0\n"},
		{"negative count", "flock:\n  count: -5\n"},
		{"unknown index", "physics:\n  neighbor_index: octree\n"},
		{"zero dt", "physics:\n  dt: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.yaml", tt.body)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), "config validation failed") {
				t.Errorf("error = %v, want config validation failure", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Flock.Count = 42

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Flock.Count != 42 {
		t.Errorf("Flock.Count = %d, want 42", loaded.Flock.Count)
	}
}

func TestRecompute(t *testing.T) {
	cfg := Defaults()
	cfg.Flock.PerceptionRadius = 30
	if err := cfg.Recompute(); err != nil {
		t.Fatalf("Recompute error: %v", err)
	}
	if cfg.Derived.SeparationDistance32 != 15 {
		t.Errorf("SeparationDistance32 = %v, want 15", cfg.Derived.SeparationDistance32)
	}

	cfg.Flock.PerceptionRadius = -3
	if err := cfg.Recompute(); err == nil {
		t.Error("expected error for negative perception radius")
	}
}
