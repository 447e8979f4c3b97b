// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Simulation modes.
const (
	ModeSteering = "steering"
	ModeVelocity = "velocity"
)

// Neighbor index kinds.
const (
	IndexBrute  = "brute"
	IndexGrid   = "grid"
	IndexKDTree = "kdtree"
)

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world" toml:"world"`
	Flock     FlockConfig     `yaml:"flock" toml:"flock"`
	Steering  SteeringConfig  `yaml:"steering" toml:"steering"`
	Velocity  VelocityConfig  `yaml:"velocity" toml:"velocity"`
	Physics   PhysicsConfig   `yaml:"physics" toml:"physics"`
	Parallel  ParallelConfig  `yaml:"parallel" toml:"parallel"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" toml:"-"`
}

// WorldConfig holds the initial simulation bounds, which double as the spawn region.
type WorldConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// FlockConfig holds population and per-agent defaults.
type FlockConfig struct {
	Count              int     `yaml:"count" toml:"count"`
	MaxSpeed           float64 `yaml:"max_speed" toml:"max_speed"`
	SpawnScale         float64 `yaml:"spawn_scale" toml:"spawn_scale"`                 // visual footprint, used by wrap
	PerceptionRadius   float64 `yaml:"perception_radius" toml:"perception_radius"`
	SeparationDistance float64 `yaml:"separation_distance" toml:"separation_distance"` // 0 = perception_radius / 2
	Mode               string  `yaml:"mode" toml:"mode"`                               // steering | velocity
}

// SteeringConfig holds force weights for the steering mode.
type SteeringConfig struct {
	AlignmentForce  float64 `yaml:"alignment_force" toml:"alignment_force"`
	CohesionForce   float64 `yaml:"cohesion_force" toml:"cohesion_force"`
	SeparationForce float64 `yaml:"separation_force" toml:"separation_force"`
	SteerForce      float64 `yaml:"steer_force" toml:"steer_force"`
}

// VelocityConfig holds coefficients for the velocity-blend mode.
type VelocityConfig struct {
	AlignmentCoef  float64 `yaml:"alignment_coef" toml:"alignment_coef"`
	CohesionCoef   float64 `yaml:"cohesion_coef" toml:"cohesion_coef"`
	SeparationCoef float64 `yaml:"separation_coef" toml:"separation_coef"`
	AccelBlend     float64 `yaml:"accel_blend" toml:"accel_blend"`
}

// PhysicsConfig holds frame timing and neighbor index parameters.
type PhysicsConfig struct {
	DT            float64 `yaml:"dt" toml:"dt"`
	NeighborIndex string  `yaml:"neighbor_index" toml:"neighbor_index"`
	GridCellSize  float64 `yaml:"grid_cell_size" toml:"grid_cell_size"` // 0 = perception_radius
}

// ParallelConfig holds worker pool parameters.
type ParallelConfig struct {
	Workers   int `yaml:"workers" toml:"workers"`     // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold" toml:"threshold"` // below this, phases run inline
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window" toml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window" toml:"perf_collector_window"`
	LogInterval         int     `yaml:"log_interval" toml:"log_interval"` // ticks between Logf summaries
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32                 float32 // Physics.DT as float32
	WorldW32             float32
	WorldH32             float32
	MaxSpeed32           float32
	SpawnScale32         float32
	PerceptionRadius32   float32
	SeparationDistance32 float32 // resolved separation distance
	GridCellSize32       float32 // resolved grid cell size
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML or TOML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Decode into same struct - only overwrites fields present in file
		if err := cfg.merge(path, data); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) merge(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("parsing toml config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldH32 = float32(c.World.Height)
	c.Derived.MaxSpeed32 = float32(c.Flock.MaxSpeed)
	c.Derived.SpawnScale32 = float32(c.Flock.SpawnScale)
	c.Derived.PerceptionRadius32 = float32(c.Flock.PerceptionRadius)

	sep := c.Flock.SeparationDistance
	if sep == 0 {
		sep = c.Flock.PerceptionRadius / 2
	}
	c.Derived.SeparationDistance32 = float32(sep)

	// Cell size at least the perception radius keeps queries to a 3x3 block
	cell := c.Physics.GridCellSize
	if cell <= 0 {
		cell = c.Flock.PerceptionRadius
	}
	if cell < 1 {
		cell = 1
	}
	c.Derived.GridCellSize32 = float32(cell)
}

// Recompute refreshes the derived block after fields were changed in code.
func (c *Config) Recompute() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
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
