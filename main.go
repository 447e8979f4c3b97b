package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config file, YAML or TOML (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	dt := flag.Float64("dt", 0, "Frame time step in seconds (0 = use config)")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = use config)")
	resizeEvery := flag.Int("resize-every", 0, "Swap the bounds between config size and 3/4 size every N ticks (0 = never)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	stepDT := cfg.Derived.DT32
	if *dt > 0 {
		stepDT = float32(*dt)
	}

	s, err := sim.New(cfg, sim.Options{
		Seed:           rngSeed,
		Workers:        *workers,
		OutputDir:      *outputDir,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"agents", s.Count(),
		"mode", s.Rules().Mode.String(),
		"index", cfg.Physics.NeighborIndex,
		"max_ticks", *maxTicks,
	)

	fullW, fullH := s.Bounds()
	shrunk := false

	for {
		s.Step(stepDT)

		if *resizeEvery > 0 && int(s.Tick())%*resizeEvery == 0 {
			shrunk = !shrunk
			if shrunk {
				s.SetBounds(fullW*0.75, fullH*0.75)
			} else {
				s.SetBounds(fullW, fullH)
			}
		}

		if *maxTicks > 0 && int(s.Tick()) >= *maxTicks {
			fs := s.FlockStats()
			slog.Info("max ticks reached",
				"tick", s.Tick(),
				"polarization", fs.Polarization,
				"spread", fs.Spread,
			)
			return
		}
	}
}
