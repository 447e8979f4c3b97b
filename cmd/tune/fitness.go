package main

import (
	"log/slog"
	"sync"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/sim"
	"github.com/pthm-cable/flock/telemetry"
)

// FitnessEvaluator runs headless simulations and scores flock quality.
type FitnessEvaluator struct {
	params      *ParamVector
	ticks       int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		ticks:       ticks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 2.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated mean quality across seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Warn("rejected parameter vector", "error", err)
		return 1
	}

	// Run all seeds in parallel; each simulation uses a single worker
	results := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runSimulation(cfg, s)
			if err != nil {
				slog.Warn("simulation failed", "seed", s, "error", err)
				return
			}
			results[idx] = computeQuality(windows)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, q := range results {
		total += q
	}
	quality := total / float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = quality
	fe.mu.Unlock()

	return -quality
}

// runSimulation runs one seed and returns every flushed telemetry window.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) ([]telemetry.WindowStats, error) {
	s, err := sim.New(cfg, sim.Options{
		Seed:           seed,
		Workers:        1,
		StatsWindowSec: fe.statsWindow,
	})
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var windows []telemetry.WindowStats
	s.SetStatsCallback(func(ws telemetry.WindowStats) {
		windows = append(windows, ws)
	})

	dt := cfg.Derived.DT32
	for s.Tick() < fe.ticks {
		s.Step(dt)
	}
	return windows, nil
}

// computeQuality scores a run from its windows in [0, 1]. Early windows are
// skipped while the flock forms. A good flock is aligned and has few
// agents without neighbors.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) == 0 {
		return 0
	}
	start := len(windows) / 2

	var sum float64
	for _, w := range windows[start:] {
		isolatedFrac := 0.0
		if w.Agents > 0 {
			isolatedFrac = float64(w.Isolated) / float64(w.Agents)
		}
		sum += w.Polarization * (1 - isolatedFrac)
	}
	return sum / float64(len(windows)-start)
}
