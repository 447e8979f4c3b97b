package sim

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and writes it out.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.sampleFlock())
	perfStats := s.perf.Stats()

	// Call stats callback if provided
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			slog.Warn("failed to write telemetry", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Warn("failed to write perf", "error", err)
		}
	}
}

// sampleFlock collects the current arena state for order parameters.
// Neighbor counts come from the most recent steer phase.
func (s *Simulation) sampleFlock() telemetry.FlockSample {
	p := s.parallel
	n := len(p.rows)

	sample := telemetry.FlockSample{
		Positions:      make([]r2.Vec, n),
		Velocities:     make([]r2.Vec, n),
		NeighborCounts: make([]float64, n),
		Width:          float64(s.bounds.Width),
		Height:         float64(s.bounds.Height),
	}
	for i := range p.rows {
		k := &p.rows[i].Kin
		sample.Positions[i] = r2.Vec{X: float64(k.Pos.X), Y: float64(k.Pos.Y)}
		sample.Velocities[i] = r2.Vec{X: float64(k.Vel.X), Y: float64(k.Vel.Y)}
		if i < len(p.steered) {
			sample.NeighborCounts[i] = float64(p.steered[i].Neighbors)
		}
	}
	return sample
}

// FlockStats computes order parameters as of the last completed Step.
func (s *Simulation) FlockStats() telemetry.FlockStats {
	return telemetry.ComputeFlockStats(s.sampleFlock())
}
