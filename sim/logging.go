package sim

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/pthm-cable/flock/telemetry"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// maybeLogSummary prints the flock summary every log_interval ticks.
func (s *Simulation) maybeLogSummary() {
	interval := int32(s.cfg.Telemetry.LogInterval)
	if !s.logStats || interval <= 0 || s.tick%interval != 0 {
		return
	}
	s.logWorldState()
	s.logPerfStats()
}

// logPerfStats logs the per-phase breakdown over the perf window.
func (s *Simulation) logPerfStats() {
	stats := s.perf.Stats()
	Logf("=== Perf @ Tick %d | %d workers ===", s.tick, s.parallel.numWorkers)
	Logf("Avg step time: %s (%.0f ticks/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond)

	for _, name := range telemetry.Phases {
		avg, ok := stats.PhaseAvg[name]
		if !ok {
			continue
		}
		Logf("  %-12s %10s  %5.1f%%", name, avg.Round(time.Microsecond), stats.PhasePct[name])
	}
	Logf("")
}

// logWorldState logs the current flock state.
func (s *Simulation) logWorldState() {
	var speedSum float64
	minSpeed, maxSpeed := math.Inf(1), 0.0

	p := s.parallel
	for i := range p.rows {
		sp := float64(p.rows[i].Kin.Vel.Len())
		speedSum += sp
		minSpeed = math.Min(minSpeed, sp)
		maxSpeed = math.Max(maxSpeed, sp)
	}

	avgSpeed := 0.0
	if len(p.rows) > 0 {
		avgSpeed = speedSum / float64(len(p.rows))
	} else {
		minSpeed = 0
	}

	fs := s.FlockStats()

	Logf("=== Tick %d ===", s.tick)
	Logf("Agents: %d (mode %s, bounds %.0fx%.0f)", s.count, s.rules.Mode, s.bounds.Width, s.bounds.Height)
	Logf("Speed: %.1f avg, %.1f-%.1f range", avgSpeed, minSpeed, maxSpeed)
	Logf("Polarization: %.3f, spread: %.1f, neighbors: %.1f avg (%d isolated)",
		fs.Polarization, fs.Spread, fs.NeighborsMean, fs.Isolated)
}
