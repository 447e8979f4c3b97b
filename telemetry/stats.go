package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population and bounds at window end
	Agents int     `csv:"agents"`
	Width  float64 `csv:"width"`
	Height float64 `csv:"height"`

	// Events during window
	WrapEvents    int `csv:"wrap_events"`
	Resizes       int `csv:"resizes"`
	SkippedFrames int `csv:"skipped_frames"`

	// Order parameters (sampled at window end)
	Polarization float64 `csv:"polarization"` // |mean unit heading|, 1 = fully aligned
	Spread       float64 `csv:"spread"`       // mean distance to the flock centroid

	// Speed distribution
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Neighborhood sizes
	NeighborsMean float64 `csv:"neighbors_mean"`
	NeighborsP90  float64 `csv:"neighbors_p90"`
	Isolated      int     `csv:"isolated"` // agents with no neighbor in perception range
}

// FlockSample is the per-agent data telemetry reads at a window boundary.
type FlockSample struct {
	Positions      []r2.Vec
	Velocities     []r2.Vec
	NeighborCounts []float64
	Width, Height  float64
}

// FlockStats are the order parameters computed from one FlockSample.
type FlockStats struct {
	Polarization  float64
	Spread        float64
	SpeedMean     float64
	SpeedStd      float64
	SpeedP10      float64
	SpeedP50      float64
	SpeedP90      float64
	NeighborsMean float64
	NeighborsP90  float64
	Isolated      int
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistStats calculates mean, population std, and percentiles.
func ComputeDistStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, variance := stat.PopMeanVariance(values, nil)
	std = math.Sqrt(variance)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// Polarization returns the magnitude of the mean unit velocity. Stationary
// agents have no heading and count as zero vectors.
func Polarization(velocities []r2.Vec) float64 {
	if len(velocities) == 0 {
		return 0
	}
	var sum r2.Vec
	for _, v := range velocities {
		if v.X == 0 && v.Y == 0 {
			continue
		}
		sum = r2.Add(sum, r2.Unit(v))
	}
	return r2.Norm(r2.Scale(1/float64(len(velocities)), sum))
}

// Spread returns the mean Euclidean distance from the centroid.
func Spread(positions []r2.Vec) float64 {
	n := len(positions)
	if n == 0 {
		return 0
	}
	var c r2.Vec
	for _, p := range positions {
		c = r2.Add(c, p)
	}
	c = r2.Scale(1/float64(n), c)

	var sum float64
	for _, p := range positions {
		sum += r2.Norm(r2.Sub(p, c))
	}
	return sum / float64(n)
}

// ComputeFlockStats derives the order parameters from a sample.
func ComputeFlockStats(s FlockSample) FlockStats {
	speeds := make([]float64, len(s.Velocities))
	for i, v := range s.Velocities {
		speeds[i] = r2.Norm(v)
	}

	var fs FlockStats
	fs.Polarization = Polarization(s.Velocities)
	fs.Spread = Spread(s.Positions)
	fs.SpeedMean, fs.SpeedStd, fs.SpeedP10, fs.SpeedP50, fs.SpeedP90 = ComputeDistStats(speeds)

	if len(s.NeighborCounts) > 0 {
		var p90 float64
		fs.NeighborsMean, _, _, _, p90 = ComputeDistStats(s.NeighborCounts)
		fs.NeighborsP90 = p90
		for _, c := range s.NeighborCounts {
			if c == 0 {
				fs.Isolated++
			}
		}
	}
	return fs
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Int("wrap_events", s.WrapEvents),
		slog.Int("resizes", s.Resizes),
		slog.Int("skipped_frames", s.SkippedFrames),
		slog.Float64("polarization", s.Polarization),
		slog.Float64("spread", s.Spread),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("neighbors_mean", s.NeighborsMean),
		slog.Int("isolated", s.Isolated),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"agents", s.Agents,
		"width", s.Width,
		"height", s.Height,
		"wrap_events", s.WrapEvents,
		"resizes", s.Resizes,
		"skipped_frames", s.SkippedFrames,
		"polarization", s.Polarization,
		"spread", s.Spread,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p10", s.SpeedP10,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"neighbors_mean", s.NeighborsMean,
		"neighbors_p90", s.NeighborsP90,
		"isolated", s.Isolated,
	)
}
