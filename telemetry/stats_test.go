package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistStats(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	mean, std, p10, p50, p90 := ComputeDistStats(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	// population std of 0.1..1.0
	if math.Abs(std-0.2872) > 0.001 {
		t.Errorf("std = %v, want ~0.2872", std)
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
}

func TestComputeDistStatsEmpty(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeDistStats(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestPolarization(t *testing.T) {
	tests := []struct {
		name string
		vels []r2.Vec
		want float64
	}{
		{"empty", nil, 0},
		{"aligned", []r2.Vec{{X: 1}, {X: 50}, {X: 100}}, 1},
		{"opposed", []r2.Vec{{X: 10}, {X: -10}}, 0},
		{"perpendicular", []r2.Vec{{X: 3}, {Y: 7}}, math.Sqrt2 / 2},
		{"stationary counts as zero", []r2.Vec{{X: 5}, {}}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Polarization(tt.vels)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Polarization = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpread(t *testing.T) {
	pts := []r2.Vec{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}
	if got := Spread(pts); math.Abs(got-1) > 1e-9 {
		t.Errorf("Spread = %v, want 1", got)
	}
	if got := Spread(nil); got != 0 {
		t.Errorf("Spread(nil) = %v, want 0", got)
	}
}

func TestComputeFlockStatsIsolated(t *testing.T) {
	fs := ComputeFlockStats(FlockSample{
		Positions:      []r2.Vec{{}, {X: 1}, {X: 2}},
		Velocities:     []r2.Vec{{X: 1}, {X: 2}, {X: 3}},
		NeighborCounts: []float64{0, 2, 0},
	})

	if fs.Isolated != 2 {
		t.Errorf("Isolated = %d, want 2", fs.Isolated)
	}
	if math.Abs(fs.SpeedMean-2) > 1e-9 {
		t.Errorf("SpeedMean = %v, want 2", fs.SpeedMean)
	}
	if math.Abs(fs.NeighborsMean-2.0/3.0) > 1e-9 {
		t.Errorf("NeighborsMean = %v, want 2/3", fs.NeighborsMean)
	}
}
