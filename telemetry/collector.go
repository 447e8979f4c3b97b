package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	wrapEvents    int
	resizes       int
	skippedFrames int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordWraps records n boundary wrap events.
func (c *Collector) RecordWraps(n int) {
	c.wrapEvents += n
}

// RecordResize records a bounds change.
func (c *Collector) RecordResize() {
	c.resizes++
}

// RecordSkippedFrame records a Step call with a non-positive dt.
func (c *Collector) RecordSkippedFrame() {
	c.skippedFrames++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the frame sample and resets counters
// for the next window.
func (c *Collector) Flush(currentTick int32, sample FlockSample) WindowStats {
	fs := ComputeFlockStats(sample)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Agents: len(sample.Velocities),
		Width:  sample.Width,
		Height: sample.Height,

		WrapEvents:    c.wrapEvents,
		Resizes:       c.resizes,
		SkippedFrames: c.skippedFrames,

		Polarization: fs.Polarization,
		Spread:       fs.Spread,

		SpeedMean: fs.SpeedMean,
		SpeedStd:  fs.SpeedStd,
		SpeedP10:  fs.SpeedP10,
		SpeedP50:  fs.SpeedP50,
		SpeedP90:  fs.SpeedP90,

		NeighborsMean: fs.NeighborsMean,
		NeighborsP90:  fs.NeighborsP90,
		Isolated:      fs.Isolated,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.wrapEvents = 0
	c.resizes = 0
	c.skippedFrames = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
