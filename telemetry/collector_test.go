package telemetry

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(2.5, 0.25)
	if c.WindowDurationTicks() != 10 {
		t.Fatalf("WindowDurationTicks = %d, want 10", c.WindowDurationTicks())
	}

	if c.ShouldFlush(9) {
		t.Error("ShouldFlush(9) = true before window elapsed")
	}
	if !c.ShouldFlush(10) {
		t.Error("ShouldFlush(10) = false at window end")
	}

	c.RecordWraps(3)
	c.RecordWraps(2)
	c.RecordResize()
	c.RecordSkippedFrame()

	stats := c.Flush(10, FlockSample{
		Velocities: []r2.Vec{{X: 1}, {X: 1}},
		Positions:  []r2.Vec{{}, {}},
		Width:      800,
		Height:     600,
	})

	if stats.WrapEvents != 5 || stats.Resizes != 1 || stats.SkippedFrames != 1 {
		t.Errorf("events = %d/%d/%d, want 5/1/1", stats.WrapEvents, stats.Resizes, stats.SkippedFrames)
	}
	if stats.Agents != 2 {
		t.Errorf("Agents = %d, want 2", stats.Agents)
	}
	if stats.Polarization != 1 {
		t.Errorf("Polarization = %v, want 1", stats.Polarization)
	}
	if stats.WindowStartTick != 0 || stats.WindowEndTick != 10 {
		t.Errorf("window = [%d,%d], want [0,10]", stats.WindowStartTick, stats.WindowEndTick)
	}

	// counters reset and window advances
	if c.ShouldFlush(15) {
		t.Error("ShouldFlush(15) = true right after a flush at 10")
	}
	next := c.Flush(20, FlockSample{})
	if next.WrapEvents != 0 || next.WindowStartTick != 10 {
		t.Errorf("second window = %+v, want reset counters starting at 10", next)
	}
}

func TestCollectorMinimumWindow(t *testing.T) {
	c := NewCollector(0.001, 1)
	if c.WindowDurationTicks() != 1 {
		t.Errorf("WindowDurationTicks = %d, want 1", c.WindowDurationTicks())
	}
}
