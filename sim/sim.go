// Package sim runs the flock: it owns the agent store and advances it one
// frame at a time through the snapshot, steer, integrate and wrap phases.
package sim

import (
	"cmp"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

// Options configures a Simulation beyond the loaded config.
type Options struct {
	Seed           int64
	Workers        int     // 0 = parallel.workers from config, then GOMAXPROCS
	OutputDir      string  // empty disables CSV output
	LogStats       bool    // log window stats and periodic summaries
	StatsWindowSec float64 // 0 = telemetry.stats_window from config
}

// AgentView is the read-only per-agent state handed to hosts.
type AgentView struct {
	ID      uint32
	X, Y    float32
	VX, VY  float32
	Heading float32
	Scale   float32
}

// Simulation holds the complete flock state.
type Simulation struct {
	cfg   *config.Config
	rules systems.Rules
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	// Entity mapper and filter over the full boid archetype
	boidMapper *ecs.Map6[
		components.Position,
		components.Velocity,
		components.Acceleration,
		components.Rotation,
		components.Body,
		components.Boid,
	]
	boidFilter *ecs.Filter6[
		components.Position,
		components.Velocity,
		components.Acceleration,
		components.Rotation,
		components.Body,
		components.Boid,
	]

	// Individual component mappers for write-back
	posMap *ecs.Map1[components.Position]
	velMap *ecs.Map1[components.Velocity]
	accMap *ecs.Map1[components.Acceleration]
	rotMap *ecs.Map1[components.Rotation]

	index    systems.NeighborIndex
	bounds   systems.Bounds
	parallel *parallelState

	// State
	tick   int32
	nextID uint32
	count  int

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// New creates a simulation and spawns the initial population.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}

	rules, err := systems.RulesFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	index, err := systems.NewNeighborIndex(cfg.Physics.NeighborIndex, cfg.Derived.GridCellSize32)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = cfg.Parallel.Workers
	}

	window := opts.StatsWindowSec
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	world := ecs.NewWorld()

	s := &Simulation{
		cfg:   cfg,
		rules: rules,
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		seed:  opts.Seed,
		boidMapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Acceleration,
			components.Rotation,
			components.Body,
			components.Boid,
		](world),
		boidFilter: ecs.NewFilter6[
			components.Position,
			components.Velocity,
			components.Acceleration,
			components.Rotation,
			components.Body,
			components.Boid,
		](world),
		posMap: ecs.NewMap1[components.Position](world),
		velMap: ecs.NewMap1[components.Velocity](world),
		accMap: ecs.NewMap1[components.Acceleration](world),
		rotMap: ecs.NewMap1[components.Rotation](world),

		index:    index,
		bounds:   systems.Bounds{Width: cfg.Derived.WorldW32, Height: cfg.Derived.WorldH32},
		parallel: newParallelState(workers, cfg.Parallel.Threshold),

		collector: telemetry.NewCollector(window, cfg.Derived.DT32),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:    output,
		logStats:  opts.LogStats,
	}

	s.spawnInitialPopulation(cfg.Flock.Count)

	return s, nil
}

// spawnInitialPopulation creates the starting agents uniformly over the bounds.
func (s *Simulation) spawnInitialPopulation(n int) {
	d := &s.cfg.Derived
	for i := 0; i < n; i++ {
		k := systems.SpawnKinematics(s.rng, s.bounds, d.MaxSpeed32)
		s.spawnAgent(k)
	}
}

// spawnAgent creates one boid entity from an initial kinematic row.
func (s *Simulation) spawnAgent(k systems.Kinematics) ecs.Entity {
	d := &s.cfg.Derived
	id := s.nextID
	s.nextID++

	pos := components.Position{X: k.Pos.X, Y: k.Pos.Y}
	vel := components.Velocity{X: k.Vel.X, Y: k.Vel.Y}
	acc := components.Acceleration{}
	rot := components.Rotation{Heading: k.Heading}
	body := components.Body{Scale: d.SpawnScale32}
	boid := components.Boid{
		ID:                 id,
		MaxSpeed:           k.MaxSpeed,
		PerceptionRadius:   d.PerceptionRadius32,
		SeparationDistance: d.SeparationDistance32,
	}

	entity := s.boidMapper.NewEntity(&pos, &vel, &acc, &rot, &body, &boid)
	s.count++
	return entity
}

// Step advances the simulation by dt seconds. A non-positive dt is a no-op.
func (s *Simulation) Step(dt float32) {
	if !(dt > 0) {
		s.collector.RecordSkippedFrame()
		return
	}

	s.perf.StartTick()

	// Phase A: snapshot + index rebuild (single-threaded)
	s.perf.StartPhase(telemetry.PhaseSnapshot)
	n := s.buildSnapshot()
	s.index.Rebuild(s.parallel.points, s.bounds)

	// Phases 1-3, each a barrier
	s.perf.StartPhase(telemetry.PhaseSteer)
	s.runPhase(phaseSteer, n, dt)

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	s.runPhase(phaseIntegrate, n, dt)

	s.perf.StartPhase(telemetry.PhaseWrap)
	s.runPhase(phaseWrap, n, dt)

	// Phase C: write back (single-threaded)
	s.perf.StartPhase(telemetry.PhaseApply)
	s.applyRows()

	s.tick++

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	s.maybeLogSummary()

	s.perf.EndTick()
}

// buildSnapshot copies every agent into the frame arena ordered by ID and
// returns the row count.
func (s *Simulation) buildSnapshot() int {
	p := s.parallel
	p.rows = p.rows[:0]

	query := s.boidFilter.Query()
	for query.Next() {
		pos, vel, acc, rot, body, boid := query.Get()
		p.rows = append(p.rows, agentRow{
			Entity: query.Entity(),
			ID:     boid.ID,
			Kin: systems.Kinematics{
				Pos:      systems.Vec2{X: pos.X, Y: pos.Y},
				Vel:      systems.Vec2{X: vel.X, Y: vel.Y},
				Acc:      systems.Vec2{X: acc.X, Y: acc.Y},
				Heading:  rot.Heading,
				MaxSpeed: boid.MaxSpeed,
			},
			PerceptionRadius:   boid.PerceptionRadius,
			SeparationDistance: boid.SeparationDistance,
			Scale:              body.Scale,
		})
	}

	byID := func(a, b agentRow) int { return cmp.Compare(a.ID, b.ID) }
	if !slices.IsSortedFunc(p.rows, byID) {
		slices.SortFunc(p.rows, byID)
	}

	n := len(p.rows)
	p.points = p.points[:0]
	for i := range p.rows {
		p.points = append(p.points, p.rows[i].Kin.Pos)
	}
	p.resize(n)
	return n
}

// applyRows writes the arena back to ECS components and counts wraps.
func (s *Simulation) applyRows() {
	p := s.parallel
	wraps := 0

	for i := range p.rows {
		row := &p.rows[i]

		// Get live component pointers
		pos := s.posMap.Get(row.Entity)
		vel := s.velMap.Get(row.Entity)
		acc := s.accMap.Get(row.Entity)
		rot := s.rotMap.Get(row.Entity)

		if pos == nil || vel == nil || acc == nil || rot == nil {
			continue
		}

		pos.X, pos.Y = row.Kin.Pos.X, row.Kin.Pos.Y
		vel.X, vel.Y = row.Kin.Vel.X, row.Kin.Vel.Y
		acc.X, acc.Y = row.Kin.Acc.X, row.Kin.Acc.Y
		rot.Heading = row.Kin.Heading

		if p.wrapped[i] {
			wraps++
		}
	}

	s.collector.RecordWraps(wraps)
}

// SetBounds replaces the simulation bounds. The next Step wraps against the
// new bounds. Non-positive dimensions are ignored.
func (s *Simulation) SetBounds(w, h float32) {
	if !(w > 0 && h > 0) {
		slog.Warn("ignoring invalid bounds", "width", w, "height", h)
		return
	}
	b := systems.Bounds{Width: w, Height: h}
	if b == s.bounds {
		return
	}
	s.bounds = b
	s.collector.RecordResize()
}

// Bounds returns the current simulation bounds.
func (s *Simulation) Bounds() (w, h float32) {
	return s.bounds.Width, s.bounds.Height
}

// Agents appends a view of every agent to dst, ordered by ID.
func (s *Simulation) Agents(dst []AgentView) []AgentView {
	dst = dst[:0]
	query := s.boidFilter.Query()
	for query.Next() {
		pos, vel, _, rot, body, boid := query.Get()
		dst = append(dst, AgentView{
			ID:      boid.ID,
			X:       pos.X,
			Y:       pos.Y,
			VX:      vel.X,
			VY:      vel.Y,
			Heading: rot.Heading,
			Scale:   body.Scale,
		})
	}
	byID := func(a, b AgentView) int { return cmp.Compare(a.ID, b.ID) }
	if !slices.IsSortedFunc(dst, byID) {
		slices.SortFunc(dst, byID)
	}
	return dst
}

// Count returns the number of agents.
func (s *Simulation) Count() int {
	return s.count
}

// Tick returns the number of completed frames.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// Rules returns the active rule set.
func (s *Simulation) Rules() systems.Rules {
	return s.rules
}

// SetStatsCallback registers fn to receive every flushed telemetry window.
func (s *Simulation) SetStatsCallback(fn func(telemetry.WindowStats)) {
	s.statsCallback = fn
}

// Close stops the worker pool and flushes output files.
func (s *Simulation) Close() error {
	s.parallel.stopWorkers()
	return s.output.Close()
}
