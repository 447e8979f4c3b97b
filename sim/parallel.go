package sim

import (
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flock/systems"
)

// parallelThreshold is the minimum agent count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// agentRow captures one agent for the duration of a frame.
// Rows are owned by their slot: phases 2 and 3 only touch row i from chunk i.
type agentRow struct {
	Entity             ecs.Entity
	ID                 uint32
	Kin                systems.Kinematics
	PerceptionRadius   float32
	SeparationDistance float32
	Scale              float32
}

// steerResult is the staging slot written by the steer phase.
type steerResult struct {
	Desired   systems.Vec2
	Neighbors int32
}

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	Indices   []int
	Neighbors []systems.Neighbor
}

type phase uint8

const (
	phaseSteer phase = iota
	phaseIntegrate
	phaseWrap
)

// workChunk represents a range of rows for a worker to process.
type workChunk struct {
	start, end int
	dt         float32
	phase      phase
}

// parallelState holds the frame arena and the worker pool.
type parallelState struct {
	rows      []agentRow
	points    []systems.Vec2 // frame-start positions, read by the neighbor index
	steered   []steerResult
	wrapped   []bool
	scratches []workerScratch

	numWorkers int
	threshold  int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(numWorkers, threshold int) *parallelState {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if threshold <= 0 {
		threshold = parallelThreshold
	}
	scratches := make([]workerScratch, numWorkers)
	for i := range scratches {
		scratches[i].Indices = make([]int, 0, 64)
		scratches[i].Neighbors = make([]systems.Neighbor, 0, 64)
	}
	return &parallelState{
		numWorkers: numWorkers,
		threshold:  threshold,
		scratches:  scratches,
		rows:       make([]agentRow, 0, 512),
		points:     make([]systems.Vec2, 0, 512),
		steered:    make([]steerResult, 0, 512),
		wrapped:    make([]bool, 0, 512),
	}
}

// resize sets the staging slices to length n, reusing capacity.
func (p *parallelState) resize(n int) {
	if cap(p.steered) < n {
		p.steered = make([]steerResult, n)
		p.wrapped = make([]bool, n)
	}
	p.steered = p.steered[:n]
	p.wrapped = p.wrapped[:n]
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(s *Simulation) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(s *Simulation, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.computeChunk(chunk, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// runPhase processes all n rows for one phase and returns once every row is
// done. The return is the barrier between phases.
func (s *Simulation) runPhase(ph phase, n int, dt float32) {
	if n == 0 {
		return
	}
	p := s.parallel

	if n < p.threshold || p.numWorkers == 1 {
		// Single-threaded for small populations
		s.computeChunk(workChunk{start: 0, end: n, dt: dt, phase: ph}, &p.scratches[0])
		return
	}

	// Ensure workers are running
	if !p.running {
		p.startWorkers(s)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end, dt: dt, phase: ph}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// computeChunk processes a range of rows for a single phase.
func (s *Simulation) computeChunk(chunk workChunk, scratch *workerScratch) {
	switch chunk.phase {
	case phaseSteer:
		s.steerChunk(chunk.start, chunk.end, scratch)
	case phaseIntegrate:
		s.integrateChunk(chunk.start, chunk.end, chunk.dt)
	case phaseWrap:
		s.wrapChunk(chunk.start, chunk.end)
	}
}

// steerChunk queries neighbors and evaluates the rules. Reads the whole arena,
// writes only staging slots in [i0, i1).
func (s *Simulation) steerChunk(i0, i1 int, scratch *workerScratch) {
	p := s.parallel
	for i := i0; i < i1; i++ {
		row := &p.rows[i]
		self := systems.Agent{
			Pos:                row.Kin.Pos,
			Vel:                row.Kin.Vel,
			MaxSpeed:           row.Kin.MaxSpeed,
			PerceptionRadius:   row.PerceptionRadius,
			SeparationDistance: row.SeparationDistance,
		}

		scratch.Indices = s.index.QueryInto(scratch.Indices[:0], i, self.Pos.X, self.Pos.Y, row.PerceptionRadius)

		scratch.Neighbors = scratch.Neighbors[:0]
		for _, j := range scratch.Indices {
			other := &p.rows[j]
			scratch.Neighbors = append(scratch.Neighbors, systems.Neighbor{
				Pos:  other.Kin.Pos,
				Vel:  other.Kin.Vel,
				Dist: systems.Distance(self.Pos, other.Kin.Pos),
			})
		}

		p.steered[i] = steerResult{
			Desired:   systems.Desired(self, scratch.Neighbors, s.rules),
			Neighbors: int32(len(scratch.Neighbors)),
		}
	}
}

func (s *Simulation) integrateChunk(i0, i1 int, dt float32) {
	p := s.parallel
	for i := i0; i < i1; i++ {
		systems.Integrate(&p.rows[i].Kin, p.steered[i].Desired, dt, s.rules)
	}
}

func (s *Simulation) wrapChunk(i0, i1 int) {
	p := s.parallel
	for i := i0; i < i1; i++ {
		p.wrapped[i] = systems.Wrap(&p.rows[i].Kin.Pos, p.rows[i].Scale, s.bounds)
	}
}
