package systems

import (
	"fmt"

	"github.com/pthm-cable/flock/config"
)

// NeighborIndex answers fixed-radius queries over a frame's position snapshot.
// Rebuild is called once per frame before any query. Queries may run
// concurrently; the points slice passed to Rebuild must not change until the
// next Rebuild.
type NeighborIndex interface {
	Rebuild(points []Vec2, b Bounds)
	// QueryInto appends the indices of points within radius of (x, y) to dst,
	// skipping index self. Order is unspecified.
	QueryInto(dst []int, self int, x, y, radius float32) []int
}

// NewNeighborIndex returns the index named by kind.
func NewNeighborIndex(kind string, cellSize float32) (NeighborIndex, error) {
	switch kind {
	case config.IndexBrute:
		return &BruteForce{}, nil
	case config.IndexGrid, "":
		return NewSpatialGrid(cellSize), nil
	case config.IndexKDTree:
		return &KDTree{}, nil
	}
	return nil, fmt.Errorf("unknown neighbor index %q", kind)
}

// BruteForce scans every point. It is the reference the other indexes are
// tested against.
type BruteForce struct {
	points []Vec2
}

func (bf *BruteForce) Rebuild(points []Vec2, _ Bounds) {
	bf.points = points
}

func (bf *BruteForce) QueryInto(dst []int, self int, x, y, radius float32) []int {
	for j, p := range bf.points {
		if j == self {
			continue
		}
		if Within(p.X-x, p.Y-y, radius) {
			dst = append(dst, j)
		}
	}
	return dst
}

// SpatialGrid buckets points into square cells covering the bounds.
// Points outside the bounds land in the nearest edge cell. Distances are
// plain Euclidean; the world does not wrap for neighbor purposes.
type SpatialGrid struct {
	cellSize float32
	cols     int
	rows     int
	bounds   Bounds
	cells    [][]int // flat grid of point indices
	points   []Vec2
}

// NewSpatialGrid creates an empty grid. Cells are sized on the first Rebuild.
func NewSpatialGrid(cellSize float32) *SpatialGrid {
	if cellSize < 1 {
		cellSize = 1
	}
	return &SpatialGrid{cellSize: cellSize}
}

// resize reallocates the cell array for new bounds.
func (g *SpatialGrid) resize(b Bounds) {
	g.bounds = b
	g.cols = int(b.Width/g.cellSize) + 1
	g.rows = int(b.Height/g.cellSize) + 1
	if g.cols < 1 {
		g.cols = 1
	}
	if g.rows < 1 {
		g.rows = 1
	}

	g.cells = make([][]int, g.cols*g.rows)
	for i := range g.cells {
		g.cells[i] = make([]int, 0, 8) // pre-allocate small capacity
	}
}

// Clear removes all points from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) Rebuild(points []Vec2, b Bounds) {
	if g.cells == nil || b != g.bounds {
		g.resize(b)
	} else {
		g.Clear()
	}

	g.points = points
	for i, p := range points {
		idx := g.cellIndex(p.X, p.Y)
		g.cells[idx] = append(g.cells[idx], i)
	}
}

func (g *SpatialGrid) QueryInto(dst []int, self int, x, y, radius float32) []int {
	if len(g.cells) == 0 {
		return dst
	}

	minCol := clampInt(int((x-radius)/g.cellSize), 0, g.cols-1)
	maxCol := clampInt(int((x+radius)/g.cellSize), 0, g.cols-1)
	minRow := clampInt(int((y-radius)/g.cellSize), 0, g.rows-1)
	maxRow := clampInt(int((y+radius)/g.cellSize), 0, g.rows-1)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			for _, j := range g.cells[row*g.cols+col] {
				if j == self {
					continue
				}
				p := g.points[j]
				if Within(p.X-x, p.Y-y, radius) {
					dst = append(dst, j)
				}
			}
		}
	}
	return dst
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float32) int {
	col := clampInt(int(x/g.cellSize), 0, g.cols-1)
	row := clampInt(int(y/g.cellSize), 0, g.rows-1)
	return row*g.cols + col
}
