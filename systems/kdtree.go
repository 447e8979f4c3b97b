package systems

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// kdPoint is a snapshot position tagged with its index.
type kdPoint struct {
	x, y float64
	idx  int
}

func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	if d == 0 {
		return p.x - q.x
	}
	return p.y - q.y
}

func (p kdPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance, as kdtree expects.
func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(kdPoint)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

// kdPoints implements kdtree.Interface.
type kdPoints []kdPoint

func (p kdPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p kdPoints) Len() int                      { return len(p) }
func (p kdPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p kdPoints) Pivot(d kdtree.Dim) int {
	return kdPlane{Dim: d, kdPoints: p}.Pivot()
}

// kdPlane sorts points along one dimension for median partitioning.
type kdPlane struct {
	kdtree.Dim
	kdPoints
}

func (p kdPlane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.kdPoints[i].x < p.kdPoints[j].x
	}
	return p.kdPoints[i].y < p.kdPoints[j].y
}
func (p kdPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.kdPoints = p.kdPoints[start:end]
	return p
}
func (p kdPlane) Swap(i, j int) {
	p.kdPoints[i], p.kdPoints[j] = p.kdPoints[j], p.kdPoints[i]
}

// KDTree is a gonum k-d tree over the frame snapshot. The tree search uses a
// slightly inflated radius in float64 and every candidate is then re-tested
// with Within so results match the other indexes exactly.
type KDTree struct {
	tree   *kdtree.Tree
	list   kdPoints
	points []Vec2
}

func (t *KDTree) Rebuild(points []Vec2, _ Bounds) {
	t.points = points
	t.list = t.list[:0]
	for i, p := range points {
		t.list = append(t.list, kdPoint{x: float64(p.X), y: float64(p.Y), idx: i})
	}
	if len(t.list) == 0 {
		t.tree = nil
		return
	}
	// kdtree.New reorders the list in place
	t.tree = kdtree.New(t.list, false)
}

func (t *KDTree) QueryInto(dst []int, self int, x, y, radius float32) []int {
	if t.tree == nil || radius < 0 {
		return dst
	}

	r := float64(radius)*1.0001 + 1e-3
	keep := kdtree.NewDistKeeper(r * r)
	t.tree.NearestSet(keep, kdPoint{x: float64(x), y: float64(y), idx: -1})

	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		j := cd.Comparable.(kdPoint).idx
		if j == self {
			continue
		}
		p := t.points[j]
		if Within(p.X-x, p.Y-y, radius) {
			dst = append(dst, j)
		}
	}
	return dst
}
