package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/murmur/pattern"
)

// CapturedSet tracks which target pixels have been captured this cycle.
// It only grows; Reset is the single way to shrink it.
type CapturedSet struct {
	targets  pattern.TargetSet
	captured []bool // indexed by target row-major index
	order    []pattern.Point
}

// NewCapturedSet creates an empty captured set over targets.
func NewCapturedSet(targets pattern.TargetSet) *CapturedSet {
	return &CapturedSet{
		targets:  targets,
		captured: make([]bool, targets.Len()),
		order:    make([]pattern.Point, 0, targets.Len()),
	}
}

// Len returns the number of captured pixels.
func (c *CapturedSet) Len() int {
	return len(c.order)
}

// Total returns the number of target pixels.
func (c *CapturedSet) Total() int {
	return c.targets.Len()
}

// Remaining returns the number of uncaptured target pixels.
func (c *CapturedSet) Remaining() int {
	return c.targets.Len() - len(c.order)
}

// Complete reports whether every target pixel is captured.
func (c *CapturedSet) Complete() bool {
	return len(c.order) == c.targets.Len()
}

// Fraction returns the captured fraction in [0, 1]. An empty target set is fully captured.
func (c *CapturedSet) Fraction() float64 {
	if c.targets.Len() == 0 {
		return 1
	}
	return float64(len(c.order)) / float64(c.targets.Len())
}

// Has reports whether p has been captured.
func (c *CapturedSet) Has(p pattern.Point) bool {
	i, ok := c.targets.IndexOf(p)
	return ok && c.captured[i]
}

// Merge adds delta to the set and returns the points that were newly captured,
// in delta order. Points already captured or not in the target set are ignored.
func (c *CapturedSet) Merge(delta []pattern.Point) []pattern.Point {
	var added []pattern.Point
	for _, p := range delta {
		i, ok := c.targets.IndexOf(p)
		if !ok || c.captured[i] {
			continue
		}
		c.captured[i] = true
		c.order = append(c.order, p)
		added = append(added, p)
	}
	return added
}

// Missing returns the uncaptured points in row-major order.
func (c *CapturedSet) Missing() []pattern.Point {
	out := make([]pattern.Point, 0, c.Remaining())
	for i, done := range c.captured {
		if !done {
			out = append(out, c.targets.At(i))
		}
	}
	return out
}

// Order returns the captured points in capture order.
func (c *CapturedSet) Order() []pattern.Point {
	return append([]pattern.Point(nil), c.order...)
}

// Reset clears every capture.
func (c *CapturedSet) Reset() {
	clear(c.captured)
	c.order = c.order[:0]
}

// TargetIndex is a bucket grid over the uncaptured target pixels, rebuilt from
// the captured set at the start of each tick.
type TargetIndex struct {
	cellSize int
	cols     int
	rows     int
	cells    [][]pattern.Point
	count    int
}

// NewTargetIndex creates an index covering a width x height canvas.
func NewTargetIndex(width, height, cellSize int) *TargetIndex {
	cellSize = max(cellSize, 1)
	cols := width/cellSize + 1
	rows := height/cellSize + 1
	return &TargetIndex{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([][]pattern.Point, cols*rows),
	}
}

// Rebuild indexes every target pixel not yet captured.
func (ix *TargetIndex) Rebuild(captured *CapturedSet) {
	for i := range ix.cells {
		ix.cells[i] = ix.cells[i][:0]
	}
	ix.count = 0

	for i, done := range captured.captured {
		if done {
			continue
		}
		p := captured.targets.At(i)
		col := clampInt(p.X/ix.cellSize, 0, ix.cols-1)
		row := clampInt(p.Y/ix.cellSize, 0, ix.rows-1)
		idx := row*ix.cols + col
		ix.cells[idx] = append(ix.cells[idx], p)
		ix.count++
	}
}

// Len returns the number of indexed targets.
func (ix *TargetIndex) Len() int {
	return ix.count
}

// Nearest returns the indexed target closest to p. Ties on distance are
// broken by row, then column. ok is false when the index is empty.
func (ix *TargetIndex) Nearest(p r2.Vec) (best pattern.Point, dist float64, ok bool) {
	if ix.count == 0 {
		return pattern.Point{}, 0, false
	}

	cs := float64(ix.cellSize)
	centerCol := clampInt(int(math.Floor(p.X/cs)), 0, ix.cols-1)
	centerRow := clampInt(int(math.Floor(p.Y/cs)), 0, ix.rows-1)
	bestSq := math.Inf(1)
	maxRing := max(ix.cols, ix.rows)

	for ring := 0; ring <= maxRing; ring++ {
		// Every cell in this ring is at least (ring-1) cells away
		if ok && float64(ring-1)*cs > math.Sqrt(bestSq) {
			break
		}
		for row := centerRow - ring; row <= centerRow+ring; row++ {
			if row < 0 || row >= ix.rows {
				continue
			}
			for col := centerCol - ring; col <= centerCol+ring; col++ {
				if col < 0 || col >= ix.cols {
					continue
				}
				// Only the ring's border cells
				if row != centerRow-ring && row != centerRow+ring && col != centerCol-ring && col != centerCol+ring {
					continue
				}
				for _, t := range ix.cells[row*ix.cols+col] {
					dx := float64(t.X) - p.X
					dy := float64(t.Y) - p.Y
					dSq := dx*dx + dy*dy
					if !ok || dSq < bestSq || (dSq == bestSq && pattern.ComparePoints(t, best) < 0) {
						best, bestSq, ok = t, dSq, true
					}
				}
			}
		}
	}

	return best, math.Sqrt(bestSq), ok
}
