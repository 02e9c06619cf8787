// Package systems provides the per-tick swarm systems: neighbor lookup,
// flocking, capture, target search and wave spawning.
package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/murmur/components"
)

// AgentState is a read-only copy of one agent taken at the start of a tick.
// Systems read only snapshots so results do not depend on iteration order.
type AgentState struct {
	Entity ecs.Entity
	Pos    r2.Vec
	Prev   r2.Vec // Position before this tick's move, used for path sampling
	Vel    r2.Vec
	Bird   components.Bird
}

// Neighbor holds a nearby agent with precomputed spatial data.
type Neighbor struct {
	Index  int    // Index into the snapshot slice
	Delta  r2.Vec // Offset from query origin to neighbor
	DistSq float64
}

// SpatialGrid provides O(1) neighbor lookups using a cell-based grid.
// The grid covers the canvas plus a margin on every side; positions beyond it
// are clamped into the border cells.
type SpatialGrid struct {
	cellSize float64
	originX  float64
	originY  float64
	cols     int
	rows     int
	cells    [][]int // snapshot indices per cell
}

// NewSpatialGrid creates a spatial grid covering the canvas and margin.
func NewSpatialGrid(width, height, margin, cellSize float64) *SpatialGrid {
	cols := int((width+2*margin)/cellSize) + 1
	rows := int((height+2*margin)/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		originX:  -margin,
		originY:  -margin,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all agents from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Rebuild clears the grid and inserts every agent of the snapshot.
func (g *SpatialGrid) Rebuild(agents []AgentState) {
	g.Clear()
	for i := range agents {
		g.Insert(i, agents[i].Pos)
	}
}

// Insert adds a snapshot index to the grid at the given position.
func (g *SpatialGrid) Insert(i int, p r2.Vec) {
	col, row := g.cellCoords(p)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], i)
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 64

// QueryRadiusInto finds agents within radius of p and appends them to dst
// (up to MaxQueryResults). Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, p r2.Vec, radius float64, exclude int, agents []AgentState) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cellCoords(p)
	radiusSq := radius * radius

	for row := max(centerRow-cellRadius, 0); row <= min(centerRow+cellRadius, g.rows-1); row++ {
		for col := max(centerCol-cellRadius, 0); col <= min(centerCol+cellRadius, g.cols-1); col++ {
			for _, i := range g.cells[row*g.cols+col] {
				if i == exclude {
					continue
				}

				delta := r2.Sub(agents[i].Pos, p)
				distSq := delta.X*delta.X + delta.Y*delta.Y
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Index: i, Delta: delta, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellCoords returns the clamped cell column and row for a position.
func (g *SpatialGrid) cellCoords(p r2.Vec) (col, row int) {
	col = clampInt(int((p.X-g.originX)/g.cellSize), 0, g.cols-1)
	row = clampInt(int((p.Y-g.originY)/g.cellSize), 0, g.rows-1)
	return col, row
}
