// Package pattern defines target pixel sets and the providers that produce them.
package pattern

import (
	"errors"
	"fmt"
	"slices"
)

// ErrOutOfBounds is returned when a pattern does not fit the canvas.
var ErrOutOfBounds = errors.New("pattern exceeds canvas")

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int
}

// ComparePoints orders points by row, then column.
func ComparePoints(a, b Point) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}

// TargetSet is an immutable set of target pixels in row-major order.
type TargetSet struct {
	points []Point
	index  map[Point]int
}

// NewTargetSet builds a target set from points, dropping duplicates.
func NewTargetSet(points []Point) TargetSet {
	sorted := slices.Clone(points)
	slices.SortFunc(sorted, ComparePoints)
	sorted = slices.Compact(sorted)

	index := make(map[Point]int, len(sorted))
	for i, p := range sorted {
		index[p] = i
	}
	return TargetSet{points: sorted, index: index}
}

// Len returns the number of target pixels.
func (s TargetSet) Len() int {
	return len(s.points)
}

// At returns the i-th point in row-major order.
func (s TargetSet) At(i int) Point {
	return s.points[i]
}

// Points returns a copy of the target pixels in row-major order.
func (s TargetSet) Points() []Point {
	return slices.Clone(s.points)
}

// Contains reports whether p is a target pixel.
func (s TargetSet) Contains(p Point) bool {
	_, ok := s.index[p]
	return ok
}

// IndexOf returns the row-major index of p.
func (s TargetSet) IndexOf(p Point) (int, bool) {
	i, ok := s.index[p]
	return i, ok
}

// Bounds returns the inclusive bounding box of the set.
// ok is false for an empty set.
func (s TargetSet) Bounds() (minP, maxP Point, ok bool) {
	if len(s.points) == 0 {
		return Point{}, Point{}, false
	}
	minP = Point{X: s.points[0].X, Y: s.points[0].Y}
	maxP = minP
	for _, p := range s.points[1:] {
		minP.X = min(minP.X, p.X)
		maxP.X = max(maxP.X, p.X)
		minP.Y = min(minP.Y, p.Y)
		maxP.Y = max(maxP.Y, p.Y)
	}
	return minP, maxP, true
}

// Provider produces the target pixel set for a canvas size.
type Provider interface {
	TargetPixels(width, height int) (TargetSet, error)
}

// Static is a provider returning a fixed list of points.
type Static []Point

// TargetPixels returns the fixed points, failing if any lies off the canvas.
func (s Static) TargetPixels(width, height int) (TargetSet, error) {
	for _, p := range s {
		if p.X < 0 || p.Y < 0 || p.X >= width || p.Y >= height {
			return TargetSet{}, fmt.Errorf("point (%d,%d) on %dx%d canvas: %w", p.X, p.Y, width, height, ErrOutOfBounds)
		}
	}
	return NewTargetSet(s), nil
}

// center translates points so their bounding box is centered on the canvas.
func center(points []Point, width, height int) ([]Point, error) {
	if len(points) == 0 {
		return nil, nil
	}
	set := NewTargetSet(points)
	minP, maxP, _ := set.Bounds()
	w := maxP.X - minP.X + 1
	h := maxP.Y - minP.Y + 1
	if w > width || h > height {
		return nil, fmt.Errorf("pattern %dx%d on %dx%d canvas: %w", w, h, width, height, ErrOutOfBounds)
	}

	dx := (width-w)/2 - minP.X
	dy := (height-h)/2 - minP.Y
	out := make([]Point, 0, set.Len())
	for _, p := range set.points {
		out = append(out, Point{X: p.X + dx, Y: p.Y + dy})
	}
	return out, nil
}
