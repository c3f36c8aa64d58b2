// Package grid stores the dense, weighted 2-D cell array and answers the
// footprint-aware neighbour, clearance, and cost queries the search layer
// needs. It also builds the multi-source Dijkstra heuristic used by A*.
package grid

import (
	"github.com/elektrokombinacija/mapf-lawt/internal/geom"
)

// CellInfo is the per-cell traversal cost and blocked flag. Cost is paid on
// entry to the cell: an agent entering a rect pays the sum of CellInfo.Cost
// across every cell the rect covers.
type CellInfo struct {
	Cost    int
	Blocked bool
}

// Grid is a dense, row-major 2-D array of T, indexed by geom.Pair.
type Grid[T any] struct {
	data   []T
	extent geom.Pair // inclusive max coordinate
}

// NewGrid allocates a grid with inclusive max coordinate extent, every cell
// initialized to value.
func NewGrid[T any](extent geom.Pair, value T) *Grid[T] {
	g := &Grid[T]{
		data:   make([]T, (extent.X+1)*(extent.Y+1)),
		extent: extent,
	}
	for i := range g.data {
		g.data[i] = value
	}
	return g
}

// Extent returns the inclusive max coordinate.
func (g *Grid[T]) Extent() geom.Pair { return g.extent }

// Size returns the number of columns and rows.
func (g *Grid[T]) Size() geom.Pair {
	return geom.Pair{X: g.extent.X + 1, Y: g.extent.Y + 1}
}

func (g *Grid[T]) index(p geom.Pair) int {
	return p.X + p.Y*(g.extent.X+1)
}

// At returns the value stored at p. p must be in bounds.
func (g *Grid[T]) At(p geom.Pair) T {
	return g.data[g.index(p)]
}

// Set stores value at p. p must be in bounds.
func (g *Grid[T]) Set(p geom.Pair, value T) {
	g.data[g.index(p)] = value
}

// Contains reports whether p is a valid coordinate for this grid (both axes
// non-negative and at most Extent).
func (g *Grid[T]) Contains(p geom.Pair) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= g.extent.X && p.Y <= g.extent.Y
}

// IndexedIter calls fn for every cell in row-major order with its
// coordinate.
func (g *Grid[T]) IndexedIter(fn func(p geom.Pair, value T)) {
	for idx, v := range g.data {
		fn(geom.Pair{X: idx % (g.extent.X + 1), Y: idx / (g.extent.X + 1)}, v)
	}
}
