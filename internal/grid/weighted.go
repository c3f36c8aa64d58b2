package grid

import "github.com/elektrokombinacija/mapf-lawt/internal/geom"

// WeightedGrid wraps a dense Grid of CellInfo with the footprint-aware
// queries the search layer needs: clearance, neighbours, and entry cost for
// a rectangular agent body, plus the effective-origin bounds a footprint of
// a given extent may occupy.
type WeightedGrid struct {
	cells *Grid[CellInfo]
}

// NewWeightedGrid wraps cells.
func NewWeightedGrid(cells *Grid[CellInfo]) *WeightedGrid {
	return &WeightedGrid{cells: cells}
}

// Extent returns the grid's inclusive max coordinate.
func (g *WeightedGrid) Extent() geom.Pair { return g.cells.Extent() }

// EffectiveExtent returns the inclusive maximum origin a footprint of the
// given extent may occupy while staying fully on the grid.
func (g *WeightedGrid) EffectiveExtent(footprint geom.Pair) geom.Pair {
	e := g.cells.Extent()
	return geom.Pair{X: e.X - footprint.X, Y: e.Y - footprint.Y}
}

// EffectiveSize returns EffectiveExtent plus one, i.e. the number of valid
// origins along each axis for the given footprint.
func (g *WeightedGrid) EffectiveSize(footprint geom.Pair) geom.Pair {
	ee := g.EffectiveExtent(footprint)
	return geom.Pair{X: ee.X + 1, Y: ee.Y + 1}
}

// InBounds reports whether every cell of rect lies on the grid.
func (g *WeightedGrid) InBounds(rect geom.Rect) bool {
	max := rect.MaxCoord()
	e := g.cells.Extent()
	return rect.Origin.X >= 0 && rect.Origin.Y >= 0 && max.X <= e.X && max.Y <= e.Y
}

// IsClear reports whether every cell of rect is in bounds and unblocked.
func (g *WeightedGrid) IsClear(rect geom.Rect) bool {
	if !g.InBounds(rect) {
		return false
	}
	for _, cell := range rect.Cells() {
		if g.cells.At(cell).Blocked {
			return false
		}
	}
	return true
}

// SetBlocked marks every cell of rect blocked or clear.
func (g *WeightedGrid) SetBlocked(rect geom.Rect, blocked bool) {
	for _, cell := range rect.Cells() {
		ci := g.cells.At(cell)
		ci.Blocked = blocked
		g.cells.Set(cell, ci)
	}
}

// Cost returns the total entry cost of rect: the sum of CellInfo.Cost over
// every cell the footprint covers.
func (g *WeightedGrid) Cost(rect geom.Rect) int {
	total := 0
	for _, cell := range rect.Cells() {
		total += g.cells.At(cell).Cost
	}
	return total
}

// Neighbors returns the (up to four) rects obtained by translating rect by
// ±1 along each axis, admitting only candidates that are in bounds and
// fully unblocked.
func (g *WeightedGrid) Neighbors(rect geom.Rect) []geom.Rect {
	candidates := [4]geom.Rect{
		rect.Translated(geom.East),
		rect.Translated(geom.North),
		rect.Translated(geom.West),
		rect.Translated(geom.South),
	}
	out := make([]geom.Rect, 0, 4)
	for _, c := range candidates {
		if g.IsClear(c) {
			out = append(out, c)
		}
	}
	return out
}
