package geom

// Rect is the axis-aligned rectangle of cells with X in
// [Origin.X, Origin.X+Extent.X] and Y in [Origin.Y, Origin.Y+Extent.Y],
// inclusive on both ends. An Extent of (0,0) is a single cell.
type Rect struct {
	Origin Pair
	Extent Pair
}

// MaxCoord returns the inclusive upper corner of r.
func (r Rect) MaxCoord() Pair {
	return Pair{X: r.Origin.X + r.Extent.X, Y: r.Origin.Y + r.Extent.Y}
}

// Cells enumerates every Pair contained in r, origin first, column by
// column (Y varies fastest).
func (r Rect) Cells() []Pair {
	out := make([]Pair, 0, (r.Extent.X+1)*(r.Extent.Y+1))
	for dx := 0; dx <= r.Extent.X; dx++ {
		for dy := 0; dy <= r.Extent.Y; dy++ {
			out = append(out, Pair{X: r.Origin.X + dx, Y: r.Origin.Y + dy})
		}
	}
	return out
}

// Intersects reports whether r and other share at least one cell.
func (r Rect) Intersects(other Rect) bool {
	rMax, oMax := r.MaxCoord(), other.MaxCoord()
	return r.Origin.X <= oMax.X && other.Origin.X <= rMax.X &&
		r.Origin.Y <= oMax.Y && other.Origin.Y <= rMax.Y
}

// Translated returns r shifted by d, extent unchanged.
func (r Rect) Translated(d Pair) Rect {
	return Rect{Origin: r.Origin.Add(d), Extent: r.Extent}
}

// AtOrigin returns the rect with the given origin and r's extent, used when
// a move produces a footprint at a new location.
func (r Rect) AtOrigin(origin Pair) Rect {
	return Rect{Origin: origin, Extent: r.Extent}
}
