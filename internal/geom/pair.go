// Package geom provides the grid-coordinate and rectangle primitives shared
// by the grid, heuristic, search, and CBS layers.
package geom

// Pair is an ordered integer grid coordinate or offset. Coordinates on the
// grid are non-negative; offsets such as West and South, and the result of
// Add, may be negative.
type Pair struct {
	X, Y int
}

// Add returns p translated by d. Grid code relies on wraparound at the
// lower edge: subtracting 1 from coordinate 0 produces a negative value
// that InBounds rejects, rather than panicking or clamping.
func (p Pair) Add(d Pair) Pair {
	return Pair{X: p.X + d.X, Y: p.Y + d.Y}
}

// North, South, East and West wrap the four unit translations used to
// enumerate rect neighbours.
var (
	East  = Pair{X: 1, Y: 0}
	West  = Pair{X: -1, Y: 0}
	North = Pair{X: 0, Y: 1}
	South = Pair{X: 0, Y: -1}
)
