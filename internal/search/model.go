// Package search implements the low-level, time-expanded, constrained A*
// that plans a single agent's path while respecting a set of space-time
// constraints, plus the shared ScoredCell/Path/Constraint data model the
// high-level CBS search builds on.
package search

import "github.com/elektrokombinacija/mapf-lawt/internal/geom"

// Duration is a closed stay interval [Arrival, Depart] during which an
// agent continuously occupies a footprint: ticks are integers, and a cell
// with entry cost greater than one is occupied for every tick in the
// interval, not just the tick of arrival.
type Duration struct {
	Arrival, Depart int
}

// Overlaps reports whether the two closed intervals share a tick.
func (d Duration) Overlaps(other Duration) bool {
	return other.Arrival <= d.Depart && d.Arrival <= other.Depart
}

// ScoredCell is a node in the A* search: a footprint at a stay interval,
// with the f-score used to order the open set and a shared back-pointer to
// the predecessor node.
type ScoredCell struct {
	Location geom.Rect
	Duration Duration
	Cost     int // f-score: Duration.Depart + heuristic[Location.Origin]
	Prev     *ScoredCell
}

// Equal reports whether two ScoredCells refer to the same search state
// (location and stay interval); this is the key duplicate detection and
// constraint matching use.
func (s ScoredCell) Equal(other ScoredCell) bool {
	return s.Location == other.Location && s.Duration == other.Duration
}

// Less implements the total order from which the open-set comparator is
// built: lower Cost first, then later Duration.Depart, then later
// Duration.Arrival, then higher Location, then higher Prev pointer. Ties
// are broken deterministically all the way down so two runs over identical
// input produce identical search order.
func (s ScoredCell) Less(other ScoredCell) bool {
	if s.Cost != other.Cost {
		return s.Cost < other.Cost
	}
	if s.Duration.Depart != other.Duration.Depart {
		return s.Duration.Depart > other.Duration.Depart
	}
	if s.Duration.Arrival != other.Duration.Arrival {
		return s.Duration.Arrival > other.Duration.Arrival
	}
	if cmp := compareRect(s.Location, other.Location); cmp != 0 {
		return cmp > 0
	}
	return comparePrevPtr(s.Prev, other.Prev) > 0
}

func compareRect(a, b geom.Rect) int {
	if a.Origin.X != b.Origin.X {
		return a.Origin.X - b.Origin.X
	}
	if a.Origin.Y != b.Origin.Y {
		return a.Origin.Y - b.Origin.Y
	}
	if a.Extent.X != b.Extent.X {
		return a.Extent.X - b.Extent.X
	}
	return a.Extent.Y - b.Extent.Y
}

// comparePrevPtr gives a deterministic, total order over *ScoredCell
// predecessors without relying on memory addresses: a nil predecessor
// (the start of a path) sorts lowest, otherwise ties are broken by the
// predecessor's own fields, recursively.
func comparePrevPtr(a, b *ScoredCell) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if a.Cost != b.Cost {
		return a.Cost - b.Cost
	}
	if cmp := compareRect(a.Location, b.Location); cmp != 0 {
		return cmp
	}
	if a.Duration.Depart != b.Duration.Depart {
		return a.Duration.Depart - b.Duration.Depart
	}
	if a.Duration.Arrival != b.Duration.Arrival {
		return a.Duration.Arrival - b.Duration.Arrival
	}
	return comparePrevPtr(a.Prev, b.Prev)
}

// Path is an ordered sequence of ScoredCells from start to goal, with
// consecutive duplicates at the same location compressed: a wait extends
// the previous node's Duration.Depart rather than producing a new node.
type Path []ScoredCell

// Constraint forbids the agent identified by UID from having its footprint
// overlap Location during any tick in the closed interval Duration.
type Constraint struct {
	UID      geom.Pair
	Location geom.Rect
	Duration Duration
}

// FilterConstraints returns the subset of constraints that apply to the
// agent whose origin is uid.
func FilterConstraints(uid geom.Pair, constraints []Constraint) []Constraint {
	out := make([]Constraint, 0, len(constraints))
	for _, c := range constraints {
		if c.UID == uid {
			out = append(out, c)
		}
	}
	return out
}
