package cbs

import (
	"github.com/elektrokombinacija/mapf-lawt/internal/geom"
	"github.com/elektrokombinacija/mapf-lawt/internal/search"
)

// ConflictInfo is one side of a detected space-time collision.
type ConflictInfo struct {
	UID      geom.Pair
	Location geom.Rect
	Duration search.Duration
}

// Conflict is an unordered pair of ConflictInfos representing a detected
// overlap between two agents' footprints.
type Conflict struct {
	A, B ConflictInfo
}

// cursor tracks one agent's position through its path during the lock-step
// simulation in DetectConflicts.
type cursor struct {
	uid      geom.Pair
	idx      int
	location geom.Rect
	stay     search.Duration
}

// DetectConflicts walks paths in lock-step simulated time from tick 1 to
// endTime (the makespan) and returns every space-time overlap between two
// agents' footprints, each reported once at the tick either agent's
// movement introduces the overlap.
//
// Without the "at least one of the pair moved this tick" gate, a pair that
// already collided in a previous tick (e.g. while both sit still inside a
// shared long stay) would be re-emitted on every subsequent tick of that
// stay; the gate reports each distinct overlap episode exactly once, at
// its onset.
func DetectConflicts(paths []search.Path, endTime int) []Conflict {
	cursors := make([]cursor, len(paths))
	for i, path := range paths {
		cursors[i] = cursor{uid: path[0].Location.Origin, idx: 0, location: path[0].Location, stay: path[0].Duration}
	}

	var conflicts []Conflict
	for t := 1; t <= endTime; t++ {
		moved := make([]bool, len(paths))
		for i, path := range paths {
			idx := cursors[i].idx
			if t > cursors[i].stay.Depart && idx < len(path)-1 {
				idx++
				cursors[i].idx = idx
				cursors[i].location = path[idx].Location
				cursors[i].stay = path[idx].Duration
				moved[i] = true
			}
		}
		for i := 0; i < len(paths); i++ {
			for j := i + 1; j < len(paths); j++ {
				if !moved[i] && !moved[j] {
					continue
				}
				if cursors[i].location.Intersects(cursors[j].location) {
					conflicts = append(conflicts, Conflict{
						A: ConflictInfo{UID: cursors[i].uid, Location: cursors[i].location, Duration: cursors[i].stay},
						B: ConflictInfo{UID: cursors[j].uid, Location: cursors[j].location, Duration: cursors[j].stay},
					})
				}
			}
		}
	}
	return conflicts
}
