package search

import (
	"container/heap"

	"github.com/elektrokombinacija/mapf-lawt/internal/geom"
	"github.com/elektrokombinacija/mapf-lawt/internal/grid"
)

// openState is a key identifying a search state for duplicate detection,
// independent of cost.
type openState struct {
	location geom.Rect
	duration Duration
}

// openHeap is the A* priority queue: container/heap pops the *lowest* cost
// first, so Less is wired straight to ScoredCell.Less rather than inverted
// — unlike a max-heap wrapper, no extra negation layer is needed because
// the total order in ScoredCell.Less is already defined as "best first."
type openHeap struct {
	nodes []*ScoredCell
	index map[openState]int // position in nodes, for duplicate lookups
}

func newOpenHeap() *openHeap {
	return &openHeap{index: make(map[openState]int)}
}

func (h *openHeap) Len() int { return len(h.nodes) }
func (h *openHeap) Less(i, j int) bool {
	return h.nodes[i].Less(*h.nodes[j])
}
func (h *openHeap) Swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
	h.index[stateOf(h.nodes[i])] = i
	h.index[stateOf(h.nodes[j])] = j
}
func (h *openHeap) Push(x any) {
	n := x.(*ScoredCell)
	h.index[stateOf(n)] = len(h.nodes)
	h.nodes = append(h.nodes, n)
}
func (h *openHeap) Pop() any {
	old := h.nodes
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	h.nodes = old[:n-1]
	delete(h.index, stateOf(node))
	return node
}

func stateOf(n *ScoredCell) openState {
	return openState{location: n.Location, duration: n.Duration}
}

// bestKnown returns the open node that index records for state, if any.
// When several entries for one state are open, the recorded one is not
// necessarily the cheapest, and popping one entry drops the record even
// if another entry for that state remains open.
func (h *openHeap) bestKnown(state openState) (*ScoredCell, bool) {
	idx, ok := h.index[state]
	if !ok {
		return nil, false
	}
	return h.nodes[idx], true
}

// AStar is the time-expanded, constrained single-agent search: a grid, the
// set of acceptable destinations, and a precomputed heuristic lower bound
// from every footprint-origin to the nearest destination.
type AStar struct {
	Grid         *grid.WeightedGrid
	Destinations map[geom.Pair]bool
	Footprint    geom.Pair
	Heuristic    *grid.Grid[int]
}

// NewAStar precomputes the heuristic and returns a ready-to-query solver.
func NewAStar(g *grid.WeightedGrid, destinations []geom.Pair, footprint geom.Pair) *AStar {
	destSet := make(map[geom.Pair]bool, len(destinations))
	for _, d := range destinations {
		destSet[d] = true
	}
	return &AStar{
		Grid:         g,
		Destinations: destSet,
		Footprint:    footprint,
		Heuristic:    grid.BuildHeuristic(g, destinations, footprint),
	}
}

// satisfiesConstraints reports whether candidate avoids every constraint in
// constraints (already filtered to the relevant agent).
func satisfiesConstraints(candidate ScoredCell, constraints []Constraint) bool {
	for _, c := range constraints {
		if !c.Location.Intersects(candidate.Location) {
			continue
		}
		if c.Duration.Overlaps(candidate.Duration) {
			return false
		}
	}
	return true
}

// mayStop is the stronger terminal test: no constraint may cover
// candidate's footprint from candidate's arrival onward to infinity, i.e.
// no constraint whose window extends past (or to) the arrival tick.
func mayStop(candidate ScoredCell, constraints []Constraint) bool {
	for _, c := range constraints {
		if c.Location.Intersects(candidate.Location) && candidate.Duration.Arrival <= c.Duration.Depart {
			return false
		}
	}
	return true
}

// successors generates the wait and up-to-four move candidates for n,
// filtered by the constraints that apply to n's agent.
func (a *AStar) successors(n *ScoredCell, constraints []Constraint) []ScoredCell {
	neighbors := a.Grid.Neighbors(n.Location)
	out := make([]ScoredCell, 0, len(neighbors)+1)

	wait := ScoredCell{
		Location: n.Location,
		Duration: Duration{Arrival: n.Duration.Arrival, Depart: n.Duration.Depart + 1},
		Cost:     n.Cost + 1,
		Prev:     n.Prev,
	}
	if satisfiesConstraints(wait, constraints) {
		out = append(out, wait)
	}

	for _, loc := range neighbors {
		depart := n.Duration.Depart + a.Grid.Cost(loc)
		move := ScoredCell{
			Location: loc,
			Duration: Duration{Arrival: n.Duration.Depart + 1, Depart: depart},
			Cost:     depart + a.Heuristic.At(loc.Origin),
			Prev:     n,
		}
		if satisfiesConstraints(move, constraints) {
			out = append(out, move)
		}
	}
	return out
}

// reconstructPath walks Prev back from last, collapsing consecutive entries
// at the same location (their stay interval already encodes the wait), and
// reverses the result into start-to-goal order.
func reconstructPath(last ScoredCell) Path {
	path := make(Path, 0, last.Duration.Depart+1)
	path = append(path, last)
	cur := last
	for cur.Prev != nil {
		prev := *cur.Prev
		if prev.Location != cur.Location {
			path = append(path, prev)
		}
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Search runs the constrained A* for the agent with the given start origin.
// Only constraints whose UID equals start are consulted. It returns the
// found path and true, or a zero Path and false if the agent cannot reach
// any destination under the given constraints.
func (a *AStar) Search(start geom.Pair, constraints []Constraint) (Path, bool) {
	myConstraints := FilterConstraints(start, constraints)

	// Waits keep the open set non-empty forever, so a start with no route
	// to any destination must be rejected up front.
	startHeuristic := a.Heuristic.At(start)
	if startHeuristic == grid.Unreachable {
		return nil, false
	}

	open := newOpenHeap()
	heap.Init(open)
	heap.Push(open, &ScoredCell{
		Location: geom.Rect{Origin: start, Extent: a.Footprint},
		Duration: Duration{Arrival: 0, Depart: 0},
		Cost:     startHeuristic,
	})

	for open.Len() > 0 {
		current := heap.Pop(open).(*ScoredCell)

		for _, successor := range a.successors(current, myConstraints) {
			state := stateOf(&successor)
			if best, ok := open.bestKnown(state); ok && best.Cost <= successor.Cost {
				continue
			}

			if a.Destinations[successor.Location.Origin] && mayStop(successor, myConstraints) {
				return reconstructPath(successor), true
			}
			s := successor
			heap.Push(open, &s)
		}
	}
	return nil, false
}
