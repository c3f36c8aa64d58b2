// Package cbs implements the high-level conflict-based search: build a
// Solver over a grid and a set of agent origins/destinations, detect
// conflicts between independently-planned paths, and resolve them by
// branching the constraint tree until a conflict-free solution is found.
package cbs

import (
	"container/heap"
	"sort"

	"github.com/elektrokombinacija/mapf-lawt/internal/geom"
	"github.com/elektrokombinacija/mapf-lawt/internal/search"
)

// SolveOptions controls the high-level search.
type SolveOptions struct {
	// NodeBudget caps the number of constraint-tree nodes CBS may expand
	// before giving up with ErrBudgetExhausted, guarding against
	// pathological exponential blow-up (spec §5).
	NodeBudget int

	// GreedyBatch selects the batched, greedy-disjoint conflict expansion
	// of spec §4.5 when true. Setting it false falls back to the
	// textbook single-conflict-per-node expansion, which this repo keeps
	// available per spec §4.5/§9's explicit requirement, at the cost of
	// a larger constraint tree.
	GreedyBatch bool
}

// DefaultOptions is the batched expansion with a generous node budget.
func DefaultOptions() SolveOptions {
	return SolveOptions{NodeBudget: 100000, GreedyBatch: true}
}

// node is a constraint-tree node: the constraints accumulated on the path
// from the root, the current per-agent solution (index-aligned with
// Solver.Origins), the makespan, and the conflicts detected in that
// solution.
type node struct {
	constraints []search.Constraint
	solution    []search.Path
	cost        int
	conflicts   []Conflict
}

// nodeHeap orders nodes lowest-cost first, breaking ties by fewest
// conflicts, then fewest constraints, then lexicographically-smallest
// solution, matching spec §4.5's node ordering exactly.
type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	if len(a.conflicts) != len(b.conflicts) {
		return len(a.conflicts) < len(b.conflicts)
	}
	if len(a.constraints) != len(b.constraints) {
		return len(a.constraints) < len(b.constraints)
	}
	return compareSolutions(a.solution, b.solution) < 0
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// compareSolutions gives a deterministic total order over solutions
// (agent-index order, then path-index order, then field order), used only
// to break ties that cost/conflict-count/constraint-count leave open.
func compareSolutions(a, b []search.Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := comparePaths(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func comparePaths(a, b search.Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareScoredCell(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func compareScoredCell(a, b search.ScoredCell) int {
	if a.Cost != b.Cost {
		return a.Cost - b.Cost
	}
	if a.Duration.Depart != b.Duration.Depart {
		return a.Duration.Depart - b.Duration.Depart
	}
	if a.Duration.Arrival != b.Duration.Arrival {
		return a.Duration.Arrival - b.Duration.Arrival
	}
	if a.Location.Origin.X != b.Location.Origin.X {
		return a.Location.Origin.X - b.Location.Origin.X
	}
	return a.Location.Origin.Y - b.Location.Origin.Y
}

// SolveMAPF runs the high-level CBS search and returns one footprint-
// disjoint path per origin, in input order.
func (s *Solver) SolveMAPF(opts SolveOptions) ([]search.Path, error) {
	root, ok := s.planNode(nil)
	if !ok {
		return nil, ErrInfeasible
	}

	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, root)

	expanded := 0
	for open.Len() > 0 {
		if opts.NodeBudget > 0 && expanded >= opts.NodeBudget {
			return nil, ErrBudgetExhausted
		}
		expanded++

		n := heap.Pop(open).(*node)
		if len(n.conflicts) == 0 {
			return n.solution, nil
		}

		for _, child := range s.expand(n, opts) {
			heap.Push(open, child)
		}
	}
	return nil, ErrInfeasible
}

// planNode plans every origin independently under constraints, extends
// every path to the common makespan, and computes cost and conflicts. It
// reports false if any agent has no path under the given constraints.
func (s *Solver) planNode(constraints []search.Constraint) (*node, bool) {
	solution := make([]search.Path, len(s.Origins))
	for i, origin := range s.Origins {
		path, ok := s.AStar(origin, constraints)
		if !ok {
			return nil, false
		}
		solution[i] = path
	}
	return s.buildNode(constraints, solution), true
}

// buildNode raises every path's final Depart to the solution-wide makespan
// (so an agent waiting at its destination still occupies that footprint for
// arrival-conflict detection) and computes cost and conflicts.
//
// It never mutates a Path in place: two sibling constraint-tree nodes can
// share the same unmodified agent's Path value, and raising its final
// Depart in place would silently corrupt every node holding it. extendPath
// allocates a fresh final ScoredCell only for paths that actually need
// raising; paths already at the makespan are shared as-is.
func (s *Solver) buildNode(constraints []search.Constraint, solution []search.Path) *node {
	end := makespan(solution)
	extended := make([]search.Path, len(solution))
	for i, path := range solution {
		extended[i] = extendPath(path, end)
	}

	n := &node{constraints: constraints, solution: extended, cost: end}
	n.conflicts = DetectConflicts(extended, end)
	return n
}

// extendPath returns path with its final ScoredCell's Depart raised to end,
// copying only when a change is needed so unaffected agents' Paths remain
// shared between constraint-tree nodes.
func extendPath(path search.Path, end int) search.Path {
	last := path[len(path)-1]
	if last.Duration.Depart == end {
		return path
	}
	out := make(search.Path, len(path))
	copy(out, path)
	out[len(out)-1].Duration.Depart = end
	return out
}

func makespan(solution []search.Path) int {
	end := 0
	for _, path := range solution {
		if d := path[len(path)-1].Duration.Depart; d > end {
			end = d
		}
	}
	return end
}

// exploration is a single conflict's resolution candidate: the pair of
// constraints derived from it, and the (possibly nil on one side) re-
// planned agent index and path for each side.
type exploration struct {
	conflict     Conflict
	constraints  [2]search.Constraint
	agentIdx     [2]int
	paths        [2]search.Path
	ok           [2]bool
	primary      int // shorter of the two new path lengths (+inf if unreachable)
	secondary    int // longer of the two
}

const infLength = int(^uint(0) >> 1)

func (s *Solver) exploreConflict(n *node, conflict Conflict) exploration {
	idxA := s.indexOf(conflict.A.UID)
	idxB := s.indexOf(conflict.B.UID)

	constraintA := search.Constraint{UID: conflict.A.UID, Location: conflict.B.Location, Duration: conflict.B.Duration}
	constraintB := search.Constraint{UID: conflict.B.UID, Location: conflict.A.Location, Duration: conflict.A.Duration}

	pathA, okA := s.AStar(conflict.A.UID, append(cloneConstraints(n.constraints), constraintA))
	pathB, okB := s.AStar(conflict.B.UID, append(cloneConstraints(n.constraints), constraintB))

	e := exploration{
		conflict:    conflict,
		constraints: [2]search.Constraint{constraintA, constraintB},
		agentIdx:    [2]int{idxA, idxB},
		paths:       [2]search.Path{pathA, pathB},
		ok:          [2]bool{okA, okB},
	}

	lenA, lenB := infLength, infLength
	if okA {
		lenA = pathA[len(pathA)-1].Duration.Depart
	}
	if okB {
		lenB = pathB[len(pathB)-1].Duration.Depart
	}
	if lenA < lenB {
		e.primary, e.secondary = lenA, lenB
	} else {
		e.primary, e.secondary = lenB, lenA
	}
	return e
}

func (s *Solver) indexOf(uid geom.Pair) int {
	for i, o := range s.Origins {
		if o == uid {
			return i
		}
	}
	return -1
}

func cloneConstraints(constraints []search.Constraint) []search.Constraint {
	out := make([]search.Constraint, len(constraints), len(constraints)+1)
	copy(out, constraints)
	return out
}

// expand produces node's children per spec §4.5: build one exploration per
// conflict, prioritize to at most one exploration per agent-uid pair
// (highest primary score, ties broken by lowest secondary), greedily batch
// a maximal agent-disjoint subset (or a single exploration when
// opts.GreedyBatch is false), then Cartesian-expand across the batch.
func (s *Solver) expand(n *node, opts SolveOptions) []*node {
	explorations := make([]exploration, 0, len(n.conflicts))
	for _, c := range n.conflicts {
		e := s.exploreConflict(n, c)
		if !e.ok[0] && !e.ok[1] {
			continue
		}
		explorations = append(explorations, e)
	}
	if len(explorations) == 0 {
		return nil
	}

	explorations = prioritizeByAgentPair(explorations)
	sortExplorationsDescending(explorations)

	var batch []exploration
	if opts.GreedyBatch {
		batch = greedyDisjointBatch(explorations)
	} else {
		batch = explorations[:1]
	}

	children := []*node{n}
	for _, e := range batch {
		var next []*node
		for _, parent := range children {
			for side := 0; side < 2; side++ {
				if !e.ok[side] {
					continue
				}
				childConstraints := append(cloneConstraints(parent.constraints), e.constraints[side])

				// e.paths[side] was planned against n's constraints plus
				// this one new constraint, which only restricts
				// e.agentIdx[side]'s own uid (search.FilterConstraints).
				// Because the batch is agent-disjoint, constraints picked
				// up from earlier explorations in this loop never apply
				// to this agent, so its precomputed path stays valid
				// without replanning every other agent from scratch.
				childSolution := make([]search.Path, len(parent.solution))
				copy(childSolution, parent.solution)
				childSolution[e.agentIdx[side]] = e.paths[side]

				next = append(next, s.buildNode(childConstraints, childSolution))
			}
		}
		children = next
		if len(children) == 0 {
			return nil
		}
	}

	// The root n itself is never a valid child (it is the node being
	// expanded, not a replanned descendant); only nodes produced by at
	// least one constraint application are returned.
	result := make([]*node, 0, len(children))
	for _, c := range children {
		if c != n {
			result = append(result, c)
		}
	}
	return result
}

// prioritizeByAgentPair keeps, among explorations sharing the same
// unordered pair of agent uids, only the one with the highest primary
// score (ties broken by lowest secondary).
func prioritizeByAgentPair(explorations []exploration) []exploration {
	type key struct{ a, b geom.Pair }
	keyOf := func(e exploration) key {
		u, v := e.conflict.A.UID, e.conflict.B.UID
		if (v.X < u.X) || (v.X == u.X && v.Y < u.Y) {
			u, v = v, u
		}
		return key{u, v}
	}

	best := make(map[key]exploration)
	for _, e := range explorations {
		k := keyOf(e)
		cur, ok := best[k]
		if !ok || e.primary > cur.primary || (e.primary == cur.primary && e.secondary < cur.secondary) {
			best[k] = e
		}
	}
	out := make([]exploration, 0, len(best))
	for _, e := range best {
		out = append(out, e)
	}
	return out
}

func sortExplorationsDescending(explorations []exploration) {
	sort.Slice(explorations, func(i, j int) bool {
		return less(explorations[i], explorations[j])
	})
}

// less reports whether a sorts before b: higher primary first, then lower
// secondary, with the conflicting uids as a final deterministic tie-break.
func less(a, b exploration) bool {
	if a.primary != b.primary {
		return a.primary > b.primary
	}
	if a.secondary != b.secondary {
		return a.secondary < b.secondary
	}
	au, av := a.conflict.A.UID, a.conflict.B.UID
	bu, bv := b.conflict.A.UID, b.conflict.B.UID
	if au != bu {
		return au.X < bu.X || (au.X == bu.X && au.Y < bu.Y)
	}
	return av.X < bv.X || (av.X == bv.X && av.Y < bv.Y)
}

// greedyDisjointBatch walks explorations in priority order and keeps a
// maximal set of mutually agent-disjoint resolutions: an exploration is
// accepted only if neither of its two agent indices has appeared in an
// already-accepted exploration.
func greedyDisjointBatch(explorations []exploration) []exploration {
	used := make(map[int]bool)
	var batch []exploration
	for _, e := range explorations {
		if used[e.agentIdx[0]] || used[e.agentIdx[1]] {
			continue
		}
		used[e.agentIdx[0]] = true
		used[e.agentIdx[1]] = true
		batch = append(batch, e)
	}
	return batch
}
