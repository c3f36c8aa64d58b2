package cbs

import (
	"testing"

	"github.com/elektrokombinacija/mapf-lawt/internal/geom"
	"github.com/elektrokombinacija/mapf-lawt/internal/grid"
)

func mustSolver(t *testing.T, size, cost int, origins, destinations []geom.Pair, footprint geom.Pair) *Solver {
	t.Helper()
	s, err := BuildSolver(openCells(size, cost), origins, destinations, footprint)
	if err != nil {
		t.Fatalf("BuildSolver: %v", err)
	}
	return s
}

// assertConflictFree checks universal invariant 1: no two unfolded paths
// ever intersect at the same tick.
func assertConflictFree(t *testing.T, solution [][]geom.Rect) {
	t.Helper()
	for i := 0; i < len(solution); i++ {
		for j := i + 1; j < len(solution); j++ {
			n := len(solution[i])
			if len(solution[j]) < n {
				n = len(solution[j])
			}
			for tick := 0; tick < n; tick++ {
				if solution[i][tick].Intersects(solution[j][tick]) {
					t.Fatalf("agents %d and %d collide at tick %d: %v vs %v", i, j, tick, solution[i][tick], solution[j][tick])
				}
			}
		}
	}
}

// TestSolveMAPFStraightLine covers E1.
func TestSolveMAPFStraightLine(t *testing.T) {
	s := mustSolver(t, 5, 1, []geom.Pair{{X: 0, Y: 0}}, []geom.Pair{{X: 4, Y: 0}}, geom.Pair{})
	solution, err := s.SolveMAPF(DefaultOptions())
	if err != nil {
		t.Fatalf("SolveMAPF: %v", err)
	}
	last := solution[0][len(solution[0])-1]
	if last.Duration.Depart != 4 {
		t.Fatalf("expected makespan 4, got %d", last.Duration.Depart)
	}
}

// TestSolveMAPFWaitsForExpensiveCell covers E2.
func TestSolveMAPFWaitsForExpensiveCell(t *testing.T) {
	cells := grid.NewGrid[grid.CellInfo](geom.Pair{X: 4, Y: 0}, grid.CellInfo{Cost: 1})
	cells.Set(geom.Pair{X: 2, Y: 0}, grid.CellInfo{Cost: 2})
	s, err := BuildSolver(cells, []geom.Pair{{X: 0, Y: 0}}, []geom.Pair{{X: 4, Y: 0}}, geom.Pair{})
	if err != nil {
		t.Fatalf("BuildSolver: %v", err)
	}
	solution, err := s.SolveMAPF(DefaultOptions())
	if err != nil {
		t.Fatalf("SolveMAPF: %v", err)
	}
	last := solution[0][len(solution[0])-1]
	if last.Duration.Depart != 5 {
		t.Fatalf("expected makespan 5, got %d", last.Duration.Depart)
	}

	found := false
	for _, c := range solution[0] {
		if c.Location.Origin == (geom.Pair{X: 2, Y: 0}) {
			if c.Duration.Arrival != 2 || c.Duration.Depart != 3 {
				t.Fatalf("expected stay interval (2,3) at the cost-2 cell, got (%d,%d)", c.Duration.Arrival, c.Duration.Depart)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the path to pass through the cost-2 cell")
	}
}

// TestSolveMAPFHeadOnSwapDetour covers E3: two agents crossing a 3x2 open
// grid from opposite ends must detour rather than collide at the midpoint.
func TestSolveMAPFHeadOnSwapDetour(t *testing.T) {
	cells := grid.NewGrid[grid.CellInfo](geom.Pair{X: 2, Y: 1}, grid.CellInfo{Cost: 1})
	s, err := BuildSolver(cells, []geom.Pair{{X: 0, Y: 0}, {X: 2, Y: 0}}, []geom.Pair{{X: 2, Y: 0}, {X: 0, Y: 0}}, geom.Pair{})
	if err != nil {
		t.Fatalf("BuildSolver: %v", err)
	}
	solution, err := s.SolveMAPF(DefaultOptions())
	if err != nil {
		t.Fatalf("SolveMAPF: %v", err)
	}

	unfolded := make([][]geom.Rect, len(solution))
	makespan := 0
	for i, p := range solution {
		unfolded[i] = UnfoldPath(p)
		if d := p[len(p)-1].Duration.Depart; d > makespan {
			makespan = d
		}
	}
	assertConflictFree(t, unfolded)
	// Straight across is 2 ticks for each agent; any detour that avoids the
	// shared midpoint costs at least one extra tick for whichever agent
	// takes it.
	if makespan < 2 || makespan > 4 {
		t.Fatalf("expected a short detour (makespan 2-4), got %d", makespan)
	}
}

// TestSolveMAPFLargeFootprintForbidsAdjacency covers E4: two 2x2 agents
// crossing a 6x6 open grid on parallel, non-interacting rows never need to
// touch and so finish at the straight-line makespan.
func TestSolveMAPFLargeFootprintForbidsAdjacency(t *testing.T) {
	cells := grid.NewGrid[grid.CellInfo](geom.Pair{X: 5, Y: 5}, grid.CellInfo{Cost: 1})
	footprint := geom.Pair{X: 1, Y: 1}
	s, err := BuildSolver(cells, []geom.Pair{{X: 0, Y: 0}, {X: 0, Y: 2}}, []geom.Pair{{X: 4, Y: 0}, {X: 4, Y: 2}}, footprint)
	if err != nil {
		t.Fatalf("BuildSolver: %v", err)
	}
	solution, err := s.SolveMAPF(DefaultOptions())
	if err != nil {
		t.Fatalf("SolveMAPF: %v", err)
	}

	unfolded := make([][]geom.Rect, len(solution))
	makespan := 0
	for i, p := range solution {
		unfolded[i] = UnfoldPath(p)
		if d := p[len(p)-1].Duration.Depart; d > makespan {
			makespan = d
		}
	}
	assertConflictFree(t, unfolded)
	if makespan != 4 {
		t.Fatalf("expected makespan 4 for two non-interacting 2x2 agents, got %d", makespan)
	}
}

// TestSolveMAPFBottleneckForcesWait covers E5: three agents in a 7-wide
// corridor all moving the same direction, one per starting cell, must
// queue rather than collide.
func TestSolveMAPFBottleneckForcesWait(t *testing.T) {
	cells := grid.NewGrid[grid.CellInfo](geom.Pair{X: 6, Y: 0}, grid.CellInfo{Cost: 1})
	origins := []geom.Pair{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	destinations := []geom.Pair{{X: 6, Y: 0}, {X: 5, Y: 0}, {X: 4, Y: 0}}
	s, err := BuildSolver(cells, origins, destinations, geom.Pair{})
	if err != nil {
		t.Fatalf("BuildSolver: %v", err)
	}
	solution, err := s.SolveMAPF(DefaultOptions())
	if err != nil {
		t.Fatalf("SolveMAPF: %v", err)
	}

	unfolded := make([][]geom.Rect, len(solution))
	makespan := 0
	for i, p := range solution {
		unfolded[i] = UnfoldPath(p)
		if d := p[len(p)-1].Duration.Depart; d > makespan {
			makespan = d
		}
	}
	assertConflictFree(t, unfolded)
	if makespan < 6 {
		t.Fatalf("expected makespan >= 6 (straight-line distance plus queuing waits), got %d", makespan)
	}
}

// TestSolveMAPFUnreachableDestination covers E6: BuildSolver succeeds
// because the destination cell itself is clear, but SolveMAPF reports
// infeasibility once the walled-off neighbourhood makes it unreachable.
func TestSolveMAPFUnreachableDestination(t *testing.T) {
	cells := grid.NewGrid[grid.CellInfo](geom.Pair{X: 2, Y: 2}, grid.CellInfo{Cost: 1})
	wg := grid.NewWeightedGrid(cells)
	dest := geom.Pair{X: 1, Y: 1}
	for _, n := range []geom.Pair{{X: 0, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 2}} {
		wg.SetBlocked(geom.Rect{Origin: n}, true)
	}

	s, err := BuildSolver(cells, []geom.Pair{{X: 0, Y: 0}}, []geom.Pair{dest}, geom.Pair{})
	if err != nil {
		t.Fatalf("BuildSolver: %v", err)
	}
	if _, err := s.SolveMAPF(DefaultOptions()); err != ErrInfeasible {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}

// TestSolveMAPFSingleConflictFallbackAgrees checks that disabling the
// batched expansion still converges to a conflict-free, same-cost solution
// on the head-on swap scenario.
func TestSolveMAPFSingleConflictFallbackAgrees(t *testing.T) {
	cells := grid.NewGrid[grid.CellInfo](geom.Pair{X: 2, Y: 1}, grid.CellInfo{Cost: 1})
	s, err := BuildSolver(cells, []geom.Pair{{X: 0, Y: 0}, {X: 2, Y: 0}}, []geom.Pair{{X: 2, Y: 0}, {X: 0, Y: 0}}, geom.Pair{})
	if err != nil {
		t.Fatalf("BuildSolver: %v", err)
	}
	solution, err := s.SolveMAPF(SolveOptions{NodeBudget: 100000, GreedyBatch: false})
	if err != nil {
		t.Fatalf("SolveMAPF: %v", err)
	}

	unfolded := make([][]geom.Rect, len(solution))
	for i, p := range solution {
		unfolded[i] = UnfoldPath(p)
	}
	assertConflictFree(t, unfolded)

	batched, err := s.SolveMAPF(DefaultOptions())
	if err != nil {
		t.Fatalf("SolveMAPF (batched): %v", err)
	}
	if got, want := makespan(solution), makespan(batched); got != want {
		t.Fatalf("expected the single-conflict fallback to match the batched makespan %d, got %d", want, got)
	}
}
