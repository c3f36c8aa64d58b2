package cbs

import (
	"errors"
	"testing"

	"github.com/elektrokombinacija/mapf-lawt/internal/geom"
	"github.com/elektrokombinacija/mapf-lawt/internal/grid"
	"github.com/elektrokombinacija/mapf-lawt/internal/search"
)

func openCells(n, cost int) *grid.Grid[grid.CellInfo] {
	return grid.NewGrid[grid.CellInfo](geom.Pair{X: n - 1, Y: n - 1}, grid.CellInfo{Cost: cost})
}

func TestBuildSolverRejectsDuplicateOrigins(t *testing.T) {
	origin := geom.Pair{X: 0, Y: 0}
	_, err := BuildSolver(openCells(3, 1), []geom.Pair{origin, origin}, []geom.Pair{{X: 1, Y: 1}, {X: 2, Y: 2}}, geom.Pair{})
	if !errors.Is(err, ErrDuplicateOrigin) {
		t.Fatalf("expected ErrDuplicateOrigin, got %v", err)
	}
}

func TestBuildSolverRejectsFewerDestinationsThanOrigins(t *testing.T) {
	_, err := BuildSolver(openCells(3, 1), []geom.Pair{{X: 0, Y: 0}, {X: 1, Y: 0}}, []geom.Pair{{X: 2, Y: 2}}, geom.Pair{})
	if !errors.Is(err, ErrTooFewDestinations) {
		t.Fatalf("expected ErrTooFewDestinations, got %v", err)
	}
}

func TestBuildSolverRejectsOutOfBoundsOrigin(t *testing.T) {
	_, err := BuildSolver(openCells(3, 1), []geom.Pair{{X: 5, Y: 5}}, []geom.Pair{{X: 2, Y: 2}}, geom.Pair{})
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestBuildSolverRejectsBlockedDestination(t *testing.T) {
	cells := openCells(3, 1)
	wg := grid.NewWeightedGrid(cells)
	dest := geom.Pair{X: 2, Y: 2}
	wg.SetBlocked(geom.Rect{Origin: dest}, true)

	_, err := BuildSolver(cells, []geom.Pair{{X: 0, Y: 0}}, []geom.Pair{dest}, geom.Pair{})
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
}

func TestUnfoldPathCountsMakespanPlusOneEntries(t *testing.T) {
	path := search.Path{
		{Location: geom.Rect{Origin: geom.Pair{X: 0, Y: 0}}, Duration: search.Duration{Arrival: 0, Depart: 0}},
		{Location: geom.Rect{Origin: geom.Pair{X: 1, Y: 0}}, Duration: search.Duration{Arrival: 1, Depart: 1}},
		{Location: geom.Rect{Origin: geom.Pair{X: 2, Y: 0}}, Duration: search.Duration{Arrival: 2, Depart: 3}},
	}
	out := UnfoldPath(path)
	if len(out) != 4 {
		t.Fatalf("expected makespan(3)+1 = 4 entries, got %d: %v", len(out), out)
	}
	want := []geom.Pair{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 0}}
	for i, p := range want {
		if out[i].Origin != p {
			t.Fatalf("entry %d: expected origin %v, got %v", i, p, out[i].Origin)
		}
	}
}

func TestUnfoldPathSingleNode(t *testing.T) {
	path := search.Path{
		{Location: geom.Rect{Origin: geom.Pair{X: 0, Y: 0}}, Duration: search.Duration{Arrival: 0, Depart: 0}},
	}
	out := UnfoldPath(path)
	if len(out) != 1 {
		t.Fatalf("expected exactly 1 entry for a zero-makespan single-node path, got %d", len(out))
	}
}
