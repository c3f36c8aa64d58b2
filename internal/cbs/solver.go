package cbs

import (
	"fmt"

	"github.com/elektrokombinacija/mapf-lawt/internal/geom"
	"github.com/elektrokombinacija/mapf-lawt/internal/grid"
	"github.com/elektrokombinacija/mapf-lawt/internal/search"
)

// Solver is the opaque handle returned by BuildSolver: the grid, the agent
// origins and destinations in input order, and the precomputed heuristic.
type Solver struct {
	Grid         *grid.WeightedGrid
	Origins      []geom.Pair
	Destinations []geom.Pair
	Footprint    geom.Pair
	lowLevel     *search.AStar
}

// BuildSolver precomputes the heuristic and validates the instance.
// |origins| must not exceed |destinations|; every origin and destination
// must be in bounds and footprint-clear; origins must be pairwise distinct
// (an agent's identity is its origin cell, so two agents cannot share one).
func BuildSolver(cells *grid.Grid[grid.CellInfo], origins, destinations []geom.Pair, footprint geom.Pair) (*Solver, error) {
	if len(destinations) < len(origins) {
		return nil, fmt.Errorf("%w: %d origins, %d destinations", ErrTooFewDestinations, len(origins), len(destinations))
	}

	seen := make(map[geom.Pair]bool, len(origins))
	for _, o := range origins {
		if seen[o] {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateOrigin, o)
		}
		seen[o] = true
	}

	wg := grid.NewWeightedGrid(cells)
	for _, o := range origins {
		if err := checkClear(wg, o, footprint); err != nil {
			return nil, err
		}
	}
	for _, d := range destinations {
		if err := checkClear(wg, d, footprint); err != nil {
			return nil, err
		}
	}

	return &Solver{
		Grid:         wg,
		Origins:      origins,
		Destinations: destinations,
		Footprint:    footprint,
		lowLevel:     search.NewAStar(wg, destinations, footprint),
	}, nil
}

func checkClear(wg *grid.WeightedGrid, origin geom.Pair, footprint geom.Pair) error {
	rect := geom.Rect{Origin: origin, Extent: footprint}
	if !wg.InBounds(rect) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, origin)
	}
	if !wg.IsClear(rect) {
		return fmt.Errorf("%w: %v", ErrBlocked, origin)
	}
	return nil
}

// AStar runs the low-level constrained search for a single agent. Only
// constraints whose UID equals start are consulted.
func (s *Solver) AStar(start geom.Pair, constraints []search.Constraint) (search.Path, bool) {
	return s.lowLevel.Search(start, constraints)
}

// UnfoldPath materializes one Rect per tick, from 0 to the path's makespan
// inclusive, by repeating each ScoredCell's location across its stay
// interval.
func UnfoldPath(path search.Path) []geom.Rect {
	if len(path) == 0 {
		return nil
	}
	out := make([]geom.Rect, 0, path[len(path)-1].Duration.Depart+1)
	for _, cell := range path {
		for t := cell.Duration.Arrival; t <= cell.Duration.Depart; t++ {
			out = append(out, cell.Location)
		}
	}
	return out
}
