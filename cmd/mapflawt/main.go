// Command mapflawt runs two small MAPF-LAWT instances end to end.
package main

import (
	"fmt"
	"log"

	"github.com/elektrokombinacija/mapf-lawt/internal/cbs"
	"github.com/elektrokombinacija/mapf-lawt/internal/geom"
	"github.com/elektrokombinacija/mapf-lawt/internal/grid"
)

func main() {
	fmt.Println("=== MAPF-LAWT: large-agent space-time CBS ===")

	fmt.Println("--- Head-on swap (3x2 open grid) ---")
	runSwapScenario()

	fmt.Println("\n--- Bottleneck corridor (7x1, 3 agents) ---")
	runCorridorScenario()
}

func runSwapScenario() {
	cells := grid.NewGrid[grid.CellInfo](geom.Pair{X: 2, Y: 1}, grid.CellInfo{Cost: 1})
	origins := []geom.Pair{{X: 0, Y: 0}, {X: 2, Y: 0}}
	destinations := []geom.Pair{{X: 2, Y: 0}, {X: 0, Y: 0}}

	solver, err := cbs.BuildSolver(cells, origins, destinations, geom.Pair{})
	if err != nil {
		log.Fatalf("build solver: %v", err)
	}
	report(solver, origins)
}

func runCorridorScenario() {
	cells := grid.NewGrid[grid.CellInfo](geom.Pair{X: 6, Y: 0}, grid.CellInfo{Cost: 1})
	origins := []geom.Pair{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	destinations := []geom.Pair{{X: 6, Y: 0}, {X: 5, Y: 0}, {X: 4, Y: 0}}

	solver, err := cbs.BuildSolver(cells, origins, destinations, geom.Pair{})
	if err != nil {
		log.Fatalf("build solver: %v", err)
	}
	report(solver, origins)
}

func report(solver *cbs.Solver, origins []geom.Pair) {
	solution, err := solver.SolveMAPF(cbs.DefaultOptions())
	if err != nil {
		fmt.Printf("  infeasible: %v\n", err)
		return
	}

	makespan := 0
	for i, path := range solution {
		end := path[len(path)-1].Duration.Depart
		if end > makespan {
			makespan = end
		}
		ticks := cbs.UnfoldPath(path)
		fmt.Printf("  agent %v: %d nodes, %d ticks, ends at %v\n", origins[i], len(path), len(ticks), ticks[len(ticks)-1])
	}
	fmt.Printf("  makespan=%d\n", makespan)
}
