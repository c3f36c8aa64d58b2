package grid

import (
	"container/heap"
	"math"

	"github.com/elektrokombinacija/mapf-lawt/internal/geom"
)

// Unreachable is the sentinel heuristic value for a footprint-origin from
// which no destination can be reached.
const Unreachable = math.MaxInt

// BuildHeuristic runs a multi-source Dijkstra backward from every
// destination over the footprint-origin space and pools the per-destination
// results by taking the elementwise minimum, giving an admissible lower
// bound on the cost to reach any destination from each origin.
//
// The outgoing edge cost from a frontier cell N to a neighbour N' is
// Cost(N), not Cost(N'): the frontier expresses the cost of moving onto
// self, matching the entry-cost convention the low-level search uses.
func BuildHeuristic(g *WeightedGrid, destinations []geom.Pair, footprint geom.Pair) *Grid[int] {
	size := g.EffectiveSize(footprint)
	result := NewGrid[int](geom.Pair{X: size.X - 1, Y: size.Y - 1}, Unreachable)

	for _, dest := range destinations {
		distances := dijkstraFrom(g, geom.Rect{Origin: dest, Extent: footprint})
		distances.IndexedIter(func(p geom.Pair, cost int) {
			if cost < result.At(p) {
				result.Set(p, cost)
			}
		})
	}
	return result
}

type frontierEntry struct {
	rect  geom.Rect
	cost  int
	index int
}

type frontierHeap []*frontierEntry

func (h frontierHeap) Len() int           { return len(h) }
func (h frontierHeap) Less(i, j int) bool { return h[i].cost < h[j].cost }
func (h frontierHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *frontierHeap) Push(x any) {
	e := x.(*frontierEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// dijkstraFrom runs Dijkstra with source to, returning the cost to reach
// every footprint-origin on the grid, indexed by that origin.
func dijkstraFrom(g *WeightedGrid, to geom.Rect) *Grid[int] {
	size := g.EffectiveSize(to.Extent)
	closed := NewGrid[int](geom.Pair{X: size.X - 1, Y: size.Y - 1}, Unreachable)

	open := &frontierHeap{}
	heap.Init(open)
	inOpen := map[geom.Pair]*frontierEntry{}

	start := &frontierEntry{rect: to, cost: 0}
	heap.Push(open, start)
	inOpen[to.Origin] = start

	for open.Len() > 0 {
		current := heap.Pop(open).(*frontierEntry)
		delete(inOpen, current.rect.Origin)

		if closed.At(current.rect.Origin) != Unreachable {
			continue
		}
		closed.Set(current.rect.Origin, current.cost)

		// Cost of self, because the cost is to move onto self.
		selfCost := g.Cost(current.rect)
		for _, neighbor := range g.Neighbors(current.rect) {
			if closed.At(neighbor.Origin) != Unreachable {
				continue
			}
			newCost := current.cost + selfCost
			if existing, ok := inOpen[neighbor.Origin]; ok {
				if newCost < existing.cost {
					existing.cost = newCost
					heap.Fix(open, existing.index)
				}
				continue
			}
			entry := &frontierEntry{rect: neighbor, cost: newCost}
			heap.Push(open, entry)
			inOpen[neighbor.Origin] = entry
		}
	}
	return closed
}
