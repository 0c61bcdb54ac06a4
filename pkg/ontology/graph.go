package ontology

import (
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// shortestFrom wraps gonum's Dijkstra shortest-path search (degenerates to
// BFS hop-counting since every broader edge has weight 1) and returns a
// lookup closure from destination node id to distance.
func shortestFrom(g *simple.WeightedUndirectedGraph, src int64) func(dst int64) float64 {
	shortest := path.DijkstraFrom(simple.Node(src), g)
	return func(dst int64) float64 {
		return shortest.WeightTo(dst)
	}
}
