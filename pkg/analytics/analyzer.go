// Package analytics computes graph-theoretic measures over the built entity
// graph: centrality, communities, bridges, paths and related-entity ranking.
//
// Every operation recomputes from the graph it is handed; callers cache
// expensive results (betweenness, communities) themselves if reused.
// Absence of data is never an error: unknown endpoints and degenerate
// graphs yield empty results.
package analytics

import (
	"container/heap"

	"github.com/entigraph/entigraph/pkg/graph"
)

// Analyzer computes analytics over one in-memory graph.
type Analyzer struct {
	g *graph.Graph
}

// New creates an analyzer over the given graph.
func New(g *graph.Graph) *Analyzer {
	return &Analyzer{g: g}
}

// Graph returns the underlying graph.
func (a *Analyzer) Graph() *graph.Graph { return a.g }

// distItem is a priority-queue entry for Dijkstra traversals.
type distItem struct {
	id   int64
	dist float64
}

type distQueue []distItem

func (q distQueue) Len() int { return len(q) }
func (q distQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].id < q[j].id
}
func (q distQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x interface{}) { *q = append(*q, x.(distItem)) }
func (q *distQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// edgeCost converts a co-occurrence weight into a traversal cost: heavier
// edges are shorter. Zero or negative weights cost as much as weight 1.
func edgeCost(weight float64) float64 {
	if weight <= 0 {
		return 1.0
	}
	return 1.0 / weight
}

// dijkstra returns cost distances and a single-predecessor map from source.
// Ties between equal-cost paths resolve toward the smaller predecessor id
// so results are deterministic.
func (a *Analyzer) dijkstra(source int64) (map[int64]float64, map[int64]int64) {
	dist := map[int64]float64{source: 0}
	prev := make(map[int64]int64)
	done := make(map[int64]bool)

	pq := &distQueue{{id: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(distItem)
		if done[item.id] {
			continue
		}
		done[item.id] = true

		for _, neighbor := range a.g.Neighbors(item.id) {
			w, _ := a.g.Weight(item.id, neighbor)
			alt := dist[item.id] + edgeCost(w)
			current, seen := dist[neighbor]
			if !seen || alt < current || (alt == current && item.id < prev[neighbor]) {
				dist[neighbor] = alt
				prev[neighbor] = item.id
				heap.Push(pq, distItem{id: neighbor, dist: alt})
			}
		}
	}

	return dist, prev
}
