package analytics

import (
	"sort"

	"github.com/entigraph/entigraph/pkg/graph"
)

// Bridges returns edges whose removal strictly increases the connected
// component count, restricted to edges with weight >= minWeight, ordered by
// weight descending (ties: canonical pair ascending).
func (a *Analyzer) Bridges(minWeight float64) []graph.Edge {
	bridgeSet := a.tarjanBridges()

	var bridges []graph.Edge
	for _, e := range a.g.Edges() {
		if e.Weight < minWeight {
			continue
		}
		if bridgeSet[[2]int64{e.A, e.B}] {
			bridges = append(bridges, e)
		}
	}

	sort.Slice(bridges, func(i, j int) bool {
		if bridges[i].Weight != bridges[j].Weight {
			return bridges[i].Weight > bridges[j].Weight
		}
		if bridges[i].A != bridges[j].A {
			return bridges[i].A < bridges[j].A
		}
		return bridges[i].B < bridges[j].B
	})

	return bridges
}

// tarjanBridges finds all bridge edges via iterative Tarjan lowlink DFS.
// Keys are canonical (min, max) pairs.
func (a *Analyzer) tarjanBridges() map[[2]int64]bool {
	disc := make(map[int64]int)
	low := make(map[int64]int)
	bridges := make(map[[2]int64]bool)
	timer := 0

	type frame struct {
		node    int64
		parent  int64
		hasPar  bool
		nextIdx int
	}

	for _, start := range a.g.NodeIDs() {
		if _, seen := disc[start]; seen {
			continue
		}

		stack := []frame{{node: start}}
		timer++
		disc[start] = timer
		low[start] = timer

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			neighbors := a.g.Neighbors(f.node)

			if f.nextIdx < len(neighbors) {
				next := neighbors[f.nextIdx]
				f.nextIdx++

				if f.hasPar && next == f.parent {
					continue
				}
				if d, seen := disc[next]; seen {
					if d < low[f.node] {
						low[f.node] = d
					}
					continue
				}
				timer++
				disc[next] = timer
				low[next] = timer
				stack = append(stack, frame{node: next, parent: f.node, hasPar: true})
				continue
			}

			// Unwind: propagate lowlink to parent, detect bridge.
			stack = stack[:len(stack)-1]
			if f.hasPar {
				if low[f.node] < low[f.parent] {
					low[f.parent] = low[f.node]
				}
				if low[f.node] > disc[f.parent] {
					key := [2]int64{f.parent, f.node}
					if key[1] < key[0] {
						key[0], key[1] = key[1], key[0]
					}
					bridges[key] = true
				}
			}
		}
	}

	return bridges
}
