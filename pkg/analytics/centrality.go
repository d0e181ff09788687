package analytics

import "container/heap"

// DegreeCentrality returns, per node, the fraction of all other nodes it is
// directly connected to. Single-node and empty graphs yield all zeros.
func (a *Analyzer) DegreeCentrality() map[int64]float64 {
	ids := a.g.NodeIDs()
	scores := make(map[int64]float64, len(ids))
	n := len(ids)
	for _, id := range ids {
		if n <= 1 {
			scores[id] = 0
			continue
		}
		scores[id] = float64(a.g.Degree(id)) / float64(n-1)
	}
	return scores
}

// ClosenessCentrality returns closeness computed within each node's
// connected component, scaled by the component's share of the graph
// (Wasserman-Faust) so scores remain comparable on disconnected graphs.
func (a *Analyzer) ClosenessCentrality() map[int64]float64 {
	ids := a.g.NodeIDs()
	scores := make(map[int64]float64, len(ids))
	n := len(ids)

	for _, component := range a.g.Components() {
		k := len(component)
		for _, id := range component {
			if k <= 1 || n <= 1 {
				scores[id] = 0
				continue
			}
			total := 0
			for target, d := range a.hopDistances(id) {
				if target != id {
					total += d
				}
			}
			if total == 0 {
				scores[id] = 0
				continue
			}
			closeness := float64(k-1) / float64(total)
			scores[id] = closeness * float64(k-1) / float64(n-1)
		}
	}

	return scores
}

// hopDistances returns unweighted hop distances from source via BFS.
func (a *Analyzer) hopDistances(source int64) map[int64]int {
	dist := map[int64]int{source: 0}
	queue := []int64{source}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range a.g.Neighbors(current) {
			if _, seen := dist[neighbor]; !seen {
				dist[neighbor] = dist[current] + 1
				queue = append(queue, neighbor)
			}
		}
	}
	return dist
}

// BetweennessCentrality returns weighted betweenness via Brandes'
// accumulation over Dijkstra shortest paths, with edge cost 1/weight so
// heavier co-occurrence edges attract paths. Scores are normalized to
// [0, 1]; graphs with fewer than 3 nodes yield all zeros.
func (a *Analyzer) BetweennessCentrality() map[int64]float64 {
	ids := a.g.NodeIDs()
	scores := make(map[int64]float64, len(ids))
	for _, id := range ids {
		scores[id] = 0
	}
	n := len(ids)
	if n < 3 {
		return scores
	}

	for _, source := range ids {
		stack, preds, sigma := a.brandesSSSP(source)

		delta := make(map[int64]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != source {
				scores[w] += delta[w]
			}
		}
	}

	// Directed scale is 1/((n-1)(n-2)). Undirected accumulation counts
	// every (s, t) pair twice, so halving and the 2/((n-1)(n-2)) scale
	// cancel to the same factor.
	scale := 1.0 / float64((n-1)*(n-2))
	for id := range scores {
		scores[id] *= scale
	}
	return scores
}

// brandesSSSP runs the Dijkstra stage of Brandes' algorithm, returning
// nodes in non-decreasing distance order, predecessor lists and path counts.
func (a *Analyzer) brandesSSSP(source int64) ([]int64, map[int64][]int64, map[int64]float64) {
	dist := map[int64]float64{source: 0}
	sigma := map[int64]float64{source: 1}
	preds := make(map[int64][]int64)
	done := make(map[int64]bool)
	var stack []int64

	pq := &distQueue{{id: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(distItem)
		if done[item.id] {
			continue
		}
		done[item.id] = true
		stack = append(stack, item.id)

		for _, neighbor := range a.g.Neighbors(item.id) {
			w, _ := a.g.Weight(item.id, neighbor)
			alt := dist[item.id] + edgeCost(w)
			current, seen := dist[neighbor]
			switch {
			case !seen || alt < current-1e-12:
				dist[neighbor] = alt
				sigma[neighbor] = sigma[item.id]
				preds[neighbor] = []int64{item.id}
				heap.Push(pq, distItem{id: neighbor, dist: alt})
			case alt <= current+1e-12 && alt >= current-1e-12:
				sigma[neighbor] += sigma[item.id]
				preds[neighbor] = append(preds[neighbor], item.id)
			}
		}
	}

	return stack, preds, sigma
}
