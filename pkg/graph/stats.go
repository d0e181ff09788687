package graph

// Stats summarizes graph structure. Diameter and AvgPathLength are nil when
// the graph is disconnected or too small: the metric is undefined, not zero.
type Stats struct {
	NodeCount            int      `json:"node_count"`
	EdgeCount            int      `json:"edge_count"`
	Density              float64  `json:"density"`
	AvgDegree            float64  `json:"avg_degree"`
	AvgClustering        float64  `json:"avg_clustering"`
	Diameter             *int     `json:"diameter"`
	AvgPathLength        *float64 `json:"avg_path_length"`
	Components           int      `json:"components"`
	LargestComponentSize int      `json:"largest_component_size"`
}

// Stats computes structural statistics over the whole graph.
func (g *Graph) Stats() Stats {
	n := g.NodeCount()
	e := g.EdgeCount()

	stats := Stats{
		NodeCount: n,
		EdgeCount: e,
	}
	if n == 0 {
		return stats
	}

	if n > 1 {
		possible := float64(n*(n-1)) / 2.0
		if g.directed {
			possible = float64(n * (n - 1))
		}
		stats.Density = float64(e) / possible
	}
	stats.AvgDegree = 2.0 * float64(e) / float64(n)
	if g.directed {
		stats.AvgDegree = float64(e) / float64(n)
	}
	stats.AvgClustering = g.avgClustering()

	components := g.Components()
	stats.Components = len(components)
	if len(components) > 0 {
		stats.LargestComponentSize = len(components[0])
	}

	// Path metrics only exist on a connected graph with at least 2 nodes.
	if len(components) == 1 && n > 1 {
		diameter, avgLen := g.pathMetrics()
		stats.Diameter = &diameter
		stats.AvgPathLength = &avgLen
	}

	return stats
}

// avgClustering returns the mean local clustering coefficient.
func (g *Graph) avgClustering() float64 {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return 0
	}

	var sum float64
	for _, id := range ids {
		neighbors := g.Neighbors(id)
		k := len(neighbors)
		if k < 2 {
			continue
		}
		links := 0
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				if _, ok := g.Weight(neighbors[i], neighbors[j]); ok {
					links++
				}
			}
		}
		sum += 2.0 * float64(links) / float64(k*(k-1))
	}
	return sum / float64(len(ids))
}

// pathMetrics computes hop-count diameter and average shortest path length
// via BFS from every node. Callers must ensure the graph is connected.
func (g *Graph) pathMetrics() (int, float64) {
	ids := g.NodeIDs()
	diameter := 0
	var totalDist, pairs float64

	for _, source := range ids {
		dist := g.bfsDistances(source)
		for _, target := range ids {
			if target == source {
				continue
			}
			d, ok := dist[target]
			if !ok {
				continue
			}
			if d > diameter {
				diameter = d
			}
			totalDist += float64(d)
			pairs++
		}
	}

	avg := 0.0
	if pairs > 0 {
		avg = totalDist / pairs
	}
	return diameter, avg
}

// bfsDistances returns hop distances from source to every reachable node.
func (g *Graph) bfsDistances(source int64) map[int64]int {
	dist := map[int64]int{source: 0}
	queue := []int64{source}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range g.Neighbors(current) {
			if _, seen := dist[neighbor]; !seen {
				dist[neighbor] = dist[current] + 1
				queue = append(queue, neighbor)
			}
		}
	}
	return dist
}
