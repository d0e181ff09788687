package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Path is a route between two entities. Trail is a human-readable rendering
// of the node texts joined by edge weights.
type Path struct {
	Nodes       []int64
	Hops        int
	TotalWeight float64
	Trail       string
}

// DefaultMaxHops bounds simple-path enumeration.
const DefaultMaxHops = 4

// FindPath returns the weighted shortest path between two entities, using
// edge cost 1/weight so strong co-occurrences are preferred. Returns nil
// when either endpoint is unknown or no path exists; absence is a normal
// steady state, not an error.
func (a *Analyzer) FindPath(from, to int64) *Path {
	if !a.g.HasNode(from) || !a.g.HasNode(to) {
		return nil
	}
	if from == to {
		return a.newPath([]int64{from})
	}

	dist, prev := a.dijkstra(from)
	if _, ok := dist[to]; !ok {
		return nil
	}

	// Walk predecessors back from the target.
	var reversed []int64
	for current := to; ; {
		reversed = append(reversed, current)
		if current == from {
			break
		}
		current = prev[current]
	}
	nodes := make([]int64, len(reversed))
	for i, id := range reversed {
		nodes[len(reversed)-1-i] = id
	}

	return a.newPath(nodes)
}

// FindPaths returns all simple paths between two entities up to maxHops
// hops (default 4 when <= 0), sorted by length ascending then total weight
// descending. Disconnected endpoints yield an empty slice.
func (a *Analyzer) FindPaths(from, to int64, maxHops int) []*Path {
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	if !a.g.HasNode(from) || !a.g.HasNode(to) {
		return []*Path{}
	}

	paths := []*Path{}
	onPath := map[int64]bool{from: true}
	current := []int64{from}

	var dfs func(node int64)
	dfs = func(node int64) {
		if node == to {
			nodes := make([]int64, len(current))
			copy(nodes, current)
			paths = append(paths, a.newPath(nodes))
			return
		}
		if len(current)-1 >= maxHops {
			return
		}
		for _, neighbor := range a.g.Neighbors(node) {
			if onPath[neighbor] {
				continue
			}
			onPath[neighbor] = true
			current = append(current, neighbor)
			dfs(neighbor)
			current = current[:len(current)-1]
			onPath[neighbor] = false
		}
	}
	dfs(from)

	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Hops != paths[j].Hops {
			return paths[i].Hops < paths[j].Hops
		}
		return paths[i].TotalWeight > paths[j].TotalWeight
	})

	return paths
}

// newPath annotates a node sequence with its total weight and trail string.
func (a *Analyzer) newPath(nodes []int64) *Path {
	var total float64
	var trail strings.Builder

	for i, id := range nodes {
		if i > 0 {
			w, _ := a.g.Weight(nodes[i-1], id)
			total += w
			trail.WriteString(fmt.Sprintf(" -[%s]-> ", strconv.FormatFloat(w, 'f', -1, 64)))
		}
		trail.WriteString(a.nodeText(id))
	}

	return &Path{
		Nodes:       nodes,
		Hops:        len(nodes) - 1,
		TotalWeight: total,
		Trail:       trail.String(),
	}
}

func (a *Analyzer) nodeText(id int64) string {
	if node := a.g.Node(id); node != nil {
		return node.Text
	}
	return strconv.FormatInt(id, 10)
}
