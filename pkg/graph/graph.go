// Package graph provides the in-memory weighted entity graph and its
// builder. The graph is rebuilt fully on each analysis and never persisted.
package graph

import "sort"

// Node is an entity projected into the graph with its analysis attributes.
type Node struct {
	ID         int64
	Text       string
	Type       *string
	Frequency  int
	Centrality *float64 // cached, nil until analyzed
	Community  *int64   // cached, nil until analyzed
}

// Edge is a weighted connection between two nodes. For undirected graphs
// the pair is canonical (A < B).
type Edge struct {
	A      int64
	B      int64
	Weight float64
	Type   string
}

// Graph is an adjacency-list weighted graph, undirected by default.
type Graph struct {
	directed bool
	nodes    map[int64]*Node
	adj      map[int64]map[int64]float64
	edgeType map[[2]int64]string
}

// New creates an empty undirected graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[int64]*Node),
		adj:      make(map[int64]map[int64]float64),
		edgeType: make(map[[2]int64]string),
	}
}

// NewDirected creates an empty directed graph. Directed graphs are a
// provided capability; the co-occurrence pipeline only produces undirected
// relations.
func NewDirected() *Graph {
	g := New()
	g.directed = true
	return g
}

// Directed reports whether edges carry direction.
func (g *Graph) Directed() bool { return g.directed }

// AddNode adds or replaces a node.
func (g *Graph) AddNode(n *Node) {
	g.nodes[n.ID] = n
	if g.adj[n.ID] == nil {
		g.adj[n.ID] = make(map[int64]float64)
	}
}

// AddEdge adds or replaces an edge between two existing nodes.
// Returns false without modifying the graph when either endpoint is unknown.
func (g *Graph) AddEdge(a, b int64, weight float64, edgeType string) bool {
	if g.nodes[a] == nil || g.nodes[b] == nil || a == b {
		return false
	}
	g.adj[a][b] = weight
	if !g.directed {
		g.adj[b][a] = weight
	}
	g.edgeType[g.edgeKey(a, b)] = edgeType
	return true
}

// RemoveEdge deletes the edge between a and b if present.
func (g *Graph) RemoveEdge(a, b int64) {
	delete(g.adj[a], b)
	if !g.directed {
		delete(g.adj[b], a)
	}
	delete(g.edgeType, g.edgeKey(a, b))
}

func (g *Graph) edgeKey(a, b int64) [2]int64 {
	if !g.directed && b < a {
		a, b = b, a
	}
	return [2]int64{a, b}
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(id int64) bool { return g.nodes[id] != nil }

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id int64) *Node { return g.nodes[id] }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges (undirected edges counted once).
func (g *Graph) EdgeCount() int { return len(g.edgeType) }

// NodeIDs returns all node ids in ascending order.
func (g *Graph) NodeIDs() []int64 {
	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Neighbors returns the ids adjacent to a node in ascending order.
// For directed graphs these are out-neighbors.
func (g *Graph) Neighbors(id int64) []int64 {
	ids := make([]int64, 0, len(g.adj[id]))
	for n := range g.adj[id] {
		ids = append(ids, n)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Weight returns the edge weight between a and b and whether the edge exists.
func (g *Graph) Weight(a, b int64) (float64, bool) {
	w, ok := g.adj[a][b]
	return w, ok
}

// Degree returns the number of edges incident to a node.
func (g *Graph) Degree(id int64) int { return len(g.adj[id]) }

// Edges returns all edges sorted by (A, B). Undirected pairs are canonical.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edgeType))
	for key, edgeType := range g.edgeType {
		w := g.adj[key[0]][key[1]]
		edges = append(edges, Edge{A: key[0], B: key[1], Weight: w, Type: edgeType})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	return edges
}

// Components returns the connected components as id-sorted slices, largest
// first (ties: by smallest member id). Direction is ignored for
// connectivity, matching discovery semantics.
func (g *Graph) Components() [][]int64 {
	visited := make(map[int64]bool)
	var components [][]int64

	for _, start := range g.NodeIDs() {
		if visited[start] {
			continue
		}
		var component []int64
		queue := []int64{start}
		visited[start] = true
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			component = append(component, current)
			for neighbor := range g.undirectedNeighbors(current) {
				if !visited[neighbor] {
					visited[neighbor] = true
					queue = append(queue, neighbor)
				}
			}
		}
		sort.Slice(component, func(i, j int) bool { return component[i] < component[j] })
		components = append(components, component)
	}

	sort.Slice(components, func(i, j int) bool {
		if len(components[i]) != len(components[j]) {
			return len(components[i]) > len(components[j])
		}
		return components[i][0] < components[j][0]
	})
	return components
}

// ComponentOf returns the id-sorted component containing the given node,
// or nil if the node is absent.
func (g *Graph) ComponentOf(id int64) []int64 {
	if !g.HasNode(id) {
		return nil
	}
	for _, component := range g.Components() {
		for _, member := range component {
			if member == id {
				return component
			}
		}
	}
	return nil
}

// undirectedNeighbors returns the adjacency set ignoring edge direction.
func (g *Graph) undirectedNeighbors(id int64) map[int64]bool {
	neighbors := make(map[int64]bool)
	for n := range g.adj[id] {
		neighbors[n] = true
	}
	if g.directed {
		for a, targets := range g.adj {
			if _, ok := targets[id]; ok {
				neighbors[a] = true
			}
		}
	}
	return neighbors
}

// Induced returns the subgraph induced by the given node ids: those nodes
// and every edge whose endpoints are both included.
func (g *Graph) Induced(ids []int64) *Graph {
	sub := New()
	sub.directed = g.directed

	keep := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if node := g.nodes[id]; node != nil {
			keep[id] = true
			sub.AddNode(node)
		}
	}

	for key, edgeType := range g.edgeType {
		if keep[key[0]] && keep[key[1]] {
			sub.AddEdge(key[0], key[1], g.adj[key[0]][key[1]], edgeType)
		}
	}

	return sub
}
