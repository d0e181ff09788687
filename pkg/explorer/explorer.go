// Package explorer is the query/filter layer over the composed entity
// graph: multi-criteria filtering, radius-bounded subgraph extraction,
// temporal snapshotting and importance dispatch.
package explorer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/entigraph/entigraph/pkg/analytics"
	"github.com/entigraph/entigraph/pkg/graph"
	"github.com/entigraph/entigraph/pkg/store"
)

// Explorer loads the full graph once per instance and serves queries
// against that snapshot. A missing or empty source schema loads as an
// empty graph, not an error.
type Explorer struct {
	reader   store.EntityReader
	g        *graph.Graph
	analyzer *analytics.Analyzer

	// Now overrides the reference time in tests; nil uses time.Now.
	Now func() time.Time
}

// New builds an explorer over the reader's current rows.
func New(ctx context.Context, reader store.EntityReader) (*Explorer, error) {
	entities, err := reader.Entities(ctx, nil)
	if err != nil {
		if !missingSchema(err) {
			return nil, fmt.Errorf("failed to load entities: %w", err)
		}
		entities = nil
	}

	relationships, err := reader.Relationships(ctx)
	if err != nil {
		if !missingSchema(err) {
			return nil, fmt.Errorf("failed to load relationships: %w", err)
		}
		relationships = nil
	}

	builder := &graph.Builder{}
	g := builder.Build(entities, relationships)
	return &Explorer{
		reader:   reader,
		g:        g,
		analyzer: analytics.New(g),
	}, nil
}

// missingSchema reports whether an error comes from querying a table that
// was never created. An uninitialized store is an empty graph.
func missingSchema(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// Graph returns the loaded graph snapshot.
func (e *Explorer) Graph() *graph.Graph { return e.g }

func (e *Explorer) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// FilterCriteria are independent predicates intersected into an induced
// subgraph. Zero values mean "no constraint".
type FilterCriteria struct {
	Types         []string // keep these entity types (case-insensitive)
	MinFrequency  int
	MaxFrequency  int // 0 = unbounded
	MinCentrality float64 // degree centrality floor, computed on the full graph
	Communities   []int64 // keep these community ids (cached on nodes)
	ConnectedOnly bool    // drop isolated nodes after the other predicates
}

// FilterResult is the induced subgraph matching the criteria.
type FilterResult struct {
	Nodes []*graph.Node
	Edges []graph.Edge
	Stats graph.Stats
}

// Filter intersects the criteria into an induced subgraph.
func (e *Explorer) Filter(criteria FilterCriteria) *FilterResult {
	typeSet := make(map[string]bool, len(criteria.Types))
	for _, t := range criteria.Types {
		typeSet[strings.ToLower(t)] = true
	}
	communitySet := make(map[int64]bool, len(criteria.Communities))
	for _, c := range criteria.Communities {
		communitySet[c] = true
	}

	var centrality map[int64]float64
	if criteria.MinCentrality > 0 {
		centrality = e.analyzer.DegreeCentrality()
	}

	var kept []int64
	for _, id := range e.g.NodeIDs() {
		node := e.g.Node(id)
		if len(typeSet) > 0 {
			if node.Type == nil || !typeSet[strings.ToLower(*node.Type)] {
				continue
			}
		}
		if node.Frequency < criteria.MinFrequency {
			continue
		}
		if criteria.MaxFrequency > 0 && node.Frequency > criteria.MaxFrequency {
			continue
		}
		if centrality != nil && centrality[id] < criteria.MinCentrality {
			continue
		}
		if len(communitySet) > 0 {
			if node.Community == nil || !communitySet[*node.Community] {
				continue
			}
		}
		kept = append(kept, id)
	}

	sub := e.g.Induced(kept)
	if criteria.ConnectedOnly {
		var connected []int64
		for _, id := range sub.NodeIDs() {
			if sub.Degree(id) > 0 {
				connected = append(connected, id)
			}
		}
		sub = sub.Induced(connected)
	}

	result := &FilterResult{
		Nodes: make([]*graph.Node, 0, sub.NodeCount()),
		Edges: sub.Edges(),
		Stats: sub.Stats(),
	}
	for _, id := range sub.NodeIDs() {
		result.Nodes = append(result.Nodes, sub.Node(id))
	}
	return result
}

// SubgraphResult is a radius-bounded neighborhood around a center entity.
type SubgraphResult struct {
	Center    int64
	Nodes     []int64
	Edges     []graph.Edge
	Density   float64
	AvgDegree float64
	Components int
}

// Subgraph extracts the neighborhood reachable from center within radius
// hops, traversing only edges with weight >= minEdgeWeight. Radius 0 yields
// just the center with no edges. An unknown center returns nil.
func (e *Explorer) Subgraph(center int64, radius int, minEdgeWeight float64) *SubgraphResult {
	if !e.g.HasNode(center) {
		return nil
	}
	if radius < 0 {
		radius = 0
	}

	depth := map[int64]int{center: 0}
	queue := []int64{center}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if depth[current] >= radius {
			continue
		}
		for _, neighbor := range e.g.Neighbors(current) {
			w, _ := e.g.Weight(current, neighbor)
			if w < minEdgeWeight {
				continue
			}
			if _, seen := depth[neighbor]; !seen {
				depth[neighbor] = depth[current] + 1
				queue = append(queue, neighbor)
			}
		}
	}

	ids := make([]int64, 0, len(depth))
	for id := range depth {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	sub := e.g.Induced(ids)
	// The induced subgraph may include edges below the traversal floor;
	// those were not walked and stay out of the report.
	for _, edge := range sub.Edges() {
		if edge.Weight < minEdgeWeight {
			sub.RemoveEdge(edge.A, edge.B)
		}
	}

	stats := sub.Stats()
	return &SubgraphResult{
		Center:     center,
		Nodes:      ids,
		Edges:      sub.Edges(),
		Density:    stats.Density,
		AvgDegree:  stats.AvgDegree,
		Components: stats.Components,
	}
}

// FindPaths returns all simple paths between two entities on the loaded
// graph, up to maxHops.
func (e *Explorer) FindPaths(from, to int64, maxHops int) []*analytics.Path {
	return e.analyzer.FindPaths(from, to, maxHops)
}

// FindPath returns the weighted shortest path on the loaded graph.
func (e *Explorer) FindPath(from, to int64) *analytics.Path {
	return e.analyzer.FindPath(from, to)
}

// Bridges returns bridge edges of the loaded graph at/above minWeight.
func (e *Explorer) Bridges(minWeight float64) []graph.Edge {
	return e.analyzer.Bridges(minWeight)
}

// TemporalChanges partitions entities by recent-mention membership.
type TemporalChanges struct {
	WindowDays int
	New        []int64 // first mention inside the window
	Active     []int64 // any mention inside the window
	Dormant    []int64 // no mention inside the window
	ActiveStats graph.Stats // stats over the active induced subgraph
}

// DetectTemporalChanges partitions entities into new/active/dormant by
// membership of their mentions in the last `days` days, and computes graph
// statistics over the active subset only.
func (e *Explorer) DetectTemporalChanges(ctx context.Context, days int) (*TemporalChanges, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}

	mentions, err := e.reader.Mentions(ctx)
	if err != nil {
		if !missingSchema(err) {
			return nil, fmt.Errorf("failed to load mentions: %w", err)
		}
		mentions = nil
	}

	cutoff := e.now().Add(-time.Duration(days) * 24 * time.Hour)

	firstMention := make(map[int64]time.Time)
	recentMention := make(map[int64]bool)
	for _, m := range mentions {
		if first, ok := firstMention[m.EntityID]; !ok || m.MentionedAt.Before(first) {
			firstMention[m.EntityID] = m.MentionedAt
		}
		if !m.MentionedAt.Before(cutoff) {
			recentMention[m.EntityID] = true
		}
	}

	changes := &TemporalChanges{WindowDays: days}
	for _, id := range e.g.NodeIDs() {
		switch {
		case recentMention[id] && !firstMention[id].Before(cutoff):
			changes.New = append(changes.New, id)
			changes.Active = append(changes.Active, id)
		case recentMention[id]:
			changes.Active = append(changes.Active, id)
		default:
			changes.Dormant = append(changes.Dormant, id)
		}
	}

	changes.ActiveStats = e.g.Induced(changes.Active).Stats()
	return changes, nil
}

// Importance metrics accepted by GetEntityImportance.
const (
	MetricDegree      = "degree"
	MetricBetweenness = "betweenness"
	MetricCloseness   = "closeness"
)

// GetEntityImportance dispatches to the requested centrality measure.
// Closeness on a disconnected graph is restricted to the largest component;
// nodes outside it are silently excluded (documented approximation).
// An unknown metric is a parameter error.
func (e *Explorer) GetEntityImportance(metric string) (map[int64]float64, error) {
	switch metric {
	case MetricDegree:
		return e.analyzer.DegreeCentrality(), nil
	case MetricBetweenness:
		return e.analyzer.BetweennessCentrality(), nil
	case MetricCloseness:
		components := e.g.Components()
		if len(components) <= 1 {
			return e.analyzer.ClosenessCentrality(), nil
		}
		largest := analytics.New(e.g.Induced(components[0]))
		return largest.ClosenessCentrality(), nil
	default:
		return nil, fmt.Errorf("unknown importance metric %q (want degree, betweenness or closeness)", metric)
	}
}
