package cluster

import (
	"context"
	"fmt"
	"sort"

	"github.com/entigraph/entigraph/pkg/store"
)

// DefaultThreshold is the minimum similarity for two entities to be
// considered duplicates.
const DefaultThreshold = 0.8

// Options configures a clustering run.
type Options struct {
	// Threshold is the minimum pairwise similarity for a cluster edge
	// (default 0.8). Must be in (0, 1].
	Threshold float64

	// EntityType restricts clustering to entities of one type.
	// Nil clusters all types (entities of different types still never
	// merge with each other).
	EntityType *string

	// DryRun computes clusters without writing cluster ids back.
	DryRun bool
}

// Cluster is a group of entities judged to be the same real-world entity.
// IDs are dense and run-local: they are NOT stable across reruns, only the
// memberships are.
type Cluster struct {
	ID             int64           // Run-local dense id
	Members        []*store.Entity // At least 2 members, frequency-sorted
	Representative *store.Entity   // Highest-frequency member
	TotalFrequency int             // Sum of member frequencies
	MeanSimilarity float64         // Mean pairwise similarity over member pairs
}

// Clusterer groups near-duplicate entities via pairwise similarity and
// connected components.
type Clusterer struct {
	reader store.EntityReader
	writer store.ClusterWriter
}

// NewClusterer creates a clusterer over the given reader/writer pair.
// The writer may be nil when only dry runs are intended.
func NewClusterer(reader store.EntityReader, writer store.ClusterWriter) *Clusterer {
	return &Clusterer{reader: reader, writer: writer}
}

// Cluster performs a full batch recompute of entity clusters.
//
// Pairwise comparison is O(n²) over same-type entities; this is a documented
// scaling ceiling, callers must size or chunk invocations externally.
// Connected components of the similarity graph become clusters; singleton
// components are discarded. Unless opts.DryRun, member cluster ids are
// written back as one atomic batch.
func (c *Clusterer) Cluster(ctx context.Context, opts Options) ([]*Cluster, error) {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be in (0, 1], got %v", opts.Threshold)
	}

	entities, err := c.reader.Entities(ctx, opts.EntityType)
	if err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}
	if len(entities) < 2 {
		return []*Cluster{}, nil
	}

	// Entities arrive id-sorted from the reader; sort defensively so that
	// unchanged input always reproduces the same memberships.
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })

	uf := newUnionFind(len(entities))
	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			if !sameType(entities[i], entities[j]) {
				continue
			}
			if Similarity(entities[i].Text, entities[j].Text) >= opts.Threshold {
				uf.union(i, j)
			}
		}
	}

	// Collect components keyed by root index.
	components := make(map[int][]*store.Entity)
	for i := range entities {
		root := uf.find(i)
		components[root] = append(components[root], entities[i])
	}

	roots := make([]int, 0, len(components))
	for root, members := range components {
		if len(members) < 2 {
			continue // singletons are not clusters
		}
		roots = append(roots, root)
	}
	sort.Ints(roots)

	clusters := make([]*Cluster, 0, len(roots))
	for i, root := range roots {
		clusters = append(clusters, buildCluster(int64(i+1), components[root]))
	}

	if !opts.DryRun && len(clusters) > 0 {
		if c.writer == nil {
			return nil, fmt.Errorf("cluster write-back requested but no writer configured")
		}
		assignments := make(map[int64]int64)
		for _, cl := range clusters {
			for _, member := range cl.Members {
				assignments[member.ID] = cl.ID
			}
		}
		if err := c.writer.WriteClusterAssignments(ctx, assignments); err != nil {
			return nil, fmt.Errorf("failed to write cluster assignments: %w", err)
		}
	}

	return clusters, nil
}

// buildCluster assembles cluster metadata from its members.
// Members are sorted by frequency descending (ties: id ascending) so the
// representative is the first member in frequency-sorted order.
func buildCluster(id int64, members []*store.Entity) *Cluster {
	sort.Slice(members, func(i, j int) bool {
		if members[i].Frequency != members[j].Frequency {
			return members[i].Frequency > members[j].Frequency
		}
		return members[i].ID < members[j].ID
	})

	total := 0
	for _, m := range members {
		total += m.Frequency
	}

	// Mean pairwise similarity over all member pairs.
	var sum float64
	pairs := 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			sum += Similarity(members[i].Text, members[j].Text)
			pairs++
		}
	}
	mean := 0.0
	if pairs > 0 {
		mean = sum / float64(pairs)
	}

	return &Cluster{
		ID:             id,
		Members:        members,
		Representative: members[0],
		TotalFrequency: total,
		MeanSimilarity: mean,
	}
}

// sameType reports whether two entities share a type. Untyped entities
// (nil type) only match other untyped entities.
func sameType(a, b *store.Entity) bool {
	if a.Type == nil || b.Type == nil {
		return a.Type == nil && b.Type == nil
	}
	return *a.Type == *b.Type
}

// unionFind is a disjoint-set structure over entity slice indexes.
// Merging always keeps the smaller root so components are deterministic
// for a fixed input order.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]] // path halving
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}
