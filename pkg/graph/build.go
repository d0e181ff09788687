package graph

import (
	"log"

	"github.com/entigraph/entigraph/pkg/store"
)

// Builder assembles an in-memory graph from entity and relationship rows.
// Pure and idempotent: no I/O, same rows always produce the same graph.
type Builder struct {
	// Directed builds a directed graph (entity1 -> entity2). Undirected
	// is the default; upstream co-occurrence data carries no direction.
	Directed bool
}

// Build constructs the graph. Relationship rows referencing unknown entity
// ids are skipped with a warning, never fatal: a stale relationship row is
// a data-integrity wrinkle, not a reason to refuse analysis.
func (b *Builder) Build(entities []*store.Entity, relationships []*store.Relationship) *Graph {
	var g *Graph
	if b.Directed {
		g = NewDirected()
	} else {
		g = New()
	}

	for _, e := range entities {
		g.AddNode(&Node{
			ID:         e.ID,
			Text:       e.Text,
			Type:       e.Type,
			Frequency:  e.Frequency,
			Centrality: e.Centrality,
			Community:  e.CommunityID,
		})
	}

	for _, rel := range relationships {
		if !g.HasNode(rel.Entity1ID) || !g.HasNode(rel.Entity2ID) {
			log.Printf("entigraph: skipping relationship %s: references unknown entity (%d, %d)",
				rel.ID, rel.Entity1ID, rel.Entity2ID)
			continue
		}
		edgeType := rel.RelationshipType
		if edgeType == "" {
			edgeType = store.DefaultRelationshipType
		}
		g.AddEdge(rel.Entity1ID, rel.Entity2ID, float64(rel.CoOccurrence), edgeType)
	}

	return g
}
