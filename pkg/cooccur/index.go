// Package cooccur derives weighted entity-pair relations from mention rows
// grouped by shared source document.
package cooccur

import (
	"sort"
	"strings"

	"github.com/entigraph/entigraph/pkg/store"
)

// DefaultMinCoOccurrence is the default minimum shared-document count for a
// pair to be emitted. Bounds graph density: one-off co-occurrences are noise.
const DefaultMinCoOccurrence = 2

// Pair is a canonical weighted entity pair. EntityA < EntityB always.
type Pair struct {
	EntityA         int64    // Smaller entity id
	EntityB         int64    // Larger entity id
	Weight          int      // Count of distinct shared source documents
	SourceDocuments []string // Contributing document ids, sorted
}

// Index computes co-occurrence pairs from mention rows.
type Index struct {
	// MinCoOccurrence is the minimum distinct shared-document count for a
	// pair to be emitted (default 2). Set to 1 to keep every pair.
	MinCoOccurrence int
}

// NewIndex creates an index with the default minimum co-occurrence.
func NewIndex() *Index {
	return &Index{MinCoOccurrence: DefaultMinCoOccurrence}
}

// Pairs derives weighted entity pairs from mention rows.
//
// Co-occurrence counts documents, not mention repeats: two entities
// appearing together in one document contribute exactly 1 to the pair
// weight no matter how often either is repeated within it. Same-named
// entities are grouped case-insensitively and represented by the lowest
// entity id of the group. Pairs below MinCoOccurrence are dropped.
func (idx *Index) Pairs(mentions []*store.Mention) []*Pair {
	minCo := idx.MinCoOccurrence
	if minCo < 1 {
		minCo = 1
	}

	// Case-insensitive grouping: each distinct lowercased text maps to
	// the lowest entity id that carries it.
	canonical := make(map[string]int64)
	for _, m := range mentions {
		key := strings.ToLower(strings.TrimSpace(m.EntityText))
		if key == "" {
			continue
		}
		if id, ok := canonical[key]; !ok || m.EntityID < id {
			canonical[key] = m.EntityID
		}
	}

	// Distinct canonical entity ids per document.
	docEntities := make(map[string]map[int64]bool)
	for _, m := range mentions {
		key := strings.ToLower(strings.TrimSpace(m.EntityText))
		if key == "" {
			continue
		}
		id := canonical[key]
		if docEntities[m.SourceDocumentID] == nil {
			docEntities[m.SourceDocumentID] = make(map[int64]bool)
		}
		docEntities[m.SourceDocumentID][id] = true
	}

	// One weight unit per (canonical pair, document).
	type pairKey struct{ a, b int64 }
	weights := make(map[pairKey]int)
	docs := make(map[pairKey][]string)

	docIDs := make([]string, 0, len(docEntities))
	for docID := range docEntities {
		docIDs = append(docIDs, docID)
	}
	sort.Strings(docIDs)

	for _, docID := range docIDs {
		ids := make([]int64, 0, len(docEntities[docID]))
		for id := range docEntities[docID] {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				key := pairKey{ids[i], ids[j]}
				weights[key]++
				docs[key] = append(docs[key], docID)
			}
		}
	}

	pairs := make([]*Pair, 0, len(weights))
	for key, weight := range weights {
		if weight < minCo {
			continue
		}
		pairs = append(pairs, &Pair{
			EntityA:         key.a,
			EntityB:         key.b,
			Weight:          weight,
			SourceDocuments: docs[key],
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].EntityA != pairs[j].EntityA {
			return pairs[i].EntityA < pairs[j].EntityA
		}
		return pairs[i].EntityB < pairs[j].EntityB
	})

	return pairs
}

// Relationships converts derived pairs into relationship rows ready for the
// store, with the default "co-occurs" type.
func (idx *Index) Relationships(mentions []*store.Mention) []*store.Relationship {
	pairs := idx.Pairs(mentions)
	relationships := make([]*store.Relationship, 0, len(pairs))
	for _, p := range pairs {
		relationships = append(relationships, &store.Relationship{
			Entity1ID:        p.EntityA,
			Entity2ID:        p.EntityB,
			CoOccurrence:     p.Weight,
			RelationshipType: store.DefaultRelationshipType,
			SourceDocuments:  p.SourceDocuments,
		})
	}
	return relationships
}
