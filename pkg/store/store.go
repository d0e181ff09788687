// Package store provides SQLite-backed persistence for the entity knowledge graph.
package store

import (
	"context"
	"errors"
	"time"
)

// Entity represents a named entity mentioned in the memory store.
// Identity for matching purposes is the case-insensitive (text, type) pair.
type Entity struct {
	ID          int64      // Row id
	Text        string     // Canonical surface text
	Type        *string    // Entity type (Person, Project, ...), nil when untyped
	Frequency   int        // Monotonic mention count, maintained on upsert
	ClusterID   *int64     // Assigned by the clusterer, nil when unclustered
	CommunityID *int64     // Cached from community detection, nil until analyzed
	Centrality  *float64   // Cached centrality score, nil until analyzed
	FirstSeen   time.Time  // Timestamp of first mention
	LastSeen    time.Time  // Timestamp of most recent mention
}

// Mention represents a single occurrence of an entity in a source document.
type Mention struct {
	ID               string    // Unique identifier (UUID)
	EntityID         int64     // Entity row id
	EntityText       string    // Entity text at mention time (denormalized for grouping)
	SourceDocumentID string    // Document the mention came from
	MentionedAt      time.Time // Timestamp of the mention
}

// Relationship represents a weighted co-occurrence between two entities.
// The pair is canonical: Entity1ID < Entity2ID always.
type Relationship struct {
	ID               string   // Unique identifier (UUID)
	Entity1ID        int64    // Smaller entity id
	Entity2ID        int64    // Larger entity id
	CoOccurrence     int      // Count of distinct shared source documents
	RelationshipType string   // Default "co-occurs"
	SourceDocuments  []string // Contributing document ids (optional)
}

// DefaultRelationshipType is used when a relationship row has no explicit type.
const DefaultRelationshipType = "co-occurs"

// EntityReader provides bulk read access to entity graph source rows.
type EntityReader interface {
	// Entities returns all entities, optionally filtered by type.
	// A nil typeFilter returns every entity regardless of type.
	Entities(ctx context.Context, typeFilter *string) ([]*Entity, error)

	// Relationships returns all co-occurrence relationship rows.
	Relationships(ctx context.Context) ([]*Relationship, error)

	// Mentions returns all mention rows joined with entity text.
	Mentions(ctx context.Context) ([]*Mention, error)

	// MentionTimes returns the ordered mention timestamps for one entity.
	// Returns an empty slice when the entity has no recorded mentions.
	MentionTimes(ctx context.Context, entityID int64) ([]time.Time, error)
}

// ClusterWriter persists cluster assignments produced by the clusterer.
// Separate from EntityReader to maintain interface cohesion.
type ClusterWriter interface {
	// WriteClusterAssignments sets cluster_id for every entity in the map
	// inside a single transaction. All-or-nothing: a failure rolls back
	// every assignment.
	WriteClusterAssignments(ctx context.Context, assignments map[int64]int64) error
}

// AnalyticsWriter persists cached analytics results back to entity rows.
type AnalyticsWriter interface {
	// WriteAnalytics sets cached centrality and community_id values inside
	// a single transaction.
	WriteAnalytics(ctx context.Context, centrality map[int64]float64, community map[int64]int64) error
}

// ErrEntityNotFound indicates that no entity was found for the given id.
var ErrEntityNotFound = errors.New("entity not found")
