package store

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestUpsertEntityNewAndReinforce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	id, err := s.UpsertEntity(ctx, "Kubernetes", strPtr("Technology"), seen)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Same entity under case-insensitive identity.
	id2, err := s.UpsertEntity(ctx, "kubernetes", strPtr("technology"), seen.Add(time.Hour))
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id != id2 {
		t.Fatalf("upsert returned different ids: %d vs %d", id, id2)
	}

	entity, err := s.GetEntity(ctx, id)
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if entity == nil {
		t.Fatal("entity missing after upsert")
	}
	if entity.Frequency != 2 {
		t.Errorf("frequency = %d, want 2", entity.Frequency)
	}
	if entity.Text != "Kubernetes" {
		t.Errorf("text = %q, want original casing preserved", entity.Text)
	}
}

func TestUpsertEntityTypeDistinguishes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id1, err := s.UpsertEntity(ctx, "mercury", strPtr("Person"), time.Now())
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	id2, err := s.UpsertEntity(ctx, "mercury", strPtr("Concept"), time.Now())
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	id3, err := s.UpsertEntity(ctx, "mercury", nil, time.Now())
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if id1 == id2 || id1 == id3 || id2 == id3 {
		t.Errorf("ids should all differ: %d, %d, %d", id1, id2, id3)
	}
}

func TestUpsertEntityEmptyText(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.UpsertEntity(context.Background(), "   ", nil, time.Now()); err == nil {
		t.Error("expected an error for blank text")
	}
}

func TestGetEntityNotFound(t *testing.T) {
	s := newTestStore(t)
	entity, err := s.GetEntity(context.Background(), 12345)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entity != nil {
		t.Errorf("entity = %+v, want nil for unknown id", entity)
	}
}

func TestEntitiesTypeFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.UpsertEntity(ctx, "alice", strPtr("Person"), time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpsertEntity(ctx, "redis", strPtr("Technology"), time.Now()); err != nil {
		t.Fatal(err)
	}

	people, err := s.Entities(ctx, strPtr("person"))
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(people) != 1 || people[0].Text != "alice" {
		t.Errorf("type filter returned %+v", people)
	}

	all, err := s.Entities(ctx, nil)
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered returned %d entities, want 2", len(all))
	}
}

func TestMentionsAndMentionTimes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertEntity(ctx, "kafka", strPtr("Technology"), time.Now())
	if err != nil {
		t.Fatal(err)
	}

	first := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	second := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	// Inserted out of order; reads come back sorted.
	if err := s.RecordMention(ctx, id, "doc-1", second); err != nil {
		t.Fatalf("RecordMention: %v", err)
	}
	if err := s.RecordMention(ctx, id, "doc-1", first); err != nil {
		t.Fatalf("RecordMention: %v", err)
	}

	mentions, err := s.Mentions(ctx)
	if err != nil {
		t.Fatalf("Mentions: %v", err)
	}
	if len(mentions) != 2 {
		t.Fatalf("mention count = %d, want 2", len(mentions))
	}
	if mentions[0].EntityText != "kafka" {
		t.Errorf("mention text = %q, want joined entity text", mentions[0].EntityText)
	}

	times, err := s.MentionTimes(ctx, id)
	if err != nil {
		t.Fatalf("MentionTimes: %v", err)
	}
	if len(times) != 2 || times[0].After(times[1]) {
		t.Errorf("mention times not ordered: %v", times)
	}

	none, err := s.MentionTimes(ctx, 999)
	if err != nil {
		t.Fatalf("MentionTimes: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no mention times for unknown entity, got %v", none)
	}
}

func TestReplaceRelationships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := []*Relationship{{Entity1ID: 1, Entity2ID: 2, CoOccurrence: 1}}
	if err := s.ReplaceRelationships(ctx, old); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	replacement := []*Relationship{
		{Entity1ID: 3, Entity2ID: 4, CoOccurrence: 5, SourceDocuments: []string{"doc-1", "doc-2"}},
	}
	if err := s.ReplaceRelationships(ctx, replacement); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	relationships, err := s.Relationships(ctx)
	if err != nil {
		t.Fatalf("Relationships: %v", err)
	}
	if len(relationships) != 1 {
		t.Fatalf("relationship count = %d, want 1 (old rows replaced)", len(relationships))
	}
	rel := relationships[0]
	if rel.Entity1ID != 3 || rel.Entity2ID != 4 || rel.CoOccurrence != 5 {
		t.Errorf("unexpected relationship %+v", rel)
	}
	if rel.ID == "" {
		t.Error("relationship should have a generated id")
	}
	if rel.RelationshipType != DefaultRelationshipType {
		t.Errorf("relationship type = %q, want default", rel.RelationshipType)
	}
	if len(rel.SourceDocuments) != 2 || rel.SourceDocuments[0] != "doc-1" {
		t.Errorf("source documents = %v", rel.SourceDocuments)
	}
}

func TestWriteAndClearClusterAssignments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id1, _ := s.UpsertEntity(ctx, "postgres", strPtr("Technology"), time.Now())
	id2, _ := s.UpsertEntity(ctx, "postgresql", strPtr("Technology"), time.Now())

	if err := s.WriteClusterAssignments(ctx, map[int64]int64{id1: 0, id2: 0}); err != nil {
		t.Fatalf("WriteClusterAssignments: %v", err)
	}

	entity, err := s.GetEntity(ctx, id1)
	if err != nil {
		t.Fatal(err)
	}
	if entity.ClusterID == nil || *entity.ClusterID != 0 {
		t.Errorf("cluster id = %v, want 0", entity.ClusterID)
	}

	if err := s.ClearClusterAssignments(ctx); err != nil {
		t.Fatalf("ClearClusterAssignments: %v", err)
	}
	entity, err = s.GetEntity(ctx, id1)
	if err != nil {
		t.Fatal(err)
	}
	if entity.ClusterID != nil {
		t.Errorf("cluster id = %v after clear, want nil", entity.ClusterID)
	}
}

func TestWriteAnalytics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _ := s.UpsertEntity(ctx, "kafka", strPtr("Technology"), time.Now())

	err := s.WriteAnalytics(ctx, map[int64]float64{id: 0.75}, map[int64]int64{id: 2})
	if err != nil {
		t.Fatalf("WriteAnalytics: %v", err)
	}

	entity, err := s.GetEntity(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if entity.Centrality == nil || *entity.Centrality != 0.75 {
		t.Errorf("centrality = %v, want 0.75", entity.Centrality)
	}
	if entity.CommunityID == nil || *entity.CommunityID != 2 {
		t.Errorf("community id = %v, want 2", entity.CommunityID)
	}
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.UpsertEntity(ctx, "a", nil, time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpsertEntity(ctx, "b", nil, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceRelationships(ctx, []*Relationship{{Entity1ID: 1, Entity2ID: 2, CoOccurrence: 2}}); err != nil {
		t.Fatal(err)
	}

	entityCount, err := s.EntityCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if entityCount != 2 {
		t.Errorf("entity count = %d, want 2", entityCount)
	}

	relationshipCount, err := s.RelationshipCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if relationshipCount != 1 {
		t.Errorf("relationship count = %d, want 1", relationshipCount)
	}
}

func TestSchemaMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Re-running migrations against an up-to-date schema must be a no-op.
	if err := s.migrateSchema(); err != nil {
		t.Fatalf("migrateSchema on current schema: %v", err)
	}
	if !s.columnExists("entities", "community_id") {
		t.Error("community_id column missing after migration")
	}
	if !s.columnExists("entities", "centrality") {
		t.Error("centrality column missing after migration")
	}
}
