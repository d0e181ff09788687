package entigraph

import (
	"context"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func newTestEntigraph(t *testing.T) *Entigraph {
	t.Helper()
	e, err := New(Config{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestNewRequiresDBPath(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected an error for missing DBPath")
	}
}

func TestEndToEnd(t *testing.T) {
	e := newTestEntigraph(t)
	ctx := context.Background()
	s := e.Store()

	seen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	k8sID, err := s.UpsertEntity(ctx, "kubernetes", strPtr("Technology"), seen)
	if err != nil {
		t.Fatal(err)
	}
	typoID, err := s.UpsertEntity(ctx, "kubernets", strPtr("Technology"), seen)
	if err != nil {
		t.Fatal(err)
	}
	dockerID, err := s.UpsertEntity(ctx, "docker", strPtr("Technology"), seen)
	if err != nil {
		t.Fatal(err)
	}

	// kubernetes and docker co-occur in two documents.
	for i, doc := range []string{"doc-1", "doc-2"} {
		at := seen.Add(time.Duration(i) * 24 * time.Hour)
		if err := s.RecordMention(ctx, k8sID, doc, at); err != nil {
			t.Fatal(err)
		}
		if err := s.RecordMention(ctx, dockerID, doc, at); err != nil {
			t.Fatal(err)
		}
	}

	// Relationships from co-occurrence.
	count, err := e.RebuildRelationships(ctx)
	if err != nil {
		t.Fatalf("RebuildRelationships: %v", err)
	}
	if count != 1 {
		t.Errorf("relationship count = %d, want 1", count)
	}

	// Fuzzy clustering merges the typo into the canonical entity.
	clusters, err := e.ClusterEntities(ctx, 0, nil, false)
	if err != nil {
		t.Fatalf("ClusterEntities: %v", err)
	}
	if len(clusters) != 1 {
		t.Fatalf("cluster count = %d, want 1", len(clusters))
	}
	if clusters[0].Representative.ID != k8sID && clusters[0].Representative.ID != typoID {
		t.Errorf("unexpected representative %+v", clusters[0].Representative)
	}
	typo, err := s.GetEntity(ctx, typoID)
	if err != nil {
		t.Fatal(err)
	}
	if typo.ClusterID == nil {
		t.Error("cluster id not written back")
	}

	// Full analysis caches centrality and community per entity.
	result, err := e.Analyze(ctx)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Stats.NodeCount != 3 || result.Stats.EdgeCount != 1 {
		t.Errorf("stats = %+v, want 3 nodes and 1 edge", result.Stats)
	}
	if len(result.Centrality) != 3 {
		t.Errorf("centrality map size = %d, want 3", len(result.Centrality))
	}
	k8s, err := s.GetEntity(ctx, k8sID)
	if err != nil {
		t.Fatal(err)
	}
	if k8s.Centrality == nil || k8s.CommunityID == nil {
		t.Errorf("analytics not written back: %+v", k8s)
	}

	// Exploration over the stored graph.
	explorer, err := e.Explorer(ctx)
	if err != nil {
		t.Fatalf("Explorer: %v", err)
	}
	path := explorer.FindPath(k8sID, dockerID)
	if path == nil || path.Hops != 1 {
		t.Errorf("path = %+v, want a direct hop", path)
	}

	// Temporal trends over the mention history.
	tl, err := e.Temporal().EntityTimeline(ctx, k8sID)
	if err != nil {
		t.Fatalf("EntityTimeline: %v", err)
	}
	if tl == nil || len(tl.Mentions) != 2 {
		t.Errorf("timeline = %+v, want 2 mentions", tl)
	}
}

func TestClusterEntitiesDryRun(t *testing.T) {
	e := newTestEntigraph(t)
	ctx := context.Background()
	s := e.Store()

	id1, _ := s.UpsertEntity(ctx, "redis", strPtr("Technology"), time.Now())
	if _, err := s.UpsertEntity(ctx, "rediss", strPtr("Technology"), time.Now()); err != nil {
		t.Fatal(err)
	}

	clusters, err := e.ClusterEntities(ctx, 0, nil, true)
	if err != nil {
		t.Fatalf("ClusterEntities: %v", err)
	}
	if len(clusters) != 1 {
		t.Fatalf("cluster count = %d, want 1", len(clusters))
	}

	entity, err := s.GetEntity(ctx, id1)
	if err != nil {
		t.Fatal(err)
	}
	if entity.ClusterID != nil {
		t.Errorf("dry run wrote cluster id %v", *entity.ClusterID)
	}
}

func TestExplorerOnEmptyStore(t *testing.T) {
	e := newTestEntigraph(t)

	explorer, err := e.Explorer(context.Background())
	if err != nil {
		t.Fatalf("Explorer: %v", err)
	}
	if explorer.Graph().NodeCount() != 0 {
		t.Errorf("empty store graph has %d nodes", explorer.Graph().NodeCount())
	}
}

func TestAnalyzeEmptyStore(t *testing.T) {
	e := newTestEntigraph(t)

	result, err := e.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Stats.NodeCount != 0 {
		t.Errorf("stats = %+v, want empty", result.Stats)
	}
}
