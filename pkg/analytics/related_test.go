package analytics

import (
	"strings"
	"testing"
)

func TestRelatedDirect(t *testing.T) {
	g := buildGraph([]int64{1, 2, 3}, [][3]float64{
		{1, 2, 5}, {1, 3, 9},
	})
	direct, indirect := New(g).Related(1)

	if len(direct) != 2 {
		t.Fatalf("expected 2 direct entities, got %d", len(direct))
	}
	// Ordered by edge weight descending.
	if direct[0].ID != 3 || direct[0].Score != 9 {
		t.Errorf("top direct = %+v, want node 3 with score 9", direct[0])
	}
	if direct[1].ID != 2 || direct[1].Score != 5 {
		t.Errorf("second direct = %+v, want node 2 with score 5", direct[1])
	}
	if len(indirect) != 0 {
		t.Errorf("expected no indirect entities, got %+v", indirect)
	}
}

func TestRelatedIndirectTwoHop(t *testing.T) {
	// 1-2-4 and 1-3-4: node 4 is reachable via two two-hop routes, so its
	// score sums both products: 2*3 + 1*5 = 11.
	g := buildGraph([]int64{1, 2, 3, 4}, [][3]float64{
		{1, 2, 2}, {2, 4, 3}, {1, 3, 1}, {3, 4, 5},
	})
	_, indirect := New(g).Related(1)

	if len(indirect) != 1 {
		t.Fatalf("expected 1 indirect entity, got %d", len(indirect))
	}
	if indirect[0].ID != 4 || indirect[0].Score != 11 {
		t.Errorf("indirect = %+v, want node 4 with score 11", indirect[0])
	}
}

func TestRelatedExcludesDirectFromIndirect(t *testing.T) {
	// Node 3 is both a direct neighbor and two hops away through 2; it
	// must appear only in the direct list.
	g := buildGraph([]int64{1, 2, 3}, [][3]float64{
		{1, 2, 1}, {2, 3, 1}, {1, 3, 1},
	})
	direct, indirect := New(g).Related(1)

	if len(direct) != 2 {
		t.Errorf("expected 2 direct entities, got %d", len(direct))
	}
	if len(indirect) != 0 {
		t.Errorf("direct neighbor leaked into indirect list: %+v", indirect)
	}
}

func TestRelatedUnknownEntity(t *testing.T) {
	g := buildGraph([]int64{1}, nil)
	direct, indirect := New(g).Related(42)

	if direct == nil || indirect == nil {
		t.Fatal("expected empty slices, not nil")
	}
	if len(direct) != 0 || len(indirect) != 0 {
		t.Errorf("unknown entity produced results: %v, %v", direct, indirect)
	}
}

func TestRecommendDeduplicates(t *testing.T) {
	g := buildGraph([]int64{1, 2, 3, 4}, [][3]float64{
		{1, 2, 5}, {1, 3, 3}, {2, 4, 2}, {3, 4, 2},
	})
	recommendations := New(g).Recommend(1)

	seen := make(map[int64]bool)
	for _, r := range recommendations {
		if r.ID == 1 {
			t.Error("recommended the entity itself")
		}
		if seen[r.ID] {
			t.Errorf("duplicate recommendation for %d", r.ID)
		}
		seen[r.ID] = true
		if r.Reason == "" {
			t.Errorf("recommendation %d carries no reason", r.ID)
		}
	}
}

func TestRecommendReasons(t *testing.T) {
	g := buildGraph([]int64{1, 2, 3}, [][3]float64{
		{1, 2, 4}, {2, 3, 2},
	})
	recommendations := New(g).Recommend(1)

	if len(recommendations) < 2 {
		t.Fatalf("expected direct and indirect recommendations, got %+v", recommendations)
	}
	if !strings.Contains(recommendations[0].Reason, "direct connection") {
		t.Errorf("direct reason = %q", recommendations[0].Reason)
	}
	foundIndirect := false
	for _, r := range recommendations {
		if r.ID == 3 && strings.Contains(r.Reason, "shared neighbors") {
			foundIndirect = true
		}
	}
	if !foundIndirect {
		t.Errorf("no indirect recommendation for node 3: %+v", recommendations)
	}
}

func TestRecommendUnknownEntity(t *testing.T) {
	g := buildGraph([]int64{1}, nil)
	if recommendations := New(g).Recommend(42); len(recommendations) != 0 {
		t.Errorf("unknown entity produced recommendations: %+v", recommendations)
	}
}
