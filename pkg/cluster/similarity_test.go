package cluster

import (
	"math"
	"testing"
)

func TestSimilarityIdentical(t *testing.T) {
	if got := Similarity("kubernetes", "kubernetes"); got != 1.0 {
		t.Errorf("Similarity(x, x) = %v, want 1.0", got)
	}
}

func TestSimilarityCaseInsensitive(t *testing.T) {
	if got := Similarity("PostgreSQL", "postgresql"); got != 1.0 {
		t.Errorf("case-insensitive identity = %v, want 1.0", got)
	}
	if got := Similarity("  Redis ", "redis"); got != 1.0 {
		t.Errorf("trimmed identity = %v, want 1.0", got)
	}
}

func TestSimilarityEmpty(t *testing.T) {
	if got := Similarity("", ""); got != 0.0 {
		t.Errorf("Similarity(\"\", \"\") = %v, want 0.0", got)
	}
	if got := Similarity("x", ""); got != 0.0 {
		t.Errorf("Similarity(\"x\", \"\") = %v, want 0.0", got)
	}
	if got := Similarity("", "x"); got != 0.0 {
		t.Errorf("Similarity(\"\", \"x\") = %v, want 0.0", got)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"kubernetes", "kubernets"},
		{"Dan", "Dana"},
		{"alpha", "omega"},
		{"", "something"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestSimilarityKnownDistances(t *testing.T) {
	// "kitten" -> "sitting": distance 3, max length 7
	want := 1.0 - 3.0/7.0
	got := Similarity("kitten", "sitting")
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Similarity(kitten, sitting) = %v, want %v", got, want)
	}

	// One-character typo in a 10-char word
	want = 1.0 - 1.0/10.0
	got = Similarity("kubernetes", "kubernetas")
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Similarity(kubernetes, kubernetas) = %v, want %v", got, want)
	}
}

func TestSimilarityRange(t *testing.T) {
	pairs := [][2]string{
		{"a", "completely different phrase"},
		{"abc", "abd"},
		{"same", "same"},
	}
	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Similarity(%q, %q) = %v, out of [0, 1]", p[0], p[1], got)
		}
	}
}
