package similarity

import (
	"math"
	"testing"
)

func TestEmbedFixedWidth(t *testing.T) {
	vec := Embed("ab")
	if len(vec) != Dim {
		t.Fatalf("len = %d, want %d", len(vec), Dim)
	}
	if vec[0] != 97 || vec[1] != 98 {
		t.Errorf("vec[0:2] = %v, %v; want char codes 97, 98", vec[0], vec[1])
	}
	for i := 2; i < Dim; i++ {
		if vec[i] != 0 {
			t.Errorf("vec[%d] = %v, want zero padding", i, vec[i])
		}
	}

	long := Embed("this string is much longer than twenty characters")
	if len(long) != Dim {
		t.Errorf("long embedding len = %d, want truncation to %d", len(long), Dim)
	}
}

func TestEmbedDeterministic(t *testing.T) {
	a := Embed("API_Tool")
	b := Embed("API_Tool")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at %d", i)
		}
	}
}

func TestSearchNearest(t *testing.T) {
	ix := NewIndex()
	ix.RebuildFromNames([]string{"API_Tool", "RPA_Tool", "Selenium_RPA_Tool"})

	matches := ix.Search(Embed("API_Tool"), 1)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Name != "API_Tool" {
		t.Errorf("nearest = %q, want exact match", matches[0].Name)
	}
	if matches[0].Distance != 0 {
		t.Errorf("distance to self = %v, want 0", matches[0].Distance)
	}
	if matches[0].Score() != 1.0 {
		t.Errorf("score for exact match = %v, want 1.0", matches[0].Score())
	}
}

func TestSearchAscendingByDistance(t *testing.T) {
	ix := NewIndex()
	ix.RebuildFromNames([]string{"RPA_Tool", "API_Tool", "Selenium_RPA_Tool"})

	matches := ix.Search(Embed("RPB_Tool"), 3)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Distance < matches[i-1].Distance {
			t.Errorf("matches not ascending: %v", matches)
		}
	}
	if matches[0].Name != "RPA_Tool" {
		t.Errorf("nearest to RPB_Tool = %q, want RPA_Tool", matches[0].Name)
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	ix := NewIndex()
	if got := ix.Search(Embed("anything"), 1); got != nil {
		t.Errorf("empty index search = %v, want nil", got)
	}
}

func TestSearchKLargerThanIndex(t *testing.T) {
	ix := NewIndex()
	ix.RebuildFromNames([]string{"A", "B"})
	if got := ix.Search(Embed("A"), 10); len(got) != 2 {
		t.Errorf("expected all 2 entries, got %d", len(got))
	}
}

func TestScoreInUnitInterval(t *testing.T) {
	for _, d := range []float64{0, 0.5, 10, 1e6} {
		s := Match{Distance: d}.Score()
		if s <= 0 || s > 1 {
			t.Errorf("Score(distance=%v) = %v, want (0, 1]", d, s)
		}
	}
}

func TestEuclidean(t *testing.T) {
	a := []float32{3, 0}
	b := []float32{0, 4}
	if d := euclidean(a, b); math.Abs(d-5) > 1e-9 {
		t.Errorf("euclidean = %v, want 5", d)
	}
}
