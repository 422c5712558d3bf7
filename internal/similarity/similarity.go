// Package similarity provides nearest-neighbor search over tool-name
// embeddings. It is the last-resort tier of the dispatch fallback chain.
//
// The embedding is a deterministic placeholder derived from character codes;
// a production deployment would substitute a real embedding model behind
// Embed without touching the index.
package similarity

import (
	"math"
	"sort"
)

// Dim is the fixed embedding width. Longer text is truncated, shorter text
// zero-padded.
const Dim = 20

// Embed maps text to a fixed-length vector of its character codes.
func Embed(text string) []float32 {
	vec := make([]float32, Dim)
	for i, r := range text {
		if i >= Dim {
			break
		}
		vec[i] = float32(r)
	}
	return vec
}

// Match is one search result.
type Match struct {
	// Name is the matched tool name.
	Name string
	// Distance is the Euclidean distance to the query, smaller is closer.
	Distance float64
}

// Score converts the match distance to a similarity score in (0, 1].
// Identical vectors score 1; the score decays toward 0 with distance, so it
// can be used directly as an edge probability.
func (m Match) Score() float64 {
	return 1.0 / (1.0 + m.Distance)
}

// Index is a flat in-memory nearest-neighbor index: parallel arrays of
// names and vectors searched by linear scan. It is rebuilt once per
// orchestrator lifetime and read-only afterwards.
type Index struct {
	names   []string
	vectors [][]float32
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Rebuild replaces the index contents. Names and vectors are parallel;
// mismatched lengths keep the shorter prefix.
func (ix *Index) Rebuild(names []string, vectors [][]float32) {
	n := len(names)
	if len(vectors) < n {
		n = len(vectors)
	}
	ix.names = append([]string(nil), names[:n]...)
	ix.vectors = make([][]float32, n)
	for i := 0; i < n; i++ {
		ix.vectors[i] = append([]float32(nil), vectors[i]...)
	}
}

// RebuildFromNames embeds each name and rebuilds the index.
func (ix *Index) RebuildFromNames(names []string) {
	vectors := make([][]float32, len(names))
	for i, name := range names {
		vectors[i] = Embed(name)
	}
	ix.Rebuild(names, vectors)
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.names)
}

// Search returns the k nearest entries to the query vector, ascending by
// distance. Fewer than k entries returns them all.
func (ix *Index) Search(query []float32, k int) []Match {
	if k <= 0 || len(ix.names) == 0 {
		return nil
	}

	matches := make([]Match, len(ix.names))
	for i, vec := range ix.vectors {
		matches[i] = Match{Name: ix.names[i], Distance: euclidean(query, vec)}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Name < matches[j].Name
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}

// euclidean computes the L2 distance between two vectors, treating missing
// trailing components as zero.
func euclidean(a, b []float32) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	var sum float64
	for i := 0; i < n; i++ {
		var av, bv float64
		if i < len(a) {
			av = float64(a[i])
		}
		if i < len(b) {
			bv = float64(b[i])
		}
		d := av - bv
		sum += d * d
	}
	return math.Sqrt(sum)
}
