// Package embedding implements the cached neighbor-topic model and the
// optional full embedding vector store (spec.md §3, §4.B).
//
// Grounded on the teacher repository's habit of layering an LRU front-cache
// (hashicorp/golang-lru/v2) over a backing map for hot-path lookups.
package embedding

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/csoclassifier/pkg/csoerr"
)

// NeighborEntry is one row of the cached neighbor model: a CSO topic similar
// to a vocabulary word, with the two similarity scores that produced it.
type NeighborEntry struct {
	Topic string  `json:"topic"` // underscore-form CSO topic
	SimT  float64 `json:"sim_t"` // string similarity between topic and Wet, [0,1]
	Wet   string  `json:"wet"`   // vocabulary word similar to the queried word
	SimW  float64 `json:"sim_w"` // word-vector similarity between Wet and the queried word, [0,1]
}

const defaultLRUSize = 4096

// Store is the EmbeddingStore of spec.md §3.
type Store struct {
	cache map[string][]NeighborEntry
	front *lru.Cache[string, []NeighborEntry]

	vectors map[string][]float32
	dim     int
}

// Load reads the cached neighbor model (word -> []NeighborEntry) from JSON.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", csoerr.ErrAssetMissing, err)
	}
	var cache map[string][]NeighborEntry
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parse neighbor cache: %w", err)
	}
	front, err := lru.New[string, []NeighborEntry](defaultLRUSize)
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache, front: front}, nil
}

// NewFromMap builds a Store directly from an in-memory cache, used by tests
// and by synthetic-cache scenarios (spec.md §8 scenario 5).
func NewFromMap(cache map[string][]NeighborEntry) *Store {
	front, _ := lru.New[string, []NeighborEntry](defaultLRUSize)
	return &Store{cache: cache, front: front}
}

// Get returns the cache entries for a word, checking the LRU front-cache
// before the backing map (a pure performance layer; never changes results).
func (s *Store) Get(word string) ([]NeighborEntry, bool) {
	if s == nil {
		return nil, false
	}
	if v, ok := s.front.Get(word); ok {
		return v, true
	}
	v, ok := s.cache[word]
	if ok {
		s.front.Add(word, v)
	}
	return v, ok
}

// LoadVectors attaches a full embedding vector store, parsed from a JSON map
// of word -> []float32. Loading this is optional and only required when
// use_full_model is true (spec.md §5).
func (s *Store) LoadVectors(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", csoerr.ErrAssetMissing, err)
	}
	var vectors map[string][]float32
	if err := json.Unmarshal(data, &vectors); err != nil {
		return fmt.Errorf("parse vector store: %w", err)
	}
	s.vectors = vectors
	for _, v := range vectors {
		s.dim = len(v)
		break
	}
	return nil
}

// HasVectors reports whether a full vector store is attached.
func (s *Store) HasVectors() bool {
	return s != nil && len(s.vectors) > 0
}

// Has reports whether a word has a vector in the full store.
func (s *Store) Has(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.vectors[word]
	return ok
}

// Vector returns the embedding vector for w, or the zero vector if missing
// (spec.md §7 EmbeddingMiss: never raised, always the zero-vector fallback).
func (s *Store) Vector(w string) []float32 {
	if s == nil {
		return nil
	}
	if v, ok := s.vectors[w]; ok {
		return v
	}
	if s.dim == 0 {
		return nil
	}
	return make([]float32, s.dim)
}

// SimilarWord is one result of a top-k nearest neighbor query.
type SimilarWord struct {
	Word string
	Sim  float64
}

// Similar returns the top-k words most similar to w by cosine similarity
// over the full vector store (live mode in spec.md §4.E step 1). Missing
// words yield no results rather than an error.
func (s *Store) Similar(w string, k int) []SimilarWord {
	if s == nil || !s.HasVectors() {
		return nil
	}
	qv, ok := s.vectors[w]
	if !ok {
		return nil
	}
	out := make([]SimilarWord, 0, len(s.vectors))
	for word, v := range s.vectors {
		if word == w {
			continue
		}
		out = append(out, SimilarWord{Word: word, Sim: cosine(qv, v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sim > out[j].Sim })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
