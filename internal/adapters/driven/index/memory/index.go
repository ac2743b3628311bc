// Package memory implements an in-memory vector index. It keeps the
// same semantics as the persisted backend and is used by tests and by
// callers that do not need data to survive a restart.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type collection struct {
	chunks map[string]driven.IndexEntry
	meta   domain.CollectionMetadata
}

// Index holds all collections in process memory.
type Index struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// New creates an empty in-memory index.
func New() *Index {
	return &Index{collections: make(map[string]*collection)}
}

// CreateCollection allocates an empty collection. Creating an existing
// collection is a no-op.
func (x *Index) CreateCollection(_ context.Context, name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.collections[name]; !ok {
		x.collections[name] = &collection{
			chunks: make(map[string]driven.IndexEntry),
			meta:   domain.CollectionMetadata{Name: name},
		}
	}
	return nil
}

// HasCollection reports whether the named collection exists.
func (x *Index) HasCollection(name string) (bool, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	_, ok := x.collections[name]
	return ok, nil
}

// ListCollections returns all collection names in sorted order.
func (x *Index) ListCollections() ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	names := make([]string, 0, len(x.collections))
	for name := range x.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteCollection removes the collection. Deleting a missing
// collection is a no-op.
func (x *Index) DeleteCollection(_ context.Context, name string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	delete(x.collections, name)
	return nil
}

// Upsert writes entries into the named collection.
func (x *Index) Upsert(_ context.Context, name string, entries []driven.IndexEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	coll, ok := x.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	for _, entry := range entries {
		coll.chunks[entry.ID] = entry
	}
	return nil
}

// Search scores every chunk in the collection by cosine similarity and
// returns up to k hits at or above threshold, best first.
func (x *Index) Search(_ context.Context, name string, query []float32, k int, threshold float64) ([]driven.IndexHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	coll, ok := x.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}

	var hits []driven.IndexHit
	for _, chunk := range coll.chunks {
		score := relevanceScore(query, chunk.Embedding)
		if score < threshold {
			continue
		}
		hits = append(hits, driven.IndexHit{
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
			Score:    score,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// SaveMetadata stores the collection metadata, creating the collection
// if it does not exist yet.
func (x *Index) SaveMetadata(_ context.Context, meta domain.CollectionMetadata) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	coll, ok := x.collections[meta.Name]
	if !ok {
		coll = &collection{chunks: make(map[string]driven.IndexEntry)}
		x.collections[meta.Name] = coll
	}
	coll.meta = meta
	return nil
}

// LoadMetadata returns the stored metadata for a collection.
func (x *Index) LoadMetadata(_ context.Context, name string) (domain.CollectionMetadata, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	coll, ok := x.collections[name]
	if !ok {
		return domain.CollectionMetadata{}, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return coll.meta, nil
}

// Close is a no-op for the in-memory backend.
func (x *Index) Close() error { return nil }

// relevanceScore is cosine similarity clamped to [0,1].
func relevanceScore(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
