package driven

import (
	"context"

	"github.com/forage-dev/forage/internal/core/domain"
)

// IndexEntry is one chunk as stored in a collection's index.
type IndexEntry struct {
	// ID is the chunk ID.
	ID string

	// Content is the chunk text.
	Content string

	// Metadata is the chunk metadata.
	Metadata domain.Metadata

	// Embedding is the chunk's vector.
	Embedding []float32
}

// IndexHit is a similarity search result from one collection.
type IndexHit struct {
	// Content is the matched chunk's text.
	Content string

	// Metadata is the matched chunk's metadata.
	Metadata domain.Metadata

	// Score is the normalised relevance score in [0,1].
	// Implementations must keep it monotonic in similarity and
	// comparable across collections built with the same model.
	Score float64
}

// VectorIndex persists embeddings per named collection and serves
// similarity search over them. Two implementations exist: an on-disk
// SQLite store (one directory per collection) and an in-memory store
// for tests and throwaway sessions.
//
// Writers to the same collection must serialise; reads may run
// concurrently with writes.
type VectorIndex interface {
	// CreateCollection allocates an empty index for name.
	// Creating an existing collection is a no-op.
	CreateCollection(ctx context.Context, name string) error

	// HasCollection reports whether a collection exists.
	HasCollection(name string) (bool, error)

	// ListCollections returns all collection names in sorted order.
	ListCollections() ([]string, error)

	// DeleteCollection removes a collection's index and metadata.
	// Deleting a missing collection is a no-op.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert writes entries into the named collection.
	Upsert(ctx context.Context, collection string, entries []IndexEntry) error

	// Search returns up to k hits with score >= threshold, sorted by
	// score descending. A missing collection is an error
	// (domain.ErrCollectionNotFound); an empty one returns no hits.
	Search(ctx context.Context, collection string, query []float32, k int, threshold float64) ([]IndexHit, error)

	// SaveMetadata persists collection metadata alongside the index.
	SaveMetadata(ctx context.Context, meta domain.CollectionMetadata) error

	// LoadMetadata reads the persisted metadata for a collection.
	LoadMetadata(ctx context.Context, collection string) (domain.CollectionMetadata, error)

	// Close releases resources.
	Close() error
}
