package driving

import (
	"context"

	"github.com/forage-dev/forage/internal/core/domain"
)

// StoreService manages collections and document ingestion.
type StoreService interface {
	// GetOrCreateCollection returns the metadata for name, creating
	// an empty collection on first reference. Idempotent.
	GetOrCreateCollection(ctx context.Context, name string) (domain.CollectionMetadata, error)

	// SetCurrentCollection selects the target for single-collection
	// operations. The collection must already exist.
	SetCurrentCollection(name string) error

	// CurrentCollection returns the currently selected collection name.
	CurrentCollection() string

	// AddDocuments chunks, embeds and indexes documents into the
	// current collection, returning the number of chunks added.
	AddDocuments(ctx context.Context, documents []domain.Document) (int, error)

	// ListCollections returns a snapshot of all collections' metadata.
	ListCollections(ctx context.Context) ([]domain.CollectionMetadata, error)

	// CleanCollection deletes the named collection's index and
	// metadata. Deleting a missing collection is a no-op.
	CleanCollection(ctx context.Context, name string) error
}

// SearchService runs similarity search over the store.
type SearchService interface {
	// Search returns score-ranked results for query, applying
	// configured defaults for zero-valued options.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
