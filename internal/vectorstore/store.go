// Package vectorstore implements collection management, document
// ingestion and similarity search over a vector index. Documents are
// split into chunks, embedded in batches and upserted; search embeds
// the query once and ranks index hits by relevance score.
package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/core/ports/driven"
	"github.com/forage-dev/forage/internal/core/ports/driving"
	"github.com/forage-dev/forage/internal/logger"
	"github.com/forage-dev/forage/internal/postprocessors/chunker"
)

// Ensure Store implements the store port.
var _ driving.StoreService = (*Store)(nil)

// DefaultBatchSize is the number of chunks embedded per provider call
// when no batch size is configured.
const DefaultBatchSize = 32

// Store manages collections backed by a vector index and an embedding
// service.
type Store struct {
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	splitter  *chunker.Splitter
	batchSize int
	now       func() time.Time

	mu      sync.RWMutex
	current string
}

// Option configures a Store.
type Option func(*Store)

// WithBatchSize sets how many chunks are embedded and upserted per
// batch.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithSplitter replaces the default chunk splitter.
func WithSplitter(sp *chunker.Splitter) Option {
	return func(s *Store) {
		if sp != nil {
			s.splitter = sp
		}
	}
}

// WithClock overrides the metadata timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store over the given embedding service and index. The
// current collection starts at the default collection name.
func New(embedder driven.EmbeddingService, index driven.VectorIndex, opts ...Option) *Store {
	s := &Store{
		embedder:  embedder,
		index:     index,
		splitter:  chunker.New(),
		batchSize: DefaultBatchSize,
		now:       time.Now,
		current:   domain.DefaultCollection,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreateCollection returns the metadata for name, creating an
// empty collection on first reference.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string) (domain.CollectionMetadata, error) {
	if name == "" {
		return domain.CollectionMetadata{}, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}

	exists, err := s.index.HasCollection(name)
	if err != nil {
		return domain.CollectionMetadata{}, err
	}
	if exists {
		return s.index.LoadMetadata(ctx, name)
	}

	if err := s.index.CreateCollection(ctx, name); err != nil {
		return domain.CollectionMetadata{}, err
	}
	meta := domain.NewCollectionMetadata(name, s.now())
	if err := s.index.SaveMetadata(ctx, meta); err != nil {
		return domain.CollectionMetadata{}, err
	}

	logger.Debug("Created collection %q", name)
	return meta, nil
}

// SetCurrentCollection selects the target for single-collection
// operations. The collection must already exist.
func (s *Store) SetCurrentCollection(name string) error {
	exists, err := s.index.HasCollection(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}

	s.mu.Lock()
	s.current = name
	s.mu.Unlock()
	return nil
}

// CurrentCollection returns the currently selected collection name.
func (s *Store) CurrentCollection() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// AddDocuments chunks, embeds and indexes documents into the current
// collection, returning the number of chunks committed. Batches are
// committed independently: a mid-ingestion embedding failure keeps the
// batches already written and reports the committed count alongside
// the error.
func (s *Store) AddDocuments(ctx context.Context, documents []domain.Document) (int, error) {
	var chunks []domain.Chunk
	for _, doc := range documents {
		chunks = append(chunks, s.splitter.Split(doc)...)
	}
	// Nothing to ingest: a no-op, with no collection created as a
	// side effect.
	if len(chunks) == 0 {
		return 0, nil
	}

	collection := s.CurrentCollection()
	if _, err := s.GetOrCreateCollection(ctx, collection); err != nil {
		return 0, err
	}

	logger.Debug("Ingesting %d documents (%d chunks) into %q", len(documents), len(chunks), collection)

	committed := 0
	var ingestErr error
	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			ingestErr = fmt.Errorf("%w: batch %d: %v", domain.ErrEmbedding, start/s.batchSize, err)
			break
		}
		if len(vectors) != len(batch) {
			ingestErr = fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbedding, len(vectors), len(batch))
			break
		}

		entries := make([]driven.IndexEntry, len(batch))
		for i, chunk := range batch {
			entries[i] = driven.IndexEntry{
				ID:        chunk.ID,
				Content:   chunk.Content,
				Metadata:  chunk.Metadata,
				Embedding: vectors[i],
			}
		}
		if err := s.index.Upsert(ctx, collection, entries); err != nil {
			ingestErr = fmt.Errorf("indexing batch: %w", err)
			break
		}
		committed += len(batch)
	}

	if committed > 0 {
		meta, err := s.index.LoadMetadata(ctx, collection)
		if err == nil {
			meta.RecordIngestion(len(documents), committed, s.now())
			if err := s.index.SaveMetadata(ctx, meta); err != nil && ingestErr == nil {
				ingestErr = err
			}
		} else if ingestErr == nil {
			ingestErr = err
		}
	}

	return committed, ingestErr
}

// Search embeds the query once and runs similarity search over the
// current collection, or over every collection when opts.AllCollections
// is set. Results are ranked best first and capped at opts.Limit.
// Options are used as given; defaults are the caller's concern.
func (s *Store) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", domain.ErrEmbedding, err)
	}

	collections := []string{s.CurrentCollection()}
	if opts.AllCollections {
		collections, err = s.index.ListCollections()
		if err != nil {
			return nil, err
		}
	}

	var results []domain.SearchResult
	for _, collection := range collections {
		hits, err := s.index.Search(ctx, collection, vector, opts.Limit, opts.ScoreThreshold)
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			results = append(results, domain.SearchResult{
				Content:    hit.Content,
				Source:     hit.Metadata.Source,
				Score:      hit.Score,
				Collection: collection,
				Metadata:   hit.Metadata,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// ListCollections returns a snapshot of all collections' metadata,
// sorted by name.
func (s *Store) ListCollections(ctx context.Context) ([]domain.CollectionMetadata, error) {
	names, err := s.index.ListCollections()
	if err != nil {
		return nil, err
	}

	metas := make([]domain.CollectionMetadata, 0, len(names))
	for _, name := range names {
		meta, err := s.index.LoadMetadata(ctx, name)
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

// CleanCollection deletes the named collection's index and metadata.
// Deleting a missing collection is a no-op; the current selection is
// kept and will be recreated empty on next ingestion.
func (s *Store) CleanCollection(ctx context.Context, name string) error {
	if err := s.index.DeleteCollection(ctx, name); err != nil {
		return err
	}
	logger.Debug("Deleted collection %q", name)
	return nil
}
