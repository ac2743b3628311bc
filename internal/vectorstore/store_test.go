package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forage-dev/forage/internal/adapters/driven/index/memory"
	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/postprocessors/chunker"
)

// stubEmbedder produces deterministic vectors: texts sharing a prefix
// embed close together. failAfter > 0 fails the Nth EmbedBatch call.
type stubEmbedder struct {
	mu         sync.Mutex
	batchCalls int
	failAfter  int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return embedText(text), nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	s.batchCalls++
	calls := s.batchCalls
	s.mu.Unlock()

	if s.failAfter > 0 && calls > s.failAfter {
		return nil, errors.New("provider unavailable")
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = embedText(text)
	}
	return vectors, nil
}

func (s *stubEmbedder) Dimensions() int   { return 4 }
func (s *stubEmbedder) ModelName() string { return "stub" }
func (s *stubEmbedder) Close() error      { return nil }

// embedText maps text to a small vector keyed on a few topic words.
func embedText(text string) []float32 {
	lower := strings.ToLower(text)
	v := []float32{0.1, 0.1, 0.1, 0.1}
	if strings.Contains(lower, "install") {
		v[0] = 1
	}
	if strings.Contains(lower, "config") {
		v[1] = 1
	}
	if strings.Contains(lower, "deploy") {
		v[2] = 1
	}
	return v
}

func doc(content, source string) domain.Document {
	return domain.Document{
		Content:  content,
		Metadata: domain.Metadata{Source: source, Type: domain.TypeWebPage},
	}
}

func newTestStore(opts ...Option) (*Store, *stubEmbedder) {
	embedder := &stubEmbedder{}
	return New(embedder, memory.New(), opts...), embedder
}

func TestGetOrCreateCollection_Idempotent(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	meta, err := store.GetOrCreateCollection(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", meta.Name)
	assert.Equal(t, 0, meta.TotalChunks)

	again, err := store.GetOrCreateCollection(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, meta.Name, again.Name)
}

func TestGetOrCreateCollection_EmptyName(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.GetOrCreateCollection(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetCurrentCollection(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	assert.Equal(t, domain.DefaultCollection, store.CurrentCollection())

	err := store.SetCurrentCollection("missing")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)

	_, err = store.GetOrCreateCollection(ctx, "docs")
	require.NoError(t, err)
	require.NoError(t, store.SetCurrentCollection("docs"))
	assert.Equal(t, "docs", store.CurrentCollection())
}

func TestAddDocuments_ChunksAndIndexes(t *testing.T) {
	store, _ := newTestStore(WithSplitter(chunker.New(
		chunker.WithChunkSize(50),
		chunker.WithOverlap(10),
	)))
	ctx := context.Background()

	long := strings.Repeat("install the service and configure it. ", 10)
	count, err := store.AddDocuments(ctx, []domain.Document{doc(long, "https://example.com/guide")})
	require.NoError(t, err)
	assert.Greater(t, count, 1)

	meta, err := store.GetOrCreateCollection(ctx, domain.DefaultCollection)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.DocumentCount)
	assert.Equal(t, count, meta.TotalChunks)

	results, err := store.Search(ctx, "install", domain.SearchOptions{Limit: 3, ScoreThreshold: 0.1})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "https://example.com/guide", results[0].Source)
}

func TestAddDocuments_EmptyInput(t *testing.T) {
	store, _ := newTestStore()

	count, err := store.AddDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Documents that chunk to nothing are a no-op too.
	count, err = store.AddDocuments(context.Background(), []domain.Document{doc("", "https://example.com")})
	require.NoError(t, err)
	assert.Zero(t, count)

	// A no-op ingestion must not create the current collection.
	metas, err := store.ListCollections(context.Background())
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestAddDocuments_BatchFailureKeepsCommitted(t *testing.T) {
	embedder := &stubEmbedder{failAfter: 1}
	store := New(embedder, memory.New(),
		WithBatchSize(2),
		WithSplitter(chunker.New(chunker.WithChunkSize(30), chunker.WithOverlap(5))),
	)
	ctx := context.Background()

	var docs []domain.Document
	for i := 0; i < 4; i++ {
		docs = append(docs, doc(strings.Repeat(fmt.Sprintf("install part %d. ", i), 5), "https://example.com"))
	}

	count, err := store.AddDocuments(ctx, docs)
	require.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Equal(t, 2, count)

	// The first batch stays searchable.
	results, searchErr := store.Search(ctx, "install", domain.SearchOptions{Limit: 10})
	require.NoError(t, searchErr)
	assert.Len(t, results, 2)

	// Metadata reflects the committed chunks.
	meta, metaErr := store.GetOrCreateCollection(ctx, domain.DefaultCollection)
	require.NoError(t, metaErr)
	assert.Equal(t, 2, meta.TotalChunks)
}

func TestAddDocuments_BatchesBySize(t *testing.T) {
	embedder := &stubEmbedder{}
	store := New(embedder, memory.New(),
		WithBatchSize(3),
		WithSplitter(chunker.New(chunker.WithChunkSize(20), chunker.WithOverlap(0))),
	)

	count, err := store.AddDocuments(context.Background(), []domain.Document{
		doc(strings.Repeat("0123456789", 14), "https://example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.Equal(t, 3, embedder.batchCalls)
}

func TestSearch_EmptyQuery(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.Search(context.Background(), "", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_MissingCollection(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.Search(context.Background(), "anything", domain.SearchOptions{Limit: 5})
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestSearch_AllCollections(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	_, err := store.GetOrCreateCollection(ctx, "install-guides")
	require.NoError(t, err)
	require.NoError(t, store.SetCurrentCollection("install-guides"))
	_, err = store.AddDocuments(ctx, []domain.Document{doc("how to install", "https://a.example")})
	require.NoError(t, err)

	_, err = store.GetOrCreateCollection(ctx, "deploy-guides")
	require.NoError(t, err)
	require.NoError(t, store.SetCurrentCollection("deploy-guides"))
	_, err = store.AddDocuments(ctx, []domain.Document{doc("how to deploy", "https://b.example")})
	require.NoError(t, err)

	results, err := store.Search(ctx, "install", domain.SearchOptions{
		Limit:          10,
		AllCollections: true,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Best match first, and each result names its collection.
	assert.Equal(t, "install-guides", results[0].Collection)
	assert.Equal(t, "deploy-guides", results[1].Collection)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_LimitAppliedAcrossCollections(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := store.GetOrCreateCollection(ctx, name)
		require.NoError(t, err)
		require.NoError(t, store.SetCurrentCollection(name))
		_, err = store.AddDocuments(ctx, []domain.Document{doc("install notes for "+name, "https://"+name+".example")})
		require.NoError(t, err)
	}

	results, err := store.Search(ctx, "install", domain.SearchOptions{
		Limit:          2,
		AllCollections: true,
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestCleanCollection(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	_, err := store.GetOrCreateCollection(ctx, "docs")
	require.NoError(t, err)
	require.NoError(t, store.SetCurrentCollection("docs"))
	_, err = store.AddDocuments(ctx, []domain.Document{doc("install guide", "https://example.com")})
	require.NoError(t, err)

	require.NoError(t, store.CleanCollection(ctx, "docs"))

	metas, err := store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, metas)

	// Cleaning again is a no-op.
	require.NoError(t, store.CleanCollection(ctx, "docs"))

	// The collection is recreated empty on next ingestion.
	count, err := store.AddDocuments(ctx, []domain.Document{doc("fresh content", "https://example.com")})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListCollections_Metadata(t *testing.T) {
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	embedder := &stubEmbedder{}
	store := New(embedder, memory.New(), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := store.GetOrCreateCollection(ctx, "beta")
	require.NoError(t, err)
	_, err = store.GetOrCreateCollection(ctx, "alpha")
	require.NoError(t, err)

	metas, err := store.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "alpha", metas[0].Name)
	assert.Equal(t, "beta", metas[1].Name)
	assert.True(t, metas[0].CreatedAt.Equal(now))
}
