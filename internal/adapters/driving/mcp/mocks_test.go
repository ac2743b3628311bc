package mcp

import (
	"context"

	"github.com/forage-dev/forage/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	gotOpts domain.SearchOptions
	results []domain.SearchResult
	err     error
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.gotOpts = opts
	return m.results, m.err
}

// mockStoreService is a mock implementation of driving.StoreService.
type mockStoreService struct {
	current    string
	metas      []domain.CollectionMetadata
	addedDocs  []domain.Document
	chunkCount int
	err        error
}

func (m *mockStoreService) GetOrCreateCollection(_ context.Context, name string) (domain.CollectionMetadata, error) {
	return domain.CollectionMetadata{Name: name}, m.err
}

func (m *mockStoreService) SetCurrentCollection(name string) error {
	m.current = name
	return m.err
}

func (m *mockStoreService) CurrentCollection() string {
	if m.current == "" {
		return domain.DefaultCollection
	}
	return m.current
}

func (m *mockStoreService) AddDocuments(_ context.Context, docs []domain.Document) (int, error) {
	m.addedDocs = append(m.addedDocs, docs...)
	return m.chunkCount, m.err
}

func (m *mockStoreService) ListCollections(context.Context) ([]domain.CollectionMetadata, error) {
	return m.metas, m.err
}

func (m *mockStoreService) CleanCollection(context.Context, string) error {
	return m.err
}

// mockWebSearchProvider is a mock implementation of
// driven.WebSearchProvider.
type mockWebSearchProvider struct {
	gotQuery string
	gotLimit int
	results  []domain.WebResult
	err      error
}

func (m *mockWebSearchProvider) Search(_ context.Context, query string, limit int) ([]domain.WebResult, error) {
	m.gotQuery = query
	m.gotLimit = limit
	return m.results, m.err
}

func (m *mockWebSearchProvider) Name() string { return "mock" }

// mockCrawlService is a mock implementation of driving.CrawlService.
type mockCrawlService struct {
	gotURL   string
	gotDepth int
	docs     []domain.Document
	err      error
}

func (m *mockCrawlService) Crawl(_ context.Context, url string, maxDepth int) ([]domain.Document, error) {
	m.gotURL = url
	m.gotDepth = maxDepth
	return m.docs, m.err
}
