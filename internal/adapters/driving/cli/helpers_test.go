package cli

import (
	"context"

	"github.com/forage-dev/forage/internal/config"
	"github.com/forage-dev/forage/internal/connectors/filesystem"
	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/normalisers"
	"github.com/forage-dev/forage/internal/normalisers/markdown"
	"github.com/forage-dev/forage/internal/normalisers/plaintext"
)

// stubSearch is a canned SearchService.
type stubSearch struct {
	gotQuery string
	gotOpts  domain.SearchOptions
	results  []domain.SearchResult
	err      error
}

func (s *stubSearch) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	s.gotQuery = query
	s.gotOpts = opts
	return s.results, s.err
}

// stubStore is a canned StoreService.
type stubStore struct {
	current string
	metas   []domain.CollectionMetadata
	added   []domain.Document
	chunks  int
	cleaned []string
	err     error
}

func (s *stubStore) GetOrCreateCollection(_ context.Context, name string) (domain.CollectionMetadata, error) {
	return domain.CollectionMetadata{Name: name}, s.err
}

func (s *stubStore) SetCurrentCollection(name string) error {
	s.current = name
	return s.err
}

func (s *stubStore) CurrentCollection() string {
	if s.current == "" {
		return domain.DefaultCollection
	}
	return s.current
}

func (s *stubStore) AddDocuments(_ context.Context, docs []domain.Document) (int, error) {
	s.added = append(s.added, docs...)
	if s.err != nil {
		return 0, s.err
	}
	if s.chunks > 0 {
		return s.chunks, nil
	}
	return len(docs), nil
}

func (s *stubStore) ListCollections(context.Context) ([]domain.CollectionMetadata, error) {
	return s.metas, s.err
}

func (s *stubStore) CleanCollection(_ context.Context, name string) error {
	s.cleaned = append(s.cleaned, name)
	return s.err
}

// stubWebSearch is a canned WebSearchProvider.
type stubWebSearch struct {
	gotQuery string
	gotLimit int
	results  []domain.WebResult
	err      error
}

func (s *stubWebSearch) Search(_ context.Context, query string, limit int) ([]domain.WebResult, error) {
	s.gotQuery = query
	s.gotLimit = limit
	return s.results, s.err
}

func (s *stubWebSearch) Name() string { return "stub" }

// stubCrawl is a canned CrawlService.
type stubCrawl struct {
	gotURL   string
	gotDepth int
	docs     []domain.Document
	err      error
}

func (s *stubCrawl) Crawl(_ context.Context, url string, maxDepth int) ([]domain.Document, error) {
	s.gotURL = url
	s.gotDepth = maxDepth
	return s.docs, s.err
}

// testServices holds the stubs injected by setupTestServices.
type testServices struct {
	store  *stubStore
	search *stubSearch
	crawl  *stubCrawl
	web    *stubWebSearch
}

// setupTestServices injects stub services into the package variables
// and returns them with a cleanup function restoring the previous
// state, including flag defaults.
func setupTestServices() (*testServices, func()) {
	stubs := &testServices{
		store:  &stubStore{},
		search: &stubSearch{},
		crawl:  &stubCrawl{},
		web:    &stubWebSearch{},
	}

	prevCfg := cfg
	cfg = config.Default()
	cfg.Embedding.APIKey = "test"

	storeService = stubs.store
	searchService = stubs.search
	crawlService = stubs.crawl
	fileConnector = filesystem.New(stubs.store, normalisers.NewRegistry(plaintext.New(), markdown.New()))
	webSearchSvc = stubs.web

	return stubs, func() {
		cfg = prevCfg
		storeService = nil
		searchService = nil
		crawlService = nil
		fileConnector = nil
		webSearchSvc = nil

		collection = ""
		verbose = false
		cfgFile = ""
		fetchMaxDepth = -1
		queryLimit = 0
		queryThreshold = 0
		queryAll = false
		queryJSON = false
		queryTruncate = 200
		cleanForce = false
		ingestWatch = false
		webLimit = 0
		webProvider = ""
		webJSON = false

		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	}
}
