package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/core/ports/driving"
	"github.com/forage-dev/forage/internal/logger"
)

// Ensure Searcher implements the interface.
var _ driving.SearchService = (*Searcher)(nil)

// SearchDefaults are the values applied to zero-valued search options.
type SearchDefaults struct {
	Limit          int
	ScoreThreshold float64
}

// Searcher is the query-side entry point: it normalises search options
// against the configured defaults and delegates to the store.
type Searcher struct {
	store    driving.SearchService
	defaults SearchDefaults
}

// NewSearcher creates a Searcher over the given store.
func NewSearcher(store driving.SearchService, defaults SearchDefaults) *Searcher {
	return &Searcher{store: store, defaults: defaults}
}

// Search returns score-ranked results for query. A zero limit takes
// the configured default; a zero threshold takes the configured
// default; an explicitly negative threshold disables filtering.
func (s *Searcher) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}

	if opts.Limit <= 0 {
		opts.Limit = s.defaults.Limit
	}
	switch {
	case opts.ScoreThreshold == 0:
		opts.ScoreThreshold = s.defaults.ScoreThreshold
	case opts.ScoreThreshold < 0:
		opts.ScoreThreshold = 0
	}

	logger.Debug("Search: query=%q limit=%d threshold=%.2f all=%t",
		query, opts.Limit, opts.ScoreThreshold, opts.AllCollections)

	results, err := s.store.Search(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	logger.Debug("Search: %d results", len(results))
	return results, nil
}
