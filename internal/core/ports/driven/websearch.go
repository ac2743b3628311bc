package driven

import (
	"context"

	"github.com/forage-dev/forage/internal/core/domain"
)

// WebSearchProvider queries an external web search engine. Results are
// discovery aids (candidate URLs to fetch), not stored content, so
// providers carry no persistence concerns.
type WebSearchProvider interface {
	// Search returns up to limit results for query, best first.
	Search(ctx context.Context, query string, limit int) ([]domain.WebResult, error)

	// Name identifies the provider ("google", "duckduckgo").
	Name() string
}
