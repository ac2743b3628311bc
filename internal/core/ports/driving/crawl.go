package driving

import (
	"context"

	"github.com/forage-dev/forage/internal/core/domain"
)

// CrawlService fetches and cleans web pages recursively.
type CrawlService interface {
	// Crawl visits url and same-domain pages reachable within
	// maxDepth link hops, returning one Document per successfully
	// cleaned page. Per-URL failures are logged and skipped; the
	// crawl itself only fails on invalid input.
	Crawl(ctx context.Context, url string, maxDepth int) ([]domain.Document, error)
}
