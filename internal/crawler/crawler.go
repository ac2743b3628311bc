// Package crawler implements the recursive same-domain web crawler:
// depth-bounded link discovery with cycle avoidance, one cleaned
// Document per successfully fetched page.
package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/core/ports/driven"
	"github.com/forage-dev/forage/internal/core/ports/driving"
	"github.com/forage-dev/forage/internal/logger"
	htmlnorm "github.com/forage-dev/forage/internal/normalisers/html"
)

// Ensure Crawler implements the interface.
var _ driving.CrawlService = (*Crawler)(nil)

// Crawler fetches pages through a PageLoader and cleans them with the
// HTML cleaner. One Crawler may run many crawls; the visited set is
// per-crawl session state.
type Crawler struct {
	loader          driven.PageLoader
	cleaner         *htmlnorm.Cleaner
	maxLinksPerPage int
}

// Option configures the crawler.
type Option func(*Crawler)

// WithMaxLinksPerPage caps how many extracted links are followed from
// each page. Zero means unlimited. The cap affects crawl completeness,
// not termination: the visited set and depth bound already guarantee
// the crawl ends.
func WithMaxLinksPerPage(n int) Option {
	return func(c *Crawler) {
		if n >= 0 {
			c.maxLinksPerPage = n
		}
	}
}

// New creates a crawler using the given page loader and cleaner.
func New(loader driven.PageLoader, cleaner *htmlnorm.Cleaner, opts ...Option) *Crawler {
	c := &Crawler{
		loader:  loader,
		cleaner: cleaner,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// session holds one crawl invocation's traversal state. The visited
// check is an atomic check-and-set so a worker-pool variant preserves
// the no-revisit invariant without further changes.
type session struct {
	mu      sync.Mutex
	visited map[string]bool
}

func newSession() *session {
	return &session{visited: make(map[string]bool)}
}

// visit marks url visited and reports whether it was new.
func (s *session) visit(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visited[url] {
		return false
	}
	s.visited[url] = true
	return true
}

// Crawl visits url and all same-domain pages reachable within maxDepth
// link hops. Each successfully fetched and cleaned page yields one
// Document with its source URL and depth. Per-URL failures are logged
// and that branch contributes nothing; siblings continue.
//
// On context cancellation the documents accumulated so far are
// returned together with the context error; they remain valid.
func (c *Crawler) Crawl(ctx context.Context, rawURL string, maxDepth int) ([]domain.Document, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: not a crawlable URL: %q", domain.ErrInvalidInput, rawURL)
	}
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: max depth must be >= 0", domain.ErrInvalidInput)
	}

	logger.Section("Crawl")
	logger.Info("Starting crawl from %s with max depth %d", rawURL, maxDepth)

	docs := c.crawlRecursive(ctx, newSession(), normalizeURL(rawURL), 0, maxDepth)

	logger.Info("Crawl finished: %d documents", len(docs))
	return docs, ctx.Err()
}

func (c *Crawler) crawlRecursive(ctx context.Context, s *session, url string, depth, maxDepth int) []domain.Document {
	if depth > maxDepth {
		return nil
	}
	if !s.visit(url) {
		logger.Debug("Already visited %s", url)
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	logger.Debug("Crawling %s at depth %d/%d", url, depth, maxDepth)

	raw, err := c.loader.FetchRenderedHTML(ctx, url)
	if err != nil {
		// Per-URL failure: abandon this branch, siblings continue.
		logger.Warn("Fetching %s: %v", url, err)
		return nil
	}

	// Links come from the raw HTML: cleaning strips the navigation
	// elements most of them live in.
	var links []string
	if depth < maxDepth {
		links = extractLinks(raw, url)
		if c.maxLinksPerPage > 0 && len(links) > c.maxLinksPerPage {
			logger.Debug("Capping %d links to %d on %s", len(links), c.maxLinksPerPage, url)
			links = links[:c.maxLinksPerPage]
		}
	}

	var docs []domain.Document

	cleaned := c.cleaner.Clean(raw)
	if strings.TrimSpace(cleaned) != "" {
		docs = append(docs, domain.Document{
			Content: cleaned,
			Metadata: domain.Metadata{
				Source: url,
				Depth:  depth,
				Type:   domain.TypeWebPage,
				Title:  htmlnorm.Title(raw),
			},
		})
		logger.Debug("Added document from %s (%d chars)", url, len(cleaned))
	} else {
		logger.Debug("No usable content on %s", url)
	}

	for _, link := range links {
		docs = append(docs, c.crawlRecursive(ctx, s, link, depth+1, maxDepth)...)
	}

	return docs
}
