package driven

import "context"

// PageLoader fetches fully-rendered HTML for a URL.
// Implementations must wait for the page to reach a loaded state before
// returning, and wrap fetch/render failures in domain.ErrPageLoad so the
// crawler can recover per-URL.
type PageLoader interface {
	// FetchRenderedHTML returns the page source for url.
	FetchRenderedHTML(ctx context.Context, url string) (string, error)

	// Close releases browser/client resources.
	Close() error
}
