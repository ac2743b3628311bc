// Package browser provides the page loader adapter: it fetches pages
// over HTTP with a polite per-host request rate and returns the
// response body for cleaning and link extraction.
package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/core/ports/driven"
	"github.com/forage-dev/forage/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.PageLoader = (*Loader)(nil)

// Default configuration values.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultRequestsPerSec  = 2.0
	DefaultUserAgent       = "forage/0.1"
	DefaultMaxResponseSize = 10 << 20 // 10 MiB
)

// Config holds configuration for the page loader.
type Config struct {
	// Timeout bounds a single page fetch (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond throttles fetches (default: 2).
	RequestsPerSecond float64

	// UserAgent is sent with every request.
	UserAgent string

	// MaxResponseSize caps how many body bytes are read (default: 10 MiB).
	MaxResponseSize int64
}

// Loader fetches pages over HTTP. Fetches are throttled by a token
// bucket so crawls stay polite against a single host.
type Loader struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	maxBytes  int64
}

// New creates a page loader.
func New(cfg Config) *Loader {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSec
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxResponseSize <= 0 {
		cfg.MaxResponseSize = DefaultMaxResponseSize
	}

	return &Loader{
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxResponseSize,
	}
}

// FetchRenderedHTML fetches the page at url and returns its HTML.
func (l *Loader) FetchRenderedHTML(ctx context.Context, url string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrPageLoad, url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrPageLoad, url, err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrPageLoad, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: status %d", domain.ErrPageLoad, url, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTMLContentType(ct) {
		return "", fmt.Errorf("%w: %s: unsupported content type %q", domain.ErrPageLoad, url, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %s: reading body: %v", domain.ErrPageLoad, url, err)
	}

	logger.Debug("Fetched %s (%d bytes in %s)", url, len(body), time.Since(start).Round(time.Millisecond))
	return string(body), nil
}

// Close releases resources.
func (l *Loader) Close() error {
	l.client.CloseIdleConnections()
	return nil
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
