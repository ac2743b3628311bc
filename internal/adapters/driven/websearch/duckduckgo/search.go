// Package duckduckgo provides a web search provider using the
// DuckDuckGo HTML endpoint. It needs no credentials, which makes it
// the fallback when Google Search is not configured.
package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.WebSearchProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://html.duckduckgo.com/html/"
	DefaultTimeout = 15 * time.Second
)

// Config holds configuration for the DuckDuckGo search provider.
type Config struct {
	// BaseURL overrides the HTML endpoint.
	BaseURL string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// Provider performs web searches by scraping the DuckDuckGo HTML
// results page. The markup is stable enough in practice: result links
// carry the result__a class, snippets the result__snippet class.
type Provider struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// New creates a DuckDuckGo search provider.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "forage/0.1"
	}

	return &Provider{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
	}
}

// Search returns up to limit results for query, best first.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.WebResult, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWebSearch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: duckduckgo (status %d)", domain.ErrWebSearch, resp.StatusCode)
	}

	root, err := xhtml.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse results page: %v", domain.ErrWebSearch, err)
	}

	results := parseResults(root)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Name identifies the provider.
func (p *Provider) Name() string {
	return "duckduckgo"
}

// parseResults walks the results page. A result__a anchor opens a new
// result; the next result__snippet node fills in its snippet.
func parseResults(root *xhtml.Node) []domain.WebResult {
	var results []domain.WebResult

	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			switch {
			case n.DataAtom == atom.A && hasClass(n, "result__a"):
				results = append(results, domain.WebResult{
					Title: nodeText(n),
					URL:   resolveRedirect(attr(n, "href")),
				})
			case hasClass(n, "result__snippet"):
				if len(results) > 0 && results[len(results)-1].Snippet == "" {
					results[len(results)-1].Snippet = nodeText(n)
				}
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return results
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=<url> redirect links.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *xhtml.Node, class string) bool {
	for _, token := range strings.Fields(attr(n, "class")) {
		if token == class {
			return true
		}
	}
	return false
}

func attr(n *xhtml.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *xhtml.Node) string {
	var sb strings.Builder
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
