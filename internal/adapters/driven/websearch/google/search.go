// Package google provides a web search provider using Google's
// Programmable Search Engine (Custom Search JSON API).
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.WebSearchProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"
	DefaultTimeout = 15 * time.Second

	// maxPerRequest is the API's hard cap on the num parameter.
	maxPerRequest = 10
)

// Config holds configuration for the Google search provider.
type Config struct {
	// APIKey is the Google API key (required).
	APIKey string

	// CSEID is the Programmable Search Engine ID (required).
	CSEID string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// Provider performs web searches against the Custom Search API.
type Provider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	cseID   string
}

// searchResponse is the Custom Search API response format, reduced to
// the fields Forage uses.
type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// New creates a Google search provider.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" || cfg.CSEID == "" {
		return nil, fmt.Errorf("%w: google search requires GOOGLE_API_KEY and GOOGLE_CSE_ID", domain.ErrConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Provider{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		cseID:   cfg.CSEID,
	}, nil
}

// Search returns up to limit results for query, best first.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.WebResult, error) {
	if limit <= 0 || limit > maxPerRequest {
		limit = maxPerRequest
	}

	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("cx", p.cseID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWebSearch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrWebSearch, err)
	}
	if searchResp.Error != nil {
		return nil, fmt.Errorf("%w: google: %s", domain.ErrWebSearch, searchResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: google (status %d)", domain.ErrWebSearch, resp.StatusCode)
	}

	results := make([]domain.WebResult, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		results = append(results, domain.WebResult{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

// Name identifies the provider.
func (p *Provider) Name() string {
	return "google"
}
