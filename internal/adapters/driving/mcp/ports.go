package mcp

import (
	"github.com/forage-dev/forage/internal/core/ports/driven"
	"github.com/forage-dev/forage/internal/core/ports/driving"
)

// Ports aggregates the port interfaces required by the MCP server.
// This provides a single injection point.
type Ports struct {
	// Search answers similarity queries.
	Search driving.SearchService

	// Store manages collections and ingestion.
	Store driving.StoreService

	// Crawl fetches and cleans web content. Optional; without it the
	// crawl tool is not registered.
	Crawl driving.CrawlService

	// WebSearch queries an external web search engine. Optional;
	// without it the web_search tool is not registered.
	WebSearch driven.WebSearchProvider
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Store == nil {
		return ErrMissingStoreService
	}
	return nil
}
