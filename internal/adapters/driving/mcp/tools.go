package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/forage-dev/forage/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query          string  `json:"query" jsonschema:"the search query"`
	Limit          int     `json:"limit,omitempty" jsonschema:"maximum number of results (0 = configured default)"`
	ScoreThreshold float64 `json:"score_threshold,omitempty" jsonschema:"minimum relevance score between 0 and 1 (0 = configured default)"`
	AllCollections bool    `json:"all_collections,omitempty" jsonschema:"search every collection instead of the current one"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Score      float64 `json:"score"`
	Collection string  `json:"collection,omitempty"`
}

// CrawlInput is the input schema for the crawl tool.
type CrawlInput struct {
	URL      string `json:"url" jsonschema:"the page URL to start crawling from"`
	MaxDepth int    `json:"max_depth,omitempty" jsonschema:"how many link hops to follow within the same domain (default 0: just the page)"`
}

// CrawlOutput is the output schema for the crawl tool.
type CrawlOutput struct {
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
	Collection string `json:"collection"`
}

// WebSearchInput is the input schema for the web_search tool.
type WebSearchInput struct {
	Query string `json:"query" jsonschema:"the web search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"number of results to return (default 5)"`
}

// WebSearchOutput is the output schema for the web_search tool.
type WebSearchOutput struct {
	Results []WebResultOutput `json:"results"`
	Count   int               `json:"count"`
}

// WebResultOutput represents a single web search result.
type WebResultOutput struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// CollectionsOutput is the output schema for the list_collections tool.
type CollectionsOutput struct {
	Collections []CollectionOutput `json:"collections"`
	Current     string             `json:"current"`
}

// CollectionOutput represents one collection's metadata.
type CollectionOutput struct {
	Name          string `json:"name"`
	DocumentCount int    `json:"document_count"`
	TotalChunks   int    `json:"total_chunks"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed content by semantic similarity",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_collections",
		Description: "List all collections and their sizes",
	}, s.handleListCollections)

	if s.ports.Crawl != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "crawl",
			Description: "Crawl a web page (and same-domain pages within max_depth links) and index its content into the current collection",
		}, s.handleCrawl)
	}

	if s.ports.WebSearch != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "web_search",
			Description: "Search the web and return result URLs with titles and snippets, as candidates for a follow-up crawl",
		}, s.handleWebSearch)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		Limit:          input.Limit,
		ScoreThreshold: input.ScoreThreshold,
		AllCollections: input.AllCollections,
	}

	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			Content:    results[i].Content,
			Source:     results[i].Source,
			Score:      results[i].Score,
			Collection: results[i].Collection,
		}
	}

	return nil, output, nil
}

// handleCrawl handles the crawl tool invocation.
func (s *Server) handleCrawl(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CrawlInput,
) (*mcp.CallToolResult, CrawlOutput, error) {
	docs, crawlErr := s.ports.Crawl.Crawl(ctx, input.URL, input.MaxDepth)
	if crawlErr != nil && len(docs) == 0 {
		return nil, CrawlOutput{}, crawlErr
	}

	// Pages gathered before an interruption are still indexed, under
	// a context detached from the cancelled crawl.
	ingestCtx := ctx
	if crawlErr != nil {
		ingestCtx = context.WithoutCancel(ctx)
	}

	chunks, err := s.ports.Store.AddDocuments(ingestCtx, docs)
	if err != nil {
		return nil, CrawlOutput{}, err
	}
	if crawlErr != nil {
		return nil, CrawlOutput{}, fmt.Errorf("crawl interrupted after indexing %d chunks from %d pages: %w",
			chunks, len(docs), crawlErr)
	}

	return nil, CrawlOutput{
		Pages:      len(docs),
		Chunks:     chunks,
		Collection: s.ports.Store.CurrentCollection(),
	}, nil
}

// handleWebSearch handles the web_search tool invocation.
func (s *Server) handleWebSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input WebSearchInput,
) (*mcp.CallToolResult, WebSearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	results, err := s.ports.WebSearch.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, WebSearchOutput{}, err
	}

	output := WebSearchOutput{
		Results: make([]WebResultOutput, len(results)),
		Count:   len(results),
	}
	for i, result := range results {
		output.Results[i] = WebResultOutput{
			Title:   result.Title,
			URL:     result.URL,
			Snippet: result.Snippet,
		}
	}

	return nil, output, nil
}

// handleListCollections handles the list_collections tool invocation.
func (s *Server) handleListCollections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, CollectionsOutput, error) {
	metas, err := s.ports.Store.ListCollections(ctx)
	if err != nil {
		return nil, CollectionsOutput{}, err
	}

	output := CollectionsOutput{
		Collections: make([]CollectionOutput, len(metas)),
		Current:     s.ports.Store.CurrentCollection(),
	}
	for i, meta := range metas {
		output.Collections[i] = CollectionOutput{
			Name:          meta.Name,
			DocumentCount: meta.DocumentCount,
			TotalChunks:   meta.TotalChunks,
		}
	}

	return nil, output, nil
}
