package domain

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// Limit is the maximum number of results. Zero means the
	// configured default.
	Limit int

	// ScoreThreshold is the minimum relevance score in [0,1].
	// Results scoring below it are dropped.
	ScoreThreshold float64

	// AllCollections searches every registered collection and merges
	// the results by score instead of searching only the current one.
	AllCollections bool
}

// SearchResult is a single scored hit returned to callers.
type SearchResult struct {
	// Content is the matched chunk's text.
	Content string `json:"content"`

	// Source is the origin URL or file path of the matched chunk.
	Source string `json:"source"`

	// Score is the relevance score in [0,1]; higher is more relevant.
	Score float64 `json:"score"`

	// Collection names the collection the hit came from.
	Collection string `json:"collection,omitempty"`

	// Metadata is the matched chunk's full metadata.
	Metadata Metadata `json:"-"`
}

// WebResult is a single hit from a web search engine: a candidate page
// to crawl, not indexed content.
type WebResult struct {
	// Title is the result's page title.
	Title string `json:"title"`

	// URL is the result's page address.
	URL string `json:"url"`

	// Snippet is the engine's short excerpt for the page.
	Snippet string `json:"snippet"`
}
