package domain

import "errors"

// Domain errors separate the two failure channels the pipeline uses:
// per-URL crawl failures (recoverable, logged, branch abandoned) and
// store/embedding failures (propagate to the operation boundary).
var (
	// ErrPageLoad indicates a page fetch/render failed (network,
	// timeout, navigation). Non-fatal to the overall crawl.
	ErrPageLoad = errors.New("page load failed")

	// ErrContentExtraction indicates cleaning/parsing produced
	// unusable output. Same recovery policy as ErrPageLoad.
	ErrContentExtraction = errors.New("content extraction failed")

	// ErrEmbedding indicates the embedding backend call failed.
	// Fatal to the in-progress ingestion batch; already-committed
	// batches are preserved.
	ErrEmbedding = errors.New("embedding failed")

	// ErrCollectionNotFound indicates an operation referenced a
	// collection that was never created.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrWebSearch indicates a web search engine call failed.
	ErrWebSearch = errors.New("web search failed")

	// ErrConfiguration indicates a required credential or setting is
	// missing (e.g. no embedding API key).
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
