package domain

// Well-known metadata type values.
const (
	// TypeWebPage marks documents produced by the crawler.
	TypeWebPage = "webpage"

	// TypeFile marks documents ingested from the local filesystem.
	TypeFile = "file"
)

// Metadata describes where a document came from.
// The well-known fields cover the keys every pipeline stage relies on;
// anything else goes in Extra.
type Metadata struct {
	// Source is the origin URL or file path. Always set.
	Source string `json:"source"`

	// Depth is the link distance from the crawl root.
	// Only meaningful for crawled pages; 0 for the root page.
	Depth int `json:"depth,omitempty"`

	// Type identifies the ingestion path ("webpage", "file").
	Type string `json:"type,omitempty"`

	// Title is the human-readable title, when one could be extracted.
	Title string `json:"title,omitempty"`

	// ChunkIndex is the ordinal position of a chunk within its parent
	// document. Zero for whole documents.
	ChunkIndex int `json:"chunk_index,omitempty"`

	// Extra holds source-specific key-value pairs that no core
	// invariant depends on.
	Extra map[string]any `json:"extra,omitempty"`
}

// Clone returns a copy of the metadata with its own Extra map.
func (m Metadata) Clone() Metadata {
	out := m
	if m.Extra != nil {
		out.Extra = make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Document is one unit of cleaned content produced by the crawler or a
// file loader. Documents are immutable once produced; the vector store
// consumes them by splitting them into chunks.
type Document struct {
	// Content is the cleaned text/markdown.
	Content string

	// Metadata carries the document's origin. Source is always set;
	// crawled pages also carry Depth.
	Metadata Metadata
}

// Chunk is a bounded-size slice of a Document's content, the unit that
// actually gets embedded and indexed. Chunks inherit the parent's
// metadata plus their ChunkIndex.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Content is the text content of this chunk.
	Content string

	// Metadata is the parent document's metadata with ChunkIndex set.
	Metadata Metadata
}
