// Package chunker splits document content into overlapping windows of
// a fixed target size, preferring paragraph and sentence boundaries
// over hard character cuts.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/forage-dev/forage/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// Splitter produces chunks from documents. Every chunk is an exact
// substring of the parent content, so concatenating chunks with the
// overlap trimmed reconstructs the parent text losslessly.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Overlap must leave room to advance.
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}
	return s
}

// ChunkSize returns the configured target chunk size.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// Split cuts a document's content into chunks. Each chunk inherits the
// parent metadata with its ChunkIndex set. Empty content produces no
// chunks.
func (s *Splitter) Split(doc domain.Document) []domain.Chunk {
	content := doc.Content
	if content == "" {
		return nil
	}

	estimated := len(content)/(s.chunkSize-s.overlap) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	for start < len(content) {
		end := s.cutPoint(content, start)

		meta := doc.Metadata.Clone()
		meta.ChunkIndex = len(chunks)

		chunks = append(chunks, domain.Chunk{
			ID:       uuid.New().String(),
			Content:  content[start:end],
			Metadata: meta,
		})

		if end == len(content) {
			break
		}

		next := alignRune(content, end-s.overlap)
		if next <= start {
			// Degenerate content where the boundary cut plus
			// overlap would not advance; fall back to a hard step.
			next = end
		}
		start = next
	}

	return chunks
}

// cutPoint picks where the chunk starting at start should end:
// at the end of the content when it fits, otherwise at the last
// paragraph break in the window, then the last sentence break, then a
// hard cut at the size limit. Boundaries in the first half of the
// window are ignored so chunks do not collapse to fragments.
func (s *Splitter) cutPoint(content string, start int) int {
	if start+s.chunkSize >= len(content) {
		return len(content)
	}

	hard := start + s.chunkSize
	window := content[start:hard]
	half := s.chunkSize / 2

	if idx := strings.LastIndex(window, "\n\n"); idx >= half {
		return start + idx + len("\n\n")
	}
	if idx := strings.LastIndex(window, ". "); idx >= half {
		return start + idx + len(". ")
	}
	if idx := strings.LastIndex(window, "\n"); idx >= half {
		return start + idx + len("\n")
	}
	return alignRune(content, hard)
}

// alignRune moves pos back to the nearest rune start so cuts never
// land inside a multi-byte character.
func alignRune(content string, pos int) int {
	for pos > 0 && pos < len(content) && !utf8.RuneStart(content[pos]) {
		pos--
	}
	return pos
}
