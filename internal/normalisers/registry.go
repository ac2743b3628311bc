// Package normalisers groups the content normalisers that turn raw
// page or file bytes into clean document text: the DOM-based HTML
// cleaner used by the crawler, and the plaintext, markdown and PDF
// normalisers used by local file ingestion.
package normalisers

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/forage-dev/forage/internal/core/domain"
)

// FileNormaliser converts raw file bytes into a document.
type FileNormaliser interface {
	// Extensions returns the file extensions (with leading dot,
	// lower-case) this normaliser handles.
	Extensions() []string

	// Normalise converts the file at path with contents data into a
	// document. The returned document's Metadata.Source is the path.
	Normalise(path string, data []byte) (domain.Document, error)
}

// Registry selects a normaliser by file extension.
type Registry struct {
	byExt map[string]FileNormaliser
}

// NewRegistry builds a registry from the given normalisers. Later
// normalisers win on extension conflicts.
func NewRegistry(normalisers ...FileNormaliser) *Registry {
	r := &Registry{byExt: make(map[string]FileNormaliser)}
	for _, n := range normalisers {
		for _, ext := range n.Extensions() {
			r.byExt[strings.ToLower(ext)] = n
		}
	}
	return r
}

// ForPath returns the normaliser for the file's extension.
func (r *Registry) ForPath(path string) (FileNormaliser, bool) {
	n, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return n, ok
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// TitleFromPath derives a human-readable title from a file name.
func TitleFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
