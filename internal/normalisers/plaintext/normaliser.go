// Package plaintext provides the plain text file normaliser.
package plaintext

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ normalisers.FileNormaliser = (*Normaliser)(nil)

// Normaliser handles plain text files.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".text", ".rst"}
}

// Normalise converts a text file into a document.
func (n *Normaliser) Normalise(path string, data []byte) (domain.Document, error) {
	if !utf8.Valid(data) {
		return domain.Document{}, fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrContentExtraction, path)
	}

	return domain.Document{
		Content: strings.TrimSpace(string(data)),
		Metadata: domain.Metadata{
			Source: path,
			Type:   domain.TypeFile,
			Title:  normalisers.TitleFromPath(path),
		},
	}, nil
}
