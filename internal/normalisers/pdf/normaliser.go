// Package pdf provides the PDF file normaliser.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ normalisers.FileNormaliser = (*Normaliser)(nil)

// Normaliser extracts text from PDF files.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".pdf"}
}

// Normalise extracts the plain text of a PDF into a document. PDFs
// with no extractable text (scanned documents) produce an empty
// content, which ingestion skips.
func (n *Normaliser) Normalise(path string, data []byte) (domain.Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: parsing %s: %v", domain.ErrContentExtraction, path, err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: extracting text from %s: %v", domain.ErrContentExtraction, path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return domain.Document{}, fmt.Errorf("%w: reading text from %s: %v", domain.ErrContentExtraction, path, err)
	}

	return domain.Document{
		Content: strings.TrimSpace(buf.String()),
		Metadata: domain.Metadata{
			Source: path,
			Type:   domain.TypeFile,
			Title:  normalisers.TitleFromPath(path),
		},
	}, nil
}
