// Package markdown provides the Markdown file normaliser. Markdown is
// kept close to verbatim: headings and paragraph breaks guide the
// chunker, so only decoration that hurts retrieval is stripped.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ normalisers.FileNormaliser = (*Normaliser)(nil)

// Normaliser handles Markdown files.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".md", ".markdown", ".mdown"}
}

var (
	images = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links  = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// Normalise converts a Markdown file into a document. The title comes
// from the first H1 heading, falling back to the file name.
func (n *Normaliser) Normalise(path string, data []byte) (domain.Document, error) {
	if !utf8.Valid(data) {
		return domain.Document{}, fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrContentExtraction, path)
	}

	content := string(data)
	title := firstHeading(content)
	if title == "" {
		title = normalisers.TitleFromPath(path)
	}

	// Images carry no searchable text; links keep their label.
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")

	return domain.Document{
		Content: strings.TrimSpace(content),
		Metadata: domain.Metadata{
			Source: path,
			Type:   domain.TypeFile,
			Title:  title,
		},
	}, nil
}

// firstHeading returns the text of the first H1 heading, if any.
func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}
