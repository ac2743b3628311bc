package normalisers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forage-dev/forage/internal/core/domain"
)

type fakeNormaliser struct {
	exts []string
}

func (f *fakeNormaliser) Extensions() []string { return f.exts }

func (f *fakeNormaliser) Normalise(path string, _ []byte) (domain.Document, error) {
	return domain.Document{Metadata: domain.Metadata{Source: path}}, nil
}

func TestRegistry_ForPath(t *testing.T) {
	text := &fakeNormaliser{exts: []string{".txt"}}
	md := &fakeNormaliser{exts: []string{".md", ".markdown"}}
	registry := NewRegistry(text, md)

	n, ok := registry.ForPath("/docs/readme.md")
	require.True(t, ok)
	assert.Same(t, md, n)

	n, ok = registry.ForPath("/docs/NOTES.TXT")
	require.True(t, ok)
	assert.Same(t, text, n)

	_, ok = registry.ForPath("/docs/image.png")
	assert.False(t, ok)
}

func TestRegistry_Extensions(t *testing.T) {
	registry := NewRegistry(
		&fakeNormaliser{exts: []string{".txt"}},
		&fakeNormaliser{exts: []string{".md"}},
	)

	assert.Equal(t, []string{".md", ".txt"}, registry.Extensions())
}

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "getting started", TitleFromPath("/docs/getting_started.md"))
	assert.Equal(t, "user guide", TitleFromPath("user-guide.pdf"))
	assert.Equal(t, "README", TitleFromPath("README"))
}
