package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forage-dev/forage/internal/core/domain"
)

func TestQueryCmd_PrintsResults(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()

	stubs.search.results = []domain.SearchResult{
		{
			Content:    "pip install forage",
			Source:     "https://example.com/install",
			Score:      0.91,
			Collection: "docs",
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "how to install"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "how to install", stubs.search.gotQuery)
	out := buf.String()
	assert.Contains(t, out, "https://example.com/install")
	assert.Contains(t, out, "0.91")
	assert.Contains(t, out, "pip install forage")
}

func TestQueryCmd_NoResults(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "anything"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No results found.")
}

func TestQueryCmd_PassesOptions(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "q", "-n", "3", "-t", "0.5", "-a"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 3, stubs.search.gotOpts.Limit)
	assert.InDelta(t, 0.5, stubs.search.gotOpts.ScoreThreshold, 1e-9)
	assert.True(t, stubs.search.gotOpts.AllCollections)
}

func TestQueryCmd_JSONOutput(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()

	stubs.search.results = []domain.SearchResult{
		{Content: "text", Source: "https://example.com", Score: 0.8, Collection: "docs"},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "q", "--json"})

	err := rootCmd.Execute()
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "https://example.com", decoded[0]["source"])
}

func TestQueryCmd_JSONEmptyIsArray(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "q", "--json"})

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestQueryCmd_TruncatesContent(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()

	stubs.search.results = []domain.SearchResult{
		{Content: strings.Repeat("long content ", 50), Source: "https://example.com", Score: 0.8},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "q", "--truncate", "20"})

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "long content long con...")
}
