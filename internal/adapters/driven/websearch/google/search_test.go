package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forage-dev/forage/internal/core/domain"
)

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(Config{APIKey: "key"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = New(Config{CSEID: "cse"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSearch_ReturnsResults(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		assert.Equal(t, "cse", r.URL.Query().Get("cx"))
		assert.Equal(t, "3", r.URL.Query().Get("num"))

		w.Write([]byte(`{"items": [
			{"title": "Go docs", "link": "https://go.dev/doc", "snippet": "Documentation."},
			{"title": "Go blog", "link": "https://go.dev/blog", "snippet": "The blog."}
		]}`))
	}))
	defer server.Close()

	p, err := New(Config{APIKey: "key", CSEID: "cse", BaseURL: server.URL})
	require.NoError(t, err)

	results, err := p.Search(context.Background(), "golang", 3)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "golang", gotQuery)
	assert.Equal(t, "Go docs", results[0].Title)
	assert.Equal(t, "https://go.dev/doc", results[0].URL)
	assert.Equal(t, "Documentation.", results[0].Snippet)
}

func TestSearch_ClampsLimitToAPIMaximum(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("num"))
		w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	p, err := New(Config{APIKey: "key", CSEID: "cse", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.Search(context.Background(), "golang", 50)
	require.NoError(t, err)
}

func TestSearch_APIErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer server.Close()

	p, err := New(Config{APIKey: "key", CSEID: "cse", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = p.Search(context.Background(), "golang", 3)
	assert.ErrorIs(t, err, domain.ErrWebSearch)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSearch_UnreachableHost(t *testing.T) {
	p, err := New(Config{APIKey: "key", CSEID: "cse", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = p.Search(context.Background(), "golang", 3)
	assert.ErrorIs(t, err, domain.ErrWebSearch)
}
