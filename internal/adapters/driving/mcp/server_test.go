package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("creates server with required ports", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Search: &mockSearchService{},
			Store:  &mockStoreService{},
		}, "0.1.0")

		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("requires search service", func(t *testing.T) {
		_, err := NewServer(&Ports{Store: &mockStoreService{}}, "0.1.0")
		assert.ErrorIs(t, err, ErrMissingSearchService)
	})

	t.Run("requires store service", func(t *testing.T) {
		_, err := NewServer(&Ports{Search: &mockSearchService{}}, "0.1.0")
		assert.ErrorIs(t, err, ErrMissingStoreService)
	})

	t.Run("crawl port is optional", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Search: &mockSearchService{},
			Store:  &mockStoreService{},
			Crawl:  nil,
		}, "0.1.0")

		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("web search port is optional", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Search:    &mockSearchService{},
			Store:     &mockStoreService{},
			WebSearch: nil,
		}, "0.1.0")

		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}
