// Package websearch provides the factory that builds the configured
// web search provider.
package websearch

import (
	"fmt"

	"github.com/forage-dev/forage/internal/adapters/driven/websearch/duckduckgo"
	"github.com/forage-dev/forage/internal/adapters/driven/websearch/google"
	"github.com/forage-dev/forage/internal/config"
	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/core/ports/driven"
)

// Provider names accepted in the configuration.
const (
	ProviderDuckDuckGo = "duckduckgo"
	ProviderGoogle     = "google"
)

// New creates the web search provider selected by cfg.Provider.
// Selecting google without credentials is a configuration error; the
// credential-free choice is duckduckgo.
func New(cfg config.WebSearch) (driven.WebSearchProvider, error) {
	switch cfg.Provider {
	case ProviderDuckDuckGo, "":
		return duckduckgo.New(duckduckgo.Config{}), nil

	case ProviderGoogle:
		return google.New(google.Config{
			APIKey: cfg.GoogleAPIKey,
			CSEID:  cfg.GoogleCSEID,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported web search provider %q", domain.ErrConfiguration, cfg.Provider)
	}
}
