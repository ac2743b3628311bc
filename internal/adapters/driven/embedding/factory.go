// Package embedding provides the factory that builds the configured
// embedding service adapter.
package embedding

import (
	"fmt"

	"github.com/forage-dev/forage/internal/adapters/driven/embedding/ollama"
	"github.com/forage-dev/forage/internal/adapters/driven/embedding/openai"
	"github.com/forage-dev/forage/internal/config"
	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/core/ports/driven"
)

// Provider names accepted in the configuration.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// New creates the embedding service selected by cfg.Provider.
func New(cfg config.Embedding) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
		}
		return svc, nil

	case ProviderOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrConfiguration, cfg.Provider)
	}
}
