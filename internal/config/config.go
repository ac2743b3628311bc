// Package config loads the Forage configuration: a TOML file in the
// user's config directory, a .env file for credentials, and FORAGE_*
// environment overrides. The resulting Config value is passed
// explicitly into constructors; there is no package-level singleton.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/forage-dev/forage/internal/core/domain"
	"github.com/forage-dev/forage/internal/logger"
)

// Default configuration values, matching the shipped config.toml.
const (
	DefaultMaxDepth        = 2
	DefaultChunkSize       = 1000
	DefaultChunkOverlap    = 200
	DefaultBatchSize       = 32
	DefaultSearchLimit     = 8
	DefaultScoreThreshold  = 0.2
	DefaultEmbeddingModel  = "text-embedding-3-small"
	DefaultEmbeddingDims   = 1536
	DefaultFetchTimeout    = 30 * time.Second
	DefaultRequestsPerSec  = 2.0
	DefaultMaxLinksPerPage = 0 // unlimited
	DefaultWebSearchLimit  = 5
)

// DefaultNoisePatterns are UI boilerplate fragments removed from
// cleaned page text, matched case-insensitively.
var DefaultNoisePatterns = []string{
	"Theme Auto Light Dark",
	"Previous topic",
	"Next topic",
	"Navigation",
	"Jump to",
	"Skip to content",
}

// Crawler configures the web crawler.
type Crawler struct {
	// MaxDepth is the default link depth bound for fetch.
	MaxDepth int `toml:"max_depth"`

	// MaxLinksPerPage caps how many extracted links are followed per
	// page. Zero means unlimited. This is a safety valve: it bounds
	// fan-out, not correctness (the visited set already guarantees
	// termination), at the cost of crawl completeness.
	MaxLinksPerPage int `toml:"max_links_per_page"`

	// FetchTimeout bounds a single page fetch.
	FetchTimeout time.Duration `toml:"fetch_timeout"`

	// RequestsPerSecond throttles page fetches against one host.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// UserAgent is sent with every page request.
	UserAgent string `toml:"user_agent"`
}

// Content configures cleaning and chunking.
type Content struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the overlap between consecutive chunks in
	// characters.
	ChunkOverlap int `toml:"chunk_overlap"`

	// NoisePatterns are UI boilerplate substrings removed from
	// cleaned text (case-insensitive).
	NoisePatterns []string `toml:"noise_patterns"`
}

// Embedding configures the embedding provider.
type Embedding struct {
	// Provider selects the backend: "openai" or "ollama".
	Provider string `toml:"provider"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// Dimensions is the vector size the model produces.
	Dimensions int `toml:"dimensions"`

	// APIKey is the provider credential. Usually supplied via
	// OPENAI_API_KEY rather than the config file.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the provider endpoint (Ollama host, proxies).
	BaseURL string `toml:"base_url"`
}

// Store configures the vector store.
type Store struct {
	// DataDir is the base directory holding one subdirectory per
	// collection. Empty selects the in-memory backend.
	DataDir string `toml:"data_dir"`

	// BatchSize is the number of chunks embedded and upserted per
	// batch.
	BatchSize int `toml:"batch_size"`

	// DefaultCollection is the collection selected at startup.
	DefaultCollection string `toml:"default_collection"`
}

// Search configures result defaults.
type Search struct {
	// DefaultLimit is the result cap applied when none is given.
	DefaultLimit int `toml:"default_limit"`

	// DefaultScoreThreshold is the minimum relevance score applied
	// when none is given.
	DefaultScoreThreshold float64 `toml:"default_score_threshold"`
}

// WebSearch configures the web search providers.
type WebSearch struct {
	// Provider selects the engine: "duckduckgo" (no credentials) or
	// "google" (Programmable Search Engine, needs credentials).
	Provider string `toml:"provider"`

	// GoogleAPIKey and GoogleCSEID are the Programmable Search Engine
	// credentials. Usually supplied via GOOGLE_API_KEY and
	// GOOGLE_CSE_ID rather than the config file.
	GoogleAPIKey string `toml:"google_api_key"`
	GoogleCSEID  string `toml:"google_cse_id"`

	// DefaultLimit is the result count applied when none is given.
	DefaultLimit int `toml:"default_limit"`
}

// Config is the full Forage configuration.
type Config struct {
	Crawler   Crawler   `toml:"crawler"`
	Content   Content   `toml:"content"`
	Embedding Embedding `toml:"embedding"`
	Store     Store     `toml:"store"`
	Search    Search    `toml:"search"`
	WebSearch WebSearch `toml:"web_search"`
}

// Default returns the built-in configuration rooted at the user's
// home directory.
func Default() Config {
	dataDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".forage", "collections")
	}

	return Config{
		Crawler: Crawler{
			MaxDepth:          DefaultMaxDepth,
			MaxLinksPerPage:   DefaultMaxLinksPerPage,
			FetchTimeout:      DefaultFetchTimeout,
			RequestsPerSecond: DefaultRequestsPerSec,
			UserAgent:         "forage/0.1",
		},
		Content: Content{
			ChunkSize:     DefaultChunkSize,
			ChunkOverlap:  DefaultChunkOverlap,
			NoisePatterns: append([]string(nil), DefaultNoisePatterns...),
		},
		Embedding: Embedding{
			Provider:   "openai",
			Model:      DefaultEmbeddingModel,
			Dimensions: DefaultEmbeddingDims,
		},
		Store: Store{
			DataDir:           dataDir,
			BatchSize:         DefaultBatchSize,
			DefaultCollection: domain.DefaultCollection,
		},
		Search: Search{
			DefaultLimit:          DefaultSearchLimit,
			DefaultScoreThreshold: DefaultScoreThreshold,
		},
		WebSearch: WebSearch{
			Provider:     "duckduckgo",
			DefaultLimit: DefaultWebSearchLimit,
		},
	}
}

// Dir returns the Forage config directory (~/.forage).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".forage"), nil
}

// Path returns the config file path (~/.forage/config.toml).
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load builds the effective configuration: defaults, overlaid with the
// TOML file at path (if it exists), then environment overrides. A .env
// file in the config directory or the working directory is loaded
// first so OPENAI_API_KEY can live there.
func Load(path string) (Config, error) {
	loadDotEnv()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("%w: parsing %s: %v", domain.ErrConfiguration, path, err)
			}
			logger.Debug("Loaded config from %s", path)
		case os.IsNotExist(err):
			logger.Debug("No config file at %s, using defaults", path)
		default:
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.WebSearch.GoogleAPIKey == "" {
		cfg.WebSearch.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.WebSearch.GoogleCSEID == "" {
		cfg.WebSearch.GoogleCSEID = os.Getenv("GOOGLE_CSE_ID")
	}

	return cfg, nil
}

// Validate checks settings the selected operation cannot run without.
func (c Config) Validate() error {
	if c.Embedding.Provider == "openai" && c.Embedding.APIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is not set", domain.ErrConfiguration)
	}
	if c.Content.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", domain.ErrConfiguration)
	}
	if c.Content.ChunkOverlap >= c.Content.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be smaller than chunk_size", domain.ErrConfiguration)
	}
	return nil
}

// WriteDefault writes a commented default config.toml at path,
// refusing to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s already exists", domain.ErrInvalidInput, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}

	// Credentials may end up in this file.
	return os.WriteFile(path, data, 0o600)
}

// loadDotEnv loads .env files without overriding existing variables.
func loadDotEnv() {
	if dir, err := Dir(); err == nil {
		_ = godotenv.Load(filepath.Join(dir, ".env"))
	}
	_ = godotenv.Load()
}

// applyEnvOverrides applies FORAGE_* environment variables on top of
// the file configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FORAGE_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("FORAGE_EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimensions = n
		}
	}
	if v := os.Getenv("FORAGE_DATA_DIR"); v != "" {
		cfg.Store.DataDir = v
	}
	if v := os.Getenv("FORAGE_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.DefaultLimit = n
		}
	}
	if v := os.Getenv("FORAGE_SCORE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.DefaultScoreThreshold = f
		}
	}
	if v := os.Getenv("FORAGE_WEB_PROVIDER"); v != "" {
		cfg.WebSearch.Provider = v
	}
}
