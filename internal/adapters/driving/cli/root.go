// Package cli implements the forage command line interface.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forage-dev/forage/internal/adapters/driven/browser"
	"github.com/forage-dev/forage/internal/adapters/driven/embedding"
	memoryindex "github.com/forage-dev/forage/internal/adapters/driven/index/memory"
	sqliteindex "github.com/forage-dev/forage/internal/adapters/driven/index/sqlite"
	"github.com/forage-dev/forage/internal/config"
	"github.com/forage-dev/forage/internal/connectors/filesystem"
	"github.com/forage-dev/forage/internal/core/ports/driven"
	"github.com/forage-dev/forage/internal/core/ports/driving"
	"github.com/forage-dev/forage/internal/core/services"
	"github.com/forage-dev/forage/internal/crawler"
	"github.com/forage-dev/forage/internal/logger"
	"github.com/forage-dev/forage/internal/normalisers"
	htmlnorm "github.com/forage-dev/forage/internal/normalisers/html"
	"github.com/forage-dev/forage/internal/normalisers/markdown"
	"github.com/forage-dev/forage/internal/normalisers/pdf"
	"github.com/forage-dev/forage/internal/normalisers/plaintext"
	"github.com/forage-dev/forage/internal/postprocessors/chunker"
	"github.com/forage-dev/forage/internal/vectorstore"
)

// version is set from main at build time.
var version = "dev"

// Persistent flags.
var (
	cfgFile    string
	verbose    bool
	collection string
)

// Services wired by ensureServices (or injected by tests).
var (
	cfg           config.Config
	embeddingSvc  driven.EmbeddingService
	vectorIndex   driven.VectorIndex
	pageLoader    driven.PageLoader
	storeService  driving.StoreService
	searchService driving.SearchService
	crawlService  driving.CrawlService
	fileConnector *filesystem.Connector
	webSearchSvc  driven.WebSearchProvider
)

var rootCmd = &cobra.Command{
	Use:   "forage",
	Short: "Crawl, ingest and search content for retrieval",
	Long: `Forage builds local searchable knowledge from web pages and files.
It crawls documentation sites, cleans pages down to their content,
chunks and embeds the text, and answers similarity queries over one
or more collections.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.forage/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&collection, "collection", "c", "", "target collection")
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command, cancelling the command context on
// SIGINT/SIGTERM so long-running commands (fetch, ingest --watch,
// mcp serve) shut down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// ensureServices wires the full service graph from configuration.
// Tests inject stubs into the package variables instead.
func ensureServices(ctx context.Context) error {
	if storeService != nil {
		return applyCollectionFlag(ctx)
	}

	path := cfgFile
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return err
		}
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	embeddingSvc, err = embedding.New(cfg.Embedding)
	if err != nil {
		return err
	}
	logger.Debug("Embedding: %s (%d dims)", embeddingSvc.ModelName(), embeddingSvc.Dimensions())

	if cfg.Store.DataDir != "" {
		vectorIndex, err = sqliteindex.New(cfg.Store.DataDir)
		if err != nil {
			return err
		}
		logger.Debug("Vector store: %s", cfg.Store.DataDir)
	} else {
		vectorIndex = memoryindex.New()
		logger.Debug("Vector store: in-memory")
	}

	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Content.ChunkSize),
		chunker.WithOverlap(cfg.Content.ChunkOverlap),
	)
	store := vectorstore.New(embeddingSvc, vectorIndex,
		vectorstore.WithBatchSize(cfg.Store.BatchSize),
		vectorstore.WithSplitter(splitter),
	)
	storeService = store

	searchService = services.NewSearcher(store, services.SearchDefaults{
		Limit:          cfg.Search.DefaultLimit,
		ScoreThreshold: cfg.Search.DefaultScoreThreshold,
	})

	cleaner := htmlnorm.New(htmlnorm.WithNoisePatterns(cfg.Content.NoisePatterns))
	pageLoader = browser.New(browser.Config{
		Timeout:           cfg.Crawler.FetchTimeout,
		RequestsPerSecond: cfg.Crawler.RequestsPerSecond,
		UserAgent:         cfg.Crawler.UserAgent,
	})
	crawlService = crawler.New(pageLoader, cleaner,
		crawler.WithMaxLinksPerPage(cfg.Crawler.MaxLinksPerPage),
	)

	registry := normalisers.NewRegistry(plaintext.New(), markdown.New(), pdf.New())
	fileConnector = filesystem.New(storeService, registry)

	if name := cfg.Store.DefaultCollection; name != "" && collection == "" {
		if _, err := storeService.GetOrCreateCollection(ctx, name); err != nil {
			return err
		}
		if err := storeService.SetCurrentCollection(name); err != nil {
			return err
		}
	}

	return applyCollectionFlag(ctx)
}

// applyCollectionFlag selects the collection named by --collection,
// creating it on first use.
func applyCollectionFlag(ctx context.Context) error {
	if collection == "" {
		return nil
	}
	if _, err := storeService.GetOrCreateCollection(ctx, collection); err != nil {
		return err
	}
	return storeService.SetCurrentCollection(collection)
}

// closeServices releases adapter resources.
func closeServices() {
	if pageLoader != nil {
		pageLoader.Close()
	}
	if embeddingSvc != nil {
		embeddingSvc.Close()
	}
	if vectorIndex != nil {
		vectorIndex.Close()
	}
}
