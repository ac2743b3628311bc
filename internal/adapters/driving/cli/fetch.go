package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var fetchMaxDepth int

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Crawl a site and index its content",
	Long: `Crawls the given URL and every same-domain page reachable within
--max-depth link hops, cleans each page down to its content, and
indexes the text into the current collection.

Pages on other domains, page fragments and javascript links are
never followed. Each page is visited at most once per crawl.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().IntVarP(&fetchMaxDepth, "max-depth", "d", -1,
		"link depth bound (default from config)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	url := args[0]
	depth := fetchMaxDepth
	if depth < 0 {
		depth = cfg.Crawler.MaxDepth
	}

	cmd.Printf("Crawling %s (max depth %d)...\n", url, depth)

	docs, crawlErr := crawlService.Crawl(cmd.Context(), url, depth)
	if len(docs) == 0 {
		if crawlErr != nil {
			return fmt.Errorf("crawl failed: %w", crawlErr)
		}
		cmd.Println("No content found.")
		return nil
	}

	// Pages gathered before an interruption are still worth keeping.
	// Indexing runs detached from the cancelled crawl context.
	ctx := cmd.Context()
	if crawlErr != nil {
		cmd.Printf("Crawl interrupted after %d pages. Indexing what was gathered...\n", len(docs))
		ctx = context.WithoutCancel(ctx)
	} else {
		cmd.Printf("Crawled %d pages. Indexing into %q...\n", len(docs), storeService.CurrentCollection())
	}

	chunks, err := storeService.AddDocuments(ctx, docs)
	if err != nil {
		if chunks > 0 {
			cmd.Printf("Indexed %d chunks before failing.\n", chunks)
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %d chunks from %d pages.\n", chunks, len(docs))
	if crawlErr != nil {
		return fmt.Errorf("crawl interrupted: %w", crawlErr)
	}
	return nil
}
