package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forage-dev/forage/internal/adapters/driven/websearch"
	"github.com/forage-dev/forage/internal/config"
)

var (
	webLimit    int
	webProvider string
	webJSON     bool
)

var webSearchCmd = &cobra.Command{
	Use:   "web-search [query]",
	Short: "Search the web for pages to crawl",
	Long: `Searches the web and prints result URLs with titles and snippets,
as candidates for a follow-up fetch. DuckDuckGo needs no setup;
Google requires GOOGLE_API_KEY and GOOGLE_CSE_ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runWebSearch,
}

func init() {
	webSearchCmd.Flags().IntVarP(&webLimit, "limit", "n", 0, "number of results (default from config)")
	webSearchCmd.Flags().StringVar(&webProvider, "provider", "", "search engine: duckduckgo or google (default from config)")
	webSearchCmd.Flags().BoolVar(&webJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(webSearchCmd)
}

// ensureWebSearch wires the web search provider. Unlike the store
// pipeline it needs no embedding backend, so a missing OPENAI_API_KEY
// must not block it.
func ensureWebSearch() error {
	if webSearchSvc != nil {
		return nil
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
	if webProvider != "" {
		cfg.WebSearch.Provider = webProvider
	}

	webSearchSvc, err = websearch.New(cfg.WebSearch)
	return err
}

func runWebSearch(cmd *cobra.Command, args []string) error {
	if err := ensureWebSearch(); err != nil {
		return err
	}

	limit := webLimit
	if limit <= 0 {
		limit = cfg.WebSearch.DefaultLimit
	}

	results, err := webSearchSvc.Search(cmd.Context(), args[0], limit)
	if err != nil {
		return fmt.Errorf("web search failed: %w", err)
	}

	if webJSON {
		if results == nil {
			cmd.Println("[]")
			return nil
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Web results via %s:\n", webSearchSvc.Name())
	for i, result := range results {
		cmd.Printf("\n[%d] %s\n    %s\n", i+1, result.Title, result.URL)
		if result.Snippet != "" {
			cmd.Printf("    %s\n", result.Snippet)
		}
	}
	return nil
}
