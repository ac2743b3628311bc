package cli

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/forage-dev/forage/internal/core/domain"
)

var (
	queryLimit     int
	queryThreshold float64
	queryAll       bool
	queryJSON      bool
	queryTruncate  int
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search indexed content",
	Long: `Runs similarity search over the current collection (or every
collection with --all-collections) and prints the results ranked by
relevance score. Results scoring below --score-threshold are
dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "maximum number of results (default from config)")
	queryCmd.Flags().Float64VarP(&queryThreshold, "score-threshold", "t", 0, "minimum relevance score (default from config)")
	queryCmd.Flags().BoolVarP(&queryAll, "all-collections", "a", false, "search every collection")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.Flags().IntVar(&queryTruncate, "truncate", 200, "truncate content to N characters (0 = full content)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	opts := domain.SearchOptions{
		Limit:          queryLimit,
		ScoreThreshold: queryThreshold,
		AllCollections: queryAll,
	}

	results, err := searchService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, results)
	}
	return outputQueryText(cmd, results)
}

func outputQueryJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	if results == nil {
		results = []domain.SearchResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, result := range results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, result.Source, result.Score)
		if result.Collection != "" {
			cmd.Printf("      Collection: %s\n", result.Collection)
		}

		content := result.Content
		if queryTruncate > 0 && len(content) > queryTruncate {
			cut := queryTruncate
			for cut > 0 && !utf8.RuneStart(content[cut]) {
				cut--
			}
			content = content[:cut] + "..."
		}
		if content != "" {
			cmd.Printf("      %s\n", content)
		}
		cmd.Println()
	}
	return nil
}
