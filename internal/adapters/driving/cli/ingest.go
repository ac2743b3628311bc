package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest local files",
	Long: `Ingests a local file or directory into the current collection.
Directories are walked recursively; markdown, plain text and PDF
files are supported. With --watch the command keeps running and
re-ingests files in the directory as they change.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "watch the directory and re-ingest changed files")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		if ingestWatch {
			return errors.New("--watch requires a directory")
		}

		chunks, err := fileConnector.IngestFile(cmd.Context(), path)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		cmd.Printf("Indexed %d chunks from %s.\n", chunks, path)
		return nil
	}

	if ingestWatch {
		cmd.Printf("Ingesting %s and watching for changes (Ctrl-C to stop)...\n", path)
		err := fileConnector.Watch(cmd.Context(), path)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	files, chunks, err := fileConnector.IngestDirectory(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	cmd.Printf("Indexed %d chunks from %d files in %s.\n", chunks, files, path)
	return nil
}
