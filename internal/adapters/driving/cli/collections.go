package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var cleanForce bool

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all collections",
	Args:  cobra.NoArgs,
	RunE:  runCollectionsList,
}

var collectionsUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Select the current collection",
	Long: `Selects the collection that fetch, ingest and query target by
default, creating it if it does not exist.`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectionsUse,
}

var collectionsCleanCmd = &cobra.Command{
	Use:   "clean [name]",
	Short: "Delete a collection and its index",
	Long: `Deletes the named collection (or the current collection when no
name is given) including all indexed chunks. Asks for confirmation
unless --force is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCollectionsClean,
}

func init() {
	collectionsCleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "delete without confirmation")
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsUseCmd)
	collectionsCmd.AddCommand(collectionsCleanCmd)
	rootCmd.AddCommand(collectionsCmd)
}

func runCollectionsList(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	metas, err := storeService.ListCollections(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing collections: %w", err)
	}
	if len(metas) == 0 {
		cmd.Println("No collections.")
		return nil
	}

	current := storeService.CurrentCollection()
	for _, meta := range metas {
		marker := " "
		if meta.Name == current {
			marker = "*"
		}
		cmd.Printf("%s %s\t%d documents\t%d chunks\n", marker, meta.Name, meta.DocumentCount, meta.TotalChunks)
	}
	return nil
}

func runCollectionsUse(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	name := args[0]
	if _, err := storeService.GetOrCreateCollection(cmd.Context(), name); err != nil {
		return err
	}
	if err := storeService.SetCurrentCollection(name); err != nil {
		return err
	}

	cmd.Printf("Using collection %q.\n", name)
	return nil
}

func runCollectionsClean(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	name := storeService.CurrentCollection()
	if len(args) > 0 {
		name = args[0]
	}

	if !cleanForce {
		confirmed, err := confirmDeletion(cmd, name)
		if err != nil {
			return err
		}
		if !confirmed {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := storeService.CleanCollection(cmd.Context(), name); err != nil {
		return fmt.Errorf("cleaning collection: %w", err)
	}

	cmd.Printf("Deleted collection %q.\n", name)
	return nil
}

// confirmDeletion prompts on the terminal. Without a terminal the
// deletion must be forced explicitly.
func confirmDeletion(cmd *cobra.Command, name string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("no terminal for confirmation, use --force")
	}

	cmd.Printf("Delete collection %q and all its data? [y/N]: ", name)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
