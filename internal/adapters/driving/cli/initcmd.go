package cli

import (
	"github.com/spf13/cobra"

	"github.com/forage-dev/forage/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Writes a default config.toml to ~/.forage (or the path given with
--config) for editing. Refuses to overwrite an existing file.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return err
		}
	}

	if err := config.WriteDefault(path); err != nil {
		return err
	}

	cmd.Printf("Wrote default config to %s.\n", path)
	cmd.Println("Set OPENAI_API_KEY (environment or ~/.forage/.env) before ingesting.")
	return nil
}
