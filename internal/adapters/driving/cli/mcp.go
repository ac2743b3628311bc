package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forage-dev/forage/internal/adapters/driven/websearch"
	"github.com/forage-dev/forage/internal/adapters/driving/mcp"
	"github.com/forage-dev/forage/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC. Use
--port to start an HTTP server instead, which enables testing with
the MCP Inspector web UI and remote access.

Examples:
  # Stdio mode (default, for Claude Desktop)
  forage mcp serve

  # HTTP mode
  forage mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "forage": {
        "command": "/path/to/forage",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd.Context()); err != nil {
		return err
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	// The web search provider is optional at the MCP surface; serve
	// the rest of the tools even if it cannot be built.
	if webSearchSvc == nil {
		svc, err := websearch.New(cfg.WebSearch)
		if err != nil {
			logger.Warn("Web search unavailable: %v", err)
		} else {
			webSearchSvc = svc
		}
	}

	ports := &mcp.Ports{
		Search:    searchService,
		Store:     storeService,
		Crawl:     crawlService,
		WebSearch: webSearchSvc,
	}

	server, err := mcp.NewServer(ports, version)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
