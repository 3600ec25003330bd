package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/orion/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default the server speaks JSON-RPC over stdio. Use --http to serve
streamable HTTP instead, for the MCP Inspector or remote clients.

Examples:
  # Stdio mode
  orion mcp

  # HTTP mode
  orion mcp --http :8080

Client configuration:
  {
    "mcpServers": {
      "orion": {
        "command": "/path/to/orion",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "HTTP listen address (empty = stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return notConfigured("query")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Query:  queryService,
		Ingest: ingestService,
	}, mcp.WithVersion(version), mcp.WithSearchDefaults(searchDefaults()))
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		cmd.PrintErrf("MCP server listening on http://%s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}

	return server.Run(cmd.Context())
}
