package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/orion/internal/adapters/driving/api"
	"github.com/custodia-labs/orion/internal/logger"
)

var (
	serveAddr        string
	serveCORSOrigins []string
	serveMaxUpload   int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serves the query, upload and library endpoints over HTTP.

Endpoints:
  GET    /healthz
  POST   /api/v1/query
  GET    /api/v1/algorithms
  GET    /api/v1/libraries/:email/stats
  GET    /api/v1/libraries/:email/documents
  POST   /api/v1/libraries/:email/documents
  DELETE /api/v1/libraries/:email/documents/:id`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "listen address")
	serveCmd.Flags().StringSliceVar(&serveCORSOrigins, "cors-origin", nil, "allowed CORS origins (default all)")
	serveCmd.Flags().Int64Var(&serveMaxUpload, "max-upload", api.DefaultMaxUploadSize, "maximum upload size in bytes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return notConfigured("query")
	}

	server, err := api.NewServer(
		&api.Ports{Query: queryService, Ingest: ingestService},
		api.WithCORSOrigins(serveCORSOrigins...),
		api.WithMaxUploadSize(serveMaxUpload),
		api.WithSearchDefaults(searchDefaults()),
	)
	if err != nil {
		return err
	}

	logger.Info("API server listening on %s", serveAddr)
	cmd.Printf("Orion API listening on %s\n", serveAddr)
	return server.Run(cmd.Context(), serveAddr)
}
