package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orion/internal/core/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List supported search algorithms",
	Args:  cobra.NoArgs,
	RunE:  runAlgorithms,
}

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "List documents in the library",
	Args:    cobra.NoArgs,
	RunE:    runDocuments,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(algorithmsCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return notConfigured("query")
	}
	email, err := resolveUser()
	if err != nil {
		return err
	}

	stats, err := queryService.LibraryStats(cmd.Context(), email)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Printf("Library: %s\n", stats.UserEmail)
	if !stats.Exists {
		cmd.Println("No library exists for this user yet.")
		return nil
	}
	cmd.Printf("  Documents:       %d\n", stats.DocumentCount)
	cmd.Printf("  Chunks:          %d\n", stats.ChunkCount)
	cmd.Printf("  With embeddings: %d\n", stats.ChunksWithEmbeddings)
	cmd.Printf("  Total size:      %d bytes\n", stats.TotalFileSize)
	return nil
}

func runAlgorithms(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return notConfigured("query")
	}

	cmd.Println("Supported algorithms:")
	for _, name := range queryService.SupportedAlgorithms() {
		cmd.Printf("  %-8s %s\n", name, domain.Algorithm(name).Description())
	}
	return nil
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}
	email, err := resolveUser()
	if err != nil {
		return err
	}

	docs, err := ingestService.List(cmd.Context(), email)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Printf("Documents (%d):\n\n", len(docs))
	for _, doc := range docs {
		cmd.Printf("  %s  %s\n", doc.ID, doc.OriginalFilename)
		cmd.Printf("      %s, %d chunks\n", doc.ContentType, doc.ChunkCount)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}
	email, err := resolveUser()
	if err != nil {
		return err
	}

	id, err := domain.ParseDocumentID(args[0])
	if err != nil {
		return err
	}
	if err := ingestService.Delete(cmd.Context(), email, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", id)
	return nil
}
