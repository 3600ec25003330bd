package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orion/internal/core/domain"
)

// previewLength caps the chunk text shown per result.
const previewLength = 160

var (
	searchAlgorithm string
	searchLimit     int
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search your document library",
	Long: `Runs a natural-language query against the user's library.

Algorithms:
  cosine  - semantic similarity between query and chunk embeddings
  hybrid  - weighted blend of cosine similarity and BM25 keyword scores`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchAlgorithm, "algorithm", "a", "", "search algorithm (default from settings)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return notConfigured("query")
	}
	email, err := resolveUser()
	if err != nil {
		return err
	}

	results, err := queryService.ExecuteQuery(cmd.Context(), email, args[0], algorithmOrDefault(searchAlgorithm), searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

type searchResultJSON struct {
	Rank       int     `json:"rank"`
	Score      float64 `json:"similarity_score"`
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Text       string  `json:"text"`
	TokenCount int     `json:"token_count"`
}

type searchJSONOutput struct {
	Query               string             `json:"query"`
	Algorithm           string             `json:"algorithm"`
	LibraryID           string             `json:"library_id"`
	TotalChunksSearched int                `json:"total_chunks_searched"`
	ExecutionTimeMS     float64            `json:"execution_time_ms"`
	Results             []searchResultJSON `json:"results"`
}

func outputSearchJSON(cmd *cobra.Command, results *domain.SearchResults) error {
	out := searchJSONOutput{
		Query:               results.QueryText,
		Algorithm:           results.Algorithm.String(),
		LibraryID:           results.LibraryID.String(),
		TotalChunksSearched: results.TotalChunksSearched,
		ExecutionTimeMS:     float64(results.ExecutionTime.Microseconds()) / 1000,
		Results:             make([]searchResultJSON, 0, len(results.Results)),
	}
	for _, r := range results.Results {
		out.Results = append(out.Results, searchResultJSON{
			Rank:       r.Rank,
			Score:      r.Score,
			ChunkID:    r.Chunk.ID().String(),
			DocumentID: r.Chunk.DocumentID().String(),
			Filename:   r.Chunk.Filename(),
			Text:       r.Chunk.Text(),
			TokenCount: r.Chunk.TokenCount(),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results *domain.SearchResults) {
	if results.Count() == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("Results (%s, %d of %d chunks, %dms):\n\n",
		results.Algorithm, results.Count(), results.TotalChunksSearched, results.ExecutionTime.Milliseconds())
	for _, r := range results.Results {
		cmd.Printf("  [%d] %s (%.4f)\n", r.Rank, r.Chunk.Filename(), r.Score)
		cmd.Printf("      %s\n\n", preview(r.Chunk.Text(), previewLength))
	}
}

// preview collapses whitespace and truncates to n runes.
func preview(text string, n int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n-3]) + "..."
}
