package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/orion/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	UserEmail string `json:"user_email" jsonschema:"email address identifying the library to search"`
	Query     string `json:"query" jsonschema:"the search query"`
	Algorithm string `json:"algorithm,omitempty" jsonschema:"ranking algorithm: cosine or hybrid (default from settings)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default from settings)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results             []SearchResultOutput `json:"results"`
	Count               int                  `json:"count"`
	Algorithm           string               `json:"algorithm"`
	TotalChunksSearched int                  `json:"total_chunks_searched"`
	ExecutionTimeMS     float64              `json:"execution_time_ms"`
}

// SearchResultOutput represents a single ranked chunk.
type SearchResultOutput struct {
	Rank       int     `json:"rank"`
	Score      float64 `json:"score"`
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Content    string  `json:"content"`
}

// ListAlgorithmsInput is the empty input of the list_algorithms tool.
type ListAlgorithmsInput struct{}

// AlgorithmOutput describes one ranking algorithm.
type AlgorithmOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListAlgorithmsOutput is the output schema for the list_algorithms tool.
type ListAlgorithmsOutput struct {
	Algorithms []AlgorithmOutput `json:"algorithms"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search a user's document library by semantic or hybrid similarity",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_algorithms",
		Description: "List the available ranking algorithms",
	}, s.handleListAlgorithms)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	algorithm := input.Algorithm
	if strings.TrimSpace(algorithm) == "" {
		algorithm = s.defaults.DefaultAlgorithm.String()
	}
	limit := input.Limit
	if limit == 0 {
		limit = s.defaults.DefaultLimit
	}

	results, err := s.ports.Query.ExecuteQuery(ctx, input.UserEmail, input.Query, algorithm, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:             make([]SearchResultOutput, len(results.Results)),
		Count:               results.Count(),
		Algorithm:           results.Algorithm.String(),
		TotalChunksSearched: results.TotalChunksSearched,
		ExecutionTimeMS:     float64(results.ExecutionTime.Microseconds()) / 1000,
	}

	for i, r := range results.Results {
		output.Results[i] = SearchResultOutput{
			Rank:       r.Rank,
			Score:      r.Score,
			DocumentID: r.Chunk.DocumentID().String(),
			ChunkID:    r.Chunk.ID().String(),
			Content:    r.Chunk.Text(),
		}
	}

	return nil, output, nil
}

// handleListAlgorithms handles the list_algorithms tool invocation.
func (s *Server) handleListAlgorithms(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListAlgorithmsInput,
) (*mcp.CallToolResult, ListAlgorithmsOutput, error) {
	names := s.ports.Query.SupportedAlgorithms()
	output := ListAlgorithmsOutput{Algorithms: make([]AlgorithmOutput, len(names))}
	for i, name := range names {
		output.Algorithms[i] = AlgorithmOutput{
			Name:        name,
			Description: domain.Algorithm(name).Description(),
		}
	}
	return nil, output, nil
}
