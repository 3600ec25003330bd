package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for Orion resources.
	uriScheme = "orion://"

	librariesPrefix = uriScheme + "libraries/"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: librariesPrefix + "{email}/stats",
		Name:        "library-stats",
		Description: "Document and chunk counts of a user's library",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: librariesPrefix + "{email}/documents",
		Name:        "library-documents",
		Description: "Documents stored in a user's library",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)
}

// handleStatsResource returns the statistics of one library.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	email := extractLibraryEmail(req.Params.URI, "stats")
	if email == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stats, err := s.ports.Query.LibraryStats(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("getting library stats: %w", err)
	}

	type statsInfo struct {
		UserEmail            string `json:"user_email"`
		Exists               bool   `json:"exists"`
		DocumentCount        int    `json:"document_count"`
		ChunkCount           int    `json:"chunk_count"`
		ChunksWithEmbeddings int    `json:"chunks_with_embeddings"`
		TotalFileSize        int64  `json:"total_file_size"`
	}

	return jsonResult(req.Params.URI, statsInfo(stats))
}

// handleDocumentsResource returns the documents of one library.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ingest == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	email := extractLibraryEmail(req.Params.URI, "documents")
	if email == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Ingest.List(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID          string `json:"id"`
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
		Chunks      int    `json:"chunks"`
	}

	infos := make([]docInfo, len(docs))
	for i, d := range docs {
		infos[i] = docInfo{
			ID:          d.ID.String(),
			Filename:    d.OriginalFilename,
			ContentType: d.ContentType,
			Chunks:      d.ChunkCount,
		}
	}

	return jsonResult(req.Params.URI, infos)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractLibraryEmail extracts the email from a URI like
// orion://libraries/{email}/{suffix}.
func extractLibraryEmail(uri, suffix string) string {
	if !strings.HasPrefix(uri, librariesPrefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, librariesPrefix)
	email, ok := strings.CutSuffix(uri, "/"+suffix)
	if !ok || strings.Contains(email, "/") {
		return ""
	}

	return email
}
