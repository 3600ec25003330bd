package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/orion/internal/core/domain"
)

// queryRequest is the body of POST /api/v1/query. Algorithm and Limit
// fall back to the server defaults when omitted.
type queryRequest struct {
	UserEmail string `json:"user_email"`
	Query     string `json:"query"`
	Algorithm string `json:"algorithm"`
	Limit     *int   `json:"limit"`
}

type resultItem struct {
	Rank       int     `json:"rank"`
	Score      float64 `json:"similarity_score"`
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Text       string  `json:"text"`
	TokenCount int     `json:"token_count"`
}

type queryResponse struct {
	Query               string       `json:"query"`
	Algorithm           string       `json:"algorithm"`
	LibraryID           string       `json:"library_id"`
	TotalChunksSearched int          `json:"total_chunks_searched"`
	ExecutionTimeMS     float64      `json:"execution_time_ms"`
	Results             []resultItem `json:"results"`
}

type algorithmItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type statsResponse struct {
	UserEmail            string `json:"user_email"`
	Exists               bool   `json:"exists"`
	DocumentCount        int    `json:"document_count"`
	ChunkCount           int    `json:"chunk_count"`
	ChunksWithEmbeddings int    `json:"chunks_with_embeddings"`
	TotalFileSize        int64  `json:"total_file_size"`
}

type uploadResponse struct {
	Message        string `json:"message"`
	Filename       string `json:"filename"`
	FileID         string `json:"file_id"`
	FileSize       int64  `json:"file_size"`
	ContentType    string `json:"content_type"`
	ChunkCount     int    `json:"chunk_count"`
	EmbeddingModel string `json:"embedding_model"`
}

type documentItem struct {
	ID               string `json:"file_id"`
	OriginalFilename string `json:"original_filename"`
	ContentType      string `json:"content_type"`
	ChunkCount       int    `json:"chunk_count"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC()})
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	algorithm := req.Algorithm
	if strings.TrimSpace(algorithm) == "" {
		algorithm = s.defaults.DefaultAlgorithm.String()
	}
	limit := s.defaults.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	results, err := s.ports.Query.ExecuteQuery(c.Request.Context(), req.UserEmail, req.Query, algorithm, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQueryResponse(results))
}

func toQueryResponse(results *domain.SearchResults) queryResponse {
	items := make([]resultItem, len(results.Results))
	for i, r := range results.Results {
		items[i] = resultItem{
			Rank:       r.Rank,
			Score:      r.Score,
			ChunkID:    r.Chunk.ID().String(),
			DocumentID: r.Chunk.DocumentID().String(),
			Filename:   r.Chunk.Filename(),
			Text:       r.Chunk.Text(),
			TokenCount: r.Chunk.TokenCount(),
		}
	}
	return queryResponse{
		Query:               results.QueryText,
		Algorithm:           results.Algorithm.String(),
		LibraryID:           results.LibraryID.String(),
		TotalChunksSearched: results.TotalChunksSearched,
		ExecutionTimeMS:     float64(results.ExecutionTime.Microseconds()) / 1000,
		Results:             items,
	}
}

func (s *Server) handleAlgorithms(c *gin.Context) {
	names := s.ports.Query.SupportedAlgorithms()
	items := make([]algorithmItem, 0, len(names))
	for _, name := range names {
		items = append(items, algorithmItem{
			Name:        name,
			Description: domain.Algorithm(name).Description(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"algorithms": items})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.ports.Query.LibraryStats(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse(stats))
}

func (s *Server) handleListDocuments(c *gin.Context) {
	docs, err := s.ports.Ingest.List(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]documentItem, len(docs))
	for i, d := range docs {
		items[i] = documentItem{
			ID:               d.ID.String(),
			OriginalFilename: d.OriginalFilename,
			ContentType:      d.ContentType,
			ChunkCount:       d.ChunkCount,
		}
	}
	c.JSON(http.StatusOK, gin.H{"documents": items})
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	header, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("no file provided: %v", err))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("cannot read upload: %v", err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("cannot read upload: %v", err))
		return
	}

	contentType := header.Header.Get("Content-Type")
	result, err := s.ports.Ingest.Ingest(c.Request.Context(), domain.IngestRequest{
		UserEmail:   c.Param("email"),
		Filename:    header.Filename,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, uploadResponse{
		Message:        "File uploaded successfully",
		Filename:       header.Filename,
		FileID:         result.DocumentID.String(),
		FileSize:       int64(len(content)),
		ContentType:    contentType,
		ChunkCount:     result.ChunkCount,
		EmbeddingModel: result.EmbeddingModel,
	})
}

func (s *Server) handleDeleteDocument(c *gin.Context) {
	id, err := domain.ParseDocumentID(c.Param("id"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
		return
	}

	if err := s.ports.Ingest.Delete(c.Request.Context(), c.Param("email"), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
