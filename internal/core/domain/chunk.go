package domain

import (
	"fmt"
	"strings"
)

// ChunkParams holds the fields used to construct a Chunk.
type ChunkParams struct {
	// ID is the composite chunk identifier.
	ID ChunkID

	// DocumentID links to the parent Document.
	// It must equal ID.DocumentID.
	DocumentID DocumentID

	// Filename is the stored chunk filename, e.g. {id}_chunk_001.txt.
	Filename string

	// Text is the chunk's span of extracted document text.
	Text string

	// TokenCount is the number of tokens in Text.
	TokenCount int

	// SequenceIndex is the position in the document. It must equal ID.Sequence.
	SequenceIndex int

	// Embedding is optional. An unset vector means the chunk is not embedded.
	Embedding Vector

	// EmbeddingModel names the model for Embedding. Defaults to Embedding.Model().
	EmbeddingModel string
}

// Chunk is an immutable span of document text and its optional embedding.
type Chunk struct {
	id             ChunkID
	documentID     DocumentID
	filename       string
	text           string
	tokenCount     int
	embedding      Vector
	embeddingModel string
}

// NewChunk validates p and returns a Chunk.
func NewChunk(p ChunkParams) (Chunk, error) {
	if p.TokenCount < 0 {
		return Chunk{}, fmt.Errorf("%w: token count must be non-negative, got %d", ErrInvalidChunk, p.TokenCount)
	}
	if p.SequenceIndex < 0 {
		return Chunk{}, fmt.Errorf("%w: sequence index must be non-negative, got %d", ErrInvalidChunk, p.SequenceIndex)
	}
	if p.ID.Sequence != p.SequenceIndex {
		return Chunk{}, fmt.Errorf("%w: chunk id sequence (%d) must match sequence index (%d)",
			ErrInvalidChunk, p.ID.Sequence, p.SequenceIndex)
	}
	if p.ID.DocumentID != p.DocumentID.String() {
		return Chunk{}, fmt.Errorf("%w: chunk id document (%s) must match document id (%s)",
			ErrInvalidChunk, p.ID.DocumentID, p.DocumentID)
	}
	if strings.TrimSpace(p.Filename) == "" {
		return Chunk{}, fmt.Errorf("%w: filename cannot be empty", ErrInvalidChunk)
	}

	model := p.EmbeddingModel
	if model == "" && p.Embedding.IsSet() {
		model = p.Embedding.Model()
	}

	return Chunk{
		id:             p.ID,
		documentID:     p.DocumentID,
		filename:       p.Filename,
		text:           p.Text,
		tokenCount:     p.TokenCount,
		embedding:      p.Embedding,
		embeddingModel: model,
	}, nil
}

// ID returns the chunk identifier.
func (c Chunk) ID() ChunkID { return c.id }

// DocumentID returns the parent document id.
func (c Chunk) DocumentID() DocumentID { return c.documentID }

// Filename returns the stored chunk filename.
func (c Chunk) Filename() string { return c.filename }

// Text returns the chunk text.
func (c Chunk) Text() string { return c.text }

// TokenCount returns the number of tokens in the chunk text.
func (c Chunk) TokenCount() int { return c.tokenCount }

// SequenceIndex returns the chunk's position within its document.
func (c Chunk) SequenceIndex() int { return c.id.Sequence }

// Embedding returns the chunk embedding, unset if the chunk has none.
func (c Chunk) Embedding() Vector { return c.embedding }

// EmbeddingModel returns the name of the model that embedded the chunk.
func (c Chunk) EmbeddingModel() string { return c.embeddingModel }

// HasEmbedding reports whether the chunk carries an embedding.
func (c Chunk) HasEmbedding() bool { return c.embedding.IsSet() }

// EmbeddingDimension returns the embedding dimension, or 0 when not embedded.
func (c Chunk) EmbeddingDimension() int { return c.embedding.Dimension() }

// SimilarityTo returns the cosine similarity between the chunk embedding and v.
// It fails with ErrEmbeddingMissing when the chunk is not embedded.
func (c Chunk) SimilarityTo(v Vector) (float64, error) {
	if !c.HasEmbedding() {
		return 0, fmt.Errorf("%w: chunk %s has no embedding", ErrEmbeddingMissing, c.id)
	}
	return c.embedding.CosineSimilarity(v)
}
