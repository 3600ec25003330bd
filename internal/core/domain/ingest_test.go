package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"quarterly_report.pdf", "quarterly report"},
		{"dir/sub/meeting-notes.md", "meeting notes"},
		{"README", "README"},
		{".env", ".env"},
		{"archive.tar.gz", "archive.tar"},
		{"_draft_.txt", "draft"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromFilename(tt.in))
		})
	}
}

func TestIsValidChunker(t *testing.T) {
	assert.True(t, IsValidChunker(ChunkerTokens))
	assert.True(t, IsValidChunker(ChunkerParagraphs))
	assert.False(t, IsValidChunker(""))
	assert.False(t, IsValidChunker("sentences"))
}
