package chunker

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/custodia-labs/orion/internal/core/domain"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "w" + strconv.Itoa(i)
	}
	return strings.Join(parts, " ")
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.ChunkSize() != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, c.ChunkSize())
		}
		if c.Overlap() != DefaultChunkSize*DefaultOverlapPercent/100 {
			t.Errorf("expected overlap %d, got %d", DefaultChunkSize*DefaultOverlapPercent/100, c.Overlap())
		}
	})

	t.Run("custom values", func(t *testing.T) {
		c := New(WithChunkSize(200), WithOverlapPercent(25))
		if c.ChunkSize() != 200 {
			t.Errorf("expected chunkSize 200, got %d", c.ChunkSize())
		}
		if c.Overlap() != 50 {
			t.Errorf("expected overlap 50, got %d", c.Overlap())
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		c := New(WithChunkSize(0), WithOverlapPercent(100), WithOverlapPercent(-1))
		if c.ChunkSize() != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", c.ChunkSize())
		}
		if c.Overlap() != DefaultChunkSize*DefaultOverlapPercent/100 {
			t.Errorf("expected default overlap, got %d", c.Overlap())
		}
	})

	t.Run("overlap stays below chunk size", func(t *testing.T) {
		c := New(WithChunkSize(1), WithOverlapPercent(99))
		if c.Overlap() != 0 {
			t.Errorf("expected overlap 0, got %d", c.Overlap())
		}
	})

	t.Run("from settings", func(t *testing.T) {
		c := FromSettings(domain.IngestSettings{ChunkSize: 10, OverlapPercent: 20})
		if c.ChunkSize() != 10 || c.Overlap() != 2 {
			t.Errorf("expected 10/2, got %d/%d", c.ChunkSize(), c.Overlap())
		}
	})
}

func TestChunker_Name(t *testing.T) {
	if New().Name() != "tokens" {
		t.Errorf("expected name 'tokens', got '%s'", New().Name())
	}
}

func TestChunker_Chunk(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		size       int
		percent    int
		wantTexts  []string
		wantCounts []int
	}{
		{
			name:      "empty",
			text:      "",
			size:      3,
			wantTexts: nil,
		},
		{
			name:      "whitespace only",
			text:      " \n\t ",
			size:      3,
			wantTexts: nil,
		},
		{
			name:       "shorter than one chunk",
			text:       "alpha  beta\n",
			size:       3,
			wantTexts:  []string{"alpha beta"},
			wantCounts: []int{2},
		},
		{
			name:       "exact multiple without overlap",
			text:       words(6),
			size:       3,
			wantTexts:  []string{"w0 w1 w2", "w3 w4 w5"},
			wantCounts: []int{3, 3},
		},
		{
			name:       "overlap repeats tail",
			text:       words(7),
			size:       4,
			percent:    50,
			wantTexts:  []string{"w0 w1 w2 w3", "w2 w3 w4 w5", "w4 w5 w6"},
			wantCounts: []int{4, 4, 3},
		},
		{
			name:       "last window ends exactly",
			text:       words(5),
			size:       3,
			percent:    34,
			wantTexts:  []string{"w0 w1 w2", "w2 w3 w4"},
			wantCounts: []int{3, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(WithChunkSize(tt.size), WithOverlapPercent(tt.percent))
			segments, err := c.Chunk(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(segments) != len(tt.wantTexts) {
				t.Fatalf("expected %d segments, got %d", len(tt.wantTexts), len(segments))
			}
			for i, seg := range segments {
				if seg.Sequence != i {
					t.Errorf("segment %d: expected sequence %d, got %d", i, i, seg.Sequence)
				}
				if seg.Text != tt.wantTexts[i] {
					t.Errorf("segment %d: expected %q, got %q", i, tt.wantTexts[i], seg.Text)
				}
				if seg.TokenCount != tt.wantCounts[i] {
					t.Errorf("segment %d: expected %d tokens, got %d", i, tt.wantCounts[i], seg.TokenCount)
				}
			}
		})
	}
}

func TestChunker_ChunkCoversAllTokens(t *testing.T) {
	c := New(WithChunkSize(50), WithOverlapPercent(10))
	segments, err := c.Chunk(context.Background(), words(1234))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := segments[len(segments)-1]
	if !strings.HasSuffix(last.Text, "w1233") {
		t.Errorf("last segment should end with final token, got %q", last.Text)
	}
	for _, seg := range segments {
		if seg.TokenCount > 50 {
			t.Errorf("segment %d exceeds chunk size: %d", seg.Sequence, seg.TokenCount)
		}
	}
}

func TestChunker_ChunkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Chunk(ctx, "some text"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
