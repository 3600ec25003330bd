package csv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orion/internal/core/domain"
)

func TestSupportedTypes(t *testing.T) {
	extractor := New()

	assert.Contains(t, extractor.SupportedMIMETypes(), "text/csv")
	assert.Equal(t, []string{".csv", ".tsv"}, extractor.SupportedExtensions())
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{
			name:     "header pairs",
			filename: "people.csv",
			content:  "name,city\nAda,London\nGrace,\n",
			want:     "name\tcity\nname: Ada; city: London\nname: Grace",
		},
		{
			name:     "tab separated",
			filename: "people.tsv",
			content:  "name\tcity\nAda\tLondon\n",
			want:     "name\tcity\nname: Ada; city: London",
		},
		{
			name:     "extra cells kept",
			filename: "wide.csv",
			content:  "a\n1,2\n",
			want:     "a\na: 1; 2",
		},
		{
			name:     "byte order mark",
			filename: "bom.csv",
			content:  "\ufeffid\n7\n",
			want:     "id\nid: 7",
		},
		{
			name:     "empty",
			filename: "empty.csv",
			content:  "",
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Extract(context.Background(), tt.filename, []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Content)
		})
	}
}

func TestExtract_Title(t *testing.T) {
	got, err := New().Extract(context.Background(), "sales-report.csv", []byte("a\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, "sales report", got.Title)
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, "a.csv", []byte("a\n1\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
}
