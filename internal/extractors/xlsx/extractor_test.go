package xlsx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/orion/internal/core/domain"
)

func buildWorkbook(t *testing.T, title string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Region", "Revenue"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"North", 1200}))

	_, err := f.NewSheet("Empty")
	require.NoError(t, err)

	if title != "" {
		require.NoError(t, f.SetDocProps(&excelize.DocProperties{Title: title}))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestSupportedTypes(t *testing.T) {
	extractor := New()

	assert.Equal(t, []string{MIMEType}, extractor.SupportedMIMETypes())
	assert.Contains(t, extractor.SupportedExtensions(), ".xlsx")
}

func TestExtract(t *testing.T) {
	got, err := New().Extract(context.Background(), "sales_q1.xlsx", buildWorkbook(t, ""))

	require.NoError(t, err)
	assert.Equal(t, "sales q1", got.Title)
	assert.Equal(t, "Sheet: Sheet1\nRegion\tRevenue\nNorth\t1200", got.Content)
}

func TestExtract_TitleFromProperties(t *testing.T) {
	got, err := New().Extract(context.Background(), "book.xlsx", buildWorkbook(t, "Sales Summary"))

	require.NoError(t, err)
	assert.Equal(t, "Sales Summary", got.Title)
}

func TestExtract_Invalid(t *testing.T) {
	_, err := New().Extract(context.Background(), "book.xlsx", []byte("not a workbook"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestJoinRow(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want string
	}{
		{"empty", nil, ""},
		{"blank cells", []string{" ", ""}, ""},
		{"trailing blanks dropped", []string{"a", "", "b", "", " "}, "a\t\tb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinRow(tt.row))
		})
	}
}
