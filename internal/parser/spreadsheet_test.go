package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rodeoai/ingest/internal/parser"
)

func workbookBytes(t *testing.T, sheets map[string][][]interface{}) []byte {
	t.Helper()

	book := excelize.NewFile()
	defer book.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, book.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := book.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cellRef, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, book.SetSheetRow(name, cellRef, &row))
		}
	}

	buf, err := book.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestSpreadsheetParser_SingleSheet(t *testing.T) {
	content := workbookBytes(t, map[string][][]interface{}{
		"Results": {
			{"rider_name", "score", "placement"},
			{"Sage Kimzey", 91.5, 1},
			{"Stetson Wright", 89.0, 2},
		},
	})

	p := &parser.SpreadsheetParser{}
	rs, err := p.Parse(context.Background(), content, "season.xlsx")
	require.NoError(t, err)

	require.Len(t, rs.Results, 2)
	assert.Equal(t, "Sage Kimzey", rs.Results[0].RiderName)
	require.NotNil(t, rs.Results[0].Placement)
	assert.Equal(t, 1, *rs.Results[0].Placement)
}

func TestSpreadsheetParser_MergesSheetsAndFlags(t *testing.T) {
	content := workbookBytes(t, map[string][][]interface{}{
		"Events": {
			{"event_name", "location", "date"},
			{"Calgary Stampede", "Calgary AB", "2025-07-04"},
		},
		"Scratch": {
			{"alpha", "beta"},
			{"1", "2"},
		},
	})

	p := &parser.SpreadsheetParser{}
	rs, err := p.Parse(context.Background(), content, "mixed.xlsx")
	require.NoError(t, err)

	assert.Len(t, rs.Events, 1)
	require.Len(t, rs.RawRecords, 1)
	// One unclassifiable sheet flags the whole workbook.
	assert.True(t, rs.NeedsManualMapping)
}

func TestSpreadsheetParser_NotAWorkbook(t *testing.T) {
	p := &parser.SpreadsheetParser{}
	_, err := p.Parse(context.Background(), []byte("plain text"), "fake.xlsx")

	var extractionErr *parser.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
}

func TestSpreadsheetParser_Supports(t *testing.T) {
	p := &parser.SpreadsheetParser{}

	assert.True(t, p.SupportsType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.True(t, p.SupportsType("application/vnd.ms-excel"))
	assert.False(t, p.SupportsType("text/csv"))

	assert.True(t, p.SupportsExtension("season.xlsx"))
	assert.False(t, p.SupportsExtension("season.csv"))
	// Legacy binary workbooks are unreadable and must not be claimed.
	assert.False(t, p.SupportsExtension("season.xls"))
}
