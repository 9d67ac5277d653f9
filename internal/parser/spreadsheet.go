package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rodeoai/ingest/internal/models"
)

// SpreadsheetParser handles XLSX workbooks. Every sheet is parsed as a
// tabular set and the per-kind sequences are concatenated. Legacy
// binary .xls is not readable here and is not claimed.
type SpreadsheetParser struct{}

func (p *SpreadsheetParser) SupportsType(declaredType string) bool {
	t := strings.ToLower(declaredType)
	return strings.Contains(t, "excel") || strings.Contains(t, "spreadsheet")
}

func (p *SpreadsheetParser) SupportsExtension(filename string) bool {
	return hasExtension(filename, ".xlsx")
}

func (p *SpreadsheetParser) Parse(ctx context.Context, content []byte, filename string) (*models.RecordSet, error) {
	book, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ExtractionError{Filename: filename, Err: err}
	}
	defer book.Close()

	merged := &models.RecordSet{Source: filename}
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return nil, &ExtractionError{Filename: filename, Err: fmt.Errorf("sheet %s: %w", sheet, err)}
		}
		if len(rows) == 0 {
			continue
		}
		sheetSet := classifyTable(rows[0], rows[1:], fmt.Sprintf("%s:%s", filename, sheet))
		mergeRecordSets(merged, sheetSet)
	}
	return merged, nil
}

// mergeRecordSets concatenates src's sequences onto dst and carries the
// manual-mapping and review flags forward.
func mergeRecordSets(dst, src *models.RecordSet) {
	dst.Events = append(dst.Events, src.Events...)
	dst.Riders = append(dst.Riders, src.Riders...)
	dst.Predictions = append(dst.Predictions, src.Predictions...)
	dst.Results = append(dst.Results, src.Results...)
	dst.RawRecords = append(dst.RawRecords, src.RawRecords...)
	if len(dst.Columns) == 0 {
		dst.Columns = src.Columns
	}
	dst.NeedsManualMapping = dst.NeedsManualMapping || src.NeedsManualMapping
	dst.NeedsReview = dst.NeedsReview || src.NeedsReview
}
