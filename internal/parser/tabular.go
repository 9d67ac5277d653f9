package parser

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"

	"github.com/rodeoai/ingest/internal/models"
)

// Column-name vocabularies used to infer what kind of data a table holds.
// Checked in order; the first vocabulary with at least one matching column
// wins.
var (
	resultIndicators     = []string{"result", "score", "placement", "winner", "actual"}
	predictionIndicators = []string{"prediction", "confidence", "predicted", "odds"}
	eventIndicators      = []string{"event", "competition", "rodeo", "date", "location"}
)

// TabularParser handles single-sheet row/column data (CSV).
type TabularParser struct{}

func (p *TabularParser) SupportsType(declaredType string) bool {
	return strings.Contains(strings.ToLower(declaredType), "csv")
}

func (p *TabularParser) SupportsExtension(filename string) bool {
	return hasExtension(filename, ".csv")
}

func (p *TabularParser) Parse(ctx context.Context, content []byte, filename string) (*models.RecordSet, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &ExtractionError{Filename: filename, Err: err}
	}
	if len(rows) == 0 {
		return classifyTable(nil, nil, filename), nil
	}
	return classifyTable(rows[0], rows[1:], filename), nil
}

// classifyTable infers the table kind from its column names and parses
// rows into the matching schema. Shared by the tabular, spreadsheet and
// HTML parsers.
func classifyTable(headers []string, rows [][]string, source string) *models.RecordSet {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	switch {
	case anyColumnMatches(lower, resultIndicators):
		return parseResultsTable(lower, rows, source)
	case anyColumnMatches(lower, predictionIndicators):
		return parsePredictionsTable(lower, rows, source)
	case anyColumnMatches(lower, eventIndicators):
		return parseEventsTable(lower, rows, source)
	default:
		return parseGenericTable(lower, rows, source)
	}
}

func anyColumnMatches(columns, indicators []string) bool {
	for _, col := range columns {
		for _, ind := range indicators {
			if strings.Contains(col, ind) {
				return true
			}
		}
	}
	return false
}

// cell returns the row value under the first column matching any of the
// given aliases, or the fallback when none is present or the cell is
// empty.
func cell(columns []string, row []string, fallback string, aliases ...string) string {
	for _, alias := range aliases {
		for i, col := range columns {
			if col != alias || i >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[i]); v != "" {
				return v
			}
		}
	}
	return fallback
}

func rowEvent(columns, row []string) models.Event {
	return models.Event{
		Name:      cell(columns, row, "Unknown Event", "event_name", "event"),
		Location:  cell(columns, row, "Unknown", "location"),
		EventDate: parseDate(cell(columns, row, "", "date", "event_date")),
		EventType: cell(columns, row, "unknown", "event_type", "discipline"),
	}
}

func rowRider(columns, row []string) models.Rider {
	return models.Rider{
		Name:    cell(columns, row, "Unknown", "rider_name", "rider", "name"),
		Rank:    safeInt(cell(columns, row, "", "rank")),
		WinRate: safeFloat(cell(columns, row, "", "win_rate")),
	}
}

func parseResultsTable(columns []string, rows [][]string, source string) *models.RecordSet {
	rs := &models.RecordSet{Source: source}
	for _, row := range rows {
		event := rowEvent(columns, row)
		rider := rowRider(columns, row)
		rs.Events = append(rs.Events, event)
		rs.Riders = append(rs.Riders, rider)
		rs.Results = append(rs.Results, models.Result{
			EventName:   event.Name,
			RiderName:   rider.Name,
			ActualValue: cell(columns, row, "Unknown", "result", "outcome"),
			Score:       safeFloat(cell(columns, row, "", "score", "average_score")),
			Placement:   safeInt(cell(columns, row, "", "placement", "place")),
		})
	}
	return rs
}

func parsePredictionsTable(columns []string, rows [][]string, source string) *models.RecordSet {
	rs := &models.RecordSet{Source: source}
	for _, row := range rows {
		event := rowEvent(columns, row)
		rider := rowRider(columns, row)
		rs.Events = append(rs.Events, event)
		rs.Riders = append(rs.Riders, rider)
		rs.Predictions = append(rs.Predictions, models.Prediction{
			Event:          event,
			Rider:          rider,
			PredictionType: cell(columns, row, "winner", "prediction_type"),
			PredictedValue: cell(columns, row, "Unknown", "predicted_value", "prediction"),
			Confidence:     safeFloat(cell(columns, row, "", "confidence")),
			Odds:           safeFloat(cell(columns, row, "", "odds")),
			ModelVersion:   cell(columns, row, "historical-import", "model_version"),
			Analysis:       cell(columns, row, "", "analysis"),
		})
	}
	return rs
}

func parseEventsTable(columns []string, rows [][]string, source string) *models.RecordSet {
	rs := &models.RecordSet{Source: source}
	for _, row := range rows {
		rs.Events = append(rs.Events, models.Event{
			Name:      cell(columns, row, "Unknown", "name", "event_name", "event"),
			Location:  cell(columns, row, "Unknown", "location"),
			EventDate: parseDate(cell(columns, row, "", "date", "event_date")),
			EventType: cell(columns, row, "unknown", "event_type", "type"),
			PrizePool: safeFloat(cell(columns, row, "", "prize_pool")),
		})
	}
	return rs
}

// parseGenericTable keeps the rows untouched as raw key/value records and
// flags the set for manual mapping.
func parseGenericTable(columns []string, rows [][]string, source string) *models.RecordSet {
	rs := &models.RecordSet{
		Source:             source,
		Columns:            columns,
		NeedsManualMapping: true,
	}
	for _, row := range rows {
		record := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(row) {
				record[col] = row[i]
			}
		}
		rs.RawRecords = append(rs.RawRecords, record)
	}
	return rs
}

func hasExtension(filename string, exts ...string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
