package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodeoai/ingest/internal/parser"
)

func TestTabularParser_Supports(t *testing.T) {
	p := &parser.TabularParser{}

	assert.True(t, p.SupportsType("text/csv"))
	assert.True(t, p.SupportsType("application/csv; charset=utf-8"))
	assert.False(t, p.SupportsType("text/plain"))

	assert.True(t, p.SupportsExtension("results.csv"))
	assert.True(t, p.SupportsExtension("RESULTS.CSV"))
	assert.False(t, p.SupportsExtension("results.txt"))
}

func TestTabularParser_ResultsTable(t *testing.T) {
	content := []byte("rider_name,wins,average_score\n" +
		"J.B. Mauney,54,89.5\n" +
		"Jess Lockwood,32,87.25\n")

	p := &parser.TabularParser{}
	rs, err := p.Parse(context.Background(), content, "results.csv")
	require.NoError(t, err)

	require.Len(t, rs.Results, 2)
	assert.Len(t, rs.Events, 2)
	assert.Len(t, rs.Riders, 2)
	assert.Empty(t, rs.Predictions)
	assert.False(t, rs.NeedsManualMapping)

	first := rs.Results[0]
	assert.Equal(t, "J.B. Mauney", first.RiderName)
	require.NotNil(t, first.Score)
	assert.InDelta(t, 89.5, *first.Score, 0.001)

	// No event columns present, so the synthesized event uses defaults.
	assert.Equal(t, "Unknown Event", first.EventName)
}

func TestTabularParser_PredictionsTable(t *testing.T) {
	content := []byte("event_name,rider_name,predicted_value,confidence,odds\n" +
		"NFR Round 5,Stetson Wright,1st place,0.82,2.5\n")

	p := &parser.TabularParser{}
	rs, err := p.Parse(context.Background(), content, "predictions.csv")
	require.NoError(t, err)

	require.Len(t, rs.Predictions, 1)
	pred := rs.Predictions[0]
	assert.Equal(t, "NFR Round 5", pred.Event.Name)
	assert.Equal(t, "Stetson Wright", pred.Rider.Name)
	assert.Equal(t, "1st place", pred.PredictedValue)
	require.NotNil(t, pred.Confidence)
	assert.InDelta(t, 0.82, *pred.Confidence, 0.001)
	require.NotNil(t, pred.Odds)
	assert.InDelta(t, 2.5, *pred.Odds, 0.001)
	assert.Equal(t, "historical-import", pred.ModelVersion)
}

func TestTabularParser_EventsTable(t *testing.T) {
	content := []byte("event_name,location,date\n" +
		"Cheyenne Frontier Days,Cheyenne WY,2025-07-19\n" +
		"Calgary Stampede,Calgary AB,2025-07-04\n")

	p := &parser.TabularParser{}
	rs, err := p.Parse(context.Background(), content, "events.csv")
	require.NoError(t, err)

	// "event" and "date" columns classify as an events table; without
	// result or prediction columns no other records are synthesized.
	require.Len(t, rs.Events, 2)
	assert.Empty(t, rs.Riders)
	assert.Empty(t, rs.Predictions)
	assert.Empty(t, rs.Results)

	assert.Equal(t, "Cheyenne Frontier Days", rs.Events[0].Name)
	assert.Equal(t, "Cheyenne WY", rs.Events[0].Location)
	assert.Equal(t, "2025-07-19T00:00:00Z", rs.Events[0].EventDate)
}

func TestTabularParser_ResultColumnsWinOverEventColumns(t *testing.T) {
	// A table carrying both result and event columns is a results table.
	content := []byte("event_name,rider_name,score,placement\n" +
		"NFR Round 1,Sage Kimzey,91.5,1\n")

	p := &parser.TabularParser{}
	rs, err := p.Parse(context.Background(), content, "round1.csv")
	require.NoError(t, err)

	require.Len(t, rs.Results, 1)
	res := rs.Results[0]
	assert.Equal(t, "NFR Round 1", res.EventName)
	assert.Equal(t, "Sage Kimzey", res.RiderName)
	require.NotNil(t, res.Placement)
	assert.Equal(t, 1, *res.Placement)
}

func TestTabularParser_GenericTable(t *testing.T) {
	content := []byte("alpha,beta\n1,2\n3,4\n")

	p := &parser.TabularParser{}
	rs, err := p.Parse(context.Background(), content, "mystery.csv")
	require.NoError(t, err)

	assert.True(t, rs.NeedsManualMapping)
	assert.Equal(t, []string{"alpha", "beta"}, rs.Columns)
	require.Len(t, rs.RawRecords, 2)
	assert.Equal(t, "1", rs.RawRecords[0]["alpha"])
	assert.Equal(t, "4", rs.RawRecords[1]["beta"])
	assert.Empty(t, rs.Events)
}

func TestTabularParser_EmptyFile(t *testing.T) {
	p := &parser.TabularParser{}
	rs, err := p.Parse(context.Background(), []byte(""), "empty.csv")
	require.NoError(t, err)

	assert.True(t, rs.NeedsManualMapping)
	assert.Empty(t, rs.RawRecords)
}

func TestTabularParser_MalformedCSV(t *testing.T) {
	content := []byte("a,b\n\"unterminated\n")

	p := &parser.TabularParser{}
	_, err := p.Parse(context.Background(), content, "broken.csv")
	require.Error(t, err)

	var extractionErr *parser.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "broken.csv", extractionErr.Filename)
}

func TestTabularParser_RaggedRowsAndBlankCells(t *testing.T) {
	content := []byte("rider_name,score\n" +
		"Tilden Hooper\n" +
		",88.0\n")

	p := &parser.TabularParser{}
	rs, err := p.Parse(context.Background(), content, "ragged.csv")
	require.NoError(t, err)

	require.Len(t, rs.Results, 2)
	assert.Equal(t, "Tilden Hooper", rs.Results[0].RiderName)
	assert.Nil(t, rs.Results[0].Score)
	assert.Equal(t, "Unknown", rs.Results[1].RiderName)
	require.NotNil(t, rs.Results[1].Score)
}
