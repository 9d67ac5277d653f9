package pipeline_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodeoai/ingest/internal/models"
)

func TestProcessBatch_MixedOutcomes(t *testing.T) {
	h := newHarness(t)

	subs := []models.Submission{
		submission("round1.csv", "text/csv",
			[]byte("rider_name,score\nrodeo rider one,91.5\n")),
		submission("archive.zip", "application/zip",
			[]byte("rodeo rider score data")),
		submission("round2.csv", "text/csv",
			[]byte("rider_name,score\nrodeo rider two,88.0\nrodeo rider three,85.5\n")),
	}

	batch, err := h.orchestrator.ProcessBatch(context.Background(), subs, autoPush)
	require.NoError(t, err)
	require.Len(t, batch.FileResults, 3)

	// Input order preserved.
	assert.Equal(t, "round1.csv", batch.FileResults[0].Filename)
	assert.Equal(t, "archive.zip", batch.FileResults[1].Filename)
	assert.Equal(t, "round2.csv", batch.FileResults[2].Filename)

	assert.Equal(t, models.StatusSuccess, batch.FileResults[0].Status)
	assert.Equal(t, models.StatusSuccess, batch.FileResults[2].Status)

	// The unsupported file fails alone without aborting its siblings.
	failed := batch.FileResults[1]
	assert.Equal(t, models.StatusError, failed.Status)
	assert.NotEmpty(t, failed.Error)
	assert.Nil(t, failed.Result)

	// Totals sum only over extracted files.
	assert.Equal(t, 3, batch.Totals.Results)
	assert.Equal(t, 3, batch.Totals.Riders)
}

func TestProcessBatch_DuplicateWithinBatch(t *testing.T) {
	h := newHarness(t)

	content := []byte("rider_name,score\nrodeo rider,91.5\n")
	subs := []models.Submission{
		submission("a.csv", "text/csv", content),
		submission("a_copy.csv", "text/csv", content),
	}

	batch, err := h.orchestrator.ProcessBatch(context.Background(), subs, autoPush)
	require.NoError(t, err)

	statuses := map[models.Status]int{}
	for _, fr := range batch.FileResults {
		statuses[fr.Status]++
	}
	// Exactly one of the two identical files wins the dedup race.
	assert.Equal(t, 1, statuses[models.StatusSuccess])
	assert.Equal(t, 1, statuses[models.StatusDuplicate])
	assert.Len(t, h.pusher.results, 1)
}

func TestProcessBatch_Empty(t *testing.T) {
	h := newHarness(t)

	batch, err := h.orchestrator.ProcessBatch(context.Background(), nil, autoPush)
	require.NoError(t, err)
	assert.Empty(t, batch.FileResults)
	assert.Zero(t, batch.Totals.Results)
}

func TestProcessBatch_ManyFilesBoundedWorkers(t *testing.T) {
	h := newHarness(t)

	var subs []models.Submission
	for i := 0; i < 20; i++ {
		content := fmt.Sprintf("rider_name,score\nrodeo rider %d,%d.5\n", i, 80+i)
		subs = append(subs, submission(fmt.Sprintf("file%d.csv", i), "text/csv", []byte(content)))
	}

	batch, err := h.orchestrator.ProcessBatch(context.Background(), subs, autoPush)
	require.NoError(t, err)
	require.Len(t, batch.FileResults, 20)
	assert.Equal(t, 20, batch.Totals.Results)
	for i, fr := range batch.FileResults {
		assert.Equal(t, fmt.Sprintf("file%d.csv", i), fr.Filename)
		assert.Equal(t, models.StatusSuccess, fr.Status)
	}
}
