// Package analytics accumulates ingestion statistics for the read-only
// stats endpoint.
package analytics

import (
	"sync"
	"time"

	"github.com/rodeoai/ingest/internal/models"
)

// Tracker aggregates pipeline outcomes across the process lifetime.
type Tracker struct {
	mu            sync.RWMutex
	filesByStatus map[models.Status]int
	totals        models.RecordCounts
	pushSuccess   int
	pushError     int
	started       time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		filesByStatus: make(map[models.Status]int),
		started:       time.Now().UTC(),
	}
}

// RecordFile folds one pipeline result into the running totals.
func (t *Tracker) RecordFile(result *models.ProcessResult) {
	if result == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.filesByStatus[result.Status]++
	t.totals.Add(result.Counts)
	for _, outcome := range result.PushOutcomes {
		if outcome.Status == "success" {
			t.pushSuccess++
		} else {
			t.pushError++
		}
	}
}

// RecordError counts a file whose pipeline run failed fatally.
func (t *Tracker) RecordError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filesByStatus[models.StatusError]++
}

// RecordBatch folds every file of a batch run into the totals.
func (t *Tracker) RecordBatch(batch *models.BatchResult) {
	if batch == nil {
		return
	}
	for _, fr := range batch.FileResults {
		if fr.Result != nil {
			t.RecordFile(fr.Result)
		} else {
			t.RecordError()
		}
	}
}

// PushStats summarizes downstream publish attempts.
type PushStats struct {
	Success     int     `json:"success"`
	Error       int     `json:"error"`
	SuccessRate float64 `json:"success_rate"`
}

// Report is the stats endpoint payload.
type Report struct {
	UptimeSeconds float64             `json:"uptime_seconds"`
	FilesByStatus map[string]int      `json:"files_by_status"`
	Totals        models.RecordCounts `json:"totals"`
	Push          PushStats           `json:"push"`
}

// Report returns a snapshot of the accumulated statistics.
func (t *Tracker) Report() Report {
	t.mu.RLock()
	defer t.mu.RUnlock()

	files := make(map[string]int, len(t.filesByStatus))
	for status, n := range t.filesByStatus {
		files[string(status)] = n
	}

	push := PushStats{Success: t.pushSuccess, Error: t.pushError}
	if total := push.Success + push.Error; total > 0 {
		push.SuccessRate = float64(push.Success) / float64(total)
	}

	return Report{
		UptimeSeconds: time.Since(t.started).Seconds(),
		FilesByStatus: files,
		Totals:        t.totals,
		Push:          push,
	}
}
