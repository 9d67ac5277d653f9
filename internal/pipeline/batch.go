package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/rodeoai/ingest/internal/models"
)

// ProcessBatch runs the pipeline independently over each submission.
// Files are processed concurrently up to the configured worker bound;
// one file's fatal error is recorded as its file result and never aborts
// the others. FileResults preserve the input order, and totals sum only
// over files whose extraction completed.
func (o *Orchestrator) ProcessBatch(ctx context.Context, subs []models.Submission, opts models.ProcessOptions) (*models.BatchResult, error) {
	pool, err := ants.NewPool(o.workers)
	if err != nil {
		return nil, fmt.Errorf("create batch worker pool: %w", err)
	}
	defer pool.Release()

	// Each worker writes only its own slot; results are merged after all
	// workers complete.
	fileResults := make([]models.FileResult, len(subs))

	var wg sync.WaitGroup
	for i := range subs {
		i := i
		sub := subs[i]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			fileResults[i] = o.processOne(ctx, sub, opts)
		})
		if submitErr != nil {
			wg.Done()
			fileResults[i] = models.FileResult{
				Filename: sub.Filename,
				Status:   models.StatusError,
				Error:    submitErr.Error(),
			}
		}
	}
	wg.Wait()

	batch := &models.BatchResult{FileResults: fileResults}
	for _, fr := range fileResults {
		if fr.Result != nil {
			batch.Totals.Add(fr.Result.Counts)
		}
	}
	return batch, nil
}

func (o *Orchestrator) processOne(ctx context.Context, sub models.Submission, opts models.ProcessOptions) models.FileResult {
	result, err := o.Process(ctx, sub, opts)
	if err != nil {
		slog.Warn("batch file failed",
			slog.String("filename", sub.Filename),
			slog.String("error", err.Error()),
		)
		return models.FileResult{
			Filename: sub.Filename,
			Status:   models.StatusError,
			Error:    err.Error(),
		}
	}
	return models.FileResult{
		Filename: sub.Filename,
		Status:   result.Status,
		Result:   result,
	}
}
