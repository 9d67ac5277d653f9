// Package pipeline sequences the ingestion gates for each submission:
// file dedup, relevance triage, extraction, data dedup, quality
// assessment, review routing and the optional downstream push.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rodeoai/ingest/internal/dedup"
	"github.com/rodeoai/ingest/internal/dlq"
	"github.com/rodeoai/ingest/internal/metrics"
	"github.com/rodeoai/ingest/internal/models"
	"github.com/rodeoai/ingest/internal/parser"
	"github.com/rodeoai/ingest/internal/pushclient"
	"github.com/rodeoai/ingest/internal/reviewqueue"
	"github.com/rodeoai/ingest/internal/triage"
)

const defaultPushTimeout = 30 * time.Second

// Orchestrator runs the gating state machine. All collaborators are
// supplied at construction so tests can substitute doubles.
type Orchestrator struct {
	parsers     *parser.Registry
	dedup       *dedup.Engine
	triage      *triage.Engine
	reviews     reviewqueue.Queue
	pusher      pushclient.Pusher
	dlq         dlq.Writer
	pushTimeout time.Duration
	workers     int
}

// Option tunes orchestrator behavior beyond its collaborators.
type Option func(*Orchestrator)

// WithPushTimeout bounds each downstream push call. A push that never
// returns is cut off and treated as a per-record error.
func WithPushTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pushTimeout = d
		}
	}
}

// WithWorkerCount bounds batch concurrency.
func WithWorkerCount(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

func New(
	parsers *parser.Registry,
	dedupEngine *dedup.Engine,
	triageEngine *triage.Engine,
	reviews reviewqueue.Queue,
	pusher pushclient.Pusher,
	dlqWriter dlq.Writer,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		parsers:     parsers,
		dedup:       dedupEngine,
		triage:      triageEngine,
		reviews:     reviews,
		pusher:      pusher,
		dlq:         dlqWriter,
		pushTimeout: defaultPushTimeout,
		workers:     4,
	}
	if o.dlq == nil {
		o.dlq = dlq.NopWriter{}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Process runs one submission through the pipeline. Gated rejections are
// successful completions with a negative outcome; only extraction
// failures and collaborator errors surface as errors.
func (o *Orchestrator) Process(ctx context.Context, sub models.Submission, opts models.ProcessOptions) (*models.ProcessResult, error) {
	result := &models.ProcessResult{
		SubmissionID: uuid.New().String(),
		Filename:     sub.Filename,
	}
	metrics.SubmissionBytesTotal.Add(float64(len(sub.Content)))

	log := slog.With(
		slog.String("submission_id", result.SubmissionID),
		slog.String("filename", sub.Filename),
	)

	contentHash := reviewqueue.UnknownHash

	// Gate 1: exact file duplicate. Registers the fingerprint as a side
	// effect, so this runs at most once per physical submission.
	if !opts.SkipDedup {
		check, err := o.dedup.CheckFile(ctx, sub.Content, sub.Filename)
		if err != nil {
			return nil, err
		}
		result.ContentHash = check.Hash
		contentHash = check.Hash
		if check.IsDuplicate {
			metrics.DuplicatesTotal.WithLabelValues(dedup.NamespaceFile).Inc()
			log.Info("duplicate file detected", slog.String("hash", check.Hash))
			return o.finish(result, models.StatusDuplicate), nil
		}
	}

	// Gate 2: cheap relevance triage before paying extraction cost. A
	// review verdict is noted but does not short-circuit.
	reviewFlagged := false
	var relevance *models.Assessment
	if !opts.SkipTriage {
		rel := o.triage.AssessFileRelevance(sub.Filename, sub.Content, sub.DeclaredType)
		result.Relevance = &rel
		relevance = &rel
		switch rel.Action {
		case models.ActionReject:
			reason := "rejected by relevance triage: " + strings.Join(rel.Reasons, "; ")
			id, err := o.addReview(ctx, sub.Filename, reason, contentHash, rel)
			if err != nil {
				return nil, err
			}
			result.ReviewID = &id
			log.Info("submission rejected by relevance triage", slog.Float64("score", rel.Score))
			return o.finish(result, models.StatusRejected), nil
		case models.ActionReview:
			reviewFlagged = true
		}
	}

	// Extraction. Unsupported formats and malformed input are
	// pipeline-fatal, not gated rejections.
	start := time.Now()
	rs, err := o.parsers.Extract(ctx, sub.Content, sub.Filename, sub.DeclaredType)
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExtractionErrors.Inc()
		return nil, err
	}
	result.Counts = rs.Counts()
	recordExtractionMetrics(result.Counts)

	// Gate 3: semantic data duplicate.
	if !opts.SkipDedup {
		check, err := o.dedup.CheckData(ctx, rs, sub.Filename)
		if err != nil {
			return nil, err
		}
		result.DataHash = check.Hash
		if check.IsDuplicate {
			metrics.DuplicatesTotal.WithLabelValues(dedup.NamespaceData).Inc()
			log.Info("duplicate data detected", slog.String("hash", check.Hash))
			return o.finish(result, models.StatusDuplicate), nil
		}
	}

	// Gate 4: quality assessment.
	action := models.ActionProcess
	if !opts.SkipTriage {
		quality := o.triage.AssessDataQuality(rs, sub.Filename)
		result.Quality = &quality
		action = quality.Action

		if quality.Action == models.ActionReject {
			reason := "rejected by quality assessment: " + strings.Join(quality.Reasons, "; ")
			id, err := o.addReview(ctx, sub.Filename, reason, contentHash, quality)
			if err != nil {
				return nil, err
			}
			result.ReviewID = &id
			log.Info("submission rejected by quality assessment", slog.Float64("score", quality.Score))
			return o.finish(result, models.StatusRejected), nil
		}

		if quality.Action == models.ActionReview || reviewFlagged {
			reason := reviewReason(reviewFlagged, relevance, quality)
			id, err := o.addReview(ctx, sub.Filename, reason, contentHash, mergedAssessment(reviewFlagged, relevance, quality))
			if err != nil {
				return nil, err
			}
			result.ReviewID = &id
			result.NeedsReview = true
		}
	}

	// Push runs only when the quality action is process, even if an
	// earlier gate flagged review.
	if action == models.ActionProcess && opts.AutoPush && o.pusher != nil {
		result.PushOutcomes = o.pushRecords(ctx, sub.Filename, rs)
	}

	// Final status is derived: duplicate > rejected > needs_review >
	// success > processed. Duplicate and rejected returned above.
	switch {
	case result.NeedsReview:
		return o.finish(result, models.StatusNeedsReview), nil
	case result.PushOutcomes != nil:
		return o.finish(result, models.StatusSuccess), nil
	default:
		return o.finish(result, models.StatusProcessed), nil
	}
}

func (o *Orchestrator) finish(result *models.ProcessResult, status models.Status) *models.ProcessResult {
	result.Status = status
	metrics.SubmissionsTotal.WithLabelValues(string(status)).Inc()
	return result
}

func (o *Orchestrator) addReview(ctx context.Context, filename, reason, contentHash string, assessment models.Assessment) (int, error) {
	id, err := o.reviews.Add(ctx, filename, reason, contentHash, assessment)
	if err != nil {
		return 0, fmt.Errorf("append review entry for %s: %w", filename, err)
	}
	metrics.ReviewEntriesTotal.Inc()
	return id, nil
}

// reviewReason names every gate that flagged the submission.
func reviewReason(triageFlagged bool, relevance *models.Assessment, quality models.Assessment) string {
	var parts []string
	if triageFlagged && relevance != nil {
		parts = append(parts, "relevance triage: "+strings.Join(relevance.Reasons, "; "))
	}
	if quality.Action == models.ActionReview {
		parts = append(parts, "quality assessment: "+strings.Join(quality.Reasons, "; "))
	}
	return "flagged for review: " + strings.Join(parts, " | ")
}

// mergedAssessment carries the quality assessment, folding in the
// relevance reasons when triage also flagged the submission.
func mergedAssessment(triageFlagged bool, relevance *models.Assessment, quality models.Assessment) models.Assessment {
	if !triageFlagged || relevance == nil {
		return quality
	}
	merged := quality
	merged.Reasons = append(append([]string{}, relevance.Reasons...), quality.Reasons...)
	return merged
}

// pushRecords publishes every prediction and result independently.
// Records are pushed concurrently; one record's failure never aborts its
// siblings.
func (o *Orchestrator) pushRecords(ctx context.Context, filename string, rs *models.RecordSet) []models.PushOutcome {
	outcomes := make([]models.PushOutcome, len(rs.Predictions)+len(rs.Results))

	var wg sync.WaitGroup
	for i, p := range rs.Predictions {
		wg.Add(1)
		go func(slot int, p models.Prediction) {
			defer wg.Done()
			outcomes[slot] = o.pushOne(ctx, filename, models.PushTypePrediction, p)
		}(i, p)
	}
	for i, r := range rs.Results {
		wg.Add(1)
		go func(slot int, r models.Result) {
			defer wg.Done()
			outcomes[slot] = o.pushOne(ctx, filename, models.PushTypeResult, r)
		}(len(rs.Predictions)+i, r)
	}
	wg.Wait()

	return outcomes
}

func (o *Orchestrator) pushOne(ctx context.Context, filename string, typ models.PushRecordType, record any) models.PushOutcome {
	pushCtx, cancel := context.WithTimeout(ctx, o.pushTimeout)
	defer cancel()

	start := time.Now()
	var (
		receipt *pushclient.Receipt
		err     error
	)
	switch typ {
	case models.PushTypePrediction:
		receipt, err = o.pusher.PushPrediction(pushCtx, record.(models.Prediction))
	case models.PushTypeResult:
		receipt, err = o.pusher.PushResult(pushCtx, record.(models.Result))
	}
	metrics.PushDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PushOutcomesTotal.WithLabelValues(string(typ), "error").Inc()
		slog.Warn("downstream push failed",
			slog.String("filename", filename),
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
		if dlqErr := o.dlq.Write(ctx, &dlq.FailedRecord{
			Timestamp: time.Now().UTC(),
			Filename:  filename,
			Type:      typ,
			Record:    record,
			Error:     err.Error(),
			Reason:    "downstream_error",
		}); dlqErr != nil {
			slog.Error("DLQ write failed", slog.String("error", dlqErr.Error()))
		}
		return models.PushOutcome{Type: typ, Status: "error", Error: err.Error()}
	}

	metrics.PushOutcomesTotal.WithLabelValues(string(typ), "success").Inc()
	return models.PushOutcome{Type: typ, Status: "success", ID: receipt.ID()}
}

func recordExtractionMetrics(counts models.RecordCounts) {
	metrics.RecordsExtracted.WithLabelValues("events").Add(float64(counts.Events))
	metrics.RecordsExtracted.WithLabelValues("riders").Add(float64(counts.Riders))
	metrics.RecordsExtracted.WithLabelValues("predictions").Add(float64(counts.Predictions))
	metrics.RecordsExtracted.WithLabelValues("results").Add(float64(counts.Results))
}
