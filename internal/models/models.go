package models

import "time"

// Submission is one uploaded file plus its declared metadata. It is
// immutable once constructed and owned by the orchestrator for the
// duration of a single pipeline run.
type Submission struct {
	Content      []byte
	Filename     string
	DeclaredType string
	ReceivedAt   time.Time
}

// Event describes a rodeo event extracted from a submission.
type Event struct {
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	EventDate string   `json:"event_date"`
	EventType string   `json:"event_type"`
	PrizePool *float64 `json:"prize_pool,omitempty"`
}

// Rider describes a competitor extracted from a submission.
type Rider struct {
	Name    string   `json:"name"`
	Rank    *int     `json:"rank,omitempty"`
	WinRate *float64 `json:"win_rate,omitempty"`
}

// Prediction is a historical model prediction tied to an event and rider.
type Prediction struct {
	Event          Event    `json:"event"`
	Rider          Rider    `json:"rider"`
	PredictionType string   `json:"prediction_type"`
	PredictedValue string   `json:"predicted_value"`
	Confidence     *float64 `json:"confidence,omitempty"`
	Odds           *float64 `json:"odds,omitempty"`
	ModelVersion   string   `json:"model_version"`
	Analysis       string   `json:"analysis,omitempty"`
}

// Result is an actual outcome for an event/rider pair.
type Result struct {
	EventName   string   `json:"event_name"`
	RiderName   string   `json:"rider_name"`
	ActualValue string   `json:"actual_value"`
	Score       *float64 `json:"score,omitempty"`
	Placement   *int     `json:"placement,omitempty"`
}

// RecordSet is the normalized output of a parser. When a parser cannot
// classify the structure it falls back to RawRecords with
// NeedsManualMapping set; that is a valid terminal state, not an error.
type RecordSet struct {
	Events      []Event      `json:"events,omitempty"`
	Riders      []Rider      `json:"riders,omitempty"`
	Predictions []Prediction `json:"predictions,omitempty"`
	Results     []Result     `json:"results,omitempty"`

	// Fallback payload for unclassified tabular data.
	RawRecords []map[string]string `json:"raw_data,omitempty"`
	Columns    []string            `json:"columns,omitempty"`

	// Free-text extraction payload for document, image and text inputs.
	ExtractedText  string   `json:"extracted_text,omitempty"`
	DetectedDates  []string `json:"detected_dates,omitempty"`
	DetectedScores []string `json:"detected_scores,omitempty"`

	Source             string `json:"source"`
	NeedsManualMapping bool   `json:"needs_manual_mapping,omitempty"`
	NeedsReview        bool   `json:"needs_review,omitempty"`
}

// Counts returns per-kind record counts for reporting.
func (rs *RecordSet) Counts() RecordCounts {
	if rs == nil {
		return RecordCounts{}
	}
	return RecordCounts{
		Events:      len(rs.Events),
		Riders:      len(rs.Riders),
		Predictions: len(rs.Predictions),
		Results:     len(rs.Results),
	}
}

// RecordCounts aggregates extracted entity counts.
type RecordCounts struct {
	Events      int `json:"events_count"`
	Riders      int `json:"riders_count"`
	Predictions int `json:"predictions_count"`
	Results     int `json:"results_count"`
}

// Add accumulates counts from another set.
func (c *RecordCounts) Add(other RecordCounts) {
	c.Events += other.Events
	c.Riders += other.Riders
	c.Predictions += other.Predictions
	c.Results += other.Results
}

// Verdict classifies a triage assessment.
type Verdict string

const (
	// Relevance verdicts (pre-extraction).
	VerdictRelevant   Verdict = "relevant"
	VerdictAmbiguous  Verdict = "ambiguous"
	VerdictIrrelevant Verdict = "irrelevant"

	// Quality verdicts (post-extraction).
	VerdictGood     Verdict = "good"
	VerdictMarginal Verdict = "marginal"
	VerdictPoor     Verdict = "poor"
)

// Action is the directive a triage assessment recommends.
type Action string

const (
	ActionProcess Action = "process"
	ActionReview  Action = "review"
	ActionReject  Action = "reject"
)

// Assessment is the output of a triage gate: verdict, score in [0,1],
// human-readable reasons and a recommended action.
type Assessment struct {
	Verdict Verdict  `json:"verdict"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
	Action  Action   `json:"action"`
}

// ReviewEntry is an append-only record of a submission routed for human
// follow-up. ID is the zero-based insertion index.
type ReviewEntry struct {
	ID          int        `json:"id"`
	Filename    string     `json:"filename"`
	ContentHash string     `json:"content_hash"`
	Reason      string     `json:"reason"`
	Assessment  Assessment `json:"assessment"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PushRecordType identifies the kind of record sent downstream.
type PushRecordType string

const (
	PushTypePrediction PushRecordType = "prediction"
	PushTypeResult     PushRecordType = "result"
)

// PushOutcome is the per-record result of a downstream publish attempt.
type PushOutcome struct {
	Type   PushRecordType `json:"type"`
	Status string         `json:"status"`
	ID     string         `json:"id,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Status is the terminal outcome of one pipeline run. Exactly one status
// applies per submission.
type Status string

const (
	StatusDuplicate   Status = "duplicate"
	StatusRejected    Status = "rejected"
	StatusNeedsReview Status = "needs_review"
	StatusProcessed   Status = "processed"
	StatusSuccess     Status = "success"

	// StatusError only appears in batch file results, never as a
	// single-submission terminal status.
	StatusError Status = "error"
)

// ProcessOptions are the caller-supplied flags for one pipeline run.
type ProcessOptions struct {
	AutoPush   bool
	SkipDedup  bool
	SkipTriage bool
}

// ProcessResult is the structured outcome of one pipeline run.
type ProcessResult struct {
	SubmissionID string        `json:"submission_id"`
	Filename     string        `json:"filename"`
	Status       Status        `json:"status"`
	ContentHash  string        `json:"content_hash,omitempty"`
	DataHash     string        `json:"data_hash,omitempty"`
	Relevance    *Assessment   `json:"relevance,omitempty"`
	Quality      *Assessment   `json:"quality,omitempty"`
	Counts       RecordCounts  `json:"processed_data"`
	PushOutcomes []PushOutcome `json:"push_results,omitempty"`
	ReviewID     *int          `json:"review_id,omitempty"`
	NeedsReview  bool          `json:"needs_review"`
}

// FileResult is one entry of a batch run.
type FileResult struct {
	Filename string         `json:"filename"`
	Status   Status         `json:"status"`
	Error    string         `json:"error,omitempty"`
	Result   *ProcessResult `json:"result,omitempty"`
}

// BatchResult aggregates a batch run. Totals sum only over files whose
// extraction completed.
type BatchResult struct {
	Totals      RecordCounts `json:"totals"`
	FileResults []FileResult `json:"file_results"`
}
