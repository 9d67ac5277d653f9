package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Submission outcomes
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rodeo_ingest_submissions_total",
			Help: "Total submissions processed, by terminal status",
		},
		[]string{"status"},
	)

	SubmissionBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rodeo_ingest_submission_bytes_total",
			Help: "Total bytes of submitted file data",
		},
	)

	// Gate metrics
	DuplicatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rodeo_ingest_duplicates_total",
			Help: "Duplicate submissions detected, by fingerprint level",
		},
		[]string{"level"},
	)

	ReviewEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rodeo_ingest_review_entries_total",
			Help: "Entries appended to the review queue",
		},
	)

	// Extraction metrics
	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rodeo_ingest_extraction_duration_seconds",
			Help:    "Duration of format extraction in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ExtractionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rodeo_ingest_extraction_errors_total",
			Help: "Total extraction failures, including unsupported formats",
		},
	)

	RecordsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rodeo_ingest_records_extracted_total",
			Help: "Records extracted from submissions, by kind",
		},
		[]string{"kind"},
	)

	// Downstream push metrics
	PushOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rodeo_ingest_push_outcomes_total",
			Help: "Downstream push attempts, by record type and status",
		},
		[]string{"type", "status"},
	)

	PushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rodeo_ingest_push_duration_seconds",
			Help:    "Duration of downstream push calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
