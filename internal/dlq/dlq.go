// Package dlq records downstream push failures so records can be
// replayed once the store recovers.
package dlq

import (
	"context"
	"time"

	"github.com/rodeoai/ingest/internal/models"
)

// FailedRecord is one push attempt that could not be delivered.
type FailedRecord struct {
	Timestamp time.Time             `json:"timestamp"`
	Filename  string                `json:"filename"`
	Type      models.PushRecordType `json:"type"`
	Record    any                   `json:"record"`
	Error     string                `json:"error"`
	Reason    string                `json:"reason"`
}

// Writer is the DLQ contract consumed by the pipeline.
type Writer interface {
	Write(ctx context.Context, record *FailedRecord) error
}

// NopWriter discards failed records. Used when the DLQ is disabled; the
// per-record PushOutcome still reports the failure to the caller.
type NopWriter struct{}

func (NopWriter) Write(ctx context.Context, record *FailedRecord) error { return nil }
