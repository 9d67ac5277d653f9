package reviewqueue

import (
	"context"

	"github.com/rodeoai/ingest/internal/models"
)

// UnknownHash marks entries whose submission skipped deduplication, so no
// content fingerprint exists.
const UnknownHash = "unknown"

// Queue is the durable holding area for submissions needing human
// follow-up. Entries are append-only and identified by their zero-based
// insertion index; compaction would break that scheme and is deliberately
// not offered.
type Queue interface {
	// Add appends an entry and returns its insertion index.
	Add(ctx context.Context, filename, reason, contentHash string, assessment models.Assessment) (int, error)

	// List returns the full ordered snapshot. No pagination.
	List(ctx context.Context) ([]models.ReviewEntry, error)

	// Len reports the number of entries.
	Len(ctx context.Context) (int, error)

	Close() error
}
