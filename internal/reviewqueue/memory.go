package reviewqueue

import (
	"context"
	"sync"
	"time"

	"github.com/rodeoai/ingest/internal/models"
)

// MemoryQueue is the default process-wide review queue. Created empty at
// process start, never persisted or pruned; unbounded growth across the
// process lifetime is a known limitation.
type MemoryQueue struct {
	mu      sync.RWMutex
	entries []models.ReviewEntry
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Add(ctx context.Context, filename, reason, contentHash string, assessment models.Assessment) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := len(q.entries)
	q.entries = append(q.entries, models.ReviewEntry{
		ID:          id,
		Filename:    filename,
		ContentHash: contentHash,
		Reason:      reason,
		Assessment:  assessment,
		CreatedAt:   time.Now().UTC(),
	})
	return id, nil
}

func (q *MemoryQueue) List(ctx context.Context) ([]models.ReviewEntry, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]models.ReviewEntry, len(q.entries))
	copy(out, q.entries)
	return out, nil
}

func (q *MemoryQueue) Len(ctx context.Context) (int, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.entries), nil
}

func (q *MemoryQueue) Close() error { return nil }
