package dedup

import (
	"context"
	"sync"
)

// MemoryStore is the default in-process fingerprint registry. State is
// created empty at process start and lives for the process lifetime.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

func (s *MemoryStore) CheckAndRegister(ctx context.Context, namespace, fingerprint string) (bool, error) {
	key := namespace + ":" + fingerprint

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[key]; ok {
		return true, nil
	}
	s.seen[key] = struct{}{}
	return false, nil
}

func (s *MemoryStore) Close() error { return nil }
