package storage

import (
	"context"
	"sync"

	"finrep/internal/core"
)

// MemoryStore keeps the snapshot in process memory. Used as the dev backend
// and as the test fixture. Reads and writes exchange deep copies so callers
// never share slices with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	periods []core.ReportingPeriod
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadPeriods(_ context.Context) ([]core.ReportingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.ClonePeriods(s.periods), nil
}

func (s *MemoryStore) SavePeriods(_ context.Context, periods []core.ReportingPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods = core.ClonePeriods(periods)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
