package quota

import (
	"context"
	"sync"
)

// implements Store in memory
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]UsageRecord
}

// creates a new in-memory usage store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]UsageRecord),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (UsageRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *MemoryStore) IncrementWithCeiling(_ context.Context, key, today string, limit int) (UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[key]
	if rec.Date != today {
		rec = UsageRecord{Date: today}
	}

	if limit >= 0 && rec.Count >= limit {
		return rec, ErrQuotaExceeded
	}

	rec.Count++
	s.records[key] = rec

	return rec, nil
}

// seeds a record directly (tests, imports)
func (s *MemoryStore) Put(key string, rec UsageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = rec
}
