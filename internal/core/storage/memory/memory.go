package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tailorworks-lab/tailorworks/internal/core/analytics"
	"github.com/tailorworks-lab/tailorworks/internal/core/storage"
)

// Store is an in-memory implementation of storage.AnalyticsStore.
// Useful for testing and development. It enforces the same version
// contract as the Postgres adapter so CAS races stay testable.
type Store struct {
	mu      sync.RWMutex
	records map[int]*analytics.AnalyticsRecord
}

// NewStore creates an empty in-memory analytics store.
func NewStore() *Store {
	return &Store{records: make(map[int]*analytics.AnalyticsRecord)}
}

func (s *Store) Get(ctx context.Context, year int) (*analytics.AnalyticsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[year]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *Store) Put(ctx context.Context, rec *analytics.AnalyticsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.records[rec.Year]

	if rec.Version == 0 {
		if exists {
			return storage.ErrVersionConflict
		}
	} else if !exists || stored.Version != rec.Version {
		return storage.ErrVersionConflict
	}

	rec.Version++
	s.records[rec.Year] = rec.Clone()
	return nil
}

func (s *Store) ListYears(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	years := make([]int, 0, len(s.records))
	for year := range s.records {
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}

// Len reports the number of stored yearly records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
