// Package memory implements the persistent store in process memory, for
// tests and one-shot pipeline runs that only export CSV.
package memory

import (
	"context"
	"sync"

	"surveycore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

// Store holds the latest snapshots in memory.
type Store struct {
	mu         sync.RWMutex
	dataset    domain.Dataset
	hasDataset bool
	results    domain.AnalysisResult
	hasResults bool
}

// NewStore returns an empty in-memory store.
func NewStore() *Store { return &Store{} }

// SaveDataset replaces the stored dataset snapshot.
func (s *Store) SaveDataset(_ context.Context, ds domain.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
	s.hasDataset = true
	return nil
}

// Dataset returns the stored dataset, if any.
func (s *Store) Dataset(_ context.Context) (domain.Dataset, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset, s.hasDataset, nil
}

// SaveResults replaces the stored analysis snapshot.
func (s *Store) SaveResults(_ context.Context, res domain.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = res
	s.hasResults = true
	return nil
}

// Results returns the stored analysis, if any.
func (s *Store) Results(_ context.Context) (domain.AnalysisResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results, s.hasResults, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
