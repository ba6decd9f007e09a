package memory

import (
	"context"
	"sort"
	"sync"

	"pricing-lab/internal/domain"
	"pricing-lab/internal/storage"
)

// resultKey identifies one experiment grid cell.
type resultKey struct {
	scenario string
	strategy string
}

// ExperimentResultStore is an in-memory implementation of storage.ExperimentResultStore.
type ExperimentResultStore struct {
	mu   sync.RWMutex
	data map[resultKey]*domain.ExperimentResult
}

// NewExperimentResultStore creates a new in-memory experiment result store.
func NewExperimentResultStore() *ExperimentResultStore {
	return &ExperimentResultStore{
		data: make(map[resultKey]*domain.ExperimentResult),
	}
}

// Insert adds a new result. Returns ErrDuplicateKey if (scenario, strategy) exists.
func (s *ExperimentResultStore) Insert(_ context.Context, r *domain.ExperimentResult) error {
	if r == nil || r.Scenario == "" || r.Strategy == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := resultKey{scenario: r.Scenario, strategy: r.Strategy}
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	resultCopy := copyResult(*r)
	s.data[key] = &resultCopy
	return nil
}

// InsertBulk adds multiple results atomically. Fails entire batch on any duplicate.
func (s *ExperimentResultStore) InsertBulk(_ context.Context, results []*domain.ExperimentResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range results {
		if r == nil || r.Scenario == "" || r.Strategy == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[resultKey{scenario: r.Scenario, strategy: r.Strategy}]; exists {
			return storage.ErrDuplicateKey
		}
	}

	for _, r := range results {
		resultCopy := copyResult(*r)
		s.data[resultKey{scenario: r.Scenario, strategy: r.Strategy}] = &resultCopy
	}
	return nil
}

// GetByKey retrieves one grid cell. Returns ErrNotFound if not exists.
func (s *ExperimentResultStore) GetByKey(_ context.Context, scenario, strategy string) (*domain.ExperimentResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[resultKey{scenario: scenario, strategy: strategy}]
	if !exists {
		return nil, storage.ErrNotFound
	}

	resultCopy := copyResult(*r)
	return &resultCopy, nil
}

// GetAll retrieves all results, ordered by (scenario, strategy) ASC.
func (s *ExperimentResultStore) GetAll(_ context.Context) ([]*domain.ExperimentResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ExperimentResult, 0, len(s.data))
	for _, r := range s.data {
		resultCopy := copyResult(*r)
		result = append(result, &resultCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Scenario != result[j].Scenario {
			return result[i].Scenario < result[j].Scenario
		}
		return result[i].Strategy < result[j].Strategy
	})

	return result, nil
}

// copyResult deep-copies optional ratio pointers.
func copyResult(r domain.ExperimentResult) domain.ExperimentResult {
	out := r
	if r.LossRatio != nil {
		out.LossRatio = domain.Float64Ptr(*r.LossRatio)
	}
	if r.AVEClaims != nil {
		out.AVEClaims = domain.Float64Ptr(*r.AVEClaims)
	}
	return out
}

// Ensure ExperimentResultStore implements storage.ExperimentResultStore
var _ storage.ExperimentResultStore = (*ExperimentResultStore)(nil)
