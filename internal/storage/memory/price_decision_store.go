package memory

import (
	"context"
	"sort"
	"sync"

	"pricing-lab/internal/domain"
	"pricing-lab/internal/storage"
)

// decisionKey identifies one decision within one pipeline run.
type decisionKey struct {
	runID    string
	policyID string
}

// PriceDecisionStore is an in-memory implementation of storage.PriceDecisionStore.
type PriceDecisionStore struct {
	mu   sync.RWMutex
	data map[decisionKey]domain.PriceDecision
}

// NewPriceDecisionStore creates a new in-memory price decision store.
func NewPriceDecisionStore() *PriceDecisionStore {
	return &PriceDecisionStore{
		data: make(map[decisionKey]domain.PriceDecision),
	}
}

// Insert adds a new decision. Returns ErrDuplicateKey if (run_id, policy_id) exists.
func (s *PriceDecisionStore) Insert(_ context.Context, runID string, d *domain.PriceDecision) error {
	if d == nil || runID == "" || d.PolicyID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := decisionKey{runID: runID, policyID: d.PolicyID}
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[key] = copyDecision(*d)
	return nil
}

// InsertBulk adds multiple decisions atomically. Fails entire batch on any duplicate.
func (s *PriceDecisionStore) InsertBulk(_ context.Context, runID string, decisions []domain.PriceDecision) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range decisions {
		if d.PolicyID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[decisionKey{runID: runID, policyID: d.PolicyID}]; exists {
			return storage.ErrDuplicateKey
		}
	}

	for _, d := range decisions {
		s.data[decisionKey{runID: runID, policyID: d.PolicyID}] = copyDecision(d)
	}
	return nil
}

// GetByPolicyID retrieves a decision for a run. Returns ErrNotFound if not exists.
func (s *PriceDecisionStore) GetByPolicyID(_ context.Context, runID, policyID string) (*domain.PriceDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.data[decisionKey{runID: runID, policyID: policyID}]
	if !exists {
		return nil, storage.ErrNotFound
	}

	out := copyDecision(d)
	return &out, nil
}

// GetByRun retrieves all decisions for a run, ordered by policy_id ASC.
func (s *PriceDecisionStore) GetByRun(_ context.Context, runID string) ([]domain.PriceDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.PriceDecision
	for key, d := range s.data {
		if key.runID == runID {
			result = append(result, copyDecision(d))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PolicyID < result[j].PolicyID
	})

	return result, nil
}

// copyDecision deep-copies the optional price pointers so callers cannot
// mutate stored values.
func copyDecision(d domain.PriceDecision) domain.PriceDecision {
	out := d
	if d.CappedPrice != nil {
		out.CappedPrice = domain.Float64Ptr(*d.CappedPrice)
	}
	if d.FinalPrice != nil {
		out.FinalPrice = domain.Float64Ptr(*d.FinalPrice)
	}
	return out
}

// Ensure PriceDecisionStore implements storage.PriceDecisionStore
var _ storage.PriceDecisionStore = (*PriceDecisionStore)(nil)
