package memory

import (
	"context"
	"sort"
	"sync"

	"pricing-lab/internal/domain"
	"pricing-lab/internal/storage"
)

// PolicyStore is an in-memory implementation of storage.PolicyStore.
type PolicyStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PolicyRecord // keyed by policy_id
}

// NewPolicyStore creates a new in-memory policy store.
func NewPolicyStore() *PolicyStore {
	return &PolicyStore{
		data: make(map[string]*domain.PolicyRecord),
	}
}

// Insert adds a new policy. Returns ErrDuplicateKey if policy_id exists.
func (s *PolicyStore) Insert(_ context.Context, p *domain.PolicyRecord) error {
	if p == nil || p.PolicyID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.PolicyID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	policyCopy := *p
	s.data[p.PolicyID] = &policyCopy
	return nil
}

// InsertBulk adds multiple policies atomically. Fails entire batch on any duplicate.
func (s *PolicyStore) InsertBulk(_ context.Context, policies []*domain.PolicyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range policies {
		if p == nil || p.PolicyID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[p.PolicyID]; exists {
			return storage.ErrDuplicateKey
		}
	}

	for _, p := range policies {
		policyCopy := *p
		s.data[p.PolicyID] = &policyCopy
	}
	return nil
}

// GetByID retrieves a policy by its ID. Returns ErrNotFound if not exists.
func (s *PolicyStore) GetByID(_ context.Context, policyID string) (*domain.PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[policyID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	policyCopy := *p
	return &policyCopy, nil
}

// GetAll retrieves all policies, ordered by policy_id ASC.
func (s *PolicyStore) GetAll(_ context.Context) ([]*domain.PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PolicyRecord, 0, len(s.data))
	for _, p := range s.data {
		policyCopy := *p
		result = append(result, &policyCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PolicyID < result[j].PolicyID
	})

	return result, nil
}

// GetByPlan retrieves all policies on a plan tier, ordered by policy_id ASC.
func (s *PolicyStore) GetByPlan(_ context.Context, plan domain.Plan) ([]*domain.PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PolicyRecord
	for _, p := range s.data {
		if p.Plan == plan {
			policyCopy := *p
			result = append(result, &policyCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PolicyID < result[j].PolicyID
	})

	return result, nil
}

// Count returns the number of stored policies.
func (s *PolicyStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

// Ensure PolicyStore implements storage.PolicyStore
var _ storage.PolicyStore = (*PolicyStore)(nil)
