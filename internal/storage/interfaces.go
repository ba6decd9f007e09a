package storage

import (
	"context"

	"pricing-lab/internal/domain"
)

// PolicyStore provides access to policy portfolio storage.
type PolicyStore interface {
	// Insert adds a new policy. Returns ErrDuplicateKey if policy_id exists.
	Insert(ctx context.Context, p *domain.PolicyRecord) error

	// InsertBulk adds multiple policies atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, policies []*domain.PolicyRecord) error

	// GetByID retrieves a policy by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, policyID string) (*domain.PolicyRecord, error)

	// GetAll retrieves all policies, ordered by policy_id ASC.
	GetAll(ctx context.Context) ([]*domain.PolicyRecord, error)

	// GetByPlan retrieves all policies on a plan tier, ordered by policy_id ASC.
	GetByPlan(ctx context.Context, plan domain.Plan) ([]*domain.PolicyRecord, error)

	// Count returns the number of stored policies.
	Count(ctx context.Context) (int, error)
}

// PriceDecisionStore provides access to per-policy pricing outcomes.
type PriceDecisionStore interface {
	// Insert adds a new decision. Returns ErrDuplicateKey if (run_id, policy_id) exists.
	Insert(ctx context.Context, runID string, d *domain.PriceDecision) error

	// InsertBulk adds multiple decisions atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, runID string, decisions []domain.PriceDecision) error

	// GetByPolicyID retrieves a decision for a run. Returns ErrNotFound if not exists.
	GetByPolicyID(ctx context.Context, runID, policyID string) (*domain.PriceDecision, error)

	// GetByRun retrieves all decisions for a run, ordered by policy_id ASC.
	GetByRun(ctx context.Context, runID string) ([]domain.PriceDecision, error)
}

// ExperimentResultStore provides access to scenario x strategy experiment
// results.
type ExperimentResultStore interface {
	// Insert adds a new result. Returns ErrDuplicateKey if (scenario, strategy) exists.
	Insert(ctx context.Context, r *domain.ExperimentResult) error

	// InsertBulk adds multiple results atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, results []*domain.ExperimentResult) error

	// GetByKey retrieves one grid cell. Returns ErrNotFound if not exists.
	GetByKey(ctx context.Context, scenario, strategy string) (*domain.ExperimentResult, error)

	// GetAll retrieves all results, ordered by (scenario, strategy) ASC.
	GetAll(ctx context.Context) ([]*domain.ExperimentResult, error)
}
