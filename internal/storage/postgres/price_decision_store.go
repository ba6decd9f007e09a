package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pricing-lab/internal/domain"
	"pricing-lab/internal/storage"
)

// PriceDecisionStore implements storage.PriceDecisionStore using PostgreSQL.
type PriceDecisionStore struct {
	pool *Pool
}

// NewPriceDecisionStore creates a new PriceDecisionStore.
func NewPriceDecisionStore(pool *Pool) *PriceDecisionStore {
	return &PriceDecisionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceDecisionStore = (*PriceDecisionStore)(nil)

const decisionColumns = `
	policy_id, quotable, base_price, target_price, capped_price, final_price, discount, expected_ltv
`

const insertDecisionQuery = `
	INSERT INTO price_decisions (
		run_id, policy_id, quotable, base_price, target_price, capped_price, final_price, discount, expected_ltv
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Insert adds a new decision. Returns ErrDuplicateKey if (run_id, policy_id) exists.
func (s *PriceDecisionStore) Insert(ctx context.Context, runID string, d *domain.PriceDecision) error {
	_, err := s.pool.Exec(ctx, insertDecisionQuery, decisionArgs(runID, d)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert price decision: %w", err)
	}
	return nil
}

// InsertBulk adds multiple decisions atomically. Fails entire batch on any duplicate.
func (s *PriceDecisionStore) InsertBulk(ctx context.Context, runID string, decisions []domain.PriceDecision) error {
	if len(decisions) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range decisions {
		if _, err := tx.Exec(ctx, insertDecisionQuery, decisionArgs(runID, &decisions[i])...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert price decision in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByPolicyID retrieves a decision for a run. Returns ErrNotFound if not exists.
func (s *PriceDecisionStore) GetByPolicyID(ctx context.Context, runID, policyID string) (*domain.PriceDecision, error) {
	query := `SELECT ` + decisionColumns + ` FROM price_decisions WHERE run_id = $1 AND policy_id = $2`

	row := s.pool.QueryRow(ctx, query, runID, policyID)
	d, err := scanDecision(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get price decision: %w", err)
	}
	return d, nil
}

// GetByRun retrieves all decisions for a run, ordered by policy_id ASC.
func (s *PriceDecisionStore) GetByRun(ctx context.Context, runID string) ([]domain.PriceDecision, error) {
	query := `SELECT ` + decisionColumns + ` FROM price_decisions WHERE run_id = $1 ORDER BY policy_id ASC`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get price decisions by run: %w", err)
	}
	defer rows.Close()

	var result []domain.PriceDecision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price decision: %w", err)
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price decisions: %w", err)
	}
	return result, nil
}

// decisionArgs flattens a decision into insert arguments. Capped and final
// prices stay nullable: a declined policy has no price.
func decisionArgs(runID string, d *domain.PriceDecision) []any {
	return []any{
		runID,
		d.PolicyID,
		d.Quotable,
		d.BasePrice,
		d.TargetPrice,
		d.CappedPrice,
		d.FinalPrice,
		d.Discount,
		d.ExpectedLTV,
	}
}

// scanDecision reads one decision row.
func scanDecision(row pgx.Row) (*domain.PriceDecision, error) {
	var d domain.PriceDecision
	err := row.Scan(
		&d.PolicyID,
		&d.Quotable,
		&d.BasePrice,
		&d.TargetPrice,
		&d.CappedPrice,
		&d.FinalPrice,
		&d.Discount,
		&d.ExpectedLTV,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
