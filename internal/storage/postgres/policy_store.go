package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pricing-lab/internal/domain"
	"pricing-lab/internal/storage"
)

// PolicyStore implements storage.PolicyStore using PostgreSQL.
type PolicyStore struct {
	pool *Pool
}

// NewPolicyStore creates a new PolicyStore.
func NewPolicyStore(pool *Pool) *PolicyStore {
	return &PolicyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PolicyStore = (*PolicyStore)(nil)

const policyColumns = `
	policy_id, age, gender, region, tenure, smoker, bmi, plan, ncd, excess, num_claims, incurred
`

const insertPolicyQuery = `
	INSERT INTO policies (
		policy_id, age, gender, region, tenure, smoker, bmi, plan, ncd, excess, num_claims, incurred
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// Insert adds a new policy. Returns ErrDuplicateKey if policy_id exists.
func (s *PolicyStore) Insert(ctx context.Context, p *domain.PolicyRecord) error {
	_, err := s.pool.Exec(ctx, insertPolicyQuery, policyArgs(p)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

// InsertBulk adds multiple policies atomically. Fails entire batch on any duplicate.
func (s *PolicyStore) InsertBulk(ctx context.Context, policies []*domain.PolicyRecord) error {
	if len(policies) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range policies {
		if _, err := tx.Exec(ctx, insertPolicyQuery, policyArgs(p)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert policy in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID retrieves a policy by its ID. Returns ErrNotFound if not exists.
func (s *PolicyStore) GetByID(ctx context.Context, policyID string) (*domain.PolicyRecord, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE policy_id = $1`

	row := s.pool.QueryRow(ctx, query, policyID)
	p, err := scanPolicy(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get policy by id: %w", err)
	}
	return p, nil
}

// GetAll retrieves all policies, ordered by policy_id ASC.
func (s *PolicyStore) GetAll(ctx context.Context) ([]*domain.PolicyRecord, error) {
	query := `SELECT ` + policyColumns + ` FROM policies ORDER BY policy_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all policies: %w", err)
	}
	defer rows.Close()

	return scanPolicies(rows)
}

// GetByPlan retrieves all policies on a plan tier, ordered by policy_id ASC.
func (s *PolicyStore) GetByPlan(ctx context.Context, plan domain.Plan) ([]*domain.PolicyRecord, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE plan = $1 ORDER BY policy_id ASC`

	rows, err := s.pool.Query(ctx, query, string(plan))
	if err != nil {
		return nil, fmt.Errorf("get policies by plan: %w", err)
	}
	defer rows.Close()

	return scanPolicies(rows)
}

// Count returns the number of stored policies.
func (s *PolicyStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM policies`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count policies: %w", err)
	}
	return count, nil
}

// policyArgs flattens a policy record into insert arguments.
func policyArgs(p *domain.PolicyRecord) []any {
	return []any{
		p.PolicyID,
		p.Age,
		p.Gender,
		p.Region,
		p.Tenure,
		string(p.Smoker),
		string(p.BMI),
		string(p.Plan),
		int(p.NCD),
		int(p.Excess),
		p.NumClaims,
		p.Incurred,
	}
}

// scanPolicy reads one policy row.
func scanPolicy(row pgx.Row) (*domain.PolicyRecord, error) {
	var (
		p           domain.PolicyRecord
		smoker      string
		bmi         string
		plan        string
		ncd, excess int
	)
	err := row.Scan(
		&p.PolicyID,
		&p.Age,
		&p.Gender,
		&p.Region,
		&p.Tenure,
		&smoker,
		&bmi,
		&plan,
		&ncd,
		&excess,
		&p.NumClaims,
		&p.Incurred,
	)
	if err != nil {
		return nil, err
	}

	// Code columns are validated on the way in; reject rows written around
	// the store.
	if p.Smoker, err = domain.ParseSmoker(smoker); err != nil {
		return nil, err
	}
	if p.BMI, err = domain.ParseBMICategory(bmi); err != nil {
		return nil, err
	}
	if p.Plan, err = domain.ParsePlan(plan); err != nil {
		return nil, err
	}
	if p.NCD, err = domain.NCDBandFromInt(ncd); err != nil {
		return nil, err
	}
	if p.Excess, err = domain.ExcessBandFromInt(excess); err != nil {
		return nil, err
	}
	return &p, nil
}

// scanPolicies reads all policy rows.
func scanPolicies(rows pgx.Rows) ([]*domain.PolicyRecord, error) {
	var result []*domain.PolicyRecord
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policies: %w", err)
	}
	return result, nil
}
