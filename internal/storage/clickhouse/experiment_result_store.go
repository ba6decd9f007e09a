package clickhouse

import (
	"context"
	"fmt"

	"pricing-lab/internal/domain"
	"pricing-lab/internal/storage"
)

// ExperimentResultStore implements storage.ExperimentResultStore using ClickHouse.
type ExperimentResultStore struct {
	conn *Conn
}

// NewExperimentResultStore creates a new ExperimentResultStore.
func NewExperimentResultStore(conn *Conn) *ExperimentResultStore {
	return &ExperimentResultStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ExperimentResultStore = (*ExperimentResultStore)(nil)

const insertResultQuery = `
	INSERT INTO experiment_results (
		scenario, strategy,
		avg_price, quote_acceptance, decline_rate, loss_ratio,
		gwp, contribution, ave_claims, out_of_control_pct,
		target_price, expected_ltv, policies_quotable
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectResultColumns = `
	scenario, strategy,
	avg_price, quote_acceptance, decline_rate, loss_ratio,
	gwp, contribution, ave_claims, out_of_control_pct,
	target_price, expected_ltv, policies_quotable
`

// Insert adds a new result. Returns ErrDuplicateKey if (scenario, strategy) exists.
func (s *ExperimentResultStore) Insert(ctx context.Context, r *domain.ExperimentResult) error {
	exists, err := s.exists(ctx, r.Scenario, r.Strategy)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	if err := s.conn.Exec(ctx, insertResultQuery, resultArgs(r)...); err != nil {
		return fmt.Errorf("insert experiment result: %w", err)
	}
	return nil
}

// InsertBulk adds multiple results atomically. Fails entire batch on any duplicate.
func (s *ExperimentResultStore) InsertBulk(ctx context.Context, results []*domain.ExperimentResult) error {
	if len(results) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{})
	for _, r := range results {
		key := r.Scenario + "|" + r.Strategy
		if _, exists := seen[key]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, r := range results {
		exists, err := s.exists(ctx, r.Scenario, r.Strategy)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, insertResultQuery)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, r := range results {
		if err := batch.Append(resultArgs(r)...); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByKey retrieves one grid cell. Returns ErrNotFound if not exists.
func (s *ExperimentResultStore) GetByKey(ctx context.Context, scenario, strategy string) (*domain.ExperimentResult, error) {
	query := `SELECT ` + selectResultColumns + ` FROM experiment_results WHERE scenario = ? AND strategy = ?`

	rows, err := s.conn.Query(ctx, query, scenario, strategy)
	if err != nil {
		return nil, fmt.Errorf("get experiment result: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, storage.ErrNotFound
	}
	return scanResult(rows)
}

// GetAll retrieves all results, ordered by (scenario, strategy) ASC.
func (s *ExperimentResultStore) GetAll(ctx context.Context) ([]*domain.ExperimentResult, error) {
	query := `SELECT ` + selectResultColumns + ` FROM experiment_results ORDER BY scenario ASC, strategy ASC`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all experiment results: %w", err)
	}
	defer rows.Close()

	var results []*domain.ExperimentResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate experiment results: %w", err)
	}
	return results, nil
}

func (s *ExperimentResultStore) exists(ctx context.Context, scenario, strategy string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM experiment_results WHERE scenario = ? AND strategy = ?`,
		scenario, strategy,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func resultArgs(r *domain.ExperimentResult) []any {
	return []any{
		r.Scenario, r.Strategy,
		r.AvgPrice, r.QuoteAcceptance, r.DeclineRate, r.LossRatio,
		r.GWP, r.Contribution, r.AVEClaims, r.OutOfControlPct,
		r.TargetPrice, r.ExpectedLTV, uint32(r.PoliciesQuotable),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*domain.ExperimentResult, error) {
	var (
		r        domain.ExperimentResult
		quotable uint32
	)
	err := row.Scan(
		&r.Scenario, &r.Strategy,
		&r.AvgPrice, &r.QuoteAcceptance, &r.DeclineRate, &r.LossRatio,
		&r.GWP, &r.Contribution, &r.AVEClaims, &r.OutOfControlPct,
		&r.TargetPrice, &r.ExpectedLTV, &quotable,
	)
	if err != nil {
		return nil, fmt.Errorf("scan experiment result: %w", err)
	}
	r.PoliciesQuotable = int(quotable)
	return &r, nil
}
