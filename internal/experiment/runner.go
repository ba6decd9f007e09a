// Package experiment runs the scenario x strategy experiment grid and
// collects one result row per cell.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"pricing-lab/internal/config"
	"pricing-lab/internal/domain"
	"pricing-lab/internal/observability"
	"pricing-lab/internal/orchestrator"
	"pricing-lab/internal/storage"
)

// Runner errors.
var (
	// ErrEmptyGrid is returned when no scenarios or no strategies are given.
	ErrEmptyGrid = errors.New("experiment grid is empty")
)

// Runner executes pipeline runs over a scenario x strategy grid.
type Runner struct {
	cfg     *config.Config
	store   storage.ExperimentResultStore
	workers int
	logger  zerolog.Logger
}

// Options for creating a Runner.
type Options struct {
	Config *config.Config

	// ResultStore is optional; nil keeps results in memory only.
	ResultStore storage.ExperimentResultStore

	// Workers bounds concurrent cells. Zero means GOMAXPROCS.
	Workers int

	Logger zerolog.Logger
}

// NewRunner creates a new experiment Runner.
func NewRunner(opts Options) *Runner {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{
		cfg:     opts.Config,
		store:   opts.ResultStore,
		workers: workers,
		logger:  opts.Logger,
	}
}

// RunReport contains the grid results plus per-cell failures.
type RunReport struct {
	Results []domain.ExperimentResult
	Errors  []string
}

// Run executes every (scenario, strategy) cell. Each cell regenerates the
// same seeded portfolio so rows differ only by their shocks and strategy
// knobs. Cells run concurrently on a bounded worker pool; results come back
// in grid order regardless of completion order.
func (r *Runner) Run(ctx context.Context, scenarios []domain.ScenarioConfig, strategies []domain.StrategyConfig) (*RunReport, error) {
	if len(scenarios) == 0 || len(strategies) == 0 {
		return nil, ErrEmptyGrid
	}

	type cell struct {
		scenario domain.ScenarioConfig
		strategy domain.StrategyConfig
		index    int
	}

	cells := make([]cell, 0, len(scenarios)*len(strategies))
	for _, sc := range scenarios {
		for _, st := range strategies {
			cells = append(cells, cell{scenario: sc, strategy: st, index: len(cells)})
		}
	}

	results := make([]*domain.ExperimentResult, len(cells))
	cellErrs := make([]string, len(cells))

	jobs := make(chan cell)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				run, err := r.runCell(ctx, c.scenario, c.strategy)
				if err != nil {
					observability.RecordExperimentCell("error")
					cellErrs[c.index] = fmt.Sprintf("cell %s/%s: %v",
						c.scenario.ScenarioID, c.strategy.StrategyID, err)
					continue
				}
				observability.RecordExperimentCell("success")
				results[c.index] = buildResult(run)
			}
		}()
	}

	for _, c := range cells {
		jobs <- c
	}
	close(jobs)
	wg.Wait()

	report := &RunReport{}
	for i, res := range results {
		if res != nil {
			report.Results = append(report.Results, *res)
		}
		if cellErrs[i] != "" {
			report.Errors = append(report.Errors, cellErrs[i])
		}
	}

	r.logger.Info().
		Int("cells", len(cells)).
		Int("results", len(report.Results)).
		Int("errors", len(report.Errors)).
		Msg("experiment grid completed")

	if r.store != nil && len(report.Results) > 0 {
		rows := make([]*domain.ExperimentResult, len(report.Results))
		for i := range report.Results {
			rows[i] = &report.Results[i]
		}
		if err := r.store.InsertBulk(ctx, rows); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("persist experiment results: %w", err)
		}
	}

	return report, nil
}

func (r *Runner) runCell(ctx context.Context, scenario domain.ScenarioConfig, strategy domain.StrategyConfig) (*orchestrator.RunResult, error) {
	orch := orchestrator.New(orchestrator.Options{
		Config:   r.cfg,
		Strategy: strategy,
		Scenario: scenario,
		Logger: r.logger.With().
			Str("scenario", scenario.ScenarioID).
			Str("strategy", strategy.StrategyID).
			Logger(),
	})
	return orch.Run(ctx)
}

// buildResult flattens one pipeline run into its grid row.
func buildResult(run *orchestrator.RunResult) *domain.ExperimentResult {
	var priceSum float64
	quotable := 0
	for _, d := range run.Decisions {
		if d.FinalPrice != nil {
			priceSum += *d.FinalPrice
			quotable++
		}
	}

	avgPrice := 0.0
	if quotable > 0 {
		avgPrice = priceSum / float64(quotable)
	}

	total := run.KPI.Policies + run.KPI.Declined
	declineRate := 0.0
	if total > 0 {
		declineRate = float64(run.KPI.Declined) / float64(total)
	}

	return &domain.ExperimentResult{
		Scenario:         run.Scenario,
		Strategy:         run.Strategy,
		AvgPrice:         avgPrice,
		QuoteAcceptance:  run.KPI.RenewalRate,
		DeclineRate:      declineRate,
		LossRatio:        run.KPI.LossRatio,
		GWP:              run.KPI.GWP,
		Contribution:     run.KPI.Contribution,
		AVEClaims:        run.KPI.AVEClaims,
		OutOfControlPct:  run.OutOfControlPct,
		TargetPrice:      run.TargetPrice,
		ExpectedLTV:      run.ExpectedLTV,
		PoliciesQuotable: run.KPI.Policies,
	}
}
