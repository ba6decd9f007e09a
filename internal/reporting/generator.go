package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"pricing-lab/internal/orchestrator"
	"pricing-lab/internal/storage"
)

// Generator produces reports from a pipeline run plus stored experiment data.
type Generator struct {
	resultStore storage.ExperimentResultStore // optional
	now         func() time.Time              // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. resultStore may be nil when
// no experiment grid was run.
func NewGenerator(resultStore storage.ExperimentResultStore) *Generator {
	return &Generator{
		resultStore: resultStore,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate assembles the full report for one pipeline run.
func (g *Generator) Generate(ctx context.Context, run *orchestrator.RunResult) (*Report, error) {
	report := &Report{
		GeneratedAt: g.now(),
		RunID:       run.RunID,
		Scenario:    run.Scenario,
		Strategy:    run.Strategy,
		Summary: PortfolioSummary{
			Policies:        len(run.Policies),
			Quotable:        run.KPI.Policies,
			Declined:        run.KPI.Declined,
			BasePrice:       run.BasePrice,
			MarketPrice:     run.MarketPrice,
			TargetPrice:     run.TargetPrice,
			Expenses:        run.Expenses,
			OutOfControlPct: run.OutOfControlPct,
		},
		KPI:         run.KPI,
		SegmentKPIs: run.SegmentKPIs,
		AVEByPlan:   run.AVEByPlan,
		Gate:        run.Gate,
	}

	if g.resultStore != nil {
		results, err := g.resultStore.GetAll(ctx)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		for _, r := range results {
			report.ExperimentResults = append(report.ExperimentResults, *r)
		}
		sort.Slice(report.ExperimentResults, func(i, j int) bool {
			a, b := report.ExperimentResults[i], report.ExperimentResults[j]
			if a.Scenario != b.Scenario {
				return a.Scenario < b.Scenario
			}
			return a.Strategy < b.Strategy
		})
	}

	return report, nil
}
