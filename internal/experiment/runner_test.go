package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"pricing-lab/internal/config"
	"pricing-lab/internal/domain"
	"pricing-lab/internal/observability"
	"pricing-lab/internal/storage/memory"
)

func testRunner(t *testing.T, store *memory.ExperimentResultStore) *Runner {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.PortfolioSize = 1200

	opts := Options{Config: cfg, Workers: 2, Logger: zerolog.Nop()}
	if store != nil {
		opts.ResultStore = store
	}
	return NewRunner(opts)
}

func TestRunner_Run_FullGrid(t *testing.T) {
	store := memory.NewExperimentResultStore()
	runner := testRunner(t, store)

	scenarios := domain.AllScenarios()
	strategies := domain.AllStrategies()

	cellsBefore := testutil.ToFloat64(observability.DefaultMetrics.ExperimentCells.WithLabelValues("success"))

	report, err := runner.Run(context.Background(), scenarios, strategies)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantCells := len(scenarios) * len(strategies)
	if len(report.Results) != wantCells {
		t.Fatalf("got %d results, want %d (errors: %v)", len(report.Results), wantCells, report.Errors)
	}
	if len(report.Errors) != 0 {
		t.Errorf("unexpected cell errors: %v", report.Errors)
	}

	// grid order: scenario-major, strategy-minor
	idx := 0
	for _, sc := range scenarios {
		for _, st := range strategies {
			r := report.Results[idx]
			if r.Scenario != sc.ScenarioID || r.Strategy != st.StrategyID {
				t.Errorf("results[%d] = (%s, %s), want (%s, %s)",
					idx, r.Scenario, r.Strategy, sc.ScenarioID, st.StrategyID)
			}
			idx++
		}
	}

	for _, r := range report.Results {
		if r.PoliciesQuotable == 0 {
			t.Errorf("cell %s/%s has no quotable policies", r.Scenario, r.Strategy)
		}
		if r.AvgPrice <= 0 {
			t.Errorf("cell %s/%s AvgPrice = %v", r.Scenario, r.Strategy, r.AvgPrice)
		}
	}

	stored, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(stored) != wantCells {
		t.Errorf("stored %d results, want %d", len(stored), wantCells)
	}

	cellsAfter := testutil.ToFloat64(observability.DefaultMetrics.ExperimentCells.WithLabelValues("success"))
	if got := cellsAfter - cellsBefore; got != float64(wantCells) {
		t.Errorf("experiment cell counter advanced by %v, want %d", got, wantCells)
	}
}

func TestRunner_Run_ScenarioShocksMatter(t *testing.T) {
	runner := testRunner(t, nil)

	report, err := runner.Run(context.Background(),
		[]domain.ScenarioConfig{domain.ScenarioConfigBase, domain.ScenarioConfigMedicalInflation},
		[]domain.StrategyConfig{domain.StrategyBase})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(report.Results))
	}

	base, inflated := report.Results[0], report.Results[1]
	if base.LossRatio == nil || inflated.LossRatio == nil {
		t.Fatal("loss ratios should be defined on a populated book")
	}
	if *inflated.LossRatio <= *base.LossRatio {
		t.Errorf("claims inflation should raise the loss ratio: base %v, inflated %v",
			*base.LossRatio, *inflated.LossRatio)
	}
}

func TestRunner_Run_EmptyGrid(t *testing.T) {
	runner := testRunner(t, nil)

	if _, err := runner.Run(context.Background(), nil, domain.AllStrategies()); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("expected ErrEmptyGrid, got %v", err)
	}
	if _, err := runner.Run(context.Background(), domain.AllScenarios(), nil); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("expected ErrEmptyGrid, got %v", err)
	}
}

func TestRunner_Run_Deterministic(t *testing.T) {
	runner := testRunner(t, nil)

	scenarios := []domain.ScenarioConfig{domain.ScenarioConfigBase}
	strategies := []domain.StrategyConfig{domain.StrategyBase, domain.StrategyAggressive}

	first, err := runner.Run(context.Background(), scenarios, strategies)
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	second, err := runner.Run(context.Background(), scenarios, strategies)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	for i := range first.Results {
		if first.Results[i].GWP != second.Results[i].GWP {
			t.Errorf("cell %d GWP differs across runs: %v vs %v",
				i, first.Results[i].GWP, second.Results[i].GWP)
		}
		if first.Results[i].TargetPrice != second.Results[i].TargetPrice {
			t.Errorf("cell %d TargetPrice differs across runs", i)
		}
	}
}
