package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"pricing-lab/internal/decision"
	"pricing-lab/internal/domain"
	"pricing-lab/internal/monitoring"
	"pricing-lab/internal/orchestrator"
	"pricing-lab/internal/storage/memory"
)

func ratio(v float64) *float64 { return &v }

func sampleRun() *orchestrator.RunResult {
	return &orchestrator.RunResult{
		RunID:    "base-base-100",
		Scenario: "base",
		Strategy: "base",
		Policies: make([]*domain.PolicyRecord, 100),
		KPI: domain.PortfolioKPI{
			Policies:     90,
			Declined:     10,
			GWP:          95000,
			Claims:       70000,
			Contribution: 25000,
			RenewalRate:  0.75,
			LossRatio:    ratio(0.7368),
			AVEClaims:    ratio(1.01),
		},
		SegmentKPIs: []domain.PortfolioKPI{
			{Segment: "Basic", Policies: 40, GWP: 30000, DegenerateFields: []string{"ave_claims"}},
			{Segment: "Premium", Policies: 50, GWP: 65000, LossRatio: ratio(0.8)},
		},
		AVEByPlan: []monitoring.AVERow{
			{Segment: "Basic", Policies: 40, ActualIncurred: 500, ExpectedBurnCost: 510, Ratio: ratio(0.98), Acceptance: 0.7},
			{Segment: "Premium", Policies: 50, ActualIncurred: 900, ExpectedBurnCost: 0, Degenerate: true},
		},
		BasePrice:       1000,
		MarketPrice:     1050,
		TargetPrice:     1100,
		Expenses:        200,
		OutOfControlPct: 0.004,
		Gate: &decision.Result{
			Decision: decision.DecisionGO,
			GOCriteria: []decision.CriterionResult{
				{Name: "Loss ratio below break-even", Threshold: "< 1.00", Actual: "0.7368", Pass: true},
			},
			NOGOChecks: []decision.CriterionResult{
				{Name: "Empty book", Threshold: "GWP == 0", Actual: "95000.00", Pass: true},
			},
		},
	}
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewExperimentResultStore()

	rows := []*domain.ExperimentResult{
		{Scenario: "price_war", Strategy: "base", GWP: 80000, LossRatio: ratio(0.95)},
		{Scenario: "base", Strategy: "base", GWP: 95000, LossRatio: ratio(0.74)},
	}
	if err := store.InsertBulk(ctx, rows); err != nil {
		t.Fatalf("seed results: %v", err)
	}

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator(store).WithClock(func() time.Time { return fixed })

	report, err := gen.Generate(ctx, sampleRun())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.GeneratedAt != fixed {
		t.Errorf("GeneratedAt = %v, want %v", report.GeneratedAt, fixed)
	}
	if report.Summary.Policies != 100 || report.Summary.Quotable != 90 || report.Summary.Declined != 10 {
		t.Errorf("summary = %+v", report.Summary)
	}
	if len(report.ExperimentResults) != 2 {
		t.Fatalf("got %d experiment rows, want 2", len(report.ExperimentResults))
	}
	// sorted by scenario
	if report.ExperimentResults[0].Scenario != "base" || report.ExperimentResults[1].Scenario != "price_war" {
		t.Errorf("experiment rows not sorted: %s, %s",
			report.ExperimentResults[0].Scenario, report.ExperimentResults[1].Scenario)
	}
}

func TestGenerator_Generate_NoStore(t *testing.T) {
	gen := NewGenerator(nil)

	report, err := gen.Generate(context.Background(), sampleRun())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(report.ExperimentResults) != 0 {
		t.Errorf("expected no experiment rows without a store")
	}
}

func TestRenderMarkdown_Sections(t *testing.T) {
	gen := NewGenerator(nil)
	report, err := gen.Generate(context.Background(), sampleRun())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)

	for _, want := range []string{
		"# Pricing Run Report",
		"## Portfolio Summary",
		"## Portfolio KPIs",
		"| overall | 90 | 10 |",
		"## Actual vs Expected by Plan",
		"## Adequacy Gate: GO",
		"No experiment results available.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	// degenerate AVE row keeps its place with an n/a ratio
	if !strings.Contains(md, "| Premium | 50 | 900.00 | 0.00 | n/a |") {
		t.Error("degenerate AVE row should render with n/a ratio")
	}
}

func TestRenderExperimentCSV(t *testing.T) {
	results := []domain.ExperimentResult{
		{Scenario: "base", Strategy: "base", AvgPrice: 1000, GWP: 95000, LossRatio: ratio(0.74)},
		{Scenario: "combined_shock", Strategy: "conservative", GWP: 0},
	}

	csv := RenderExperimentCSV(results)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "scenario,strategy,") {
		t.Errorf("bad header: %s", lines[0])
	}
	// nil loss ratio renders as an empty cell
	if !strings.Contains(lines[2], ",,") {
		t.Errorf("nil ratio should render empty: %s", lines[2])
	}
}

func TestRenderKPICSV(t *testing.T) {
	kpis := []domain.PortfolioKPI{
		{Policies: 90, GWP: 95000, LossRatio: ratio(0.74)},
		{Segment: "Basic", Policies: 40, DegenerateFields: []string{"loss_ratio", "ave_gwp"}},
	}

	csv := RenderKPICSV(kpis)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], "overall,") {
		t.Errorf("empty segment should render as overall: %s", lines[1])
	}
	if !strings.Contains(lines[2], "loss_ratio;ave_gwp") {
		t.Errorf("degenerate fields should join with semicolons: %s", lines[2])
	}
}
