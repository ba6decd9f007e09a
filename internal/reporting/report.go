package reporting

import (
	"time"

	"pricing-lab/internal/decision"
	"pricing-lab/internal/domain"
	"pricing-lab/internal/monitoring"
)

// Report is the full pricing-run report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Scenario    string
	Strategy    string

	// Portfolio Summary
	Summary PortfolioSummary

	// Overall and per-plan KPIs
	KPI         domain.PortfolioKPI
	SegmentKPIs []domain.PortfolioKPI

	// Actual-vs-expected by plan tier
	AVEByPlan []monitoring.AVERow

	// Scenario x strategy grid (sorted by scenario, strategy)
	ExperimentResults []domain.ExperimentResult

	// Adequacy gate checklist
	Gate *decision.Result
}

// PortfolioSummary describes the priced book.
type PortfolioSummary struct {
	Policies        int
	Quotable        int
	Declined        int
	BasePrice       float64
	MarketPrice     float64
	TargetPrice     float64
	Expenses        float64
	OutOfControlPct float64
}
