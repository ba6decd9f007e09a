// Package orchestrator coordinates the E2E pricing pipeline.
// Flow: portfolio → claims → risk fitting → demand fitting → optimization →
// constraints → monitoring → KPIs → adequacy gate.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"pricing-lab/internal/config"
	"pricing-lab/internal/constraints"
	"pricing-lab/internal/decision"
	"pricing-lab/internal/demand"
	"pricing-lab/internal/domain"
	"pricing-lab/internal/evaluation"
	"pricing-lab/internal/monitoring"
	"pricing-lab/internal/population"
	"pricing-lab/internal/pricing"
	"pricing-lab/internal/risk"
	"pricing-lab/internal/storage"
)

// driftFeatures are the portfolio columns monitored for population drift.
var driftFeatures = []string{"age", "tenure", "smoker", "bmi", "plan", "ncd", "excess"}

// Orchestrator runs the pricing pipeline for one scenario and strategy.
type Orchestrator struct {
	cfg      *config.Config
	strategy domain.StrategyConfig
	scenario domain.ScenarioConfig

	policyStore   storage.PolicyStore
	decisionStore storage.PriceDecisionStore

	reference []*domain.PolicyRecord
	logger    zerolog.Logger
}

// Options for creating an Orchestrator.
type Options struct {
	Config   *config.Config
	Strategy domain.StrategyConfig
	Scenario domain.ScenarioConfig

	// Optional stores. When nil the run stays in memory.
	PolicyStore   storage.PolicyStore
	DecisionStore storage.PriceDecisionStore

	// Reference is an optional prior-period portfolio used as the drift
	// baseline. Nil skips drift detection.
	Reference []*domain.PolicyRecord

	Logger zerolog.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		cfg:           opts.Config,
		strategy:      opts.Strategy,
		scenario:      opts.Scenario,
		policyStore:   opts.PolicyStore,
		decisionStore: opts.DecisionStore,
		reference:     opts.Reference,
		logger:        opts.Logger,
	}
}

// RunResult contains everything one pipeline run produced.
type RunResult struct {
	RunID    string
	Scenario string
	Strategy string

	Policies  []*domain.PolicyRecord
	Profiles  []domain.RiskProfile
	Quotes    []domain.DemandQuote // realized at final prices
	Decisions []domain.PriceDecision

	BasePrice   float64
	MarketPrice float64
	Expenses    float64
	TargetPrice float64 // shared price, or mean target in per-policy mode
	ExpectedLTV float64

	KPI         domain.PortfolioKPI
	SegmentKPIs []domain.PortfolioKPI
	AVEByPlan   []monitoring.AVERow

	OutOfControlPct float64
	DriftPValues    map[string]float64

	Gate *decision.Result
}

// Run executes the full pipeline.
// Phases:
//  1. Load or generate the portfolio, simulate claims, apply scenario shocks
//  2. Fit frequency/severity models and estimate burn costs
//  3. Price the book: base price, demand model, grid optimization
//  4. Apply underwriting, caps/collars and discounts
//  5. Monitor, compute KPIs, gate the price book
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := fmt.Sprintf("%s-%s-%d", o.scenario.ScenarioID, o.strategy.StrategyID, o.cfg.Seed)
	result := &RunResult{
		RunID:    runID,
		Scenario: o.scenario.ScenarioID,
		Strategy: o.strategy.StrategyID,
	}
	log := o.logger.With().Str("run_id", runID).Logger()

	// Phase 1: portfolio and claims
	log.Info().Msg("phase 1: loading portfolio")
	rng := population.NewSource(o.cfg.Seed)
	policies, err := o.loadPortfolio(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (portfolio): %w", err)
	}
	if o.scenario.ClaimsInflation != 1.0 {
		for _, p := range policies {
			p.Incurred *= o.scenario.ClaimsInflation
		}
	}
	result.Policies = policies
	log.Info().Int("policies", len(policies)).Msg("portfolio ready")

	// Phase 2: risk models and burn costs
	log.Info().Msg("phase 2: fitting risk models")
	estimator, err := risk.Fit(policies)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (risk fit): %w", err)
	}
	profiles := estimator.EstimateAll(policies)
	result.Profiles = profiles

	meanBurn := risk.MeanBurnCost(profiles)
	result.BasePrice = meanBurn * (1.0 + o.strategy.ProfitMargin)
	result.MarketPrice = result.BasePrice * o.cfg.MarketPriceFactor /
		(o.scenario.DemandShock * o.strategy.DemandShockFactor)
	result.Expenses = o.cfg.BaseExpense * o.strategy.ExpenseMultiplier * o.scenario.ExpenseChange
	log.Info().
		Float64("mean_burn", meanBurn).
		Float64("base_price", result.BasePrice).
		Float64("market_price", result.MarketPrice).
		Msg("burn costs estimated")

	// Phase 3: demand model and price optimization
	log.Info().Msg("phase 3: optimizing prices")
	trainingQuotes := demand.Simulate(rng, policies, result.BasePrice, result.MarketPrice)
	model, err := demand.Fit(policies, trainingQuotes)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (demand fit): %w", err)
	}

	targets, err := o.optimize(model, policies, profiles, result)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (optimization): %w", err)
	}

	// Phase 4: constraint chain
	log.Info().Msg("phase 4: applying constraints")
	chain := constraints.NewPipeline(o.strategy)
	previousPrice := result.BasePrice * o.cfg.PreviousPriceFactor
	decisions := make([]domain.PriceDecision, len(policies))
	finalPrices := make([]*float64, len(policies))
	for i, p := range policies {
		decisions[i] = chain.Apply(p, result.BasePrice, targets[i].TargetPrice, previousPrice, targets[i].ExpectedLTV)
		finalPrices[i] = decisions[i].FinalPrice
	}
	result.Decisions = decisions

	// Phase 5: realized acceptance, monitoring, KPIs, gate
	log.Info().Msg("phase 5: monitoring and KPIs")
	quotes := demand.SimulateAt(rng, policies, finalPrices, result.MarketPrice)
	result.Quotes = quotes

	result.AVEByPlan = monitoring.AVETable(policies, profiles, quotes, monitoring.SegmentByPlan)
	result.OutOfControlPct = monitoring.OutOfControlShare(incurredSeries(policies, quotes), o.cfg.ControlK)

	if len(o.reference) > 0 {
		pvalues, err := monitoring.DetectDrift(o.reference, policies, driftFeatures)
		if err != nil {
			return nil, fmt.Errorf("phase 5 (drift): %w", err)
		}
		result.DriftPValues = pvalues
	}

	kpi, err := evaluation.Overall(policies, profiles, quotes, decisions)
	if err != nil {
		return nil, fmt.Errorf("phase 5 (KPIs): %w", err)
	}
	result.KPI = kpi
	result.SegmentKPIs, err = evaluation.Summarize(policies, profiles, quotes, decisions, evaluation.SegmentFunc(monitoring.SegmentByPlan))
	if err != nil {
		return nil, fmt.Errorf("phase 5 (segment KPIs): %w", err)
	}

	builder := decision.NewBuilder()
	gateInput := builder.FromKPI(o.scenario.ScenarioID, o.strategy.StrategyID, kpi, result.OutOfControlPct, result.DriftPValues)
	result.Gate = decision.NewEvaluator().Evaluate(gateInput)
	log.Info().
		Str("decision", string(result.Gate.Decision)).
		Float64("gwp", kpi.GWP).
		Msg("price book gated")

	if o.decisionStore != nil {
		if err := o.decisionStore.InsertBulk(ctx, runID, decisions); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("persist decisions: %w", err)
		}
	}

	return result, nil
}

// loadPortfolio returns the stored portfolio when one exists, otherwise
// generates a synthetic book with simulated claims and persists it if a
// store is configured.
func (o *Orchestrator) loadPortfolio(ctx context.Context, rng *rand.Rand) ([]*domain.PolicyRecord, error) {
	if o.policyStore != nil {
		count, err := o.policyStore.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return o.policyStore.GetAll(ctx)
		}
	}

	policies := population.Generate(rng, o.cfg.PortfolioSize)
	population.SimulateClaims(rng, policies)

	if o.policyStore != nil {
		if err := o.policyStore.InsertBulk(ctx, policies); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, err
		}
	}
	return policies, nil
}

// optimize runs the configured optimization mode and returns one target per
// policy. Portfolio mode assigns the shared optimum to every policy.
func (o *Orchestrator) optimize(model *demand.Model, policies []*domain.PolicyRecord, profiles []domain.RiskProfile, result *RunResult) ([]pricing.PolicyTarget, error) {
	burnCosts := make([]float64, len(profiles))
	for i, pr := range profiles {
		burnCosts[i] = pr.BurnCost
	}

	in := pricing.Input{
		BasePrice: result.BasePrice,
		PriceGrid: pricing.GridFromMultipliers(result.BasePrice, o.cfg.PriceGrid),
		Scorer:    model,
		Policies:  policies,
		BurnCosts: burnCosts,
		Expenses:  result.Expenses,
	}

	mode, err := pricing.ParseMode(o.cfg.OptimizationMode)
	if err != nil {
		return nil, err
	}

	switch mode {
	case pricing.ModePerPolicy:
		targets, err := pricing.OptimizePerPolicy(in)
		if err != nil {
			return nil, err
		}
		var priceSum, ltvSum float64
		for _, t := range targets {
			priceSum += t.TargetPrice
			ltvSum += t.ExpectedLTV
		}
		result.TargetPrice = priceSum / float64(len(targets))
		result.ExpectedLTV = ltvSum / float64(len(targets))
		return targets, nil

	default:
		price, ltv, err := pricing.OptimizePortfolio(in)
		if err != nil {
			return nil, err
		}
		result.TargetPrice = price
		result.ExpectedLTV = ltv

		targets := make([]pricing.PolicyTarget, len(policies))
		for i, p := range policies {
			targets[i] = pricing.PolicyTarget{PolicyID: p.PolicyID, TargetPrice: price, ExpectedLTV: ltv}
		}
		return targets, nil
	}
}

// incurredSeries collects incurred claims over the accepted book, the series
// tracked on the control chart.
func incurredSeries(policies []*domain.PolicyRecord, quotes []domain.DemandQuote) []float64 {
	series := make([]float64, 0, len(policies))
	for i, p := range policies {
		if quotes[i].Accepted {
			series = append(series, p.Incurred)
		}
	}
	return series
}
