// Package pricing selects the premium that maximizes expected contribution
// over a finite price grid.
package pricing

import (
	"errors"
	"fmt"
	"sync"

	"pricing-lab/internal/domain"
)

// Optimizer errors.
var (
	// ErrEmptyPriceGrid is a configuration error: an empty grid must fail
	// fast, never silently return the base price.
	ErrEmptyPriceGrid = errors.New("pricing: empty price grid")

	// ErrInputMismatch is returned when policies and burn costs disagree in
	// length.
	ErrInputMismatch = errors.New("pricing: policies and burn costs length mismatch")

	// ErrNoPolicies is returned when there is nothing to price.
	ErrNoPolicies = errors.New("pricing: no policies to optimize")
)

// Mode selects the optimization granularity. The two modes produce
// materially different portfolio outcomes, so the choice is explicit.
type Mode string

// Optimization modes.
const (
	// ModePortfolio picks one shared price maximizing the portfolio-mean
	// expected contribution.
	ModePortfolio Mode = "portfolio"

	// ModePerPolicy optimizes each policy independently.
	ModePerPolicy Mode = "per_policy"
)

// ParseMode parses an optimization mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePortfolio, ModePerPolicy:
		return Mode(s), nil
	}
	return "", fmt.Errorf("pricing: unknown optimization mode %q", s)
}

// Scorer supplies acceptance probabilities at counterfactual relative
// prices. Implemented by demand.Model.
type Scorer interface {
	Score(relPrice float64, p *domain.PolicyRecord) float64
}

// Input carries everything the grid search needs.
type Input struct {
	BasePrice float64
	PriceGrid []float64 // absolute candidate prices, evaluated in order
	Scorer    Scorer
	Policies  []*domain.PolicyRecord
	BurnCosts []float64 // per policy, aligned with Policies
	Expenses  float64
}

func (in Input) validate() error {
	if len(in.PriceGrid) == 0 {
		return ErrEmptyPriceGrid
	}
	if len(in.Policies) == 0 {
		return ErrNoPolicies
	}
	if len(in.Policies) != len(in.BurnCosts) {
		return ErrInputMismatch
	}
	return nil
}

// contribution is the expected lifetime value of quoting price to a policy:
// acceptance probability times the margin if accepted.
func contribution(prob, price, burnCost, expenses float64) float64 {
	return prob * (price - burnCost - expenses)
}

// OptimizePortfolio evaluates every grid price against the whole portfolio
// and returns the single price with the highest mean expected contribution.
// Grid points are scored in parallel; ties break to the earliest grid point,
// regardless of execution order.
func OptimizePortfolio(in Input) (float64, float64, error) {
	if err := in.validate(); err != nil {
		return 0, 0, err
	}

	values := make([]float64, len(in.PriceGrid))
	var wg sync.WaitGroup
	for gi, price := range in.PriceGrid {
		wg.Add(1)
		go func(gi int, price float64) {
			defer wg.Done()
			rel := price / in.BasePrice
			sum := 0.0
			for i, p := range in.Policies {
				prob := in.Scorer.Score(rel, p)
				sum += contribution(prob, price, in.BurnCosts[i], in.Expenses)
			}
			values[gi] = sum / float64(len(in.Policies))
		}(gi, price)
	}
	wg.Wait()

	best := 0
	for gi := 1; gi < len(values); gi++ {
		if values[gi] > values[best] {
			best = gi
		}
	}
	return in.PriceGrid[best], values[best], nil
}

// PolicyTarget is the per-policy result of ModePerPolicy optimization.
type PolicyTarget struct {
	PolicyID    string
	TargetPrice float64
	ExpectedLTV float64
}

// OptimizePerPolicy runs an independent scalar grid search per policy.
// Policies are scored in parallel; within each policy the grid is scanned in
// order with first-maximum tie-breaking.
func OptimizePerPolicy(in Input) ([]PolicyTarget, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	targets := make([]PolicyTarget, len(in.Policies))
	var wg sync.WaitGroup
	for i := range in.Policies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := in.Policies[i]

			bestValue := 0.0
			bestPrice := 0.0
			for gi, price := range in.PriceGrid {
				prob := in.Scorer.Score(price/in.BasePrice, p)
				v := contribution(prob, price, in.BurnCosts[i], in.Expenses)
				if gi == 0 || v > bestValue {
					bestValue = v
					bestPrice = price
				}
			}
			targets[i] = PolicyTarget{
				PolicyID:    p.PolicyID,
				TargetPrice: bestPrice,
				ExpectedLTV: bestValue,
			}
		}(i)
	}
	wg.Wait()

	return targets, nil
}

// GridFromMultipliers expands base-price multipliers into absolute prices.
func GridFromMultipliers(basePrice float64, multipliers []float64) []float64 {
	grid := make([]float64, len(multipliers))
	for i, m := range multipliers {
		grid[i] = basePrice * m
	}
	return grid
}
