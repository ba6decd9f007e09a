// Package demand simulates quote acceptance and fits the logistic
// acceptance model used for counterfactual price scoring.
package demand

import (
	"math"
	"math/rand/v2"

	"pricing-lab/internal/domain"
)

// Simulate draws one acceptance outcome per policy at the given premium.
// The latent utility falls in the relative price and rises with tenure, age
// over 50 and the Premium tier. The returned quotes keep the acceptance
// probability and its Bernoulli realization as separate fields.
func Simulate(rng *rand.Rand, policies []*domain.PolicyRecord, premium, marketPrice float64) []domain.DemandQuote {
	relPrice := premium / marketPrice

	quotes := make([]domain.DemandQuote, len(policies))
	for i, p := range policies {
		quotes[i] = drawQuote(rng, p, relPrice)
	}
	return quotes
}

// SimulateAt draws one acceptance outcome per policy at per-policy premiums.
// A nil premium marks a declined policy: its quote carries zero probability
// and consumes no randomness.
func SimulateAt(rng *rand.Rand, policies []*domain.PolicyRecord, premiums []*float64, marketPrice float64) []domain.DemandQuote {
	quotes := make([]domain.DemandQuote, len(policies))
	for i, p := range policies {
		if premiums[i] == nil {
			quotes[i] = domain.DemandQuote{PolicyID: p.PolicyID}
			continue
		}
		quotes[i] = drawQuote(rng, p, *premiums[i]/marketPrice)
	}
	return quotes
}

func drawQuote(rng *rand.Rand, p *domain.PolicyRecord, relPrice float64) domain.DemandQuote {
	utility := 0.3 - 5.0*(relPrice-1.0) + 0.04*p.Tenure
	if p.Age > 50 {
		utility += 0.15
	}
	if p.Plan == domain.PlanPremium {
		utility += 0.5
	}
	utility += rng.NormFloat64() * 0.7

	prob := sigmoid(utility)
	return domain.DemandQuote{
		PolicyID:   p.PolicyID,
		RelPrice:   relPrice,
		AcceptProb: prob,
		Accepted:   rng.Float64() < prob,
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
