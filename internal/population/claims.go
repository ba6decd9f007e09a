package population

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"pricing-lab/internal/domain"
)

// TrueRiskScore is the latent morbidity score the claims simulator draws
// from. The risk models never see it; they have to recover it from the
// observable attributes.
func TrueRiskScore(p *domain.PolicyRecord) float64 {
	ageFactor := 0.015 * float64(p.Age)

	smokerFactor := 0.0
	if p.Smoker == domain.SmokerYes {
		smokerFactor = 0.6
	}

	var bmiFactor float64
	switch p.BMI {
	case domain.BMIUnderweight:
		bmiFactor = 0.1
	case domain.BMIOverweight:
		bmiFactor = 0.3
	case domain.BMIObese:
		bmiFactor = 0.7
	}

	var planFactor float64
	switch p.Plan {
	case domain.PlanBudget:
		planFactor = 0.8
	case domain.PlanStandard:
		planFactor = 1.0
	case domain.PlanPremium:
		planFactor = 1.3
	}

	// Higher excess discourages small claims.
	excessFactor := -0.0002 * float64(p.Excess)

	score := (0.8 + ageFactor + smokerFactor + bmiFactor + excessFactor) * planFactor
	return math.Max(0.3, math.Min(5.0, score))
}

// SimulateClaims draws a claims experience for every policy and sets
// NumClaims and Incurred in place. Claim counts are Poisson with a
// log-linear rate in the latent risk score; individual claim amounts are
// Gamma with shape 2 and mean proportional to the score.
func SimulateClaims(rng *rand.Rand, policies []*domain.PolicyRecord) {
	const baseSeverity = 600.0

	for _, p := range policies {
		risk := TrueRiskScore(p)

		poisson := distuv.Poisson{Lambda: math.Exp(-3.5 + 0.4*risk), Src: rng}
		n := int(poisson.Rand())

		incurred := 0.0
		if n > 0 {
			meanSev := baseSeverity * risk
			gamma := distuv.Gamma{Alpha: 2.0, Beta: 2.0 / meanSev, Src: rng}
			for i := 0; i < n; i++ {
				incurred += gamma.Rand()
			}
		}

		p.NumClaims = n
		p.Incurred = incurred
	}
}
