// Package population generates synthetic policy portfolios and simulates
// their claims experience. All randomness flows through an explicitly seeded
// source so runs are reproducible.
package population

import (
	"fmt"
	"math"
	"math/rand/v2"

	"pricing-lab/internal/domain"
)

// NewSource returns a seeded PCG source. The same seed always yields the
// same portfolio.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

// regions and their population weights.
var regions = []string{
	"South West", "South East", "London", "East of England",
	"West Midlands", "East Midlands", "North West", "North East",
	"Yorkshire and the Humber", "Wales", "Scotland", "Northern Ireland",
}

var regionWeights = []float64{
	0.10, 0.10, 0.30, 0.05, 0.05, 0.10, 0.05, 0.06, 0.05, 0.06, 0.07, 0.01,
}

// weightedChoice picks index i with probability weights[i]. Weights must sum
// to 1.
func weightedChoice(rng *rand.Rand, weights []float64) int {
	u := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if u < acc {
			return i
		}
	}
	return len(weights) - 1
}

// Generate creates n synthetic policy records. The age distribution is a
// two-component mixture (children and adults), tenure is exponential and the
// categorical attributes follow fixed portfolio weights.
func Generate(rng *rand.Rand, n int) []*domain.PolicyRecord {
	policies := make([]*domain.PolicyRecord, n)

	bmiLevels := []domain.BMICategory{domain.BMIUnderweight, domain.BMINormal, domain.BMIOverweight, domain.BMIObese}
	bmiWeights := []float64{0.05, 0.40, 0.35, 0.20}

	planLevels := []domain.Plan{domain.PlanBudget, domain.PlanStandard, domain.PlanPremium}
	planWeights := []float64{0.1, 0.4, 0.5}

	ncdLevels := []domain.NCDBand{domain.NCD0, domain.NCD10, domain.NCD20, domain.NCD30}
	ncdWeights := []float64{0.1, 0.2, 0.4, 0.3}

	excessLevels := []domain.ExcessBand{domain.Excess0, domain.Excess250, domain.Excess500, domain.Excess1000, domain.Excess2000}
	excessWeights := []float64{0.4, 0.2, 0.2, 0.1, 0.1}

	for i := 0; i < n; i++ {
		// Age mixture: 25% children, 75% adults.
		var age float64
		if rng.Float64() < 0.25 {
			age = rng.NormFloat64()*6 + 10
		} else {
			age = rng.NormFloat64()*15 + 48
		}
		age = math.Max(0, math.Min(100, age))

		gender := "F"
		if rng.Float64() < 0.45 {
			gender = "M"
		}

		tenure := rng.ExpFloat64() * 4
		if tenure > 30 {
			tenure = 30
		}

		smoker := domain.SmokerNo
		if rng.Float64() < 0.15 {
			smoker = domain.SmokerYes
		}

		policies[i] = &domain.PolicyRecord{
			PolicyID: fmt.Sprintf("pol-%06d", i),
			Age:      int(age),
			Gender:   gender,
			Region:   regions[weightedChoice(rng, regionWeights)],
			Tenure:   tenure,
			Smoker:   smoker,
			BMI:      bmiLevels[weightedChoice(rng, bmiWeights)],
			Plan:     planLevels[weightedChoice(rng, planWeights)],
			NCD:      ncdLevels[weightedChoice(rng, ncdWeights)],
			Excess:   excessLevels[weightedChoice(rng, excessWeights)],
		}
	}

	return policies
}
