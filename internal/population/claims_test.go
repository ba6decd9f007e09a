package population

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricing-lab/internal/domain"
)

func TestTrueRiskScore(t *testing.T) {
	base := &domain.PolicyRecord{
		Age:    40,
		Smoker: domain.SmokerNo,
		BMI:    domain.BMINormal,
		Plan:   domain.PlanStandard,
		Excess: domain.Excess0,
	}

	smoker := *base
	smoker.Smoker = domain.SmokerYes
	assert.Greater(t, TrueRiskScore(&smoker), TrueRiskScore(base), "smoking must raise risk")

	older := *base
	older.Age = 70
	assert.Greater(t, TrueRiskScore(&older), TrueRiskScore(base), "age must raise risk")

	obese := *base
	obese.BMI = domain.BMIObese
	assert.Greater(t, TrueRiskScore(&obese), TrueRiskScore(base), "obesity must raise risk")

	highExcess := *base
	highExcess.Excess = domain.Excess2000
	assert.Less(t, TrueRiskScore(&highExcess), TrueRiskScore(base), "high excess must lower risk")
}

func TestTrueRiskScore_Clamped(t *testing.T) {
	// Worst case stays inside the clamp.
	worst := &domain.PolicyRecord{
		Age:    100,
		Smoker: domain.SmokerYes,
		BMI:    domain.BMIObese,
		Plan:   domain.PlanPremium,
		Excess: domain.Excess0,
	}
	assert.LessOrEqual(t, TrueRiskScore(worst), 5.0)

	best := &domain.PolicyRecord{
		Age:    0,
		Smoker: domain.SmokerNo,
		BMI:    domain.BMINormal,
		Plan:   domain.PlanBudget,
		Excess: domain.Excess2000,
	}
	assert.GreaterOrEqual(t, TrueRiskScore(best), 0.3)
}

func TestSimulateClaims(t *testing.T) {
	rng := NewSource(42)
	policies := Generate(rng, 5000)
	SimulateClaims(rng, policies)

	totalClaims := 0
	for _, p := range policies {
		assert.GreaterOrEqual(t, p.NumClaims, 0)
		assert.GreaterOrEqual(t, p.Incurred, 0.0)
		if p.NumClaims == 0 {
			assert.Zero(t, p.Incurred, "claims-free policy must have zero incurred")
		} else {
			assert.Greater(t, p.Incurred, 0.0, "claiming policy must have positive incurred")
		}
		totalClaims += p.NumClaims
	}
	require.Greater(t, totalClaims, 0, "portfolio produced no claims at all")
}

func TestSimulateClaims_Reproducible(t *testing.T) {
	run := func() []*domain.PolicyRecord {
		rng := NewSource(9)
		policies := Generate(rng, 1000)
		SimulateClaims(rng, policies)
		return policies
	}

	a := run()
	b := run()
	for i := range a {
		assert.Equal(t, a[i].NumClaims, b[i].NumClaims)
		assert.InDelta(t, a[i].Incurred, b[i].Incurred, 1e-9)
	}
}

func TestSimulateClaims_RiskierPoliciesClaimMore(t *testing.T) {
	rng := NewSource(21)

	lowRisk := make([]*domain.PolicyRecord, 3000)
	highRisk := make([]*domain.PolicyRecord, 3000)
	for i := range lowRisk {
		lowRisk[i] = &domain.PolicyRecord{
			Age: 25, Smoker: domain.SmokerNo, BMI: domain.BMINormal,
			Plan: domain.PlanBudget, Excess: domain.Excess2000,
		}
		highRisk[i] = &domain.PolicyRecord{
			Age: 70, Smoker: domain.SmokerYes, BMI: domain.BMIObese,
			Plan: domain.PlanPremium, Excess: domain.Excess0,
		}
	}

	SimulateClaims(rng, lowRisk)
	SimulateClaims(rng, highRisk)

	sum := func(ps []*domain.PolicyRecord) float64 {
		total := 0.0
		for _, p := range ps {
			total += p.Incurred
		}
		return total
	}

	assert.Greater(t, sum(highRisk), sum(lowRisk))
}
