// Package constraints applies the post-optimization commercial constraints
// in fixed order: underwriting eligibility, then price movement caps and
// collars, then discounts. The whole chain is a pure function of its inputs.
package constraints

import (
	"math"

	"pricing-lab/internal/domain"
)

// Standard underwriting thresholds at strictness 1.0.
const (
	standardMaxAge    = 85
	standardMinTenure = 0.1
)

// Underwriting evaluates eligibility. Strictness scales the thresholds:
// values above 1 tighten the age limit and raise the minimum tenure, values
// below 1 relax them. The smoker-and-obese decline applies at any
// strictness.
type Underwriting struct {
	maxAge    int
	minTenure float64
}

// NewUnderwriting builds the rule set for a strictness level.
func NewUnderwriting(strictness float64) Underwriting {
	return Underwriting{
		maxAge:    int(math.Floor(standardMaxAge / strictness)),
		minTenure: standardMinTenure * strictness,
	}
}

// Quotable reports whether the policy passes underwriting. The decision is
// deterministic: identical attributes always produce the same answer.
func (u Underwriting) Quotable(p *domain.PolicyRecord) bool {
	if p.Age > u.maxAge {
		return false
	}
	if p.Smoker == domain.SmokerYes && p.BMI == domain.BMIObese {
		return false
	}
	if p.Tenure < u.minTenure {
		return false
	}
	return true
}
