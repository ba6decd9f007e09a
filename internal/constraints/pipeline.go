package constraints

import "pricing-lab/internal/domain"

// Pipeline runs the constraint chain in its fixed order with no
// backtracking: underwriting, then caps and collars, then discounts.
type Pipeline struct {
	underwriting Underwriting
	maxCap       float64
	minCollar    float64
	maxDiscount  float64
}

// NewPipeline builds the constraint chain from a pricing strategy.
// The strategy is assumed to have passed config validation.
func NewPipeline(s domain.StrategyConfig) Pipeline {
	return Pipeline{
		underwriting: NewUnderwriting(s.UnderwritingStrictness),
		maxCap:       s.MaxCap,
		minCollar:    s.MinCollar,
		maxDiscount:  s.MaxDiscount,
	}
}

// Apply produces the final price decision for one policy. A declined policy
// gets Quotable=false with nil capped and final prices; it never receives a
// zero price.
func (c Pipeline) Apply(p *domain.PolicyRecord, basePrice, targetPrice, previousPrice, expectedLTV float64) domain.PriceDecision {
	decision := domain.PriceDecision{
		PolicyID:    p.PolicyID,
		BasePrice:   basePrice,
		TargetPrice: targetPrice,
		ExpectedLTV: expectedLTV,
	}

	if !c.underwriting.Quotable(p) {
		return decision
	}
	decision.Quotable = true

	capped := ApplyCapsAndCollars(targetPrice, previousPrice, c.maxCap, c.minCollar)
	decision.CappedPrice = domain.Float64Ptr(capped)

	final, discount := ApplyDiscounts(p, capped, c.maxDiscount)
	decision.FinalPrice = domain.Float64Ptr(final)
	decision.Discount = discount

	return decision
}
