package constraints

import "pricing-lab/internal/domain"

// Component discount rates.
const (
	loyaltyDiscount     = 0.05 // tenure over 3 years
	loyaltyTenureYears  = 3.0
	excessDiscount      = 0.03 // excess band of 1000 or more
	excessThreshold     = domain.Excess1000
	ncdDiscountDivisor  = 200.0 // NCD band percent / 200
)

// TotalDiscount sums the commercial discount components and caps the sum at
// maxDiscount. The cap applies to the sum, never to individual components.
func TotalDiscount(p *domain.PolicyRecord, maxDiscount float64) float64 {
	discount := 0.0
	if p.Tenure > loyaltyTenureYears {
		discount += loyaltyDiscount
	}
	if p.Excess >= excessThreshold {
		discount += excessDiscount
	}
	discount += float64(p.NCD) / ncdDiscountDivisor

	if discount > maxDiscount {
		discount = maxDiscount
	}
	return discount
}

// ApplyDiscounts reduces the capped price by the policy's total discount and
// returns the final price together with the discount fraction applied.
func ApplyDiscounts(p *domain.PolicyRecord, cappedPrice, maxDiscount float64) (float64, float64) {
	discount := TotalDiscount(p, maxDiscount)
	return cappedPrice * (1 - discount), discount
}
