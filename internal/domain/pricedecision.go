package domain

// PriceDecision records the outcome of the pricing pipeline for one policy.
//
// CappedPrice and FinalPrice are nil when the policy failed underwriting:
// a declined policy has no price, and nil is deliberately distinct from zero
// so that downstream aggregates cannot silently treat declines as free cover.
type PriceDecision struct {
	PolicyID string
	Quotable bool

	BasePrice   float64  // burn cost loaded with the profit margin
	TargetPrice float64  // optimizer output before constraints
	CappedPrice *float64 // after caps & collars, nil if declined
	FinalPrice  *float64 // after discounts, nil if declined

	Discount    float64 // total discount fraction applied to CappedPrice
	ExpectedLTV float64 // expected contribution at TargetPrice
}

// Float64Ptr returns a pointer to v. Convenience for optional decision fields.
func Float64Ptr(v float64) *float64 { return &v }
