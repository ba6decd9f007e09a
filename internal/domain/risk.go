package domain

// RiskProfile is the per-policy output of the risk estimator.
// Frequency and Severity are model predictions clipped to be non-negative;
// BurnCost is always Frequency * Severity.
type RiskProfile struct {
	PolicyID  string
	Frequency float64 // expected claims per exposure period, >= 0
	Severity  float64 // expected cost per claim, >= 0
	BurnCost  float64 // expected claim cost for the period
}

// DemandQuote is the per-policy output of demand scoring. AcceptProb is the
// model's belief; Accepted is one Bernoulli realization of it. The two are
// kept distinct and must never be conflated in aggregates.
type DemandQuote struct {
	PolicyID   string
	RelPrice   float64 // quoted price / reference market price
	AcceptProb float64 // in [0, 1]
	Accepted   bool
}
