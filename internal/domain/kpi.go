package domain

// PortfolioKPI holds aggregated commercial outcomes over the accepted,
// quotable slice of a portfolio unless a field states otherwise.
//
// Ratio fields are nil when their denominator is zero. Every nil ratio is
// also named in DegenerateFields so that degeneracy is visible in KPI review
// instead of silently dropping from the table.
type PortfolioKPI struct {
	Segment string // "" for the overall row

	Policies int // accepted, quotable policies in this segment
	Declined int // underwriting declines in this segment

	GWP          float64 // gross written premium over accepted policies
	Claims       float64 // incurred claims over accepted policies
	Contribution float64 // GWP - Claims
	RenewalRate  float64 // realized acceptance over quotable policies

	LossRatio *float64 // Claims / GWP

	// Actual-vs-expected ratios. The expected side uses model outputs
	// (acceptance probability, expected burn cost); the actual side uses
	// realized acceptance and incurred claims.
	AVEGWP          *float64
	AVEClaims       *float64
	AVERenewal      *float64
	AVEContribution *float64
	AVELossRatio    *float64

	DegenerateFields []string
}

// ExperimentResult is one cell of the scenario x strategy experiment grid.
type ExperimentResult struct {
	Scenario string
	Strategy string

	AvgPrice         float64
	QuoteAcceptance  float64 // realized acceptance among quotable policies
	DeclineRate      float64
	LossRatio        *float64
	GWP              float64
	Contribution     float64
	AVEClaims        *float64
	OutOfControlPct  float64 // share of incurred values outside control limits
	TargetPrice      float64
	ExpectedLTV      float64
	PoliciesQuotable int
}
