package decision

// Decision represents the final GO/NO-GO result for releasing a price book.
type Decision string

const (
	DecisionGO   Decision = "GO"
	DecisionNOGO Decision = "NO-GO"
)

// Input contains the portfolio metrics the adequacy gate evaluates.
// Ratio fields are nil when the underlying KPI was degenerate.
type Input struct {
	Scenario string
	Strategy string

	LossRatio   *float64 // claims / GWP, nil when GWP is zero
	AVEClaims   *float64 // actual / expected claims, nil when expected is zero
	DeclineRate float64  // underwriting declines / portfolio
	RenewalRate float64  // realized acceptance among quotable policies
	GWP         float64

	// OutOfControlPct is the share of incurred values outside control limits.
	OutOfControlPct float64

	// DriftPValues holds the per-feature KS p-values from drift monitoring.
	DriftPValues map[string]float64
}

// CriterionResult represents pass/fail for one criterion.
type CriterionResult struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// Result contains the final decision with its checklist.
type Result struct {
	Decision   Decision
	GOCriteria []CriterionResult // all must pass
	NOGOChecks []CriterionResult // any trigger forces NO-GO
}
