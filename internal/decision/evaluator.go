package decision

import (
	"fmt"
	"sort"
)

// Gate thresholds.
const (
	maxLossRatio     = 1.00 // book must be profitable
	aveBandLower     = 0.80 // risk model calibration band
	aveBandUpper     = 1.20
	maxDeclineRate   = 0.15
	minRenewalRate   = 0.50
	hardLossRatio    = 1.10 // instant NO-GO
	hardAVELower     = 0.50
	hardAVEUpper     = 2.00
	maxOutOfControl  = 0.01
	driftAlphaStrict = 0.01 // per-feature KS p-value trigger
)

// Evaluator evaluates price-book adequacy criteria.
type Evaluator struct{}

// NewEvaluator creates a new adequacy evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate produces a Result from portfolio metrics.
// GO if ALL criteria pass and NO trigger fires; NO-GO otherwise.
// A nil (degenerate) ratio fails the criterion that needs it: a book whose
// loss ratio cannot be computed is not releasable.
func (e *Evaluator) Evaluate(input Input) *Result {
	goCriteria := e.evaluateGOCriteria(input)
	nogoChecks := e.evaluateNOGOTriggers(input)

	allGOPass := true
	for _, c := range goCriteria {
		if !c.Pass {
			allGOPass = false
			break
		}
	}

	anyNOGOTriggered := false
	for _, c := range nogoChecks {
		if !c.Pass { // Pass=false means triggered
			anyNOGOTriggered = true
			break
		}
	}

	decision := DecisionGO
	if !allGOPass || anyNOGOTriggered {
		decision = DecisionNOGO
	}

	return &Result{
		Decision:   decision,
		GOCriteria: goCriteria,
		NOGOChecks: nogoChecks,
	}
}

// evaluateGOCriteria evaluates the 5 GO criteria.
func (e *Evaluator) evaluateGOCriteria(input Input) []CriterionResult {
	criteria := make([]CriterionResult, 5)

	// 1. Loss ratio below 1.0
	criteria[0] = CriterionResult{
		Name:      "Loss ratio below break-even",
		Threshold: fmt.Sprintf("< %.2f", maxLossRatio),
		Actual:    formatRatio(input.LossRatio),
		Pass:      input.LossRatio != nil && *input.LossRatio < maxLossRatio,
	}

	// 2. Claims AVE inside the calibration band
	criteria[1] = CriterionResult{
		Name:      "Claims AVE calibrated",
		Threshold: fmt.Sprintf("[%.2f, %.2f]", aveBandLower, aveBandUpper),
		Actual:    formatRatio(input.AVEClaims),
		Pass:      input.AVEClaims != nil && *input.AVEClaims >= aveBandLower && *input.AVEClaims <= aveBandUpper,
	}

	// 3. Decline rate acceptable
	criteria[2] = CriterionResult{
		Name:      "Decline rate",
		Threshold: fmt.Sprintf("<= %.0f%%", maxDeclineRate*100),
		Actual:    fmt.Sprintf("%.2f%%", input.DeclineRate*100),
		Pass:      input.DeclineRate <= maxDeclineRate,
	}

	// 4. Renewal rate sufficient
	criteria[3] = CriterionResult{
		Name:      "Renewal rate",
		Threshold: fmt.Sprintf(">= %.0f%%", minRenewalRate*100),
		Actual:    fmt.Sprintf("%.2f%%", input.RenewalRate*100),
		Pass:      input.RenewalRate >= minRenewalRate,
	}

	// 5. Incurred distribution under statistical control
	criteria[4] = CriterionResult{
		Name:      "Claims under control",
		Threshold: fmt.Sprintf("out-of-control <= %.2f%%", maxOutOfControl*100),
		Actual:    fmt.Sprintf("%.2f%%", input.OutOfControlPct*100),
		Pass:      input.OutOfControlPct <= maxOutOfControl,
	}

	return criteria
}

// evaluateNOGOTriggers evaluates the 4 NO-GO triggers.
// Pass=true means NOT triggered, Pass=false means triggered.
func (e *Evaluator) evaluateNOGOTriggers(input Input) []CriterionResult {
	checks := make([]CriterionResult, 4)

	// 1. Loss ratio at or beyond the hard limit
	triggered1 := input.LossRatio != nil && *input.LossRatio >= hardLossRatio
	checks[0] = CriterionResult{
		Name:      "Loss ratio hard limit",
		Threshold: fmt.Sprintf(">= %.2f", hardLossRatio),
		Actual:    formatRatio(input.LossRatio),
		Pass:      !triggered1,
	}

	// 2. Claims AVE wildly out of band
	triggered2 := input.AVEClaims != nil && (*input.AVEClaims < hardAVELower || *input.AVEClaims > hardAVEUpper)
	checks[1] = CriterionResult{
		Name:      "Claims AVE out of hard band",
		Threshold: fmt.Sprintf("outside [%.2f, %.2f]", hardAVELower, hardAVEUpper),
		Actual:    formatRatio(input.AVEClaims),
		Pass:      !triggered2,
	}

	// 3. Population drift on any monitored feature
	drifted := driftedFeatures(input.DriftPValues)
	checks[2] = CriterionResult{
		Name:      "Population drift",
		Threshold: fmt.Sprintf("any KS p < %.2f", driftAlphaStrict),
		Actual:    formatDrift(drifted),
		Pass:      len(drifted) == 0,
	}

	// 4. Empty book
	triggered4 := input.GWP == 0
	checks[3] = CriterionResult{
		Name:      "Empty book",
		Threshold: "GWP == 0",
		Actual:    fmt.Sprintf("%.2f", input.GWP),
		Pass:      !triggered4,
	}

	return checks
}

// driftedFeatures lists features whose p-value is below the trigger, sorted
// for deterministic report output.
func driftedFeatures(pvalues map[string]float64) []string {
	var out []string
	for name, p := range pvalues {
		if p < driftAlphaStrict {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func formatRatio(v *float64) string {
	if v == nil {
		return "undefined"
	}
	return fmt.Sprintf("%.4f", *v)
}

func formatDrift(drifted []string) string {
	if len(drifted) == 0 {
		return "none"
	}
	return fmt.Sprintf("%v", drifted)
}
