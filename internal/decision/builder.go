package decision

import (
	"errors"
	"sort"

	"pricing-lab/internal/domain"
)

// ErrNoResults is returned when the experiment grid has no rows to gate.
var ErrNoResults = errors.New("no experiment results to evaluate")

// Builder constructs gate Inputs from pipeline outputs.
type Builder struct{}

// NewBuilder creates a new gate input builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// FromKPI creates an Input from a single pipeline run's overall KPI row.
// driftPValues holds per-feature KS p-values from population drift monitoring
// and may be nil when no reference population was supplied.
func (b *Builder) FromKPI(scenario, strategy string, kpi domain.PortfolioKPI, outOfControlPct float64, driftPValues map[string]float64) Input {
	total := kpi.Policies + kpi.Declined
	declineRate := 0.0
	if total > 0 {
		declineRate = float64(kpi.Declined) / float64(total)
	}

	return Input{
		Scenario:        scenario,
		Strategy:        strategy,
		LossRatio:       copyRatio(kpi.LossRatio),
		AVEClaims:       copyRatio(kpi.AVEClaims),
		DeclineRate:     declineRate,
		RenewalRate:     kpi.RenewalRate,
		GWP:             kpi.GWP,
		OutOfControlPct: outOfControlPct,
		DriftPValues:    driftPValues,
	}
}

// FromExperiment creates one Input per grid cell, sorted by (scenario,
// strategy) for deterministic report order. Drift p-values are not carried
// on experiment rows; the drift trigger stays quiet for grid gating.
func (b *Builder) FromExperiment(results []domain.ExperimentResult) ([]Input, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	inputs := make([]Input, 0, len(results))
	for _, r := range results {
		inputs = append(inputs, Input{
			Scenario:        r.Scenario,
			Strategy:        r.Strategy,
			LossRatio:       copyRatio(r.LossRatio),
			AVEClaims:       copyRatio(r.AVEClaims),
			DeclineRate:     r.DeclineRate,
			RenewalRate:     r.QuoteAcceptance,
			GWP:             r.GWP,
			OutOfControlPct: r.OutOfControlPct,
		})
	}

	sort.Slice(inputs, func(i, j int) bool {
		if inputs[i].Scenario != inputs[j].Scenario {
			return inputs[i].Scenario < inputs[j].Scenario
		}
		return inputs[i].Strategy < inputs[j].Strategy
	})

	return inputs, nil
}

func copyRatio(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
