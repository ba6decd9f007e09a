// Package evaluation aggregates per-policy pricing outcomes into portfolio
// KPIs.
//
// Convention for every actual-vs-expected ratio: the expected side is built
// from model outputs (acceptance probability, expected burn cost) and the
// actual side from realized outcomes (Bernoulli acceptance, incurred
// claims). Expected and realized values are never mixed within one side.
package evaluation

import (
	"errors"
	"sort"

	"pricing-lab/internal/domain"
)

// ErrInputMismatch is returned when the per-policy slices disagree in length.
var ErrInputMismatch = errors.New("evaluation: input slices length mismatch")

// SegmentFunc maps a policy to a segment key; nil yields one overall row.
type SegmentFunc func(*domain.PolicyRecord) string

// acc accumulates one segment's totals during aggregation.
type acc struct {
	quotable int
	declined int
	accepted int

	gwp      float64 // realized premium over accepted policies
	claims   float64 // incurred over accepted policies
	probSum  float64 // sum of acceptance probabilities, quotable
	expGWP   float64 // prob-weighted premium, quotable
	expClaim float64 // prob-weighted burn cost, quotable
}

// Summarize computes portfolio KPIs over quotable policies, optionally split
// by segment. Premium and claims totals cover the accepted book; declined
// policies are counted but contribute no premium. Zero denominators yield
// nil ratios named in DegenerateFields.
func Summarize(
	policies []*domain.PolicyRecord,
	profiles []domain.RiskProfile,
	quotes []domain.DemandQuote,
	decisions []domain.PriceDecision,
	segment SegmentFunc,
) ([]domain.PortfolioKPI, error) {
	n := len(policies)
	if len(profiles) != n || len(quotes) != n || len(decisions) != n {
		return nil, ErrInputMismatch
	}

	groups := make(map[string]*acc)
	for i, p := range policies {
		key := ""
		if segment != nil {
			key = segment(p)
		}
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
		}

		d := decisions[i]
		if !d.Quotable {
			g.declined++
			continue
		}
		g.quotable++

		price := *d.FinalPrice
		prob := quotes[i].AcceptProb
		g.probSum += prob
		g.expGWP += prob * price
		g.expClaim += prob * profiles[i].BurnCost

		if quotes[i].Accepted {
			g.accepted++
			g.gwp += price
			g.claims += p.Incurred
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kpis := make([]domain.PortfolioKPI, 0, len(keys))
	for _, k := range keys {
		kpis = append(kpis, buildKPI(k, groups[k]))
	}
	return kpis, nil
}

// Overall is Summarize without segmentation, returning the single row.
func Overall(
	policies []*domain.PolicyRecord,
	profiles []domain.RiskProfile,
	quotes []domain.DemandQuote,
	decisions []domain.PriceDecision,
) (domain.PortfolioKPI, error) {
	rows, err := Summarize(policies, profiles, quotes, decisions, nil)
	if err != nil {
		return domain.PortfolioKPI{}, err
	}
	if len(rows) == 0 {
		return domain.PortfolioKPI{}, nil
	}
	return rows[0], nil
}

func buildKPI(segment string, g *acc) domain.PortfolioKPI {
	kpi := domain.PortfolioKPI{
		Segment:      segment,
		Policies:     g.accepted,
		Declined:     g.declined,
		GWP:          g.gwp,
		Claims:       g.claims,
		Contribution: g.gwp - g.claims,
	}

	if g.quotable > 0 {
		kpi.RenewalRate = float64(g.accepted) / float64(g.quotable)
	}

	degenerate := func(field string) {
		kpi.DegenerateFields = append(kpi.DegenerateFields, field)
	}
	ratio := func(field string, actual, expected float64) *float64 {
		if expected == 0 {
			degenerate(field)
			return nil
		}
		return domain.Float64Ptr(actual / expected)
	}

	if g.gwp == 0 {
		degenerate("loss_ratio")
	} else {
		kpi.LossRatio = domain.Float64Ptr(g.claims / g.gwp)
	}

	kpi.AVEGWP = ratio("ave_gwp", g.gwp, g.expGWP)
	kpi.AVEClaims = ratio("ave_claims", g.claims, g.expClaim)
	kpi.AVERenewal = ratio("ave_renewal", float64(g.accepted), g.probSum)
	kpi.AVEContribution = ratio("ave_contribution", g.gwp-g.claims, g.expGWP-g.expClaim)

	// Loss-ratio AVE compares the realized loss ratio with the expected one.
	if kpi.LossRatio != nil && g.expGWP != 0 && g.expClaim != 0 {
		expectedLR := g.expClaim / g.expGWP
		kpi.AVELossRatio = domain.Float64Ptr(*kpi.LossRatio / expectedLR)
	} else {
		degenerate("ave_loss_ratio")
	}

	return kpi
}
