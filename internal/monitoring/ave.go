// Package monitoring computes actual-vs-expected ratios, control-chart
// flags and distribution-drift evidence for pricing feedback review.
package monitoring

import (
	"sort"

	"pricing-lab/internal/domain"
)

// AVERow is one segment of an actual-vs-expected table. Ratio is nil when
// the expected mean is zero; the row stays in the table with Degenerate set
// so reviewers can see the gap instead of a silently dropped segment.
type AVERow struct {
	Segment          string
	Policies         int
	ActualIncurred   float64 // mean incurred claims
	ExpectedBurnCost float64 // mean model burn cost
	Ratio            *float64
	Acceptance       float64 // realized acceptance rate
	Degenerate       bool
}

// SegmentFunc maps a policy to its segment key. A nil SegmentFunc collapses
// the table to a single overall row.
type SegmentFunc func(*domain.PolicyRecord) string

// SegmentByPlan segments by plan tier.
func SegmentByPlan(p *domain.PolicyRecord) string { return string(p.Plan) }

// SegmentByRegion segments by region.
func SegmentByRegion(p *domain.PolicyRecord) string { return p.Region }

// AVETable builds the actual-vs-expected table. policies[i], profiles[i] and
// quotes[i] must describe the same policy. Rows are sorted by segment key.
func AVETable(policies []*domain.PolicyRecord, profiles []domain.RiskProfile, quotes []domain.DemandQuote, segment SegmentFunc) []AVERow {
	type acc struct {
		n        int
		incurred float64
		expected float64
		accepted int
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
		g.n++
		g.incurred += p.Incurred
		g.expected += profiles[i].BurnCost
		if quotes[i].Accepted {
			g.accepted++
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]AVERow, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		row := AVERow{
			Segment:          k,
			Policies:         g.n,
			ActualIncurred:   g.incurred / float64(g.n),
			ExpectedBurnCost: g.expected / float64(g.n),
			Acceptance:       float64(g.accepted) / float64(g.n),
		}
		if row.ExpectedBurnCost == 0 {
			row.Degenerate = true
		} else {
			row.Ratio = domain.Float64Ptr(row.ActualIncurred / row.ExpectedBurnCost)
		}
		rows = append(rows, row)
	}
	return rows
}
