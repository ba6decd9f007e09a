package reporting

import (
	"fmt"
	"strings"

	"pricing-lab/internal/domain"
)

// RenderExperimentCSV renders experiment grid rows as a CSV string.
func RenderExperimentCSV(results []domain.ExperimentResult) string {
	var sb strings.Builder

	sb.WriteString("scenario,strategy,avg_price,quote_acceptance,decline_rate,loss_ratio,")
	sb.WriteString("gwp,contribution,ave_claims,out_of_control_pct,target_price,expected_ltv,policies_quotable\n")

	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.6f,%s,%.6f,%.6f,%s,%.6f,%.6f,%.6f,%d\n",
			r.Scenario,
			r.Strategy,
			r.AvgPrice,
			r.QuoteAcceptance,
			r.DeclineRate,
			csvRatio(r.LossRatio),
			r.GWP,
			r.Contribution,
			csvRatio(r.AVEClaims),
			r.OutOfControlPct,
			r.TargetPrice,
			r.ExpectedLTV,
			r.PoliciesQuotable,
		))
	}

	return sb.String()
}

// RenderKPICSV renders KPI rows as a CSV string.
func RenderKPICSV(kpis []domain.PortfolioKPI) string {
	var sb strings.Builder

	sb.WriteString("segment,policies,declined,gwp,claims,contribution,renewal_rate,")
	sb.WriteString("loss_ratio,ave_gwp,ave_claims,ave_renewal,degenerate_fields\n")

	for _, k := range kpis {
		segment := k.Segment
		if segment == "" {
			segment = "overall"
		}
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%.6f,%.6f,%.6f,%.6f,%s,%s,%s,%s,%s\n",
			segment,
			k.Policies,
			k.Declined,
			k.GWP,
			k.Claims,
			k.Contribution,
			k.RenewalRate,
			csvRatio(k.LossRatio),
			csvRatio(k.AVEGWP),
			csvRatio(k.AVEClaims),
			csvRatio(k.AVERenewal),
			strings.Join(k.DegenerateFields, ";"),
		))
	}

	return sb.String()
}

// csvRatio renders a nil ratio as an empty cell rather than a fake zero.
func csvRatio(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}
