package reporting

import (
	"fmt"
	"strings"
	"time"

	"pricing-lab/internal/domain"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Pricing Run Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s` | Scenario: `%s` | Strategy: `%s`\n\n", r.RunID, r.Scenario, r.Strategy))

	sb.WriteString("## Portfolio Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Policies | %d |\n", r.Summary.Policies))
	sb.WriteString(fmt.Sprintf("| Quotable | %d |\n", r.Summary.Quotable))
	sb.WriteString(fmt.Sprintf("| Declined | %d |\n", r.Summary.Declined))
	sb.WriteString(fmt.Sprintf("| Base Price | %.2f |\n", r.Summary.BasePrice))
	sb.WriteString(fmt.Sprintf("| Market Price | %.2f |\n", r.Summary.MarketPrice))
	sb.WriteString(fmt.Sprintf("| Target Price | %.2f |\n", r.Summary.TargetPrice))
	sb.WriteString(fmt.Sprintf("| Expenses per Policy | %.2f |\n", r.Summary.Expenses))
	sb.WriteString(fmt.Sprintf("| Out-of-Control Share | %.4f |\n", r.Summary.OutOfControlPct))
	sb.WriteString("\n")

	sb.WriteString("## Portfolio KPIs\n\n")
	writeKPITable(&sb, append([]domain.PortfolioKPI{r.KPI}, r.SegmentKPIs...))

	sb.WriteString("## Actual vs Expected by Plan\n\n")
	if len(r.AVEByPlan) > 0 {
		sb.WriteString("| Plan | Policies | Actual Incurred | Expected Burn | Ratio | Acceptance |\n")
		sb.WriteString("|------|----------|-----------------|---------------|-------|------------|\n")
		for _, row := range r.AVEByPlan {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %.2f | %s | %.4f |\n",
				row.Segment, row.Policies, row.ActualIncurred, row.ExpectedBurnCost,
				fmtRatio(row.Ratio), row.Acceptance))
		}
	} else {
		sb.WriteString("No AVE data available.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Scenario x Strategy Grid\n\n")
	if len(r.ExperimentResults) > 0 {
		sb.WriteString("| Scenario | Strategy | AvgPrice | Acceptance | Decline | LossRatio | GWP | Contribution | AVEClaims | OOC |\n")
		sb.WriteString("|----------|----------|----------|------------|---------|-----------|-----|--------------|-----------|-----|\n")
		for _, e := range r.ExperimentResults {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %.4f | %.4f | %s | %.0f | %.0f | %s | %.4f |\n",
				e.Scenario, e.Strategy, e.AvgPrice, e.QuoteAcceptance, e.DeclineRate,
				fmtRatio(e.LossRatio), e.GWP, e.Contribution, fmtRatio(e.AVEClaims), e.OutOfControlPct))
		}
	} else {
		sb.WriteString("No experiment results available.\n")
	}
	sb.WriteString("\n")

	if r.Gate != nil {
		sb.WriteString(fmt.Sprintf("## Adequacy Gate: %s\n\n", r.Gate.Decision))
		sb.WriteString("| Criterion | Threshold | Actual | Status |\n")
		sb.WriteString("|-----------|-----------|--------|--------|\n")
		for _, c := range r.Gate.GOCriteria {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", c.Name, c.Threshold, c.Actual, passFail(c.Pass)))
		}
		for _, c := range r.Gate.NOGOChecks {
			status := "OK"
			if !c.Pass {
				status = "TRIGGERED"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", c.Name, c.Threshold, c.Actual, status))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeKPITable(sb *strings.Builder, kpis []domain.PortfolioKPI) {
	sb.WriteString("| Segment | Policies | Declined | GWP | Claims | Contribution | Renewal | LossRatio | AVE GWP | AVE Claims | Degenerate |\n")
	sb.WriteString("|---------|----------|----------|-----|--------|--------------|---------|-----------|---------|------------|------------|\n")
	for _, k := range kpis {
		segment := k.Segment
		if segment == "" {
			segment = "overall"
		}
		degenerate := "-"
		if len(k.DegenerateFields) > 0 {
			degenerate = strings.Join(k.DegenerateFields, ", ")
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.0f | %.0f | %.0f | %.4f | %s | %s | %s | %s |\n",
			segment, k.Policies, k.Declined, k.GWP, k.Claims, k.Contribution, k.RenewalRate,
			fmtRatio(k.LossRatio), fmtRatio(k.AVEGWP), fmtRatio(k.AVEClaims), degenerate))
	}
	sb.WriteString("\n")
}

func fmtRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *v)
}

func passFail(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
