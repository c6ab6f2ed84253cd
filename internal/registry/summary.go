package registry

import (
	"fmt"
	"strings"

	"github.com/vinodismyname/fpacopilot/internal/analytics"
	"github.com/vinodismyname/fpacopilot/internal/charts"
	"github.com/vinodismyname/fpacopilot/internal/dataset"
	"github.com/vinodismyname/fpacopilot/internal/intent"
)

// Summaries are the only place results are rounded for display.

func summarizeRevenue(r analytics.RevenueVsBudget) string {
	return fmt.Sprintf("Revenue vs budget %s: actual %s, budget %s, variance %s",
		dataset.MonthLabel(r.Month), charts.FormatUSD(r.ActualUSD), charts.FormatUSD(r.BudgetUSD), charts.FormatUSD(r.ActualUSD-r.BudgetUSD))
}

func summarizeMargin(points []analytics.MarginPoint) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = dataset.MonthLabel(p.Date) + " " + charts.FormatPercent(p.GrossMarginPct)
	}
	return "Gross margin %: " + strings.Join(parts, ", ")
}

func summarizeOpex(month string, lines []analytics.OpexLine) string {
	if len(lines) == 0 {
		return fmt.Sprintf("Opex %s: no opex rows", month)
	}
	var total float64
	for _, l := range lines {
		total += l.AmountUSD
	}
	return fmt.Sprintf("Opex %s: %d accounts, total %s; largest %s %s",
		month, len(lines), charts.FormatUSD(total), lines[0].Account, charts.FormatUSD(lines[0].AmountUSD))
}

func summarizeEBITDA(e analytics.EBITDA) string {
	return fmt.Sprintf("EBITDA %s: %s (revenue %s, cogs %s, opex %s)",
		dataset.MonthLabel(e.Month), charts.FormatUSD(e.EBITDAUSD), charts.FormatUSD(e.RevenueUSD), charts.FormatUSD(e.COGSUSD), charts.FormatUSD(e.OpexUSD))
}

func summarizeRunway(c analytics.CashRunway) string {
	return fmt.Sprintf("Cash runway as of %s: %s (cash %s, avg monthly burn %s)",
		dataset.MonthLabel(c.AsOf), charts.FormatRunway(c.RunwayMonths), charts.FormatUSD(c.CurrentCashUSD), charts.FormatUSD(c.AvgMonthlyBurnUSD))
}

// Summarize renders an answered question as one line of text.
func Summarize(ans intent.Answer) string {
	switch v := ans.Value.(type) {
	case analytics.RevenueVsBudget:
		return summarizeRevenue(v)
	case []analytics.MarginPoint:
		return summarizeMargin(v)
	case []analytics.OpexLine:
		m, err := dataset.ParseMonth(ans.Params.Month)
		label := ans.Params.Month
		if err == nil {
			label = dataset.MonthLabel(m)
		}
		return summarizeOpex(label, v)
	case analytics.EBITDA:
		return summarizeEBITDA(v)
	case analytics.CashRunway:
		return summarizeRunway(v)
	}
	return fmt.Sprintf("%s: no result", ans.Intent)
}
