// Package charts reduces analytics results to plot-ready series. Rendering is
// left to a plotting collaborator (see internal/report).
package charts

import (
	"fmt"

	"github.com/vinodismyname/fpacopilot/internal/analytics"
	"github.com/vinodismyname/fpacopilot/internal/dataset"
)

// Kind names the chart geometry a renderer should draw.
type Kind string

const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"
)

// Point is one labelled value. Value is nil for a gap (e.g. an undefined margin).
type Point struct {
	Label   string   `json:"label"`
	Value   *float64 `json:"value" jsonschema:"nullable"`
	Display string   `json:"display,omitempty"`
}

// Series is an ordered list of points drawn with one color.
type Series struct {
	Name  string  `json:"name"`
	Data  []Point `json:"data"`
	Color string  `json:"color,omitempty"`
}

// Chart is the renderer-neutral description of a chart.
type Chart struct {
	Kind   Kind     `json:"chartType"`
	Title  string   `json:"title"`
	XAxis  string   `json:"xAxis,omitempty"`
	YAxis  string   `json:"yAxis,omitempty"`
	Series []Series `json:"series"`
	Colors []string `json:"colors,omitempty"`
}

var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Actual vs budget bars use fixed colors so the two are always distinguishable.
const (
	actualColor = "#4CAF50"
	budgetColor = "#2196F3"
)

func value(v float64) *float64 { return &v }

// MarginTrend builds a line series of (month, gross margin %) in trend order.
// Months with an undefined margin become gaps.
func MarginTrend(points []analytics.MarginPoint) Chart {
	data := make([]Point, 0, len(points))
	for _, p := range points {
		pt := Point{Label: dataset.MonthLabel(p.Date)}
		if p.GrossMarginPct != nil {
			pt.Value = value(*p.GrossMarginPct * 100)
			pt.Display = FormatPercent(p.GrossMarginPct)
		}
		data = append(data, pt)
	}
	return Chart{
		Kind:   KindLine,
		Title:  "Gross Margin %",
		XAxis:  "Month",
		YAxis:  "Gross margin (%)",
		Series: []Series{{Name: "Gross margin %", Data: data, Color: defaultColors[0]}},
		Colors: []string{defaultColors[0]},
	}
}

// RevenueVsBudget builds the two-bar Actual/Budget chart with a USD label per bar.
func RevenueVsBudget(r analytics.RevenueVsBudget) Chart {
	return Chart{
		Kind:  KindBar,
		Title: fmt.Sprintf("Revenue vs Budget (%s)", dataset.MonthLabel(r.Month)),
		YAxis: "USD",
		Series: []Series{{
			Name: "Revenue",
			Data: []Point{
				{Label: "Actual", Value: value(r.ActualUSD), Display: FormatUSD(r.ActualUSD)},
				{Label: "Budget", Value: value(r.BudgetUSD), Display: FormatUSD(r.BudgetUSD)},
			},
		}},
		Colors: []string{actualColor, budgetColor},
	}
}

// OpexBreakdown builds a bar chart of the top accounts by USD amount. lines
// must already be sorted descending; top <= 0 keeps every account.
func OpexBreakdown(lines []analytics.OpexLine, month string, top int) Chart {
	if top > 0 && len(lines) > top {
		lines = lines[:top]
	}
	data := make([]Point, len(lines))
	for i, l := range lines {
		data[i] = Point{Label: l.Account, Value: value(l.AmountUSD), Display: FormatUSD(l.AmountUSD)}
	}
	return Chart{
		Kind:   KindBar,
		Title:  fmt.Sprintf("Opex breakdown (%s)", month),
		XAxis:  "Account",
		YAxis:  "USD",
		Series: []Series{{Name: "Opex", Data: data, Color: defaultColors[1]}},
		Colors: assignColors(len(data)),
	}
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
