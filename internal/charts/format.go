package charts

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatUSD renders whole dollars with thousands separators, e.g. "$120,000"
// or "-$5,450".
func FormatUSD(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "n/a"
	}
	if v < 0 {
		return "-" + printer.Sprintf("$%.0f", -v)
	}
	return printer.Sprintf("$%.0f", v)
}

// FormatPercent renders a ratio as a one-decimal percentage; nil is "N/A".
func FormatPercent(ratio *float64) string {
	if ratio == nil {
		return "N/A"
	}
	return printer.Sprintf("%.1f%%", *ratio*100)
}

// FormatRunway renders runway months, or "unbounded" when cash is not burning.
func FormatRunway(months float64) string {
	if math.IsInf(months, 1) {
		return "unbounded"
	}
	return printer.Sprintf("%.1f months", months)
}
