package analytics

import (
	"encoding/json"
	"math"
	"time"
)

// UnboundedRunway is reported when average burn is zero, negative or not
// computable: cash is not being depleted at the measured rate.
var UnboundedRunway = math.Inf(1)

// RevenueVsBudget compares actual and budgeted revenue for one month.
type RevenueVsBudget struct {
	Month     time.Time `json:"month"`
	ActualUSD float64   `json:"actual_usd"`
	BudgetUSD float64   `json:"budget_usd"`
}

// MarginPoint is one month of the gross margin trend. GrossMarginPct is nil
// when revenue for the month is exactly zero.
type MarginPoint struct {
	Date           time.Time `json:"date"`
	RevenueUSD     float64   `json:"revenue_usd"`
	COGSUSD        float64   `json:"cogs_usd"`
	GrossMarginPct *float64  `json:"gross_margin_pct" jsonschema:"nullable"`
}

// OpexLine is one account of the opex breakdown.
type OpexLine struct {
	Account   string  `json:"account"`
	AmountUSD float64 `json:"amount_usd"`
}

// EBITDA is the revenue - cogs - opex proxy for one month.
type EBITDA struct {
	Month      time.Time `json:"month"`
	EBITDAUSD  float64   `json:"ebitda_usd"`
	RevenueUSD float64   `json:"revenue_usd"`
	COGSUSD    float64   `json:"cogs_usd"`
	OpexUSD    float64   `json:"opex_usd"`
}

// CashRunway estimates months of cash left at the trailing average burn.
type CashRunway struct {
	AsOf              time.Time `json:"as_of"`
	CurrentCashUSD    float64   `json:"current_cash_usd"`
	AvgMonthlyBurnUSD float64   `json:"avg_monthly_burn_usd"`
	RunwayMonths      float64   `json:"runway_months"`
}

// Unbounded reports whether runway is infinite.
func (c CashRunway) Unbounded() bool {
	return math.IsInf(c.RunwayMonths, 1)
}

// cashRunwayJSON is the wire form of CashRunway. JSON has no infinity, so an
// unbounded runway is null with RunwayUnbounded set.
type cashRunwayJSON struct {
	AsOf              time.Time `json:"as_of"`
	CurrentCashUSD    float64   `json:"current_cash_usd"`
	AvgMonthlyBurnUSD float64   `json:"avg_monthly_burn_usd"`
	RunwayMonths      *float64  `json:"runway_months" jsonschema:"nullable"`
	RunwayUnbounded   bool      `json:"runway_unbounded"`
}

// JSONSchemaAlias makes generated schemas describe the wire form.
func (CashRunway) JSONSchemaAlias() any { return cashRunwayJSON{} }

// MarshalJSON writes the wire form.
func (c CashRunway) MarshalJSON() ([]byte, error) {
	out := cashRunwayJSON{
		AsOf:              c.AsOf,
		CurrentCashUSD:    c.CurrentCashUSD,
		AvgMonthlyBurnUSD: c.AvgMonthlyBurnUSD,
		RunwayUnbounded:   c.Unbounded(),
	}
	if !out.RunwayUnbounded {
		v := c.RunwayMonths
		out.RunwayMonths = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores an unbounded runway written by MarshalJSON.
func (c *CashRunway) UnmarshalJSON(b []byte) error {
	var raw cashRunwayJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.AsOf = raw.AsOf
	c.CurrentCashUSD = raw.CurrentCashUSD
	c.AvgMonthlyBurnUSD = raw.AvgMonthlyBurnUSD
	c.RunwayMonths = UnboundedRunway
	if raw.RunwayMonths != nil && !raw.RunwayUnbounded {
		c.RunwayMonths = *raw.RunwayMonths
	}
	return nil
}
