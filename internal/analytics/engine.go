// Package analytics answers the five FP&A questions over a loaded dataset
// snapshot: revenue vs budget, gross margin trend, opex breakdown, EBITDA
// proxy and cash runway. All monetary results are USD.
package analytics

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vinodismyname/fpacopilot/config"
	"github.com/vinodismyname/fpacopilot/internal/dataset"
	"github.com/vinodismyname/fpacopilot/internal/fx"
)

// ErrMonthRequired is returned by operations that have no default month.
var ErrMonthRequired = errors.New("analytics: month is required")

// Engine evaluates queries against one immutable snapshot. Methods do not
// mutate shared state and may be called concurrently.
type Engine struct {
	snap *dataset.Snapshot
}

// NewEngine binds an engine to a snapshot.
func NewEngine(snap *dataset.Snapshot) *Engine {
	return &Engine{snap: snap}
}

// Snapshot returns the bound snapshot.
func (e *Engine) Snapshot() *dataset.Snapshot { return e.snap }

// Category rules. Revenue and COGS are exact (case-insensitive) matches; opex
// is a loose substring rule.
func isRevenue(category string) bool {
	return strings.EqualFold(strings.TrimSpace(category), "revenue")
}

func isCOGS(category string) bool {
	return strings.EqualFold(strings.TrimSpace(category), "cogs")
}

func isOpex(category string) bool {
	c := strings.ToLower(category)
	return strings.Contains(c, "opex") || strings.Contains(c, "operating")
}

func parseMonth(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, ErrMonthRequired
	}
	m, err := dataset.ParseMonth(s)
	if err != nil {
		return time.Time{}, &MonthError{Input: s, Err: err}
	}
	return m, nil
}

func selectAmounts(rows []dataset.AmountRecord, month time.Time, entity string, match func(string) bool) []dataset.AmountRecord {
	var out []dataset.AmountRecord
	for _, r := range rows {
		if !dataset.SameMonth(r.Date, month) || !match(r.Category) {
			continue
		}
		if entity != "" && r.Entity != entity {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (e *Engine) sumUSD(rows []dataset.AmountRecord, month time.Time, entity string, match func(string) bool) decimal.Decimal {
	return fx.SumUSD(fx.Convert(e.snap.Rates, selectAmounts(rows, month, entity, match)))
}

// RevenueVsBudget sums USD revenue from actuals and budget for the month.
// Either side is 0 when no rows match.
func (e *Engine) RevenueVsBudget(month, entity string) (RevenueVsBudget, error) {
	m, err := parseMonth(month)
	if err != nil {
		return RevenueVsBudget{}, err
	}
	entity = strings.TrimSpace(entity)
	return RevenueVsBudget{
		Month:     m,
		ActualUSD: e.sumUSD(e.snap.Actuals, m, entity, isRevenue).InexactFloat64(),
		BudgetUSD: e.sumUSD(e.snap.Budget, m, entity, isRevenue).InexactFloat64(),
	}, nil
}

// GrossMarginTrend returns exactly months rows ending at endMonth (default:
// latest actuals month), oldest first. Months with no revenue carry a nil margin.
func (e *Engine) GrossMarginTrend(months int, endMonth string) ([]MarginPoint, error) {
	if months == 0 {
		months = config.DefaultLookbackMonths
	}
	if months < 0 || months > config.MaxTrendMonths {
		return nil, ErrInvalidMonths
	}

	var end time.Time
	if strings.TrimSpace(endMonth) == "" {
		latest, ok := e.snap.LatestActualsMonth()
		if !ok {
			return nil, ErrNoData
		}
		end = latest
	} else {
		m, err := parseMonth(endMonth)
		if err != nil {
			return nil, err
		}
		end = m
	}

	out := make([]MarginPoint, 0, months)
	for _, m := range dataset.MonthRange(end, months) {
		rev := e.sumUSD(e.snap.Actuals, m, "", isRevenue)
		cogs := e.sumUSD(e.snap.Actuals, m, "", isCOGS)
		p := MarginPoint{
			Date:       m,
			RevenueUSD: rev.InexactFloat64(),
			COGSUSD:    cogs.InexactFloat64(),
		}
		if !rev.IsZero() {
			pct := (p.RevenueUSD - p.COGSUSD) / p.RevenueUSD
			p.GrossMarginPct = &pct
		}
		out = append(out, p)
	}
	return out, nil
}

// OpexBreakdown groups opex rows for the month by category and sorts the
// totals descending. Equal totals keep first-seen order.
func (e *Engine) OpexBreakdown(month, entity string) ([]OpexLine, error) {
	m, err := parseMonth(month)
	if err != nil {
		return nil, err
	}
	rows := fx.Convert(e.snap.Rates, selectAmounts(e.snap.Actuals, m, strings.TrimSpace(entity), isOpex))

	type group struct {
		account string
		total   decimal.Decimal
	}
	var groups []*group
	index := map[string]*group{}
	for _, r := range rows {
		g, ok := index[r.Row.Category]
		if !ok {
			g = &group{account: r.Row.Category}
			index[r.Row.Category] = g
			groups = append(groups, g)
		}
		g.total = g.total.Add(r.AmountUSD)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].total.GreaterThan(groups[j].total)
	})

	out := make([]OpexLine, len(groups))
	for i, g := range groups {
		out[i] = OpexLine{Account: g.account, AmountUSD: g.total.InexactFloat64()}
	}
	return out, nil
}

// EBITDAProxy computes revenue - cogs - opex for the month using the same
// category rules as the other operations.
func (e *Engine) EBITDAProxy(month, entity string) (EBITDA, error) {
	m, err := parseMonth(month)
	if err != nil {
		return EBITDA{}, err
	}
	entity = strings.TrimSpace(entity)
	rev := e.sumUSD(e.snap.Actuals, m, entity, isRevenue)
	cogs := e.sumUSD(e.snap.Actuals, m, entity, isCOGS)
	opex := e.sumUSD(e.snap.Actuals, m, entity, isOpex)
	return EBITDA{
		Month:      m,
		EBITDAUSD:  rev.Sub(cogs).Sub(opex).InexactFloat64(),
		RevenueUSD: rev.InexactFloat64(),
		COGSUSD:    cogs.InexactFloat64(),
		OpexUSD:    opex.InexactFloat64(),
	}, nil
}

// CashRunway averages month-over-month net burn across the window ending at
// asOf (default: latest cash month) and divides current cash by it. Months
// missing from the cash sheet are filled from their neighbours in the window.
// Balances of all matching entities in a month are summed.
func (e *Engine) CashRunway(asOf, entity string) (CashRunway, error) {
	var end time.Time
	if strings.TrimSpace(asOf) == "" {
		latest, ok := e.snap.LatestCashMonth()
		if !ok {
			return CashRunway{}, ErrNoData
		}
		end = latest
	} else {
		m, err := parseMonth(asOf)
		if err != nil {
			return CashRunway{}, err
		}
		end = m
	}
	entity = strings.TrimSpace(entity)

	rows := e.snap.Cash
	if entity != "" {
		rows = make([]dataset.CashRecord, 0, len(e.snap.Cash))
		for _, r := range e.snap.Cash {
			if r.Entity == entity {
				rows = append(rows, r)
			}
		}
	}
	converted := fx.Convert(e.snap.Rates, rows)

	window := dataset.MonthRange(end, config.DefaultRunwayWindowMonths)
	balances := make([]decimal.NullDecimal, len(window))
	for i, m := range window {
		for _, r := range converted {
			if !dataset.SameMonth(r.Row.Date, m) {
				continue
			}
			balances[i].Decimal = balances[i].Decimal.Add(r.AmountUSD)
			balances[i].Valid = true
		}
	}
	fx.Fill(balances)

	burnTotal := decimal.Zero
	burns := 0
	for i := 1; i < len(balances); i++ {
		if balances[i-1].Valid && balances[i].Valid {
			burnTotal = burnTotal.Add(balances[i-1].Decimal.Sub(balances[i].Decimal))
			burns++
		}
	}

	out := CashRunway{AsOf: end, RunwayMonths: UnboundedRunway}
	if last := balances[len(balances)-1]; last.Valid {
		out.CurrentCashUSD = last.Decimal.InexactFloat64()
	}
	if burns > 0 {
		out.AvgMonthlyBurnUSD = burnTotal.Div(decimal.NewFromInt(int64(burns))).InexactFloat64()
	}
	if out.AvgMonthlyBurnUSD > 0 {
		out.RunwayMonths = out.CurrentCashUSD / out.AvgMonthlyBurnUSD
	}
	return out, nil
}
