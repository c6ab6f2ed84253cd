// Package fx builds the month × currency USD rate table from the fx sheet
// and converts native-currency amounts to USD.
package fx

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultRateValue is the multiplier used when a (month, currency) pair has no
// rate after filling. USD rows resolve to the same value by definition.
const DefaultRateValue = 1.0

// DefaultRate is DefaultRateValue as a decimal.
var DefaultRate = decimal.NewFromFloat(DefaultRateValue)

// Rate is one row of the fx sheet. USDRate is invalid when the cell could not
// be parsed; such gaps are covered by fill like any absent observation.
type Rate struct {
	Date     time.Time
	Currency string
	USDRate  decimal.NullDecimal
}

type monthKey struct {
	year  int
	month time.Month
}

func monthOf(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: t.Month()}
}

func (k monthKey) time() time.Time {
	return time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC)
}

type key struct {
	month    monthKey
	currency string
}

// Table resolves a month and currency to a USD rate. It is immutable after Build.
type Table struct {
	months     []monthKey
	currencies []string
	rates      map[key]decimal.Decimal
}

// NormalizeCurrency trims and upper-cases a currency code.
func NormalizeCurrency(c string) string {
	return strings.ToUpper(strings.TrimSpace(c))
}

// Build pivots rates into a month × currency grid ordered by month, then fills
// each currency column forward and afterwards backward. When the same
// (month, currency) pair appears more than once the last row wins.
func Build(rates []Rate) *Table {
	t := &Table{rates: make(map[key]decimal.Decimal)}

	seenMonth := make(map[monthKey]struct{})
	grid := make(map[string]map[monthKey]decimal.NullDecimal)
	for _, r := range rates {
		mk := monthOf(r.Date)
		if _, ok := seenMonth[mk]; !ok {
			seenMonth[mk] = struct{}{}
			t.months = append(t.months, mk)
		}
		ccy := NormalizeCurrency(r.Currency)
		col, ok := grid[ccy]
		if !ok {
			col = make(map[monthKey]decimal.NullDecimal)
			grid[ccy] = col
			t.currencies = append(t.currencies, ccy)
		}
		col[mk] = r.USDRate
	}

	sort.Slice(t.months, func(i, j int) bool {
		return t.months[i].time().Before(t.months[j].time())
	})
	sort.Strings(t.currencies)

	for _, ccy := range t.currencies {
		col := grid[ccy]
		vals := make([]decimal.NullDecimal, len(t.months))
		for i, mk := range t.months {
			vals[i] = col[mk]
		}
		Fill(vals)
		for i, mk := range t.months {
			if vals[i].Valid {
				t.rates[key{month: mk, currency: ccy}] = vals[i].Decimal
			}
		}
	}
	return t
}

// Fill carries the last known value forward, then the first known value back
// over any leading gap. It modifies vals in place.
func Fill(vals []decimal.NullDecimal) {
	var last decimal.NullDecimal
	for i := range vals {
		if vals[i].Valid {
			last = vals[i]
		} else if last.Valid {
			vals[i] = last
		}
	}
	var next decimal.NullDecimal
	for i := len(vals) - 1; i >= 0; i-- {
		if vals[i].Valid {
			next = vals[i]
		} else if next.Valid {
			vals[i] = next
		}
	}
}

// Lookup returns the rate stored for the exact month and currency.
func (t *Table) Lookup(month time.Time, currency string) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Decimal{}, false
	}
	r, ok := t.rates[key{month: monthOf(month), currency: NormalizeCurrency(currency)}]
	return r, ok
}

// RateFor returns the filled rate for the pair, or DefaultRate when the table
// has none. Unknown currencies and months outside the fx range are not errors.
func (t *Table) RateFor(month time.Time, currency string) decimal.Decimal {
	if r, ok := t.Lookup(month, currency); ok {
		return r
	}
	return DefaultRate
}

// Months returns the table's months in ascending order.
func (t *Table) Months() []time.Time {
	if t == nil {
		return nil
	}
	out := make([]time.Time, len(t.months))
	for i, mk := range t.months {
		out[i] = mk.time()
	}
	return out
}

// Currencies returns the currency columns present in the source rows.
func (t *Table) Currencies() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.currencies))
	copy(out, t.currencies)
	return out
}
