package fx

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a row carrying a native-currency figure for a month.
type Amount interface {
	FXKey() (month time.Time, currency string)
	NativeAmount() decimal.Decimal
}

// Converted pairs a source row with the rate applied and its USD value.
type Converted[T Amount] struct {
	Row       T
	USDRate   decimal.Decimal
	AmountUSD decimal.Decimal
}

// Convert resolves each row's rate with a keyed lookup and multiplies it into
// the native amount. Nothing is rounded here.
func Convert[T Amount](t *Table, rows []T) []Converted[T] {
	out := make([]Converted[T], len(rows))
	for i, r := range rows {
		month, ccy := r.FXKey()
		rate := t.RateFor(month, ccy)
		out[i] = Converted[T]{
			Row:       r,
			USDRate:   rate,
			AmountUSD: r.NativeAmount().Mul(rate),
		}
	}
	return out
}

// SumUSD totals the USD amounts of converted rows.
func SumUSD[T Amount](rows []Converted[T]) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.AmountUSD)
	}
	return total
}
