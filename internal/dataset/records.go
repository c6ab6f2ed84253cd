package dataset

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vinodismyname/fpacopilot/internal/fx"
)

// AmountRecord is one row of the actuals or budget sheet.
type AmountRecord struct {
	Date     time.Time       `json:"date"`
	Entity   string          `json:"entity"`
	Category string          `json:"category"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// FXKey implements fx.Amount.
func (r AmountRecord) FXKey() (time.Time, string) { return r.Date, r.Currency }

// NativeAmount implements fx.Amount.
func (r AmountRecord) NativeAmount() decimal.Decimal { return r.Amount }

// CashRecord is one row of the cash sheet.
type CashRecord struct {
	Date        time.Time       `json:"date"`
	Entity      string          `json:"entity"`
	Currency    string          `json:"currency"`
	CashBalance decimal.Decimal `json:"cash_balance"`
}

// FXKey implements fx.Amount.
func (r CashRecord) FXKey() (time.Time, string) { return r.Date, r.Currency }

// NativeAmount implements fx.Amount.
func (r CashRecord) NativeAmount() decimal.Decimal { return r.CashBalance }

// LoadStats counts the data-quality repairs made while loading.
type LoadStats struct {
	Rows         map[string]int `json:"rows"`
	SkippedRows  int            `json:"skipped_rows"`
	CoercedCells int            `json:"coerced_cells"`
}

// Snapshot is one loaded workbook. It is never mutated after Load returns, so a
// single snapshot may be shared by concurrent readers.
type Snapshot struct {
	Source   string
	LoadedAt time.Time

	Actuals []AmountRecord
	Budget  []AmountRecord
	Cash    []CashRecord
	FX      []fx.Rate

	// Rates is built once from FX at load time.
	Rates *fx.Table

	Stats LoadStats
}

// NewSnapshot assembles a snapshot from already-normalized record sets and
// derives its rate table. Dates are truncated to the first of the month.
func NewSnapshot(actuals, budget []AmountRecord, cash []CashRecord, rates []fx.Rate) *Snapshot {
	for i := range actuals {
		actuals[i].Date = MonthStart(actuals[i].Date)
	}
	for i := range budget {
		budget[i].Date = MonthStart(budget[i].Date)
	}
	for i := range cash {
		cash[i].Date = MonthStart(cash[i].Date)
	}
	for i := range rates {
		rates[i].Date = MonthStart(rates[i].Date)
	}
	return &Snapshot{
		Actuals: actuals,
		Budget:  budget,
		Cash:    cash,
		FX:      rates,
		Rates:   fx.Build(rates),
		Stats: LoadStats{Rows: map[string]int{
			SheetActuals: len(actuals),
			SheetBudget:  len(budget),
			SheetCash:    len(cash),
			SheetFX:      len(rates),
		}},
	}
}

// LatestActualsMonth returns the most recent month present in actuals.
func (s *Snapshot) LatestActualsMonth() (time.Time, bool) {
	var latest time.Time
	for _, r := range s.Actuals {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest, !latest.IsZero()
}

// LatestCashMonth returns the most recent month present in cash.
func (s *Snapshot) LatestCashMonth() (time.Time, bool) {
	var latest time.Time
	for _, r := range s.Cash {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest, !latest.IsZero()
}

// Coverage reports the first and last month seen in actuals, or zero values when empty.
func (s *Snapshot) Coverage() (first, last time.Time) {
	for _, r := range s.Actuals {
		if first.IsZero() || r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last
}

// Entities lists distinct entity names across actuals and cash in first-seen order.
func (s *Snapshot) Entities() []string {
	seen := map[string]struct{}{}
	out := []string{}
	add := func(e string) {
		if e == "" {
			return
		}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	for _, r := range s.Actuals {
		add(r.Entity)
	}
	for _, r := range s.Cash {
		add(r.Entity)
	}
	return out
}
