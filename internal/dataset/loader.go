package dataset

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/vinodismyname/fpacopilot/internal/fx"
	"github.com/xuri/excelize/v2"
)

// Sheet names every workbook must contain.
const (
	SheetActuals = "actuals"
	SheetBudget  = "budget"
	SheetCash    = "cash"
	SheetFX      = "fx"
)

// Canonical column names used everywhere downstream of the loader.
const (
	ColDate        = "date"
	ColEntity      = "entity"
	ColCategory    = "category"
	ColCurrency    = "currency"
	ColAmount      = "amount"
	ColCashBalance = "cash_balance"
	ColUSDRate     = "usd_rate"
)

// defaultCurrency fills rows whose sheet has no currency column or an empty cell.
const defaultCurrency = "USD"

// headerAliases maps lower-cased source headers to canonical names.
var headerAliases = map[string]string{
	"month":            ColDate,
	"date":             ColDate,
	"entity":           ColEntity,
	"account_category": ColCategory,
	"category":         ColCategory,
	"currency":         ColCurrency,
	"amount":           ColAmount,
	"cash_usd":         ColCashBalance,
	"cash_balance":     ColCashBalance,
	"rate_to_usd":      ColUSDRate,
	"usd_rate":         ColUSDRate,
}

var requiredColumns = map[string][]string{
	SheetActuals: {ColDate, ColCategory, ColAmount},
	SheetBudget:  {ColDate, ColCategory, ColAmount},
	SheetCash:    {ColDate, ColCashBalance},
	SheetFX:      {ColDate, ColCurrency, ColUSDRate},
}

// Load opens the workbook at path and loads a snapshot from it.
func Load(ctx context.Context, path string) (*Snapshot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	snap, err := LoadFile(ctx, f)
	if err != nil {
		return nil, err
	}
	snap.Source = path
	return snap, nil
}

// LoadFile reads the four required sheets from an open workbook. Dirty numeric
// cells become 0 and dates are truncated to the first of the month; only a
// missing sheet or required column fails the load.
func LoadFile(ctx context.Context, f *excelize.File) (*Snapshot, error) {
	l := &loader{f: f}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		l.date1904 = *props.Date1904
	}

	tables := make(map[string]*table, len(requiredColumns))
	for _, name := range []string{SheetActuals, SheetBudget, SheetCash, SheetFX} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := l.readTable(name)
		if err != nil {
			return nil, err
		}
		tables[name] = t
	}

	actuals := l.amountRecords(tables[SheetActuals])
	budget := l.amountRecords(tables[SheetBudget])
	cash := l.cashRecords(tables[SheetCash])
	rates := l.fxRates(tables[SheetFX])

	snap := NewSnapshot(actuals, budget, cash, rates)
	snap.LoadedAt = time.Now().UTC()
	snap.Stats.SkippedRows = l.skipped
	snap.Stats.CoercedCells = l.coerced

	logger := zerolog.Ctx(ctx)
	if l.skipped > 0 || l.coerced > 0 {
		logger.Warn().
			Int("skipped_rows", l.skipped).
			Int("coerced_cells", l.coerced).
			Msg("dataset: dirty cells coerced during load")
	}
	logger.Debug().
		Int("actuals", len(actuals)).
		Int("budget", len(budget)).
		Int("cash", len(cash)).
		Int("fx", len(rates)).
		Msg("dataset loaded")
	return snap, nil
}

type loader struct {
	f        *excelize.File
	date1904 bool
	skipped  int
	coerced  int
}

type table struct {
	name string
	cols map[string]int
	rows [][]string
}

func (t *table) cell(row []string, col string) string {
	idx, ok := t.cols[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (l *loader) readTable(name string) (*table, error) {
	sheet := ""
	for _, s := range l.f.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			sheet = s
			break
		}
	}
	if sheet == "" {
		return nil, &LoadError{Table: name, Err: ErrMissingTable}
	}

	rows, err := l.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("dataset: read sheet %q: %w", sheet, err)
	}

	// The header is the first row with any non-blank cell.
	start := 0
	for start < len(rows) && blank(rows[start]) {
		start++
	}
	t := &table{name: name, cols: map[string]int{}}
	if start < len(rows) {
		for i, h := range rows[start] {
			canonical, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]
			if !ok {
				continue
			}
			if _, dup := t.cols[canonical]; !dup {
				t.cols[canonical] = i
			}
		}
		t.rows = rows[start+1:]
	}
	for _, col := range requiredColumns[name] {
		if _, ok := t.cols[col]; !ok {
			return nil, &LoadError{Table: name, Column: col, Err: ErrMissingColumn}
		}
	}
	return t, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (l *loader) amountRecords(t *table) []AmountRecord {
	out := make([]AmountRecord, 0, len(t.rows))
	for _, row := range t.rows {
		if blank(row) {
			continue
		}
		date, ok := l.date(t.cell(row, ColDate))
		if !ok {
			l.skipped++
			continue
		}
		out = append(out, AmountRecord{
			Date:     date,
			Entity:   t.cell(row, ColEntity),
			Category: t.cell(row, ColCategory),
			Currency: currencyOrDefault(t.cell(row, ColCurrency)),
			Amount:   l.number(t.cell(row, ColAmount)),
		})
	}
	return out
}

func (l *loader) cashRecords(t *table) []CashRecord {
	out := make([]CashRecord, 0, len(t.rows))
	for _, row := range t.rows {
		if blank(row) {
			continue
		}
		date, ok := l.date(t.cell(row, ColDate))
		if !ok {
			l.skipped++
			continue
		}
		out = append(out, CashRecord{
			Date:        date,
			Entity:      t.cell(row, ColEntity),
			Currency:    currencyOrDefault(t.cell(row, ColCurrency)),
			CashBalance: l.number(t.cell(row, ColCashBalance)),
		})
	}
	return out
}

func (l *loader) fxRates(t *table) []fx.Rate {
	out := make([]fx.Rate, 0, len(t.rows))
	for _, row := range t.rows {
		if blank(row) {
			continue
		}
		date, ok := l.date(t.cell(row, ColDate))
		ccy := fx.NormalizeCurrency(t.cell(row, ColCurrency))
		if !ok || ccy == "" {
			l.skipped++
			continue
		}
		r := fx.Rate{Date: date, Currency: ccy}
		if v, ok := ParseNumber(t.cell(row, ColUSDRate)); ok {
			r.USDRate = decimal.NewNullDecimal(v)
		} else {
			l.coerced++
		}
		out = append(out, r)
	}
	return out
}

func currencyOrDefault(c string) string {
	c = fx.NormalizeCurrency(c)
	if c == "" {
		return defaultCurrency
	}
	return c
}

// number coerces a cell to a decimal, counting any cell that falls back to 0.
func (l *loader) number(v string) decimal.Decimal {
	d, ok := ParseNumber(v)
	if !ok {
		l.coerced++
		return decimal.Zero
	}
	return d
}

// date accepts Excel serial numbers and month-like strings.
func (l *loader) date(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, l.date1904)
		if err != nil {
			return time.Time{}, false
		}
		return MonthStart(t), true
	}
	t, err := ParseMonth(v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseNumber parses a numeric cell, tolerating currency symbols, thousands
// separators and accounting-style parentheses for negatives.
func ParseNumber(v string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return decimal.Zero, false
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', '$', '€', '£', '¥', ' ', '\u00a0':
			return -1
		default:
			return r
		}
	}, s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
