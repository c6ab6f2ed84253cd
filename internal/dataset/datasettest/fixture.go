// Package datasettest builds small finance workbooks for tests.
package datasettest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sheets maps a sheet name to its rows; the first row is the header.
type Sheets map[string][][]any

// Month returns the first day of a month in UTC.
func Month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// Standard is the reference workbook: one USD parent entity, a EUR subsidiary
// with an fx gap in June, and three months of declining cash.
//
//	June 2025: revenue 120000, cogs 48000, budget revenue 110000
//	opex: Opex - Marketing 15000, Operating Expenses - Rent 7000, Opex - Admin EUR 5000 (@1.09)
//	cash: 500000 → 470000 → 440000
func Standard() Sheets {
	return Sheets{
		"actuals": {
			{"month", "entity", "account_category", "currency", "amount"},
			{Month(2025, time.April), "ParentCo", "Revenue", "USD", 100000},
			{Month(2025, time.April), "ParentCo", "COGS", "USD", 45000},
			{Month(2025, time.April), "ParentCo", "Opex - Marketing", "USD", 10000},
			{Month(2025, time.April), "EMEA", "Opex - Admin", "EUR", 8000},
			{Month(2025, time.May), "ParentCo", "Revenue", "USD", 110000},
			{Month(2025, time.May), "ParentCo", "COGS", "USD", 46000},
			{Month(2025, time.May), "ParentCo", "Opex - Marketing", "USD", 12000},
			{Month(2025, time.May), "ParentCo", "Operating Expenses - R&D", "USD", 9000},
			{"2025-06-15", "ParentCo", "Revenue", "USD", 120000},
			{"2025-06", "ParentCo", "cogs", "USD", "48,000"},
			{"June 2025", "ParentCo", "Opex - Marketing", "USD", 15000},
			{"Jun 2025", "ParentCo", "Operating Expenses - Rent", "USD", 7000},
			{"2025-06-01", "EMEA", "Opex - Admin", "EUR", 5000},
		},
		"budget": {
			{"month", "entity", "account_category", "currency", "amount"},
			{"2025-05", "ParentCo", "Revenue", "USD", 105000},
			{"2025-06", "ParentCo", "Revenue", "USD", 110000},
			{"2025-06", "ParentCo", "COGS", "USD", 44000},
		},
		"cash": {
			{"month", "entity", "currency", "cash_usd"},
			{"2025-04", "ParentCo", "USD", 500000},
			{"2025-05", "ParentCo", "USD", 470000},
			{"2025-06", "ParentCo", "USD", 440000},
		},
		"fx": {
			{"month", "currency", "rate_to_usd"},
			{"2025-04", "EUR", 1.08},
			{"2025-05", "EUR", 1.09},
			{"2025-04", "USD", 1},
			{"2025-05", "USD", 1},
			{"2025-06", "USD", 1},
		},
	}
}

// Workbook writes sheets into a new in-memory workbook.
func Workbook(t testing.TB, sheets Sheets) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}
	return f
}

// Save writes sheets to an xlsx file under t.TempDir and returns its path.
func Save(t testing.TB, sheets Sheets) string {
	t.Helper()
	f := Workbook(t, sheets)
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}
