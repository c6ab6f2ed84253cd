package report

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/fpacopilot/internal/analytics"
	"github.com/vinodismyname/fpacopilot/internal/charts"
	"github.com/xuri/excelize/v2"
)

func sampleCharts() []charts.Chart {
	pct := 0.6
	return []charts.Chart{
		charts.MarginTrend([]analytics.MarginPoint{
			{Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
			{Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), RevenueUSD: 120000, COGSUSD: 48000, GrossMarginPct: &pct},
		}),
		charts.RevenueVsBudget(analytics.RevenueVsBudget{
			Month: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), ActualUSD: 120000, BudgetUSD: 110000,
		}),
	}
}

func TestRender_WritesDataAndCharts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleCharts()...))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{"Gross Margin %", "Revenue vs Budget (2025-06)"}, f.GetSheetList())

	label, err := f.GetCellValue("Gross Margin %", "A3")
	require.NoError(t, err)
	require.Equal(t, "2025-06", label)
	gap, err := f.GetCellValue("Gross Margin %", "B2")
	require.NoError(t, err)
	require.Empty(t, gap)

	actual, err := f.GetCellValue("Revenue vs Budget (2025-06)", "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Equal(t, "120000", actual)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	var chartParts int
	for _, zf := range zr.File {
		if matched, _ := filepath.Match("xl/charts/chart*.xml", zf.Name); matched {
			chartParts++
		}
	}
	require.Equal(t, 2, chartParts)
}

func TestSave_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Save(path, sampleCharts()[1]))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestRender_NoCharts(t *testing.T) {
	require.Error(t, Render(&bytes.Buffer{}))
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]int{}
	require.Equal(t, "Opex breakdown (2025-06)", uniqueSheetName("Opex breakdown (2025-06)", 0, used))
	require.Equal(t, "Opex breakdown (2025-06) 2", uniqueSheetName("Opex breakdown (2025-06)", 1, used))
	require.Equal(t, "Chart 3", uniqueSheetName("[]", 2, used))
	long := uniqueSheetName("A very long chart title that exceeds the limit", 3, used)
	require.LessOrEqual(t, len(long), maxSheetName)
}
