// Package report renders chart series into an xlsx workbook with native
// Excel charts, one sheet per chart.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/vinodismyname/fpacopilot/internal/charts"
	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// Render writes one sheet per chart holding the series data and a chart
// anchored beside it.
func Render(w io.Writer, cs ...charts.Chart) error {
	if len(cs) == 0 {
		return fmt.Errorf("report: no charts to render")
	}
	f, err := build(cs)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("report: write workbook: %w", err)
	}
	return nil
}

// Save renders charts to an xlsx file at path.
func Save(path string, cs ...charts.Chart) error {
	if len(cs) == 0 {
		return fmt.Errorf("report: no charts to render")
	}
	f, err := build(cs)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

func build(cs []charts.Chart) (*excelize.File, error) {
	f := excelize.NewFile()
	used := map[string]int{}
	for i, c := range cs {
		name := uniqueSheetName(c.Title, i, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				_ = f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := writeChart(f, name, c); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("report: chart %q: %w", c.Title, err)
		}
	}
	return f, nil
}

// writeChart lays out labels in column A and one value column per series,
// then anchors the chart to the right of the data.
func writeChart(f *excelize.File, sheet string, c charts.Chart) error {
	if len(c.Series) == 0 {
		return fmt.Errorf("chart has no series")
	}
	header := []any{axisTitle(c.XAxis, "Label")}
	for _, s := range c.Series {
		header = append(header, s.Name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	rows := len(c.Series[0].Data)
	for r := 0; r < rows; r++ {
		row := []any{c.Series[0].Data[r].Label}
		for _, s := range c.Series {
			if r < len(s.Data) && s.Data[r].Value != nil {
				row = append(row, *s.Data[r].Value)
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if rows == 0 {
		return nil
	}

	chart := &excelize.Chart{
		Type:   excelize.Col,
		Title:  []excelize.RichTextRun{{Text: c.Title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: c.XAxis}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: c.YAxis}}, MajorGridLines: true},
	}
	if c.Kind == charts.KindLine {
		chart.Type = excelize.Line
	} else {
		chart.PlotArea = excelize.ChartPlotArea{ShowVal: true}
	}
	ref := quoteSheet(sheet)
	for i, s := range c.Series {
		col, err := excelize.ColumnNumberToName(i + 2)
		if err != nil {
			return err
		}
		series := excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", ref, col),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", ref, rows+1),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", ref, col, col, rows+1),
		}
		if s.Color != "" {
			series.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(s.Color, "#")}}
		}
		if c.Kind == charts.KindLine {
			series.Marker = excelize.ChartMarker{Symbol: "circle", Size: 7}
		}
		chart.Series = append(chart.Series, series)
	}
	anchor, err := excelize.CoordinatesToCellName(len(c.Series)+3, 2)
	if err != nil {
		return err
	}
	return f.AddChart(sheet, anchor, chart)
}

func axisTitle(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// uniqueSheetName strips characters Excel rejects, bounds the length and
// de-duplicates titles.
func uniqueSheetName(title string, idx int, used map[string]int) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	clean = strings.Trim(clean, "'")
	if clean == "" {
		clean = fmt.Sprintf("Chart %d", idx+1)
	}
	if len(clean) > maxSheetName {
		clean = strings.TrimSpace(clean[:maxSheetName])
	}
	key := strings.ToLower(clean)
	if n := used[key]; n > 0 {
		suffix := fmt.Sprintf(" %d", n+1)
		if len(clean)+len(suffix) > maxSheetName {
			clean = clean[:maxSheetName-len(suffix)]
		}
		clean += suffix
	}
	used[key]++
	return clean
}
