package registry

import (
	"time"

	"github.com/vinodismyname/fpacopilot/internal/analytics"
	"github.com/vinodismyname/fpacopilot/internal/charts"
	"github.com/vinodismyname/fpacopilot/internal/dataset"
	"github.com/vinodismyname/fpacopilot/internal/intent"
)

// OpenDatasetInput defines parameters for loading a finance workbook.
type OpenDatasetInput struct {
	Path string `json:"path" validate:"required,filepath_ext" jsonschema_description:"Path to an Excel workbook with actuals, budget, cash and fx sheets"`
}

// OpenDatasetOutput documents the loaded dataset.
type OpenDatasetOutput struct {
	DatasetID  string            `json:"dataset_id" jsonschema_description:"Server-assigned dataset handle ID"`
	Source     string            `json:"source"`
	FirstMonth string            `json:"first_month,omitempty" jsonschema_description:"Earliest month in actuals (YYYY-MM)"`
	LastMonth  string            `json:"last_month,omitempty" jsonschema_description:"Latest month in actuals (YYYY-MM)"`
	Currencies []string          `json:"currencies" jsonschema_description:"Currencies with FX rates"`
	Entities   []string          `json:"entities"`
	Stats      dataset.LoadStats `json:"stats" jsonschema_description:"Row counts and data-quality repairs"`
	ExpiresAt  time.Time         `json:"expires_at" jsonschema_description:"Idle expiry; refreshed on each use"`
}

// DatasetInput identifies a dataset handle.
type DatasetInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID from open_dataset"`
}

// CloseDatasetOutput reports the result of close_dataset.
type CloseDatasetOutput struct {
	Success bool `json:"success" jsonschema_description:"True when the handle was closed"`
}

// MonthInput selects one month and an optional entity.
type MonthInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	Month     string `json:"month" validate:"required,month" jsonschema_description:"Month such as 2025-06, Jun 2025 or June 2025"`
	Entity    string `json:"entity,omitempty" jsonschema_description:"Restrict to one entity; empty means all"`
}

// RevenueVsBudgetOutput carries the comparison and its bar series.
type RevenueVsBudgetOutput struct {
	DatasetID   string                    `json:"dataset_id"`
	Result      analytics.RevenueVsBudget `json:"result"`
	VarianceUSD float64                   `json:"variance_usd" jsonschema_description:"Actual minus budget"`
	Chart       charts.Chart              `json:"chart"`
}

// GrossMarginTrendInput selects the trend window.
type GrossMarginTrendInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	Months    int    `json:"months,omitempty" validate:"gte=0,lte=120" jsonschema_description:"Number of months (default 3)"`
	EndMonth  string `json:"end_month,omitempty" validate:"omitempty,month" jsonschema_description:"Last month of the window (default: latest actuals month)"`
}

// GrossMarginTrendOutput carries the monthly points and the line series.
type GrossMarginTrendOutput struct {
	DatasetID string                  `json:"dataset_id"`
	Points    []analytics.MarginPoint `json:"points"`
	Chart     charts.Chart            `json:"chart"`
}

// OpexBreakdownInput selects a month and pages through accounts.
type OpexBreakdownInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	Month     string `json:"month,omitempty" validate:"omitempty,month" jsonschema_description:"Month (required unless cursor is supplied)"`
	Entity    string `json:"entity,omitempty" jsonschema_description:"Restrict to one entity; empty means all"`
	Limit     int    `json:"limit,omitempty" validate:"gte=0,lte=200" jsonschema_description:"Accounts per page"`
	Cursor    string `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque cursor from a previous page"`
}

// PageMeta captures paging metadata.
type PageMeta struct {
	Total      int    `json:"total"`
	Returned   int    `json:"returned"`
	Truncated  bool   `json:"truncated"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// OpexBreakdownOutput carries one page of accounts, the month total and a
// top-N bar series over all accounts.
type OpexBreakdownOutput struct {
	DatasetID string               `json:"dataset_id"`
	Month     string               `json:"month"`
	Entity    string               `json:"entity,omitempty"`
	Lines     []analytics.OpexLine `json:"lines"`
	TotalUSD  float64              `json:"total_usd"`
	Meta      PageMeta             `json:"meta"`
	Chart     charts.Chart         `json:"chart"`

	// Concentration is omitted when the month has no positive opex.
	Concentration *analytics.OpexConcentration `json:"concentration,omitempty" jsonschema_description:"Top-N share and HHI band over all accounts"`
}

// EBITDAOutput carries the EBITDA proxy.
type EBITDAOutput struct {
	DatasetID string           `json:"dataset_id"`
	Result    analytics.EBITDA `json:"result"`
}

// CashRunwayInput selects the as-of month.
type CashRunwayInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	AsOf      string `json:"as_of,omitempty" validate:"omitempty,month" jsonschema_description:"As-of month (default: latest cash month)"`
	Entity    string `json:"entity,omitempty" jsonschema_description:"Restrict to one entity; empty sums all"`
}

// CashRunwayOutput carries the runway estimate.
type CashRunwayOutput struct {
	DatasetID string               `json:"dataset_id"`
	Result    analytics.CashRunway `json:"result"`
}

// AskQuestionInput carries a free-text question.
type AskQuestionInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	Question  string `json:"question" validate:"required" jsonschema_description:"e.g. What was June 2025 revenue vs budget in USD?"`
}

// AskQuestionOutput carries the classified intent and the operation result.
type AskQuestionOutput struct {
	DatasetID string        `json:"dataset_id"`
	Intent    intent.Intent `json:"intent"`
	Params    intent.Params `json:"params"`
	Result    any           `json:"result"`
	Answer    string        `json:"answer" jsonschema_description:"Formatted one-line answer"`
}

// Chart kinds accepted by export_chart.
const (
	ExportRevenueVsBudget  = "revenue_vs_budget"
	ExportGrossMarginTrend = "gross_margin_trend"
	ExportOpexBreakdown    = "opex_breakdown"
)

// ExportChartInput selects a chart and the workbook to write it to.
type ExportChartInput struct {
	DatasetID  string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	Kind       string `json:"kind" validate:"required,oneof=revenue_vs_budget gross_margin_trend opex_breakdown" jsonschema_description:"Chart to export"`
	Month      string `json:"month,omitempty" validate:"omitempty,month" jsonschema_description:"Month (end month for the margin trend)"`
	Months     int    `json:"months,omitempty" validate:"gte=0,lte=120" jsonschema_description:"Trend window for gross_margin_trend"`
	Entity     string `json:"entity,omitempty"`
	OutputPath string `json:"output_path" validate:"required,filepath_ext" jsonschema_description:"Destination .xlsx inside an allowed directory"`
}

// ExportChartOutput reports the written workbook.
type ExportChartOutput struct {
	Path  string       `json:"path"`
	Chart charts.Chart `json:"chart"`
}
