package registry

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/fpacopilot/config"
	"github.com/vinodismyname/fpacopilot/internal/analytics"
	"github.com/vinodismyname/fpacopilot/internal/charts"
	"github.com/vinodismyname/fpacopilot/internal/dataset"
	"github.com/vinodismyname/fpacopilot/internal/datasets"
	"github.com/vinodismyname/fpacopilot/internal/intent"
	"github.com/vinodismyname/fpacopilot/internal/report"
	"github.com/vinodismyname/fpacopilot/internal/runtime"
	"github.com/vinodismyname/fpacopilot/pkg/mcperr"
	"github.com/vinodismyname/fpacopilot/pkg/pagination"
	"github.com/vinodismyname/fpacopilot/pkg/validation"
)

const opexTool = "opex_breakdown"

// SavePathValidator checks export destinations.
type SavePathValidator interface {
	ValidateSavePath(path string) (string, error)
}

// Service implements the finance tool handlers over the dataset cache.
type Service struct {
	Datasets *datasets.Manager
	Limits   runtime.Limits
	// Exports is nil when chart export is disabled.
	Exports SavePathValidator
}

func (s *Service) handle(id string) (*datasets.Handle, *mcp.CallToolResult) {
	h, err := s.Datasets.Get(strings.TrimSpace(id))
	if err != nil {
		return nil, toolError(err, mcperr.InvalidHandle)
	}
	return h, nil
}

// OpenDataset loads a workbook and returns its handle and coverage.
func (s *Service) OpenDataset(ctx context.Context, _ mcp.CallToolRequest, in OpenDatasetInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	h, err := s.Datasets.Open(ctx, strings.TrimSpace(in.Path))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", in.Path).Msg("open_dataset failed")
		return toolError(err, mcperr.LoadFailed), nil
	}
	snap := h.Snapshot
	out := OpenDatasetOutput{
		DatasetID:  h.ID,
		Source:     snap.Source,
		Currencies: snap.Rates.Currencies(),
		Entities:   snap.Entities(),
		Stats:      snap.Stats,
		ExpiresAt:  h.ExpiresAt(),
	}
	if first, last := snap.Coverage(); !first.IsZero() {
		out.FirstMonth, out.LastMonth = dataset.MonthLabel(first), dataset.MonthLabel(last)
	}
	summary := "dataset_id=" + h.ID
	if out.FirstMonth != "" {
		summary += " months=" + out.FirstMonth + ".." + out.LastMonth
	}
	if snap.Stats.SkippedRows > 0 || snap.Stats.CoercedCells > 0 {
		summary += " (data-quality repairs applied; see stats)"
	}
	return mcp.NewToolResultStructured(out, summary), nil
}

// CloseDataset drops a dataset handle.
func (s *Service) CloseDataset(ctx context.Context, _ mcp.CallToolRequest, in DatasetInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	if err := s.Datasets.CloseHandle(strings.TrimSpace(in.DatasetID)); err != nil {
		return toolError(err, mcperr.InvalidHandle), nil
	}
	return mcp.NewToolResultStructured(CloseDatasetOutput{Success: true}, "closed "+in.DatasetID), nil
}

// RevenueVsBudget compares actual and budget revenue for a month.
func (s *Service) RevenueVsBudget(ctx context.Context, _ mcp.CallToolRequest, in MonthInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	h, errRes := s.handle(in.DatasetID)
	if errRes != nil {
		return errRes, nil
	}
	r, err := h.Engine.RevenueVsBudget(in.Month, in.Entity)
	if err != nil {
		return toolError(err, mcperr.AnalysisFailed), nil
	}
	out := RevenueVsBudgetOutput{
		DatasetID:   h.ID,
		Result:      r,
		VarianceUSD: r.ActualUSD - r.BudgetUSD,
		Chart:       charts.RevenueVsBudget(r),
	}
	return mcp.NewToolResultStructured(out, summarizeRevenue(r)), nil
}

// GrossMarginTrend returns the monthly gross margin series.
func (s *Service) GrossMarginTrend(ctx context.Context, _ mcp.CallToolRequest, in GrossMarginTrendInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	h, errRes := s.handle(in.DatasetID)
	if errRes != nil {
		return errRes, nil
	}
	points, err := h.Engine.GrossMarginTrend(in.Months, in.EndMonth)
	if err != nil {
		return toolError(err, mcperr.AnalysisFailed), nil
	}
	out := GrossMarginTrendOutput{DatasetID: h.ID, Points: points, Chart: charts.MarginTrend(points)}
	return mcp.NewToolResultStructured(out, summarizeMargin(points)), nil
}

// OpexBreakdown pages through opex accounts sorted by USD amount. A cursor
// carries month, entity, offset and page size from the previous page.
func (s *Service) OpexBreakdown(ctx context.Context, _ mcp.CallToolRequest, in OpexBreakdownInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	h, errRes := s.handle(in.DatasetID)
	if errRes != nil {
		return errRes, nil
	}

	month, entity := in.Month, strings.TrimSpace(in.Entity)
	off, ps := 0, s.Limits.ClampPageSize(in.Limit)
	if strings.TrimSpace(in.Cursor) != "" {
		c, err := pagination.DecodeCursor(in.Cursor)
		if err != nil || c.Did != h.ID || c.Op != opexTool {
			return mcperr.New(mcperr.CursorInvalid, ""), nil
		}
		month, entity, off, ps = c.M, c.E, c.Off, s.Limits.ClampPageSize(c.Ps)
	}

	lines, err := h.Engine.OpexBreakdown(month, entity)
	if err != nil {
		return toolError(err, mcperr.AnalysisFailed), nil
	}
	m, err := dataset.ParseMonth(month)
	if err != nil {
		return toolError(&analytics.MonthError{Input: month, Err: err}, mcperr.AnalysisFailed), nil
	}
	label := dataset.MonthLabel(m)

	page, more := pagination.Slice(lines, off, ps)
	out := OpexBreakdownOutput{
		DatasetID: h.ID,
		Month:     label,
		Entity:    entity,
		Lines:     page,
		Meta:      PageMeta{Total: len(lines), Returned: len(page), Truncated: more},
		Chart:     charts.OpexBreakdown(lines, label, config.DefaultChartTopN),
	}
	if out.Lines == nil {
		out.Lines = []analytics.OpexLine{}
	}
	for _, l := range lines {
		out.TotalUSD += l.AmountUSD
	}
	if c, ok := analytics.Concentration(lines, config.DefaultConcentrationTopN); ok {
		out.Concentration = &c
	}
	if more {
		next, err := pagination.EncodeCursor(pagination.Cursor{
			Did: h.ID, Op: opexTool, M: label, E: entity,
			Off: pagination.NextOffset(off, len(page)), Ps: ps,
		})
		if err != nil {
			return mcperr.New(mcperr.CursorInvalid, err.Error()), nil
		}
		out.Meta.NextCursor = next
	}
	return mcp.NewToolResultStructured(out, summarizeOpex(label, lines)), nil
}

// EBITDAProxy computes revenue - cogs - opex for a month.
func (s *Service) EBITDAProxy(ctx context.Context, _ mcp.CallToolRequest, in MonthInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	h, errRes := s.handle(in.DatasetID)
	if errRes != nil {
		return errRes, nil
	}
	e, err := h.Engine.EBITDAProxy(in.Month, in.Entity)
	if err != nil {
		return toolError(err, mcperr.AnalysisFailed), nil
	}
	return mcp.NewToolResultStructured(EBITDAOutput{DatasetID: h.ID, Result: e}, summarizeEBITDA(e)), nil
}

// CashRunway estimates months of cash left.
func (s *Service) CashRunway(ctx context.Context, _ mcp.CallToolRequest, in CashRunwayInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	h, errRes := s.handle(in.DatasetID)
	if errRes != nil {
		return errRes, nil
	}
	c, err := h.Engine.CashRunway(in.AsOf, in.Entity)
	if err != nil {
		return toolError(err, mcperr.AnalysisFailed), nil
	}
	return mcp.NewToolResultStructured(CashRunwayOutput{DatasetID: h.ID, Result: c}, summarizeRunway(c)), nil
}

// AskQuestion classifies a question and runs the matching operation.
func (s *Service) AskQuestion(ctx context.Context, _ mcp.CallToolRequest, in AskQuestionInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	h, errRes := s.handle(in.DatasetID)
	if errRes != nil {
		return errRes, nil
	}
	classified := intent.Classify(in.Question)
	zerolog.Ctx(ctx).Debug().
		Str("intent", string(classified.Intent)).
		Str("month", classified.Params.Month).
		Str("entity", classified.Params.Entity).
		Int("months", classified.Params.Months).
		Msg("question classified")

	ans, err := intent.Dispatch(h.Engine, classified)
	if err != nil {
		if errors.Is(err, intent.ErrUnknownIntent) {
			return toolError(err, mcperr.UnknownIntent), nil
		}
		return toolError(err, mcperr.AnalysisFailed), nil
	}
	text := Summarize(ans)
	out := AskQuestionOutput{
		DatasetID: h.ID,
		Intent:    ans.Intent,
		Params:    ans.Params,
		Result:    ans.Value,
		Answer:    text,
	}
	return mcp.NewToolResultStructured(out, text), nil
}

// ExportChart renders one chart into an xlsx workbook with a native chart.
func (s *Service) ExportChart(ctx context.Context, _ mcp.CallToolRequest, in ExportChartInput) (*mcp.CallToolResult, error) {
	if s.Exports == nil {
		return mcperr.New(mcperr.PermissionDenied, "chart export is disabled"), nil
	}
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	h, errRes := s.handle(in.DatasetID)
	if errRes != nil {
		return errRes, nil
	}

	var chart charts.Chart
	switch in.Kind {
	case ExportRevenueVsBudget:
		r, err := h.Engine.RevenueVsBudget(in.Month, in.Entity)
		if err != nil {
			return toolError(err, mcperr.AnalysisFailed), nil
		}
		chart = charts.RevenueVsBudget(r)
	case ExportGrossMarginTrend:
		points, err := h.Engine.GrossMarginTrend(in.Months, in.Month)
		if err != nil {
			return toolError(err, mcperr.AnalysisFailed), nil
		}
		chart = charts.MarginTrend(points)
	case ExportOpexBreakdown:
		lines, err := h.Engine.OpexBreakdown(in.Month, in.Entity)
		if err != nil {
			return toolError(err, mcperr.AnalysisFailed), nil
		}
		m, _ := dataset.ParseMonth(in.Month)
		chart = charts.OpexBreakdown(lines, dataset.MonthLabel(m), config.DefaultChartTopN)
	}

	path, err := s.Exports.ValidateSavePath(in.OutputPath)
	if err != nil {
		return toolError(err, mcperr.ExportFailed), nil
	}
	if err := report.Save(path, chart); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("path", path).Msg("export_chart failed")
		return mcperr.New(mcperr.ExportFailed, err.Error()), nil
	}
	return mcp.NewToolResultStructured(ExportChartOutput{Path: path, Chart: chart}, "wrote "+path), nil
}
