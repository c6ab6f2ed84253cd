package registry

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterFinanceTools defines the dataset lifecycle, analytics, question and
// export tools and binds them to svc.
func RegisterFinanceTools(s *server.MCPServer, reg *Registry, svc *Service) {
	add := func(tool mcp.Tool, handler server.ToolHandlerFunc) {
		s.AddTool(tool, handler)
		reg.Register(tool)
	}

	add(mcp.NewTool(
		"open_dataset",
		mcp.WithDescription("Load a finance workbook (sheets: actuals, budget, cash, fx) and return a dataset handle with month coverage, currencies, entities and load stats. Unparseable dates skip the row; unparseable amounts become 0 and are counted. Errors include UNSUPPORTED_FORMAT, PERMISSION_DENIED, MISSING_TABLE, MISSING_COLUMN and LOAD_FAILED."),
		mcp.WithInputSchema[OpenDatasetInput](),
		mcp.WithOutputSchema[OpenDatasetOutput](),
	), mcp.NewTypedToolHandler(svc.OpenDataset))

	add(mcp.NewTool(
		"close_dataset",
		mcp.WithDescription("Release a dataset handle opened with open_dataset"),
		mcp.WithInputSchema[DatasetInput](),
		mcp.WithOutputSchema[CloseDatasetOutput](),
	), mcp.NewTypedToolHandler(svc.CloseDataset))

	add(mcp.NewTool(
		"revenue_vs_budget",
		mcp.WithDescription("Sum USD revenue from actuals and budget for one month, optionally for one entity. Returns both totals, the variance and an Actual/Budget bar series."),
		mcp.WithInputSchema[MonthInput](),
		mcp.WithOutputSchema[RevenueVsBudgetOutput](),
	), mcp.NewTypedToolHandler(svc.RevenueVsBudget))

	add(mcp.NewTool(
		"gross_margin_trend",
		mcp.WithDescription("Return exactly N consecutive months (default 3) ending at end_month (default: latest actuals month) with USD revenue, COGS and gross margin %. Months without revenue have a null margin and appear as gaps in the line series."),
		mcp.WithInputSchema[GrossMarginTrendInput](),
		mcp.WithOutputSchema[GrossMarginTrendOutput](),
	), mcp.NewTypedToolHandler(svc.GrossMarginTrend))

	add(mcp.NewTool(
		opexTool,
		mcp.WithDescription("Group a month's opex rows (category containing 'opex' or 'operating') by account, largest USD total first. Paged: pass meta.nextCursor as cursor to continue. The bar series covers the top accounts of the whole month."),
		mcp.WithInputSchema[OpexBreakdownInput](),
		mcp.WithOutputSchema[OpexBreakdownOutput](),
	), mcp.NewTypedToolHandler(svc.OpexBreakdown))

	add(mcp.NewTool(
		"ebitda_proxy",
		mcp.WithDescription("Compute revenue - COGS - opex in USD for one month, optionally for one entity"),
		mcp.WithInputSchema[MonthInput](),
		mcp.WithOutputSchema[EBITDAOutput](),
	), mcp.NewTypedToolHandler(svc.EBITDAProxy))

	add(mcp.NewTool(
		"cash_runway",
		mcp.WithDescription("Estimate months of cash left: current USD cash divided by the average month-over-month burn across the 3-month window ending at as_of (default: latest cash month). Runway is unbounded (runway_months null, runway_unbounded true) when cash is not declining."),
		mcp.WithInputSchema[CashRunwayInput](),
		mcp.WithOutputSchema[CashRunwayOutput](),
	), mcp.NewTypedToolHandler(svc.CashRunway))

	add(mcp.NewTool(
		"ask_question",
		mcp.WithDescription("Answer a free-text finance question by classifying it into one of revenue_vs_budget, gross_margin_trend, opex_breakdown, cash_runway or ebitda_proxy and running it. Months may be written as 'June 2025', 'Jun 2025' or '2025-06'; 'last N months' sets the trend length; 'entity X' restricts to one entity. Unrecognised questions return UNKNOWN_INTENT."),
		mcp.WithInputSchema[AskQuestionInput](),
		mcp.WithOutputSchema[AskQuestionOutput](),
	), mcp.NewTypedToolHandler(svc.AskQuestion))

	add(mcp.NewTool(
		"export_chart",
		mcp.WithDescription("Write one chart (revenue_vs_budget, gross_margin_trend or opex_breakdown) to an .xlsx workbook with the series data and a native Excel chart. The output path must be inside an allowed directory."),
		mcp.WithInputSchema[ExportChartInput](),
		mcp.WithOutputSchema[ExportChartOutput](),
	), mcp.NewTypedToolHandler(svc.ExportChart))
}
