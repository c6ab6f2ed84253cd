package mcperr

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Code defines a canonical MCP error code used across tools.
type Code string

const (
	// Validation & Input
	Validation    Code = "VALIDATION"
	InvalidHandle Code = "INVALID_HANDLE"
	InvalidMonth  Code = "INVALID_MONTH"
	CursorInvalid Code = "CURSOR_INVALID"
	UnknownIntent Code = "UNKNOWN_INTENT"

	// Resource & Limits
	BusyResource Code = "BUSY_RESOURCE"
	Timeout      Code = "TIMEOUT"

	// Data & IO
	LoadFailed     Code = "LOAD_FAILED"
	MissingTable   Code = "MISSING_TABLE"
	MissingColumn  Code = "MISSING_COLUMN"
	NoData         Code = "NO_DATA"
	AnalysisFailed Code = "ANALYSIS_FAILED"
	ExportFailed   Code = "EXPORT_FAILED"

	// Integrity
	UnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	PermissionDenied  Code = "PERMISSION_DENIED"
)

// Entry documents a code's standard message, retry semantics, and next steps.
type Entry struct {
	Code      Code
	Message   string
	Retryable bool
	NextSteps []string
}

var catalog = map[Code]Entry{
	Validation:    {Code: Validation, Message: "invalid inputs", Retryable: true, NextSteps: []string{"Correct the inputs per schema and retry"}},
	InvalidHandle: {Code: InvalidHandle, Message: "dataset handle not found or expired", Retryable: true, NextSteps: []string{"Call open_dataset with the workbook path and retry"}},
	InvalidMonth:  {Code: InvalidMonth, Message: "month could not be parsed", Retryable: true, NextSteps: []string{"Use forms like 2025-06, Jun 2025 or June 2025"}},
	CursorInvalid: {Code: CursorInvalid, Message: "cursor is invalid for current context", Retryable: true, NextSteps: []string{"Restart pagination from the first page"}},
	UnknownIntent: {Code: UnknownIntent, Message: "question not recognized", Retryable: true, NextSteps: []string{"Ask about revenue vs budget, gross margin, opex, EBITDA or cash runway"}},

	BusyResource: {Code: BusyResource, Message: "concurrent request limit reached", Retryable: true, NextSteps: []string{"Retry after a short delay", "Close unused datasets"}},
	Timeout:      {Code: Timeout, Message: "operation exceeded configured time limit", Retryable: true, NextSteps: []string{"Retry with a smaller workbook or fewer months"}},

	LoadFailed:     {Code: LoadFailed, Message: "failed to load workbook", Retryable: true, NextSteps: []string{"Verify path, permissions and format"}},
	MissingTable:   {Code: MissingTable, Message: "workbook is missing a required sheet", Retryable: false, NextSteps: []string{"Provide sheets named actuals, budget, cash and fx"}},
	MissingColumn:  {Code: MissingColumn, Message: "sheet is missing a required column", Retryable: false, NextSteps: []string{"Check the header row for the named column"}},
	NoData:         {Code: NoData, Message: "no rows available for the default month", Retryable: true, NextSteps: []string{"Pass an explicit month"}},
	AnalysisFailed: {Code: AnalysisFailed, Message: "analysis failed", Retryable: true, NextSteps: []string{"Verify month and entity"}},
	ExportFailed:   {Code: ExportFailed, Message: "failed to export chart", Retryable: true, NextSteps: []string{"Verify output path is inside an allowed directory"}},

	UnsupportedFormat: {Code: UnsupportedFormat, Message: "unsupported workbook format", Retryable: false, NextSteps: []string{"Convert to .xlsx and retry"}},
	PermissionDenied:  {Code: PermissionDenied, Message: "insufficient permissions to access path", Retryable: false, NextSteps: []string{"Choose a path inside an allowed directory"}},
}

// Lookup returns the catalog entry for code.
func Lookup(code Code) (Entry, bool) {
	e, ok := catalog[code]
	return e, ok
}

// normalize builds "CODE: message | nextSteps: ..." for clients that surface
// only a message string.
func normalize(code Code, msg string) string {
	base := strings.TrimSpace(msg)
	e, ok := catalog[code]
	if !ok {
		if base == "" {
			return string(code)
		}
		return fmt.Sprintf("%s: %s", string(code), base)
	}
	if base == "" {
		base = e.Message
	}
	guidance := ""
	if len(e.NextSteps) > 0 {
		guidance = " | nextSteps: " + strings.Join(e.NextSteps, "; ")
	}
	return fmt.Sprintf("%s: %s%s", e.Code, base, guidance)
}

// FromText parses a "CODE: message" string, enriches it with catalog guidance,
// and returns an MCP tool error result.
func FromText(text string) *mcp.CallToolResult {
	t := strings.TrimSpace(text)
	if t == "" {
		return mcp.NewToolResultError(normalize(Validation, ""))
	}
	parts := strings.SplitN(t, ":", 2)
	code := Code(strings.TrimSpace(parts[0]))
	msg := ""
	if len(parts) > 1 {
		msg = strings.TrimSpace(parts[1])
	}
	return mcp.NewToolResultError(normalize(code, msg))
}

// New returns an MCP error result for a given code and optional message override.
func New(code Code, message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, message))
}

// Wrapf formats details and returns an MCP error result for the code.
func Wrapf(code Code, format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, fmt.Sprintf(format, args...)))
}
