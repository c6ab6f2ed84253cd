package registry

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/vinodismyname/fpacopilot/internal/analytics"
	"github.com/vinodismyname/fpacopilot/internal/dataset"
	"github.com/vinodismyname/fpacopilot/internal/datasets"
	"github.com/vinodismyname/fpacopilot/internal/intent"
	"github.com/vinodismyname/fpacopilot/internal/runtime"
	"github.com/vinodismyname/fpacopilot/internal/security"
	"github.com/vinodismyname/fpacopilot/pkg/mcperr"
)

// toolError maps a domain error to a tool-level error result. fallback is
// used for errors with no specific code.
func toolError(err error, fallback mcperr.Code) *mcp.CallToolResult {
	var monthErr *analytics.MonthError
	switch {
	case errors.Is(err, datasets.ErrHandleNotFound):
		return mcperr.New(mcperr.InvalidHandle, "")
	case errors.Is(err, datasets.ErrUnsupportedFormat), errors.Is(err, security.ErrUnsupportedExtension):
		return mcperr.New(mcperr.UnsupportedFormat, "")
	case errors.Is(err, security.ErrNotAllowed):
		return mcperr.New(mcperr.PermissionDenied, "")
	case errors.Is(err, security.ErrNotFound):
		return mcperr.New(fallback, "file not found")
	case errors.Is(err, runtime.ErrDatasetCapacity):
		return mcperr.New(mcperr.BusyResource, err.Error())
	case errors.Is(err, dataset.ErrMissingTable):
		return mcperr.New(mcperr.MissingTable, err.Error())
	case errors.Is(err, dataset.ErrMissingColumn):
		return mcperr.New(mcperr.MissingColumn, err.Error())
	case errors.Is(err, analytics.ErrMonthRequired):
		return mcperr.New(mcperr.Validation, "month is required")
	case errors.As(err, &monthErr):
		return mcperr.Wrapf(mcperr.InvalidMonth, "%q is not a recognised month", monthErr.Input)
	case errors.Is(err, analytics.ErrInvalidMonths):
		return mcperr.New(mcperr.Validation, err.Error())
	case errors.Is(err, analytics.ErrNoData):
		return mcperr.New(mcperr.NoData, "")
	case errors.Is(err, intent.ErrUnknownIntent):
		return mcperr.New(mcperr.UnknownIntent, "")
	case errors.Is(err, intent.ErrUnknownEntity):
		return mcperr.New(mcperr.Validation, "entity not found in dataset; use one of the entities listed by open_dataset")
	case errors.Is(err, context.DeadlineExceeded):
		return mcperr.New(mcperr.Timeout, "")
	}
	return mcperr.New(fallback, err.Error())
}
