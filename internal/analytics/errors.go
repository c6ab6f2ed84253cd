package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when a default month is needed but the relevant sheet is empty.
	ErrNoData = errors.New("analytics: no data to resolve a default month")
	// ErrInvalidMonths is returned for a negative or oversized lookback.
	ErrInvalidMonths = errors.New("analytics: months must be between 1 and 120")
)

// MonthError reports a query month string that could not be parsed.
type MonthError struct {
	Input string
	Err   error
}

func (e *MonthError) Error() string {
	return fmt.Sprintf("analytics: invalid month %q: use forms like \"June 2025\" or \"2025-06\"", e.Input)
}

func (e *MonthError) Unwrap() error { return e.Err }
