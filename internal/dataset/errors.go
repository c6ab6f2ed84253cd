package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTable reports that a required sheet is absent from the workbook.
	ErrMissingTable = errors.New("dataset: required table missing")
	// ErrMissingColumn reports that a required header is absent from a sheet.
	ErrMissingColumn = errors.New("dataset: required column missing")
)

// LoadError is the only hard failure of the load path: a required table or
// column is missing. It is fatal for the snapshot being loaded.
type LoadError struct {
	Table  string
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("dataset: table %q is missing required column %q", e.Table, e.Column)
	}
	return fmt.Sprintf("dataset: workbook is missing required table %q", e.Table)
}

func (e *LoadError) Unwrap() error { return e.Err }
