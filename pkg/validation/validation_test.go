package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Path   string `json:"path" validate:"required,filepath_ext"`
	Month  string `json:"month,omitempty" validate:"omitempty,month"`
	Months int    `json:"months" validate:"gte=0,lte=120"`
	Kind   string `json:"kind,omitempty" validate:"omitempty,oneof=margin revenue_vs_budget opex"`
	Cursor string `json:"cursor,omitempty" validate:"omitempty,cursor"`
}

func TestValidateStruct(t *testing.T) {
	ok := sample{Path: "/data/fpa.xlsx", Month: "June 2025", Months: 6, Kind: "opex"}
	require.Empty(t, ValidateStruct(ok))
	require.Empty(t, ValidateStruct(sample{Path: "/data/fpa.XLSX"}))

	cases := []struct {
		in   sample
		want string
	}{
		{sample{}, "VALIDATION: path is required"},
		{sample{Path: "notes.csv"}, "VALIDATION: path must be an Excel file (.xlsx, .xlsm, .xltx, .xltm)"},
		{sample{Path: "a.xlsx", Month: "someday"}, `INVALID_MONTH: month "someday" is not a recognised month; use 2025-06 or June 2025`},
		{sample{Path: "a.xlsx", Months: 121}, "VALIDATION: months must satisfy lte=120"},
		{sample{Path: "a.xlsx", Kind: "pie"}, "VALIDATION: kind must be one of [margin revenue_vs_budget opex]"},
		{sample{Path: "a.xlsx", Cursor: "!!!"}, "CURSOR_INVALID: failed to decode cursor; restart pagination"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ValidateStruct(tc.in))
	}
}

type toolArgs struct {
	DatasetID  string `json:"dataset_id" validate:"required"`
	EndMonth   string `json:"end_month,omitempty" validate:"omitempty,month"`
	AsOf       string `json:"as_of,omitempty" validate:"omitempty,month"`
	OutputPath string `json:"output_path" validate:"omitempty,filepath_ext"`
	Internal   string `json:"-" validate:"omitempty,oneof=a b"`
}

func TestValidateStruct_UsesJSONNames(t *testing.T) {
	cases := []struct {
		in   toolArgs
		want string
	}{
		{toolArgs{}, "VALIDATION: dataset_id is required"},
		{toolArgs{DatasetID: "d", EndMonth: "later"}, `INVALID_MONTH: end_month "later" is not a recognised month; use 2025-06 or June 2025`},
		{toolArgs{DatasetID: "d", AsOf: "soon"}, `INVALID_MONTH: as_of "soon" is not a recognised month; use 2025-06 or June 2025`},
		{toolArgs{DatasetID: "d", OutputPath: "chart.png"}, "VALIDATION: output_path must be an Excel file (.xlsx, .xlsm, .xltx, .xltm)"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ValidateStruct(tc.in))
	}
	// Untagged wire names fall back to the Go field name.
	require.Equal(t, "VALIDATION: Internal must be one of [a b]", ValidateStruct(toolArgs{DatasetID: "d", Internal: "c"}))
}

func TestValidatorSingleton(t *testing.T) {
	require.Same(t, Validator(), Validator())
}
