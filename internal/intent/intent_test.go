package intent

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/fpacopilot/internal/analytics"
	"github.com/vinodismyname/fpacopilot/internal/dataset"
	"github.com/vinodismyname/fpacopilot/internal/dataset/datasettest"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		question string
		want     Result
	}{
		{"What was June 2025 revenue vs budget in USD?", Result{Intent: RevenueVsBudget, Params: Params{Month: "june 2025"}}},
		{"Revenue against budget for 2025-06", Result{Intent: RevenueVsBudget, Params: Params{Month: "2025-06"}}},
		{"Show Gross Margin % trend for the last 6 months.", Result{Intent: GrossMarginTrend, Params: Params{Months: 6}}},
		{"gross margin trend", Result{Intent: GrossMarginTrend, Params: Params{Months: 3}}},
		{"Break down Opex by category for June 2025 entity EMEA", Result{Intent: OpexBreakdown, Params: Params{Month: "june 2025", Entity: "EMEA"}}},
		{"operating expenses 2025-06-01", Result{Intent: OpexBreakdown, Params: Params{Month: "2025-06-01"}}},
		{"What is our cash runway right now?", Result{Intent: CashRunway}},
		{"runway as of May 2025 for entity: ParentCo", Result{Intent: CashRunway, Params: Params{Month: "may 2025", Entity: "ParentCo"}}},
		{"EBITDA for Jun 2025", Result{Intent: EBITDAProxy, Params: Params{Month: "jun 2025"}}},
		{"operating profit last month", Result{Intent: EBITDAProxy}},
		{"Break down opex by entity for June 2025", Result{Intent: OpexBreakdown, Params: Params{Month: "june 2025"}}},
		{"EBITDA per entity in 2025-06", Result{Intent: EBITDAProxy, Params: Params{Month: "2025-06"}}},
		{"opex by entity for June 2025, entity EMEA", Result{Intent: OpexBreakdown, Params: Params{Month: "june 2025", Entity: "EMEA"}}},
		{"Gross margin trend for entity EMEA", Result{Intent: GrossMarginTrend, Params: Params{Months: 3}}},
		{"tell me a joke", Result{Intent: Unknown}},
		{"", Result{Intent: Unknown}},
	}
	for _, tc := range cases {
		t.Run(tc.question, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.question))
		})
	}
}

func TestClassify_Precedence(t *testing.T) {
	// revenue+budget outranks margin, margin outranks opex, opex outranks runway.
	require.Equal(t, RevenueVsBudget, Classify("revenue vs budget and gross margin").Intent)
	require.Equal(t, GrossMarginTrend, Classify("gross margin and opex").Intent)
	require.Equal(t, OpexBreakdown, Classify("opex impact on runway").Intent)
	require.Equal(t, CashRunway, Classify("runway given ebitda").Intent)
}

func TestDispatch(t *testing.T) {
	snap, err := dataset.LoadFile(t.Context(), datasettest.Workbook(t, datasettest.Standard()))
	require.NoError(t, err)
	e := analytics.NewEngine(snap)

	ans, err := Dispatch(e, Classify("What was June 2025 revenue vs budget in USD?"))
	require.NoError(t, err)
	rvb, ok := ans.Value.(analytics.RevenueVsBudget)
	require.True(t, ok)
	require.InDelta(t, 120000, rvb.ActualUSD, 1e-6)
	require.InDelta(t, 110000, rvb.BudgetUSD, 1e-6)

	ans, err = Dispatch(e, Classify("gross margin last 2 months"))
	require.NoError(t, err)
	require.Len(t, ans.Value.([]analytics.MarginPoint), 2)

	_, err = Dispatch(e, Classify("hello"))
	require.ErrorIs(t, err, ErrUnknownIntent)

	_, err = Dispatch(e, Classify("opex breakdown please"))
	require.ErrorIs(t, err, analytics.ErrMonthRequired)
}

func TestDispatch_Entity(t *testing.T) {
	snap, err := dataset.LoadFile(t.Context(), datasettest.Workbook(t, datasettest.Standard()))
	require.NoError(t, err)
	e := analytics.NewEngine(snap)

	ans, err := Dispatch(e, Classify("Break down opex by entity for June 2025"))
	require.NoError(t, err)
	require.Empty(t, ans.Params.Entity)
	require.Len(t, ans.Value.([]analytics.OpexLine), 3)

	ans, err = Dispatch(e, Classify("opex for June 2025 entity emea"))
	require.NoError(t, err)
	require.Equal(t, "EMEA", ans.Params.Entity)
	lines := ans.Value.([]analytics.OpexLine)
	require.Len(t, lines, 1)
	require.InDelta(t, 5450, lines[0].AmountUSD, 1e-6)

	_, err = Dispatch(e, Classify("EBITDA for 2025-06 entity Nowhere"))
	require.ErrorIs(t, err, ErrUnknownEntity)

	// The margin trend is consolidated; a stray entity is dropped, not echoed.
	ans, err = Dispatch(e, Result{Intent: GrossMarginTrend, Params: Params{Months: 2, Entity: "EMEA"}})
	require.NoError(t, err)
	require.Empty(t, ans.Params.Entity)
	require.Len(t, ans.Value.([]analytics.MarginPoint), 2)
}
