package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConcentration(t *testing.T) {
	lines := []OpexLine{
		{Account: "Opex - Marketing", AmountUSD: 15000},
		{Account: "Operating Expenses - Rent", AmountUSD: 7000},
		{Account: "Opex - Admin", AmountUSD: 5450},
	}
	c, ok := Concentration(lines, 1)
	require.True(t, ok)
	require.Equal(t, 1, c.TopN)
	require.InDelta(t, 0.546, c.TopShare, 1e-9)
	require.InDelta(t, 0.454, c.OtherShare, 1e-9)
	// (15000² + 7000² + 5450²) / 27450²
	require.InDelta(t, 0.403, c.HHI, 1e-9)
	require.Equal(t, BandHigh, c.Band)

	all, ok := Concentration(lines, 0)
	require.True(t, ok)
	require.Equal(t, 3, all.TopN)
	require.InDelta(t, 1.0, all.TopShare, 1e-9)
}

func TestConcentration_Spread(t *testing.T) {
	lines := make([]OpexLine, 10)
	for i := range lines {
		lines[i] = OpexLine{Account: string(rune('A' + i)), AmountUSD: 100}
	}
	c, ok := Concentration(lines, 3)
	require.True(t, ok)
	require.InDelta(t, 0.1, c.HHI, 1e-9)
	require.Equal(t, BandUnconcentrated, c.Band)
}

func TestConcentration_NothingPositive(t *testing.T) {
	_, ok := Concentration(nil, 3)
	require.False(t, ok)
	_, ok = Concentration([]OpexLine{{Account: "Refund", AmountUSD: -50}}, 3)
	require.False(t, ok)
}
