package registry

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
)

func TestRegisterFinanceTools(t *testing.T) {
	srv := server.NewMCPServer("test", "0.0.0", server.WithToolCapabilities(true))
	reg := New()
	RegisterFinanceTools(srv, reg, &Service{})

	tools, err := reg.Tools(context.Background())
	require.NoError(t, err)
	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	require.Equal(t, []string{
		"ask_question", "cash_runway", "close_dataset", "ebitda_proxy", "export_chart",
		"gross_margin_trend", "open_dataset", "opex_breakdown", "revenue_vs_budget",
	}, names)

	tool, ok := toolByName(t, reg, "opex_breakdown")
	require.True(t, ok)
	require.Contains(t, string(tool.RawInputSchema), `"cursor"`)
}

func toolByName(t *testing.T, reg *Registry, name string) (mcp.Tool, bool) {
	t.Helper()
	tools, err := reg.Tools(context.Background())
	require.NoError(t, err)
	for _, tool := range tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return mcp.Tool{}, false
}

func TestExportToolFilter(t *testing.T) {
	tools := []mcp.Tool{{Name: "open_dataset"}, {Name: "export_chart"}, {Name: "cash_runway"}}

	hidden := NewExportToolFilter(false).FilterTools(context.Background(), tools)
	require.Len(t, hidden, 2)
	for _, tool := range hidden {
		require.NotEqual(t, "export_chart", tool.Name)
	}

	require.Len(t, NewExportToolFilter(true).FilterTools(context.Background(), tools), 3)
}

func TestRegistry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Tools(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
