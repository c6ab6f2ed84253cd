package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func callTool(name string) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	return req
}

func TestToolMiddleware_CountsOutcomes(t *testing.T) {
	m := NewMetrics(func() int { return 2 })

	ok := m.ToolMiddleware(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})
	bad := m.ToolMiddleware(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("VALIDATION: nope"), nil
	})
	broken := m.ToolMiddleware(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("boom")
	})

	_, _ = ok(context.Background(), callTool("cash_runway"))
	_, _ = ok(context.Background(), callTool("cash_runway"))
	_, _ = bad(context.Background(), callTool("cash_runway"))
	_, err := broken(context.Background(), callTool("opex_breakdown"))
	require.Error(t, err)

	require.Equal(t, 2.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("cash_runway", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("cash_runway", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("opex_breakdown", "failure")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.openDatasets))
}

func TestRouter(t *testing.T) {
	m := NewMetrics(func() int { return 1 })
	_, _ = m.ToolMiddleware(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})(context.Background(), callTool("ebitda_proxy"))

	srv := httptest.NewServer(m.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	var health Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, Health{Status: "ok", DatasetsOpen: 1}, health)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.Contains(string(body), `fpa_tool_calls_total{outcome="ok",tool="ebitda_proxy"} 1`), string(body))
}

func TestHooks_LogToolCalls(t *testing.T) {
	var buf bytes.Buffer
	hooks := Hooks(zerolog.New(&buf), nil)
	require.Len(t, hooks.OnAfterCallTool, 1)

	req := callTool("revenue_vs_budget")
	hooks.OnAfterCallTool[0](context.Background(), 1, &req, mcp.NewToolResultError("NO_DATA: empty"))
	require.Contains(t, buf.String(), `"level":"warn"`)
	require.Contains(t, buf.String(), `"tool":"revenue_vs_budget"`)
	require.Contains(t, buf.String(), `"outcome":"error"`)
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "none", Outcome(nil))
	require.Equal(t, "ok", Outcome(mcp.NewToolResultText("x")))
	require.Equal(t, "error", Outcome(mcp.NewToolResultError("x")))
}
