package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fpa"

// Metrics holds the Prometheus collectors for tool traffic.
type Metrics struct {
	registry     *prometheus.Registry
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	sessions     prometheus.Gauge
	openDatasets prometheus.GaugeFunc
	datasetCount func() int
}

// Health is the /healthz payload.
type Health struct {
	Status       string `json:"status"`
	DatasetsOpen int    `json:"datasets_open"`
}

// NewMetrics registers collectors on a fresh registry. openDatasets reports
// the current handle count and may be nil.
func NewMetrics(openDatasets func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool calls by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Tool call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Registered MCP client sessions.",
		}),
	}
	m.registry.MustRegister(m.toolCalls, m.toolDuration, m.sessions)
	m.datasetCount = openDatasets
	if openDatasets != nil {
		m.openDatasets = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "datasets_open",
			Help:      "Dataset handles currently cached.",
		}, func() float64 { return float64(openDatasets()) })
		m.registry.MustRegister(m.openDatasets)
	}
	return m
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ToolMiddleware times each tool call and counts it by outcome.
func (m *Metrics) ToolMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := next(ctx, req)
		outcome := Outcome(res)
		if err != nil {
			outcome = "failure"
		}
		m.toolDuration.WithLabelValues(req.Params.Name).Observe(time.Since(start).Seconds())
		m.toolCalls.WithLabelValues(req.Params.Name, outcome).Inc()
		return res, err
	}
}

// Router serves /metrics and /healthz.
func (m *Metrics) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		h := Health{Status: "ok"}
		if m.datasetCount != nil {
			h.DatasetsOpen = m.datasetCount()
		}
		render.JSON(w, req, h)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return r
}
