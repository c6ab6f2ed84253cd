package config

import "time"

// Default runtime limits and guardrails for the FP&A copilot server.
// They are referenced by internal/runtime, internal/datasets and the analytics
// layer, and can be overridden through FPA_* environment variables.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxOpenDatasets       = 4

	// Result bounds
	DefaultOpexPageSize      = 25
	MaxOpexPageSize          = 200
	DefaultChartTopN         = 10
	DefaultConcentrationTopN = 3
	MaxTrendMonths           = 120
)

const (
	// Timeouts
	DefaultOperationTimeout      = 30 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second

	// Dataset handle lifecycle
	DefaultDatasetIdleTTL       = 30 * time.Minute
	DefaultDatasetCleanupPeriod = time.Minute
)

const (
	// Analytics
	DefaultLookbackMonths     = 3
	DefaultRunwayWindowMonths = 3
)
