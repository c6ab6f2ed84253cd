package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/vinodismyname/fpacopilot/config"
	appconfig "github.com/vinodismyname/fpacopilot/internal/config"
	"github.com/vinodismyname/fpacopilot/internal/datasets"
	"github.com/vinodismyname/fpacopilot/internal/intent"
	"github.com/vinodismyname/fpacopilot/internal/registry"
	"github.com/vinodismyname/fpacopilot/internal/runtime"
	"github.com/vinodismyname/fpacopilot/internal/security"
	"github.com/vinodismyname/fpacopilot/internal/telemetry"
	"github.com/vinodismyname/fpacopilot/pkg/version"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		useStdio        bool
		listOnly        bool
		dataPath        string
		question        string
		shutdownTimeout time.Duration
	)

	flag.BoolVar(&useStdio, "stdio", false, "Run server over stdio transport")
	flag.BoolVar(&listOnly, "list", false, "Print the tool catalog and exit")
	flag.StringVar(&dataPath, "data", "", "Workbook to preload as a dataset handle")
	flag.StringVar(&question, "ask", "", "Answer one question against -data and exit")
	flag.DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful shutdown timeout")
	flag.Parse()

	if listOnly {
		if err := listTools(context.Background(), catalog(), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "list tools: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := appconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	zerolog.SetGlobalLevel(cfg.Level())

	logger := zlog.With().Str("service", version.Name).Logger()
	ctx := logger.WithContext(context.Background())
	// Tool handlers receive contexts built by mcp-go; zerolog.Ctx falls back to this.
	zerolog.DefaultContextLogger = &logger

	// Security: validate allow-list directories on startup (fail-safe on error)
	secMgr, err := security.NewManager(cfg.AllowList(), nil)
	if err != nil {
		logger.Error().Err(err).Msg("security: failed to initialize manager")
		fmt.Fprintln(os.Stderr, "invalid security configuration; check FPA_ALLOWED_DIRS")
		os.Exit(1)
	}
	if err := secMgr.ValidateConfig(); err != nil {
		logger.Error().Err(err).Msg("security: invalid allow-list configuration")
		fmt.Fprintln(os.Stderr, "no allowed directories configured; set FPA_ALLOWED_DIRS")
		os.Exit(1)
	}
	logger.Info().Strs("allowed_dirs", secMgr.AllowedDirectories()).Msg("security allow-list configured")

	limits := runtime.NewLimits(cfg.MaxConcurrentRequests, cfg.MaxOpenDatasets)
	limits.OperationTimeout = cfg.OperationTimeout
	runtimeController := runtime.NewController(limits)
	runtimeMW := runtime.NewMiddleware(runtimeController)

	mgr := datasets.NewManager(cfg.DatasetTTL, config.DefaultDatasetCleanupPeriod,
		datasets.WithGate(runtimeController),
		datasets.WithValidator(secMgr),
	)
	mgr.Start()
	closeDatasets := func() {
		closeCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := mgr.Close(closeCtx); err != nil {
			logger.Warn().Err(err).Msg("dataset cache close")
		}
	}
	defer closeDatasets()

	var preloaded *datasets.Handle
	if dataPath != "" {
		preloaded, err = mgr.Open(ctx, dataPath)
		if err != nil {
			logger.Error().Err(err).Str("path", dataPath).Msg("preload failed")
			fmt.Fprintf(os.Stderr, "cannot load %s: %v\n", dataPath, err)
			os.Exit(1)
		}
		logger.Info().Str("dataset_id", preloaded.ID).Str("path", dataPath).Msg("dataset preloaded")
	}

	if question != "" {
		code := ask(preloaded, question)
		closeDatasets()
		os.Exit(code)
	}

	metrics := telemetry.NewMetrics(mgr.Count)
	toolRegistry := registry.New()
	exportFilter := registry.NewExportToolFilter(cfg.EnableExports)

	srv := server.NewMCPServer(
		"FP&A Copilot",
		version.Version(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(telemetry.Hooks(logger, metrics)),
		server.WithToolHandlerMiddleware(metrics.ToolMiddleware),
		server.WithToolHandlerMiddleware(runtimeMW.ToolMiddleware),
		server.WithToolFilter(exportFilter.FilterTools),
	)

	svc := &registry.Service{Datasets: mgr, Limits: limits}
	if cfg.EnableExports {
		svc.Exports = secMgr
	}
	registry.RegisterFinanceTools(srv, toolRegistry, svc)

	tools, _ := toolRegistry.Tools(ctx)
	logger.Info().
		Ctx(ctx).
		Str("version", version.Version()).
		Int("max_concurrent_requests", limits.MaxConcurrentRequests).
		Int("max_open_datasets", limits.MaxOpenDatasets).
		Dur("dataset_ttl", cfg.DatasetTTL).
		Int("tools", len(tools)).
		Bool("exports", cfg.EnableExports).
		Bool("stdio", useStdio).
		Msg("server bootstrap configured")

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Router(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server stopped")
			}
		}()
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics endpoint listening")
	}

	if !useStdio {
		// If no transport flags provided, print usage and exit non-zero
		fmt.Fprintln(os.Stderr, "no transport selected; use -stdio to run over stdio, or -data with -ask for one question")
		os.Exit(2)
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdio := server.NewStdioServer(srv)
	serveErr := stdio.Listen(sigCtx, os.Stdin, os.Stdout)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		closeDatasets()
		// Use stderr for transport errors so clients don't misinterpret output
		fmt.Fprintf(os.Stderr, "Server error: %v\n", serveErr)
		os.Exit(1)
	}
}

// ask answers one question against the preloaded dataset and returns the
// process exit code.
func ask(h *datasets.Handle, question string) int {
	if h == nil {
		fmt.Fprintln(os.Stderr, "-ask requires -data")
		return 2
	}
	ans, err := intent.Dispatch(h.Engine, intent.Classify(question))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot answer: %v\n", err)
		return 1
	}
	fmt.Println(registry.Summarize(ans))
	return 0
}

// catalog registers the finance tools against a detached server so their
// definitions can be listed without configuration.
func catalog() *registry.Registry {
	reg := registry.New()
	srv := server.NewMCPServer(version.Name, version.Version(), server.WithToolCapabilities(true))
	registry.RegisterFinanceTools(srv, reg, &registry.Service{})
	return reg
}

// listTools writes one "name<TAB>description" line per tool.
func listTools(ctx context.Context, p registry.ToolProvider, w io.Writer) error {
	tools, err := p.Tools(ctx)
	if err != nil {
		return err
	}
	for _, t := range tools {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Description); err != nil {
			return err
		}
	}
	return nil
}
