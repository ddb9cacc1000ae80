package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/sss-sync/console/pkg/auth"
	"github.com/sss-sync/console/pkg/console"
	"github.com/sss-sync/console/pkg/middleware"
	"github.com/sss-sync/console/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port      int
		host      string
		accessLog bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the console over HTTP",
		Long: `Serve the console session over HTTP.

Endpoints:
  GET  /healthz                  liveness
  GET  /metrics                  Prometheus metrics
  GET  /api/console/routes       route table
  GET  /api/console/session      current session (no token)
  POST /api/console/login        {"username", "password"}
  POST /api/console/logout
  GET  /api/console/navigate     ?path=/admin/conflicts

Any other GET is resolved as a console navigation: redirected paths
answer 302, allowed paths answer the resolved view as JSON.

Examples:
  syncconsole serve
  syncconsole serve --port=8081 --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags, host, port, accessLog)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from console.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from console.json)")
	cmd.Flags().BoolVar(&accessLog, "access-log", false, "Log every request")

	return cmd
}

func runServe(ctx context.Context, flags *globalFlags, host string, port int, accessLog bool) error {
	e, err := loadEnv(flags)
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if port > 0 {
		e.cfg.Serve.Port = port
	}
	if host != "" {
		e.cfg.Serve.Host = host
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsMW := middleware.Prometheus(middleware.WithRegistry(registry))

	store, err := e.openStoreWith(ctx, auth.WithObserver(middleware.RecordSessionState))
	if err != nil {
		return err
	}
	defer store.Close()
	middleware.RecordSessionState(store.State())

	c, err := console.New(store,
		console.WithLogger(e.logger),
		console.WithMiddleware(metricsMW, middleware.OpenTelemetry()),
	)
	if err != nil {
		return err
	}

	cfg := server.DefaultServerConfig()
	cfg.Address = e.cfg.ServeAddress()
	cfg.Gatherer = registry
	cfg.AccessLog = accessLog
	cfg.Logger = e.logger
	srv := server.New(c, store, cfg)

	printBanner()
	pterm.Println("  serve")
	pterm.Println()
	success("Listening on http://%s", cfg.Address)
	info("Backend:  %s", e.cfg.API.BaseURL)
	info("Storage:  %s", e.cfg.Storage.Backend)
	if store.IsAuthenticated() {
		info("Session:  %s (%s)", store.Username(), store.Role())
	} else {
		warn("No session stored, POST /api/console/login or run: syncconsole login")
	}
	info("Metrics:  http://%s/metrics", cfg.Address)
	pterm.Println()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
