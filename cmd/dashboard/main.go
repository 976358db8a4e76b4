package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"routegraph/dashboard/internal/api"
	"routegraph/dashboard/internal/config"
	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/metrics"
	"routegraph/dashboard/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// Initialize structured logging
	if err := logging.Init(cfg.AppEnv, logging.Options{File: cfg.LogFile}); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Dashboard starting up",
		"environment", cfg.AppEnv,
		"backend", cfg.BackendBaseURL,
		"push_transport", cfg.PushTransport,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(ctx, cfg, metricsReg)
	if err != nil {
		logging.Error("Failed to initialize dependencies", "error", err.Error())
		log.Fatalf("❌ Failed to initialize dependencies: %v", err)
	}
	defer deps.Close()

	// the channel keeps retrying in the background; the dashboard serves meanwhile
	deps.Channel.Connect(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           routes.RegisterRoutes(deps, prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("Server starting", "addr", cfg.Addr, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server stopped", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err.Error())
	}
}
