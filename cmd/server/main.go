package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "solicitudes-backend/internal/api/http"
	"solicitudes-backend/internal/config"
	"solicitudes-backend/internal/jobs"
	"solicitudes-backend/internal/logger"
	"solicitudes-backend/internal/metrics"
	"solicitudes-backend/internal/scheduler"
	"solicitudes-backend/internal/service"
	"solicitudes-backend/internal/store"
	"solicitudes-backend/internal/ui"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Solicitudes Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "driver", cfg.Database.Driver, "database", cfg.Database.Name)
	logger.Info("Workflow configuration",
		"max_pending_per_user", cfg.Workflow.MaxPendingPerUser,
		"enforce_responsible", cfg.Workflow.EnforceResponsible,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.DatabaseTimeout())
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}()

	seedCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout())
	seeded, err := st.EnsureValidNits(seedCtx, cfg.Workflow.DefaultNits)
	cancel()
	if err != nil {
		logger.Error("Failed to ensure valid nits", "error", err)
		log.Fatalf("Failed to ensure valid nits: %v", err)
	}
	if seeded {
		logger.Info("Valid NIT configuration inserted", "count", len(cfg.Workflow.DefaultNits))
	}

	// Initialize Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize Services
	svc := service.NewSolicitudService(st, st, m, service.Options{
		MaxPendingPerUser:  cfg.Workflow.MaxPendingPerUser,
		EnforceResponsible: cfg.Workflow.EnforceResponsible,
	})

	// Initialize Scheduler
	if cfg.Jobs.Enabled {
		cronScheduler, err := scheduler.NewScheduler(jobs.NewJobRunner(st, m, cfg.DatabaseTimeout()), cfg.Jobs)
		if err != nil {
			log.Fatalf("Failed to initialize scheduler: %v", err)
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	// Initialize HTTP handlers
	router := httpapi.NewRouter(httpapi.NewSolicitudHandler(svc, cfg.Workflow.MaxPendingPerUser), m)
	ui.New(svc, cfg.Workflow.MaxPendingPerUser).Register(router)

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.WithCORS(router, cfg.CORS.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
