package main

import (
	"context"
	"flag"
	"log"

	"solicitudes-backend/internal/config"
	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/logger"
	"solicitudes-backend/internal/seed"
	"solicitudes-backend/internal/store"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	dataPath := flag.String("data", "", "YAML fixtures file (built-in fixtures when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	var fixtures []domain.Solicitud
	if *dataPath == "" {
		fixtures, err = seed.Default()
	} else {
		fixtures, err = seed.LoadFile(*dataPath)
	}
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close(ctx)

	runCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout())
	defer cancel()
	if err := seed.Run(runCtx, st, fixtures); err != nil {
		logger.Error("Seeding failed", "error", err)
		return
	}
	logger.Info("Database initialized with fixtures", "driver", cfg.Database.Driver)
}
