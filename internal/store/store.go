// Package store opens the backend selected by configuration.
package store

import (
	"context"
	"fmt"

	"solicitudes-backend/internal/config"
	"solicitudes-backend/internal/logger"
	"solicitudes-backend/internal/repository"
	"solicitudes-backend/internal/repository/mongodb"
	"solicitudes-backend/internal/repository/postgres"
)

// Open connects to the configured database and prepares it for use.
func Open(ctx context.Context, c *config.Config) (repository.Store, error) {
	cfg := c.Database
	ctx, cancel := context.WithTimeout(ctx, c.DatabaseTimeout())
	defer cancel()

	var s repository.Store
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.ConnectionString)
		if err != nil {
			return nil, err
		}
		s = mongodb.NewStore(client, cfg.Name)
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.ConnectionString)
		if err != nil {
			return nil, err
		}
		s = postgres.NewStore(db)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	logger.Info("Database connection established", "driver", cfg.Driver, "database", cfg.Name)

	if err := s.Prepare(ctx); err != nil {
		_ = s.Close(context.Background())
		return nil, fmt.Errorf("failed to prepare store: %w", err)
	}
	return s, nil
}
