package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/logger"
)

type ConfigRepository struct {
	db *sql.DB
}

func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) GetValidNits(ctx context.Context) (*domain.NitConfig, error) {
	var nits []string
	err := r.db.QueryRowContext(ctx, `SELECT nits FROM config WHERE name = $1`, domain.ValidNitsConfigName).
		Scan(pq.Array(&nits))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get valid nits: %w", err)
	}
	return &domain.NitConfig{Name: domain.ValidNitsConfigName, Nits: nits}, nil
}

func (r *ConfigRepository) EnsureValidNits(ctx context.Context, defaults []string) (bool, error) {
	logger.DatabaseCall("insert", "config", "name", domain.ValidNitsConfigName)
	res, err := r.db.ExecContext(ctx, `INSERT INTO config (name, nits) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		domain.ValidNitsConfigName, pq.Array(defaults))
	if err != nil {
		return false, fmt.Errorf("failed to seed valid nits: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to seed valid nits: %w", err)
	}
	logger.DatabaseResult("insert", n, nil)
	return n > 0, nil
}
