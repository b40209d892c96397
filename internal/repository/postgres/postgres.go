package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/logger"
	"solicitudes-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	*SolicitudRepository
	*ConfigRepository
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                  db,
		SolicitudRepository: NewSolicitudRepository(db),
		ConfigRepository:    NewConfigRepository(db),
	}
}

// Open connects with lib/pq and verifies the connection.
func Open(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (s *Store) Prepare(ctx context.Context) error {
	for _, stmt := range schema {
		logger.DatabaseCall("exec", "schema")
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Reset replaces every solicitud with fixtures in a single transaction.
func (s *Store) Reset(ctx context.Context, fixtures []domain.Solicitud) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reset: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM solicitudes`); err != nil {
		return fmt.Errorf("failed to clear solicitudes: %w", err)
	}
	for i := range fixtures {
		if err := insertSolicitud(ctx, tx, &fixtures[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	logger.DatabaseResult("reset", int64(len(fixtures)), nil)
	return nil
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}
