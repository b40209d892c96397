package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/logger"
)

const solicitudColumns = `id, titulo, nit, tipo, descripcion, solicitante, responsable, estado, fecha, comentarios`

type SolicitudRepository struct {
	db *sql.DB
}

func NewSolicitudRepository(db *sql.DB) *SolicitudRepository {
	return &SolicitudRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSolicitud(row rowScanner) (*domain.Solicitud, error) {
	var (
		s           domain.Solicitud
		estado      string
		comentarios []byte
	)
	if err := row.Scan(&s.ID, &s.Titulo, &s.Nit, &s.Tipo, &s.Descripcion, &s.Solicitante, &s.Responsable, &estado, &s.Fecha, &comentarios); err != nil {
		return nil, err
	}
	s.Estado = domain.Estado(estado)
	s.Fecha = s.Fecha.UTC()
	s.Comentarios = []domain.Comentario{}
	if len(comentarios) > 0 {
		if err := json.Unmarshal(comentarios, &s.Comentarios); err != nil {
			return nil, fmt.Errorf("failed to decode comentarios of %s: %w", s.ID, err)
		}
	}
	return &s, nil
}

func parseID(id string) (string, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return uid.String(), nil
}

func (r *SolicitudRepository) List(ctx context.Context) ([]domain.Solicitud, error) {
	query := `SELECT ` + solicitudColumns + ` FROM solicitudes ORDER BY seq`
	logger.DatabaseCall("select", "solicitudes")
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list solicitudes: %w", err)
	}
	defer rows.Close()

	out := []domain.Solicitud{}
	for rows.Next() {
		s, err := scanSolicitud(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan solicitud: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list solicitudes: %w", err)
	}
	return out, nil
}

func (r *SolicitudRepository) GetByID(ctx context.Context, id string) (*domain.Solicitud, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + solicitudColumns + ` FROM solicitudes WHERE id = $1`
	s, err := scanSolicitud(r.db.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get solicitud %s: %w", id, err)
	}
	return s, nil
}

// Create serializes concurrent creations for the same solicitante with a
// transaction-scoped advisory lock, so the count and the insert cannot interleave.
func (r *SolicitudRepository) Create(ctx context.Context, s *domain.Solicitud, maxPending int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin create: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, s.Solicitante); err != nil {
		return fmt.Errorf("failed to lock solicitante %s: %w", s.Solicitante, err)
	}

	var pending int64
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM solicitudes WHERE solicitante = $1 AND estado = $2`,
		s.Solicitante, string(domain.EstadoPendiente)).Scan(&pending)
	if err != nil {
		return fmt.Errorf("failed to count pending solicitudes: %w", err)
	}
	if s.Estado == domain.EstadoPendiente && pending >= int64(maxPending) {
		return fmt.Errorf("%w: %s has %d", domain.ErrLimitExceeded, s.Solicitante, pending)
	}

	if err := insertSolicitud(ctx, tx, s); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit solicitud: %w", err)
	}
	return nil
}

func insertSolicitud(ctx context.Context, tx *sql.Tx, s *domain.Solicitud) error {
	if s.Comentarios == nil {
		s.Comentarios = []domain.Comentario{}
	}
	comentarios, err := json.Marshal(s.Comentarios)
	if err != nil {
		return fmt.Errorf("failed to encode comentarios: %w", err)
	}

	id := uuid.New().String()
	query := `INSERT INTO solicitudes (` + solicitudColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	logger.DatabaseCall("insert", "solicitudes", "solicitante", s.Solicitante)
	res, err := tx.ExecContext(ctx, query, id, s.Titulo, s.Nit, s.Tipo, s.Descripcion, s.Solicitante, s.Responsable,
		string(s.Estado), s.Fecha.UTC(), comentarios)
	if err != nil {
		logger.DatabaseResult("insert", 0, err)
		return fmt.Errorf("failed to insert solicitud: %w", err)
	}
	affected, _ := res.RowsAffected()
	logger.DatabaseResult("insert", affected, nil)
	s.ID = id
	return nil
}

func (r *SolicitudRepository) UpdateStatus(ctx context.Context, id string, estado domain.Estado, comentario *domain.Comentario) (*domain.Solicitud, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	patch := []byte("[]")
	if comentario != nil {
		c := *comentario
		c.Fecha = c.Fecha.UTC()
		if patch, err = json.Marshal([]domain.Comentario{c}); err != nil {
			return nil, fmt.Errorf("failed to encode comentario: %w", err)
		}
	}

	query := `UPDATE solicitudes SET estado = $1, comentarios = comentarios || $2::jsonb
	          WHERE id = $3 AND estado = $4 RETURNING ` + solicitudColumns
	logger.DatabaseCall("update", "solicitudes", "id", key, "estado", estado)
	s, err := scanSolicitud(r.db.QueryRowContext(ctx, query, string(estado), patch, key, string(domain.EstadoPendiente)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.missingOrResolved(ctx, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update solicitud %s: %w", id, err)
	}
	return s, nil
}

func (r *SolicitudRepository) missingOrResolved(ctx context.Context, key string) error {
	var estado string
	err := r.db.QueryRowContext(ctx, `SELECT estado FROM solicitudes WHERE id = $1`, key).Scan(&estado)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load solicitud %s: %w", key, err)
	}
	return fmt.Errorf("%w: estado is %s", domain.ErrAlreadyResolved, estado)
}

func (r *SolicitudRepository) CountPending(ctx context.Context, solicitante string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM solicitudes WHERE solicitante = $1 AND estado = $2`,
		solicitante, string(domain.EstadoPendiente)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending solicitudes: %w", err)
	}
	return n, nil
}
