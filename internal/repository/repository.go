package repository

import (
	"context"

	"solicitudes-backend/internal/domain"
)

type SolicitudRepository interface {
	// List returns every solicitud in storage order.
	List(ctx context.Context) ([]domain.Solicitud, error)
	GetByID(ctx context.Context, id string) (*domain.Solicitud, error)
	// Create stores s and assigns s.ID. It fails with domain.ErrLimitExceeded when the
	// solicitante already has maxPending pending solicitudes; the check and the insert
	// are atomic with respect to other Create calls.
	Create(ctx context.Context, s *domain.Solicitud, maxPending int) error
	// UpdateStatus moves a pending solicitud to estado, appending comentario when not nil.
	// A solicitud that is no longer pending yields domain.ErrAlreadyResolved.
	UpdateStatus(ctx context.Context, id string, estado domain.Estado, comentario *domain.Comentario) (*domain.Solicitud, error)
	CountPending(ctx context.Context, solicitante string) (int64, error)
}

type ConfigRepository interface {
	// GetValidNits returns the allow-list, or nil when no configuration exists.
	GetValidNits(ctx context.Context) (*domain.NitConfig, error)
	// EnsureValidNits stores defaults only when no allow-list exists yet.
	EnsureValidNits(ctx context.Context, defaults []string) (bool, error)
}

// Seeder is used by the data-seeding utility, never by the API.
type Seeder interface {
	Reset(ctx context.Context, fixtures []domain.Solicitud) error
}

// CounterAuditor is implemented by stores that keep derived pending counters.
type CounterAuditor interface {
	PendingCounterDrift(ctx context.Context) ([]string, error)
}

// Store is a complete backend, opened once per process.
type Store interface {
	SolicitudRepository
	ConfigRepository
	Seeder
	// Prepare creates schema or indexes and repairs derived state.
	Prepare(ctx context.Context) error
	Close(ctx context.Context) error
}
