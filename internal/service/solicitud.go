package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/identity"
	"solicitudes-backend/internal/logger"
	"solicitudes-backend/internal/metrics"
	"solicitudes-backend/internal/repository"
)

type solicitudService struct {
	solicitudRepo repository.SolicitudRepository
	configRepo    repository.ConfigRepository
	metrics       *metrics.Metrics
	opts          Options
}

func NewSolicitudService(
	solicitudRepo repository.SolicitudRepository,
	configRepo repository.ConfigRepository,
	m *metrics.Metrics,
	opts Options,
) SolicitudService {
	if opts.MaxPendingPerUser <= 0 {
		opts.MaxPendingPerUser = 2
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &solicitudService{
		solicitudRepo: solicitudRepo,
		configRepo:    configRepo,
		metrics:       m,
		opts:          opts,
	}
}

func (s *solicitudService) ListSolicitudes(ctx context.Context, filter ListFilter) ([]domain.Solicitud, error) {
	all, err := s.solicitudRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	usuario := strings.TrimSpace(filter.Usuario)
	if usuario == "" && filter.Estado == "" {
		return all, nil
	}

	out := make([]domain.Solicitud, 0, len(all))
	for i := range all {
		if usuario != "" && !all[i].Involves(usuario) {
			continue
		}
		if filter.Estado != "" && all[i].Estado != filter.Estado {
			continue
		}
		out = append(out, all[i])
	}
	return out, nil
}

func (s *solicitudService) GetSolicitud(ctx context.Context, id string) (*domain.Solicitud, error) {
	return s.solicitudRepo.GetByID(ctx, strings.TrimSpace(id))
}

// CreateSolicitud checks the NIT allow-list first, then the pending cap, then
// the remaining fields. The repository enforces the cap again atomically.
func (s *solicitudService) CreateSolicitud(ctx context.Context, in CreateSolicitudInput) (*domain.Solicitud, error) {
	in.normalize()
	log := logger.FromContext(ctx)

	nits, err := s.configRepo.GetValidNits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load valid nits: %w", err)
	}
	if !nits.Allows(in.Nit) {
		log.Info("Solicitud rejected: nit not authorized", "nit", in.Nit, "solicitante", in.Solicitante)
		s.metrics.ObserveRejected(domain.CodeNitInvalid)
		return nil, fmt.Errorf("%w: %q", domain.ErrNitInvalid, in.Nit)
	}

	pending, err := s.solicitudRepo.CountPending(ctx, in.Solicitante)
	if err != nil {
		return nil, err
	}
	if pending >= int64(s.opts.MaxPendingPerUser) {
		log.Info("Solicitud rejected: pending limit", "solicitante", in.Solicitante, "pending", pending)
		s.metrics.ObserveRejected(domain.CodeLimitExceeded)
		return nil, fmt.Errorf("%w: %s has %d", domain.ErrLimitExceeded, in.Solicitante, pending)
	}

	if err := validateStruct(&in); err != nil {
		s.metrics.ObserveRejected(domain.ErrorCode(err))
		return nil, err
	}

	sol := domain.NewSolicitud(in.Titulo, in.Nit, in.Tipo, in.Descripcion, in.Solicitante, in.Responsable, s.opts.Now())
	if err := s.solicitudRepo.Create(ctx, sol, s.opts.MaxPendingPerUser); err != nil {
		if code := domain.ErrorCode(err); code != domain.CodeInternal {
			s.metrics.ObserveRejected(code)
		}
		return nil, err
	}

	s.metrics.ObserveCreated()
	log.Info("Solicitud created", "id", sol.ID, "solicitante", sol.Solicitante, "responsable", sol.Responsable)
	return sol, nil
}

// UpdateSolicitud resolves a pending solicitud. The acting user comes from the
// context when present, else from the payload.
func (s *solicitudService) UpdateSolicitud(ctx context.Context, id string, in UpdateSolicitudInput) (*domain.Solicitud, error) {
	id = strings.TrimSpace(id)
	estado := domain.Estado(strings.TrimSpace(string(in.Estado)))
	if !estado.IsFinal() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, in.Estado)
	}

	actor := strings.TrimSpace(in.CurrentUser)
	if user, ok := identity.UserFromContext(ctx); ok {
		actor = user
	}

	if s.opts.EnforceResponsible {
		current, err := s.solicitudRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if actor == "" || actor != current.Responsable {
			return nil, fmt.Errorf("%w: %q is not %q", domain.ErrNotResponsible, actor, current.Responsable)
		}
	}

	var comentario *domain.Comentario
	if texto := strings.TrimSpace(in.Comentario); texto != "" {
		comentario = &domain.Comentario{Autor: actor, Texto: texto, Fecha: s.opts.Now().UTC()}
	}

	updated, err := s.solicitudRepo.UpdateStatus(ctx, id, estado, comentario)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(estado))
	logger.FromContext(ctx).Info("Solicitud resolved", "id", updated.ID, "estado", updated.Estado, "actor", actor)
	return updated, nil
}
