package service

import (
	"context"
	"time"

	"solicitudes-backend/internal/domain"
)

type SolicitudService interface {
	ListSolicitudes(ctx context.Context, filter ListFilter) ([]domain.Solicitud, error)
	GetSolicitud(ctx context.Context, id string) (*domain.Solicitud, error)
	CreateSolicitud(ctx context.Context, in CreateSolicitudInput) (*domain.Solicitud, error)
	UpdateSolicitud(ctx context.Context, id string, in UpdateSolicitudInput) (*domain.Solicitud, error)
}

// ListFilter narrows ListSolicitudes. The zero value returns every solicitud.
type ListFilter struct {
	Usuario string
	Estado  domain.Estado
}

type CreateSolicitudInput struct {
	Titulo      string `json:"titulo" validate:"required,max=200"`
	Nit         string `json:"nit"`
	Tipo        string `json:"tipo" validate:"required,max=50"`
	Descripcion string `json:"descripcion" validate:"max=2000"`
	Solicitante string `json:"solicitante" validate:"required,max=100"`
	Responsable string `json:"responsable" validate:"required,max=100"`
}

type UpdateSolicitudInput struct {
	Estado      domain.Estado `json:"estado"`
	Comentario  string        `json:"comentario"`
	CurrentUser string        `json:"currentUser"`
}

type Options struct {
	MaxPendingPerUser  int
	EnforceResponsible bool
	Now                func() time.Time
}
