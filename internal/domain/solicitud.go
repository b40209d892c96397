package domain

import (
	"strings"
	"time"
)

type Estado string

const (
	EstadoPendiente Estado = "pendiente"
	EstadoAprobado  Estado = "aprobado"
	EstadoRechazado Estado = "rechazado"
)

func (e Estado) Valid() bool {
	switch e {
	case EstadoPendiente, EstadoAprobado, EstadoRechazado:
		return true
	}
	return false
}

// IsFinal reports whether e is a state a pending solicitud may transition to.
func (e Estado) IsFinal() bool {
	return e == EstadoAprobado || e == EstadoRechazado
}

type Comentario struct {
	Autor string    `json:"autor"`
	Texto string    `json:"texto"`
	Fecha time.Time `json:"fecha"`
}

type Solicitud struct {
	ID          string       `json:"_id"`
	Titulo      string       `json:"titulo"`
	Nit         string       `json:"nit"`
	Tipo        string       `json:"tipo"`
	Descripcion string       `json:"descripcion"`
	Solicitante string       `json:"solicitante"`
	Responsable string       `json:"responsable"`
	Estado      Estado       `json:"estado"`
	Fecha       time.Time    `json:"fecha"`
	Comentarios []Comentario `json:"comentarios"`
}

// NewSolicitud returns a pending solicitud with an empty comment log.
func NewSolicitud(titulo, nit, tipo, descripcion, solicitante, responsable string, now time.Time) *Solicitud {
	return &Solicitud{
		Titulo:      titulo,
		Nit:         nit,
		Tipo:        tipo,
		Descripcion: descripcion,
		Solicitante: solicitante,
		Responsable: responsable,
		Estado:      EstadoPendiente,
		Fecha:       now.UTC(),
		Comentarios: []Comentario{},
	}
}

// Involves reports whether user is the solicitante or the responsable.
func (s *Solicitud) Involves(user string) bool {
	user = strings.TrimSpace(user)
	return user != "" && (s.Solicitante == user || s.Responsable == user)
}

// AwaitingDecisionBy reports whether user still has to approve or reject s.
func (s *Solicitud) AwaitingDecisionBy(user string) bool {
	return s.Estado == EstadoPendiente && s.Responsable == strings.TrimSpace(user)
}
