package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"solicitudes-backend/internal/domain"
)

type solicitudDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Titulo      string               `bson:"titulo"`
	Nit         string               `bson:"nit"`
	Tipo        string               `bson:"tipo"`
	Descripcion string               `bson:"descripcion"`
	Solicitante string               `bson:"solicitante"`
	Responsable string               `bson:"responsable"`
	Estado      string               `bson:"estado"`
	Fecha       time.Time            `bson:"fecha"`
	Comentarios []comentarioDocument `bson:"comentarios"`
}

type comentarioDocument struct {
	Autor string    `bson:"autor"`
	Texto string    `bson:"texto"`
	Fecha time.Time `bson:"fecha"`
}

type nitConfigDocument struct {
	Name string   `bson:"name"`
	Nits []string `bson:"nits"`
}

// pendingCounterDocument mirrors, per solicitante, how many solicitudes are pending.
type pendingCounterDocument struct {
	Solicitante string    `bson:"_id"`
	Pending     int       `bson:"pending"`
	UpdatedAt   time.Time `bson:"updated_at,omitempty"`
}

func newSolicitudDocument(s *domain.Solicitud) solicitudDocument {
	doc := solicitudDocument{
		Titulo:      s.Titulo,
		Nit:         s.Nit,
		Tipo:        s.Tipo,
		Descripcion: s.Descripcion,
		Solicitante: s.Solicitante,
		Responsable: s.Responsable,
		Estado:      string(s.Estado),
		Fecha:       s.Fecha.UTC(),
		Comentarios: make([]comentarioDocument, 0, len(s.Comentarios)),
	}
	for _, c := range s.Comentarios {
		doc.Comentarios = append(doc.Comentarios, newComentarioDocument(c))
	}
	return doc
}

func newComentarioDocument(c domain.Comentario) comentarioDocument {
	return comentarioDocument{Autor: c.Autor, Texto: c.Texto, Fecha: c.Fecha.UTC()}
}

func (d solicitudDocument) toDomain() domain.Solicitud {
	s := domain.Solicitud{
		ID:          d.ID.Hex(),
		Titulo:      d.Titulo,
		Nit:         d.Nit,
		Tipo:        d.Tipo,
		Descripcion: d.Descripcion,
		Solicitante: d.Solicitante,
		Responsable: d.Responsable,
		Estado:      domain.Estado(d.Estado),
		Fecha:       d.Fecha.UTC(),
		Comentarios: make([]domain.Comentario, 0, len(d.Comentarios)),
	}
	for _, c := range d.Comentarios {
		s.Comentarios = append(s.Comentarios, domain.Comentario{Autor: c.Autor, Texto: c.Texto, Fecha: c.Fecha.UTC()})
	}
	return s
}
