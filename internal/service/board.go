package service

import (
	"strings"

	"solicitudes-backend/internal/domain"
)

// Board is what a user sees in the inbox: the solicitudes they filed or must
// decide, newest first.
type Board struct {
	Usuario          string
	Cards            []BoardCard
	PendientesParaMi int
}

type BoardCard struct {
	domain.Solicitud
	CanDecide bool
}

func BuildBoard(all []domain.Solicitud, usuario string) Board {
	usuario = strings.TrimSpace(usuario)
	b := Board{Usuario: usuario}
	if usuario == "" {
		return b
	}
	for i := len(all) - 1; i >= 0; i-- {
		s := all[i]
		if !s.Involves(usuario) {
			continue
		}
		card := BoardCard{Solicitud: s, CanDecide: s.AwaitingDecisionBy(usuario)}
		if card.CanDecide {
			b.PendientesParaMi++
		}
		b.Cards = append(b.Cards, card)
	}
	return b
}
