package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/service"
)

func TestBuildBoard(t *testing.T) {
	all := []domain.Solicitud{
		{ID: "1", Solicitante: "analista", Responsable: "jefe.ti", Estado: domain.EstadoPendiente},
		{ID: "2", Solicitante: "dev.ops", Responsable: "jefe.arquitectura", Estado: domain.EstadoPendiente},
		{ID: "3", Solicitante: "jefe.ti", Responsable: "jefe.seguridad", Estado: domain.EstadoPendiente},
		{ID: "4", Solicitante: "analista", Responsable: "jefe.ti", Estado: domain.EstadoAprobado},
		{ID: "5", Solicitante: "otro", Responsable: "jefe.ti", Estado: domain.EstadoPendiente},
	}

	b := service.BuildBoard(all, " jefe.ti ")
	assert.Equal(t, "jefe.ti", b.Usuario)
	require.Len(t, b.Cards, 4)

	ids := make([]string, 0, len(b.Cards))
	for _, c := range b.Cards {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"5", "4", "3", "1"}, ids)
	assert.Equal(t, 2, b.PendientesParaMi)
	assert.True(t, b.Cards[0].CanDecide)
	assert.False(t, b.Cards[1].CanDecide)
	assert.False(t, b.Cards[2].CanDecide)
	assert.True(t, b.Cards[3].CanDecide)
}

func TestBuildBoard_NoUser(t *testing.T) {
	b := service.BuildBoard([]domain.Solicitud{{ID: "1", Solicitante: "a", Responsable: "b"}}, "")
	assert.Empty(t, b.Cards)
	assert.Zero(t, b.PendientesParaMi)
}
