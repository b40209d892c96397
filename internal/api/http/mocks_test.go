package http_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/service"
)

// MockSolicitudService
type MockSolicitudService struct {
	mock.Mock
}

func (m *MockSolicitudService) ListSolicitudes(ctx context.Context, filter service.ListFilter) ([]domain.Solicitud, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Solicitud), args.Error(1)
}
func (m *MockSolicitudService) GetSolicitud(ctx context.Context, id string) (*domain.Solicitud, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Solicitud), args.Error(1)
}
func (m *MockSolicitudService) CreateSolicitud(ctx context.Context, in service.CreateSolicitudInput) (*domain.Solicitud, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Solicitud), args.Error(1)
}
func (m *MockSolicitudService) UpdateSolicitud(ctx context.Context, id string, in service.UpdateSolicitudInput) (*domain.Solicitud, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Solicitud), args.Error(1)
}
