package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"solicitudes-backend/internal/domain"
)

// MockSolicitudRepo
type MockSolicitudRepo struct {
	mock.Mock
}

func (m *MockSolicitudRepo) List(ctx context.Context) ([]domain.Solicitud, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Solicitud), args.Error(1)
}
func (m *MockSolicitudRepo) GetByID(ctx context.Context, id string) (*domain.Solicitud, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Solicitud), args.Error(1)
}
func (m *MockSolicitudRepo) Create(ctx context.Context, s *domain.Solicitud, maxPending int) error {
	args := m.Called(ctx, s, maxPending)
	return args.Error(0)
}
func (m *MockSolicitudRepo) UpdateStatus(ctx context.Context, id string, estado domain.Estado, comentario *domain.Comentario) (*domain.Solicitud, error) {
	args := m.Called(ctx, id, estado, comentario)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Solicitud), args.Error(1)
}
func (m *MockSolicitudRepo) CountPending(ctx context.Context, solicitante string) (int64, error) {
	args := m.Called(ctx, solicitante)
	return args.Get(0).(int64), args.Error(1)
}

// MockConfigRepo
type MockConfigRepo struct {
	mock.Mock
}

func (m *MockConfigRepo) GetValidNits(ctx context.Context) (*domain.NitConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NitConfig), args.Error(1)
}
func (m *MockConfigRepo) EnsureValidNits(ctx context.Context, defaults []string) (bool, error) {
	args := m.Called(ctx, defaults)
	return args.Bool(0), args.Error(1)
}
