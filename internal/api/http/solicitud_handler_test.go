package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	api "solicitudes-backend/internal/api/http"
	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/identity"
	"solicitudes-backend/internal/metrics"
	"solicitudes-backend/internal/service"
)

const solicitudID = "64f0c2a1e4b0a1b2c3d4e5f6"

var fecha = time.Date(2025, 8, 26, 10, 0, 0, 0, time.UTC)

func newServer(svc *MockSolicitudService) http.Handler {
	m := metrics.New(prometheus.NewRegistry())
	return api.NewRouter(api.NewSolicitudHandler(svc, 2), m)
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func pendiente() *domain.Solicitud {
	s := domain.NewSolicitud("Acceso VPN", "900123456-7", "acceso", "", "ana", "jefe.ti", fecha)
	s.ID = solicitudID
	return s
}

func TestSolicitudHandler_Create(t *testing.T) {
	body := `{"titulo":"Acceso VPN","nit":"900123456-7","tipo":"acceso","solicitante":"ana","responsable":"jefe.ti"}`
	in := service.CreateSolicitudInput{Titulo: "Acceso VPN", Nit: "900123456-7", Tipo: "acceso", Solicitante: "ana", Responsable: "jefe.ti"}

	t.Run("Created", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("CreateSolicitud", mock.Anything, in).Return(pendiente(), nil).Once()

		rec := do(t, newServer(svc), http.MethodPost, "/solicitudes", body)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, solicitudID, got["_id"])
		assert.Equal(t, "pendiente", got["estado"])
		assert.Equal(t, []any{}, got["comentarios"])
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		svc.AssertExpectations(t)
	})

	t.Run("NitInvalid", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("CreateSolicitud", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: %q", domain.ErrNitInvalid, "123")).Once()

		rec := do(t, newServer(svc), http.MethodPost, "/solicitudes", body)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, domain.CodeNitInvalid, decodeError(t, rec).Code)
	})

	t.Run("LimitExceeded", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("CreateSolicitud", mock.Anything, mock.Anything).Return(nil, domain.ErrLimitExceeded).Once()

		rec := do(t, newServer(svc), http.MethodPost, "/solicitudes", body)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, domain.CodeLimitExceeded, resp.Code)
		assert.Contains(t, resp.Error, "2")
	})

	t.Run("ValidationFields", func(t *testing.T) {
		svc := new(MockSolicitudService)
		verr := &domain.ValidationError{Fields: map[string]string{"titulo": "es obligatorio"}}
		svc.On("CreateSolicitud", mock.Anything, mock.Anything).Return(nil, verr).Once()

		rec := do(t, newServer(svc), http.MethodPost, "/solicitudes", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, domain.CodeValidation, resp.Code)
		assert.Equal(t, "es obligatorio", resp.Fields["titulo"])
	})

	t.Run("MalformedBody", func(t *testing.T) {
		svc := new(MockSolicitudService)

		rec := do(t, newServer(svc), http.MethodPost, "/solicitudes", `{"titulo":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_body", decodeError(t, rec).Code)
		svc.AssertNotCalled(t, "CreateSolicitud", mock.Anything, mock.Anything)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("CreateSolicitud", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("connection reset")).Once()

		rec := do(t, newServer(svc), http.MethodPost, "/solicitudes", body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, domain.CodeInternal, resp.Code)
		assert.NotContains(t, resp.Error, "connection reset")
	})
}

func TestSolicitudHandler_List(t *testing.T) {
	t.Run("All", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("ListSolicitudes", mock.Anything, service.ListFilter{}).Return([]domain.Solicitud{*pendiente()}, nil).Once()

		rec := do(t, newServer(svc), http.MethodGet, "/solicitudes", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var got []domain.Solicitud
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, solicitudID, got[0].ID)
	})

	t.Run("EmptyIsArray", func(t *testing.T) {
		svc := new(MockSolicitudService)
		filter := service.ListFilter{Usuario: "nadie", Estado: domain.EstadoPendiente}
		svc.On("ListSolicitudes", mock.Anything, filter).Return(nil, nil).Once()

		rec := do(t, newServer(svc), http.MethodGet, "/solicitudes?usuario=nadie&estado=pendiente", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("UnknownEstado", func(t *testing.T) {
		svc := new(MockSolicitudService)

		rec := do(t, newServer(svc), http.MethodGet, "/solicitudes?estado=borrador", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.CodeInvalidStatus, decodeError(t, rec).Code)
	})
}

func TestSolicitudHandler_Get(t *testing.T) {
	svc := new(MockSolicitudService)
	svc.On("GetSolicitud", mock.Anything, solicitudID).Return(pendiente(), nil).Once()
	svc.On("GetSolicitud", mock.Anything, "missing").Return(nil, fmt.Errorf("%w: missing", domain.ErrInvalidID)).Once()
	svc.On("GetSolicitud", mock.Anything, "64f0c2a1e4b0a1b2c3d4e5f7").Return(nil, domain.ErrNotFound).Once()
	h := newServer(svc)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/solicitudes/"+solicitudID, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/solicitudes/missing", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/solicitudes/64f0c2a1e4b0a1b2c3d4e5f7", "").Code)
}

func TestSolicitudHandler_Update(t *testing.T) {
	t.Run("ApprovedWithComment", func(t *testing.T) {
		svc := new(MockSolicitudService)
		in := service.UpdateSolicitudInput{Estado: domain.EstadoAprobado, Comentario: "ok", CurrentUser: "jefe.ti"}
		updated := pendiente()
		updated.Estado = domain.EstadoAprobado
		updated.Comentarios = []domain.Comentario{{Autor: "jefe.ti", Texto: "ok", Fecha: fecha}}
		svc.On("UpdateSolicitud", mock.Anything, solicitudID, in).Return(updated, nil).Once()

		rec := do(t, newServer(svc), http.MethodPut, "/solicitudes/"+solicitudID,
			`{"estado":"aprobado","comentario":"ok","currentUser":"jefe.ti"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got domain.Solicitud
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, domain.EstadoAprobado, got.Estado)
		require.Len(t, got.Comentarios, 1)
		assert.Equal(t, "jefe.ti", got.Comentarios[0].Autor)
		assert.Equal(t, "ok", got.Comentarios[0].Texto)
	})

	t.Run("UserHeaderReachesService", func(t *testing.T) {
		svc := new(MockSolicitudService)
		withUser := mock.MatchedBy(func(ctx context.Context) bool {
			user, ok := identity.UserFromContext(ctx)
			return ok && user == "jefe.ti"
		})
		svc.On("UpdateSolicitud", withUser, solicitudID, mock.Anything).Return(pendiente(), nil).Once()

		rec := do(t, newServer(svc), http.MethodPut, "/solicitudes/"+solicitudID, `{"estado":"rechazado"}`, "X-User", "jefe.ti")

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"InvalidStatus", domain.ErrInvalidStatus, http.StatusBadRequest, domain.CodeInvalidStatus},
		{"NotFound", domain.ErrNotFound, http.StatusNotFound, domain.CodeNotFound},
		{"AlreadyResolved", domain.ErrAlreadyResolved, http.StatusConflict, domain.CodeAlreadyResolved},
		{"NotResponsible", domain.ErrNotResponsible, http.StatusForbidden, domain.CodeNotResponsible},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockSolicitudService)
			svc.On("UpdateSolicitud", mock.Anything, solicitudID, mock.Anything).Return(nil, tc.err).Once()

			rec := do(t, newServer(svc), http.MethodPut, "/solicitudes/"+solicitudID, `{"estado":"aprobado"}`)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec).Code)
		})
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h := newServer(new(MockSolicitudService))

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	_ = do(t, h, http.MethodGet, "/healthz", "")
	rec = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `solicitudes_http_request_duration_seconds_count{method="GET",route="/healthz",status="200"}`)
}

func TestWithCORS(t *testing.T) {
	h := api.WithCORS(newServer(new(MockSolicitudService)), []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodOptions, "/solicitudes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
