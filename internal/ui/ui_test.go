package ui_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/identity"
	"solicitudes-backend/internal/service"
	"solicitudes-backend/internal/ui"
)

func newUI(svc *MockSolicitudService) http.Handler {
	r := mux.NewRouter()
	ui.New(svc, 2).Register(r)
	return r
}

func fixtures() []domain.Solicitud {
	a := domain.NewSolicitud("Acceso a base de datos", "900123456-7", "acceso", "", "ana", "jefe.ti", time.Date(2025, 8, 25, 15, 30, 0, 0, time.UTC))
	a.ID = "a1"
	a.Estado = domain.EstadoAprobado
	a.Comentarios = []domain.Comentario{{Autor: "jefe.ti", Texto: "Aprobado por una semana", Fecha: time.Date(2025, 8, 25, 16, 0, 0, 0, time.UTC)}}
	b := domain.NewSolicitud("Nueva licencia", "800555444-2", "licencia", "Diseño", "ana", "jefe.ti", time.Date(2025, 8, 26, 10, 0, 0, 0, time.UTC))
	b.ID = "b2"
	c := domain.NewSolicitud("Otro equipo", "901987654-3", "hardware", "", "luis", "gerente", time.Date(2025, 8, 27, 9, 0, 0, 0, time.UTC))
	c.ID = "c3"
	return []domain.Solicitud{*a, *b, *c}
}

func postForm(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndex_Bandeja(t *testing.T) {
	t.Run("ResponsableSeesActions", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("ListSolicitudes", mock.Anything, service.ListFilter{}).Return(fixtures(), nil).Once()

		rec := get(newUI(svc), "/ui?tab=bandeja&usuario=jefe.ti")

		body := rec.Body.String()
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, body, "Nueva licencia")
		assert.Contains(t, body, "Acceso a base de datos")
		assert.NotContains(t, body, "Otro equipo")
		assert.Contains(t, body, `<span class="badge">1</span>`)
		assert.Contains(t, body, "/ui/solicitudes/b2/decision")
		assert.NotContains(t, body, "/ui/solicitudes/a1/decision")
		assert.Contains(t, body, "25/08/2025 16:00:00 - <b>jefe.ti</b>: Aprobado por una semana")
		assert.Less(t, strings.Index(body, "Nueva licencia"), strings.Index(body, "Acceso a base de datos"))
	})

	t.Run("SolicitanteHasNoActions", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("ListSolicitudes", mock.Anything, service.ListFilter{}).Return(fixtures(), nil).Once()

		body := get(newUI(svc), "/ui?tab=bandeja&usuario=ana").Body.String()

		assert.Contains(t, body, "Nueva licencia")
		assert.NotContains(t, body, "/decision")
		assert.NotContains(t, body, `class="badge"`)
	})

	t.Run("NoUser", func(t *testing.T) {
		svc := new(MockSolicitudService)

		body := get(newUI(svc), "/ui?tab=bandeja").Body.String()

		assert.Contains(t, body, "Ingresa tu usuario para ver tus solicitudes.")
		svc.AssertNotCalled(t, "ListSolicitudes", mock.Anything, mock.Anything)
	})

	t.Run("EmptyHistory", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("ListSolicitudes", mock.Anything, service.ListFilter{}).Return(fixtures(), nil).Once()

		body := get(newUI(svc), "/ui?tab=bandeja&usuario=nadie").Body.String()

		assert.Contains(t, body, "No hay solicitudes en el historial para el usuario <b>nadie</b>.")
	})
}

func TestCreate(t *testing.T) {
	form := url.Values{
		"usuario":     {"ana"},
		"titulo":      {"Acceso VPN"},
		"nit":         {"900123456-7"},
		"tipo":        {"acceso"},
		"solicitante": {"ana"},
		"responsable": {"jefe.ti"},
	}

	t.Run("RedirectsOnSuccess", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("CreateSolicitud", mock.Anything, mock.MatchedBy(func(in service.CreateSolicitudInput) bool {
			return in.Titulo == "Acceso VPN" && in.Responsable == "jefe.ti"
		})).Return(&domain.Solicitud{ID: "x"}, nil).Once()

		rec := postForm(newUI(svc), "/ui/solicitudes", form)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/ui?creada=1&tab=crear&usuario=ana", rec.Header().Get("Location"))
	})

	t.Run("NitInvalid", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("CreateSolicitud", mock.Anything, mock.Anything).Return(nil, domain.ErrNitInvalid).Once()
		svc.On("ListSolicitudes", mock.Anything, service.ListFilter{}).Return([]domain.Solicitud{}, nil).Maybe()

		rec := postForm(newUI(svc), "/ui/solicitudes", form)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "El número de NIT no es correcto")
		assert.Contains(t, rec.Body.String(), `value="Acceso VPN"`)
	})

	t.Run("LimitExceeded", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("CreateSolicitud", mock.Anything, mock.Anything).Return(nil, domain.ErrLimitExceeded).Once()
		svc.On("ListSolicitudes", mock.Anything, service.ListFilter{}).Return([]domain.Solicitud{}, nil).Maybe()

		rec := postForm(newUI(svc), "/ui/solicitudes", form)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), "Error: Ya tienes 2 solicitudes pendientes.")
	})

	t.Run("UnexpectedError", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("CreateSolicitud", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
		svc.On("ListSolicitudes", mock.Anything, service.ListFilter{}).Return([]domain.Solicitud{}, nil).Maybe()

		rec := postForm(newUI(svc), "/ui/solicitudes", form)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Ocurrió un error inesperado al crear la solicitud.")
		assert.NotContains(t, rec.Body.String(), "db down")
	})
}

func TestDecision(t *testing.T) {
	t.Run("RequiresUser", func(t *testing.T) {
		svc := new(MockSolicitudService)

		rec := postForm(newUI(svc), "/ui/solicitudes/b2/decision", url.Values{"estado": {"aprobado"}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Por favor, ingresa tu usuario")
		svc.AssertNotCalled(t, "UpdateSolicitud", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ApprovesAsUser", func(t *testing.T) {
		svc := new(MockSolicitudService)
		actingUser := mock.MatchedBy(func(ctx context.Context) bool {
			user, ok := identity.UserFromContext(ctx)
			return ok && user == "jefe.ti"
		})
		in := service.UpdateSolicitudInput{Estado: domain.EstadoAprobado, Comentario: "ok", CurrentUser: "jefe.ti"}
		svc.On("UpdateSolicitud", actingUser, "b2", in).Return(&domain.Solicitud{ID: "b2"}, nil).Once()

		rec := postForm(newUI(svc), "/ui/solicitudes/b2/decision",
			url.Values{"estado": {"aprobado"}, "comentario": {"ok"}, "usuario": {"jefe.ti"}})

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/ui?tab=bandeja&usuario=jefe.ti", rec.Header().Get("Location"))
		svc.AssertExpectations(t)
	})

	t.Run("AlreadyResolved", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("UpdateSolicitud", mock.Anything, "a1", mock.Anything).Return(nil, domain.ErrAlreadyResolved).Once()
		svc.On("ListSolicitudes", mock.Anything, service.ListFilter{}).Return(fixtures(), nil).Once()

		rec := postForm(newUI(svc), "/ui/solicitudes/a1/decision",
			url.Values{"estado": {"rechazado"}, "usuario": {"jefe.ti"}})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "La solicitud ya fue aprobada o rechazada.")
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("UpdateSolicitud", mock.Anything, "zz", mock.Anything).Return(nil, domain.ErrNotFound).Once()
		svc.On("ListSolicitudes", mock.Anything, service.ListFilter{}).Return(fixtures(), nil).Once()

		rec := postForm(newUI(svc), "/ui/solicitudes/zz/decision",
			url.Values{"estado": {"aprobado"}, "usuario": {"jefe.ti"}})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "La solicitud no existe.")
	})

	t.Run("InvalidEstado", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("UpdateSolicitud", mock.Anything, "b2", mock.Anything).Return(nil, domain.ErrInvalidStatus).Once()
		svc.On("ListSolicitudes", mock.Anything, service.ListFilter{}).Return(fixtures(), nil).Once()

		rec := postForm(newUI(svc), "/ui/solicitudes/b2/decision",
			url.Values{"estado": {"archivado"}, "usuario": {"jefe.ti"}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "no es válida")
	})

	t.Run("StoreFailure", func(t *testing.T) {
		svc := new(MockSolicitudService)
		svc.On("UpdateSolicitud", mock.Anything, "b2", mock.Anything).Return(nil, errors.New("connection reset")).Once()
		svc.On("ListSolicitudes", mock.Anything, service.ListFilter{}).Return(fixtures(), nil).Once()

		rec := postForm(newUI(svc), "/ui/solicitudes/b2/decision",
			url.Values{"estado": {"aprobado"}, "usuario": {"jefe.ti"}})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "No se pudo actualizar la solicitud.")
	})
}
