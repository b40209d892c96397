package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/logger"
	"solicitudes-backend/internal/service"
)

type SolicitudHandler struct {
	svc        service.SolicitudService
	maxPending int
}

func NewSolicitudHandler(svc service.SolicitudService, maxPending int) *SolicitudHandler {
	return &SolicitudHandler{svc: svc, maxPending: maxPending}
}

func (h *SolicitudHandler) Register(r *mux.Router) {
	r.HandleFunc("/solicitudes", h.List).Methods(http.MethodGet)
	r.HandleFunc("/solicitudes", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/solicitudes/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/solicitudes/{id}", h.Update).Methods(http.MethodPut)
}

// List returns every solicitud unless usuario or estado query parameters narrow it.
func (h *SolicitudHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.ListFilter{Usuario: q.Get("usuario"), Estado: domain.Estado(q.Get("estado"))}
	if filter.Estado != "" && !filter.Estado.Valid() {
		h.fail(w, r, "list solicitudes", domain.ErrInvalidStatus)
		return
	}

	list, err := h.svc.ListSolicitudes(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "list solicitudes", err)
		return
	}
	if list == nil {
		list = []domain.Solicitud{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *SolicitudHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.GetSolicitud(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, "get solicitud", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SolicitudHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateSolicitudInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.invalidBody(w, r, err)
		return
	}

	s, err := h.svc.CreateSolicitud(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create solicitud", err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *SolicitudHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateSolicitudInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.invalidBody(w, r, err)
		return
	}

	s, err := h.svc.UpdateSolicitud(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		h.fail(w, r, "update solicitud", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SolicitudHandler) invalidBody(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Info("Malformed request body", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: errorMessage(codeInvalidBody, h.maxPending), Code: codeInvalidBody})
}
