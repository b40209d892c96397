// Package ui serves the server-rendered browser client: a creation form and
// the per-user inbox with approve and reject actions.
package ui

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/identity"
	"solicitudes-backend/internal/logger"
	"solicitudes-backend/internal/service"
)

const (
	tabCrear   = "crear"
	tabBandeja = "bandeja"

	dateLayout = "02/01/2006 15:04:05"
)

const (
	msgCreated       = "¡Solicitud creada con éxito!"
	msgNitInvalid    = "El número de NIT no es correcto, verifíquelo o contactese con soporte técnico."
	msgLimitExceeded = "Error: Ya tienes %d solicitudes pendientes. Deben ser aprobadas antes de crear una nueva."
	msgCreateFailed  = "Ocurrió un error inesperado al crear la solicitud."
	msgNeedUser      = "Por favor, ingresa tu usuario en el campo de filtro para poder aprobar o rechazar."
	msgDecideFailed  = "No se pudo actualizar la solicitud."
	msgNotFound      = "La solicitud no existe."
	msgResolved      = "La solicitud ya fue aprobada o rechazada."
	msgBadDecision   = "La decisión enviada no es válida."
	msgNotYours      = "Solo el responsable puede aprobar o rechazar esta solicitud."
	msgLoadFailed    = "No se pudieron cargar las solicitudes."
)

type Server struct {
	svc        service.SolicitudService
	maxPending int
	t          *template.Template
}

type indexData struct {
	Tab      string
	Usuario  string
	Board    service.Board
	Form     service.CreateSolicitudInput
	NitError string
	Fields   map[string]string
	Alert    string
	Notice   string
}

func New(svc service.SolicitudService, maxPending int) *Server {
	t := template.Must(template.New("base").Funcs(template.FuncMap{
		"fecha": formatDate,
	}).Parse(templates))
	return &Server{svc: svc, maxPending: maxPending, t: t}
}

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/ui", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/ui/solicitudes", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/ui/solicitudes/{id}/decision", s.handleDecision).Methods(http.MethodPost)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := indexData{Tab: normalizeTab(q.Get("tab")), Usuario: strings.TrimSpace(q.Get("usuario"))}
	if q.Get("creada") != "" {
		data.Notice = msgCreated
	}
	s.render(w, r, http.StatusOK, data)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	usuario := strings.TrimSpace(r.FormValue("usuario"))
	in := service.CreateSolicitudInput{
		Titulo:      r.FormValue("titulo"),
		Nit:         r.FormValue("nit"),
		Tipo:        r.FormValue("tipo"),
		Descripcion: r.FormValue("descripcion"),
		Solicitante: r.FormValue("solicitante"),
		Responsable: r.FormValue("responsable"),
	}

	if _, err := s.svc.CreateSolicitud(r.Context(), in); err != nil {
		data := indexData{Tab: tabCrear, Usuario: usuario, Form: in}
		status := http.StatusBadRequest
		switch domain.ErrorCode(err) {
		case domain.CodeNitInvalid:
			data.NitError = msgNitInvalid
			status = http.StatusForbidden
		case domain.CodeLimitExceeded:
			data.Alert = fmt.Sprintf(msgLimitExceeded, s.maxPending)
			status = http.StatusTooManyRequests
		case domain.CodeValidation:
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				data.Fields = verr.Fields
			}
		default:
			logger.FromContext(r.Context()).Error("Failed to create solicitud from ui", "error", err)
			data.Alert = msgCreateFailed
			status = http.StatusInternalServerError
		}
		s.render(w, r, status, data)
		return
	}

	http.Redirect(w, r, indexURL(tabCrear, usuario, url.Values{"creada": {"1"}}), http.StatusSeeOther)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	usuario := strings.TrimSpace(r.FormValue("usuario"))
	if usuario == "" {
		s.render(w, r, http.StatusBadRequest, indexData{Tab: tabBandeja, Alert: msgNeedUser})
		return
	}

	id := mux.Vars(r)["id"]
	in := service.UpdateSolicitudInput{
		Estado:      domain.Estado(r.FormValue("estado")),
		Comentario:  r.FormValue("comentario"),
		CurrentUser: usuario,
	}
	ctx := identity.WithUser(r.Context(), usuario)
	if _, err := s.svc.UpdateSolicitud(ctx, id, in); err != nil {
		data := indexData{Tab: tabBandeja, Usuario: usuario}
		var status int
		switch domain.ErrorCode(err) {
		case domain.CodeNotFound:
			data.Alert, status = msgNotFound, http.StatusNotFound
		case domain.CodeAlreadyResolved:
			data.Alert, status = msgResolved, http.StatusConflict
		case domain.CodeInvalidID, domain.CodeInvalidStatus, domain.CodeValidation:
			data.Alert, status = msgBadDecision, http.StatusBadRequest
		case domain.CodeNotResponsible:
			data.Alert, status = msgNotYours, http.StatusForbidden
		default:
			data.Alert, status = msgDecideFailed, http.StatusInternalServerError
		}
		if status == http.StatusInternalServerError {
			logger.FromContext(ctx).Error("Failed to decide solicitud from ui", "id", id, "usuario", usuario, "error", err)
		} else {
			logger.FromContext(ctx).Warn("Decision from ui rejected", "id", id, "usuario", usuario, "error", err)
		}
		s.render(w, r, status, data)
		return
	}

	http.Redirect(w, r, indexURL(tabBandeja, usuario, nil), http.StatusSeeOther)
}

// render fills the board for data.Usuario and executes the page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data indexData) {
	if data.Usuario != "" {
		all, err := s.svc.ListSolicitudes(r.Context(), service.ListFilter{})
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list solicitudes for ui", "error", err)
			data.Alert = msgLoadFailed
		} else {
			data.Board = service.BuildBoard(all, data.Usuario)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.t.ExecuteTemplate(w, "index", data); err != nil {
		logger.Error("Failed to render ui", "error", err)
	}
}

func normalizeTab(tab string) string {
	if tab == tabBandeja {
		return tabBandeja
	}
	return tabCrear
}

func indexURL(tab, usuario string, extra url.Values) string {
	v := url.Values{"tab": {tab}}
	if usuario != "" {
		v.Set("usuario", usuario)
	}
	for k, vals := range extra {
		v[k] = vals
	}
	return "/ui?" + v.Encode()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
