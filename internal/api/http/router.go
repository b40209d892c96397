package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"solicitudes-backend/internal/metrics"
)

// NewRouter wires the JSON API, health and metrics endpoints.
func NewRouter(h *SolicitudHandler, m *metrics.Metrics) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger, Identity, Instrument(m))

	h.Register(r)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	return r
}

// WithCORS lets the browser client call the API from another origin.
func WithCORS(next http.Handler, allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", headerUser, headerRequestID},
		ExposedHeaders: []string{headerRequestID},
	}).Handler(next)
}
