package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/logger"
)

const codeInvalidBody = "invalid_body"

// ErrorResponse is the JSON body of every failed call.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

var statusByCode = map[string]int{
	domain.CodeNitInvalid:      http.StatusForbidden,
	domain.CodeLimitExceeded:   http.StatusTooManyRequests,
	domain.CodeValidation:      http.StatusBadRequest,
	domain.CodeInvalidID:       http.StatusBadRequest,
	domain.CodeInvalidStatus:   http.StatusBadRequest,
	domain.CodeNotFound:        http.StatusNotFound,
	domain.CodeAlreadyResolved: http.StatusConflict,
	domain.CodeNotResponsible:  http.StatusForbidden,
	codeInvalidBody:            http.StatusBadRequest,
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// errorMessage returns the user-facing text for code.
func errorMessage(code string, maxPending int) string {
	switch code {
	case domain.CodeNitInvalid:
		return "El NIT no está autorizado."
	case domain.CodeLimitExceeded:
		return fmt.Sprintf("Ha alcanzado el límite de %d solicitudes pendientes.", maxPending)
	case domain.CodeValidation:
		return "La solicitud tiene campos inválidos."
	case domain.CodeInvalidID:
		return "El identificador de la solicitud no es válido."
	case domain.CodeInvalidStatus:
		return "El estado debe ser 'aprobado' o 'rechazado'."
	case domain.CodeNotFound:
		return "La solicitud no existe."
	case domain.CodeAlreadyResolved:
		return "La solicitud ya fue aprobada o rechazada."
	case domain.CodeNotResponsible:
		return "Solo el responsable puede aprobar o rechazar esta solicitud."
	case codeInvalidBody:
		return "El cuerpo de la petición no es un JSON válido."
	}
	return "Error interno del servidor."
}

func (h *SolicitudHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := domain.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
		logger.FromContext(r.Context()).Error("Failed to "+op, "error", err)
	} else {
		logger.FromContext(r.Context()).Info("Request refused", "operation", op, "code", code, "reason", err)
	}

	resp := ErrorResponse{Error: errorMessage(code, h.maxPending), Code: code}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}
