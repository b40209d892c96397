package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNitInvalid      = errors.New("nit is not authorized")
	ErrLimitExceeded   = errors.New("pending solicitudes limit reached")
	ErrNotFound        = errors.New("solicitud not found")
	ErrInvalidID       = errors.New("malformed solicitud id")
	ErrInvalidStatus   = errors.New("invalid target status")
	ErrAlreadyResolved = errors.New("solicitud is no longer pending")
	ErrNotResponsible  = errors.New("only the responsable may decide this solicitud")
)

// Error codes returned to clients.
const (
	CodeNitInvalid      = "nit_invalid"
	CodeLimitExceeded   = "limit_exceeded"
	CodeValidation      = "validation_error"
	CodeInvalidID       = "invalid_id"
	CodeInvalidStatus   = "invalid_status"
	CodeNotFound        = "not_found"
	CodeAlreadyResolved = "already_resolved"
	CodeNotResponsible  = "not_responsible"
	CodeInternal        = "internal_error"
)

// ValidationError carries one message per offending field, keyed by its JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ErrorCode classifies err into one of the client-facing codes.
func ErrorCode(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNitInvalid):
		return CodeNitInvalid
	case errors.Is(err, ErrLimitExceeded):
		return CodeLimitExceeded
	case errors.As(err, &verr):
		return CodeValidation
	case errors.Is(err, ErrInvalidID):
		return CodeInvalidID
	case errors.Is(err, ErrInvalidStatus):
		return CodeInvalidStatus
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAlreadyResolved):
		return CodeAlreadyResolved
	case errors.Is(err, ErrNotResponsible):
		return CodeNotResponsible
	}
	return CodeInternal
}
