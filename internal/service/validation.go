package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"solicitudes-backend/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (in *CreateSolicitudInput) normalize() {
	in.Titulo = strings.TrimSpace(in.Titulo)
	in.Nit = strings.TrimSpace(in.Nit)
	in.Tipo = strings.TrimSpace(in.Tipo)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	in.Solicitante = strings.TrimSpace(in.Solicitante)
	in.Responsable = strings.TrimSpace(in.Responsable)
}

// validateStruct turns validator failures into a *domain.ValidationError keyed by JSON field.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "max":
		return fmt.Sprintf("admite como máximo %s caracteres", fe.Param())
	}
	return fmt.Sprintf("no cumple la regla %s", fe.Tag())
}
