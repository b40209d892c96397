// Package seed loads fixture solicitudes and resets a store with them.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/logger"
	"solicitudes-backend/internal/repository"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type fixtureFile struct {
	Solicitudes []fixture `yaml:"solicitudes"`
}

type fixture struct {
	Titulo      string        `yaml:"titulo"`
	Nit         string        `yaml:"nit"`
	Tipo        string        `yaml:"tipo"`
	Descripcion string        `yaml:"descripcion"`
	Solicitante string        `yaml:"solicitante"`
	Responsable string        `yaml:"responsable"`
	Estado      domain.Estado `yaml:"estado"`
	Fecha       time.Time     `yaml:"fecha"`
	Comentarios []struct {
		Autor string    `yaml:"autor"`
		Texto string    `yaml:"texto"`
		Fecha time.Time `yaml:"fecha"`
	} `yaml:"comentarios"`
}

// Default returns the built-in fixtures.
func Default() ([]domain.Solicitud, error) {
	return Parse(defaultFixtures)
}

// LoadFile reads fixtures from path.
func LoadFile(path string) ([]domain.Solicitud, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]domain.Solicitud, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	out := make([]domain.Solicitud, 0, len(file.Solicitudes))
	for i, f := range file.Solicitudes {
		if strings.TrimSpace(f.Titulo) == "" || strings.TrimSpace(f.Solicitante) == "" {
			return nil, fmt.Errorf("fixture %d: titulo and solicitante are required", i)
		}
		estado := f.Estado
		if estado == "" {
			estado = domain.EstadoPendiente
		}
		if !estado.Valid() {
			return nil, fmt.Errorf("fixture %d: %w: %q", i, domain.ErrInvalidStatus, f.Estado)
		}

		s := domain.NewSolicitud(f.Titulo, f.Nit, f.Tipo, f.Descripcion, f.Solicitante, f.Responsable, f.Fecha)
		s.Estado = estado
		for _, c := range f.Comentarios {
			s.Comentarios = append(s.Comentarios, domain.Comentario{Autor: c.Autor, Texto: c.Texto, Fecha: c.Fecha.UTC()})
		}
		out = append(out, *s)
	}
	return out, nil
}

// Run replaces every stored solicitud with fixtures.
func Run(ctx context.Context, seeder repository.Seeder, fixtures []domain.Solicitud) error {
	if err := seeder.Reset(ctx, fixtures); err != nil {
		return fmt.Errorf("failed to reset solicitudes: %w", err)
	}
	logger.Info("Solicitudes seeded", "count", len(fixtures))
	return nil
}
