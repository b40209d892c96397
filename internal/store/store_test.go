package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"solicitudes-backend/internal/config"
	"solicitudes-backend/internal/store"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "sqlite", ConnectionString: "file::memory:", TimeoutSeconds: 1}}

	s, err := store.Open(context.Background(), cfg)

	assert.Nil(t, s)
	assert.ErrorContains(t, err, `unsupported database driver "sqlite"`)
}
