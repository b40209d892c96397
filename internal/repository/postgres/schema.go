package postgres

// seq keeps insertion order, which List reports as storage order.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS solicitudes (
		id          UUID PRIMARY KEY,
		seq         BIGSERIAL,
		titulo      TEXT NOT NULL,
		nit         TEXT NOT NULL,
		tipo        TEXT NOT NULL,
		descripcion TEXT NOT NULL DEFAULT '',
		solicitante TEXT NOT NULL,
		responsable TEXT NOT NULL,
		estado      TEXT NOT NULL,
		fecha       TIMESTAMPTZ NOT NULL,
		comentarios JSONB NOT NULL DEFAULT '[]'::jsonb
	)`,
	`CREATE INDEX IF NOT EXISTS solicitudes_solicitante_estado_idx ON solicitudes (solicitante, estado)`,
	`CREATE TABLE IF NOT EXISTS config (
		name TEXT PRIMARY KEY,
		nits TEXT[] NOT NULL
	)`,
}
