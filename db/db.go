// Package db owns the pixels schema and the startup migration.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE SCHEMA IF NOT EXISTS million_grid;

CREATE TABLE IF NOT EXISTS million_grid.pixels (
    id          TEXT PRIMARY KEY,
    type        TEXT NOT NULL CHECK (type IN ('image', 'text')),
    x           INTEGER NOT NULL,
    y           INTEGER NOT NULL,
    w           INTEGER NOT NULL CHECK (w >= 1),
    h           INTEGER NOT NULL CHECK (h >= 1),
    src         TEXT,
    content     TEXT,
    font_size   DOUBLE PRECISION,
    font_family TEXT,
    font_weight TEXT,
    color       TEXT,
    bg_color    TEXT,
    rotation    DOUBLE PRECISION NOT NULL DEFAULT 0,
    brightness  DOUBLE PRECISION NOT NULL DEFAULT 100,
    contrast    DOUBLE PRECISION NOT NULL DEFAULT 100,
    zoom        DOUBLE PRECISION NOT NULL DEFAULT 1,
    offset_x    DOUBLE PRECISION NOT NULL DEFAULT 0,
    offset_y    DOUBLE PRECISION NOT NULL DEFAULT 0,
    title       TEXT,
    link        TEXT,
    message     TEXT,
    status      TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved')),
    payment_id  TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_pixels_status ON million_grid.pixels (status);
CREATE INDEX IF NOT EXISTS idx_pixels_payment_id ON million_grid.pixels (payment_id);
CREATE INDEX IF NOT EXISTS idx_pixels_created_at ON million_grid.pixels (created_at);
`

// Migrate applies the schema. Every statement is idempotent, so running it
// on each startup is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run schema migration: %w", err)
	}
	return nil
}
