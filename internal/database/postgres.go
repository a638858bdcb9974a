package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id         UUID PRIMARY KEY,
	creator    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'waiting',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS players (
	room_id   UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
	client_id TEXT NOT NULL,
	username  TEXT NOT NULL,
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
	seq       BIGSERIAL,
	PRIMARY KEY (room_id, client_id)
);

CREATE INDEX IF NOT EXISTS players_room_order ON players (room_id, joined_at, seq);
`

// Migrate creates the tables the room repository needs.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
