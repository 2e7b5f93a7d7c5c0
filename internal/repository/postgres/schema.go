package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is idempotent. Everything a party owns is removed with it.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS watch_parties (
		id                BIGSERIAL PRIMARY KEY,
		movie_id          BIGINT       NOT NULL,
		title             VARCHAR(255) NOT NULL,
		host_name         VARCHAR(100) NOT NULL,
		notes             TEXT,
		selected_datetime TIMESTAMPTZ,
		is_finalized      BOOLEAN      NOT NULL DEFAULT FALSE,
		created_at        TIMESTAMPTZ  NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ,
		CONSTRAINT watch_parties_finalized_has_time CHECK (is_finalized = (selected_datetime IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_watch_parties_movie_id ON watch_parties (movie_id)`,
	`CREATE TABLE IF NOT EXISTS watch_party_time_slots (
		id                BIGSERIAL PRIMARY KEY,
		watch_party_id    BIGINT      NOT NULL REFERENCES watch_parties (id) ON DELETE CASCADE,
		position          INT         NOT NULL,
		proposed_datetime TIMESTAMPTZ NOT NULL,
		votes             INT         NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_watch_party_time_slots_party ON watch_party_time_slots (watch_party_id)`,
	`CREATE TABLE IF NOT EXISTS watch_party_participants (
		id             BIGSERIAL PRIMARY KEY,
		watch_party_id BIGINT       NOT NULL REFERENCES watch_parties (id) ON DELETE CASCADE,
		name           VARCHAR(100) NOT NULL,
		email          VARCHAR(255),
		joined_at      TIMESTAMPTZ  NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_watch_party_participants_party ON watch_party_participants (watch_party_id)`,
	`CREATE TABLE IF NOT EXISTS watch_party_votes (
		id             BIGSERIAL PRIMARY KEY,
		participant_id BIGINT      NOT NULL REFERENCES watch_party_participants (id) ON DELETE CASCADE,
		time_slot_id   BIGINT      NOT NULL REFERENCES watch_party_time_slots (id) ON DELETE CASCADE,
		is_available   BOOLEAN     NOT NULL,
		voted_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT watch_party_votes_participant_slot_key UNIQUE (participant_id, time_slot_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_watch_party_votes_slot ON watch_party_votes (time_slot_id)`,
}

// EnsureSchema creates the watch-party tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
