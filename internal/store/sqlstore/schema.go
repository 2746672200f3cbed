package sqlstore

import (
	"context"
	"fmt"
)

// schema is portable between SQLite and Postgres.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS hearts_participants (
		id       TEXT PRIMARY KEY,
		name     TEXT NOT NULL DEFAULT '',
		bot      BOOLEAN NOT NULL DEFAULT FALSE,
		strategy TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS hearts_games (
		id           TEXT PRIMARY KEY,
		seat1        TEXT NOT NULL DEFAULT '',
		seat2        TEXT NOT NULL DEFAULT '',
		seat3        TEXT NOT NULL DEFAULT '',
		seat4        TEXT NOT NULL DEFAULT '',
		winner_id    TEXT NOT NULL DEFAULT '',
		target_score INTEGER NOT NULL DEFAULT 100,
		created_at   TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS hearts_deals (
		id         TEXT PRIMARY KEY,
		game_id    TEXT NOT NULL REFERENCES hearts_games (id),
		ordinal    INTEGER NOT NULL,
		has_passed BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (game_id, ordinal)
	)`,
	`CREATE TABLE IF NOT EXISTS hearts_tricks (
		id            TEXT PRIMARY KEY,
		deal_id       TEXT NOT NULL REFERENCES hearts_deals (id),
		ordinal       INTEGER NOT NULL,
		first_card_id TEXT NOT NULL DEFAULT '',
		winner_id     TEXT NOT NULL DEFAULT '',
		UNIQUE (deal_id, ordinal)
	)`,
	`CREATE TABLE IF NOT EXISTS hearts_cards (
		id         TEXT PRIMARY KEY,
		deal_id    TEXT NOT NULL REFERENCES hearts_deals (id),
		position   INTEGER NOT NULL,
		suit       TEXT NOT NULL,
		value      INTEGER NOT NULL,
		player_id  TEXT NOT NULL DEFAULT '',
		trick_id   TEXT NOT NULL DEFAULT '',
		to_pass    BOOLEAN NOT NULL DEFAULT FALSE,
		play_order INTEGER NOT NULL DEFAULT 0,
		UNIQUE (deal_id, suit, value)
	)`,
	`CREATE INDEX IF NOT EXISTS hearts_cards_owner_idx ON hearts_cards (deal_id, player_id)`,
	`CREATE INDEX IF NOT EXISTS hearts_deals_game_idx ON hearts_deals (game_id)`,
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
