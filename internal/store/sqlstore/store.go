// Package sqlstore implements ports.Repository on database/sql. Queries use
// numbered placeholders in increasing order so they bind positionally on
// both SQLite and Postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hearts/internal/domain"
	"hearts/internal/ports"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Supported driver names for Open.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Store is a SQL-backed repository.
type Store struct {
	db *sql.DB
}

// New wraps an existing handle, e.g. the one Nakama hands to modules.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects with one of the registered drivers.
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

var _ ports.Repository = (*Store)(nil)

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotFound
	}
	return err
}

func (s *Store) SaveParticipant(ctx context.Context, p domain.Participant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hearts_participants (id, name, bot, strategy)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			bot = excluded.bot,
			strategy = excluded.strategy`,
		p.ID, p.Name, p.Bot, p.Strategy)
	return err
}

func (s *Store) GetParticipant(ctx context.Context, id string) (domain.Participant, error) {
	var p domain.Participant
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, bot, strategy FROM hearts_participants WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Bot, &p.Strategy)
	if err != nil {
		return domain.Participant{}, notFound(err)
	}
	return p, nil
}

func (s *Store) ListBots(ctx context.Context) ([]domain.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, bot, strategy FROM hearts_participants WHERE bot = $1 ORDER BY id`, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Bot, &p.Strategy); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreateGame(ctx context.Context, g domain.Game) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hearts_games (id, seat1, seat2, seat3, seat4, winner_id, target_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		g.ID, g.Seats[0], g.Seats[1], g.Seats[2], g.Seats[3], g.WinnerID, g.TargetScore, g.CreatedAt.UTC())
	return err
}

func (s *Store) GetGame(ctx context.Context, id string) (domain.Game, error) {
	var g domain.Game
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seat1, seat2, seat3, seat4, winner_id, target_score, created_at
		FROM hearts_games WHERE id = $1`, id).
		Scan(&g.ID, &g.Seats[0], &g.Seats[1], &g.Seats[2], &g.Seats[3], &g.WinnerID, &g.TargetScore, &g.CreatedAt)
	if err != nil {
		return domain.Game{}, notFound(err)
	}
	return g, nil
}

func (s *Store) UpdateGame(ctx context.Context, g domain.Game) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE hearts_games
		SET seat1 = $1, seat2 = $2, seat3 = $3, seat4 = $4, winner_id = $5, target_score = $6
		WHERE id = $7`,
		g.Seats[0], g.Seats[1], g.Seats[2], g.Seats[3], g.WinnerID, g.TargetScore, g.ID)
	return requireRow(res, err)
}

func (s *Store) CreateDeal(ctx context.Context, d domain.Deal, cards []domain.Card) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO hearts_deals (id, game_id, ordinal, has_passed) VALUES ($1, $2, $3, $4)`,
		d.ID, d.GameID, d.Ordinal, d.HasPassed); err != nil {
		return fmt.Errorf("insert deal: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO hearts_cards (id, deal_id, position, suit, value, player_id, trick_id, to_pass, play_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range cards {
		if _, err := stmt.ExecContext(ctx,
			c.ID, d.ID, i, string(c.Suit), c.Value, c.PlayerID, c.TrickID, c.ToPass, c.PlayOrder); err != nil {
			return fmt.Errorf("insert card %s: %w", c, err)
		}
	}
	return tx.Commit()
}

const dealColumns = `id, game_id, ordinal, has_passed`

func scanDeal(sc interface{ Scan(...any) error }) (domain.Deal, error) {
	var d domain.Deal
	err := sc.Scan(&d.ID, &d.GameID, &d.Ordinal, &d.HasPassed)
	return d, err
}

func (s *Store) LatestDeal(ctx context.Context, gameID string) (domain.Deal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+dealColumns+` FROM hearts_deals WHERE game_id = $1 ORDER BY ordinal DESC LIMIT 1`, gameID)
	d, err := scanDeal(row)
	if err != nil {
		return domain.Deal{}, notFound(err)
	}
	return d, nil
}

func (s *Store) ListDeals(ctx context.Context, gameID string) ([]domain.Deal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+dealColumns+` FROM hearts_deals WHERE game_id = $1 ORDER BY ordinal`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) CompletePass(ctx context.Context, dealID string, cards []domain.Card) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE hearts_deals SET has_passed = $1 WHERE id = $2`, true, dealID)
	if err := requireRow(res, err); err != nil {
		return fmt.Errorf("mark deal %s passed: %w", dealID, err)
	}
	if err := updateCards(ctx, tx, cards); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) CreateTrick(ctx context.Context, t domain.Trick) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hearts_tricks (id, deal_id, ordinal, first_card_id, winner_id)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.DealID, t.Ordinal, t.FirstCardID, t.WinnerID)
	return err
}

func (s *Store) ListTricks(ctx context.Context, dealID string) ([]domain.Trick, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, deal_id, ordinal, first_card_id, winner_id
		FROM hearts_tricks WHERE deal_id = $1 ORDER BY ordinal`, dealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Trick
	for rows.Next() {
		var t domain.Trick
		if err := rows.Scan(&t.ID, &t.DealID, &t.Ordinal, &t.FirstCardID, &t.WinnerID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTrick(ctx context.Context, t domain.Trick) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE hearts_tricks SET first_card_id = $1, winner_id = $2 WHERE id = $3`,
		t.FirstCardID, t.WinnerID, t.ID)
	return requireRow(res, err)
}

func (s *Store) ListCards(ctx context.Context, f ports.CardFilter) ([]domain.Card, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.DealID != "" {
		add("deal_id = $%d", f.DealID)
	}
	if f.PlayerID != "" {
		add("player_id = $%d", f.PlayerID)
	}
	if f.TrickID != "" {
		add("trick_id = $%d", f.TrickID)
	}
	switch f.Location {
	case ports.InHand:
		where = append(where, "trick_id = ''")
	case ports.Played:
		where = append(where, "trick_id <> ''")
	}
	if f.ToPass != nil {
		add("to_pass = $%d", *f.ToPass)
	}

	q := `SELECT id, deal_id, suit, value, player_id, trick_id, to_pass, play_order FROM hearts_cards`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY deal_id, position"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Card
	for rows.Next() {
		var (
			c    domain.Card
			suit string
		)
		if err := rows.Scan(&c.ID, &c.DealID, &suit, &c.Value, &c.PlayerID, &c.TrickID, &c.ToPass, &c.PlayOrder); err != nil {
			return nil, err
		}
		c.Suit = domain.Suit(suit)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCards(ctx context.Context, cards []domain.Card) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := updateCards(ctx, tx, cards); err != nil {
		return err
	}
	return tx.Commit()
}

func updateCards(ctx context.Context, tx *sql.Tx, cards []domain.Card) error {
	stmt, err := tx.PrepareContext(ctx, `
		UPDATE hearts_cards SET player_id = $1, trick_id = $2, to_pass = $3, play_order = $4
		WHERE id = $5`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cards {
		res, err := stmt.ExecContext(ctx, c.PlayerID, c.TrickID, c.ToPass, c.PlayOrder, c.ID)
		if err := requireRow(res, err); err != nil {
			return fmt.Errorf("update card %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *Store) ReassignParticipant(ctx context.Context, gameID, from, to string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		UPDATE hearts_cards SET player_id = $1
		WHERE player_id = $2 AND deal_id IN (SELECT id FROM hearts_deals WHERE game_id = $3)`,
		to, from, gameID); err != nil {
		return fmt.Errorf("reassign cards: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE hearts_tricks SET winner_id = $1
		WHERE winner_id = $2 AND deal_id IN (SELECT id FROM hearts_deals WHERE game_id = $3)`,
		to, from, gameID); err != nil {
		return fmt.Errorf("reassign tricks: %w", err)
	}
	return tx.Commit()
}

func requireRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}
