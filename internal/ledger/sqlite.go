package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS balances (
	player     TEXT PRIMARY KEY,
	points     INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	player     TEXT NOT NULL,
	delta      INTEGER NOT NULL,
	balance    INTEGER NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_player ON entries(player, id);
`

// SQLiteStore keeps balances in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Balance(ctx context.Context, player string) (int, error) {
	var points int
	err := s.db.QueryRowContext(ctx, "SELECT points FROM balances WHERE player = ?", normalize(player)).Scan(&points)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return points, nil
}

func (s *SQLiteStore) Adjust(ctx context.Context, player string, delta int, reason string) (int, error) {
	key := normalize(player)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var points int
	err = tx.QueryRowContext(ctx, "SELECT points FROM balances WHERE player = ?", key).Scan(&points)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	balance := points + delta
	if balance < 0 {
		return points, fmt.Errorf("%s has %d, needs %d: %w", player, points, -delta, ErrInsufficientFunds)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO balances (player, points, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (player) DO UPDATE SET points = excluded.points, updated_at = excluded.updated_at
	`, key, balance, now)
	if err != nil {
		return 0, fmt.Errorf("update balance: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO entries (player, delta, balance, reason, created_at) VALUES (?, ?, ?, ?, ?)",
		key, delta, balance, reason, now)
	if err != nil {
		return 0, fmt.Errorf("record entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *SQLiteStore) History(ctx context.Context, player string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT player, delta, balance, reason, created_at FROM entries
		WHERE player = ? ORDER BY id DESC LIMIT ?
	`, normalize(player), limit)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Player, &e.Delta, &e.Balance, &e.Reason, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
