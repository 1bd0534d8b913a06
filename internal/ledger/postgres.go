package ledger

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var postgresSchema string

// PostgresStore keeps balances in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and creates the tables if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres ledger needs a dsn")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Balance(ctx context.Context, player string) (int, error) {
	var points int64
	err := s.pool.QueryRow(ctx, `SELECT points FROM balances WHERE player = $1`, normalize(player)).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return int(points), nil
}

func (s *PostgresStore) Adjust(ctx context.Context, player string, delta int, reason string) (int, error) {
	key := normalize(player)
	var balance int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		// Lock the row (creating it first) so concurrent adjustments serialize.
		if _, err := tx.Exec(ctx, `INSERT INTO balances(player) VALUES ($1) ON CONFLICT (player) DO NOTHING`, key); err != nil {
			return err
		}
		var points int64
		if err := tx.QueryRow(ctx, `SELECT points FROM balances WHERE player = $1 FOR UPDATE`, key).Scan(&points); err != nil {
			return err
		}
		balance = points + int64(delta)
		if balance < 0 {
			balance = points
			return fmt.Errorf("%s has %d, needs %d: %w", player, points, -delta, ErrInsufficientFunds)
		}
		if _, err := tx.Exec(ctx, `UPDATE balances SET points = $2, updated_at = now() WHERE player = $1`, key, balance); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO entries(player, delta, balance, reason) VALUES ($1, $2, $3, $4)`,
			key, delta, balance, reason)
		return err
	})
	if err != nil {
		return int(balance), err
	}
	return int(balance), nil
}

func (s *PostgresStore) History(ctx context.Context, player string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 1 << 30
	}
	rows, err := s.pool.Query(ctx, `
		SELECT player, delta, balance, reason, created_at FROM entries
		 WHERE player = $1 ORDER BY id DESC LIMIT $2
	`, normalize(player), limit)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var delta, balance int64
		if err := rows.Scan(&e.Player, &delta, &balance, &e.Reason, &e.At); err != nil {
			return nil, err
		}
		e.Delta, e.Balance = int(delta), int(balance)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
