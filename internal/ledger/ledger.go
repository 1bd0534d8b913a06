// Package ledger keeps each player's points between sessions.
//
// A session stakes points from the ledger, plays with them as chips and pays
// the final stack back. Three stores are available: a JSON file, SQLite and
// PostgreSQL.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lox/pokernight/internal/config"
)

var (
	// ErrInsufficientFunds is returned when a debit would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrUnknownDriver is returned by Open for unsupported drivers.
	ErrUnknownDriver = errors.New("unknown ledger driver")
	// ErrInvalidAmount is returned for non-positive debits and credits.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Entry is one balance change.
type Entry struct {
	Player  string    `json:"player"`
	Delta   int       `json:"delta"`
	Balance int       `json:"balance"`
	Reason  string    `json:"reason"`
	At      time.Time `json:"at"`
}

// Store persists balances. Unknown players have a balance of zero.
type Store interface {
	Balance(ctx context.Context, player string) (int, error)
	// Adjust applies delta atomically and returns the new balance. It fails
	// with ErrInsufficientFunds, leaving the balance unchanged, if the result
	// would be negative.
	Adjust(ctx context.Context, player string, delta int, reason string) (int, error)
	// History returns up to limit entries for player, newest first.
	History(ctx context.Context, player string, limit int) ([]Entry, error)
	Close() error
}

// Open creates the store selected by cfg.
func Open(ctx context.Context, cfg config.LedgerConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "file", "":
		return OpenFile(cfg.Path)
	case "sqlite":
		return OpenSQLite(ctx, cfg.Path)
	case "postgres":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = os.Getenv("DATABASE_URL")
		}
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Debit removes amount points from player.
func Debit(ctx context.Context, s Store, player string, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit %d: %w", amount, ErrInvalidAmount)
	}
	return s.Adjust(ctx, player, -amount, reason)
}

// Credit adds amount points to player.
func Credit(ctx context.Context, s Store, player string, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit %d: %w", amount, ErrInvalidAmount)
	}
	return s.Adjust(ctx, player, amount, reason)
}

// Settle pays a finished session's final stack back to player. The stake was
// debited when the session started, so the whole stack is credited.
func Settle(ctx context.Context, s Store, player string, finalStack int, sessionID string) (int, error) {
	if finalStack <= 0 {
		return s.Balance(ctx, player)
	}
	return s.Adjust(ctx, player, finalStack, "session "+sessionID)
}

func normalize(player string) string {
	return strings.ToLower(strings.TrimSpace(player))
}
