package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/lox/pokernight/internal/fileutil"
)

// historyLimit bounds how many entries the file store keeps per player.
const historyLimit = 100

type fileAccount struct {
	Points  int     `json:"points"`
	History []Entry `json:"history,omitempty"`
}

type fileState struct {
	Players map[string]*fileAccount `json:"players"`
}

// FileStore keeps balances in a JSON file rewritten atomically on every change.
type FileStore struct {
	mu    sync.Mutex
	path  string
	state fileState
	now   func() time.Time
}

// OpenFile loads path, starting empty when it does not exist yet.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, now: time.Now}
	if _, err := fileutil.ReadJSON(path, &s.state); err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	if s.state.Players == nil {
		s.state.Players = map[string]*fileAccount{}
	}
	return s, nil
}

func (s *FileStore) Balance(_ context.Context, player string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct, ok := s.state.Players[normalize(player)]; ok {
		return acct.Points, nil
	}
	return 0, nil
}

func (s *FileStore) Adjust(_ context.Context, player string, delta int, reason string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalize(player)
	acct, ok := s.state.Players[key]
	if !ok {
		acct = &fileAccount{}
	}
	balance := acct.Points + delta
	if balance < 0 {
		return acct.Points, fmt.Errorf("%s has %d, needs %d: %w", player, acct.Points, -delta, ErrInsufficientFunds)
	}

	prevPoints, prevHistory := acct.Points, acct.History
	acct.Points = balance
	acct.History = append(acct.History, Entry{Player: key, Delta: delta, Balance: balance, Reason: reason, At: s.now().UTC()})
	if len(acct.History) > historyLimit {
		acct.History = slices.Clone(acct.History[len(acct.History)-historyLimit:])
	}
	s.state.Players[key] = acct

	if err := fileutil.WriteJSONAtomic(s.path, s.state, 0o644); err != nil {
		acct.Points, acct.History = prevPoints, prevHistory
		if !ok {
			delete(s.state.Players, key)
		}
		return prevPoints, fmt.Errorf("save ledger: %w", err)
	}
	return balance, nil
}

func (s *FileStore) History(_ context.Context, player string, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.state.Players[normalize(player)]
	if !ok {
		return nil, nil
	}
	out := slices.Clone(acct.History)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *FileStore) Close() error { return nil }
