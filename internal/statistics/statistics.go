// Package statistics accumulates per-player results over a session by
// listening to engine events.
package statistics

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/lox/pokernight/internal/game"
)

// PlayerStats tracks one player's results in big blinds per hand.
type PlayerStats struct {
	Name         string
	Hands        int
	ShowdownWins int
	FoldWins     int
	NetChips     int
	BiggestPot   int // largest pot this player won

	SumBB  float64
	SumBB2 float64 // sum of squares for variance
	Values []float64
}

// Wins counts every hand with a share of the pot.
func (s *PlayerStats) Wins() int {
	return s.ShowdownWins + s.FoldWins
}

// Mean returns the average result in big blinds per hand.
func (s *PlayerStats) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance of the per-hand results.
func (s *PlayerStats) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

func (s *PlayerStats) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *PlayerStats) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *PlayerStats) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median per-hand result.
func (s *PlayerStats) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), s.Values...)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

func (s *PlayerStats) add(net, bigBlind int) {
	bb := float64(net)
	if bigBlind > 0 {
		bb /= float64(bigBlind)
	}
	s.Hands++
	s.NetChips += net
	s.SumBB += bb
	s.SumBB2 += bb * bb
	s.Values = append(s.Values, bb)
}

// Tracker is a game.EventSubscriber that records every settled hand.
type Tracker struct {
	mu        sync.Mutex
	players   map[string]*PlayerStats
	order     []string
	start     map[string]int
	bigBlind  int
	hands     int
	showdowns int
	abandoned int
	forfeited int
	maxPot    int
}

func NewTracker() *Tracker {
	return &Tracker{
		players: make(map[string]*PlayerStats),
		start:   make(map[string]int),
	}
}

func (t *Tracker) OnEvent(ev game.GameEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev := ev.(type) {
	case game.HandStartEvent:
		t.bigBlind = ev.BigBlind
		clear(t.start)
		for _, s := range ev.Seats {
			if s.Status == game.Eliminated {
				continue
			}
			// Blinds are already taken out of Stack.
			t.start[s.Name] = s.Stack + s.Contributed
			t.player(s.Name)
		}
	case game.HandEndEvent:
		t.handEnd(ev)
	}
}

func (t *Tracker) handEnd(ev game.HandEndEvent) {
	t.hands++
	t.maxPot = max(t.maxPot, ev.Pot)
	switch ev.WinType {
	case game.WinShowdown:
		t.showdowns++
	case game.WinAbandoned:
		t.abandoned++
		t.forfeited += ev.Pot
	}

	won := make(map[string]bool, len(ev.Winners))
	for _, w := range ev.Winners {
		won[w.Name] = true
		p := t.player(w.Name)
		if ev.WinType == game.WinShowdown {
			p.ShowdownWins++
		} else {
			p.FoldWins++
		}
		p.BiggestPot = max(p.BiggestPot, ev.Pot)
	}

	for _, s := range ev.Stacks {
		start, ok := t.start[s.Name]
		if !ok {
			continue
		}
		t.player(s.Name).add(s.Stack-start, t.bigBlind)
	}
}

func (t *Tracker) player(name string) *PlayerStats {
	p, ok := t.players[name]
	if !ok {
		p = &PlayerStats{Name: name}
		t.players[name] = p
		t.order = append(t.order, name)
	}
	return p
}

// Summary is a point-in-time copy of the tracker.
type Summary struct {
	Hands     int
	Showdowns int
	Abandoned int
	Forfeited int
	MaxPot    int
	Players   []PlayerStats // seat order
}

func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Summary{
		Hands:     t.hands,
		Showdowns: t.showdowns,
		Abandoned: t.abandoned,
		Forfeited: t.forfeited,
		MaxPot:    t.maxPot,
	}
	for _, name := range t.order {
		p := *t.players[name]
		p.Values = append([]float64(nil), p.Values...)
		s.Players = append(s.Players, p)
	}
	return s
}

// Player returns the stats for name, if any hand included them.
func (s Summary) Player(name string) (PlayerStats, bool) {
	for _, p := range s.Players {
		if p.Name == name {
			return p, true
		}
	}
	return PlayerStats{}, false
}

// Validate checks that chips won and lost net out against forfeited pots.
func (s Summary) Validate() error {
	net := 0
	wins := 0
	for _, p := range s.Players {
		net += p.NetChips
		wins += p.Wins()
		if len(p.Values) != p.Hands {
			return fmt.Errorf("%s: %d values for %d hands", p.Name, len(p.Values), p.Hands)
		}
	}
	if net+s.Forfeited != 0 {
		return fmt.Errorf("ledger mismatch: net %d, forfeited %d", net, s.Forfeited)
	}
	if s.Hands-s.Abandoned > 0 && wins < s.Hands-s.Abandoned {
		return fmt.Errorf("%d wins recorded for %d settled hands", wins, s.Hands-s.Abandoned)
	}
	return nil
}
