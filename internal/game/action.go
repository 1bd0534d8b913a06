package game

import (
	"fmt"
	"strings"
)

// Street represents the betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	if s < Preflop || s > Showdown {
		return "unknown"
	}
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// communityCards is how many board cards are revealed when the street opens.
func (s Street) communityCards() int {
	switch s {
	case Flop:
		return 3
	case Turn, River:
		return 1
	default:
		return 0
	}
}

// bettingStreets are played in order; showdown follows the river.
var bettingStreets = [...]Street{Preflop, Flop, Turn, River}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Call
	Raise
)

func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return [...]string{"fold", "call", "raise"}[a]
}

// Valid reports whether a is one of fold, call or raise.
func (a Action) Valid() bool {
	return a >= Fold && a <= Raise
}

// ParseAction parses "fold", "call" or "raise" (case-insensitive).
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold", "f":
		return Fold, nil
	case "call", "c":
		return Call, nil
	case "raise", "r":
		return Raise, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

// Status is a participant's standing in the session.
type Status int

const (
	Active Status = iota
	Folded
	Eliminated
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Folded:
		return "folded"
	case Eliminated:
		return "eliminated"
	default:
		return "unknown"
	}
}

// Kind distinguishes the human seat from bots.
type Kind int

const (
	Human Kind = iota
	Computer
)

func (k Kind) String() string {
	if k == Human {
		return "human"
	}
	return "bot"
}
