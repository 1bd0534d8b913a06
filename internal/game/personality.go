package game

import (
	"fmt"
	"strings"
)

// Personality names a bot strategy profile.
type Personality string

const (
	Aggressive Personality = "aggressive"
	Cautious   Personality = "cautious"
	PairLover  Personality = "pairlover"
	Random     Personality = "random"
	Balanced   Personality = "balanced"
	Bluffer    Personality = "bluffer"
)

// Personalities lists the supported profiles.
func Personalities() []Personality {
	return []Personality{Aggressive, Cautious, PairLover, Random, Balanced, Bluffer}
}

// Valid reports whether p is a supported profile.
func (p Personality) Valid() bool {
	for _, known := range Personalities() {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePersonality accepts profile names case-insensitively. "pairhunter" is
// an alias of pairlover.
func ParsePersonality(s string) (Personality, error) {
	p := Personality(strings.ToLower(strings.TrimSpace(s)))
	if p == "pairhunter" {
		p = PairLover
	}
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPersonality, s)
	}
	return p, nil
}
