package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Card is a single playing card stored as one bit of a uint64.
// Layout: [13 spades][13 hearts][13 diamonds][13 clubs], deuce in the lowest bit of each suit.
type Card uint64

// Suit constants
const (
	Clubs uint8 = iota
	Diamonds
	Hearts
	Spades
)

// Rank constants (0-12 for 2-A)
const (
	Two uint8 = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const (
	rankChars   = "23456789TJQKA"
	suitChars   = "cdhs"
	invalidCard = "??"
)

var suitSymbols = [...]string{"♣", "♦", "♥", "♠"}

// NewCard creates a card from rank (0-12) and suit (0-3).
func NewCard(rank, suit uint8) Card {
	return Card(1) << (suit*13 + rank)
}

// index returns the bit position (0-51), or 255 for the zero card.
func (c Card) index() uint8 {
	if c == 0 || bits.OnesCount64(uint64(c)) != 1 {
		return 255
	}
	return uint8(bits.TrailingZeros64(uint64(c)))
}

// Valid reports whether c holds exactly one of the 52 cards.
func (c Card) Valid() bool {
	return c.index() < 52
}

// Rank returns the rank of the card (0-12).
func (c Card) Rank() uint8 {
	if !c.Valid() {
		return 255
	}
	return c.index() % 13
}

// Suit returns the suit of the card (0-3).
func (c Card) Suit() uint8 {
	if !c.Valid() {
		return 255
	}
	return c.index() / 13
}

// Code returns the two character form used by ParseCard, e.g. "As" or "Td".
func (c Card) Code() string {
	if !c.Valid() {
		return invalidCard
	}
	return string(rankChars[c.Rank()]) + string(suitChars[c.Suit()])
}

// String renders the card with a suit symbol, e.g. "A♠" or "10♥".
func (c Card) String() string {
	if !c.Valid() {
		return invalidCard
	}
	rank := string(rankChars[c.Rank()])
	if c.Rank() == Ten {
		rank = "10"
	}
	return rank + suitSymbols[c.Suit()]
}

// ParseCard parses "As", "td" or "10h" into a Card.
func ParseCard(s string) (Card, error) {
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card string: %q", s)
	}

	rank := strings.IndexByte(rankChars, upper(s[0]))
	if rank < 0 {
		return 0, fmt.Errorf("invalid rank: %c", s[0])
	}
	suit := strings.IndexByte(suitChars, lower(s[1]))
	if suit < 0 {
		return 0, fmt.Errorf("invalid suit: %c", s[1])
	}
	return NewCard(uint8(rank), uint8(suit)), nil
}

// MustParseCards parses space separated cards and panics on error. Intended for tests and fixtures.
func MustParseCards(s string) []Card {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		cards = append(cards, c)
	}
	return cards
}

// FormatCards joins cards with ", " for narration.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
