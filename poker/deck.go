package poker

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrDeckExhausted is returned when more cards are requested than remain.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck represents a standard 52-card deck consumed from the front.
type Deck struct {
	cards []Card
	next  int
	rng   *rand.Rand // nil for ordered decks
}

// NewDeck creates a shuffled 52-card deck using rng.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("rng is required for deck creation")
	}
	d := &Deck{cards: FullDeck(), rng: rng}
	d.Shuffle()
	return d
}

// NewOrderedDeck creates a deck that deals exactly the given cards in order.
// Used to rig deals in tests and replays; it is never shuffled.
func NewOrderedDeck(cards ...Card) *Deck {
	own := make([]Card, len(cards))
	copy(own, cards)
	return &Deck{cards: own}
}

// FullDeck returns the 52 cards in suit-major order.
func FullDeck() []Card {
	cards := make([]Card, 0, 52)
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// Shuffle restores every card to the deck and shuffles using Fisher-Yates.
// Ordered decks are only rewound.
func (d *Deck) Shuffle() {
	d.next = 0
	if d.rng == nil {
		return
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the next n cards.
func (d *Deck) Draw(n int) ([]Card, error) {
	if n < 0 || d.next+n > len(d.cards) {
		return nil, fmt.Errorf("draw %d with %d remaining: %w", n, d.Remaining(), ErrDeckExhausted)
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
