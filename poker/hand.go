package poker

import "math/bits"

// Hand is a set of cards, one bit per card.
type Hand uint64

// HandType enumerates the categories of poker hands ordered from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable hand category.
func (t HandType) String() string {
	switch t {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// NewHand creates a hand from multiple cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand.
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard checks if the hand contains a specific card.
func (h Hand) HasCard(c Card) bool {
	return h&Hand(c) != 0
}

// CountCards returns the number of cards in the hand.
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// SuitMask returns the ranks held in one suit as a 13-bit mask.
func (h Hand) SuitMask(suit uint8) uint16 {
	return uint16(h>>(suit*13)) & 0x1FFF
}

// Cards expands the hand back into individual cards, lowest bit first.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.CountCards())
	for rest := uint64(h); rest != 0; rest &= rest - 1 {
		cards = append(cards, Card(rest&-rest))
	}
	return cards
}

// Classify returns the best category available in the hand. It works for any
// number of cards, so two hole cards classify as Pair or HighCard.
func (h Hand) Classify() HandType {
	var suitMasks [4]uint16
	var rankMask uint16
	for suit := range uint8(4) {
		suitMasks[suit] = h.SuitMask(suit)
		rankMask |= suitMasks[suit]
	}

	flush := false
	for _, m := range suitMasks {
		if bits.OnesCount16(m) >= 5 {
			if hasStraight(m) {
				return StraightFlush
			}
			flush = true
		}
	}

	s0, s1, s2, s3 := suitMasks[0], suitMasks[1], suitMasks[2], suitMasks[3]
	quads := s0 & s1 & s2 & s3
	trips := ((s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)) &^ quads
	pairs := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ (trips | quads)

	switch {
	case quads != 0:
		return FourOfAKind
	case trips != 0 && (pairs != 0 || bits.OnesCount16(trips) > 1):
		return FullHouse
	case flush:
		return Flush
	case hasStraight(rankMask):
		return Straight
	case trips != 0:
		return ThreeOfAKind
	case bits.OnesCount16(pairs) >= 2:
		return TwoPair
	case pairs != 0:
		return Pair
	default:
		return HighCard
	}
}

// hasStraight reports whether five consecutive ranks are present, counting the wheel.
func hasStraight(mask uint16) bool {
	const wheel = 0x100F // A-2-3-4-5
	if mask&wheel == wheel {
		return true
	}
	return mask&(mask>>1)&(mask>>2)&(mask>>3)&(mask>>4) != 0
}
