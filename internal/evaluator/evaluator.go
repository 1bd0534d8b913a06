// Package evaluator ranks poker hands for bot heuristics and showdowns.
//
// Coarse categories come from poker.Hand.Classify and work from two cards
// upwards. Comparable scores and descriptions come from
// github.com/paulhankin/poker once at least five cards are known.
package evaluator

import (
	"errors"
	"fmt"

	ph "github.com/paulhankin/poker"

	"github.com/lox/pokernight/poker"
)

// ErrInvalidCards is returned for duplicate, malformed or unsupported card sets.
var ErrInvalidCards = errors.New("invalid cards")

// Result is the evaluation of one set of cards.
type Result struct {
	Type        poker.HandType
	Score       int16 // higher is better; zero when Scored is false
	Scored      bool  // false with fewer than five cards
	Description string
}

// Strength is the 1-based category rank used by bot thresholds:
// 1 high card, 2 pair, 3 two pair ... 9 straight flush.
func (r Result) Strength() int {
	return int(r.Type) + 1
}

// Beats reports whether r outranks other. Unscored results fall back to category.
func (r Result) Beats(other Result) bool {
	if r.Scored && other.Scored {
		return r.Score > other.Score
	}
	return r.Type > other.Type
}

// Evaluator ranks a set of 2 to 7 cards.
type Evaluator interface {
	Evaluate(cards []poker.Card) (Result, error)
}

// Standard is the default Evaluator.
type Standard struct{}

// New returns the default evaluator.
func New() Standard {
	return Standard{}
}

// Evaluate classifies cards and, with five or more, scores and describes the best five.
func (Standard) Evaluate(cards []poker.Card) (Result, error) {
	if len(cards) < 2 || len(cards) > 7 {
		return Result{}, fmt.Errorf("%w: %d cards", ErrInvalidCards, len(cards))
	}
	for _, c := range cards {
		if !c.Valid() {
			return Result{}, fmt.Errorf("%w: malformed card", ErrInvalidCards)
		}
	}
	hand := poker.NewHand(cards...)
	if hand.CountCards() != len(cards) {
		return Result{}, fmt.Errorf("%w: duplicate card in %s", ErrInvalidCards, poker.FormatCards(cards))
	}

	res := Result{Type: hand.Classify()}
	if len(cards) < 5 {
		res.Description = res.Type.String()
		return res, nil
	}

	converted := make([]ph.Card, len(cards))
	for i, c := range cards {
		pc, err := toLibrary(c)
		if err != nil {
			return Result{}, err
		}
		converted[i] = pc
	}

	score, best := scoreBest(converted)
	desc, err := ph.Describe(best)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidCards, err)
	}

	res.Score = score
	res.Scored = true
	res.Description = desc
	return res, nil
}

// scoreBest returns the score of the hand and the cards to describe.
// Six cards are scored as their best five-card subset.
func scoreBest(cards []ph.Card) (int16, []ph.Card) {
	switch len(cards) {
	case 7:
		var a7 [7]ph.Card
		copy(a7[:], cards)
		return ph.Eval7(&a7), cards
	case 5:
		var a5 [5]ph.Card
		copy(a5[:], cards)
		return ph.Eval5(&a5), cards
	}

	var best int16
	var bestFive []ph.Card
	for skip := range cards {
		var five [5]ph.Card
		n := 0
		for i, c := range cards {
			if i != skip {
				five[n] = c
				n++
			}
		}
		if score := ph.Eval5(&five); bestFive == nil || score > best {
			best = score
			bestFive = five[:]
		}
	}
	return best, bestFive
}

// toLibrary converts a card to the library's representation (ace is rank 1).
func toLibrary(c poker.Card) (ph.Card, error) {
	var suit ph.Suit
	switch c.Suit() {
	case poker.Clubs:
		suit = ph.Club
	case poker.Diamonds:
		suit = ph.Diamond
	case poker.Hearts:
		suit = ph.Heart
	default:
		suit = ph.Spade
	}

	rank := ph.Rank(c.Rank() + 2)
	if c.Rank() == poker.Ace {
		rank = ph.Rank(1)
	}

	card, err := ph.MakeCard(suit, rank)
	if err != nil {
		var zero ph.Card
		return zero, fmt.Errorf("%w: %s: %v", ErrInvalidCards, c.Code(), err)
	}
	return card, nil
}
