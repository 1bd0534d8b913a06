package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokernight/internal/evaluator"
	"github.com/lox/pokernight/poker"
)

// historySize bounds how many observed actions a bot remembers.
const historySize = 5

// ThinkTime is the range a bot's thinking delay is drawn from. A zero range
// makes bots decide immediately.
type ThinkTime struct {
	Min time.Duration
	Max time.Duration
}

// DefaultThinkTime matches the pace of a live table.
var DefaultThinkTime = ThinkTime{Min: time.Second, Max: 3 * time.Second}

func (t ThinkTime) draw(rng *rand.Rand) time.Duration {
	if t.Max <= t.Min {
		return max(t.Min, 0)
	}
	return t.Min + time.Duration(rng.Int64N(int64(t.Max-t.Min)+1))
}

// View is what a bot may see when deciding.
type View struct {
	Street    Street
	Pot       int
	BigBlind  int
	Community []poker.Card
}

// Decision is a bot's chosen action. Amount is only meaningful for raises
// and is already capped at the bot's stack.
type Decision struct {
	Action Action
	Amount int
	// Bluff is presentational: it changes narration, not the amount paid.
	Bluff bool
	Delay time.Duration
}

// Bot is the decision policy attached to a computer seat.
type Bot struct {
	Personality Personality
	BluffLevel  float64

	seat      *Participant
	history   []Action
	lastDelay time.Duration

	eval   evaluator.Evaluator
	clock  quartz.Clock
	rng    *rand.Rand
	think  ThinkTime
	logger *log.Logger
}

func newBot(seat *Participant, personality Personality, bluff float64, o *options) *Bot {
	b := &Bot{
		Personality: personality,
		BluffLevel:  bluff,
		seat:        seat,
		history:     make([]Action, 0, historySize),
		eval:        o.evaluator,
		clock:       o.clock,
		rng:         o.rng,
		think:       o.think,
		logger:      o.logger.WithPrefix("bot").With("name", seat.Name, "personality", personality),
	}
	seat.bot = b
	return b
}

// Name is the seat name of this bot.
func (b *Bot) Name() string {
	return b.seat.Name
}

// History returns the remembered actions, oldest first.
func (b *Bot) History() []Action {
	return slices.Clone(b.history)
}

// Observe records an action seen at the table, including the bot's own.
func (b *Bot) Observe(a Action) {
	if len(b.history) == historySize {
		copy(b.history, b.history[1:])
		b.history = b.history[:historySize-1]
	}
	b.history = append(b.history, a)
}

// recentRaises counts raises among the last three observed actions.
func (b *Bot) recentRaises() int {
	n := 0
	for _, a := range b.history[max(len(b.history)-3, 0):] {
		if a == Raise {
			n++
		}
	}
	return n
}

// Decide waits out the thinking delay and picks an action for the current street.
func (b *Bot) Decide(ctx context.Context, view View) (Decision, error) {
	delay := b.think.draw(b.rng)
	if err := b.wait(ctx, delay); err != nil {
		return Decision{}, err
	}
	b.lastDelay = delay

	p := b.seat
	if !p.canAct() {
		return Decision{Action: Fold, Delay: delay}, nil
	}

	cards := append(slices.Clone(p.HoleCards), view.Community...)
	res, err := b.eval.Evaluate(cards)
	if err != nil {
		return Decision{}, fmt.Errorf("evaluate %s: %w", p.Name, err)
	}
	strength := res.Strength()
	potFactor := float64(p.Stack) / float64(max(view.Pot, 1))

	doBluff := b.rng.Float64() < b.BluffLevel
	if b.recentRaises() >= 2 {
		doBluff = false
	}

	bb := view.BigBlind
	d := Decision{Action: Fold, Delay: delay}
	raise := func(amount int) {
		d.Action = Raise
		d.Amount = min(amount, p.Stack)
	}

	switch b.Personality {
	case Aggressive:
		if strength >= 2 || potFactor > 2 {
			amount := view.Pot
			if amount == 0 {
				amount = 2 * bb
			}
			raise(amount)
		} else {
			d.Action = Call
		}
	case Cautious:
		switch {
		case strength >= 5 && potFactor <= 2:
			raise(2 * bb)
		case strength >= 2 || potFactor < 1:
			d.Action = Call
		}
	case PairLover:
		switch {
		case len(p.HoleCards) == 2 && p.HoleCards[0].Rank() == p.HoleCards[1].Rank():
			raise(3 * bb)
		case strength >= 2:
			d.Action = Call
		}
	case Random:
		switch Action(b.rng.IntN(3)) {
		case Call:
			d.Action = Call
		case Raise:
			raise(bb * (1 + b.rng.IntN(3)))
		}
	case Balanced:
		switch {
		case strength >= 5:
			raise(2 * bb)
		case strength >= 2:
			d.Action = Call
		}
	case Bluffer:
		raise(bb * (2 + b.rng.IntN(3)))
		doBluff = true
	}

	d.Bluff = doBluff && d.Action != Fold
	b.logger.Debug("Decided",
		"street", view.Street,
		"strength", strength,
		"potFactor", potFactor,
		"action", d.Action,
		"amount", d.Amount,
		"bluff", d.Bluff,
		"delay", delay)
	return d, nil
}

func (b *Bot) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	fired := make(chan struct{})
	timer := b.clock.AfterFunc(d, func() {
		close(fired)
	}, "bot", "think")
	defer timer.Stop()

	select {
	case <-fired:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Narrate describes a decision the way a table commentator would. The tone
// follows how long the bot took to think.
func (b *Bot) Narrate(d Decision) string {
	mood := "confidently"
	switch {
	case b.lastDelay >= 2500*time.Millisecond:
		mood = "after a long hesitation"
	case b.lastDelay >= 1500*time.Millisecond:
		mood = "after thinking for a moment"
	}

	name := b.seat.Name
	switch d.Action {
	case Fold:
		return fmt.Sprintf("%s folds %s.", name, mood)
	case Call:
		return fmt.Sprintf("%s calls %s.", name, mood)
	case Raise:
		if d.Bluff {
			return fmt.Sprintf("%s shoves %d chips forward %s. Is that a bluff?", name, d.Amount, mood)
		}
		return fmt.Sprintf("%s raises %d %s.", name, d.Amount, mood)
	}
	return fmt.Sprintf("%s does something odd.", name)
}
