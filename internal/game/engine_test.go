package game

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokernight/internal/evaluator"
	"github.com/lox/pokernight/poker"
)

func TestNewEngineValidation(t *testing.T) {
	t.Parallel()
	_, err := NewEngine("You", 0, 20)
	assert.Error(t, err)
	_, err = NewEngine("You", 1000, 0)
	assert.Error(t, err)

	e, err := NewEngine("", 1000, 20, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, "You", e.Snapshot().Seats[0].Name)
	assert.NotEmpty(t, e.ID())
}

func TestAddBotValidation(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)

	_, err := e.AddBot("Mystery", 500, Personality("shy"), 0.1)
	assert.ErrorIs(t, err, ErrUnknownPersonality)

	_, err = e.AddBot("Broke", 0, Balanced, 0.1)
	assert.Error(t, err)

	_, err = e.AddBot("Wild", 500, Balanced, 1.5)
	assert.Error(t, err)

	_, err = e.AddBot("Clyde", 500, Aggressive, 0.3)
	require.NoError(t, err)
	_, err = e.AddBot("Clyde", 500, Aggressive, 0.3)
	assert.Error(t, err, "duplicate names are rejected")
}

func TestTooManySeats(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)
	// 23 seats need 46 hole cards plus a five card board.
	for i := range 22 {
		_, err := e.AddBot(fmt.Sprintf("Bot%d", i), 100, Balanced, 0)
		require.NoError(t, err)
	}
	_, err := e.AddBot("OneTooMany", 100, Balanced, 0)
	assert.ErrorIs(t, err, ErrTooManySeats)
}

func TestPlayHandRequiresOpponents(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)
	_, err := e.PlayHand(context.Background())
	assert.ErrorIs(t, err, ErrNoOpponents)
}

func TestRosterFixedAfterFirstHand(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)
	_, err := e.AddBot("Inky", 500, Cautious, 0)
	require.NoError(t, err)
	newRecorder(e, Fold)

	_, err = e.PlayHand(context.Background())
	require.NoError(t, err)

	_, err = e.AddBot("Late", 500, Cautious, 0)
	assert.ErrorIs(t, err, ErrSessionStarted)
}

func TestHumanFoldsImmediately(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000, WithBlindPosting(true))
	_, err := e.AddBot("Pinky", 500, Random, 0.5)
	require.NoError(t, err)
	rec := newRecorder(e, Fold)

	res, err := e.PlayHand(context.Background())
	require.NoError(t, err)

	// Heads-up the small blind is first to act, so the human folds after posting.
	assert.Equal(t, WinFold, res.WinType)
	assert.Equal(t, 30, res.Pot)
	require.Len(t, res.Winners, 1)
	assert.Equal(t, "Pinky", res.Winners[0].Name)
	assert.Equal(t, 990, stackOf(e, 0))
	assert.Equal(t, 510, stackOf(e, 1))

	actions := eventsOf[PlayerActionEvent](rec)
	require.Len(t, actions, 1, "the bot never acts once it is the only contender")
	assert.Equal(t, Fold, actions[0].Action)
	assert.Empty(t, eventsOf[StreetChangeEvent](rec))
}

func TestFullHandDealsNineCards(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)
	_, err := e.AddBot("Clyde", 500, Aggressive, 0)
	require.NoError(t, err)
	rec := newRecorder(e, Call)

	res, err := e.PlayHand(context.Background())
	require.NoError(t, err)

	assert.Equal(t, WinShowdown, res.WinType)
	assert.Len(t, res.Community, 5)
	assert.Equal(t, 52-9, e.Snapshot().DeckRemaining)

	streets := eventsOf[StreetChangeEvent](rec)
	require.Len(t, streets, 3)
	assert.Equal(t, []Street{Flop, Turn, River}, []Street{streets[0].Street, streets[1].Street, streets[2].Street})
	assert.Len(t, streets[0].Community, 3)
	assert.Len(t, streets[2].Community, 5)
	assert.Len(t, eventsOf[ShowdownEvent](rec), 1)
}

func TestRiggedShowdownPaysStrongerHand(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000, WithDeckSource(riggedDeck("2c 7d As Ad Ah Ac Kd 9s 4h")))
	_, err := e.AddBot("Inky", 500, Cautious, 0)
	require.NoError(t, err)
	rec := newRecorder(e, Call)

	res, err := e.PlayHand(context.Background())
	require.NoError(t, err)

	assert.Equal(t, WinShowdown, res.WinType)
	assert.Equal(t, 160, res.Pot)
	require.Len(t, res.Winners, 1)
	assert.Equal(t, Winner{Seat: 1, Name: "Inky", Amount: 160, Description: res.Hands[0].Description}, res.Winners[0])
	assert.Equal(t, poker.FourOfAKind, res.Hands[0].Type)
	assert.Equal(t, 920, stackOf(e, 0))
	assert.Equal(t, 580, stackOf(e, 1))
	assert.Zero(t, e.Snapshot().Pot)

	for _, a := range eventsOf[PlayerActionEvent](rec) {
		assert.Equal(t, Call, a.Action, "%s on the %s", a.Name, a.Street)
	}
}

func TestTiedHandsSplitThePot(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000, WithDeckSource(riggedDeck("2c 3d 2h 3s Ah Kh Qd Jc Tc")))
	_, err := e.AddBot("Clyde", 500, Aggressive, 0)
	require.NoError(t, err)
	newRecorder(e, Call)

	res, err := e.PlayHand(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Winners, 2)
	assert.Equal(t, res.Pot, res.Winners[0].Amount+res.Winners[1].Amount)
	// The odd chip goes to the small blind, which is the human in the first hand.
	assert.Equal(t, 0, res.Winners[0].Seat)
	assert.Equal(t, res.Pot/2+res.Pot%2, res.Winners[0].Amount)
	assert.Equal(t, 1500, stackOf(e, 0)+stackOf(e, 1))
}

func TestAllInAndElimination(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000, WithDeckSource(riggedDeck("As Ad 2c 7d Ah Kc 9s 4h 3d")))
	_, err := e.AddBot("Packy", 30, Bluffer, 1)
	require.NoError(t, err)
	rec := newRecorder(e, Call)

	stacks, err := e.Run(context.Background())
	require.NoError(t, err)

	// Human calls four streets for 80, Packy shoves 30 and is skipped afterwards.
	assert.Equal(t, 1030, stacks[0].Stack)
	assert.Equal(t, 0, stacks[1].Stack)
	assert.Equal(t, Eliminated, stacks[1].Status)

	allIns := eventsOf[AllInEvent](rec)
	require.Len(t, allIns, 1)
	assert.Equal(t, "Packy", allIns[0].Name)

	var packyActions int
	for _, a := range eventsOf[PlayerActionEvent](rec) {
		if a.Seat == 1 {
			packyActions++
			assert.True(t, a.Bluff)
		}
	}
	assert.Equal(t, 1, packyActions)

	require.Len(t, eventsOf[EliminatedEvent](rec), 1)
	ends := eventsOf[SessionEndEvent](rec)
	require.Len(t, ends, 1)
	assert.Equal(t, 1, ends[0].HandsPlayed)
	assert.False(t, e.CanContinue())
}

func TestPlayOutOfTurn(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)
	_, err := e.AddBot("Kacky", 500, Balanced, 0.2)
	require.NoError(t, err)

	before := e.Snapshot()
	assert.ErrorIs(t, e.Play(Call), ErrOutOfTurn)
	assert.Equal(t, before, e.Snapshot())
}

func TestInvalidActionKeepsTurnPending(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)
	_, err := e.AddBot("Kacky", 500, Balanced, 0)
	require.NoError(t, err)
	rec := newRecorder(e, Fold, Action(9))

	_, err = e.PlayHand(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.playErrs, 1)
	assert.ErrorIs(t, rec.playErrs[0], ErrInvalidAction)
	actions := eventsOf[PlayerActionEvent](rec)
	require.NotEmpty(t, actions)
	assert.Equal(t, Fold, actions[0].Action, "the retry is applied, not the invalid action")
}

func TestHumanRaiseUnit(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000, WithHumanRaise(50))
	_, err := e.AddBot("Kacky", 500, Balanced, 0)
	require.NoError(t, err)
	rec := newRecorder(e, Fold, Raise)

	_, err = e.PlayHand(context.Background())
	require.NoError(t, err)

	actions := eventsOf[PlayerActionEvent](rec)
	require.NotEmpty(t, actions)
	assert.Equal(t, Raise, actions[0].Action)
	assert.Equal(t, 50, actions[0].Amount)
	assert.Equal(t, 50, actions[0].PotAfter)
}

func TestCancelAbandonsHand(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000, WithBlindPosting(true))
	_, err := e.AddBot("Blinky", 500, PairLover, 0.1)
	require.NoError(t, err)
	rec := newRecorder(e, Call)
	rec.silent = true

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := e.PlayHand(ctx)
		errc <- err
	}()

	require.Eventually(t, func() bool { return e.Snapshot().AwaitingHuman }, time.Second, time.Millisecond)
	cancel()

	err = <-errc
	assert.ErrorIs(t, err, ErrHandAbandoned)
	assert.ErrorIs(t, err, context.Canceled)

	snap := e.Snapshot()
	assert.False(t, snap.InHand)
	assert.False(t, snap.AwaitingHuman)
	assert.Equal(t, 990, snap.Seats[0].Stack, "blinds are not refunded")
	assert.Equal(t, 480, snap.Seats[1].Stack)
	assert.Zero(t, snap.Pot)

	ends := eventsOf[HandEndEvent](rec)
	require.Len(t, ends, 1)
	assert.Equal(t, WinAbandoned, ends[0].WinType)
	assert.Equal(t, 30, ends[0].Pot)

	assert.ErrorIs(t, e.Play(Call), ErrOutOfTurn)
}

func TestEndSessionMidHand(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)
	_, err := e.AddBot("Blinky", 500, PairLover, 0.1)
	require.NoError(t, err)
	rec := newRecorder(e, Call)
	rec.silent = true

	errc := make(chan error, 1)
	go func() {
		_, err := e.PlayHand(context.Background())
		errc <- err
	}()
	require.Eventually(t, func() bool { return e.Snapshot().AwaitingHuman }, time.Second, time.Millisecond)

	stacks := e.EndSession()
	require.Len(t, stacks, 2)
	assert.Equal(t, 1000, stacks[0].Stack)

	err = <-errc
	assert.ErrorIs(t, err, ErrHandAbandoned)
	assert.ErrorIs(t, err, ErrSessionOver)

	assert.Equal(t, stacks, e.EndSession(), "ending twice returns the same stacks")
	_, err = e.PlayHand(context.Background())
	assert.ErrorIs(t, err, ErrSessionOver)
	assert.ErrorIs(t, e.RequestNextHand(), ErrSessionOver)
}

func TestEventTimestampsUseClock(t *testing.T) {
	t.Parallel()
	clock := quartz.NewMock(t)
	e := newTestEngine(t, 1000, WithClock(clock))
	_, err := e.AddBot("Kacky", 500, Balanced, 0)
	require.NoError(t, err)
	rec := newRecorder(e, Fold)

	_, err = e.PlayHand(context.Background())
	require.NoError(t, err)

	events := rec.all()
	require.NotEmpty(t, events)
	for _, ev := range events {
		assert.True(t, ev.Timestamp().Equal(clock.Now()), "%s timestamp", ev.EventType())
	}
}

func TestDeckExhaustedOnFlopAbortsHand(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000, WithDeckSource(riggedDeck("2c 7d As Ad")))
	_, err := e.AddBot("Inky", 500, Cautious, 0)
	require.NoError(t, err)
	rec := newRecorder(e, Call)

	_, err = e.PlayHand(context.Background())
	require.ErrorIs(t, err, poker.ErrDeckExhausted)
	assert.NotErrorIs(t, err, ErrHandAbandoned)

	ends := eventsOf[HandEndEvent](rec)
	require.Len(t, ends, 1)
	assert.Equal(t, WinAbandoned, ends[0].WinType)
	assert.Equal(t, 40, ends[0].Pot)
	assert.Empty(t, eventsOf[StreetChangeEvent](rec))

	// Both preflop calls stay in the forfeited pot.
	snap := e.Snapshot()
	assert.Equal(t, 980, snap.Seats[0].Stack)
	assert.Equal(t, 480, snap.Seats[1].Stack)
	assert.Zero(t, snap.Pot)
	assert.False(t, snap.InHand)
	assert.Zero(t, snap.HandsPlayed)

	stacks, err := e.Run(context.Background())
	require.ErrorIs(t, err, poker.ErrDeckExhausted)
	assert.Equal(t, 960, stacks[0].Stack)
	assert.Len(t, eventsOf[SessionEndEvent](rec), 1)
}

func TestDeckExhaustedWhileDealing(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000, WithDeckSource(riggedDeck("2c 7d As")))
	_, err := e.AddBot("Inky", 500, Cautious, 0)
	require.NoError(t, err)
	rec := newRecorder(e, Call)

	_, err = e.PlayHand(context.Background())
	require.ErrorIs(t, err, poker.ErrDeckExhausted)

	snap := e.Snapshot()
	assert.Zero(t, snap.HandNumber)
	assert.False(t, snap.InHand)
	assert.Empty(t, snap.HumanHole)
	assert.Equal(t, 1500, snap.TotalChips())
	assert.Empty(t, rec.all(), "nothing is published for a hand that was never dealt")
}

// rejectingEvaluator fails on any seven-card set holding the given card.
type rejectingEvaluator struct {
	evaluator.Standard
	card poker.Card
}

func (r rejectingEvaluator) Evaluate(cards []poker.Card) (evaluator.Result, error) {
	if len(cards) == 7 && slices.Contains(cards, r.card) {
		return evaluator.Result{}, fmt.Errorf("%w: rejected %s", evaluator.ErrInvalidCards, r.card)
	}
	return r.Standard.Evaluate(cards)
}

func TestShowdownEvaluatorErrorAbortsHand(t *testing.T) {
	t.Parallel()
	eval := rejectingEvaluator{card: poker.MustParseCards("2c")[0]}
	e := newTestEngine(t, 1000,
		WithDeckSource(riggedDeck("2c 7d As Ad Ah Ac Kd 9s 4h")),
		WithEvaluator(eval))
	_, err := e.AddBot("Inky", 500, Cautious, 0)
	require.NoError(t, err)
	rec := newRecorder(e, Call)

	_, err = e.PlayHand(context.Background())
	require.ErrorIs(t, err, evaluator.ErrInvalidCards)

	assert.Empty(t, eventsOf[ShowdownEvent](rec))
	ends := eventsOf[HandEndEvent](rec)
	require.Len(t, ends, 1)
	assert.Equal(t, WinAbandoned, ends[0].WinType)
	assert.Equal(t, 160, ends[0].Pot)
	assert.Empty(t, ends[0].Winners)

	snap := e.Snapshot()
	assert.Equal(t, 920, snap.Seats[0].Stack)
	assert.Equal(t, 420, snap.Seats[1].Stack)
	assert.Zero(t, snap.Pot)
	assert.Zero(t, snap.HandsPlayed)
}

func TestBlindAllInIsAnnounced(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000, WithBlindPosting(true))
	_, err := e.AddBot("Packy", 15, Cautious, 0)
	require.NoError(t, err)
	rec := newRecorder(e, Call)

	_, err = e.PlayHand(context.Background())
	require.NoError(t, err)

	allIns := eventsOf[AllInEvent](rec)
	require.Len(t, allIns, 1)
	assert.Equal(t, AllInEvent{HandNumber: 1, Seat: 1, Name: "Packy", timestamp: allIns[0].timestamp}, allIns[0])

	// Announced with the deal, before anyone acts.
	events := rec.all()
	allInAt := slices.IndexFunc(events, func(ev GameEvent) bool { _, ok := ev.(AllInEvent); return ok })
	actionAt := slices.IndexFunc(events, func(ev GameEvent) bool { _, ok := ev.(PlayerActionEvent); return ok })
	require.NotEqual(t, -1, actionAt)
	assert.Less(t, allInAt, actionAt)
	assert.IsType(t, HandStartEvent{}, events[allInAt-1])

	for _, a := range eventsOf[PlayerActionEvent](rec) {
		assert.NotEqual(t, 1, a.Seat, "an all-in seat never acts")
	}
	assert.Equal(t, 1015, e.Snapshot().TotalChips())
}

func TestAcceptedActionAppliedBeforeAbandon(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)
	_, err := e.AddBot("Blinky", 500, PairLover, 0.1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := newRecorder(e, Call)
	rec.silent = true
	var playErr error
	rec.onEvent = func(ev GameEvent) {
		if _, ok := ev.(PlayerTurnEvent); ok {
			// Cancel first so the engine sees both the action and the cancellation.
			cancel()
			playErr = e.Play(Call)
		}
	}

	_, err = e.PlayHand(ctx)
	require.ErrorIs(t, err, ErrHandAbandoned)
	require.NoError(t, playErr)

	actions := eventsOf[PlayerActionEvent](rec)
	require.Len(t, actions, 1)
	assert.Equal(t, Human, actions[0].Kind)
	assert.Equal(t, Call, actions[0].Action)

	assert.Equal(t, 980, stackOf(e, 0))
	assert.Equal(t, 500, stackOf(e, 1))
	ends := eventsOf[HandEndEvent](rec)
	require.Len(t, ends, 1)
	assert.Equal(t, 20, ends[0].Pot)
}
