package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmallBlindRotates(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 5000, WithSmallBlindIndex(1))
	for _, name := range []string{"Inky", "Kacky"} {
		_, err := e.AddBot(name, 5000, Cautious, 0)
		require.NoError(t, err)
	}
	rec := newRecorder(e, Call)

	const hands = 5
	for range hands {
		_, err := e.PlayHand(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, (1+hands)%3, e.Snapshot().SmallBlindIndex)

	starts := eventsOf[HandStartEvent](rec)
	require.Len(t, starts, hands)
	for i, s := range starts {
		sb := (1 + i) % 3
		assert.Equal(t, sb, s.SmallBlindSeat, "hand %d", s.HandNumber)
		assert.Equal(t, (sb+1)%3, s.BigBlindSeat)
		assert.Equal(t, (sb+2)%3, s.FirstToAct)
	}
}

func TestBlindsSkipEliminatedSeats(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)
	_, err := e.AddBot("Gone", 100, Balanced, 0)
	require.NoError(t, err)
	_, err = e.AddBot("Kacky", 500, Balanced, 0)
	require.NoError(t, err)

	e.seats[1].Stack = 0
	e.seats[1].Status = Eliminated
	e.smallBlindIndex = 1
	newRecorder(e, Fold)

	ev, err := e.startHand()
	require.NoError(t, err)
	assert.Equal(t, 2, ev.SmallBlindSeat)
	assert.Equal(t, 0, ev.BigBlindSeat)
	assert.Equal(t, 2, ev.FirstToAct)
	assert.Empty(t, e.seats[1].HoleCards)
}

// conservationChecker asserts chip invariants after every action.
type conservationChecker struct {
	t      *testing.T
	e      *Engine
	total  int
	folded map[int]bool
}

func (c *conservationChecker) OnEvent(ev GameEvent) {
	switch ev := ev.(type) {
	case HandStartEvent:
		c.folded = map[int]bool{}
		snap := c.e.Snapshot()
		c.total = snap.TotalChips()
	case PlayerActionEvent:
		assert.False(c.t, c.folded[ev.Seat], "%s acted after folding", ev.Name)
		if ev.Action == Fold {
			c.folded[ev.Seat] = true
		}
		assert.Equal(c.t, c.total, c.e.Snapshot().TotalChips(), "chips changed on %s by %s", ev.Action, ev.Name)
	case HandEndEvent:
		sum := 0
		for _, s := range ev.Stacks {
			sum += s.Stack
		}
		assert.Equal(c.t, c.total, sum)
	}
}

func TestChipConservationOverManyHands(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000, WithSeed(99), WithBlindPosting(true))
	roster := []struct {
		name        string
		personality Personality
		bluff       float64
	}{
		{"Blinky", PairLover, 0.1},
		{"Pinky", Random, 0.5},
		{"Inky", Cautious, 0.2},
		{"Clyde", Aggressive, 0.3},
		{"Packy", Bluffer, 1.0},
		{"Kacky", Balanced, 0.2},
	}
	for _, r := range roster {
		_, err := e.AddBot(r.name, 500, r.personality, r.bluff)
		require.NoError(t, err)
	}
	e.Events().Subscribe(&conservationChecker{t: t, e: e})
	newRecorder(e, Call, Raise, Call, Fold, Call, Raise)

	start := e.Snapshot().TotalChips()
	played := 0
	for range 40 {
		_, err := e.PlayHand(context.Background())
		if errors.Is(err, ErrSessionOver) {
			break
		}
		require.NoError(t, err)
		played++
	}
	require.Positive(t, played)
	assert.Equal(t, start, e.Snapshot().TotalChips())

	for _, s := range e.Snapshot().Seats {
		assert.GreaterOrEqual(t, s.Stack, 0)
		if s.Stack == 0 {
			assert.Equal(t, Eliminated, s.Status)
		}
	}
}

func TestRunWaitsForNextHandRequests(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)
	_, err := e.AddBot("Kacky", 500, Balanced, 0)
	require.NoError(t, err)
	rec := newRecorder(e, Fold)
	rec.onEvent = func(ev GameEvent) {
		end, ok := ev.(HandEndEvent)
		if !ok {
			return
		}
		if end.HandNumber < 3 {
			assert.NoError(t, e.RequestNextHand())
			return
		}
		e.EndSession()
	}

	stacks, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, stacks, 2)

	assert.Len(t, eventsOf[HandStartEvent](rec), 3)
	ends := eventsOf[SessionEndEvent](rec)
	require.Len(t, ends, 1)
	assert.Equal(t, 3, ends[0].HandsPlayed)
	assert.Equal(t, stacks, ends[0].Stacks)
}

func TestRequestNextHandDuringHand(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)
	_, err := e.AddBot("Kacky", 500, Balanced, 0)
	require.NoError(t, err)

	var requestErr error
	rec := newRecorder(e, Fold)
	rec.onEvent = func(ev GameEvent) {
		if _, ok := ev.(PlayerTurnEvent); ok && requestErr == nil {
			requestErr = e.RequestNextHand()
		}
	}

	_, err = e.PlayHand(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, requestErr, ErrHandInProgress)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t, 1000)
	_, err := e.AddBot("Kacky", 500, Balanced, 0)
	require.NoError(t, err)
	newRecorder(e, Fold)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := e.Run(ctx)
		done <- err
	}()

	// After the first hand Run idles until asked for another.
	require.Eventually(t, func() bool {
		s := e.Snapshot()
		return s.HandsPlayed == 1 && !s.InHand
	}, time.Second, time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.True(t, e.Snapshot().Over)
}
