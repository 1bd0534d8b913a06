package game

import (
	"io"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokernight/poker"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// newTestEngine builds an engine with instant bots, a mock clock and a fixed seed.
func newTestEngine(t *testing.T, stack int, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithSeed(1),
		WithClock(quartz.NewMock(t)),
		WithThinkTime(ThinkTime{}),
		WithLogger(quietLogger()),
		WithSessionID("test-session"),
	}
	e, err := NewEngine("You", stack, 20, append(base, opts...)...)
	require.NoError(t, err)
	return e
}

// riggedDeck deals exactly the given cards, human first.
func riggedDeck(cards string) DeckSource {
	parsed := poker.MustParseCards(cards)
	return func(*rand.Rand) *poker.Deck {
		return poker.NewOrderedDeck(parsed...)
	}
}

// tableRecorder captures events and answers human turns from a script.
type tableRecorder struct {
	e        *Engine
	script   []Action
	fallback Action
	silent   bool // never answer turns

	// onEvent runs after the event is recorded.
	onEvent func(GameEvent)

	mu       sync.Mutex
	events   []GameEvent
	playErrs []error
}

func newRecorder(e *Engine, fallback Action, script ...Action) *tableRecorder {
	r := &tableRecorder{e: e, fallback: fallback, script: script}
	e.Events().Subscribe(r)
	return r
}

func (r *tableRecorder) OnEvent(ev GameEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	_, turn := ev.(PlayerTurnEvent)
	next := r.fallback
	if turn && len(r.script) > 0 {
		next = r.script[0]
		r.script = r.script[1:]
	}
	hook := r.onEvent
	r.mu.Unlock()

	if turn && !r.silent {
		if err := r.e.Play(next); err != nil {
			r.mu.Lock()
			r.playErrs = append(r.playErrs, err)
			r.mu.Unlock()
			_ = r.e.Play(r.fallback)
		}
	}
	if hook != nil {
		hook(ev)
	}
}

func (r *tableRecorder) all() []GameEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]GameEvent(nil), r.events...)
}

func eventsOf[T GameEvent](r *tableRecorder) []T {
	var out []T
	for _, ev := range r.all() {
		if typed, ok := ev.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

func stackOf(e *Engine, seat int) int {
	return e.Snapshot().Seats[seat].Stack
}
