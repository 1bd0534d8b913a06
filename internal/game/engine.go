package game

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokernight/internal/evaluator"
	"github.com/lox/pokernight/poker"
)

// deckSize bounds the roster: every seat takes two hole cards and the board five.
const deckSize = 52

// Engine runs a session between one human and a roster of bots.
//
// PlayHand (or Run) drives the table on one goroutine. Play, RequestNextHand,
// EndSession and Snapshot are safe to call from any other goroutine.
type Engine struct {
	mu sync.Mutex

	id         string
	logger     *log.Logger
	clock      quartz.Clock
	rng        *rand.Rand
	eval       evaluator.Evaluator
	bus        EventBus
	deckSource DeckSource
	opts       *options

	bigBlind   int
	humanRaise int
	postBlinds bool

	seats []*Participant
	bots  []*Bot

	// Current hand.
	deck       *poker.Deck
	pot        int
	community  []poker.Card
	street     Street
	handNumber int
	inHand     bool
	sbSeat     int
	bbSeat     int
	firstSeat  int

	smallBlindIndex int
	handsPlayed     int
	started         bool
	chipTotal       int
	forfeited       int

	humanTurn chan Action // non-nil while the engine waits on the human
	nextHand  chan struct{}
	done      chan struct{}
	over      bool
	endOnce   sync.Once
	finalOnce sync.Once
}

// NewEngine creates a session for one human player. Bots are added with AddBot
// before the first hand.
func NewEngine(humanName string, stack, bigBlind int, opts ...Option) (*Engine, error) {
	if stack <= 0 {
		return nil, fmt.Errorf("human stack must be positive, got %d", stack)
	}
	if bigBlind <= 0 {
		return nil, fmt.Errorf("big blind must be positive, got %d", bigBlind)
	}
	if humanName == "" {
		humanName = "You"
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.finish()

	humanRaise := o.humanRaise
	if humanRaise <= 0 {
		humanRaise = 2 * bigBlind
	}

	e := &Engine{
		id:              o.sessionID,
		logger:          o.logger.WithPrefix("engine").With("session", o.sessionID),
		clock:           o.clock,
		rng:             o.rng,
		eval:            o.evaluator,
		bus:             o.bus,
		deckSource:      o.deckSource,
		opts:            o,
		bigBlind:        bigBlind,
		humanRaise:      humanRaise,
		postBlinds:      o.postBlinds,
		smallBlindIndex: max(o.smallBlindIndex, 0),
		nextHand:        make(chan struct{}, 1),
		done:            make(chan struct{}),
	}
	e.seats = []*Participant{{Seat: 0, Name: humanName, Kind: Human, Stack: stack}}
	return e, nil
}

// AddBot seats a bot after the existing participants.
func (e *Engine) AddBot(name string, stack int, personality Personality, bluff float64) (*Bot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.started:
		return nil, ErrSessionStarted
	case !personality.Valid():
		return nil, fmt.Errorf("%w: %q", ErrUnknownPersonality, personality)
	case stack <= 0:
		return nil, fmt.Errorf("bot %s: stack must be positive, got %d", name, stack)
	case bluff < 0 || bluff > 1:
		return nil, fmt.Errorf("bot %s: bluff level %.2f outside [0, 1]", name, bluff)
	case 2*(len(e.seats)+1)+5 > deckSize:
		return nil, fmt.Errorf("%w: %d seats", ErrTooManySeats, len(e.seats)+1)
	}
	for _, p := range e.seats {
		if p.Name == name {
			return nil, fmt.Errorf("duplicate seat name %q", name)
		}
	}

	p := &Participant{Seat: len(e.seats), Name: name, Kind: Computer, Stack: stack}
	bot := newBot(p, personality, bluff, e.opts)
	e.seats = append(e.seats, p)
	e.bots = append(e.bots, bot)

	e.logger.Debug("Bot seated", "name", name, "personality", personality, "stack", stack, "bluff", bluff)
	return bot, nil
}

// ID returns the session ID.
func (e *Engine) ID() string {
	return e.id
}

// Events returns the bus events are published on.
func (e *Engine) Events() EventBus {
	return e.bus
}

// BigBlind returns the session's big blind.
func (e *Engine) BigBlind() int {
	return e.bigBlind
}

// Play submits the human's action for the pending turn. A nil error means the
// action was accepted. An accepted action is applied even if the hand is
// abandoned straight after, unless the session has already ended.
func (e *Engine) Play(a Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.humanTurn == nil {
		return ErrOutOfTurn
	}
	if !a.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidAction, a)
	}
	// Buffered with room for exactly this send.
	e.humanTurn <- a
	e.humanTurn = nil
	return nil
}

// Snapshot is a consistent copy of the table for hosts.
type Snapshot struct {
	SessionID       string
	HandNumber      int
	HandsPlayed     int
	InHand          bool
	Street          Street
	Pot             int
	BigBlind        int
	Community       []poker.Card
	HumanHole       []poker.Card
	SmallBlindIndex int
	DeckRemaining   int
	AwaitingHuman   bool
	Over            bool
	Seats           []SeatView
}

// TotalChips is the chips on the table: every stack plus the pot.
func (s Snapshot) TotalChips() int {
	total := s.Pot
	for _, seat := range s.Seats {
		total += seat.Stack
	}
	return total
}

// Snapshot returns the current table state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		SessionID:       e.id,
		HandNumber:      e.handNumber,
		HandsPlayed:     e.handsPlayed,
		InHand:          e.inHand,
		Street:          e.street,
		Pot:             e.pot,
		BigBlind:        e.bigBlind,
		Community:       cloneCards(e.community),
		HumanHole:       cloneCards(e.seats[0].HoleCards),
		SmallBlindIndex: e.smallBlindIndex,
		AwaitingHuman:   e.humanTurn != nil,
		Over:            e.over,
	}
	if e.deck != nil {
		s.DeckRemaining = e.deck.Remaining()
	}
	for _, p := range e.seats {
		s.Seats = append(s.Seats, p.view())
	}
	return s
}

func (e *Engine) now() time.Time {
	return e.clock.Now()
}

func (e *Engine) publish(ev GameEvent) {
	e.bus.Publish(ev)
}
