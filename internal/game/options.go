package game

import (
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokernight/internal/evaluator"
	"github.com/lox/pokernight/internal/randutil"
	"github.com/lox/pokernight/internal/sessionid"
	"github.com/lox/pokernight/poker"
)

// Option configures an Engine during creation.
type Option func(*options)

// DeckSource returns the deck used for one hand. It is called once per hand.
type DeckSource func(rng *rand.Rand) *poker.Deck

// options holds all configuration for creating an engine.
type options struct {
	logger          *log.Logger
	clock           quartz.Clock
	rng             *rand.Rand
	deckSource      DeckSource
	evaluator       evaluator.Evaluator
	bus             EventBus
	think           ThinkTime
	humanRaise      int // 0 means two big blinds
	postBlinds      bool
	smallBlindIndex int
	sessionID       string
}

func defaultOptions() *options {
	return &options{
		logger:     log.New(io.Discard),
		clock:      quartz.NewReal(),
		deckSource: poker.NewDeck,
		evaluator:  evaluator.New(),
		think:      DefaultThinkTime,
	}
}

// WithLogger sets the logger. Engines are silent by default.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the clock used for bot thinking delays and event timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithRand sets the random source shared by shuffling and bot decisions.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithSeed is shorthand for WithRand(randutil.New(seed)).
func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = randutil.New(seed) }
}

// WithDeckSource replaces the per-hand deck. Tests use it to rig deals.
func WithDeckSource(src DeckSource) Option {
	return func(o *options) { o.deckSource = src }
}

// WithEvaluator replaces the hand evaluator.
func WithEvaluator(eval evaluator.Evaluator) Option {
	return func(o *options) { o.evaluator = eval }
}

// WithEventBus publishes events on an existing bus.
func WithEventBus(bus EventBus) Option {
	return func(o *options) { o.bus = bus }
}

// WithThinkTime sets the bot thinking delay range.
func WithThinkTime(t ThinkTime) Option {
	return func(o *options) { o.think = t }
}

// WithHumanRaise sets the fixed amount the human raises by.
func WithHumanRaise(amount int) Option {
	return func(o *options) { o.humanRaise = amount }
}

// WithBlindPosting makes the blind seats post half and one big blind at hand start.
func WithBlindPosting(enabled bool) Option {
	return func(o *options) { o.postBlinds = enabled }
}

// WithSmallBlindIndex sets where the small blind starts.
func WithSmallBlindIndex(i int) Option {
	return func(o *options) { o.smallBlindIndex = i }
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(o *options) { o.sessionID = id }
}

func (o *options) finish() {
	if o.rng == nil {
		o.rng = randutil.New(randutil.NewSeed())
	}
	if o.bus == nil {
		o.bus = NewEventBus()
	}
	if o.sessionID == "" {
		o.sessionID = sessionid.Generate()
	}
}
