package game

import (
	"slices"
	"sync"
	"time"

	"github.com/lox/pokernight/poker"
)

// EventType represents a game event type with type safety
type EventType string

const (
	EventTypeHandStart    EventType = "hand_start"
	EventTypeStreetChange EventType = "street_change"
	EventTypePlayerTurn   EventType = "player_turn"
	EventTypePlayerAction EventType = "player_action"
	EventTypeAllIn        EventType = "all_in"
	EventTypeEliminated   EventType = "eliminated"
	EventTypeShowdown     EventType = "showdown"
	EventTypeHandEnd      EventType = "hand_end"
	EventTypeSessionEnd   EventType = "session_end"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a session
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// WinType says how a hand was decided.
type WinType string

const (
	WinShowdown  WinType = "showdown"
	WinFold      WinType = "fold"
	WinAbandoned WinType = "abandoned"
)

// HandStartEvent is published once hole cards are dealt.
type HandStartEvent struct {
	SessionID      string
	HandNumber     int
	SmallBlindSeat int
	BigBlindSeat   int
	FirstToAct     int
	BigBlind       int
	// InitialPot is non-zero only when blinds are posted.
	InitialPot int
	Seats      []SeatView
	HumanHole  []poker.Card
	timestamp  time.Time
}

func (e HandStartEvent) EventType() EventType { return EventTypeHandStart }
func (e HandStartEvent) Timestamp() time.Time { return e.timestamp }

// StreetChangeEvent is published when the flop, turn or river is revealed.
type StreetChangeEvent struct {
	HandNumber int
	Street     Street
	Community  []poker.Card
	Pot        int
	timestamp  time.Time
}

func (e StreetChangeEvent) EventType() EventType { return EventTypeStreetChange }
func (e StreetChangeEvent) Timestamp() time.Time { return e.timestamp }

// PlayerTurnEvent is published when the engine waits for the human.
type PlayerTurnEvent struct {
	HandNumber int
	Seat       int
	Name       string
	Street     Street
	Pot        int
	Stack      int
	BigBlind   int
	RaiseBy    int
	HoleCards  []poker.Card
	Community  []poker.Card
	timestamp  time.Time
}

func (e PlayerTurnEvent) EventType() EventType { return EventTypePlayerTurn }
func (e PlayerTurnEvent) Timestamp() time.Time { return e.timestamp }

// PlayerActionEvent is published after an action has been applied.
type PlayerActionEvent struct {
	HandNumber int
	Seat       int
	Name       string
	Kind       Kind
	Street     Street
	Action     Action
	// Amount is what was actually paid into the pot.
	Amount     int
	PotAfter   int
	StackAfter int
	Bluff      bool
	Narration  string
	timestamp  time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// AllInEvent is published when a participant's stack reaches zero, including
// by posting a blind.
type AllInEvent struct {
	HandNumber int
	Seat       int
	Name       string
	timestamp  time.Time
}

func (e AllInEvent) EventType() EventType { return EventTypeAllIn }
func (e AllInEvent) Timestamp() time.Time { return e.timestamp }

// EliminatedEvent is published when a participant ends a hand with no chips.
type EliminatedEvent struct {
	HandNumber int
	Seat       int
	Name       string
	Kind       Kind
	timestamp  time.Time
}

func (e EliminatedEvent) EventType() EventType { return EventTypeEliminated }
func (e EliminatedEvent) Timestamp() time.Time { return e.timestamp }

// ShowdownHand is one contender's evaluated hand.
type ShowdownHand struct {
	Seat        int
	Name        string
	HoleCards   []poker.Card
	Type        poker.HandType
	Score       int16
	Description string
}

// Winner is a pot share.
type Winner struct {
	Seat        int
	Name        string
	Amount      int
	Description string
}

// ShowdownEvent is published when contenders reveal their cards.
type ShowdownEvent struct {
	HandNumber int
	Community  []poker.Card
	Hands      []ShowdownHand // best first
	Winners    []Winner
	Pot        int
	timestamp  time.Time
}

func (e ShowdownEvent) EventType() EventType { return EventTypeShowdown }
func (e ShowdownEvent) Timestamp() time.Time { return e.timestamp }

// HandEndEvent is published when a hand completes or is abandoned.
type HandEndEvent struct {
	HandNumber int
	Pot        int
	WinType    WinType
	Winners    []Winner
	Community  []poker.Card
	Stacks     []StackReport
	timestamp  time.Time
}

func (e HandEndEvent) EventType() EventType { return EventTypeHandEnd }
func (e HandEndEvent) Timestamp() time.Time { return e.timestamp }

// SessionEndEvent is published when the session loop exits.
type SessionEndEvent struct {
	SessionID   string
	HandsPlayed int
	Stacks      []StackReport
	timestamp   time.Time
}

func (e SessionEndEvent) EventType() EventType { return EventTypeSessionEnd }
func (e SessionEndEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription. Subscribers are
// compared by identity, so register pointers.
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus delivers events synchronously, in order, on the publishing goroutine.
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if i := slices.Index(bus.subscribers, subscriber); i >= 0 {
		bus.subscribers = slices.Delete(bus.subscribers, i, i+1)
	}
}

// Publish sends an event to all subscribers. Subscribers may call back into
// the bus or the engine.
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subs := slices.Clone(bus.subscribers)
	bus.mu.RUnlock()

	for _, subscriber := range subs {
		subscriber.OnEvent(event)
	}
}
