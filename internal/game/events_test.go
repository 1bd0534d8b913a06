package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/pokernight/poker"
)

type countingSubscriber struct {
	events []GameEvent
}

func (c *countingSubscriber) OnEvent(ev GameEvent) {
	c.events = append(c.events, ev)
}

func TestEventBusSubscribeUnsubscribe(t *testing.T) {
	t.Parallel()
	bus := NewEventBus()
	a, b := &countingSubscriber{}, &countingSubscriber{}
	bus.Subscribe(a)
	bus.Subscribe(b)

	bus.Publish(AllInEvent{Name: "Clyde"})
	bus.Unsubscribe(a)
	bus.Publish(EliminatedEvent{Name: "Clyde"})

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 2)
	assert.Equal(t, EventTypeEliminated, b.events[1].EventType())
}

func TestEventBusAllowsSubscribeDuringPublish(t *testing.T) {
	t.Parallel()
	bus := NewEventBus()
	late := &countingSubscriber{}
	bus.Subscribe(subscriberFunc(func(GameEvent) { bus.Subscribe(late) }))

	bus.Publish(AllInEvent{})
	assert.Empty(t, late.events, "new subscribers see the next event, not the current one")
	bus.Publish(AllInEvent{})
	assert.Len(t, late.events, 1)
}

type subscriberFunc func(GameEvent)

func (f subscriberFunc) OnEvent(ev GameEvent) { f(ev) }

func TestFormatPlayerAction(t *testing.T) {
	t.Parallel()
	ev := PlayerActionEvent{Name: "Clyde", Action: Raise, Amount: 40, PotAfter: 100, Bluff: true, Narration: "Clyde raises 40 confidently."}

	plain := NewEventFormatter(FormattingOptions{})
	assert.Equal(t, "Clyde: raises 40 (pot now: 100)", plain.Format(ev))

	tagged := NewEventFormatter(FormattingOptions{ShowBluffs: true})
	assert.Equal(t, "Clyde: raises 40 (pot now: 100) (bluff)", tagged.Format(ev))

	narrated := NewEventFormatter(FormattingOptions{ShowNarration: true})
	assert.Equal(t, "Clyde raises 40 confidently.", narrated.Format(ev))
}

func TestFormatStreetsAndResults(t *testing.T) {
	t.Parallel()
	ef := NewEventFormatter(FormattingOptions{ShowHoleCards: true})
	board := poker.MustParseCards("Ah Kd 9s 4c")

	assert.Equal(t, "*** FLOP *** [A♥ K♦ 9♠]", ef.Format(StreetChangeEvent{Street: Flop, Community: board[:3]}))
	assert.Equal(t, "*** TURN *** [A♥ K♦ 9♠] [4♣]", ef.Format(StreetChangeEvent{Street: Turn, Community: board}))

	split := HandEndEvent{Pot: 41, WinType: WinShowdown, Winners: []Winner{{Name: "You", Amount: 21}, {Name: "Inky", Amount: 20}}}
	assert.Equal(t, "Split pot of 41: You 21, Inky 20.", ef.Format(split))

	abandoned := HandEndEvent{HandNumber: 3, Pot: 30, WinType: WinAbandoned}
	assert.Equal(t, "Hand #3 abandoned, 30 chips forfeited.", ef.Format(abandoned))

	showdown := ShowdownEvent{
		Community: board,
		Hands:     []ShowdownHand{{Name: "Inky", HoleCards: poker.MustParseCards("As Ad"), Description: "three of a kind"}},
	}
	assert.Contains(t, ef.Format(showdown), "Inky shows [A♠ A♦]: three of a kind")
}
