package game

import (
	"fmt"
	"strings"

	"github.com/lox/pokernight/poker"
)

// FormattingOptions controls how events are rendered as text.
type FormattingOptions struct {
	ShowNarration bool // use bot narration lines instead of terse actions
	ShowBluffs    bool // tag bluffing raises
	ShowHoleCards bool // include hole cards in showdown summaries
}

// EventFormatter renders events as single lines of table talk.
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format renders any event. Unknown events render as their type.
func (ef *EventFormatter) Format(event GameEvent) string {
	switch ev := event.(type) {
	case HandStartEvent:
		return ef.FormatHandStart(ev)
	case StreetChangeEvent:
		return ef.FormatStreetChange(ev)
	case PlayerTurnEvent:
		return ef.FormatPlayerTurn(ev)
	case PlayerActionEvent:
		return ef.FormatPlayerAction(ev)
	case AllInEvent:
		return fmt.Sprintf("%s is all-in!", ev.Name)
	case EliminatedEvent:
		return fmt.Sprintf("%s is out of chips and leaves the table.", ev.Name)
	case ShowdownEvent:
		return ef.FormatShowdown(ev)
	case HandEndEvent:
		return ef.FormatHandEnd(ev)
	case SessionEndEvent:
		return ef.FormatSessionEnd(ev)
	default:
		return event.EventType().String()
	}
}

// FormatHandStart formats a hand start event into a human-readable string
func (ef *EventFormatter) FormatHandStart(event HandStartEvent) string {
	sb, bb := event.Seats[event.SmallBlindSeat].Name, event.Seats[event.BigBlindSeat].Name
	line := fmt.Sprintf("Hand #%d • %d players • big blind %d • SB %s, BB %s",
		event.HandNumber, len(event.Seats), event.BigBlind, sb, bb)
	if len(event.HumanHole) > 0 {
		line += fmt.Sprintf(" • your cards [%s]", formatCards(event.HumanHole))
	}
	return line
}

// FormatStreetChange formats a street change event into a human-readable string
func (ef *EventFormatter) FormatStreetChange(event StreetChangeEvent) string {
	board := event.Community
	switch event.Street {
	case Flop:
		return fmt.Sprintf("*** FLOP *** [%s]", formatCards(board))
	case Turn, River:
		if len(board) >= 4 {
			return fmt.Sprintf("*** %s *** [%s] [%s]", strings.ToUpper(event.Street.String()),
				formatCards(board[:len(board)-1]), board[len(board)-1])
		}
	}
	return fmt.Sprintf("*** %s *** [%s]", strings.ToUpper(event.Street.String()), formatCards(board))
}

// FormatPlayerTurn formats the prompt shown when the human must act.
func (ef *EventFormatter) FormatPlayerTurn(event PlayerTurnEvent) string {
	return fmt.Sprintf("Your move on the %s: pot %d, stack %d. (f)old, (c)all %d or (r)aise %d?",
		event.Street, event.Pot, event.Stack, min(event.BigBlind, event.Stack), event.RaiseBy)
}

// FormatPlayerAction formats a player action event into a human-readable string
func (ef *EventFormatter) FormatPlayerAction(event PlayerActionEvent) string {
	if ef.opts.ShowNarration && event.Narration != "" {
		return event.Narration
	}

	var text string
	switch event.Action {
	case Fold:
		text = fmt.Sprintf("%s: folds", event.Name)
	case Call:
		text = fmt.Sprintf("%s: calls %d (pot now: %d)", event.Name, event.Amount, event.PotAfter)
	case Raise:
		text = fmt.Sprintf("%s: raises %d (pot now: %d)", event.Name, event.Amount, event.PotAfter)
	default:
		text = fmt.Sprintf("%s: %s %d", event.Name, event.Action, event.Amount)
	}
	if ef.opts.ShowBluffs && event.Bluff {
		text += " (bluff)"
	}
	return text
}

// FormatShowdown lists every revealed hand, best first.
func (ef *EventFormatter) FormatShowdown(event ShowdownEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*** SHOWDOWN *** [%s]", formatCards(event.Community))
	for _, h := range event.Hands {
		b.WriteString("\n  ")
		if ef.opts.ShowHoleCards {
			fmt.Fprintf(&b, "%s shows [%s]: %s", h.Name, formatCards(h.HoleCards), h.Description)
		} else {
			fmt.Fprintf(&b, "%s: %s", h.Name, h.Description)
		}
	}
	return b.String()
}

// FormatHandEnd formats a hand end event into a human-readable string
func (ef *EventFormatter) FormatHandEnd(event HandEndEvent) string {
	switch {
	case event.WinType == WinAbandoned:
		return fmt.Sprintf("Hand #%d abandoned, %d chips forfeited.", event.HandNumber, event.Pot)
	case len(event.Winners) == 1:
		w := event.Winners[0]
		if w.Description != "" {
			return fmt.Sprintf("%s wins %d with %s.", w.Name, w.Amount, w.Description)
		}
		return fmt.Sprintf("%s wins %d.", w.Name, w.Amount)
	}

	parts := make([]string, 0, len(event.Winners))
	for _, w := range event.Winners {
		parts = append(parts, fmt.Sprintf("%s %d", w.Name, w.Amount))
	}
	return fmt.Sprintf("Split pot of %d: %s.", event.Pot, strings.Join(parts, ", "))
}

// FormatSessionEnd summarises final stacks.
func (ef *EventFormatter) FormatSessionEnd(event SessionEndEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session over after %d hands.", event.HandsPlayed)
	for _, s := range event.Stacks {
		fmt.Fprintf(&b, "\n  %-10s %6d  %s", s.Name, s.Stack, s.Status)
	}
	return b.String()
}

func formatCards(cards []poker.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
