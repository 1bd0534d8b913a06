package game

import (
	"slices"

	"github.com/lox/pokernight/poker"
)

// Participant is one seat at the table: the human at seat 0, bots after it in
// roster order.
type Participant struct {
	Seat      int
	Name      string
	Kind      Kind
	Stack     int
	HoleCards []poker.Card
	Status    Status
	// AllIn is set for the rest of the hand once the stack hits zero.
	AllIn bool
	// Contributed counts the chips this participant put into the current pot.
	Contributed int

	bot *Bot
}

// IsHuman reports whether this is the interactive seat.
func (p *Participant) IsHuman() bool {
	return p.Kind == Human
}

// Bot returns the decision policy for a bot seat, nil for the human.
func (p *Participant) Bot() *Bot {
	return p.bot
}

// canAct reports whether the participant is still owed turns this hand.
func (p *Participant) canAct() bool {
	return p.Status == Active && !p.AllIn && p.Stack > 0
}

// contending reports whether the participant can still win the pot.
func (p *Participant) contending() bool {
	return p.Status == Active && len(p.HoleCards) == 2
}

// debit moves up to amount chips out of the stack and returns what was paid.
func (p *Participant) debit(amount int) int {
	amount = min(max(amount, 0), p.Stack)
	p.Stack -= amount
	p.Contributed += amount
	if p.Stack == 0 && amount > 0 {
		p.AllIn = true
	}
	return amount
}

// resetForHand clears per-hand state. Eliminated seats stay eliminated.
func (p *Participant) resetForHand() {
	p.HoleCards = nil
	p.AllIn = false
	p.Contributed = 0
	if p.Status != Eliminated {
		p.Status = Active
	}
}

// SeatView is a read-only copy of a participant for hosts and events.
type SeatView struct {
	Seat        int
	Name        string
	Kind        Kind
	Personality Personality // empty for the human
	Stack       int
	Status      Status
	AllIn       bool
	Contributed int
}

func (p *Participant) view() SeatView {
	v := SeatView{
		Seat:        p.Seat,
		Name:        p.Name,
		Kind:        p.Kind,
		Stack:       p.Stack,
		Status:      p.Status,
		AllIn:       p.AllIn,
		Contributed: p.Contributed,
	}
	if p.bot != nil {
		v.Personality = p.bot.Personality
	}
	return v
}

// StackReport is a participant's chip count when a hand or session ends.
type StackReport struct {
	Seat   int
	Name   string
	Kind   Kind
	Stack  int
	Status Status
}

func stackReports(seats []*Participant) []StackReport {
	out := make([]StackReport, 0, len(seats))
	for _, p := range seats {
		out = append(out, StackReport{Seat: p.Seat, Name: p.Name, Kind: p.Kind, Stack: p.Stack, Status: p.Status})
	}
	return out
}

func cloneCards(cards []poker.Card) []poker.Card {
	if len(cards) == 0 {
		return nil
	}
	return slices.Clone(cards)
}
