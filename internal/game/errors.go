package game

import "errors"

var (
	// ErrOutOfTurn is returned by Play when no human turn is pending.
	ErrOutOfTurn = errors.New("not your turn")
	// ErrInvalidAction is returned for actions outside fold, call and raise.
	ErrInvalidAction = errors.New("invalid action")
	// ErrHandAbandoned is returned by PlayHand when the hand was cancelled
	// mid-way. Chips already in the pot are forfeited.
	ErrHandAbandoned = errors.New("hand abandoned")
	// ErrHandInProgress is returned when an operation needs an idle table.
	ErrHandInProgress = errors.New("hand in progress")
	// ErrSessionOver is returned once the session has ended or can no longer continue.
	ErrSessionOver = errors.New("session over")
	// ErrSessionStarted is returned by AddBot after the first hand was dealt.
	ErrSessionStarted = errors.New("roster is fixed once the first hand starts")
	// ErrTooManySeats is returned when a roster could exhaust the deck in one hand.
	ErrTooManySeats = errors.New("too many seats for one deck")
	// ErrNoOpponents is returned by PlayHand when no bot was added.
	ErrNoOpponents = errors.New("at least one bot is required")
	// ErrUnknownPersonality is returned for personalities outside the fixed set.
	ErrUnknownPersonality = errors.New("unknown personality")
	// ErrChipConservation signals that chips were created or destroyed.
	ErrChipConservation = errors.New("chip conservation violated")
)
