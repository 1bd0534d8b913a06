package game

import (
	"context"
	"errors"
)

// CanContinue reports whether another hand can be dealt: the session is not
// over, the human has chips, and at least one bot has chips.
func (e *Engine) CanContinue() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.over && e.canContinueLocked()
}

func (e *Engine) canContinueLocked() bool {
	human := e.seats[0]
	if human.Stack <= 0 || human.Status == Eliminated {
		return false
	}
	for _, bot := range e.bots {
		if bot.seat.Stack > 0 && bot.seat.Status != Eliminated {
			return true
		}
	}
	return false
}

// Run plays hands until the human or every bot is out of chips, the session
// is ended, or ctx is cancelled. Between hands it waits for RequestNextHand.
// It publishes a SessionEndEvent and returns the final stacks.
func (e *Engine) Run(ctx context.Context) ([]StackReport, error) {
	e.logger.Info("Session started", "seats", len(e.seats), "bigBlind", e.bigBlind)

	for e.CanContinue() {
		if _, err := e.PlayHand(ctx); err != nil {
			if errors.Is(err, ErrSessionOver) {
				break
			}
			return e.finish(), err
		}
		if !e.CanContinue() {
			break
		}

		select {
		case <-e.nextHand:
		case <-e.done:
			return e.finish(), nil
		case <-ctx.Done():
			return e.finish(), ctx.Err()
		}
	}
	return e.finish(), nil
}

// RequestNextHand lets Run deal the next hand. Requests made while a hand is
// in progress are rejected.
func (e *Engine) RequestNextHand() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.over:
		return ErrSessionOver
	case e.inHand:
		return ErrHandInProgress
	}
	select {
	case e.nextHand <- struct{}{}:
	default:
	}
	return nil
}

// EndSession stops the session and returns the final stacks. A hand in
// progress is abandoned and its pot forfeited. Calling it again is harmless.
func (e *Engine) EndSession() []StackReport {
	e.mu.Lock()
	e.over = true
	e.humanTurn = nil
	stacks := stackReports(e.seats)
	e.mu.Unlock()

	e.endOnce.Do(func() {
		e.logger.Info("Session ended")
		close(e.done)
	})
	return stacks
}

// Done is closed once the session has ended.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// finish ends the session and publishes the final stacks once.
func (e *Engine) finish() []StackReport {
	stacks := e.EndSession()
	e.finalOnce.Do(func() {
		e.mu.Lock()
		played := e.handsPlayed
		e.mu.Unlock()
		e.publish(SessionEndEvent{
			SessionID:   e.id,
			HandsPlayed: played,
			Stacks:      stacks,
			timestamp:   e.now(),
		})
	})
	return stacks
}
