package game

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/lox/pokernight/internal/evaluator"
	"github.com/lox/pokernight/poker"
)

// HandResult summarises a completed hand.
type HandResult struct {
	HandNumber int
	WinType    WinType
	Pot        int
	Winners    []Winner
	Hands      []ShowdownHand // empty unless the hand reached showdown
	Community  []poker.Card
	Stacks     []StackReport
}

// PlayHand deals one hand and plays it to completion, publishing events as it
// goes. It blocks while the human is to act. If ctx is cancelled or the
// session ends mid-hand the chips in the pot are forfeited and the returned
// error wraps ErrHandAbandoned.
func (e *Engine) PlayHand(ctx context.Context) (*HandResult, error) {
	start, err := e.startHand()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	go func() {
		select {
		case <-e.done:
			cancel(ErrSessionOver)
		case <-ctx.Done():
		}
	}()

	e.logger.Info("Hand started",
		"hand", start.HandNumber,
		"smallBlind", start.SmallBlindSeat,
		"bigBlind", start.BigBlindSeat,
		"firstToAct", start.FirstToAct)
	e.publish(start)
	for _, s := range start.Seats {
		if s.AllIn {
			e.publish(AllInEvent{HandNumber: start.HandNumber, Seat: s.Seat, Name: s.Name, timestamp: e.now()})
		}
	}

	for _, street := range bettingStreets {
		if len(e.contenders()) <= 1 {
			break
		}
		if street != Preflop {
			if err := e.openStreet(street); err != nil {
				return nil, e.abort(err)
			}
		}
		if err := e.bettingRound(ctx); err != nil {
			if ctx.Err() != nil {
				err = context.Cause(ctx)
			}
			return nil, e.abort(err)
		}
	}
	return e.settle()
}

func (e *Engine) startHand() (HandStartEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.over:
		return HandStartEvent{}, ErrSessionOver
	case e.inHand:
		return HandStartEvent{}, ErrHandInProgress
	case len(e.bots) == 0:
		return HandStartEvent{}, ErrNoOpponents
	case !e.canContinueLocked():
		return HandStartEvent{}, ErrSessionOver
	}

	if !e.started {
		e.started = true
		for _, p := range e.seats {
			e.chipTotal += p.Stack
		}
	}

	deck := e.deckSource(e.rng)
	for _, p := range e.seats {
		p.resetForHand()
	}
	for _, p := range e.seats {
		if p.Status == Eliminated {
			continue
		}
		cards, err := deck.Draw(2)
		if err != nil {
			for _, q := range e.seats {
				q.resetForHand()
			}
			return HandStartEvent{}, fmt.Errorf("deal hole cards: %w", err)
		}
		p.HoleCards = cards
	}

	e.handNumber++
	e.deck = deck
	e.pot = 0
	e.community = nil
	e.street = Preflop
	e.inHand = true
	e.sbSeat = e.nextLive(e.smallBlindIndex % len(e.seats))
	e.bbSeat = e.nextLive(e.sbSeat + 1)
	e.firstSeat = e.nextLive(e.bbSeat + 1)

	if e.postBlinds {
		e.pot += e.seats[e.sbSeat].debit(e.bigBlind / 2)
		e.pot += e.seats[e.bbSeat].debit(e.bigBlind)
	}

	// A request made before the hand started does not skip the next pause.
	select {
	case <-e.nextHand:
	default:
	}

	ev := HandStartEvent{
		SessionID:      e.id,
		HandNumber:     e.handNumber,
		SmallBlindSeat: e.sbSeat,
		BigBlindSeat:   e.bbSeat,
		FirstToAct:     e.firstSeat,
		BigBlind:       e.bigBlind,
		InitialPot:     e.pot,
		HumanHole:      cloneCards(e.seats[0].HoleCards),
		timestamp:      e.now(),
	}
	for _, p := range e.seats {
		ev.Seats = append(ev.Seats, p.view())
	}
	return ev, nil
}

// nextLive returns the first seat at or after start that is not eliminated.
func (e *Engine) nextLive(start int) int {
	n := len(e.seats)
	for i := range n {
		seat := (start + i) % n
		if e.seats[seat].Status != Eliminated {
			return seat
		}
	}
	return start % n
}

// contenders returns the participants still eligible for the pot, in seat order.
func (e *Engine) contenders() []*Participant {
	var out []*Participant
	for _, p := range e.seats {
		if p.contending() {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) openStreet(street Street) error {
	e.mu.Lock()
	cards, err := e.deck.Draw(street.communityCards())
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("deal %s: %w", street, err)
	}
	e.street = street
	e.community = append(e.community, cards...)
	ev := StreetChangeEvent{
		HandNumber: e.handNumber,
		Street:     street,
		Community:  cloneCards(e.community),
		Pot:        e.pot,
		timestamp:  e.now(),
	}
	e.mu.Unlock()

	e.logger.Debug("Street opened", "street", street, "board", poker.FormatCards(ev.Community))
	e.publish(ev)
	return nil
}

// bettingRound gives every participant that can act one turn, in seat order
// from the first to act.
func (e *Engine) bettingRound(ctx context.Context) error {
	n := len(e.seats)
	for i := range n {
		if len(e.contenders()) <= 1 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		p := e.seats[(e.firstSeat+i)%n]
		if !p.canAct() {
			continue
		}

		var err error
		if p.IsHuman() {
			err = e.humanAct(ctx, p)
		} else {
			err = e.botAct(ctx, p.bot)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) humanAct(ctx context.Context, p *Participant) error {
	turn := make(chan Action, 1)

	e.mu.Lock()
	if e.over {
		e.mu.Unlock()
		return ErrSessionOver
	}
	e.humanTurn = turn
	ev := PlayerTurnEvent{
		HandNumber: e.handNumber,
		Seat:       p.Seat,
		Name:       p.Name,
		Street:     e.street,
		Pot:        e.pot,
		Stack:      p.Stack,
		BigBlind:   e.bigBlind,
		RaiseBy:    min(e.humanRaise, p.Stack),
		HoleCards:  cloneCards(p.HoleCards),
		Community:  cloneCards(e.community),
		timestamp:  e.now(),
	}
	e.mu.Unlock()

	e.publish(ev)

	select {
	case a := <-turn:
		return e.apply(p, a, e.humanRaise, false, "")
	case <-ctx.Done():
		e.mu.Lock()
		if e.humanTurn == turn {
			e.humanTurn = nil
		}
		e.mu.Unlock()
		// Play can no longer send, so anything buffered was accepted first.
		select {
		case a := <-turn:
			if err := e.apply(p, a, e.humanRaise, false, ""); err != nil {
				return err
			}
		default:
		}
		return ctx.Err()
	}
}

func (e *Engine) botAct(ctx context.Context, bot *Bot) error {
	e.mu.Lock()
	view := View{
		Street:    e.street,
		Pot:       e.pot,
		BigBlind:  e.bigBlind,
		Community: cloneCards(e.community),
	}
	e.mu.Unlock()

	d, err := bot.Decide(ctx, view)
	if err != nil {
		return err
	}
	amount := d.Amount
	if d.Action == Raise && amount <= 0 {
		amount = 2 * e.bigBlind
	}
	return e.apply(bot.seat, d.Action, amount, d.Bluff, bot.Narrate(d))
}

// apply moves chips for one action and tells every bot about it.
func (e *Engine) apply(p *Participant, a Action, raiseAmount int, bluff bool, narration string) error {
	e.mu.Lock()
	if e.over {
		e.mu.Unlock()
		return ErrSessionOver
	}

	wasAllIn := p.AllIn
	paid := 0
	switch a {
	case Fold:
		p.Status = Folded
	case Call:
		paid = p.debit(e.bigBlind)
	case Raise:
		paid = p.debit(raiseAmount)
	default:
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidAction, a)
	}
	e.pot += paid

	if narration == "" {
		narration = describeAction(p.Name, a, paid)
	}
	ev := PlayerActionEvent{
		HandNumber: e.handNumber,
		Seat:       p.Seat,
		Name:       p.Name,
		Kind:       p.Kind,
		Street:     e.street,
		Action:     a,
		Amount:     paid,
		PotAfter:   e.pot,
		StackAfter: p.Stack,
		Bluff:      bluff,
		Narration:  narration,
		timestamp:  e.now(),
	}
	wentAllIn := p.AllIn && !wasAllIn
	e.mu.Unlock()

	for _, bot := range e.bots {
		bot.Observe(a)
	}

	e.logger.Debug("Action",
		"player", p.Name,
		"street", ev.Street,
		"action", a,
		"paid", paid,
		"pot", ev.PotAfter,
		"stack", ev.StackAfter)
	e.publish(ev)

	if wentAllIn {
		e.publish(AllInEvent{HandNumber: ev.HandNumber, Seat: p.Seat, Name: p.Name, timestamp: e.now()})
	}
	return nil
}

func describeAction(name string, a Action, paid int) string {
	switch a {
	case Fold:
		return name + " folds."
	case Call:
		return fmt.Sprintf("%s calls %d.", name, paid)
	default:
		return fmt.Sprintf("%s raises %d.", name, paid)
	}
}

// settle awards the pot and closes the hand.
func (e *Engine) settle() (*HandResult, error) {
	e.mu.Lock()
	if e.over {
		e.mu.Unlock()
		return nil, e.abort(ErrSessionOver)
	}

	contenders := e.contenders()
	res := &HandResult{
		HandNumber: e.handNumber,
		Pot:        e.pot,
		Community:  cloneCards(e.community),
	}

	switch len(contenders) {
	case 0:
		// Nobody left to pay; treat like an abandoned pot.
		res.WinType = WinAbandoned
		e.forfeited += e.pot
	case 1:
		winner := contenders[0]
		winner.Stack += e.pot
		res.WinType = WinFold
		res.Winners = []Winner{{Seat: winner.Seat, Name: winner.Name, Amount: e.pot}}
	default:
		hands, winners, err := e.showdown(contenders)
		if err != nil {
			e.mu.Unlock()
			return nil, e.abort(err)
		}
		e.street = Showdown
		res.WinType = WinShowdown
		res.Hands = hands
		res.Winners = winners
	}
	e.pot = 0

	eliminated := e.eliminateBroke()
	e.smallBlindIndex = (e.smallBlindIndex + 1) % len(e.seats)
	e.handsPlayed++
	e.inHand = false
	res.Stacks = stackReports(e.seats)
	conservation := e.checkConservation()
	now := e.now()
	e.mu.Unlock()

	if res.WinType == WinShowdown {
		e.publish(ShowdownEvent{
			HandNumber: res.HandNumber,
			Community:  res.Community,
			Hands:      res.Hands,
			Winners:    res.Winners,
			Pot:        res.Pot,
			timestamp:  now,
		})
	}
	e.publishEliminated(res.HandNumber, eliminated)
	e.publish(HandEndEvent{
		HandNumber: res.HandNumber,
		Pot:        res.Pot,
		WinType:    res.WinType,
		Winners:    res.Winners,
		Community:  res.Community,
		Stacks:     res.Stacks,
		timestamp:  now,
	})

	e.logger.Info("Hand complete", "hand", res.HandNumber, "pot", res.Pot, "winType", res.WinType, "winners", len(res.Winners))
	if conservation != nil {
		e.logger.Error("Chip conservation check failed", "error", conservation)
		return res, conservation
	}
	return res, nil
}

// showdown evaluates every contender and splits the pot among the best.
// Called with e.mu held.
func (e *Engine) showdown(contenders []*Participant) ([]ShowdownHand, []Winner, error) {
	n := len(e.seats)
	// Seat order starting at the small blind decides odd chips.
	slices.SortStableFunc(contenders, func(a, b *Participant) int {
		return (a.Seat-e.sbSeat+n)%n - (b.Seat-e.sbSeat+n)%n
	})

	type scored struct {
		p    *Participant
		res  evaluator.Result
		hand ShowdownHand
	}
	results := make([]scored, 0, len(contenders))
	for _, p := range contenders {
		r, err := e.eval.Evaluate(append(slices.Clone(p.HoleCards), e.community...))
		if err != nil {
			return nil, nil, fmt.Errorf("evaluate %s: %w", p.Name, err)
		}
		results = append(results, scored{
			p:   p,
			res: r,
			hand: ShowdownHand{
				Seat:        p.Seat,
				Name:        p.Name,
				HoleCards:   cloneCards(p.HoleCards),
				Type:        r.Type,
				Score:       r.Score,
				Description: r.Description,
			},
		})
	}
	slices.SortStableFunc(results, func(a, b scored) int {
		switch {
		case a.res.Beats(b.res):
			return -1
		case b.res.Beats(a.res):
			return 1
		}
		return 0
	})

	best := results[0]
	var tied []scored
	for _, r := range results {
		if !best.res.Beats(r.res) {
			tied = append(tied, r)
		}
	}

	share, odd := e.pot/len(tied), e.pot%len(tied)
	winners := make([]Winner, 0, len(tied))
	for i, r := range tied {
		amount := share
		if i < odd {
			amount++
		}
		r.p.Stack += amount
		winners = append(winners, Winner{Seat: r.p.Seat, Name: r.p.Name, Amount: amount, Description: r.hand.Description})
	}

	hands := make([]ShowdownHand, 0, len(results))
	for _, r := range results {
		hands = append(hands, r.hand)
	}
	return hands, winners, nil
}

// eliminateBroke marks participants without chips as eliminated. Called with e.mu held.
func (e *Engine) eliminateBroke() []*Participant {
	var out []*Participant
	for _, p := range e.seats {
		if p.Stack == 0 && p.Status != Eliminated {
			p.Status = Eliminated
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) publishEliminated(hand int, eliminated []*Participant) {
	for _, p := range eliminated {
		e.logger.Info("Eliminated", "player", p.Name, "hand", hand)
		e.publish(EliminatedEvent{HandNumber: hand, Seat: p.Seat, Name: p.Name, Kind: p.Kind, timestamp: e.now()})
	}
}

// checkConservation verifies no chips were created or lost. Called with e.mu held.
func (e *Engine) checkConservation() error {
	total := e.pot + e.forfeited
	for _, p := range e.seats {
		total += p.Stack
	}
	if total != e.chipTotal {
		return fmt.Errorf("%w: %d on table, %d expected", ErrChipConservation, total, e.chipTotal)
	}
	return nil
}

// abort stops the current hand, forfeiting the pot. Cancellation and session
// end are reported as ErrHandAbandoned.
func (e *Engine) abort(cause error) error {
	e.mu.Lock()
	if !e.inHand {
		e.mu.Unlock()
		return cause
	}
	hand, pot := e.handNumber, e.pot
	e.forfeited += e.pot
	e.pot = 0
	e.inHand = false
	e.humanTurn = nil
	eliminated := e.eliminateBroke()
	stacks := stackReports(e.seats)
	community := cloneCards(e.community)
	e.mu.Unlock()

	e.logger.Warn("Hand abandoned", "hand", hand, "forfeited", pot, "cause", cause)
	e.publishEliminated(hand, eliminated)
	e.publish(HandEndEvent{
		HandNumber: hand,
		Pot:        pot,
		WinType:    WinAbandoned,
		Community:  community,
		Stacks:     stacks,
		timestamp:  e.now(),
	})

	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) || errors.Is(cause, ErrSessionOver) {
		return fmt.Errorf("%w: %w", ErrHandAbandoned, cause)
	}
	return fmt.Errorf("hand %d aborted: %w", hand, cause)
}
