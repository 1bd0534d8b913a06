// Package game runs a poker night: one human against a table of bots with
// simple personalities.
//
// The main type is Engine. It owns the seats, deals each hand, asks bots for
// decisions and suspends while the human is to act:
//
//	e, _ := game.NewEngine("You", 1000, 20)
//	e.AddBot("Clyde", 500, game.Aggressive, 0.3)
//	e.Events().Subscribe(renderer)
//	go e.Run(ctx)
//	// on a PlayerTurnEvent:
//	e.Play(game.Call)
//	// on a HandEndEvent:
//	e.RequestNextHand()
//
// Every action is a fixed-size bet: a call moves one big blind into the pot
// and a raise a fixed multiple of it, so there is no matching of bets and no
// side pots. A participant who runs out of chips is all-in for the rest of
// the hand and eliminated once it ends.
//
// # Deterministic Testing
//
// Inject the random source, clock and deck to make a session reproducible:
//
//	e, _ := game.NewEngine("You", 1000, 20,
//	    game.WithSeed(42),
//	    game.WithClock(quartz.NewMock(t)),
//	    game.WithThinkTime(game.ThinkTime{}),
//	    game.WithDeckSource(func(*rand.Rand) *poker.Deck { return rigged }))
package game
