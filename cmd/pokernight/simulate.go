package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/pokernight/internal/game"
	"github.com/lox/pokernight/internal/randutil"
	"github.com/lox/pokernight/internal/statistics"
)

// SimulateCmd plays unattended hands with a fixed policy standing in for the human.
type SimulateCmd struct {
	Hands   int    `default:"100" help:"Maximum number of hands to play"`
	Policy  string `default:"call" enum:"call,fold,raise,random" help:"How the stand-in player acts (call, fold, raise, random)"`
	Stake   int    `help:"Stand-in player's stack (default from config)"`
	Seed    *int64 `help:"Deterministic RNG seed (optional)"`
	Verbose bool   `help:"Print every event, not just the summary"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger, closeLog, err := openLog(cfg.Log, g.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	stake := cfg.Session.Stake
	if c.Stake > 0 {
		stake = c.Stake
	}
	// Bots decide instantly; the configured think time is for people watching.
	e, err := newEngine(cfg, "Autopilot", stake, c.Seed, logger, game.WithThinkTime(game.ThinkTime{}))
	if err != nil {
		return err
	}

	seed := randutil.NewSeed()
	if c.Seed != nil {
		seed = *c.Seed + 1
	}
	tracker := statistics.NewTracker()
	e.Events().Subscribe(tracker)
	pilot := &autopilot{e: e, policy: c.Policy, hands: c.Hands, rng: randutil.New(seed), logger: logger}
	e.Events().Subscribe(pilot)
	if c.Verbose {
		e.Events().Subscribe(newRenderer(os.Stdout, false))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stacks, err := e.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	summary := tracker.Summary()
	if err := summary.Validate(); err != nil {
		logger.Error("Statistics do not balance", "error", err)
	}
	printSummary(os.Stdout, summary, stacks)
	return nil
}

// autopilot answers the human's turns and deals hands back to back.
type autopilot struct {
	e      *game.Engine
	policy string
	hands  int
	rng    *rand.Rand
	logger *log.Logger
}

func (a *autopilot) OnEvent(ev game.GameEvent) {
	switch ev := ev.(type) {
	case game.PlayerTurnEvent:
		if err := a.e.Play(a.choose()); err != nil {
			a.logger.Error("Autopilot action rejected", "error", err)
		}
	case game.HandEndEvent:
		if ev.HandNumber >= a.hands {
			a.e.EndSession()
			return
		}
		if err := a.e.RequestNextHand(); err != nil && !errors.Is(err, game.ErrSessionOver) {
			a.logger.Error("Next hand request failed", "error", err)
		}
	}
}

func (a *autopilot) choose() game.Action {
	switch a.policy {
	case "fold":
		return game.Fold
	case "raise":
		return game.Raise
	case "random":
		return game.Action(a.rng.IntN(3))
	default:
		return game.Call
	}
}

func printSummary(w io.Writer, sum statistics.Summary, stacks []game.StackReport) {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))

	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%d hands, %d to showdown, biggest pot %d", sum.Hands, sum.Showdowns, sum.MaxPot)))
	fmt.Fprintf(&b, "\n%-10s %7s %5s %8s %15s  %s", "player", "stack", "wins", "bb/hand", "95% ci", "status")
	for _, s := range stacks {
		p, _ := sum.Player(s.Name)
		lo, hi := p.ConfidenceInterval95()
		fmt.Fprintf(&b, "\n%-10s %7d %5d %8.2f %15s  %s",
			s.Name, s.Stack, p.Wins(), p.Mean(), fmt.Sprintf("[%.2f, %.2f]", lo, hi), s.Status)
	}
	if sum.Abandoned > 0 {
		fmt.Fprintf(&b, "\n%d hands abandoned, %d chips forfeited", sum.Abandoned, sum.Forfeited)
	}
	fmt.Fprintln(w, summaryStyle.Render(b.String()))
}
