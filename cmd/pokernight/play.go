package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokernight/internal/game"
	"github.com/lox/pokernight/internal/ledger"
)

// PlayCmd runs an interactive session staked from the ledger.
type PlayCmd struct {
	Name  string `short:"n" env:"POKERNIGHT_PLAYER" help:"Your name at the table and in the ledger (default from config)"`
	Stake int    `short:"s" help:"Points to bring to the table (default from config)"`
	Seed  *int64 `help:"Deterministic RNG seed (optional)"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger, closeLog, err := openLog(cfg.Log, g.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	name := firstNonEmpty(c.Name, cfg.Session.Player)
	stake := cfg.Session.Stake
	if c.Stake > 0 {
		stake = c.Stake
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := ledger.Open(ctx, *cfg.Ledger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()

	e, err := newEngine(cfg, name, stake, c.Seed, logger)
	if err != nil {
		return err
	}

	if _, err := ledger.Debit(ctx, store, name, stake, "stake "+e.ID()); err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return insufficientFunds(ctx, store, name, stake, err)
		}
		return err
	}
	logger.Info("Stake debited", "player", name, "stake", stake, "session", e.ID())

	fmt.Println(titleStyle.Render(" ♠ ♥ Poker Night ♦ ♣ "))
	fmt.Printf("%s sits down with %d points against %d bots.\n", name, stake, len(cfg.Bots))

	r := newRenderer(os.Stdout, true)
	r.canContinue = e.CanContinue
	e.Events().Subscribe(r)

	stacks, playErr := playSession(ctx, e, os.Stdin, logger)

	// Settle even when the session failed so the stake is never lost.
	final := stacks[0].Stack
	balance, err := ledger.Settle(context.WithoutCancel(ctx), store, name, final, e.ID())
	if err != nil {
		return errors.Join(playErr, fmt.Errorf("settle %d points for %s: %w", final, name, err))
	}
	logger.Info("Session settled", "player", name, "final", final, "balance", balance)
	fmt.Printf("%s leaves with %d chips (%+d). Balance: %d points.\n", name, final, final-stake, balance)
	return playErr
}

// playSession runs the engine and the keyboard loop until one of them ends
// the session.
func playSession(ctx context.Context, e *game.Engine, in io.Reader, logger *log.Logger) ([]game.StackReport, error) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-e.Done():
				return
			}
		}
	}()

	var stacks []game.StackReport
	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		var err error
		stacks, err = e.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	grp.Go(func() error {
		defer e.EndSession()
		return readCommands(ctx, e, lines, logger)
	})
	err := grp.Wait()
	if stacks == nil {
		stacks = e.EndSession()
	}
	return stacks, err
}

// readCommands maps input lines to engine calls: actions during the human's
// turn, enter between hands, q to quit at any time.
func readCommands(ctx context.Context, e *game.Engine, lines <-chan string, logger *log.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				logger.Info("Input closed, leaving the table")
				return nil
			}
			line = strings.TrimSpace(line)
			if strings.EqualFold(line, "q") || strings.EqualFold(line, "quit") {
				return nil
			}

			if e.Snapshot().AwaitingHuman {
				a, err := game.ParseAction(line)
				if err != nil {
					fmt.Println(alertStyle.Render("Type f, c or r."))
					continue
				}
				if err := e.Play(a); err != nil && !errors.Is(err, game.ErrOutOfTurn) {
					return err
				}
				continue
			}

			if err := e.RequestNextHand(); err != nil {
				logger.Debug("Next hand request ignored", "error", err)
			}
		}
	}
}

// insufficientFunds explains a failed stake debit, quoting the balance when
// the store can still report it.
func insufficientFunds(ctx context.Context, store ledger.Store, name string, stake int, cause error) error {
	balance, err := store.Balance(ctx, name)
	if err != nil {
		return fmt.Errorf("stake %d for %s: %w", stake, name, cause)
	}
	return fmt.Errorf("%s has %d points, the stake is %d (try `pokernight grant`)", name, balance, stake)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
