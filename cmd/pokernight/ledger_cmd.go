package main

import (
	"context"
	"fmt"

	"github.com/lox/pokernight/internal/ledger"
)

// BalanceCmd prints a player's points and recent history.
type BalanceCmd struct {
	Player  string `arg:"" help:"Player name"`
	History int    `default:"5" help:"Number of recent entries to show"`
}

func (c *BalanceCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	ctx := context.Background()
	store, err := ledger.Open(ctx, *cfg.Ledger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()

	balance, err := store.Balance(ctx, c.Player)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d points\n", c.Player, balance)

	entries, err := store.History(ctx, c.Player, c.History)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("  %s  %+6d  %6d  %s\n", e.At.Local().Format("2006-01-02 15:04"), e.Delta, e.Balance, e.Reason)
	}
	return nil
}

// GrantCmd credits points, like a daily reward.
type GrantCmd struct {
	Player string `arg:"" help:"Player name"`
	Amount int    `arg:"" help:"Points to add"`
	Reason string `default:"grant" help:"Ledger note"`
}

func (c *GrantCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	ctx := context.Background()
	store, err := ledger.Open(ctx, *cfg.Ledger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()

	balance, err := ledger.Credit(ctx, store, c.Player, c.Amount, c.Reason)
	if err != nil {
		return err
	}
	fmt.Printf("%s now has %d points\n", c.Player, balance)
	return nil
}
