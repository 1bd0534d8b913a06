package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/pokernight/internal/config"
	"github.com/lox/pokernight/internal/game"
	"github.com/lox/pokernight/internal/randutil"
)

func loadConfig(g *Globals) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", g.Config, err)
	}
	return cfg, nil
}

// openLog opens the log file named in config. The terminal is reserved for
// the table, so logs never go to stdout.
func openLog(cfg *config.LogConfig, debug bool) (*log.Logger, func(), error) {
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = log.InfoLevel
	}
	if debug {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
		Prefix:          "pokernight",
	})
	return logger, func() {
		if err := f.Close(); err != nil {
			log.Error("Failed to close log file", "error", err)
		}
	}, nil
}

// newEngine seats the configured roster around the human.
func newEngine(cfg *config.Config, player string, stake int, seed *int64, logger *log.Logger, extra ...game.Option) (*game.Engine, error) {
	s := cfg.Session
	lo, hi, err := s.ThinkTime()
	if err != nil {
		return nil, err
	}

	var rngSeed int64
	switch {
	case seed != nil:
		rngSeed = *seed
	case s.Seed != 0:
		rngSeed = s.Seed
	default:
		rngSeed = randutil.NewSeed()
	}
	logger.Info("Seeding session", "seed", rngSeed)

	opts := []game.Option{
		game.WithLogger(logger),
		game.WithSeed(rngSeed),
		game.WithThinkTime(game.ThinkTime{Min: lo, Max: hi}),
		game.WithHumanRaise(s.HumanRaise),
		game.WithBlindPosting(s.PostBlinds),
	}
	e, err := game.NewEngine(player, stake, s.BigBlind, append(opts, extra...)...)
	if err != nil {
		return nil, err
	}

	for _, b := range cfg.Bots {
		personality, err := game.ParsePersonality(b.Personality)
		if err != nil {
			return nil, fmt.Errorf("bot %s: %w", b.Name, err)
		}
		if _, err := e.AddBot(b.Name, b.Stack, personality, b.Bluff); err != nil {
			return nil, err
		}
	}
	return e, nil
}
