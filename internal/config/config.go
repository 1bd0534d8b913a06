// Package config loads the HCL file describing a poker night: the table,
// the bot roster, the points ledger and logging.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete configuration
type Config struct {
	Session *SessionConfig `hcl:"session,block"`
	Bots    []BotConfig    `hcl:"bot,block"`
	Ledger  *LedgerConfig  `hcl:"ledger,block"`
	Log     *LogConfig     `hcl:"log,block"`
}

// SessionConfig contains table-level settings
type SessionConfig struct {
	Player     string `hcl:"player,optional"`
	Stake      int    `hcl:"stake,optional"`
	BigBlind   int    `hcl:"big_blind,optional"`
	HumanRaise int    `hcl:"human_raise,optional"`
	PostBlinds bool   `hcl:"post_blinds,optional"`
	ThinkMin   string `hcl:"think_min,optional"`
	ThinkMax   string `hcl:"think_max,optional"`
	Seed       int64  `hcl:"seed,optional"`
}

// BotConfig defines one seat of the roster
type BotConfig struct {
	Name        string  `hcl:"name,label"`
	Personality string  `hcl:"personality"`
	Stack       int     `hcl:"stack,optional"`
	Bluff       float64 `hcl:"bluff,optional"`
}

// LedgerConfig selects where player points are kept
type LedgerConfig struct {
	Driver string `hcl:"driver,optional"` // file, sqlite or postgres
	Path   string `hcl:"path,optional"`
	DSN    string `hcl:"dsn,optional"`
}

// LogConfig controls the log file
type LogConfig struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

const (
	defaultBotStack = 500
	defaultBigBlind = 20
	defaultStake    = 1000
)

// Drivers are the supported ledger backends.
var Drivers = []string{"file", "sqlite", "postgres"}

// DefaultRoster is the house table.
func DefaultRoster() []BotConfig {
	return []BotConfig{
		{Name: "Blinky", Personality: "pairlover", Stack: defaultBotStack, Bluff: 0.1},
		{Name: "Pinky", Personality: "random", Stack: defaultBotStack, Bluff: 0.5},
		{Name: "Inky", Personality: "cautious", Stack: defaultBotStack, Bluff: 0.2},
		{Name: "Clyde", Personality: "aggressive", Stack: defaultBotStack, Bluff: 0.3},
		{Name: "Packy", Personality: "bluffer", Stack: defaultBotStack, Bluff: 1.0},
		{Name: "Kacky", Personality: "balanced", Stack: defaultBotStack, Bluff: 0.2},
	}
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads configuration from an HCL file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Session == nil {
		c.Session = &SessionConfig{}
	}
	s := c.Session
	if s.Player == "" {
		s.Player = "You"
	}
	if s.BigBlind == 0 {
		s.BigBlind = defaultBigBlind
	}
	if s.Stake == 0 {
		s.Stake = defaultStake
	}
	if s.ThinkMin == "" {
		s.ThinkMin = "1s"
	}
	if s.ThinkMax == "" {
		s.ThinkMax = "3s"
	}

	if len(c.Bots) == 0 {
		c.Bots = DefaultRoster()
	}
	for i := range c.Bots {
		if c.Bots[i].Stack == 0 {
			c.Bots[i].Stack = defaultBotStack
		}
	}

	if c.Ledger == nil {
		c.Ledger = &LedgerConfig{}
	}
	if c.Ledger.Driver == "" {
		c.Ledger.Driver = "file"
	}
	if c.Ledger.Path == "" {
		switch c.Ledger.Driver {
		case "sqlite":
			c.Ledger.Path = "pokernight.db"
		default:
			c.Ledger.Path = "pokernight.json"
		}
	}

	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = "pokernight.log"
	}
}

// ThinkTime returns the parsed bot thinking delay range.
func (s *SessionConfig) ThinkTime() (time.Duration, time.Duration, error) {
	lo, err := time.ParseDuration(s.ThinkMin)
	if err != nil {
		return 0, 0, fmt.Errorf("think_min: %w", err)
	}
	hi, err := time.ParseDuration(s.ThinkMax)
	if err != nil {
		return 0, 0, fmt.Errorf("think_max: %w", err)
	}
	return lo, hi, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	s := c.Session
	if s.BigBlind <= 0 {
		return fmt.Errorf("big_blind must be positive: %d", s.BigBlind)
	}
	if s.Stake <= 0 {
		return fmt.Errorf("stake must be positive: %d", s.Stake)
	}
	if s.HumanRaise < 0 {
		return fmt.Errorf("human_raise cannot be negative: %d", s.HumanRaise)
	}
	lo, hi, err := s.ThinkTime()
	if err != nil {
		return err
	}
	if lo < 0 || hi < lo {
		return fmt.Errorf("invalid think range %s..%s", s.ThinkMin, s.ThinkMax)
	}

	names := map[string]bool{strings.ToLower(s.Player): true}
	for _, bot := range c.Bots {
		key := strings.ToLower(bot.Name)
		if names[key] {
			return fmt.Errorf("duplicate seat name: %s", bot.Name)
		}
		names[key] = true
		if bot.Stack <= 0 {
			return fmt.Errorf("bot %s: stack must be positive: %d", bot.Name, bot.Stack)
		}
		if bot.Bluff < 0 || bot.Bluff > 1 {
			return fmt.Errorf("bot %s: bluff must be between 0 and 1: %.2f", bot.Name, bot.Bluff)
		}
	}

	switch c.Ledger.Driver {
	case "file", "sqlite":
		if c.Ledger.Path == "" {
			return fmt.Errorf("ledger driver %s needs a path", c.Ledger.Driver)
		}
	case "postgres":
		if c.Ledger.DSN == "" && os.Getenv("DATABASE_URL") == "" {
			return fmt.Errorf("ledger driver postgres needs a dsn or DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown ledger driver %q (want one of %s)", c.Ledger.Driver, strings.Join(Drivers, ", "))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	return nil
}
