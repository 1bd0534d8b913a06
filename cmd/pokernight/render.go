package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/pokernight/internal/game"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)
	handStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginTop(1)
	streetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	botStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0"))
	humanStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	bluffStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C00")).Italic(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	winStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// renderer prints table events as styled narration.
type renderer struct {
	mu     sync.Mutex
	out    io.Writer
	format *game.EventFormatter
	// interactive adds the between-hands prompt.
	interactive bool
	canContinue func() bool
}

func newRenderer(out io.Writer, interactive bool) *renderer {
	return &renderer{
		out:         out,
		interactive: interactive,
		format: game.NewEventFormatter(game.FormattingOptions{
			ShowNarration: interactive,
			ShowBluffs:    !interactive,
			ShowHoleCards: true,
		}),
	}
}

func (r *renderer) OnEvent(ev game.GameEvent) {
	line := r.format.Format(ev)

	var styled string
	switch ev := ev.(type) {
	case game.HandStartEvent:
		styled = handStyle.Render(line)
	case game.StreetChangeEvent:
		styled = streetStyle.Render(line)
	case game.PlayerTurnEvent:
		styled = promptStyle.Render(line)
	case game.PlayerActionEvent:
		switch {
		case ev.Kind == game.Human:
			styled = humanStyle.Render(line)
		case ev.Bluff:
			styled = bluffStyle.Render(line)
		default:
			styled = botStyle.Render(line)
		}
	case game.AllInEvent, game.EliminatedEvent:
		styled = alertStyle.Render(line)
	case game.HandEndEvent:
		styled = winStyle.Render(line)
		if r.interactive && ev.WinType != game.WinAbandoned && r.canContinue != nil && r.canContinue() {
			styled += "\n" + promptStyle.Render("Enter for the next hand, q to leave the table.")
		}
	case game.SessionEndEvent:
		styled = summaryStyle.Render(line)
	default:
		styled = line
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, styled)
}
