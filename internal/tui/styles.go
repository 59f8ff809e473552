// Package tui holds the terminal views: a chromatic tuner, a practice
// player and a step-sequencer beat maker.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// frameInterval is the redraw and detection rate, roughly one display frame.
const frameInterval = 16 * time.Millisecond

var (
	accent  = lipgloss.Color("#e0a458")
	muted   = lipgloss.Color("#6c6f85")
	good    = lipgloss.Color("#7ec699")
	warning = lipgloss.Color("#e06c75")

	headerStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(muted)
	goodStyle   = lipgloss.NewStyle().Foreground(good)
	warnStyle   = lipgloss.NewStyle().Foreground(warning)
	noteStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 2)
	hitStyle    = lipgloss.NewStyle().Foreground(accent)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	tabStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
)

type frameMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}
