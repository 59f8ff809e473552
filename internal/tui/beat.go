package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	basslab "github.com/cbegin/basslab-go"
	"github.com/cbegin/basslab-go/internal/lick"
)

const (
	MinBeatTempo = 60
	MaxBeatTempo = 180
)

// BeatPlayer runs the drum loop. *basslab.Studio implements it.
type BeatPlayer interface {
	PlayBeat(b basslab.BeatSettings) error
	Reconfigure(s basslab.Settings) error
	Stop()
	Playing() bool
	CurrentStep() (int, bool)
}

// BeatModel is an editable drum grid with one lane per drum. The grid is
// locked while the loop plays; tempo changes apply immediately.
type BeatModel struct {
	player   BeatPlayer
	settings basslab.BeatSettings
	row, col int
	step     int
	onStep   bool
	err      error
	quitting bool
}

// NewBeatMaker edits settings.Pattern, or the starter grid when it is empty.
func NewBeatMaker(p BeatPlayer, settings basslab.BeatSettings) BeatModel {
	if len(settings.Pattern.Steps) == 0 {
		settings.Pattern = lick.StarterGrid()
	}
	settings.Pattern.Steps = slices.Clone(settings.Pattern.Steps)
	settings.Tempo = clampBeatTempo(settings.Tempo)
	return BeatModel{player: p, settings: settings}
}

// Settings returns the grid and tempo as they stand.
func (m BeatModel) Settings() basslab.BeatSettings { return m.settings }

func (m BeatModel) Init() tea.Cmd {
	return tick()
}

func (m BeatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.key(msg.String())
	case frameMsg:
		m.step, m.onStep = m.player.CurrentStep()
		return m, tick()
	}
	return m, nil
}

func (m BeatModel) key(k string) (tea.Model, tea.Cmd) {
	width := len(m.settings.Pattern.Steps)
	switch k {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		m.player.Stop()
		return m, tea.Quit

	case " ":
		if m.player.Playing() {
			m.player.Stop()
			m.err = nil
		} else {
			m.err = m.player.PlayBeat(m.settings)
		}

	case "up", "k":
		m.row = (m.row + int(lick.DrumCount) - 1) % int(lick.DrumCount)
	case "down", "j":
		m.row = (m.row + 1) % int(lick.DrumCount)
	case "left", "h":
		m.col = (m.col + width - 1) % width
	case "right", "l":
		m.col = (m.col + 1) % width

	case "+", "=":
		m.setTempo(m.settings.Tempo + tempoStep)
	case "-", "_":
		m.setTempo(m.settings.Tempo - tempoStep)

	case "x", "enter":
		if !m.player.Playing() {
			m.settings.Pattern = m.settings.Pattern.Toggle(lick.Drum(m.row), m.col)
		}
	case "c":
		if !m.player.Playing() {
			m.settings.Pattern = lick.DrumPattern{Name: "Custom", Steps: make([]lick.Step, lick.GridSteps)}
			m.col = min(m.col, lick.GridSteps-1)
		}
	case "p":
		if !m.player.Playing() {
			p := nextPattern(m.settings.Pattern)
			p.Steps = slices.Clone(p.Steps)
			m.settings.Pattern = p
			m.col = min(m.col, len(p.Steps)-1)
		}
	}
	return m, nil
}

func (m *BeatModel) setTempo(t float64) {
	m.settings.Tempo = clampBeatTempo(t)
	if m.player.Playing() {
		m.err = m.player.Reconfigure(m.settings)
	}
}

func (m BeatModel) View() string {
	if m.quitting {
		return ""
	}
	playState := "STOP"
	if m.player.Playing() {
		playState = "PLAY"
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(fmt.Sprintf("beat maker  %s  %3.0fbpm  %s", playState, m.settings.Tempo, m.settings.Pattern.Name)))
	out.WriteString("\n\n")
	for d := lick.Kick; d < lick.DrumCount; d++ {
		out.WriteString(dimStyle.Render(fmt.Sprintf("%-6s", d)))
		for i, st := range m.settings.Pattern.Steps {
			out.WriteString(" ")
			out.WriteString(m.cell(d, i, st[d]))
		}
		out.WriteString("\n")
	}
	out.WriteString(strings.Repeat(" ", 6))
	for i := range m.settings.Pattern.Steps {
		mark := " "
		if m.onStep && i == m.step {
			mark = goodStyle.Render("▲")
		}
		out.WriteString(" " + mark)
	}
	out.WriteString("\n")
	if m.err != nil {
		out.WriteString(warnStyle.Render(m.err.Error()))
		out.WriteString("\n")
	}
	out.WriteString("\n")
	help := "space:play  arrows:move  x:toggle  c:clear  p:pattern  +/-:tempo  q:quit"
	if m.player.Playing() {
		help = "space:stop  +/-:tempo  q:quit  (stop to edit the grid)"
	}
	out.WriteString(dimStyle.Render(help))
	return out.String()
}

func (m BeatModel) cell(d lick.Drum, i int, on bool) string {
	c, style := "·", dimStyle
	if on {
		c, style = "■", hitStyle
	}
	if !m.player.Playing() && int(d) == m.row && i == m.col {
		style = cursorStyle
	}
	return style.Render(c)
}

func clampBeatTempo(t float64) float64 {
	if t == 0 {
		t = 120
	}
	return min(max(t, MinBeatTempo), MaxBeatTempo)
}
