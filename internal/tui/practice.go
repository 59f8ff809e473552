package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	basslab "github.com/cbegin/basslab-go"
	"github.com/cbegin/basslab-go/internal/lick"
	"github.com/cbegin/basslab-go/internal/synth"
	"github.com/cbegin/basslab-go/internal/theory"
)

const (
	MinTempo  = 40
	MaxTempo  = 200
	tempoStep = 5
)

// Player runs the practice loop. *basslab.Studio implements it.
type Player interface {
	PlayPractice(p basslab.PracticeSettings) error
	Reconfigure(s basslab.Settings) error
	Stop()
	Playing() bool
	CurrentBeat() (int, bool)
}

type PracticeModel struct {
	player   Player
	licks    []lick.Lick
	index    int
	settings basslab.PracticeSettings
	beat     int
	onBeat   bool
	err      error
	quitting bool
}

// NewPractice starts on settings.Lick, which is added to licks when it is
// not already there by name.
func NewPractice(p Player, licks []lick.Lick, settings basslab.PracticeSettings) PracticeModel {
	licks = slices.Clone(licks)
	index := slices.IndexFunc(licks, func(l lick.Lick) bool { return l.Name == settings.Lick.Name })
	if index < 0 {
		licks = append(licks, settings.Lick)
		index = len(licks) - 1
	}
	if len(settings.Pattern.Steps) == 0 {
		settings.Pattern = lick.DefaultPattern()
	}
	settings.Tempo = clampTempo(settings.Tempo)
	return PracticeModel{player: p, licks: licks, index: index, settings: settings}
}

// Settings returns what the loop currently plays.
func (m PracticeModel) Settings() basslab.PracticeSettings { return m.settings }

func (m PracticeModel) Init() tea.Cmd {
	return tick()
}

func (m PracticeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.player.Stop()
			return m, tea.Quit

		case " ":
			if m.player.Playing() {
				m.player.Stop()
				m.err = nil
			} else {
				m.err = m.player.PlayPractice(m.settings)
			}
			return m, nil

		case "+", "=":
			m.settings.Tempo = clampTempo(m.settings.Tempo + tempoStep)
		case "-", "_":
			m.settings.Tempo = clampTempo(m.settings.Tempo - tempoStep)
		case "b":
			m.settings.Kit.Bass = next(synth.BassSounds, synth.ParseBassSound(string(m.settings.Kit.Bass)))
		case "p":
			m.settings.Pattern = nextPattern(m.settings.Pattern)
		case "m":
			m.settings.DrumsMuted = !m.settings.DrumsMuted
		case "k":
			if !m.settings.Lick.Transposable {
				return m, nil
			}
			m.settings.Key = next(theory.Keys, m.settings.Key)
		case "n":
			m.selectLick(m.index + 1)
		case "N":
			m.selectLick(m.index - 1)
		default:
			return m, nil
		}
		m.apply()

	case frameMsg:
		m.beat, m.onBeat = m.player.CurrentBeat()
		return m, tick()
	}
	return m, nil
}

func (m *PracticeModel) selectLick(i int) {
	n := len(m.licks)
	m.index = ((i % n) + n) % n
	m.settings.Lick = m.licks[m.index]
	m.settings.Key = ""
}

// apply hands the new settings to a running loop. A stopped loop picks them
// up on the next play.
func (m *PracticeModel) apply() {
	if !m.player.Playing() {
		return
	}
	m.err = m.player.Reconfigure(m.settings)
}

func (m PracticeModel) View() string {
	if m.quitting {
		return ""
	}
	s := m.settings
	l := s.Lick
	if s.Key != "" {
		l = l.Transpose(s.Key)
	}
	key := s.Key
	if key == "" {
		key = l.OriginalKey
	}

	playState := "STOP"
	if m.player.Playing() {
		playState = "PLAY"
	}
	drums := s.Pattern.Name
	if s.DrumsMuted {
		drums += " (muted)"
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(fmt.Sprintf("basslab  %s  %3.0fbpm  %s", playState, s.Tempo, l.Name)))
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(fmt.Sprintf("%s · %s · %s · key %s", l.Category, l.Difficulty, l.TimeSignature, key)))
	out.WriteString("\n\n")
	out.WriteString(tabStyle.Render(strings.TrimRight(l.Tablature(), "\n")))
	out.WriteString("\n\n")
	out.WriteString(m.beatView(l.TimeSignature.Beats()))
	out.WriteString("\n\n")
	out.WriteString(fmt.Sprintf("bass %s   drums %s", s.Kit.Bass, drums))
	out.WriteString("\n")
	if m.err != nil {
		out.WriteString(warnStyle.Render(m.err.Error()))
		out.WriteString("\n")
	}
	out.WriteString("\n")
	out.WriteString(dimStyle.Render("space:play  +/-:tempo  b:bass  p:pattern  m:mute  k:key  n/N:lick  q:quit"))
	return out.String()
}

func (m PracticeModel) beatView(beats int) string {
	dots := make([]string, beats)
	for i := range dots {
		if m.onBeat && i == m.beat {
			dots[i] = goodStyle.Render("●")
		} else {
			dots[i] = dimStyle.Render("○")
		}
	}
	return strings.Join(dots, " ")
}

func clampTempo(t float64) float64 {
	if t == 0 {
		t = basslab.DefaultTempo
	}
	return min(max(t, MinTempo), MaxTempo)
}

// next returns the item after cur, or the first item when cur is absent.
func next[T comparable](items []T, cur T) T {
	i := slices.Index(items, cur)
	return items[(i+1)%len(items)]
}

func nextPattern(cur lick.DrumPattern) lick.DrumPattern {
	patterns := lick.Patterns()
	i := slices.IndexFunc(patterns, func(p lick.DrumPattern) bool { return p.Name == cur.Name })
	return patterns[(i+1)%len(patterns)]
}
