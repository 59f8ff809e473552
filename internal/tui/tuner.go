package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cbegin/basslab-go/internal/pitch"
)

const meterWidth = 41

// Tuner is the input side of the tuner view. *tuner.Session implements it.
type Tuner interface {
	Start(ctx context.Context) error
	Running() bool
	Frame() (pitch.Reading, bool)
	Stop() error
}

type startedMsg struct{ err error }

type TunerModel struct {
	tuner    Tuner
	reading  pitch.Reading
	err      error
	quitting bool
}

func NewTuner(t Tuner) TunerModel {
	return TunerModel{tuner: t}
}

func (m TunerModel) start() tea.Cmd {
	t := m.tuner
	return func() tea.Msg {
		return startedMsg{err: t.Start(context.Background())}
	}
}

func (m TunerModel) Init() tea.Cmd {
	return m.start()
}

func (m TunerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			_ = m.tuner.Stop()
			return m, tea.Quit
		case " ":
			if m.tuner.Running() {
				_ = m.tuner.Stop()
				m.reading = pitch.Reading{}
				return m, nil
			}
			return m, m.start()
		}

	case startedMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		return m, tick()

	case frameMsg:
		reading, ok := m.tuner.Frame()
		if !ok {
			return m, nil
		}
		m.reading = reading
		return m, tick()
	}
	return m, nil
}

func (m TunerModel) View() string {
	if m.quitting {
		return ""
	}
	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render("basslab tuner"))
	out.WriteString("\n\n")

	switch {
	case m.err != nil:
		out.WriteString(warnStyle.Render(fmt.Sprintf("microphone unavailable: %v", m.err)))
		out.WriteString("\n")
	case !m.tuner.Running():
		out.WriteString(dimStyle.Render("stopped"))
		out.WriteString("\n")
	default:
		out.WriteString(m.noteView())
		out.WriteString("\n\n")
		out.WriteString(meter(m.reading))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(dimStyle.Render("space:start/stop  q:quit"))
	return out.String()
}

func (m TunerModel) noteView() string {
	r := m.reading
	if r.Note == "" {
		return noteStyle.Render("--")
	}
	style := warnStyle
	if r.InTune {
		style = goodStyle
	}
	note := noteStyle.Inherit(style).Render(r.Note)
	return fmt.Sprintf("%s %s", note, dimStyle.Render(fmt.Sprintf("%7.2f Hz  %+5.1f cents", r.Frequency, r.Cents)))
}

// meter draws cents from -50 to +50 with the center mark at zero.
func meter(r pitch.Reading) string {
	cells := []rune(strings.Repeat("·", meterWidth))
	center := meterWidth / 2
	cells[center] = '|'
	if r.Note == "" {
		return dimStyle.Render(string(cells))
	}
	pos := int(math.Round((r.Cents + 50) / 100 * float64(meterWidth-1)))
	pos = min(max(pos, 0), meterWidth-1)
	cells[pos] = '●'
	if r.InTune {
		return goodStyle.Render(string(cells))
	}
	return warnStyle.Render(string(cells))
}
