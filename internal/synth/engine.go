package synth

import (
	"github.com/cbegin/basslab-go/internal/dsp"
	"github.com/cbegin/basslab-go/internal/scheduler"
)

// Output is where finished graphs go. It also provides the clock the graphs
// are scheduled against.
type Output interface {
	Now() float64
	SampleRate() int
	Schedule(g *dsp.Graph)
}

// Engine turns (time, channel, pitch) triggers into scheduled graphs. It
// keeps no per-note state: each call builds a fresh graph that runs to
// completion on its own.
type Engine struct {
	out Output
}

func New(out Output) *Engine {
	return &Engine{out: out}
}

// Play schedules one hit at clock time at. Drum channels ignore pitch.
func (e *Engine) Play(at float64, c Channel, kit Kit, pitch int) *dsp.Graph {
	g := kit.Voice(c).Synthesize(at, pitch, kit.Volume(c), e.out.SampleRate())
	e.out.Schedule(g)
	return g
}

// Preview plays one bass note immediately at full volume and returns its
// sources so the caller can cut it off.
func (e *Engine) Preview(sound BassSound, pitch int) []dsp.Source {
	v := bassVoices[ParseBassSound(string(sound))]
	g := v.Synthesize(e.out.Now(), pitch, 1, e.out.SampleRate())
	e.out.Schedule(g)
	return g.Sources()
}

// Trigger plays one scheduler event with kit. Bass events without a note
// are rests.
func (e *Engine) Trigger(ev scheduler.Event, kit Kit) {
	switch ev.Kind {
	case scheduler.KindBass:
		if ev.Note != nil {
			e.Play(ev.Time, Bass, kit, ev.Note.MIDI)
		}
	case scheduler.KindDrum:
		e.Play(ev.Time, DrumChannel(ev.Drum), kit, 0)
	}
}

// Sink adapts the engine to the scheduler. kit is copied, so later changes
// to the caller's kit need a new sink.
func (e *Engine) Sink(kit Kit) scheduler.Sink {
	return scheduler.SinkFunc(func(ev scheduler.Event) { e.Trigger(ev, kit) })
}
