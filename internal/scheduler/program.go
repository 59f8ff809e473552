package scheduler

import (
	"github.com/cbegin/basslab-go/internal/lick"
	"github.com/cbegin/basslab-go/internal/theory"
)

// Program maps a step index to the events that sound on it. Steps run
// 0..Length()-1 and then wrap.
type Program interface {
	Length() int
	StepsPerBeat() int
	BeatsPerBar() int
	// Events reports the step's events in emission order. Time and Step are
	// filled in by the scheduler.
	Events(step int, emit func(Event))
}

// barSteps is one bar of sixteenth notes at four steps per beat.
const barSteps = 16

// PracticeProgram plays a lick over a drum pattern on a sixteenth-note grid.
//
// A lick counts as written in sixteenths when it has more than 8 notes and
// more than two per beat of its bar; such a lick advances one note per step.
// Anything shorter is treated as eighths and advances on even steps. This is
// a fixed length test, not a reading of the lick's rhythm.
type PracticeProgram struct {
	Sequence   theory.Sequence
	Pattern    lick.DrumPattern
	Beats      int
	DrumsMuted bool
}

func (p PracticeProgram) beats() int {
	if p.Beats <= 0 {
		return 4
	}
	return p.Beats
}

func (p PracticeProgram) sixteenths() bool {
	return lick.Is16th(len(p.Sequence), p.beats())
}

// Length wraps at the least common multiple of the drum bar and the lick's
// span in steps, so both keep their phase across the loop.
func (p PracticeProgram) Length() int {
	span := 2 * len(p.Sequence)
	if p.sixteenths() {
		span = len(p.Sequence)
	}
	if span == 0 {
		return barSteps
	}
	return lcm(barSteps, span)
}

func (p PracticeProgram) StepsPerBeat() int { return 4 }

func (p PracticeProgram) BeatsPerBar() int { return p.beats() }

func (p PracticeProgram) Events(step int, emit func(Event)) {
	even := (step%barSteps)%2 == 0
	if n := len(p.Sequence); n > 0 {
		var note *theory.Note
		switch {
		case p.sixteenths():
			note = p.Sequence[step%n]
		case even:
			note = p.Sequence[(step/2)%n]
		}
		if note != nil {
			emit(Event{Kind: KindBass, Note: note})
		}
	}
	if p.DrumsMuted || !even || len(p.Pattern.Steps) == 0 {
		return
	}
	emitRow(p.Pattern.Row((step%barSteps)/2), emit)
}

// BeatProgram loops a drum pattern alone on an eighth-note grid.
type BeatProgram struct {
	Pattern lick.DrumPattern
}

func (b BeatProgram) Length() int { return 8 }

func (b BeatProgram) StepsPerBeat() int { return 2 }

func (b BeatProgram) BeatsPerBar() int { return 4 }

func (b BeatProgram) Events(step int, emit func(Event)) {
	if len(b.Pattern.Steps) == 0 {
		return
	}
	emitRow(b.Pattern.Row(step), emit)
}

// PreviewTempo is the fixed tempo of a lick preview.
const PreviewTempo = 100

// PreviewProgram loops a lick's bass line alone, one note per step. Licks
// longer than 8 steps play as sixteenths and the rest as eighths; unlike
// PracticeProgram the time signature plays no part.
type PreviewProgram struct {
	Sequence theory.Sequence
}

func (p PreviewProgram) Length() int { return max(len(p.Sequence), 1) }

func (p PreviewProgram) StepsPerBeat() int {
	if len(p.Sequence) > 8 {
		return 4
	}
	return 2
}

func (p PreviewProgram) BeatsPerBar() int { return 4 }

func (p PreviewProgram) Events(step int, emit func(Event)) {
	n := len(p.Sequence)
	if n == 0 {
		return
	}
	if note := p.Sequence[step%n]; note != nil {
		emit(Event{Kind: KindBass, Note: note})
	}
}

func emitRow(row lick.Step, emit func(Event)) {
	for d := lick.Kick; d < lick.DrumCount; d++ {
		if row[d] {
			emit(Event{Kind: KindDrum, Drum: d})
		}
	}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}
