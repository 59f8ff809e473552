package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/basslab-go/internal/lick"
	"github.com/cbegin/basslab-go/internal/scheduler"
)

const (
	ticksPerQuarter = 960
	ticksPerStep    = ticksPerQuarter / 4
	stepsPerBar     = 16

	bassChannel  = 0
	drumChannel  = 9
	bassProgram  = 33 // GM Electric Bass (finger)
	bassVelocity = 100
	drumVelocity = 110
)

// General MIDI percussion keys.
var drumKeys = [lick.DrumCount]uint8{
	lick.Kick:  36,
	lick.Snare: 38,
	lick.HiHat: 42,
	lick.Clap:  39,
	lick.Tom:   45,
}

// ErrInvalidExport is returned for non-positive tempo or bar counts.
var ErrInvalidExport = errors.New("invalid export settings")

type timed struct {
	tick uint32
	on   bool
	msg  midi.Message
}

// WriteMIDI writes bars of the lick over the drum pattern as a format-1
// Standard MIDI File: a tempo track, a bass track and a GM drum track. Steps
// map to ticks the same way the live scheduler maps them to time.
func WriteMIDI(w io.Writer, l lick.Lick, pattern lick.DrumPattern, tempo float64, bars int) error {
	if tempo <= 0 || math.IsInf(tempo, 0) || math.IsNaN(tempo) || bars <= 0 {
		return fmt.Errorf("%w: tempo %v, bars %d", ErrInvalidExport, tempo, bars)
	}
	prog := scheduler.PracticeProgram{
		Sequence: l.Sequence,
		Pattern:  pattern,
		Beats:    l.TimeSignature.Beats(),
	}
	gate := uint32(2 * ticksPerStep)
	if lick.Is16th(len(l.Sequence), prog.BeatsPerBar()) {
		gate = ticksPerStep
	}

	var bass, drums []timed
	total := bars * stepsPerBar
	for step := 0; step < total; step++ {
		at := uint32(step * ticksPerStep)
		prog.Events(step%prog.Length(), func(ev scheduler.Event) {
			switch ev.Kind {
			case scheduler.KindBass:
				key := uint8(ev.Note.MIDI)
				bass = append(bass,
					timed{at, true, midi.NoteOn(bassChannel, key, bassVelocity)},
					timed{at + gate - 1, false, midi.NoteOff(bassChannel, key)})
			case scheduler.KindDrum:
				key := drumKeys[ev.Drum]
				drums = append(drums,
					timed{at, true, midi.NoteOn(drumChannel, key, drumVelocity)},
					timed{at + ticksPerStep - 1, false, midi.NoteOff(drumChannel, key)})
			}
		})
	}
	end := uint32(total * ticksPerStep)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var meta smf.Track
	if l.Name != "" {
		meta.Add(0, smf.MetaTrackSequenceName(l.Name))
	}
	meta.Add(0, smf.MetaMeter(uint8(prog.BeatsPerBar()), 4))
	meta.Add(0, smf.MetaTempo(tempo))
	meta.Close(end)
	if err := s.Add(meta); err != nil {
		return fmt.Errorf("add tempo track: %w", err)
	}

	head := []timed{{0, true, midi.ProgramChange(bassChannel, bassProgram)}}
	if err := s.Add(track("Bass", append(head, bass...), end)); err != nil {
		return fmt.Errorf("add bass track: %w", err)
	}
	if err := s.Add(track("Drums", drums, end)); err != nil {
		return fmt.Errorf("add drum track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return nil
}

// track orders events by tick, note-offs first, and converts them to deltas.
func track(name string, events []timed, end uint32) smf.Track {
	slices.SortStableFunc(events, func(a, b timed) int {
		if a.tick != b.tick {
			if a.tick < b.tick {
				return -1
			}
			return 1
		}
		switch {
		case a.on == b.on:
			return 0
		case !a.on:
			return -1
		default:
			return 1
		}
	})
	var t smf.Track
	t.Add(0, smf.MetaTrackSequenceName(name))
	var last uint32
	for _, ev := range events {
		t.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	t.Close(end - last)
	return t
}
