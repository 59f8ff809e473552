package theory

import "math"

const (
	// ReferencePitch is the frequency of A4 in Hz.
	ReferencePitch = 440.0
	// ReferenceMIDI is the MIDI number of A4.
	ReferenceMIDI = 69
	// MaxFret is the highest playable fret.
	MaxFret = 24
	// StringCount is the number of strings on a standard bass.
	StringCount = 4
)

// NoteNames is the chromatic set starting at C.
var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// StringNames maps string index to its label. Index 0 is the highest string.
var StringNames = [StringCount]string{"G", "D", "A", "E"}

// OpenStrings holds the MIDI pitch of each open string in standard EADG tuning.
var OpenStrings = [StringCount]int{43, 38, 33, 28}

// Note is one fretted pitch in a lick. Notes are never mutated after creation.
type Note struct {
	MIDI   int `json:"midi"`
	String int `json:"string"`
	Fret   int `json:"fret"`
}

// Valid reports whether the note sits on a real string and fret.
func (n Note) Valid() bool {
	return n.String >= 0 && n.String < StringCount && n.Fret >= 0 && n.Fret <= MaxFret
}

// Sequence is the step list of a lick. A nil entry is a rest.
type Sequence []*Note

// NoteCount returns the number of non-rest steps.
func (s Sequence) NoteCount() int {
	n := 0
	for _, note := range s {
		if note != nil {
			n++
		}
	}
	return n
}

// MIDIToFrequency converts a MIDI number to Hz in 12-tone equal temperament.
func MIDIToFrequency(midi int) float64 {
	return ReferencePitch * math.Pow(2, float64(midi-ReferenceMIDI)/12)
}

// Pitch is the nearest equal-tempered note to a frequency.
type Pitch struct {
	Name   string
	MIDI   int
	Octave int
	Cents  float64
}

// FrequencyToPitch maps freq to the nearest note and its deviation in cents.
// freq must be positive.
func FrequencyToPitch(freq float64) Pitch {
	midi := int(math.Round(12*math.Log2(freq/ReferencePitch))) + ReferenceMIDI
	exact := MIDIToFrequency(midi)
	return Pitch{
		Name:   NoteName(midi),
		MIDI:   midi,
		Octave: midi/12 - 1,
		Cents:  1200 * math.Log2(freq/exact),
	}
}

// NoteName returns the pitch class name of a MIDI number.
func NoteName(midi int) string {
	pc := midi % 12
	if pc < 0 {
		pc += 12
	}
	return NoteNames[pc]
}
