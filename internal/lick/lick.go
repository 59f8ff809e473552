package lick

import (
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/cbegin/basslab-go/internal/theory"
)

type Category string

const (
	CategoryWarmUp   Category = "Warm-up"
	CategoryScale    Category = "Scale"
	CategoryArpeggio Category = "Arpeggio"
	CategoryWalking  Category = "Walking Bass"
	CategoryFunk     Category = "Funk"
)

// Categories lists every known category.
var Categories = []Category{CategoryWarmUp, CategoryScale, CategoryArpeggio, CategoryWalking, CategoryFunk}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Difficulties lists every level in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

func (d Difficulty) Valid() bool {
	return d == Beginner || d == Intermediate || d == Advanced
}

type TimeSignature string

const (
	FourFour  TimeSignature = "4/4"
	ThreeFour TimeSignature = "3/4"
	SevenFour TimeSignature = "7/4"
)

// Beats returns the number of quarter-note beats per bar, 4 for unknown values.
func (ts TimeSignature) Beats() int {
	switch ts {
	case ThreeFour:
		return 3
	case SevenFour:
		return 7
	default:
		return 4
	}
}

func (ts TimeSignature) Valid() bool {
	return ts == FourFour || ts == ThreeFour || ts == SevenFour
}

// Lick is a named practice exercise.
type Lick struct {
	Name          string          `json:"name"`
	Artist        string          `json:"artist"`
	Category      Category        `json:"category"`
	Description   string          `json:"description"`
	Difficulty    Difficulty      `json:"difficulty"`
	TimeSignature TimeSignature   `json:"timeSignature"`
	OriginalKey   string          `json:"originalKey"`
	Transposable  bool            `json:"transposable"`
	Sequence      theory.Sequence `json:"sequence"`
}

var keySuffix = regexp.MustCompile(`\([A-Ga-g#bm]+\)`)

// Transpose returns the lick moved to key. Licks that are not transposable,
// unknown keys and a zero shift all return l unchanged. Notes that would fall
// off the fretboard keep their original pitch.
func (l Lick) Transpose(key string) Lick {
	if !l.Transposable {
		return l
	}
	shift, err := theory.SemitoneShift(l.OriginalKey, key)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"lick": l.Name,
			"from": l.OriginalKey,
			"to":   key,
		}).Error("invalid key for transposition")
		return l
	}
	if shift == 0 {
		return l
	}
	seq, kept := theory.Shift(l.Sequence, shift)
	for _, i := range kept {
		logrus.WithFields(logrus.Fields{
			"lick": l.Name,
			"step": i,
			"midi": l.Sequence[i].MIDI,
			"key":  key,
		}).Warn("transposed note is unplayable, keeping original")
	}
	out := l
	if loc := keySuffix.FindStringIndex(l.Name); loc != nil {
		out.Name = l.Name[:loc[0]] + "(" + key + ")" + l.Name[loc[1]:]
	}
	out.Sequence = seq
	return out
}

// Tablature renders the lick's sequence as ASCII tab.
func (l Lick) Tablature() string {
	return theory.Tablature(l.Sequence, l.TimeSignature.Beats())
}

// Is16th applies the fixed sequence-length heuristic used for playback: more
// than 8 steps and more than two steps per beat of the bar reads as
// sixteenth notes. It is a rule of thumb for the catalog, not a general
// rhythmic analysis.
func Is16th(length, beatsPerBar int) bool {
	return length > 8 && length > beatsPerBar*2
}
