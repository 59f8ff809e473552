package theory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned when a key name is not in the key table.
var ErrUnknownKey = errors.New("unknown key")

// Keys lists the major keys offered for transposition.
var Keys = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var majorRoots = map[string]int{
	"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3, "E": 4, "F": 5,
	"F#": 6, "Gb": 6, "G": 7, "G#": 8, "Ab": 8, "A": 9, "A#": 10, "Bb": 10, "B": 11,
}

// Minor keys resolve to the pitch class of their own root.
var minorRoots = map[string]int{
	"Am": 9, "A#m": 10, "Bbm": 10, "Bm": 11, "Cm": 0, "C#m": 1, "Dm": 2,
	"D#m": 3, "Ebm": 3, "Em": 4, "Fm": 5, "F#m": 6, "Gm": 7, "G#m": 8,
}

// KeyRoot returns the root pitch class (0..11) of a major or minor key name.
func KeyRoot(key string) (int, bool) {
	if strings.HasSuffix(key, "m") {
		root, ok := minorRoots[key]
		return root, ok
	}
	root, ok := majorRoots[key]
	return root, ok
}

// SemitoneShift returns the interval from one key root to another.
// The result is not folded into an octave: C to B is +11.
func SemitoneShift(from, to string) (int, error) {
	src, ok := KeyRoot(from)
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownKey, from)
	}
	dst, ok := KeyRoot(to)
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownKey, to)
	}
	return dst - src, nil
}
