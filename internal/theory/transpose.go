package theory

// TransposeSequence shifts seq from one key to another.
// On an unknown key the original sequence is returned with the error.
// A zero shift returns seq itself.
func TransposeSequence(seq Sequence, fromKey, toKey string) (Sequence, error) {
	shift, err := SemitoneShift(fromKey, toKey)
	if err != nil {
		return seq, err
	}
	out, _ := Shift(seq, shift)
	return out, nil
}

// Shift moves every note by semitones on its own string. A note whose fret
// would leave 0..MaxFret is kept unmodified; the indexes of those notes are
// returned. Notes are not re-voiced onto another string.
func Shift(seq Sequence, semitones int) (Sequence, []int) {
	if semitones == 0 {
		return seq, nil
	}
	out := make(Sequence, len(seq))
	var kept []int
	for i, n := range seq {
		if n == nil {
			continue
		}
		fret := n.Fret + semitones
		if fret < 0 || fret > MaxFret {
			out[i] = n
			kept = append(kept, i)
			continue
		}
		out[i] = &Note{MIDI: n.MIDI + semitones, String: n.String, Fret: fret}
	}
	return out, kept
}
