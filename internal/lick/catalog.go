package lick

import "github.com/cbegin/basslab-go/internal/theory"

func n(midi, str, fret int) *theory.Note {
	return &theory.Note{MIDI: midi, String: str, Fret: fret}
}

var predefined = []Lick{
	{
		Name:          "Chromatic Warm-up",
		Artist:        "Standard Exercise",
		Category:      CategoryWarmUp,
		Description:   "A simple exercise to warm up your fingers and practice moving across strings. Play slowly and focus on clean notes.",
		Difficulty:    Beginner,
		TimeSignature: FourFour,
		OriginalKey:   "E",
		Sequence: theory.Sequence{
			n(29, 3, 1), n(30, 3, 2), n(31, 3, 3), n(32, 3, 4),
			n(34, 2, 1), n(35, 2, 2), n(36, 2, 3), n(37, 2, 4),
		},
	},
	{
		Name:          "Major Scale (G)",
		Artist:        "Music Theory",
		Category:      CategoryScale,
		Description:   "The G Major scale is a foundational building block for understanding melody and harmony. Practice this pattern until it becomes muscle memory.",
		Difficulty:    Beginner,
		TimeSignature: FourFour,
		OriginalKey:   "G",
		Transposable:  true,
		Sequence: theory.Sequence{
			n(31, 3, 3), n(33, 3, 5),
			n(35, 2, 2), n(36, 2, 3), n(38, 2, 5),
			n(40, 1, 2), n(42, 1, 4), n(43, 1, 5),
		},
	},
	{
		Name:          "Root-Fifth Pattern (G)",
		Artist:        "Classic Country/Rock",
		Category:      CategoryWalking,
		Description:   "The root-fifth pattern is the backbone of countless songs. This exercise helps lock in your timing and connection with the drummer.",
		Difficulty:    Beginner,
		TimeSignature: FourFour,
		OriginalKey:   "G",
		Sequence: theory.Sequence{
			n(31, 3, 3), n(31, 3, 3),
			n(35, 2, 2), n(35, 2, 2),
			n(38, 1, 0), n(38, 1, 0),
			n(35, 2, 2), n(35, 2, 2),
		},
	},
	{
		Name:          "Major Arpeggio (C)",
		Artist:        "Music Theory",
		Category:      CategoryArpeggio,
		Description:   "Playing the notes of a chord one by one. This C Major arpeggio (C-E-G) is a fundamental musical concept.",
		Difficulty:    Beginner,
		TimeSignature: FourFour,
		OriginalKey:   "C",
		Transposable:  true,
		Sequence: theory.Sequence{
			n(36, 2, 3), n(40, 1, 2), n(43, 1, 5), n(48, 0, 5),
			n(43, 1, 5), n(40, 1, 2), n(36, 2, 3), nil,
		},
	},
	{
		Name:          "Walking Bass (ii-V-I)",
		Artist:        "Jazz Standard",
		Category:      CategoryWalking,
		Description:   "A classic ii-V-I progression in C Major (Dm7-G7-Cmaj7). Focus on a smooth, swinging feel.",
		Difficulty:    Intermediate,
		TimeSignature: FourFour,
		OriginalKey:   "C",
		Sequence: theory.Sequence{
			n(38, 2, 5), n(41, 1, 3), n(42, 1, 4), n(43, 1, 5),
			n(35, 2, 2), n(36, 2, 3), n(37, 2, 4), n(31, 3, 3),
			n(40, 2, 7), n(39, 2, 6), n(38, 2, 5), n(37, 2, 4),
			n(33, 3, 5), n(32, 3, 4), n(31, 3, 3), nil,
		},
	},
	{
		Name:          "Minor Pentatonic (Am)",
		Artist:        "Blues/Rock Standard",
		Category:      CategoryScale,
		Description:   "The A minor pentatonic scale is essential for rock, blues, and funk. This two-octave pattern covers a lot of the fretboard.",
		Difficulty:    Intermediate,
		TimeSignature: FourFour,
		OriginalKey:   "Am",
		Transposable:  true,
		Sequence: theory.Sequence{
			n(33, 3, 5), n(36, 2, 3), n(38, 2, 5), n(40, 1, 2),
			n(43, 1, 5), n(45, 0, 2), n(48, 0, 5), n(50, 0, 7),
		},
	},
	{
		Name:          "Basic Funk Groove",
		Artist:        "James Brown Style",
		Category:      CategoryFunk,
		Description:   "A simple funk groove focusing on 16th note rests and syncopation. The key is feeling the 'one'.",
		Difficulty:    Intermediate,
		TimeSignature: FourFour,
		OriginalKey:   "G",
		Sequence: theory.Sequence{
			n(31, 3, 3), nil, nil, nil, n(31, 3, 3), nil, n(43, 1, 5), nil,
			nil, n(31, 3, 3), n(36, 2, 3), n(37, 2, 4), n(38, 2, 5), nil, nil, nil,
		},
	},
	{
		Name:          "12-Bar Blues Walk (A)",
		Artist:        "Blues Standard",
		Category:      CategoryWalking,
		Description:   "A simple walking bass line over the first four bars of a standard 12-bar blues in the key of A.",
		Difficulty:    Intermediate,
		TimeSignature: FourFour,
		OriginalKey:   "A",
		Sequence: theory.Sequence{
			n(33, 2, 0), n(33, 2, 0), n(35, 2, 2), n(35, 2, 2),
			n(36, 2, 3), n(36, 2, 3), n(37, 2, 4), n(37, 2, 4),
			n(38, 1, 0), n(38, 1, 0), n(40, 1, 2), n(40, 1, 2),
			n(41, 1, 3), n(41, 1, 3), n(40, 1, 2), n(40, 1, 2),
		},
	},
	{
		Name:          "Slap & Pop Octaves",
		Artist:        "Funk Essentials",
		Category:      CategoryFunk,
		Description:   "A fundamental slap bass exercise. Use your thumb to slap the E string and your index or middle finger to pop the D string.",
		Difficulty:    Advanced,
		TimeSignature: FourFour,
		OriginalKey:   "G",
		Sequence: theory.Sequence{
			n(31, 3, 3), n(43, 1, 5), n(31, 3, 3), n(43, 1, 5),
			n(31, 3, 3), n(43, 1, 5), n(31, 3, 3), n(43, 1, 5),
		},
	},
	{
		Name:          "Jaco 16th Note Groove",
		Artist:        "Jaco Pastorius Style",
		Category:      CategoryFunk,
		Description:   "A syncopated 16th note groove focusing on ghost notes and rhythmic precision, inspired by the legendary Jaco Pastorius.",
		Difficulty:    Advanced,
		TimeSignature: FourFour,
		OriginalKey:   "C",
		Sequence: theory.Sequence{
			nil, n(43, 0, 0), n(45, 0, 2), nil, n(48, 0, 5), nil, n(48, 0, 5), n(50, 0, 7),
			n(48, 0, 5), nil, n(45, 0, 2), nil, nil, nil, nil, nil,
		},
	},
	{
		Name:          "Tapping Arpeggio (Am)",
		Artist:        "Modern Technique",
		Category:      CategoryArpeggio,
		Description:   "A two-handed tapping exercise playing an A minor arpeggio across multiple octaves. Use your fretting hand for the low notes and tapping hand for high notes.",
		Difficulty:    Advanced,
		TimeSignature: FourFour,
		OriginalKey:   "Am",
		Transposable:  true,
		Sequence: theory.Sequence{
			n(33, 3, 5), n(40, 1, 2), n(45, 0, 2), n(48, 0, 5),
			n(52, 0, 9), n(57, 0, 14), n(52, 0, 9), n(45, 0, 2),
		},
	},
}

var patterns = []DrumPattern{
	{Name: "Rock Beat", Steps: []Step{
		row(1, 0, 1, 0, 0), row(0, 0, 1, 0, 0), row(0, 1, 1, 1, 0), row(0, 0, 1, 0, 0),
		row(1, 0, 1, 0, 0), row(0, 0, 1, 0, 0), row(0, 1, 1, 1, 0), row(0, 0, 1, 0, 1),
	}},
	{Name: "Funk Groove", Steps: []Step{
		row(1, 0, 1, 0, 0), row(0, 0, 1, 0, 0), row(0, 1, 0, 1, 0), row(1, 0, 1, 0, 0),
		row(0, 0, 1, 0, 0), row(0, 1, 1, 1, 0), row(1, 0, 0, 0, 0), row(0, 0, 1, 0, 1),
	}},
	{Name: "Swing Beat", Steps: []Step{
		row(1, 0, 1, 0, 0), row(0, 0, 0, 0, 0), row(0, 0, 1, 0, 0), row(0, 1, 1, 1, 0),
		row(0, 0, 0, 0, 1), row(0, 0, 1, 0, 0), row(1, 0, 1, 0, 0), row(0, 0, 0, 0, 0),
	}},
	{Name: "Shuffle", Steps: []Step{
		row(1, 0, 1, 0, 0), row(0, 0, 0, 0, 0), row(0, 1, 1, 1, 0), row(0, 0, 1, 0, 0),
		row(1, 0, 1, 0, 0), row(0, 0, 0, 0, 1), row(0, 1, 1, 1, 0), row(0, 0, 1, 0, 0),
	}},
	{Name: "Disco", Steps: []Step{
		row(1, 0, 0, 0, 0), row(0, 0, 1, 0, 0), row(0, 1, 0, 1, 0), row(0, 0, 1, 0, 0),
		row(1, 0, 0, 0, 0), row(0, 0, 1, 0, 0), row(0, 1, 0, 1, 0), row(0, 0, 1, 0, 0),
	}},
	{Name: "Hip-Hop", Steps: []Step{
		row(1, 0, 1, 0, 0), row(0, 0, 1, 0, 0), row(0, 1, 1, 1, 0), row(0, 0, 0, 0, 0),
		row(1, 0, 1, 0, 0), row(1, 0, 1, 0, 0), row(0, 1, 1, 1, 0), row(0, 0, 0, 0, 1),
	}},
	{Name: "Metronome", Steps: []Step{
		row(0, 1, 0, 0, 0), row(0, 0, 0, 0, 0), row(0, 0, 0, 0, 0), row(0, 0, 0, 0, 0),
		row(0, 1, 0, 0, 0), row(0, 0, 0, 0, 0), row(0, 0, 0, 0, 0), row(0, 0, 0, 0, 0),
	}},
}

// Licks returns the built-in lick catalog. The slice is a copy; the note
// sequences are shared and must not be modified.
func Licks() []Lick {
	out := make([]Lick, len(predefined))
	copy(out, predefined)
	return out
}

// Patterns returns the built-in drum patterns.
func Patterns() []DrumPattern {
	out := make([]DrumPattern, len(patterns))
	copy(out, patterns)
	return out
}

// DefaultPattern is used when a pattern name does not resolve.
func DefaultPattern() DrumPattern { return patterns[0] }

// PatternByName looks up a built-in pattern.
func PatternByName(name string) (DrumPattern, bool) {
	for _, p := range patterns {
		if p.Name == name {
			return p, true
		}
	}
	return DrumPattern{}, false
}

// ByName finds a lick by exact name.
func ByName(licks []Lick, name string) (Lick, bool) {
	for _, l := range licks {
		if l.Name == name {
			return l, true
		}
	}
	return Lick{}, false
}

// Names returns the names of licks, in order.
func Names(licks []Lick) []string {
	names := make([]string, len(licks))
	for i, l := range licks {
		names[i] = l.Name
	}
	return names
}
