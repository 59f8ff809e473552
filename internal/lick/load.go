package lick

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cbegin/basslab-go/internal/theory"
)

var (
	// ErrMalformed is returned for lick payloads missing required fields.
	ErrMalformed = errors.New("malformed lick")
	// ErrEmptySequence is returned when no playable step survives decoding.
	ErrEmptySequence = errors.New("lick has no notes")
)

type wireNote struct {
	MIDI   *int `json:"midi"`
	String *int `json:"string"`
	Fret   *int `json:"fret"`
}

type wireLick struct {
	Name          string            `json:"name"`
	Artist        string            `json:"artist"`
	Category      Category          `json:"category"`
	Description   string            `json:"description"`
	Difficulty    Difficulty        `json:"difficulty"`
	TimeSignature TimeSignature     `json:"timeSignature"`
	OriginalKey   string            `json:"originalKey"`
	Transposable  *bool             `json:"transposable"`
	Sequence      []json.RawMessage `json:"sequence"`
}

// Parse decodes a single lick. Unknown categories fall back to Funk and
// unknown time signatures to 4/4. Sequence entries that are null or 0 are
// rests; entries that are not a complete, playable note are dropped. When the
// payload carries no transposable flag, scales and arpeggios are transposable.
func Parse(data []byte) (Lick, error) {
	var w wireLick
	if err := json.Unmarshal(data, &w); err != nil {
		return Lick{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return w.lick()
}

func (w wireLick) lick() (Lick, error) {
	if w.Name == "" {
		return Lick{}, fmt.Errorf("%w: missing name", ErrMalformed)
	}
	if w.Sequence == nil {
		return Lick{}, fmt.Errorf("%w: missing sequence", ErrMalformed)
	}
	l := Lick{
		Name:          w.Name,
		Artist:        w.Artist,
		Category:      w.Category,
		Description:   w.Description,
		Difficulty:    w.Difficulty,
		TimeSignature: w.TimeSignature,
		OriginalKey:   w.OriginalKey,
		Sequence:      decodeSequence(w.Sequence),
	}
	if !l.Category.Valid() {
		l.Category = CategoryFunk
	}
	if !l.TimeSignature.Valid() {
		l.TimeSignature = FourFour
	}
	if w.Transposable != nil {
		l.Transposable = *w.Transposable
	} else {
		l.Transposable = l.Category == CategoryScale || l.Category == CategoryArpeggio
	}
	if l.Sequence.NoteCount() == 0 {
		return Lick{}, fmt.Errorf("%w: %q", ErrEmptySequence, l.Name)
	}
	return l, nil
}

func decodeSequence(raw []json.RawMessage) theory.Sequence {
	seq := make(theory.Sequence, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if bytes.Equal(item, []byte("null")) || bytes.Equal(item, []byte("0")) {
			seq = append(seq, nil)
			continue
		}
		var wn wireNote
		if err := json.Unmarshal(item, &wn); err != nil {
			continue
		}
		if wn.MIDI == nil || wn.String == nil || wn.Fret == nil {
			continue
		}
		note := theory.Note{MIDI: *wn.MIDI, String: *wn.String, Fret: *wn.Fret}
		if !note.Valid() {
			continue
		}
		seq = append(seq, &note)
	}
	return seq
}

// Decode reads a JSON array of licks.
func Decode(r io.Reader) ([]Lick, error) {
	var raw []wireLick
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode licks: %w", err)
	}
	out := make([]Lick, 0, len(raw))
	for i, w := range raw {
		l, err := w.lick()
		if err != nil {
			return nil, fmt.Errorf("lick %d: %w", i, err)
		}
		out = append(out, l)
	}
	return out, nil
}

// LoadFile reads licks from a JSON file.
func LoadFile(path string) ([]Lick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
