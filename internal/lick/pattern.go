package lick

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Drum identifies one percussion voice in a pattern row.
type Drum int

const (
	Kick Drum = iota
	Snare
	HiHat
	Clap
	Tom
	DrumCount
)

var drumNames = [DrumCount]string{"kick", "snare", "hihat", "clap", "tom"}

func (d Drum) String() string {
	if d < 0 || d >= DrumCount {
		return fmt.Sprintf("drum(%d)", int(d))
	}
	return drumNames[d]
}

// Step is one row of a drum pattern, indexed by Drum.
type Step [DrumCount]bool

// MarshalJSON encodes the row as 0/1 flags.
func (s Step) MarshalJSON() ([]byte, error) {
	var flags [DrumCount]int
	for i, on := range s {
		if on {
			flags[i] = 1
		}
	}
	return json.Marshal(flags)
}

// UnmarshalJSON accepts 0/1 flags or booleans. Missing trailing columns are off.
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) > int(DrumCount) {
		return fmt.Errorf("drum step has %d columns, want at most %d", len(raw), DrumCount)
	}
	*s = Step{}
	for i, v := range raw {
		switch x := v.(type) {
		case bool:
			s[i] = x
		case float64:
			s[i] = x != 0
		case nil:
		default:
			return fmt.Errorf("drum step column %d: unexpected %T", i, v)
		}
	}
	return nil
}

// DrumPattern is a named grid of drum steps.
type DrumPattern struct {
	Name  string `json:"name"`
	Steps []Step `json:"sequence"`
}

// Row returns the step at i, wrapped to the pattern length.
func (p DrumPattern) Row(i int) Step {
	if len(p.Steps) == 0 {
		return Step{}
	}
	i %= len(p.Steps)
	if i < 0 {
		i += len(p.Steps)
	}
	return p.Steps[i]
}

// row builds a Step from kick, snare, hihat, clap, tom flags.
func row(flags ...int) Step {
	var s Step
	for i, f := range flags {
		s[i] = f != 0
	}
	return s
}

// GridSteps is the width of an editable drum grid: one bar of eighth notes.
const GridSteps = 8

// ErrGrid is returned for drum grids that cannot be played.
var ErrGrid = errors.New("invalid drum grid")

// StarterGrid is the editor's opening groove: kick on 1 and 3, snare on 2
// and 4.
func StarterGrid() DrumPattern {
	p := DrumPattern{Name: "Custom", Steps: make([]Step, GridSteps)}
	p.Steps[0][Kick] = true
	p.Steps[4][Kick] = true
	p.Steps[2][Snare] = true
	p.Steps[6][Snare] = true
	return p
}

// CustomPattern builds a pattern from user-edited steps. It needs between 1
// and GridSteps rows; shorter grids repeat within the bar.
func CustomPattern(name string, steps []Step) (DrumPattern, error) {
	if len(steps) == 0 || len(steps) > GridSteps {
		return DrumPattern{}, fmt.Errorf("%w: %d steps, want 1 to %d", ErrGrid, len(steps), GridSteps)
	}
	return DrumPattern{Name: name, Steps: append([]Step(nil), steps...)}, nil
}

// Toggle returns a copy of p with drum d flipped at step i. Positions outside
// the grid leave it unchanged.
func (p DrumPattern) Toggle(d Drum, i int) DrumPattern {
	if d < 0 || d >= DrumCount || i < 0 || i >= len(p.Steps) {
		return p
	}
	p.Steps = append([]Step(nil), p.Steps...)
	p.Steps[i][d] = !p.Steps[i][d]
	return p
}

// ParseGrid reads a grid written one lane per drum, in kick, snare, hihat,
// clap, tom order, with lanes separated by '/'. 'x' or '1' is a hit and '.',
// '-' or '0' a rest. Lanes must have equal length; omitted lanes are silent.
//
//	x...x.../..x...x./xxxxxxxx
func ParseGrid(s string) (DrumPattern, error) {
	lanes := strings.Split(strings.TrimSpace(s), "/")
	if len(lanes) > int(DrumCount) {
		return DrumPattern{}, fmt.Errorf("%w: %d lanes, want at most %d", ErrGrid, len(lanes), DrumCount)
	}
	width := len(strings.TrimSpace(lanes[0]))
	steps := make([]Step, width)
	for d, lane := range lanes {
		lane = strings.TrimSpace(lane)
		if len(lane) != width {
			return DrumPattern{}, fmt.Errorf("%w: %s lane has %d steps, want %d", ErrGrid, Drum(d), len(lane), width)
		}
		for i, c := range lane {
			switch c {
			case 'x', 'X', '1':
				steps[i][d] = true
			case '.', '-', '0':
			default:
				return DrumPattern{}, fmt.Errorf("%w: %s lane has %q at step %d", ErrGrid, Drum(d), c, i+1)
			}
		}
	}
	return CustomPattern("Custom", steps)
}

// Grid writes p in the notation ParseGrid reads, always with every lane.
func (p DrumPattern) Grid() string {
	lanes := make([]string, DrumCount)
	for d := range DrumCount {
		var b strings.Builder
		for _, st := range p.Steps {
			if st[d] {
				b.WriteByte('x')
			} else {
				b.WriteByte('.')
			}
		}
		lanes[d] = b.String()
	}
	return strings.Join(lanes, "/")
}
