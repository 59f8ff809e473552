package dsp

import (
	"math"

	"github.com/cbegin/basslab-go/internal/effects"
)

// Processor transforms one mono sample at clock time t.
type Processor interface {
	Process(t, x float64) float64
}

type FilterType int

const (
	Lowpass FilterType = iota
	Highpass
	Bandpass
)

// DefaultQ is the Butterworth Q for lowpass and highpass.
const DefaultQ = math.Sqrt2 / 2

// Biquad is a second-order RBJ filter with an automatable cutoff.
// Coefficients are recomputed only when the cutoff changes.
type Biquad struct {
	Type      FilterType
	Frequency *Param
	Q         float64

	sampleRate     float64
	designed       float64
	b0, b1, b2     float64
	a1, a2         float64
	x1, x2, y1, y2 float64
}

func NewBiquad(sampleRate int, typ FilterType, cutoff, q float64) *Biquad {
	if q <= 0 {
		q = DefaultQ
	}
	return &Biquad{
		Type:       typ,
		Frequency:  NewParam(cutoff),
		Q:          q,
		sampleRate: float64(sampleRate),
		designed:   -1,
	}
}

func (f *Biquad) design(cutoff float64) {
	f.designed = cutoff
	cutoff = math.Max(10, math.Min(cutoff, 0.49*f.sampleRate))
	w0 := 2 * math.Pi * cutoff / f.sampleRate
	cos, sin := math.Cos(w0), math.Sin(w0)
	alpha := sin / (2 * f.Q)
	a0 := 1 + alpha
	switch f.Type {
	case Highpass:
		f.b0 = (1 + cos) / 2
		f.b1 = -(1 + cos)
		f.b2 = (1 + cos) / 2
	case Bandpass:
		f.b0 = alpha
		f.b1 = 0
		f.b2 = -alpha
	default:
		f.b0 = (1 - cos) / 2
		f.b1 = 1 - cos
		f.b2 = (1 - cos) / 2
	}
	f.b0 /= a0
	f.b1 /= a0
	f.b2 /= a0
	f.a1 = -2 * cos / a0
	f.a2 = (1 - alpha) / a0
}

func (f *Biquad) Process(t, x float64) float64 {
	if c := f.Frequency.ValueAt(t); c != f.designed {
		f.design(c)
	}
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// Gain scales by an automatable level; envelopes are Gains.
type Gain struct {
	Level *Param
}

func NewGain(level float64) *Gain {
	return &Gain{Level: NewParam(level)}
}

func (g *Gain) Process(t, x float64) float64 {
	return x * g.Level.ValueAt(t)
}

// Insert runs a stereo effect as a mono stage in a voice.
type Insert struct {
	fx effects.Effector
}

func NewInsert(fx effects.Effector) *Insert {
	return &Insert{fx: fx}
}

func (i *Insert) Process(_, x float64) float64 {
	l, _ := i.fx.Process(float32(x), float32(x))
	return float64(l)
}
