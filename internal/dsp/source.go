package dsp

import (
	"math"
	"math/rand/v2"
	"sync/atomic"
)

// Source is a scheduled signal generator. Sample is called with strictly
// increasing clock times and returns 0 outside the source's active span.
type Source interface {
	Start(at float64)
	Stop(at float64)
	StartTime() float64
	StopTime() float64
	Sample(t float64) float64
}

// span tracks the start/stop times shared by every source. stop is stored
// as float64 bits so a preview can be cut short from outside the audio
// thread.
type span struct {
	start   float64
	stop    atomic.Uint64
	started bool
}

func (s *span) Start(at float64) {
	s.start = at
	s.started = true
	if s.stop.Load() == 0 {
		s.stop.Store(math.Float64bits(math.Inf(1)))
	}
}

// Stop sets the end time; a later call overrides an earlier one so a
// caller can cut a sound short.
func (s *span) Stop(at float64) { s.stop.Store(math.Float64bits(at)) }

func (s *span) StartTime() float64 { return s.start }

func (s *span) StopTime() float64 {
	if !s.started {
		return 0
	}
	return s.end()
}

func (s *span) end() float64 { return math.Float64frombits(s.stop.Load()) }

func (s *span) active(t float64) bool {
	return s.started && t >= s.start && t < s.end()
}

type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
)

// Oscillator is a periodic source. Square and sawtooth are band-limited
// with polyBLEP.
type Oscillator struct {
	span
	Wave      Waveform
	Frequency *Param

	sampleRate float64
	ratio      float64
	phase      float64
}

func NewOscillator(sampleRate int, wave Waveform, freq float64) *Oscillator {
	return &Oscillator{
		Wave:       wave,
		Frequency:  NewParam(freq),
		sampleRate: float64(sampleRate),
		ratio:      1,
	}
}

// Detune offsets the oscillator by cents.
func (o *Oscillator) Detune(cents float64) *Oscillator {
	o.ratio = math.Pow(2, cents/1200)
	return o
}

func (o *Oscillator) Sample(t float64) float64 {
	if !o.active(t) {
		return 0
	}
	dt := o.Frequency.ValueAt(t) * o.ratio / o.sampleRate
	p := o.phase
	o.phase += dt
	o.phase -= math.Floor(o.phase)

	switch o.Wave {
	case Square:
		out := -1.0
		if p < 0.5 {
			out = 1
		}
		out += polyBLEP(p, dt)
		out -= polyBLEP(math.Mod(p+0.5, 1), dt)
		return out
	case Sawtooth:
		return 2*p - 1 - polyBLEP(p, dt)
	case Triangle:
		return 1 - 4*math.Abs(p-0.5)
	default:
		return math.Sin(2 * math.Pi * p)
	}
}

func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

type NoiseColor int

const (
	White NoiseColor = iota
	Pink
	Brown
)

// Noise plays a pre-rendered buffer of random samples. The buffer is filled
// from the unseeded global generator, so every Noise sounds different.
type Noise struct {
	span
	buf        []float64
	sampleRate float64
}

// NewNoise renders seconds of noise in the given color.
func NewNoise(sampleRate int, color NoiseColor, seconds float64) *Noise {
	n := int(float64(sampleRate) * seconds)
	if n < 1 {
		n = 1
	}
	buf := make([]float64, n)
	switch color {
	case Pink:
		fillPink(buf)
	case Brown:
		fillBrown(buf)
	default:
		for i := range buf {
			buf[i] = rand.Float64()*2 - 1
		}
	}
	return &Noise{buf: buf, sampleRate: float64(sampleRate)}
}

// fillPink uses Paul Kellet's refined filter: a bank of one-pole lowpass
// stages whose sum approximates a -3 dB/octave slope.
func fillPink(buf []float64) {
	var b0, b1, b2, b3, b4, b5, b6 float64
	for i := range buf {
		w := rand.Float64()*2 - 1
		b0 = 0.99886*b0 + w*0.0555179
		b1 = 0.99332*b1 + w*0.0750759
		b2 = 0.96900*b2 + w*0.1538520
		b3 = 0.86650*b3 + w*0.3104856
		b4 = 0.55000*b4 + w*0.5329522
		b5 = -0.7616*b5 - w*0.0168980
		buf[i] = (b0 + b1 + b2 + b3 + b4 + b5 + b6 + w*0.5362) * 0.11
		b6 = w * 0.115926
	}
}

// fillBrown integrates white noise through a leaky accumulator.
func fillBrown(buf []float64) {
	var last float64
	for i := range buf {
		w := rand.Float64()*2 - 1
		last = (last + 0.02*w) / 1.02
		buf[i] = last * 3.5
	}
}

// StopTime is the earlier of the scheduled stop and the end of the buffer.
func (n *Noise) StopTime() float64 {
	if !n.started {
		return 0
	}
	return math.Min(n.end(), n.start+float64(len(n.buf))/n.sampleRate)
}

func (n *Noise) Sample(t float64) float64 {
	if !n.active(t) {
		return 0
	}
	i := int((t - n.start) * n.sampleRate)
	if i < 0 || i >= len(n.buf) {
		return 0
	}
	return n.buf[i]
}
