package synth

import "github.com/cbegin/basslab-go/internal/dsp"

// Voice builds the signal graph for one hit of a preset. The graph's sources
// are already started at at; the caller only has to render it.
// Drum voices ignore pitch.
type Voice interface {
	Synthesize(at float64, pitch int, volume float64, sampleRate int) *dsp.Graph
}

const (
	bassAttack = 0.01
	bassFloor  = 0.01

	drumAttack = 0.005
	drumFloor  = 0.001
)

// envelope rises linearly from silence to peak, then decays exponentially
// to floor at at+length.
func envelope(at, peak, attack, length, floor float64) *dsp.Gain {
	g := dsp.NewGain(0)
	g.Level.
		SetValueAtTime(0, at).
		LinearRampToValueAtTime(peak, at+attack).
		ExponentialRampToValueAtTime(floor, at+length)
	return g
}

func bassEnvelope(at, peak, length float64) *dsp.Gain {
	return envelope(at, peak, bassAttack, length, bassFloor)
}

func drumEnvelope(at, peak, length float64) *dsp.Gain {
	return envelope(at, peak, drumAttack, length, drumFloor)
}

// path starts the sources at at and schedules them to stop at stop.
func path(at, stop float64, sources []dsp.Source, chain ...dsp.Processor) dsp.Path {
	for _, s := range sources {
		s.Start(at)
		s.Stop(stop)
	}
	return dsp.Path{Sources: sources, Chain: chain}
}

// sweep is an oscillator whose frequency falls exponentially from one value
// to another over the given time.
func sweep(sr int, wave dsp.Waveform, at, from, to, over float64) *dsp.Oscillator {
	o := dsp.NewOscillator(sr, wave, from)
	o.Frequency.SetValueAtTime(from, at).ExponentialRampToValueAtTime(to, at+over)
	return o
}
