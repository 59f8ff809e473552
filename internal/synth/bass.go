package synth

import (
	"github.com/cbegin/basslab-go/internal/dsp"
	"github.com/cbegin/basslab-go/internal/effects"
	"github.com/cbegin/basslab-go/internal/theory"
)

// Bass voices share one envelope shape: a 10 ms linear attack to the
// preset's peak and an exponential release to 0.01.

type pBass struct{}

func (pBass) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	osc := dsp.NewOscillator(sr, dsp.Square, theory.MIDIToFrequency(pitch))
	comp := effects.NewCompressor(sr, effects.CompressorParams{
		ThresholdDB: -18,
		Ratio:       4,
		AttackMs:    3,
		ReleaseMs:   60,
		MakeupDB:    4,
	})
	return dsp.NewGraph(volume).Connect(path(at, at+0.25, []dsp.Source{osc},
		dsp.NewBiquad(sr, dsp.Lowpass, 350, dsp.DefaultQ),
		bassEnvelope(at, 0.6, 0.25),
		dsp.NewInsert(comp),
	))
}

type jBass struct{}

func (jBass) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	f := theory.MIDIToFrequency(pitch)
	return dsp.NewGraph(volume).Connect(path(at, at+0.4,
		[]dsp.Source{
			dsp.NewOscillator(sr, dsp.Sawtooth, f).Detune(-4),
			dsp.NewOscillator(sr, dsp.Sawtooth, f).Detune(4),
		},
		dsp.NewBiquad(sr, dsp.Lowpass, 1500, dsp.DefaultQ),
		bassEnvelope(at, 0.3, 0.4),
	))
}

// mutedPick is unpitched: a short noise burst through a narrow bandpass.
type mutedPick struct{}

func (mutedPick) Synthesize(at float64, _ int, volume float64, sr int) *dsp.Graph {
	return dsp.NewGraph(volume).Connect(path(at, at+0.15,
		[]dsp.Source{dsp.NewNoise(sr, dsp.White, 0.15)},
		dsp.NewBiquad(sr, dsp.Bandpass, 800, 5),
		bassEnvelope(at, 0.5, 0.15),
	))
}

// subSynth lets the sine ring 0.1 s past the envelope.
type subSynth struct{}

func (subSynth) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	osc := dsp.NewOscillator(sr, dsp.Sine, theory.MIDIToFrequency(pitch))
	return dsp.NewGraph(volume).Connect(path(at, at+0.4, []dsp.Source{osc},
		bassEnvelope(at, 0.8, 0.3),
	))
}

type classicBass struct{}

func (classicBass) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	osc := dsp.NewOscillator(sr, dsp.Sawtooth, theory.MIDIToFrequency(pitch))
	return dsp.NewGraph(volume).Connect(path(at, at+0.4, []dsp.Source{osc},
		dsp.NewBiquad(sr, dsp.Lowpass, 400, dsp.DefaultQ),
		bassEnvelope(at, 0.7, 0.4),
	))
}

// synthBassQ approximates a 10 dB resonance peak as a linear Q.
const synthBassQ = 3.2

type synthBass struct{}

func (synthBass) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	const length = 0.4
	osc := dsp.NewOscillator(sr, dsp.Square, theory.MIDIToFrequency(pitch))
	lp := dsp.NewBiquad(sr, dsp.Lowpass, 5000, synthBassQ)
	lp.Frequency.SetValueAtTime(5000, at).ExponentialRampToValueAtTime(200, at+0.75*length)
	return dsp.NewGraph(volume).Connect(path(at, at+length, []dsp.Source{osc},
		lp,
		bassEnvelope(at, 0.5, length),
	))
}

type electricBass struct{}

func (electricBass) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	f := theory.MIDIToFrequency(pitch)
	drive := effects.NewDistortion(sr, effects.DistortionParams{
		Curve: effects.CurveTanh,
		Drive: 1.5,
		Level: 1,
	})
	return dsp.NewGraph(volume).Connect(path(at, at+0.4,
		[]dsp.Source{
			dsp.NewOscillator(sr, dsp.Sawtooth, f).Detune(-5),
			dsp.NewOscillator(sr, dsp.Sawtooth, f).Detune(5),
		},
		dsp.NewBiquad(sr, dsp.Lowpass, 1200, dsp.DefaultQ),
		bassEnvelope(at, 0.4, 0.4),
		dsp.NewInsert(drive),
	))
}
