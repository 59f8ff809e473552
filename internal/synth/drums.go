package synth

import (
	"github.com/cbegin/basslab-go/internal/dsp"
	"github.com/cbegin/basslab-go/internal/effects"
)

// Every kick starts its sweep at 150 Hz.
const kickStart = 150

type acousticKick struct{}

func (acousticKick) Synthesize(at float64, _ int, volume float64, sr int) *dsp.Graph {
	osc := sweep(sr, dsp.Sine, at, kickStart, 0.01, 0.1)
	return dsp.NewGraph(volume).Connect(path(at, at+0.5, []dsp.Source{osc},
		drumEnvelope(at, 1, 0.5),
	))
}

type kick808 struct{}

func (kick808) Synthesize(at float64, _ int, volume float64, sr int) *dsp.Graph {
	osc := sweep(sr, dsp.Sine, at, kickStart, 45, 0.08)
	return dsp.NewGraph(volume).Connect(path(at, at+1.2, []dsp.Source{osc},
		drumEnvelope(at, 1, 1.2),
	))
}

type rockKick struct{}

func (rockKick) Synthesize(at float64, _ int, volume float64, sr int) *dsp.Graph {
	osc := sweep(sr, dsp.Sine, at, kickStart, 50, 0.07)
	drive := effects.NewDistortion(sr, effects.DistortionParams{
		Curve:  effects.CurveAsym,
		Drive:  3,
		Level:  0.8,
		ToneHz: 3000,
	})
	return dsp.NewGraph(volume).Connect(path(at, at+0.35, []dsp.Source{osc},
		drumEnvelope(at, 1, 0.35),
		dsp.NewInsert(drive),
	))
}

// thumpKick is a short low triangle with a noise click on the front.
type thumpKick struct{}

func (thumpKick) Synthesize(at float64, _ int, volume float64, sr int) *dsp.Graph {
	body := sweep(sr, dsp.Triangle, at, kickStart, 40, 0.05)
	return dsp.NewGraph(volume).
		Connect(path(at, at+0.2, []dsp.Source{body},
			dsp.NewBiquad(sr, dsp.Lowpass, 200, dsp.DefaultQ),
			drumEnvelope(at, 1, 0.2),
		)).
		Connect(path(at, at+0.01, []dsp.Source{dsp.NewNoise(sr, dsp.White, 0.01)},
			dsp.NewBiquad(sr, dsp.Highpass, 2000, dsp.DefaultQ),
			drumEnvelope(at, 0.3, 0.01),
		))
}

// snare builds a filtered noise layer and an optional tonal body.
type snare struct {
	color     dsp.NoiseColor
	filter    dsp.FilterType
	cutoff    float64
	q         float64
	peak      float64
	length    float64
	attack    float64
	body      dsp.Waveform
	bodyFreq  float64
	bodyDrop  float64
	bodyPeak  float64
	bodyDecay float64
}

func (s snare) Synthesize(at float64, _ int, volume float64, sr int) *dsp.Graph {
	g := dsp.NewGraph(volume).Connect(path(at, at+s.length,
		[]dsp.Source{dsp.NewNoise(sr, s.color, s.length)},
		dsp.NewBiquad(sr, s.filter, s.cutoff, s.q),
		envelope(at, s.peak, s.attack, s.length, drumFloor),
	))
	if s.bodyPeak > 0 {
		osc := sweep(sr, s.body, at, s.bodyFreq, s.bodyDrop, s.bodyDecay)
		g.Connect(path(at, at+s.bodyDecay, []dsp.Source{osc},
			drumEnvelope(at, s.bodyPeak, s.bodyDecay),
		))
	}
	return g
}

type acousticSnare struct{}

func (acousticSnare) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	return snare{
		color: dsp.White, filter: dsp.Highpass, cutoff: 1000, peak: 1, length: 0.2, attack: drumAttack,
		body: dsp.Triangle, bodyFreq: 180, bodyDrop: 160, bodyPeak: 0.5, bodyDecay: 0.1,
	}.Synthesize(at, pitch, volume, sr)
}

type snare808 struct{}

func (snare808) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	return snare{
		color: dsp.White, filter: dsp.Highpass, cutoff: 1500, peak: 0.8, length: 0.25, attack: drumAttack,
		body: dsp.Sine, bodyFreq: 240, bodyDrop: 160, bodyPeak: 0.7, bodyDecay: 0.15,
	}.Synthesize(at, pitch, volume, sr)
}

// brushSnare has no body and a slow swell.
type brushSnare struct{}

func (brushSnare) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	return snare{
		color: dsp.Pink, filter: dsp.Bandpass, cutoff: 3000, q: 0.8, peak: 0.6, length: 0.3, attack: 0.02,
	}.Synthesize(at, pitch, volume, sr)
}

type tightSnare struct{}

func (tightSnare) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	return snare{
		color: dsp.White, filter: dsp.Highpass, cutoff: 2000, peak: 1, length: 0.1, attack: drumAttack,
		body: dsp.Triangle, bodyFreq: 220, bodyDrop: 200, bodyPeak: 0.4, bodyDecay: 0.05,
	}.Synthesize(at, pitch, volume, sr)
}

type acousticHiHat struct{}

func (acousticHiHat) Synthesize(at float64, _ int, volume float64, sr int) *dsp.Graph {
	osc := dsp.NewOscillator(sr, dsp.Square, 440)
	return dsp.NewGraph(volume).Connect(path(at, at+0.05, []dsp.Source{osc},
		dsp.NewBiquad(sr, dsp.Bandpass, 10000, 1),
		drumEnvelope(at, 0.3, 0.05),
	))
}

// hihatRatios are the inharmonic square partials of the classic drum machine
// hat, relative to a 40 Hz base.
var hihatRatios = []float64{2, 3, 4.16, 5.43, 6.79, 8.21}

type hihat808 struct{}

func (hihat808) Synthesize(at float64, _ int, volume float64, sr int) *dsp.Graph {
	sources := make([]dsp.Source, len(hihatRatios))
	for i, r := range hihatRatios {
		sources[i] = dsp.NewOscillator(sr, dsp.Square, 40*r)
	}
	return dsp.NewGraph(volume).Connect(path(at, at+0.08, sources,
		dsp.NewBiquad(sr, dsp.Bandpass, 10000, 1),
		dsp.NewBiquad(sr, dsp.Highpass, 7000, dsp.DefaultQ),
		drumEnvelope(at, 0.3/float64(len(sources)), 0.08),
	))
}

type brightHiHat struct{}

func (brightHiHat) Synthesize(at float64, _ int, volume float64, sr int) *dsp.Graph {
	return dsp.NewGraph(volume).Connect(path(at, at+0.04,
		[]dsp.Source{dsp.NewNoise(sr, dsp.White, 0.04)},
		dsp.NewBiquad(sr, dsp.Highpass, 9000, dsp.DefaultQ),
		drumEnvelope(at, 0.35, 0.04),
	))
}

// clap is a run of short noise bursts followed by a longer tail, all
// through the same bandpass colour.
type clap struct {
	bursts int
	gap    float64
	cutoff float64
	q      float64
	tail   float64
}

func (c clap) Synthesize(at float64, _ int, volume float64, sr int) *dsp.Graph {
	g := dsp.NewGraph(volume)
	for i := 0; i < c.bursts; i++ {
		t := at + float64(i)*c.gap
		g.Connect(path(t, t+0.02, []dsp.Source{dsp.NewNoise(sr, dsp.White, 0.02)},
			dsp.NewBiquad(sr, dsp.Bandpass, c.cutoff, c.q),
			drumEnvelope(t, 0.8, 0.02),
		))
	}
	t := at + float64(c.bursts)*c.gap
	return g.Connect(path(t, t+c.tail, []dsp.Source{dsp.NewNoise(sr, dsp.White, c.tail)},
		dsp.NewBiquad(sr, dsp.Bandpass, c.cutoff, c.q),
		drumEnvelope(t, 0.6, c.tail),
	))
}

type acousticClap struct{}

func (acousticClap) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	return clap{bursts: 3, gap: 0.01, cutoff: 1200, q: 1.5, tail: 0.15}.Synthesize(at, pitch, volume, sr)
}

type clap808 struct{}

func (clap808) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	return clap{bursts: 4, gap: 0.008, cutoff: 1000, q: 2, tail: 0.25}.Synthesize(at, pitch, volume, sr)
}

// tom is a sine with a pitch drop; the three acoustic toms differ only in
// tuning and length.
type tom struct {
	from, to, length float64
}

func (t tom) Synthesize(at float64, _ int, volume float64, sr int) *dsp.Graph {
	osc := sweep(sr, dsp.Sine, at, t.from, t.to, t.length*0.6)
	return dsp.NewGraph(volume).Connect(path(at, at+t.length, []dsp.Source{osc},
		drumEnvelope(at, 0.9, t.length),
	))
}

type lowTom struct{}

func (lowTom) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	return tom{from: 100, to: 60, length: 0.5}.Synthesize(at, pitch, volume, sr)
}

type midTom struct{}

func (midTom) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	return tom{from: 150, to: 90, length: 0.4}.Synthesize(at, pitch, volume, sr)
}

type highTom struct{}

func (highTom) Synthesize(at float64, pitch int, volume float64, sr int) *dsp.Graph {
	return tom{from: 220, to: 130, length: 0.3}.Synthesize(at, pitch, volume, sr)
}

type electroTom struct{}

func (electroTom) Synthesize(at float64, _ int, volume float64, sr int) *dsp.Graph {
	const length = 0.35
	body := sweep(sr, dsp.Triangle, at, 180, 70, 0.2)
	return dsp.NewGraph(volume).
		Connect(path(at, at+length, []dsp.Source{body},
			drumEnvelope(at, 0.9, length),
		)).
		Connect(path(at, at+0.1, []dsp.Source{dsp.NewNoise(sr, dsp.Brown, 0.1)},
			dsp.NewBiquad(sr, dsp.Lowpass, 800, dsp.DefaultQ),
			drumEnvelope(at, 0.3, 0.1),
		))
}
