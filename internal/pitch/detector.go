// Package pitch estimates the fundamental of a mono buffer by
// autocorrelation and turns successive estimates into a steady tuner
// reading.
package pitch

import (
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/cbegin/basslab-go/internal/theory"
)

const (
	// DefaultBufferSize is long enough to hold several periods of a low B
	// string at 48 kHz.
	DefaultBufferSize = 4096

	silenceRMS     = 0.01
	trimThreshold  = 0.2
	minFrequency   = 20
	maxFrequency   = 1000
	stableFrames   = 3
	centsSmoothing = 0.2
	inTuneCents    = 5
)

// Reading is one detection cycle's result.
type Reading struct {
	Note      string // stable note name, "" when none
	Detected  bool   // a pitch was found this cycle
	Frequency float64
	Cents     float64 // smoothed deviation from Note
	InTune    bool
}

// Detector keeps the smoothing and confidence state between cycles. It is
// not safe for concurrent use.
type Detector struct {
	SampleRate int

	candidate string
	count     int
	display   string
	cents     float64
}

func NewDetector(sampleRate int) *Detector {
	return &Detector{SampleRate: sampleRate}
}

// Process analyses one buffer. The note name only changes after it has been
// seen on stableFrames consecutive cycles; cents are smoothed every cycle.
func (d *Detector) Process(buf []float32) Reading {
	freq, ok := d.estimate(buf)
	if !ok {
		return d.miss()
	}
	p := theory.FrequencyToPitch(freq)
	if p.Name != d.candidate {
		d.candidate = p.Name
		d.count = 0
	}
	d.count++
	if d.count >= stableFrames {
		d.display = p.Name
	}
	d.cents += centsSmoothing * (p.Cents - d.cents)
	return Reading{
		Note:      d.display,
		Detected:  true,
		Frequency: freq,
		Cents:     d.cents,
		InTune:    d.display != "" && math.Abs(d.cents) < inTuneCents,
	}
}

// miss handles silence and out-of-range cycles: cents drift back toward 0
// and confidence starts over.
func (d *Detector) miss() Reading {
	d.cents *= 1 - centsSmoothing
	d.candidate = ""
	d.count = 0
	d.display = ""
	return Reading{Cents: d.cents}
}

func (d *Detector) Reset() {
	d.candidate = ""
	d.count = 0
	d.display = ""
	d.cents = 0
}

// Stop resets all state. Calling it again is harmless.
func (d *Detector) Stop() { d.Reset() }

func (d *Detector) estimate(buf []float32) (float64, bool) {
	n := len(buf)
	if n < 4 || d.SampleRate <= 0 {
		return 0, false
	}
	var sum float64
	for _, v := range buf {
		sum += float64(v) * float64(v)
	}
	if math.Sqrt(sum/float64(n)) < silenceRMS {
		return 0, false
	}

	r1, r2 := trim(buf)
	x := make([]float64, r2-r1)
	for i := range x {
		x[i] = float64(buf[r1+i])
	}
	lag, ok := peakLag(autocorrelate(x))
	if !ok {
		return 0, false
	}
	freq := float64(d.SampleRate) / lag
	if freq <= minFrequency || freq >= maxFrequency {
		return 0, false
	}
	return freq, true
}

// trim moves both ends inward to the first sample quieter than
// trimThreshold, looking only at the outer halves.
func trim(buf []float32) (int, int) {
	n := len(buf)
	r1, r2 := 0, n-1
	for i := 0; i < n/2; i++ {
		if math.Abs(float64(buf[i])) < trimThreshold {
			r1 = i
			break
		}
	}
	for i := 1; i < n/2; i++ {
		if math.Abs(float64(buf[n-i])) < trimThreshold {
			r2 = n - i
			break
		}
	}
	return r1, r2
}

// autocorrelate returns c[k] = sum x[j]*x[j+k] for k in [0, len(x)). The
// input is zero-padded to at least twice its length so the circular
// correlation the FFT computes has no wrap-around.
func autocorrelate(x []float64) []float64 {
	n := len(x)
	size := 1
	for size < 2*n {
		size <<= 1
	}
	padded := make([]float64, size)
	copy(padded, x)
	spec := fft.FFTReal(padded)
	for i, v := range spec {
		re, im := real(v), imag(v)
		spec[i] = complex(re*re+im*im, 0)
	}
	r := fft.IFFT(spec)
	c := make([]float64, n)
	for i := range c {
		c[i] = real(r[i])
	}
	return c
}

// peakLag skips the slope down from lag 0, takes the largest correlation
// after it and refines that lag with a parabola through its neighbours.
func peakLag(c []float64) (float64, bool) {
	d := 0
	for d+1 < len(c) && c[d] > c[d+1] {
		d++
	}
	maxVal, maxPos := -1.0, -1
	for i := d; i < len(c); i++ {
		if c[i] > maxVal {
			maxVal, maxPos = c[i], i
		}
	}
	if maxPos <= 0 {
		return 0, false
	}
	t0 := float64(maxPos)
	if maxPos+1 < len(c) {
		a, b, e := c[maxPos-1], c[maxPos], c[maxPos+1]
		if den := a - 2*b + e; den != 0 {
			t0 += 0.5 * (a - e) / den
		}
	}
	return t0, true
}
