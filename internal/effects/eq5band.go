package effects

import (
	"math"
	"strings"
	"sync/atomic"
)

// Band indexes the EQ5Band bands from lowest to highest.
type Band int

const (
	BandSub Band = iota
	BandLow
	BandMid
	BandPresence
	BandAir
	BandCount
)

var bandNames = [BandCount]string{"sub", "low", "mid", "presence", "air"}

func (b Band) String() string {
	if b < 0 || b >= BandCount {
		return "unknown"
	}
	return bandNames[b]
}

// ParseBand resolves a band name or returns false.
func ParseBand(name string) (Band, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range bandNames {
		if n == name {
			return Band(i), true
		}
	}
	return 0, false
}

// Crossovers are the split points between adjacent bands, tuned for bass:
// sub below 80 Hz, low to 250, mid to 800, presence to 2.5 kHz, air above.
var Crossovers = [BandCount - 1]float64{80, 250, 800, 2500}

// MaxBandGain caps a band boost at +12 dB.
const MaxBandGain = 4

// EQ5Band splits the signal with cascaded one-pole lowpass crossovers and
// sums the bands back with per-band gains. Gains are float32 bit patterns so
// the audio goroutine reads them without locking.
type EQ5Band struct {
	gains  [BandCount]atomic.Uint32
	alphas [BandCount - 1]float32
	stateL [BandCount - 1]float32
	stateR [BandCount - 1]float32
}

func NewEQ5Band(sampleRate int) *EQ5Band {
	eq := &EQ5Band{}
	dt := 1 / float64(sampleRate)
	for i, hz := range Crossovers {
		rc := 1 / (2 * math.Pi * hz)
		eq.alphas[i] = float32(dt / (rc + dt))
	}
	for i := range eq.gains {
		eq.gains[i].Store(math.Float32bits(1))
	}
	return eq
}

// SetGain sets a band's linear gain, clamped to [0, MaxBandGain].
// Out-of-range bands are ignored.
func (eq *EQ5Band) SetGain(b Band, gain float32) {
	if b < 0 || b >= BandCount {
		return
	}
	eq.gains[b].Store(math.Float32bits(clamp(gain, 0, MaxBandGain)))
}

// Gain returns a band's linear gain; unknown bands report unity.
func (eq *EQ5Band) Gain(b Band) float32 {
	if b < 0 || b >= BandCount {
		return 1
	}
	return math.Float32frombits(eq.gains[b].Load())
}

func (eq *EQ5Band) Process(l, r float32) (float32, float32) {
	var outL, outR float32
	for i := range eq.alphas {
		eq.stateL[i] += eq.alphas[i] * (l - eq.stateL[i])
		eq.stateR[i] += eq.alphas[i] * (r - eq.stateR[i])
		g := eq.Gain(Band(i))
		outL += eq.stateL[i] * g
		outR += eq.stateR[i] * g
		l -= eq.stateL[i]
		r -= eq.stateR[i]
	}
	g := eq.Gain(BandAir)
	return outL + l*g, outR + r*g
}

func (eq *EQ5Band) Reset() {
	eq.stateL = [BandCount - 1]float32{}
	eq.stateR = [BandCount - 1]float32{}
}
