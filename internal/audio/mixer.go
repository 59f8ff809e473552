package audio

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/cbegin/basslab-go/internal/dsp"
	"github.com/cbegin/basslab-go/internal/effects"
)

type MixerOption func(*mixerConfig)

type mixerConfig struct {
	bus       []effects.Effector
	sampleTap func([]float32)
}

// WithBusEffect appends an effect to the master bus, ahead of the EQ.
func WithBusEffect(e effects.Effector) MixerOption {
	return func(cfg *mixerConfig) {
		cfg.bus = append(cfg.bus, e)
	}
}

// WithSampleTap installs a callback invoked with each rendered stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) MixerOption {
	return func(cfg *mixerConfig) {
		cfg.sampleTap = tap
	}
}

type voice struct {
	graph *dsp.Graph
	start float64
}

// Mixer sums scheduled graphs into the output stream and is the audio clock:
// Now is the number of frames rendered so far in seconds.
//
// Silent graphs, and graphs with nothing started, are released after the
// block that finishes them. Schedule may be called from any goroutine.
// Process runs on the audio thread; graphs are handed over through a
// pending list so rendering never holds the lock.
type Mixer struct {
	sampleRate int
	frames     atomic.Int64
	volume     atomic.Uint64

	mu      sync.Mutex
	pending []*dsp.Graph
	active  []voice

	bus       *effects.Chain
	eq        *effects.EQ5Band
	limiter   *effects.Compressor
	sampleTap func([]float32)
}

func NewMixer(sampleRate int, opts ...MixerOption) *Mixer {
	var cfg mixerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Mixer{
		sampleRate: sampleRate,
		bus:        effects.NewChain(cfg.bus...),
		eq:         effects.NewEQ5Band(sampleRate),
		limiter:    effects.NewLimiter(sampleRate),
		sampleTap:  cfg.sampleTap,
	}
	m.volume.Store(math.Float64bits(1))
	return m
}

func (m *Mixer) Now() float64 {
	return float64(m.frames.Load()) / float64(m.sampleRate)
}

func (m *Mixer) SampleRate() int { return m.sampleRate }

func (m *Mixer) Schedule(g *dsp.Graph) {
	m.mu.Lock()
	m.pending = append(m.pending, g)
	m.mu.Unlock()
}

// SetVolume sets the master gain; negative values clamp to 0.
func (m *Mixer) SetVolume(v float64) {
	m.volume.Store(math.Float64bits(max(v, 0)))
}

func (m *Mixer) Volume() float64 {
	return math.Float64frombits(m.volume.Load())
}

// SetEQBand sets a master EQ band gain. 1.0 is unity.
// It takes effect immediately on the audio thread (lock-free).
func (m *Mixer) SetEQBand(b effects.Band, gain float32) {
	m.eq.SetGain(b, gain)
}

func (m *Mixer) EQBand(b effects.Band) float32 {
	return m.eq.Gain(b)
}

// Voices reports how many graphs are scheduled or sounding.
func (m *Mixer) Voices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active) + len(m.pending)
}

func (m *Mixer) Process(dst []float32) {
	m.mu.Lock()
	for _, g := range m.pending {
		m.active = append(m.active, voice{graph: g, start: g.Start()})
	}
	m.pending = m.pending[:0]
	active := m.active
	m.mu.Unlock()

	sr := float64(m.sampleRate)
	base := m.frames.Load()
	vol := m.Volume()
	frames := len(dst) / 2
	for i := 0; i < frames; i++ {
		t := float64(base+int64(i)) / sr
		var s float64
		for _, v := range active {
			if t >= v.start {
				s += v.graph.Render(t)
			}
		}
		l := float32(s * vol)
		r := l
		l, r = m.bus.Process(l, r)
		l, r = m.eq.Process(l, r)
		dst[2*i], dst[2*i+1] = m.limiter.Process(l, r)
	}
	m.frames.Add(int64(frames))

	end := float64(base+int64(frames)) / sr
	keep := active[:0]
	for _, v := range active {
		if st := v.graph.State(end); st != dsp.Silent && st != dsp.Idle {
			keep = append(keep, v)
		}
	}
	clear(active[len(keep):])
	m.mu.Lock()
	m.active = keep
	m.mu.Unlock()

	if m.sampleTap != nil {
		m.sampleTap(dst)
	}
}
