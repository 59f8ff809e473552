package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cbegin/basslab-go/internal/dsp"
	"github.com/cbegin/basslab-go/internal/effects"
)

const testRate = 48000

func toneGraph(at, stop, freq, volume float64) *dsp.Graph {
	o := dsp.NewOscillator(testRate, dsp.Sine, freq)
	o.Start(at)
	o.Stop(stop)
	return dsp.NewGraph(volume).Connect(dsp.Path{Sources: []dsp.Source{o}})
}

func energy(buf []float32) float64 {
	var sum float64
	for _, v := range buf {
		sum += float64(v) * float64(v)
	}
	return sum
}

func TestMixerClockAdvancesByFrames(t *testing.T) {
	m := NewMixer(testRate)
	if m.Now() != 0 {
		t.Fatalf("Now = %v, want 0", m.Now())
	}
	m.Process(make([]float32, 2*testRate/10))
	if got := m.Now(); math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("Now = %v, want 0.1", got)
	}
}

func TestMixerRendersScheduledGraphAtItsTime(t *testing.T) {
	m := NewMixer(testRate)
	m.Schedule(toneGraph(0.05, 0.1, 440, 0.5))

	buf := make([]float32, 2*testRate/20)
	m.Process(buf)
	if e := energy(buf); e != 0 {
		t.Fatalf("energy before start = %v, want 0", e)
	}
	m.Process(buf)
	if e := energy(buf); e == 0 {
		t.Fatal("expected sound between 0.05 and 0.1")
	}
	if got := m.Voices(); got != 0 {
		t.Fatalf("voices after end = %d, want 0", got)
	}
	m.Process(buf)
	if e := energy(buf); e > 1e-9 {
		t.Fatalf("energy after release = %v, want ~0", e)
	}
}

func TestMixerReleasesIdleGraphs(t *testing.T) {
	m := NewMixer(testRate)
	m.Schedule(dsp.NewGraph(1))
	if got := m.Voices(); got != 1 {
		t.Fatalf("voices = %d, want 1", got)
	}
	m.Process(make([]float32, 256))
	if got := m.Voices(); got != 0 {
		t.Fatalf("voices = %d, want 0", got)
	}
}

func TestMixerMasterVolume(t *testing.T) {
	render := func(vol float64) float64 {
		m := NewMixer(testRate)
		m.SetVolume(vol)
		m.Schedule(toneGraph(0, 1, 220, 0.2))
		buf := make([]float32, 2*4800)
		m.Process(buf)
		return energy(buf)
	}
	full, half := render(1), render(0.5)
	if r := half / full; math.Abs(r-0.25) > 0.01 {
		t.Fatalf("energy ratio = %v, want 0.25", r)
	}

	m := NewMixer(testRate)
	m.SetVolume(-3)
	if got := m.Volume(); got != 0 {
		t.Fatalf("volume = %v, want 0", got)
	}
}

func TestMixerLimitsSummedVoices(t *testing.T) {
	m := NewMixer(testRate)
	for i := 0; i < 8; i++ {
		m.Schedule(toneGraph(0, 1, 110, 1))
	}
	buf := make([]float32, 2*testRate/2)
	m.Process(buf)
	peak := float32(0)
	for _, v := range buf[len(buf)/2:] {
		peak = max(peak, float32(math.Abs(float64(v))))
	}
	if peak > 1.5 {
		t.Fatalf("peak = %v, want limited", peak)
	}
}

func TestMixerEQAndTap(t *testing.T) {
	var tapped int
	m := NewMixer(testRate, WithSampleTap(func(buf []float32) { tapped += len(buf) }))
	m.SetEQBand(effects.BandSub, 0)
	if got := m.EQBand(effects.BandSub); got != 0 {
		t.Fatalf("EQBand = %v, want 0", got)
	}
	m.Schedule(toneGraph(0, 1, 40, 0.5))
	buf := make([]float32, 2*testRate/2)
	m.Process(buf)
	if tapped != len(buf) {
		t.Fatalf("tapped = %d, want %d", tapped, len(buf))
	}

	ref := NewMixer(testRate)
	ref.Schedule(toneGraph(0, 1, 40, 0.5))
	refBuf := make([]float32, len(buf))
	ref.Process(refBuf)
	if energy(buf) >= energy(refBuf)*0.5 {
		t.Fatalf("sub cut energy = %v, reference %v", energy(buf), energy(refBuf))
	}
}

func TestMixerBusEffect(t *testing.T) {
	rev := effects.NewReverb(testRate, effects.ReverbParams{Size: 0.8, Decay: 0.8, Damping: 0.3, Mix: 0.5})
	m := NewMixer(testRate, WithBusEffect(rev))
	m.Schedule(toneGraph(0, 0.05, 330, 0.5))
	buf := make([]float32, 2*testRate/10)
	m.Process(buf)
	buf = make([]float32, 2*testRate/10)
	m.Process(buf)
	if energy(buf) == 0 {
		t.Fatal("expected a reverb tail after the tone stopped")
	}
}

type constSource float32

func (c constSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = float32(c)
	}
}

func TestStreamReaderEncodesFloat32LE(t *testing.T) {
	r := NewStreamReader(constSource(0.25))
	p := make([]byte, 8*3+5)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 24 {
		t.Fatalf("n = %d, want 24", n)
	}
	for i := 0; i < n; i += 4 {
		if v := math.Float32frombits(binary.LittleEndian.Uint32(p[i:])); v != 0.25 {
			t.Fatalf("sample %d = %v, want 0.25", i/4, v)
		}
	}
	if n, _ := r.Read(make([]byte, 7)); n != 0 {
		t.Fatalf("short read n = %d, want 0", n)
	}
}
