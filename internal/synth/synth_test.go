package synth

import (
	"math"
	"testing"

	"github.com/cbegin/basslab-go/internal/dsp"
	"github.com/cbegin/basslab-go/internal/lick"
	"github.com/cbegin/basslab-go/internal/scheduler"
	"github.com/cbegin/basslab-go/internal/theory"
)

const testRate = 44100

type fakeOutput struct {
	now    float64
	graphs []*dsp.Graph
}

func (f *fakeOutput) Now() float64          { return f.now }
func (f *fakeOutput) SampleRate() int       { return testRate }
func (f *fakeOutput) Schedule(g *dsp.Graph) { f.graphs = append(f.graphs, g) }

// render runs g from its start to its end and returns the peak and RMS.
func render(g *dsp.Graph) (peak, rms float64) {
	start, end := g.Start(), g.End()
	n := int((end - start) * testRate)
	var sum float64
	for i := 0; i < n; i++ {
		v := g.Render(start + float64(i)/testRate)
		peak = math.Max(peak, math.Abs(v))
		sum += v * v
	}
	if n > 0 {
		rms = math.Sqrt(sum / float64(n))
	}
	return peak, rms
}

func TestEveryPresetSounds(t *testing.T) {
	for c := Bass; c < ChannelCount; c++ {
		for _, name := range Presets(c) {
			kit := DefaultKit()
			kit.SetPreset(c, name)
			if got := kit.Preset(c); got != name {
				t.Fatalf("%v preset = %q, want %q", c, got, name)
			}
			g := kit.Voice(c).Synthesize(1, 33, 1, testRate)
			if s := g.State(0.5); s != dsp.Scheduled {
				t.Fatalf("%v/%s state = %v, want scheduled", c, name, s)
			}
			if g.End() <= 1 || g.End() > 3 {
				t.Fatalf("%v/%s end = %v, want within (1, 3]", c, name, g.End())
			}
			peak, rms := render(g)
			if rms == 0 {
				t.Fatalf("%v/%s rendered silence", c, name)
			}
			if peak > 2 || math.IsNaN(peak) {
				t.Fatalf("%v/%s peak = %v, want bounded", c, name, peak)
			}
			if s := g.State(g.End()); s != dsp.Silent {
				t.Fatalf("%v/%s state after end = %v, want silent", c, name, s)
			}
		}
	}
}

func TestPresetFallback(t *testing.T) {
	if got := ParseBassSound("Fretless"); got != Electric {
		t.Fatalf("ParseBassSound = %q, want %q", got, Electric)
	}
	if got := ParseBassSound("Sub Synth"); got != SubSynth {
		t.Fatalf("ParseBassSound = %q, want %q", got, SubSynth)
	}
	if got := ParseTomSound(""); got != TomLow {
		t.Fatalf("ParseTomSound = %q, want %q", got, TomLow)
	}

	kit := Kit{Bass: "nope", Kick: "nope"}
	if _, ok := kit.Voice(Bass).(electricBass); !ok {
		t.Fatalf("bass voice = %T, want electricBass", kit.Voice(Bass))
	}
	if _, ok := kit.Voice(Kick).(acousticKick); !ok {
		t.Fatalf("kick voice = %T, want acousticKick", kit.Voice(Kick))
	}
	if got := kit.Preset(Kick); got != string(KickAcoustic) {
		t.Fatalf("Preset = %q, want %q", got, KickAcoustic)
	}
}

func TestVolumeClamp(t *testing.T) {
	kit := DefaultKit()
	cases := []struct {
		in, want float64
	}{
		{0.5, 0.5},
		{-1, 0},
		{3, MaxVolume},
	}
	for _, tc := range cases {
		kit.SetVolume(Snare, tc.in)
		if got := kit.Volume(Snare); got != tc.want {
			t.Fatalf("SetVolume(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	kit.SetVolume(ChannelCount, 1)
	if got := kit.Volume(ChannelCount); got != 0 {
		t.Fatalf("Volume(out of range) = %v, want 0", got)
	}
}

func TestVolumeScalesOutput(t *testing.T) {
	kit := DefaultKit()
	kit.Bass = SubSynth
	_, full := render(kit.Voice(Bass).Synthesize(0, 45, 1, testRate))
	_, half := render(kit.Voice(Bass).Synthesize(0, 45, 0.5, testRate))
	if math.Abs(half/full-0.5) > 0.01 {
		t.Fatalf("rms ratio = %v, want 0.5", half/full)
	}
}

func TestBassEnvelopeDecaysToFloor(t *testing.T) {
	g := classicBass{}.Synthesize(0, 40, 1, testRate)
	var tail float64
	for i := 0; i < int(0.4*testRate); i++ {
		v := g.Render(float64(i) / testRate)
		if i > int(0.39*testRate) {
			tail = math.Max(tail, math.Abs(v))
		}
	}
	if tail > 0.02 {
		t.Fatalf("tail peak = %v, want <= 0.02", tail)
	}
}

func TestSubSynthRingsPastEnvelope(t *testing.T) {
	g := subSynth{}.Synthesize(2, 40, 1, testRate)
	if got := g.End(); math.Abs(got-2.4) > 1e-9 {
		t.Fatalf("End = %v, want 2.4", got)
	}
}

func TestEnginePlay(t *testing.T) {
	out := &fakeOutput{now: 3}
	e := New(out)
	kit := DefaultKit()
	kit.SetVolume(Kick, 0)

	g := e.Play(3.5, DrumChannel(lick.Kick), kit, 0)
	if len(out.graphs) != 1 || out.graphs[0] != g {
		t.Fatalf("scheduled = %d graphs, want the played graph", len(out.graphs))
	}
	if g.Start() != 3.5 {
		t.Fatalf("Start = %v, want 3.5", g.Start())
	}
	if _, rms := render(g); rms != 0 {
		t.Fatalf("muted kick rms = %v, want 0", rms)
	}
}

func TestEnginePreviewCanBeStopped(t *testing.T) {
	out := &fakeOutput{now: 10}
	e := New(out)
	sources := e.Preview(JBass, 40)
	if len(sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(sources))
	}
	for _, s := range sources {
		s.Stop(10.1)
	}
	if got := out.graphs[0].End(); got != 10.1 {
		t.Fatalf("End = %v, want 10.1", got)
	}
}

func TestDrumChannel(t *testing.T) {
	want := []Channel{Kick, Snare, HiHat, Clap, Tom}
	for d := lick.Kick; d < lick.DrumCount; d++ {
		if got := DrumChannel(d); got != want[d] {
			t.Fatalf("DrumChannel(%v) = %v, want %v", d, got, want[d])
		}
	}
	if c, ok := ParseChannel(" HiHat "); !ok || c != HiHat {
		t.Fatalf("ParseChannel = %v %v, want hihat", c, ok)
	}
}

func TestEngineSink(t *testing.T) {
	out := &fakeOutput{}
	e := New(out)
	kit := DefaultKit()
	sink := e.Sink(kit)
	kit.SetVolume(Snare, 0)

	sink.Trigger(scheduler.Event{Time: 1, Kind: scheduler.KindBass, Note: &theory.Note{MIDI: 33, String: 2}})
	sink.Trigger(scheduler.Event{Time: 1.25, Kind: scheduler.KindBass})
	sink.Trigger(scheduler.Event{Time: 1.5, Kind: scheduler.KindDrum, Drum: lick.Snare})

	if len(out.graphs) != 2 {
		t.Fatalf("scheduled = %d graphs, want 2", len(out.graphs))
	}
	if got := out.graphs[0].Start(); got != 1 {
		t.Fatalf("bass Start = %v, want 1", got)
	}
	if got := out.graphs[1].Start(); got != 1.5 {
		t.Fatalf("snare Start = %v, want 1.5", got)
	}
	if _, rms := render(out.graphs[1]); rms == 0 {
		t.Fatal("snare silent; sink should hold the kit as it was when created")
	}
}
