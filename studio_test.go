package basslab

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/cbegin/basslab-go/internal/audio"
	"github.com/cbegin/basslab-go/internal/effects"
	"github.com/cbegin/basslab-go/internal/lick"
	"github.com/cbegin/basslab-go/internal/synth"
)

const testRate = 48000

type fakeDevice struct {
	source audio.SampleSource
	opens  int
	closes int
	err    error
}

func (d *fakeDevice) Open(src audio.SampleSource) error {
	if d.err != nil {
		return d.err
	}
	d.opens++
	d.source = src
	return nil
}

func (d *fakeDevice) Close() error {
	d.closes++
	return nil
}

func newTestStudio(t *testing.T) (*Studio, *fakeDevice) {
	t.Helper()
	dev := &fakeDevice{}
	log, _ := test.NewNullLogger()
	s, err := NewStudio(WithSampleRate(testRate), WithDevice(dev), WithLogger(log))
	if err != nil {
		t.Fatalf("NewStudio: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, dev
}

// advance renders seconds of audio through the studio's mixer.
func advance(s *Studio, seconds float64) []float32 {
	buf := make([]float32, 2*int(seconds*testRate))
	s.Mixer().Process(buf)
	return buf
}

func energy(buf []float32) float64 {
	var sum float64
	for _, v := range buf {
		sum += float64(v) * float64(v)
	}
	return sum
}

func practice(tempo float64) PracticeSettings {
	licks := lick.Licks()
	return PracticeSettings{
		Lick:    licks[0],
		Tempo:   tempo,
		Pattern: lick.DefaultPattern(),
		Kit:     synth.DefaultKit(),
	}
}

func TestNewStudioRejectsBadSampleRate(t *testing.T) {
	if _, err := NewStudio(WithSampleRate(0), WithDevice(&fakeDevice{})); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestPlayPracticeValidatesBeforeOpening(t *testing.T) {
	s, dev := newTestStudio(t)
	for _, tempo := range []float64{0, -10} {
		if err := s.PlayPractice(practice(tempo)); !errors.Is(err, ErrInvalidSettings) {
			t.Fatalf("tempo %v: err = %v, want ErrInvalidSettings", tempo, err)
		}
	}
	empty := practice(100)
	empty.Lick = lick.Lick{Name: "empty"}
	if err := s.PlayPractice(empty); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("empty lick: err = %v, want ErrInvalidSettings", err)
	}
	if dev.opens != 0 {
		t.Fatalf("device opened %d times for invalid settings", dev.opens)
	}
}

func TestPlayOpenFailure(t *testing.T) {
	s, dev := newTestStudio(t)
	dev.err = errors.New("no device")
	if err := s.PlayBeat(BeatSettings{Tempo: 100}); !errors.Is(err, dev.err) {
		t.Fatalf("err = %v, want wrapped device error", err)
	}
	if s.Playing() {
		t.Fatal("playing after open failure")
	}
}

func TestPlayPracticeSchedulesSteps(t *testing.T) {
	s, dev := newTestStudio(t)
	steps := s.Watch()
	if err := s.PlayPractice(practice(120)); err != nil {
		t.Fatalf("PlayPractice: %v", err)
	}
	if dev.source == nil || !s.Playing() {
		t.Fatal("device not opened or studio not playing")
	}

	advance(s, 0.1)
	select {
	case ev := <-steps:
		if ev.Step != 0 || ev.Time != 0.1 {
			t.Fatalf("first step = %+v, want step 0 at 0.1", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no step reported")
	}
}

func TestCurrentBeatFollowsMixerClock(t *testing.T) {
	s, _ := newTestStudio(t)
	if _, ok := s.CurrentBeat(); ok {
		t.Fatal("beat reported before playback")
	}
	if err := s.PlayBeat(BeatSettings{Tempo: 120}); err != nil {
		t.Fatalf("PlayBeat: %v", err)
	}
	if _, ok := s.CurrentBeat(); ok {
		t.Fatal("beat reported during lead-in")
	}
	advance(s, 0.2)
	if b, ok := s.CurrentBeat(); !ok || b != 0 {
		t.Fatalf("beat = %d %v, want 0", b, ok)
	}
	advance(s, 0.5)
	if b, ok := s.CurrentBeat(); !ok || b != 1 {
		t.Fatalf("beat = %d %v, want 1", b, ok)
	}
	advance(s, 1.5)
	if b, _ := s.CurrentBeat(); b != 0 {
		t.Fatalf("beat = %d, want 0 after wrapping the bar", b)
	}

	s.Stop()
	s.Stop()
	if _, ok := s.CurrentBeat(); ok || s.Playing() {
		t.Fatal("beat reported after Stop")
	}
}

func TestCurrentStepOnCustomGrid(t *testing.T) {
	s, _ := newTestStudio(t)
	if _, ok := s.CurrentStep(); ok {
		t.Fatal("step reported before playback")
	}
	grid := lick.StarterGrid().Toggle(lick.HiHat, 3)
	if err := s.PlayBeat(BeatSettings{Tempo: 120, Pattern: grid}); err != nil {
		t.Fatalf("PlayBeat: %v", err)
	}
	advance(s, 0.2)
	if st, ok := s.CurrentStep(); !ok || st != 0 {
		t.Fatalf("step = %d %v, want 0", st, ok)
	}
	advance(s, 0.5)
	if st, ok := s.CurrentStep(); !ok || st != 2 {
		t.Fatalf("step = %d %v, want 2", st, ok)
	}
	s.Stop()
	if _, ok := s.CurrentStep(); ok {
		t.Fatal("step reported after Stop")
	}
}

func TestReconfigure(t *testing.T) {
	s, _ := newTestStudio(t)
	if err := s.Reconfigure(BeatSettings{Tempo: 100}); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("err = %v, want ErrNotPlaying", err)
	}
	if err := s.PlayPractice(practice(100)); err != nil {
		t.Fatalf("PlayPractice: %v", err)
	}
	if err := s.Reconfigure(BeatSettings{Tempo: -1}); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("err = %v, want ErrInvalidSettings", err)
	}

	advance(s, 0.5)
	next := practice(60)
	next.Kit.SetPreset(synth.Bass, string(synth.SubSynth))
	if err := s.Reconfigure(next); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if got := s.kit.Load().Preset(synth.Bass); got != string(synth.SubSynth) {
		t.Fatalf("bass preset = %q, want Sub Synth", got)
	}
	// The restart re-zeroes the phase: beat 0 begins a lead-in after now.
	advance(s, 0.15)
	if b, ok := s.CurrentBeat(); !ok || b != 0 {
		t.Fatalf("beat = %d %v after reconfigure, want 0", b, ok)
	}

	s.Stop()
	if err := s.Resume(); err != nil || !s.Playing() {
		t.Fatalf("Resume err = %v playing = %v", err, s.Playing())
	}
}

func TestPreviewAndStopPreview(t *testing.T) {
	s, dev := newTestStudio(t)
	s.StopPreview()
	if err := s.Preview(synth.JBass, 33); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if dev.opens != 1 {
		t.Fatalf("opens = %d, want 1", dev.opens)
	}
	if e := energy(advance(s, 0.05)); e == 0 {
		t.Fatal("preview is silent")
	}
	s.StopPreview()
	advance(s, 0.01)
	if v := s.Mixer().Voices(); v != 0 {
		t.Fatalf("voices = %d after StopPreview, want 0", v)
	}
}

func waitForVoices(t *testing.T, s *Studio) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Mixer().Voices() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("nothing was scheduled")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPreviewLickLoopsAndStops(t *testing.T) {
	s, _ := newTestStudio(t)
	if err := s.PreviewLick(lick.Lick{Name: "empty"}, synth.JBass); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("err = %v, want ErrInvalidSettings", err)
	}

	l := lick.Licks()[0]
	if err := s.PreviewLick(l, synth.JBass); err != nil {
		t.Fatalf("PreviewLick: %v", err)
	}
	if got := s.PreviewingLick(); got != l.Name {
		t.Fatalf("previewing %q, want %q", got, l.Name)
	}
	if s.Playing() {
		t.Fatal("lick preview started the practice loop")
	}
	advance(s, 0.1)
	waitForVoices(t, s)
	if e := energy(advance(s, 0.05)); e == 0 {
		t.Fatal("lick preview is silent")
	}

	s.StopPreview()
	if got := s.PreviewingLick(); got != "" {
		t.Fatalf("previewing %q after StopPreview", got)
	}
	advance(s, 0.5)
	if v := s.Mixer().Voices(); v != 0 {
		t.Fatalf("voices = %d after StopPreview, want 0", v)
	}
}

func TestMasterControls(t *testing.T) {
	s, _ := newTestStudio(t)
	s.SetMasterVolume(0.35)
	if got := s.MasterVolume(); got != 0.35 {
		t.Fatalf("master volume = %v, want 0.35", got)
	}
	s.SetMasterVolume(-2)
	if got := s.MasterVolume(); got != 0 {
		t.Fatalf("master volume should clamp to 0, got %v", got)
	}
	s.SetEQBand(effects.BandSub, 0.5)
	if got := s.EQBand(effects.BandSub); got != 0.5 {
		t.Fatalf("sub band = %v, want 0.5", got)
	}
}

func TestCloseReleasesDevice(t *testing.T) {
	s, dev := newTestStudio(t)
	if err := s.PlayBeat(BeatSettings{Tempo: 90}); err != nil {
		t.Fatalf("PlayBeat: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if dev.closes != 1 || s.Playing() {
		t.Fatalf("closes = %d playing = %v", dev.closes, s.Playing())
	}
}

type countingEffect struct{ frames int }

func (c *countingEffect) Process(l, r float32) (float32, float32) {
	c.frames++
	return l, r
}

func (c *countingEffect) Reset() {}

func TestBusEffectRunsOnMasterBus(t *testing.T) {
	fx := &countingEffect{}
	log, _ := test.NewNullLogger()
	s, err := NewStudio(WithSampleRate(testRate), WithDevice(&fakeDevice{}), WithLogger(log), WithBusEffect(fx))
	if err != nil {
		t.Fatalf("NewStudio: %v", err)
	}
	defer s.Close()
	if err := s.Preview(synth.SubSynth, 40); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	advance(s, 0.01)
	if want := int(0.01 * testRate); fx.frames != want {
		t.Fatalf("bus effect saw %d frames, want %d", fx.frames, want)
	}
}
