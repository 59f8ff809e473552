// Package basslab is a bass practice companion: it plays licks over drum
// patterns on a look-ahead scheduler, previews bass sounds and exports
// practice loops.
package basslab

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cbegin/basslab-go/internal/audio"
	"github.com/cbegin/basslab-go/internal/dsp"
	"github.com/cbegin/basslab-go/internal/effects"
	"github.com/cbegin/basslab-go/internal/lick"
	"github.com/cbegin/basslab-go/internal/scheduler"
	"github.com/cbegin/basslab-go/internal/synth"
)

const (
	DefaultSampleRate = 44100
	DefaultTempo      = 90

	watchBuffer = 16
)

var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrNotPlaying      = errors.New("nothing is playing")
)

// PracticeSettings plays a lick over a drum pattern.
type PracticeSettings struct {
	Lick lick.Lick
	// Key transposes the lick when it is transposable. Empty keeps the
	// original key.
	Key        string
	Tempo      float64
	Pattern    lick.DrumPattern
	DrumsMuted bool
	Kit        synth.Kit
}

// BeatSettings plays a drum pattern alone.
type BeatSettings struct {
	Tempo   float64
	Pattern lick.DrumPattern
	Kit     synth.Kit
}

// Settings is either PracticeSettings or BeatSettings.
type Settings interface {
	program() (scheduler.Config, synth.Kit, error)
}

func (p PracticeSettings) program() (scheduler.Config, synth.Kit, error) {
	if err := checkTempo(p.Tempo); err != nil {
		return scheduler.Config{}, synth.Kit{}, err
	}
	if p.Lick.Sequence.NoteCount() == 0 {
		return scheduler.Config{}, synth.Kit{}, fmt.Errorf("%w: lick %q has no notes", ErrInvalidSettings, p.Lick.Name)
	}
	l := p.Lick
	if p.Key != "" {
		l = l.Transpose(p.Key)
	}
	pattern := p.Pattern
	if len(pattern.Steps) == 0 {
		pattern = lick.DefaultPattern()
	}
	return scheduler.Config{
		Tempo: p.Tempo,
		Program: scheduler.PracticeProgram{
			Sequence:   l.Sequence,
			Pattern:    pattern,
			Beats:      l.TimeSignature.Beats(),
			DrumsMuted: p.DrumsMuted,
		},
	}, p.Kit, nil
}

func (b BeatSettings) program() (scheduler.Config, synth.Kit, error) {
	if err := checkTempo(b.Tempo); err != nil {
		return scheduler.Config{}, synth.Kit{}, err
	}
	pattern := b.Pattern
	if len(pattern.Steps) == 0 {
		pattern = lick.DefaultPattern()
	}
	return scheduler.Config{Tempo: b.Tempo, Program: scheduler.BeatProgram{Pattern: pattern}}, b.Kit, nil
}

func checkTempo(tempo float64) error {
	if !(tempo > 0) || math.IsInf(tempo, 1) {
		return fmt.Errorf("%w: tempo %v", ErrInvalidSettings, tempo)
	}
	return nil
}

// StepEvent reports a scheduled step on the Watch channel. Time is on the
// mixer clock and lies slightly in the future.
type StepEvent struct {
	Step int
	Time float64
}

// Output is where the mixer is played. *audio.Device implements it.
type Output interface {
	Open(source audio.SampleSource) error
	Close() error
}

type StudioOption func(*studioConfig)

type studioConfig struct {
	sampleRate int
	bufferSize time.Duration
	sampleTap  func([]float32)
	bus        []effects.Effector
	log        logrus.FieldLogger
	out        Output
}

func WithSampleRate(rate int) StudioOption {
	return func(cfg *studioConfig) { cfg.sampleRate = rate }
}

// WithBufferSize sets the output buffer of the default device.
func WithBufferSize(d time.Duration) StudioOption {
	return func(cfg *studioConfig) { cfg.bufferSize = d }
}

// WithSampleTap installs a callback invoked with each mixed stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) StudioOption {
	return func(cfg *studioConfig) { cfg.sampleTap = tap }
}

// WithBusEffect adds an effect to the master bus ahead of the EQ.
func WithBusEffect(e effects.Effector) StudioOption {
	return func(cfg *studioConfig) { cfg.bus = append(cfg.bus, e) }
}

func WithLogger(log logrus.FieldLogger) StudioOption {
	return func(cfg *studioConfig) { cfg.log = log }
}

// WithDevice plays through out instead of a new audio.Device.
func WithDevice(out Output) StudioOption {
	return func(cfg *studioConfig) { cfg.out = out }
}

// Studio owns the mixer, the synth engine and at most one running
// scheduler. The output is opened on first playback and kept until Close.
type Studio struct {
	sampleRate int
	log        logrus.FieldLogger
	out        Output
	mixer      *audio.Mixer
	engine     *synth.Engine
	kit        atomic.Pointer[synth.Kit]

	mu          sync.Mutex
	sched       *scheduler.Scheduler
	previewLoop *scheduler.Scheduler
	previewLick string

	// previewMu guards preview, which the preview loop's sink appends to.
	previewMu sync.Mutex
	preview   []dsp.Source

	eventChMu sync.Mutex
	eventCh   chan StepEvent
}

func NewStudio(opts ...StudioOption) (*Studio, error) {
	cfg := studioConfig{sampleRate: DefaultSampleRate, bufferSize: audio.DefaultBufferSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	if cfg.log == nil {
		cfg.log = logrus.StandardLogger()
	}
	if cfg.out == nil {
		cfg.out = audio.NewDevice(cfg.sampleRate, cfg.bufferSize)
	}
	var mixOpts []audio.MixerOption
	if cfg.sampleTap != nil {
		mixOpts = append(mixOpts, audio.WithSampleTap(cfg.sampleTap))
	}
	for _, e := range cfg.bus {
		mixOpts = append(mixOpts, audio.WithBusEffect(e))
	}
	mixer := audio.NewMixer(cfg.sampleRate, mixOpts...)
	s := &Studio{
		sampleRate: cfg.sampleRate,
		log:        cfg.log,
		out:        cfg.out,
		mixer:      mixer,
		engine:     synth.New(mixer),
	}
	kit := synth.DefaultKit()
	s.kit.Store(&kit)
	return s, nil
}

func (s *Studio) SampleRate() int { return s.sampleRate }

// Now is the mixer clock in seconds.
func (s *Studio) Now() float64 { return s.mixer.Now() }

// Mixer exposes the studio's mixer, mainly for tests and offline tools.
func (s *Studio) Mixer() *audio.Mixer { return s.mixer }

// PlayPractice starts a practice loop, replacing whatever is playing.
func (s *Studio) PlayPractice(p PracticeSettings) error { return s.play(p) }

// PlayBeat starts a drum loop, replacing whatever is playing.
func (s *Studio) PlayBeat(b BeatSettings) error { return s.play(b) }

func (s *Studio) play(set Settings) error {
	cfg, kit, err := set.program()
	if err != nil {
		return err
	}
	if err := s.out.Open(s.mixer); err != nil {
		return fmt.Errorf("open audio: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched != nil {
		s.sched.Stop()
	}
	s.kit.Store(&kit)
	sched, err := scheduler.New(s.mixer, scheduler.SinkFunc(s.trigger), cfg,
		scheduler.WithStepHandler(s.sendStep),
		scheduler.WithLogger(s.log),
	)
	if err != nil {
		return err
	}
	s.sched = sched
	sched.Start()
	s.log.WithField("tempo", cfg.Tempo).Info("playback started")
	return nil
}

// trigger is the scheduler sink. It reads the kit on every event so a
// Reconfigure that only changes sounds takes effect on the next step.
func (s *Studio) trigger(ev scheduler.Event) {
	s.engine.Trigger(ev, *s.kit.Load())
}

// Reconfigure swaps tempo, program and kit. A playing loop restarts from
// step 0; a stopped one stores the settings for the next Resume.
func (s *Studio) Reconfigure(set Settings) error {
	cfg, kit, err := set.program()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil {
		return ErrNotPlaying
	}
	s.kit.Store(&kit)
	return s.sched.Reconfigure(cfg)
}

// Resume restarts the last program from step 0.
func (s *Studio) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil {
		return ErrNotPlaying
	}
	s.sched.Start()
	return nil
}

// Stop halts the scheduler. Notes already scheduled ring out. Stop is
// idempotent.
func (s *Studio) Stop() {
	s.mu.Lock()
	sched := s.sched
	s.mu.Unlock()
	if sched != nil {
		sched.Stop()
	}
}

func (s *Studio) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil && s.sched.State() == scheduler.Playing
}

// CurrentBeat returns the beat of the bar sounding now, false when stopped
// or still in the lead-in.
func (s *Studio) CurrentBeat() (int, bool) {
	s.mu.Lock()
	sched := s.sched
	s.mu.Unlock()
	if sched == nil {
		return 0, false
	}
	return sched.CurrentBeat(s.mixer.Now())
}

// CurrentStep returns the program step sounding now, false when stopped or
// still in the lead-in.
func (s *Studio) CurrentStep() (int, bool) {
	s.mu.Lock()
	sched := s.sched
	s.mu.Unlock()
	if sched == nil {
		return 0, false
	}
	return sched.CurrentStep(s.mixer.Now())
}

// Watch returns a channel that receives every scheduled step. The channel
// is buffered; events are dropped when it is full. Only the most recent
// Watch channel receives events.
func (s *Studio) Watch() <-chan StepEvent {
	ch := make(chan StepEvent, watchBuffer)
	s.eventChMu.Lock()
	s.eventCh = ch
	s.eventChMu.Unlock()
	return ch
}

func (s *Studio) sendStep(step int, at float64) {
	s.eventChMu.Lock()
	ch := s.eventCh
	s.eventChMu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- StepEvent{Step: step, Time: at}:
	default:
	}
}

// Preview plays one bass note now, cutting off any previous preview.
func (s *Studio) Preview(sound synth.BassSound, midi int) error {
	if err := s.out.Open(s.mixer); err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPreviewLocked()
	srcs := s.engine.Preview(sound, midi)
	s.previewMu.Lock()
	s.preview = srcs
	s.previewMu.Unlock()
	return nil
}

// PreviewLick loops the lick's bass line alone at scheduler.PreviewTempo
// until StopPreview, cutting off any previous preview. The practice loop is
// not affected.
func (s *Studio) PreviewLick(l lick.Lick, sound synth.BassSound) error {
	if l.Sequence.NoteCount() == 0 {
		return fmt.Errorf("%w: lick %q has no notes", ErrInvalidSettings, l.Name)
	}
	if err := s.out.Open(s.mixer); err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPreviewLocked()

	kit := synth.DefaultKit()
	kit.Bass = synth.ParseBassSound(string(sound))
	cfg := scheduler.Config{Tempo: scheduler.PreviewTempo, Program: scheduler.PreviewProgram{Sequence: l.Sequence}}
	loop, err := scheduler.New(s.mixer, scheduler.SinkFunc(func(ev scheduler.Event) {
		s.previewTrigger(ev, kit)
	}), cfg, scheduler.WithLogger(s.log))
	if err != nil {
		return err
	}
	s.previewLoop = loop
	s.previewLick = l.Name
	loop.Start()
	s.log.WithField("lick", l.Name).Debug("lick preview started")
	return nil
}

func (s *Studio) previewTrigger(ev scheduler.Event, kit synth.Kit) {
	if ev.Kind != scheduler.KindBass || ev.Note == nil {
		return
	}
	g := s.engine.Play(ev.Time, synth.Bass, kit, ev.Note.MIDI)
	now := s.mixer.Now()
	s.previewMu.Lock()
	defer s.previewMu.Unlock()
	live := s.preview[:0]
	for _, src := range s.preview {
		if src.StopTime() > now {
			live = append(live, src)
		}
	}
	s.preview = append(live, g.Sources()...)
}

// PreviewingLick names the lick being previewed, or "" when none is.
func (s *Studio) PreviewingLick() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewLick
}

// StopPreview cuts the current preview short, including notes the preview
// loop has scheduled ahead. It is safe to call when nothing is previewing.
func (s *Studio) StopPreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPreviewLocked()
}

func (s *Studio) stopPreviewLocked() {
	if s.previewLoop != nil {
		s.previewLoop.Stop()
		s.previewLoop = nil
		s.previewLick = ""
	}
	now := s.mixer.Now()
	s.previewMu.Lock()
	defer s.previewMu.Unlock()
	for _, src := range s.preview {
		if now < src.StopTime() {
			src.Stop(now)
		}
	}
	s.preview = nil
}

func (s *Studio) SetMasterVolume(v float64) { s.mixer.SetVolume(v) }

func (s *Studio) MasterVolume() float64 { return s.mixer.Volume() }

// SetEQBand sets a master EQ band gain. 1.0 is unity. It takes effect on
// the next rendered buffer.
func (s *Studio) SetEQBand(b effects.Band, gain float32) { s.mixer.SetEQBand(b, gain) }

func (s *Studio) EQBand(b effects.Band) float32 { return s.mixer.EQBand(b) }

// Close stops playback and releases the output.
func (s *Studio) Close() error {
	s.Stop()
	s.StopPreview()
	return s.out.Close()
}
