// Package scheduler runs a step sequencer against an audio clock. A short
// periodic timer wakes up, and every step whose time falls inside the
// lookahead window is handed to the sink with its exact clock time. The
// timer may jitter; the emitted times do not.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cbegin/basslab-go/internal/lick"
	"github.com/cbegin/basslab-go/internal/theory"
)

const (
	DefaultLookahead = 0.1
	DefaultLeadIn    = 0.1
	DefaultInterval  = 25 * time.Millisecond
)

var ErrInvalidConfig = errors.New("invalid scheduler config")

// Clock is the audio clock in seconds. It must never go backwards.
type Clock interface {
	Now() float64
}

type Kind int

const (
	KindBass Kind = iota
	KindDrum
)

// Event is one sound to start at Time on the audio clock.
type Event struct {
	Time float64
	Step int
	Kind Kind
	Drum lick.Drum    // KindDrum only
	Note *theory.Note // KindBass only
}

// Sink receives events. It is called with the scheduler's lock held and
// must not call back into the scheduler.
type Sink interface {
	Trigger(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Trigger(ev Event) { f(ev) }

type Config struct {
	Tempo   float64 // beats per minute
	Program Program
}

func (c Config) validate() error {
	if c.Program == nil {
		return fmt.Errorf("%w: no program", ErrInvalidConfig)
	}
	if !(c.Tempo > 0) || math.IsInf(c.Tempo, 1) {
		return fmt.Errorf("%w: tempo %v", ErrInvalidConfig, c.Tempo)
	}
	return nil
}

func (c Config) secondsPerBeat() float64 { return 60 / c.Tempo }

func (c Config) secondsPerStep() float64 {
	return c.secondsPerBeat() / float64(max(c.Program.StepsPerBeat(), 1))
}

type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// ClockState is the scheduler's position, for display and tests.
type ClockState struct {
	NextEventTime float64
	Step          int
	PlaybackStart float64
}

type Option func(*Scheduler)

// WithLookahead sets how far ahead of the clock, in seconds, steps are emitted.
func WithLookahead(seconds float64) Option {
	return func(s *Scheduler) { s.lookahead = seconds }
}

// WithLeadIn delays the first step after Start so it is never late.
func WithLeadIn(seconds float64) Option {
	return func(s *Scheduler) { s.leadIn = seconds }
}

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

// WithManualTick disables the timer goroutine; the owner calls Tick. Offline
// rendering and tests drive the scheduler this way.
func WithManualTick() Option {
	return func(s *Scheduler) { s.manual = true }
}

// WithStepHandler is called once per emitted step, after its events. Like
// the sink it runs under the scheduler lock and must not block.
func WithStepHandler(fn func(step int, at float64)) Option {
	return func(s *Scheduler) { s.onStep = fn }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Scheduler) { s.log = log }
}

type Scheduler struct {
	clock     Clock
	sink      Sink
	lookahead float64
	leadIn    float64
	interval  time.Duration
	manual    bool
	onStep    func(step int, at float64)
	log       logrus.FieldLogger

	// ctl serializes Start, Stop and Reconfigure.
	ctl sync.Mutex

	mu            sync.Mutex
	cfg           Config
	state         State
	step          int
	nextEventTime float64
	playbackStart float64
	cancel        context.CancelFunc
	done          chan struct{}
}

func New(clock Clock, sink Sink, cfg Config, opts ...Option) (*Scheduler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{
		clock:     clock,
		sink:      sink,
		cfg:       cfg,
		lookahead: DefaultLookahead,
		leadIn:    DefaultLeadIn,
		interval:  DefaultInterval,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	return s, nil
}

// Start begins playback from step 0, leadIn seconds from now. Starting a
// playing scheduler restarts it.
func (s *Scheduler) Start() {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.stop()
	s.start()
}

func (s *Scheduler) start() {
	s.mu.Lock()
	now := s.clock.Now()
	s.step = 0
	s.playbackStart = now + s.leadIn
	s.nextEventTime = s.playbackStart
	s.state = Playing
	s.log.WithFields(logrus.Fields{
		"tempo": s.cfg.Tempo,
		"steps": s.cfg.Program.Length(),
		"start": s.playbackStart,
	}).Debug("scheduler started")
	s.tickLocked()
	if !s.manual {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.done = make(chan struct{})
		go s.run(ctx, s.done)
	}
	s.mu.Unlock()
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick emits every step due before now+lookahead. If the timer fell behind,
// the loop catches up in one call; nothing is skipped.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickLocked()
}

func (s *Scheduler) tickLocked() {
	if s.state != Playing {
		return
	}
	horizon := s.clock.Now() + s.lookahead
	prog := s.cfg.Program
	length := max(prog.Length(), 1)
	perStep := s.cfg.secondsPerStep()
	for s.nextEventTime < horizon {
		at, step := s.nextEventTime, s.step
		prog.Events(step, func(ev Event) {
			ev.Time = at
			ev.Step = step
			s.sink.Trigger(ev)
		})
		if s.onStep != nil {
			s.onStep(step, at)
		}
		s.nextEventTime += perStep
		s.step = (s.step + 1) % length
	}
}

// Stop halts the timer and waits for it to exit. Sound already handed to
// the sink keeps playing. Stop is idempotent.
func (s *Scheduler) Stop() {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.stop()
}

func (s *Scheduler) stop() {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return
	}
	s.state = Stopped
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	s.log.Debug("scheduler stopped")
}

// Reconfigure swaps tempo and program. A playing scheduler is stopped and
// restarted so the new settings begin from step 0; a stopped one only
// stores them.
func (s *Scheduler) Reconfigure(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	s.ctl.Lock()
	defer s.ctl.Unlock()

	s.mu.Lock()
	playing := s.state == Playing
	s.mu.Unlock()
	if playing {
		s.stop()
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	if playing {
		s.start()
	}
	return nil
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Scheduler) ClockState() ClockState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ClockState{
		NextEventTime: s.nextEventTime,
		Step:          s.step,
		PlaybackStart: s.playbackStart,
	}
}

// CurrentBeat returns the beat within the bar that is sounding at now. It
// reports false while stopped and during the lead-in.
func (s *Scheduler) CurrentBeat(now float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing || now < s.playbackStart {
		return 0, false
	}
	beats := max(s.cfg.Program.BeatsPerBar(), 1)
	n := int(math.Floor((now - s.playbackStart) / s.cfg.secondsPerBeat()))
	return n % beats, true
}

// CurrentStep returns the program step sounding at now, with the same
// reporting rules as CurrentBeat.
func (s *Scheduler) CurrentStep(now float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing || now < s.playbackStart {
		return 0, false
	}
	n := int(math.Floor((now - s.playbackStart) / s.cfg.secondsPerStep()))
	return n % max(s.cfg.Program.Length(), 1), true
}
