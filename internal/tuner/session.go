// Package tuner runs the pitch detector against a live input for as long as
// the user keeps the tuner open.
package tuner

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cbegin/basslab-go/internal/mic"
	"github.com/cbegin/basslab-go/internal/pitch"
)

// Source is an input the session reads its analysis window from.
type Source interface {
	Snapshot(dst []float32) int
	Close() error
}

// Opener acquires the input. It is called on every Start.
type Opener func(ctx context.Context) (Source, error)

// MicOpener opens the default microphone, keeping history samples. Pass the
// session's window size so every frame can be filled.
func MicOpener(sampleRate, frames, history int) Opener {
	return func(context.Context) (Source, error) {
		c, err := mic.Open(sampleRate, frames, history)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

type Option func(*Session)

// WithBufferSize sets the analysis window. Non-positive sizes are ignored.
func WithBufferSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.window = make([]float32, n)
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) { s.log = log }
}

// Session owns the input and the detector between Start and Stop.
type Session struct {
	open     Opener
	detector *pitch.Detector
	window   []float32
	log      logrus.FieldLogger

	mu     sync.Mutex
	source Source
}

func NewSession(sampleRate int, open Opener, opts ...Option) *Session {
	s := &Session{
		open:     open,
		detector: pitch.NewDetector(sampleRate),
		window:   make([]float32, pitch.DefaultBufferSize),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start acquires the input. On failure the session stays stopped and the
// error is returned. Starting a running session is a no-op.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source != nil {
		return nil
	}
	src, err := s.open(ctx)
	if err != nil {
		s.log.WithError(err).Warn("tuner input unavailable")
		return fmt.Errorf("start tuner: %w", err)
	}
	s.detector.Reset()
	s.source = src
	s.log.Debug("tuner started")
	return nil
}

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source != nil
}

// Frame runs one detection pass over the newest input, analysing only the
// samples the source holds. The second result is false when the session is
// not running.
func (s *Session) Frame() (pitch.Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return pitch.Reading{}, false
	}
	n := min(max(s.source.Snapshot(s.window), 0), len(s.window))
	return s.detector.Process(s.window[len(s.window)-n:]), true
}

// WindowSize is the number of samples each frame analyses at most.
func (s *Session) WindowSize() int { return len(s.window) }

// Stop releases the input and clears the detector. It is idempotent.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detector.Stop()
	if s.source == nil {
		return nil
	}
	err := s.source.Close()
	s.source = nil
	s.log.Debug("tuner stopped")
	return err
}
