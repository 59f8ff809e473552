package tuner

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/cbegin/basslab-go/internal/mic"
	"github.com/cbegin/basslab-go/internal/pitch"
)

const testRate = 44100

type toneSource struct {
	freq   float64
	offset int
	closed int
}

func (s *toneSource) Snapshot(dst []float32) int {
	for i := range dst {
		dst[i] = float32(0.5 * math.Sin(2*math.Pi*s.freq*float64(s.offset+i)/testRate))
	}
	s.offset += len(dst) / 4
	return len(dst)
}

func (s *toneSource) Close() error {
	s.closed++
	return nil
}

func TestSessionDetectsWhileRunning(t *testing.T) {
	src := &toneSource{freq: 55}
	opens := 0
	s := NewSession(testRate, func(context.Context) (Source, error) {
		opens++
		return src, nil
	})
	if _, ok := s.Frame(); ok {
		t.Fatal("Frame before Start reported a reading")
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(context.Background()); err != nil || opens != 1 {
		t.Fatalf("second Start err = %v opens = %d, want no-op", err, opens)
	}
	var note string
	for i := 0; i < 5; i++ {
		r, ok := s.Frame()
		if !ok {
			t.Fatal("Frame reported stopped")
		}
		note = r.Note
	}
	if note != "A" {
		t.Fatalf("note = %q, want A", note)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if src.closed != 1 {
		t.Fatalf("closed = %d, want 1", src.closed)
	}
	if s.Running() {
		t.Fatal("still running after Stop")
	}
}

func TestSessionRestartsWithFreshState(t *testing.T) {
	src := &toneSource{freq: 110}
	s := NewSession(testRate, func(context.Context) (Source, error) { return src, nil })
	_ = s.Start(context.Background())
	for i := 0; i < 3; i++ {
		s.Frame()
	}
	_ = s.Stop()
	_ = s.Start(context.Background())
	if r, _ := s.Frame(); r.Note != "" {
		t.Fatalf("note = %q on first frame after restart, want none", r.Note)
	}
}

func TestSessionStartFailureStaysStopped(t *testing.T) {
	s := NewSession(testRate, func(context.Context) (Source, error) {
		return nil, mic.ErrUnavailable
	})
	err := s.Start(context.Background())
	if !errors.Is(err, mic.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if s.Running() {
		t.Fatal("running after failed Start")
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

// shortSource holds fewer samples than the window. Whatever sits in front of
// them in dst is stale and must not be analysed.
type shortSource struct {
	toneSource
	history int
}

func (s *shortSource) Snapshot(dst []float32) int {
	n := min(s.history, len(dst))
	for i := range dst[:len(dst)-n] {
		dst[i] = 0.9
	}
	s.toneSource.Snapshot(dst[len(dst)-n:])
	return n
}

func TestSessionAnalysesOnlyHeldSamples(t *testing.T) {
	src := &shortSource{toneSource: toneSource{freq: 110}, history: 2048}
	s := NewSession(testRate, func(context.Context) (Source, error) { return src, nil }, WithBufferSize(8192))
	if s.WindowSize() != 8192 {
		t.Fatalf("WindowSize = %d, want 8192", s.WindowSize())
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	var r pitch.Reading
	for i := 0; i < 5; i++ {
		r, _ = s.Frame()
	}
	if r.Note != "A" || math.Abs(r.Frequency-110) > 2 {
		t.Fatalf("reading = %+v, want A near 110 Hz", r)
	}
}

func TestWithBufferSizeIgnoresNonPositive(t *testing.T) {
	s := NewSession(testRate, nil, WithBufferSize(0))
	if s.WindowSize() != pitch.DefaultBufferSize {
		t.Fatalf("WindowSize = %d, want %d", s.WindowSize(), pitch.DefaultBufferSize)
	}
}
