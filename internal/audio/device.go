package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// DefaultBufferSize keeps output latency low enough that the scheduler's
// 100 ms lookahead always lands ahead of the listener.
const DefaultBufferSize = 40 * time.Millisecond

var ErrClosed = errors.New("audio device closed")

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// sharedAudioContext returns the process-wide ebiten context. ebiten allows
// one context per process, so a second sample rate is an error.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// Device is the application's audio output. It is created up front and
// handed to whoever plays sound; the player behind it is opened on first
// use and kept for the life of the process.
type Device struct {
	mu         sync.Mutex
	sampleRate int
	bufferSize time.Duration
	player     *ebitaudio.Player
	reader     *StreamReader
	closed     bool
}

func NewDevice(sampleRate int, bufferSize time.Duration) *Device {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Device{sampleRate: sampleRate, bufferSize: bufferSize}
}

func (d *Device) SampleRate() int { return d.sampleRate }

func (d *Device) BufferSize() time.Duration { return d.bufferSize }

// Open attaches source and starts the output. Later calls are no-ops, so
// every caller can Open before playing without coordinating.
func (d *Device) Open(source SampleSource) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.player != nil {
		return nil
	}
	ctx, err := sharedAudioContext(d.sampleRate)
	if err != nil {
		return err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return fmt.Errorf("open player: %w", err)
	}
	pl.SetBufferSize(d.bufferSize)
	pl.Play()
	d.player = pl
	d.reader = reader
	return nil
}

func (d *Device) Opened() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.player != nil
}

func (d *Device) Play() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player != nil {
		d.player.Play()
	}
}

func (d *Device) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player != nil {
		d.player.Pause()
	}
}

// Position returns what the listener actually hears, which trails the
// mixer clock by the output buffer.
func (d *Device) Position() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player == nil {
		return 0
	}
	return d.player.Position()
}

// Close releases the player. It is idempotent.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.player == nil {
		return nil
	}
	d.player.Pause()
	err := d.player.Close()
	d.player = nil
	if rerr := d.reader.Close(); err == nil {
		err = rerr
	}
	return err
}
