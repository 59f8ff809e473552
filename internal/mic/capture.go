// Package mic captures mono microphone input into a ring buffer.
package mic

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// ErrUnavailable wraps any failure to acquire the input device, so callers
// can show a single "no microphone" message.
var ErrUnavailable = errors.New("microphone unavailable")

// Capture is a running PortAudio input stream on the default device.
type Capture struct {
	ring *Ring

	mu     sync.Mutex
	stream *portaudio.Stream
}

// Open initialises PortAudio and starts a mono input stream that keeps the
// newest history samples. frames is the callback block size.
func Open(sampleRate, frames, history int) (*Capture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c := &Capture{ring: NewRing(history)}
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), frames, c.ring.Write)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.stream = stream
	return c, nil
}

// Snapshot copies the newest samples into dst.
func (c *Capture) Snapshot(dst []float32) int {
	return c.ring.Snapshot(dst)
}

// Close stops the stream and releases PortAudio. It is idempotent.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		return nil
	}
	var errs []error
	if err := c.stream.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := c.stream.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, err)
	}
	c.stream = nil
	return errors.Join(errs...)
}
