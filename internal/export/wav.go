// Package export writes rendered practice loops to files other tools can
// open: 16-bit WAV audio and Standard MIDI Files.
package export

import (
	"errors"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// interleaved streams interleaved stereo float32 samples as beep frames.
type interleaved struct {
	buf []float32
	pos int
}

func (s *interleaved) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	n := 0
	for n < len(samples) && s.pos+1 < len(s.buf) {
		samples[n][0] = float64(s.buf[s.pos])
		samples[n][1] = float64(s.buf[s.pos+1])
		s.pos += 2
		n++
	}
	if n == 0 {
		s.pos = len(s.buf)
		return 0, false
	}
	return n, true
}

func (s *interleaved) Err() error { return nil }

// WriteWAV encodes interleaved stereo samples as a 16-bit PCM WAV file.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return errors.New("export: sample rate must be positive")
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	return wav.Encode(w, &interleaved{buf: samples}, format)
}
