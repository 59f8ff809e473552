package basslab

import (
	"errors"

	"github.com/cbegin/basslab-go/internal/audio"
	"github.com/cbegin/basslab-go/internal/scheduler"
	"github.com/cbegin/basslab-go/internal/synth"
)

// offlineBlock matches the live scheduler's timer interval, so offline
// renders see the same lookahead margin as playback.
const offlineBlock = 0.025

// RenderPractice renders seconds of a practice loop as interleaved stereo.
func RenderPractice(p PracticeSettings, seconds float64, sampleRate int) ([]float32, error) {
	return render(p, seconds, sampleRate)
}

// RenderBeat renders seconds of a drum loop as interleaved stereo.
func RenderBeat(b BeatSettings, seconds float64, sampleRate int) ([]float32, error) {
	return render(b, seconds, sampleRate)
}

func render(set Settings, seconds float64, sampleRate int) ([]float32, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg, kit, err := set.program()
	if err != nil {
		return nil, err
	}
	mixer := audio.NewMixer(sampleRate)
	engine := synth.New(mixer)
	sched, err := scheduler.New(mixer, engine.Sink(kit), cfg, scheduler.WithManualTick())
	if err != nil {
		return nil, err
	}

	frames := int(seconds * float64(sampleRate))
	out := make([]float32, max(frames, 0)*2)
	block := max(int(offlineBlock*float64(sampleRate)), 1)
	sched.Start()
	for pos := 0; pos < frames; pos += block {
		n := min(block, frames-pos)
		sched.Tick()
		mixer.Process(out[pos*2 : (pos+n)*2])
	}
	sched.Stop()
	return out, nil
}
