package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	basslab "github.com/cbegin/basslab-go"
	"github.com/cbegin/basslab-go/internal/api"
	"github.com/cbegin/basslab-go/internal/config"
	"github.com/cbegin/basslab-go/internal/effects"
	"github.com/cbegin/basslab-go/internal/export"
	"github.com/cbegin/basslab-go/internal/lick"
	"github.com/cbegin/basslab-go/internal/lickgen"
	"github.com/cbegin/basslab-go/internal/pitch"
	"github.com/cbegin/basslab-go/internal/synth"
	"github.com/cbegin/basslab-go/internal/tui"
	"github.com/cbegin/basslab-go/internal/tuner"
)

const micFrames = 512

// loopFlags are shared by the commands that build a practice loop.
type loopFlags struct {
	lick    *string
	key     *string
	tempo   *float64
	pattern *string
	steps   *string
	bass    *string
	mute    *bool
}

func addLoopFlags(fs *flag.FlagSet) loopFlags {
	return loopFlags{
		lick:    fs.String("lick", "0", "lick index or name"),
		key:     fs.String("key", "", "transpose to this key (transposable licks only)"),
		tempo:   fs.Float64("tempo", basslab.DefaultTempo, "tempo in BPM"),
		pattern: fs.String("pattern", "", "drum pattern name"),
		steps:   fs.String("steps", "", "custom drum grid, e.g. x...x.../..x...x./xxxxxxxx"),
		bass:    fs.String("bass", string(synth.Electric), "bass sound"),
		mute:    fs.Bool("mute-drums", false, "play the bass line alone"),
	}
}

func (f loopFlags) settings(cfg config.Config) (basslab.PracticeSettings, error) {
	licks, err := loadLicks(cfg)
	if err != nil {
		return basslab.PracticeSettings{}, err
	}
	l, err := findLick(licks, *f.lick)
	if err != nil {
		return basslab.PracticeSettings{}, err
	}
	pattern, err := findPattern(*f.pattern, *f.steps)
	if err != nil {
		return basslab.PracticeSettings{}, err
	}
	kit := synth.DefaultKit()
	kit.Bass = synth.ParseBassSound(*f.bass)
	return basslab.PracticeSettings{
		Lick:       l,
		Key:        *f.key,
		Tempo:      *f.tempo,
		Pattern:    pattern,
		DrumsMuted: *f.mute,
		Kit:        kit,
	}, nil
}

// newStudio opens a studio on the default device. room > 0 adds a room
// reverb with that wet mix to the master bus.
func newStudio(cfg config.Config, sampleRate int, room float64) (*basslab.Studio, error) {
	opts := []basslab.StudioOption{
		basslab.WithSampleRate(sampleRate),
		basslab.WithBufferSize(cfg.BufferSize),
		basslab.WithLogger(logrus.StandardLogger()),
	}
	if room > 0 {
		opts = append(opts, basslab.WithBusEffect(effects.NewReverb(sampleRate, effects.ReverbParams{
			Size:    0.4,
			Decay:   0.6,
			Damping: 0.4,
			Mix:     float32(min(room, 1)),
		})))
	}
	s, err := basslab.NewStudio(opts...)
	if err != nil {
		return nil, err
	}
	s.SetMasterVolume(cfg.MasterVolume)
	return s, nil
}

func runLicks(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("licks", flag.ExitOnError)
	fs.Parse(args)
	licks, err := loadLicks(cfg)
	if err != nil {
		return err
	}
	for i, l := range licks {
		key := l.OriginalKey
		if l.Transposable {
			key += "*"
		}
		fmt.Printf("%3d  %-32s %-10s %-13s %-4s %s\n", i, l.Name, l.Category, l.Difficulty, l.TimeSignature, key)
	}
	return nil
}

func runTab(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("tab", flag.ExitOnError)
	sel := fs.String("lick", "0", "lick index or name")
	key := fs.String("key", "", "transpose to this key")
	fs.Parse(args)
	licks, err := loadLicks(cfg)
	if err != nil {
		return err
	}
	l, err := findLick(licks, *sel)
	if err != nil {
		return err
	}
	if *key != "" {
		l = l.Transpose(*key)
	}
	fmt.Println(l.Name)
	fmt.Print(l.Tablature())
	return nil
}

func runPractice(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("practice", flag.ExitOnError)
	sampleRate := fs.Int("sample-rate", cfg.SampleRate, "output sample rate")
	lf := addLoopFlags(fs)
	room := fs.Float64("room", 0, "room reverb mix, 0 to 1")
	fs.Parse(args)

	settings, err := lf.settings(cfg)
	if err != nil {
		return err
	}
	licks, err := loadLicks(cfg)
	if err != nil {
		return err
	}
	studio, err := newStudio(cfg, *sampleRate, *room)
	if err != nil {
		return err
	}
	defer studio.Close()

	_, err = tea.NewProgram(tui.NewPractice(studio, licks, settings)).Run()
	return err
}

func runBeat(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("beat", flag.ExitOnError)
	sampleRate := fs.Int("sample-rate", cfg.SampleRate, "output sample rate")
	tempo := fs.Float64("tempo", 120, "tempo in BPM")
	patternName := fs.String("pattern", "", "drum pattern name")
	grid := fs.String("steps", "", "custom drum grid, lanes kick/snare/hihat/clap/tom, e.g. x...x.../..x...x./xxxxxxxx")
	edit := fs.Bool("edit", false, "open the grid editor")
	room := fs.Float64("room", 0, "room reverb mix, 0 to 1")
	fs.Parse(args)

	pattern, err := findPattern(*patternName, *grid)
	if err != nil {
		return err
	}
	studio, err := newStudio(cfg, *sampleRate, *room)
	if err != nil {
		return err
	}
	defer studio.Close()

	settings := basslab.BeatSettings{Tempo: *tempo, Pattern: pattern, Kit: synth.DefaultKit()}
	if *edit {
		if *grid == "" && *patternName == "" {
			settings.Pattern = lick.StarterGrid()
		}
		_, err = tea.NewProgram(tui.NewBeatMaker(studio, settings)).Run()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	steps := studio.Watch()
	if err := studio.PlayBeat(settings); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"pattern": pattern.Name, "tempo": *tempo}).Info("playing, interrupt to stop")
	for {
		select {
		case <-ctx.Done():
			studio.Stop()
			return nil
		case ev := <-steps:
			logrus.WithFields(logrus.Fields{"step": ev.Step, "time": ev.Time}).Debug("step")
		}
	}
}

func runTuner(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("tuner", flag.ExitOnError)
	sampleRate := fs.Int("sample-rate", cfg.SampleRate, "input sample rate")
	window := fs.Int("window", pitch.DefaultBufferSize, "analysis window in samples")
	fs.Parse(args)

	session := tuner.NewSession(*sampleRate, tuner.MicOpener(*sampleRate, micFrames, *window),
		tuner.WithBufferSize(*window),
		tuner.WithLogger(logrus.StandardLogger()))
	defer session.Stop()
	_, err := tea.NewProgram(tui.NewTuner(session)).Run()
	return err
}

func runRender(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("o", "basslab.wav", "output WAV path")
	seconds := fs.Float64("seconds", 8, "length to render")
	sampleRate := fs.Int("sample-rate", cfg.SampleRate, "render sample rate")
	beatOnly := fs.Bool("beat", false, "render the drum pattern alone")
	lf := addLoopFlags(fs)
	fs.Parse(args)

	settings, err := lf.settings(cfg)
	if err != nil {
		return err
	}
	var samples []float32
	if *beatOnly {
		samples, err = basslab.RenderBeat(basslab.BeatSettings{Tempo: settings.Tempo, Pattern: settings.Pattern, Kit: settings.Kit}, *seconds, *sampleRate)
	} else {
		samples, err = basslab.RenderPractice(settings, *seconds, *sampleRate)
	}
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := export.WriteWAV(f, samples, *sampleRate); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"file": *out, "seconds": *seconds}).Info("rendered")
	return nil
}

func runMIDI(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("midi", flag.ExitOnError)
	out := fs.String("o", "basslab.mid", "output MIDI path")
	bars := fs.Int("bars", 4, "bars to write")
	lf := addLoopFlags(fs)
	fs.Parse(args)

	settings, err := lf.settings(cfg)
	if err != nil {
		return err
	}
	l := settings.Lick
	if settings.Key != "" {
		l = l.Transpose(settings.Key)
	}
	if settings.DrumsMuted {
		settings.Pattern = lick.DrumPattern{Name: "none"}
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := export.WriteMIDI(f, l, settings.Pattern, settings.Tempo, *bars); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"file": *out, "lick": l.Name, "bars": *bars}).Info("exported")
	return nil
}

func newGenerator(ctx context.Context, cfg config.Config, model string) (lickgen.Generator, error) {
	return lickgen.NewGenerator(ctx, lickgen.Config{
		Model:        model,
		GeminiAPIKey: cfg.GeminiAPIKey,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		Logger:       logrus.StandardLogger(),
	})
}

func runGenerate(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	difficulty := fs.String("difficulty", string(lick.Beginner), "Beginner, Intermediate or Advanced")
	key := fs.String("key", "E", "key of the lick")
	model := fs.String("model", cfg.Model, "model name; gpt-* and o* models use OpenAI")
	asJSON := fs.Bool("json", false, "print the lick as JSON")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	gen, err := newGenerator(ctx, cfg, *model)
	if err != nil {
		return err
	}
	licks, err := loadLicks(cfg)
	if err != nil {
		return err
	}
	l, err := gen.Generate(ctx, lickgen.Request{
		Difficulty: lick.Difficulty(*difficulty),
		Key:        *key,
		Avoid:      lick.Names(licks),
	})
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	}
	fmt.Printf("%s (%s, %s, %s)\n%s\n", l.Name, l.Category, l.Difficulty, l.TimeSignature, l.Description)
	fmt.Print(l.Tablature())
	return nil
}

func runServe(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.ListenAddr, "listen address")
	sampleRate := fs.Int("sample-rate", cfg.SampleRate, "output sample rate")
	room := fs.Float64("room", 0, "room reverb mix, 0 to 1")
	fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	licks, err := loadLicks(cfg)
	if err != nil {
		return err
	}
	studio, err := newStudio(cfg, *sampleRate, *room)
	if err != nil {
		return err
	}
	defer studio.Close()

	opts := []api.Option{api.WithLogger(logrus.StandardLogger())}
	gen, err := newGenerator(ctx, cfg, cfg.Model)
	switch {
	case err == nil:
		opts = append(opts, api.WithGenerator(gen))
	case errors.Is(err, lickgen.ErrNoProvider):
		logrus.WithError(err).Info("lick generation disabled")
	default:
		return err
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.NewHandler(studio, licks, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logrus.WithField("addr", *addr).Info("serving")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}
