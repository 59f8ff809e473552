package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/cbegin/basslab-go/internal/config"
	"github.com/cbegin/basslab-go/internal/lick"
)

type command struct {
	name  string
	usage string
	run   func(cfg config.Config, args []string) error
}

var commands = []command{
	{"licks", "list the lick catalog", runLicks},
	{"tab", "print a lick as tablature", runTab},
	{"practice", "play a lick over drums in the terminal player", runPractice},
	{"beat", "play a drum pattern or edit one on a grid", runBeat},
	{"tuner", "chromatic tuner on the default microphone", runTuner},
	{"render", "render a practice loop or beat to WAV", runRender},
	{"midi", "export a practice loop as a Standard MIDI File", runMIDI},
	{"generate", "ask a language model for a new lick", runGenerate},
	{"serve", "serve the HTTP control API", runServe},
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: basslab <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-9s %s\n", c.name, c.usage)
	}
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cfg := config.Load()
	logrus.SetLevel(cfg.LogLevel)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
		}); err != nil {
			logrus.WithError(err).Warn("sentry disabled")
		}
		defer sentry.Flush(2 * time.Second)
	}

	name := os.Args[1]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(cfg, os.Args[2:]); err != nil {
			logrus.WithError(err).WithField("command", name).Error("failed")
			sentry.Flush(2 * time.Second)
			os.Exit(1)
		}
		return
	}
	usage()
	os.Exit(2)
}

// loadLicks reads the configured lick file, or the built-in catalog.
func loadLicks(cfg config.Config) ([]lick.Lick, error) {
	if cfg.LicksFile == "" {
		return lick.Licks(), nil
	}
	licks, err := lick.LoadFile(cfg.LicksFile)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"file": cfg.LicksFile, "count": len(licks)}).Debug("licks loaded")
	return licks, nil
}

// findLick accepts a catalog index or a name, case-insensitively.
func findLick(licks []lick.Lick, sel string) (lick.Lick, error) {
	if i, err := strconv.Atoi(sel); err == nil {
		if i < 0 || i >= len(licks) {
			return lick.Lick{}, fmt.Errorf("no lick #%d (catalog has %d)", i, len(licks))
		}
		return licks[i], nil
	}
	for _, l := range licks {
		if strings.EqualFold(l.Name, sel) {
			return l, nil
		}
	}
	return lick.Lick{}, fmt.Errorf("no lick named %q", sel)
}

// findPattern resolves a built-in pattern by name. A non-empty grid, as
// accepted by lick.ParseGrid, takes precedence over the name.
func findPattern(name, grid string) (lick.DrumPattern, error) {
	if grid != "" {
		return lick.ParseGrid(grid)
	}
	if name == "" {
		return lick.DefaultPattern(), nil
	}
	for _, p := range lick.Patterns() {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return lick.DrumPattern{}, fmt.Errorf("no drum pattern named %q", name)
}
