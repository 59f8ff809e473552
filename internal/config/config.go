// Package config reads runtime settings from BASSLAB_* environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const prefix = "BASSLAB_"

// Config holds process-wide settings. Command-line flags override these per
// subcommand.
type Config struct {
	SampleRate   int
	BufferSize   time.Duration
	MasterVolume float64
	LogLevel     logrus.Level
	LicksFile    string

	GeminiAPIKey string
	OpenAIAPIKey string
	Model        string

	SentryDSN  string
	ListenAddr string
}

func Default() Config {
	return Config{
		SampleRate:   44100,
		BufferSize:   40 * time.Millisecond,
		MasterVolume: 0.8,
		LogLevel:     logrus.InfoLevel,
		ListenAddr:   "127.0.0.1:8740",
	}
}

// Load starts from Default and applies every variable that parses. Values
// that do not parse are ignored; numeric values are clamped to usable ranges.
func Load() Config {
	cfg := Default()

	if v, ok := lookupInt("SAMPLE_RATE"); ok && v > 0 {
		cfg.SampleRate = clampInt(v, 8000, 192000)
	}
	if v, ok := lookupInt("BUFFER_MS"); ok && v > 0 {
		cfg.BufferSize = time.Duration(clampInt(v, 5, 500)) * time.Millisecond
	}
	if v := os.Getenv(prefix + "MASTER_VOLUME"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MasterVolume = min(max(f, 0), 1.2)
		}
	}
	if v := os.Getenv(prefix + "LOG_LEVEL"); v != "" {
		if lvl, err := logrus.ParseLevel(v); err == nil {
			cfg.LogLevel = lvl
		}
	}
	if v := os.Getenv(prefix + "LICKS_FILE"); v != "" {
		cfg.LicksFile = v
	}

	cfg.GeminiAPIKey = firstEnv(prefix+"GEMINI_API_KEY", "GEMINI_API_KEY")
	cfg.OpenAIAPIKey = firstEnv(prefix+"OPENAI_API_KEY", "OPENAI_API_KEY")
	cfg.Model = os.Getenv(prefix + "MODEL")
	cfg.SentryDSN = firstEnv(prefix+"SENTRY_DSN", "SENTRY_DSN")
	if v := os.Getenv(prefix + "LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	return cfg
}

func lookupInt(name string) (int, bool) {
	v := os.Getenv(prefix + name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
