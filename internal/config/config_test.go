package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

var allVars = []string{
	"SAMPLE_RATE", "BUFFER_MS", "MASTER_VOLUME", "LOG_LEVEL", "LICKS_FILE",
	"GEMINI_API_KEY", "OPENAI_API_KEY", "MODEL", "SENTRY_DSN", "LISTEN_ADDR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range allVars {
		t.Setenv(prefix+v, "")
	}
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SENTRY_DSN", "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, Default(), Load())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASSLAB_SAMPLE_RATE", "48000")
	t.Setenv("BASSLAB_BUFFER_MS", "20")
	t.Setenv("BASSLAB_MASTER_VOLUME", "0.5")
	t.Setenv("BASSLAB_LOG_LEVEL", "debug")
	t.Setenv("BASSLAB_LICKS_FILE", "/tmp/licks.json")
	t.Setenv("BASSLAB_MODEL", "gpt-4.1")
	t.Setenv("BASSLAB_LISTEN_ADDR", ":9000")

	cfg := Load()
	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, 20*time.Millisecond, cfg.BufferSize)
	assert.InDelta(t, 0.5, cfg.MasterVolume, 1e-9)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "/tmp/licks.json", cfg.LicksFile)
	assert.Equal(t, "gpt-4.1", cfg.Model)
	assert.Equal(t, ":9000", cfg.ListenAddr)
}

func TestLoadClampsAndIgnoresGarbage(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASSLAB_SAMPLE_RATE", "1000")
	t.Setenv("BASSLAB_BUFFER_MS", "soon")
	t.Setenv("BASSLAB_MASTER_VOLUME", "7")
	t.Setenv("BASSLAB_LOG_LEVEL", "chatty")

	cfg := Load()
	assert.Equal(t, 8000, cfg.SampleRate)
	assert.Equal(t, Default().BufferSize, cfg.BufferSize)
	assert.InDelta(t, 1.2, cfg.MasterVolume, 1e-9)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
}

func TestLoadAPIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "plain")
	t.Setenv("BASSLAB_OPENAI_API_KEY", "prefixed")
	t.Setenv("OPENAI_API_KEY", "plain")

	cfg := Load()
	assert.Equal(t, "plain", cfg.GeminiAPIKey)
	assert.Equal(t, "prefixed", cfg.OpenAIAPIKey)
}
