// Package lickgen asks a hosted language model for a new practice lick and
// decodes the answer into a lick.Lick.
package lickgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/cbegin/basslab-go/internal/lick"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4.1-mini"
)

var (
	// ErrGeneration wraps every failure to produce a lick.
	ErrGeneration = errors.New("lick generation failed")
	// ErrNoProvider is returned when no API key is configured for the model.
	ErrNoProvider = errors.New("no generation provider configured")
)

// Request describes the lick to generate.
type Request struct {
	Difficulty lick.Difficulty
	Key        string
	// Avoid lists names already in the catalog.
	Avoid []string
}

type Generator interface {
	Generate(ctx context.Context, req Request) (lick.Lick, error)
}

// Config selects and authenticates a provider.
type Config struct {
	Model        string
	GeminiAPIKey string
	OpenAIAPIKey string
	Logger       logrus.FieldLogger
}

// completer sends one prompt and returns the raw JSON text of the answer.
type completer interface {
	name() string
	complete(ctx context.Context, system, prompt string) (string, error)
}

// NewGenerator picks the provider by model prefix: "gpt-" and "o" models go
// to OpenAI, everything else to Gemini. An empty model uses whichever key is
// configured, Gemini first.
func NewGenerator(ctx context.Context, cfg Config) (Generator, error) {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	model := strings.ToLower(strings.TrimSpace(cfg.Model))
	var (
		c   completer
		err error
	)
	switch {
	case model == "" && cfg.GeminiAPIKey != "":
		c, err = newGemini(ctx, cfg.GeminiAPIKey, DefaultGeminiModel)
	case model == "" && cfg.OpenAIAPIKey != "":
		c = newOpenAI(cfg.OpenAIAPIKey, DefaultOpenAIModel)
	case model == "":
		return nil, ErrNoProvider
	case isOpenAIModel(model):
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: openai API key not set for %s", ErrNoProvider, cfg.Model)
		}
		c = newOpenAI(cfg.OpenAIAPIKey, cfg.Model)
	default:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: gemini API key not set for %s", ErrNoProvider, cfg.Model)
		}
		c, err = newGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoProvider, err)
	}
	return &generator{c: c, log: log}, nil
}

func isOpenAIModel(model string) bool {
	return strings.HasPrefix(model, "gpt-") || strings.HasPrefix(model, "o1") ||
		strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4")
}

type generator struct {
	c   completer
	log logrus.FieldLogger
}

func (g *generator) Generate(ctx context.Context, req Request) (lick.Lick, error) {
	if !req.Difficulty.Valid() {
		req.Difficulty = lick.Beginner
	}
	if req.Key == "" {
		req.Key = "E"
	}
	log := g.log.WithFields(logrus.Fields{
		"provider":   g.c.name(),
		"difficulty": req.Difficulty,
		"key":        req.Key,
	})

	transaction := sentry.StartTransaction(ctx, "lickgen.generate")
	defer transaction.Finish()
	transaction.SetTag("provider", g.c.name())
	transaction.SetTag("difficulty", string(req.Difficulty))

	span := transaction.StartChild(g.c.name() + ".api_call")
	start := time.Now()
	text, err := g.c.complete(span.Context(), systemPrompt, Prompt(req))
	span.Finish()
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		log.WithError(err).Error("generation request failed")
		return lick.Lick{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	l, err := Decode([]byte(text), req)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		log.WithError(err).WithField("response", preview(text)).Error("generated lick rejected")
		return lick.Lick{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	transaction.SetTag("success", "true")
	log.WithFields(logrus.Fields{"name": l.Name, "elapsed": time.Since(start)}).Info("lick generated")
	return l, nil
}

// Decode turns a provider answer into a lick. Difficulty and key come from
// the request; only scales and arpeggios are transposable.
func Decode(data []byte, req Request) (lick.Lick, error) {
	l, err := lick.Parse(stripFence(data))
	if err != nil {
		return lick.Lick{}, err
	}
	l.Difficulty = req.Difficulty
	l.OriginalKey = req.Key
	l.Transposable = l.Category == lick.CategoryScale || l.Category == lick.CategoryArpeggio
	return l, nil
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(data []byte) []byte {
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, "```") {
		return data
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}

func preview(s string) string {
	const n = 200
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
