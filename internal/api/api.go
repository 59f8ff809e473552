// Package api is an HTTP control surface for a running studio.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	basslab "github.com/cbegin/basslab-go"
	"github.com/cbegin/basslab-go/internal/effects"
	"github.com/cbegin/basslab-go/internal/lick"
	"github.com/cbegin/basslab-go/internal/lickgen"
	"github.com/cbegin/basslab-go/internal/synth"
)

// Controller is the playback side of the API. *basslab.Studio implements it.
type Controller interface {
	PlayPractice(p basslab.PracticeSettings) error
	PlayBeat(b basslab.BeatSettings) error
	Reconfigure(s basslab.Settings) error
	Stop()
	Playing() bool
	CurrentBeat() (int, bool)
	SetEQBand(b effects.Band, gain float32)
	EQBand(b effects.Band) float32
	PreviewLick(l lick.Lick, sound synth.BassSound) error
	PreviewingLick() string
	StopPreview()
}

type errorBody struct {
	Error string `json:"error"`
}

// Err writes err as a JSON error body. Server errors are reported to Sentry.
func Err(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		sentry.CaptureException(err)
		logrus.WithError(err).WithField("status", status).Error("request failed")
	} else {
		logrus.WithError(err).WithField("status", status).Debug("request rejected")
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type Option func(*handler)

// WithGenerator enables POST /generate.
func WithGenerator(g lickgen.Generator) Option {
	return func(h *handler) { h.gen = g }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(h *handler) { h.log = log }
}

type handler struct {
	ctl Controller
	gen lickgen.Generator
	log logrus.FieldLogger

	mu       sync.Mutex
	licks    []lick.Lick
	practice *practiceRequest
	tempo    float64
}

type lickSummary struct {
	ID            int                `json:"id"`
	Name          string             `json:"name"`
	Artist        string             `json:"artist"`
	Category      lick.Category      `json:"category"`
	Description   string             `json:"description"`
	Difficulty    lick.Difficulty    `json:"difficulty"`
	TimeSignature lick.TimeSignature `json:"timeSignature"`
	OriginalKey   string             `json:"originalKey"`
	Transposable  bool               `json:"transposable"`
	Steps         int                `json:"steps"`
}

func summarize(id int, l lick.Lick) lickSummary {
	return lickSummary{
		ID:            id,
		Name:          l.Name,
		Artist:        l.Artist,
		Category:      l.Category,
		Description:   l.Description,
		Difficulty:    l.Difficulty,
		TimeSignature: l.TimeSignature,
		OriginalKey:   l.OriginalKey,
		Transposable:  l.Transposable,
		Steps:         len(l.Sequence),
	}
}

func (h *handler) lickByID(idVar string) (lick.Lick, int, error) {
	id, err := strconv.Atoi(idVar)
	if err != nil {
		return lick.Lick{}, 0, fmt.Errorf("bad lick id %q", idVar)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if id < 0 || id >= len(h.licks) {
		return lick.Lick{}, 0, fmt.Errorf("no lick %d", id)
	}
	return h.licks[id], id, nil
}

func (h *handler) handleLicksGet(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	out := make([]lickSummary, len(h.licks))
	for i, l := range h.licks {
		out[i] = summarize(i, l)
	}
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) handleTabGet(w http.ResponseWriter, r *http.Request) {
	l, _, err := h.lickByID(mux.Vars(r)["id"])
	if err != nil {
		Err(w, http.StatusNotFound, err)
		return
	}
	if key := r.URL.Query().Get("key"); key != "" {
		l = l.Transpose(key)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, l.Name)
	fmt.Fprint(w, l.Tablature())
}

func (h *handler) handlePatternsGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, lick.Patterns())
}

// practiceRequest is the body of PUT /practice and the answer to
// GET /practice.
type practiceRequest struct {
	Lick       int                `json:"lick"`
	Key        string             `json:"key,omitempty"`
	Tempo      float64            `json:"tempo"`
	Pattern    string             `json:"pattern,omitempty"`
	DrumsMuted bool               `json:"drumsMuted"`
	Sounds     map[string]string  `json:"sounds,omitempty"`
	Volumes    map[string]float64 `json:"volumes,omitempty"`
}

// beatRequest plays a catalog pattern by name, or the grid in Steps when it
// is set.
type beatRequest struct {
	Tempo   float64            `json:"tempo"`
	Pattern string             `json:"pattern,omitempty"`
	Steps   []lick.Step        `json:"steps,omitempty"`
	Sounds  map[string]string  `json:"sounds,omitempty"`
	Volumes map[string]float64 `json:"volumes,omitempty"`
}

// kit applies preset names and volumes keyed by channel name. Unknown
// channels are ignored and unknown presets fall back to the default.
func kit(sounds map[string]string, volumes map[string]float64) synth.Kit {
	k := synth.DefaultKit()
	for name, preset := range sounds {
		if c, ok := synth.ParseChannel(name); ok {
			k.SetPreset(c, preset)
		}
	}
	for name, v := range volumes {
		if c, ok := synth.ParseChannel(name); ok {
			k.SetVolume(c, v)
		}
	}
	return k
}

func pattern(name string) lick.DrumPattern {
	if p, ok := lick.PatternByName(name); ok {
		return p
	}
	return lick.DefaultPattern()
}

// play starts s, or reconfigures the running loop when one is playing.
func (h *handler) play(s basslab.Settings) error {
	if h.ctl.Playing() {
		return h.ctl.Reconfigure(s)
	}
	switch v := s.(type) {
	case basslab.PracticeSettings:
		return h.ctl.PlayPractice(v)
	case basslab.BeatSettings:
		return h.ctl.PlayBeat(v)
	}
	return errors.New("unknown settings")
}

func playStatus(err error) int {
	if errors.Is(err, basslab.ErrInvalidSettings) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *handler) handlePracticePut(w http.ResponseWriter, r *http.Request) {
	var req practiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Err(w, http.StatusBadRequest, err)
		return
	}
	l, _, err := h.lickByID(strconv.Itoa(req.Lick))
	if err != nil {
		Err(w, http.StatusNotFound, err)
		return
	}
	settings := basslab.PracticeSettings{
		Lick:       l,
		Key:        req.Key,
		Tempo:      req.Tempo,
		Pattern:    pattern(req.Pattern),
		DrumsMuted: req.DrumsMuted,
		Kit:        kit(req.Sounds, req.Volumes),
	}
	if err := h.play(settings); err != nil {
		Err(w, playStatus(err), err)
		return
	}
	h.mu.Lock()
	h.practice = &req
	h.tempo = req.Tempo
	h.mu.Unlock()
	h.log.WithFields(logrus.Fields{"lick": l.Name, "tempo": req.Tempo}).Info("practice started")
	writeJSON(w, http.StatusOK, req)
}

func (h *handler) handlePracticeGet(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	p := h.practice
	h.mu.Unlock()
	if p == nil {
		Err(w, http.StatusNotFound, errors.New("no practice session"))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) handlePracticeDelete(w http.ResponseWriter, r *http.Request) {
	h.ctl.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleBeatPut(w http.ResponseWriter, r *http.Request) {
	var req beatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Err(w, http.StatusBadRequest, err)
		return
	}
	p := pattern(req.Pattern)
	if len(req.Steps) > 0 {
		custom, err := lick.CustomPattern("Custom", req.Steps)
		if err != nil {
			Err(w, http.StatusBadRequest, err)
			return
		}
		p = custom
	}
	settings := basslab.BeatSettings{
		Tempo:   req.Tempo,
		Pattern: p,
		Kit:     kit(req.Sounds, req.Volumes),
	}
	if err := h.play(settings); err != nil {
		Err(w, playStatus(err), err)
		return
	}
	h.mu.Lock()
	h.practice = nil
	h.tempo = req.Tempo
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, req)
}

type previewRequest struct {
	Key   string `json:"key,omitempty"`
	Sound string `json:"sound,omitempty"`
}

func (h *handler) handlePreviewPost(w http.ResponseWriter, r *http.Request) {
	l, _, err := h.lickByID(mux.Vars(r)["id"])
	if err != nil {
		Err(w, http.StatusNotFound, err)
		return
	}
	// The body is optional.
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		Err(w, http.StatusBadRequest, err)
		return
	}
	if req.Key != "" {
		l = l.Transpose(req.Key)
	}
	if err := h.ctl.PreviewLick(l, synth.ParseBassSound(req.Sound)); err != nil {
		Err(w, playStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"previewing": l.Name})
}

func (h *handler) handlePreviewDelete(w http.ResponseWriter, r *http.Request) {
	h.ctl.StopPreview()
	w.WriteHeader(http.StatusNoContent)
}

type status struct {
	Playing    bool               `json:"playing"`
	Beat       *int               `json:"beat"`
	Tempo      float64            `json:"tempo,omitempty"`
	Previewing string             `json:"previewing,omitempty"`
	EQ         map[string]float32 `json:"eq"`
}

func (h *handler) handleStatusGet(w http.ResponseWriter, r *http.Request) {
	st := status{Playing: h.ctl.Playing(), Previewing: h.ctl.PreviewingLick(), EQ: map[string]float32{}}
	if b, ok := h.ctl.CurrentBeat(); ok {
		st.Beat = &b
	}
	for b := effects.BandSub; b <= effects.BandAir; b++ {
		st.EQ[b.String()] = h.ctl.EQBand(b)
	}
	h.mu.Lock()
	st.Tempo = h.tempo
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (h *handler) handleEQPut(w http.ResponseWriter, r *http.Request) {
	band, ok := effects.ParseBand(mux.Vars(r)["band"])
	if !ok {
		Err(w, http.StatusNotFound, fmt.Errorf("no band %q", mux.Vars(r)["band"]))
		return
	}
	var body struct {
		Gain *float32 `json:"gain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		Err(w, http.StatusBadRequest, err)
		return
	}
	if body.Gain == nil {
		Err(w, http.StatusBadRequest, errors.New("missing gain"))
		return
	}
	h.ctl.SetEQBand(band, *body.Gain)
	writeJSON(w, http.StatusOK, map[string]float32{band.String(): h.ctl.EQBand(band)})
}

type generateRequest struct {
	Difficulty lick.Difficulty `json:"difficulty"`
	Key        string          `json:"key"`
}

func (h *handler) handleGeneratePost(w http.ResponseWriter, r *http.Request) {
	if h.gen == nil {
		Err(w, http.StatusServiceUnavailable, errors.New("lick generation is not configured"))
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Err(w, http.StatusBadRequest, err)
		return
	}
	h.mu.Lock()
	avoid := lick.Names(h.licks)
	h.mu.Unlock()

	l, err := h.gen.Generate(r.Context(), lickgen.Request{Difficulty: req.Difficulty, Key: req.Key, Avoid: avoid})
	if err != nil {
		Err(w, http.StatusBadGateway, err)
		return
	}
	h.mu.Lock()
	h.licks = append(h.licks, l)
	id := len(h.licks) - 1
	h.mu.Unlock()
	writeJSON(w, http.StatusCreated, summarize(id, l))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewHandler serves the catalog in licks and controls ctl. Generated licks
// are appended to the handler's own copy of the catalog.
func NewHandler(ctl Controller, licks []lick.Lick, opts ...Option) http.Handler {
	h := &handler{
		ctl:   ctl,
		licks: append([]lick.Lick(nil), licks...),
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}

	sr := mux.NewRouter()
	sr.HandleFunc("/licks", h.handleLicksGet).Methods(http.MethodGet)
	sr.HandleFunc("/licks/{id}/tab", h.handleTabGet).Methods(http.MethodGet)
	sr.HandleFunc("/licks/{id}/preview", h.handlePreviewPost).Methods(http.MethodPost)
	sr.HandleFunc("/preview", h.handlePreviewDelete).Methods(http.MethodDelete)
	sr.HandleFunc("/patterns", h.handlePatternsGet).Methods(http.MethodGet)
	sr.HandleFunc("/practice", h.handlePracticeGet).Methods(http.MethodGet)
	sr.HandleFunc("/practice", h.handlePracticePut).Methods(http.MethodPut)
	sr.HandleFunc("/practice", h.handlePracticeDelete).Methods(http.MethodDelete)
	sr.HandleFunc("/beat", h.handleBeatPut).Methods(http.MethodPut)
	sr.HandleFunc("/status", h.handleStatusGet).Methods(http.MethodGet)
	sr.HandleFunc("/eq/{band}", h.handleEQPut).Methods(http.MethodPut)
	sr.HandleFunc("/generate", h.handleGeneratePost).Methods(http.MethodPost)

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.PathPrefix("/").Handler(sr)
	return r
}
