package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	basslab "github.com/cbegin/basslab-go"
	"github.com/cbegin/basslab-go/internal/effects"
	"github.com/cbegin/basslab-go/internal/lick"
	"github.com/cbegin/basslab-go/internal/lickgen"
	"github.com/cbegin/basslab-go/internal/synth"
)

type fakeController struct {
	playing      bool
	practice     []basslab.PracticeSettings
	beats        []basslab.BeatSettings
	reconfigured []basslab.Settings
	stops        int
	beat         int
	eq           [effects.BandCount]float32
	err          error
	previewed    []lick.Lick
	previewSound synth.BassSound
	previewStops int
}

func (f *fakeController) PlayPractice(p basslab.PracticeSettings) error {
	if f.err != nil {
		return f.err
	}
	f.practice = append(f.practice, p)
	f.playing = true
	return nil
}

func (f *fakeController) PlayBeat(b basslab.BeatSettings) error {
	if f.err != nil {
		return f.err
	}
	f.beats = append(f.beats, b)
	f.playing = true
	return nil
}

func (f *fakeController) Reconfigure(s basslab.Settings) error {
	f.reconfigured = append(f.reconfigured, s)
	return f.err
}

func (f *fakeController) Stop() {
	f.stops++
	f.playing = false
}

func (f *fakeController) Playing() bool { return f.playing }

func (f *fakeController) CurrentBeat() (int, bool) { return f.beat, f.playing }

func (f *fakeController) SetEQBand(b effects.Band, gain float32) { f.eq[b] = gain }

func (f *fakeController) EQBand(b effects.Band) float32 { return f.eq[b] }

func (f *fakeController) PreviewLick(l lick.Lick, sound synth.BassSound) error {
	if l.Sequence.NoteCount() == 0 {
		return basslab.ErrInvalidSettings
	}
	f.previewed = append(f.previewed, l)
	f.previewSound = sound
	return nil
}

func (f *fakeController) PreviewingLick() string {
	if len(f.previewed) == 0 {
		return ""
	}
	return f.previewed[len(f.previewed)-1].Name
}

func (f *fakeController) StopPreview() {
	f.previewStops++
	f.previewed = nil
}

type fakeGenerator struct {
	req lickgen.Request
	err error
}

func (g *fakeGenerator) Generate(_ context.Context, req lickgen.Request) (lick.Lick, error) {
	g.req = req
	if g.err != nil {
		return lick.Lick{}, g.err
	}
	return lickgen.Decode([]byte(`{"name": "Fresh", "category": "Funk", "timeSignature": "4/4",
		"sequence": [{"midi": 28, "string": 3, "fret": 0}]}`), req)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLicksAndPatterns(t *testing.T) {
	h := NewHandler(&fakeController{}, lick.Licks())

	rec := do(t, h, http.MethodGet, "/licks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var licks []lickSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &licks))
	require.Len(t, licks, len(lick.Licks()))
	assert.Equal(t, 0, licks[0].ID)
	assert.Equal(t, "Chromatic Warm-up", licks[0].Name)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, h, http.MethodGet, "/patterns", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var patterns []lick.DrumPattern
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patterns))
	assert.Len(t, patterns, 7)
}

func TestTab(t *testing.T) {
	h := NewHandler(&fakeController{}, lick.Licks())

	rec := do(t, h, http.MethodGet, "/licks/1/tab", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Major Scale (G)\n"))
	assert.Contains(t, rec.Body.String(), "E|")

	rec = do(t, h, http.MethodGet, "/licks/1/tab?key=A", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Major Scale (A)\n"))

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/licks/99/tab", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/licks/x/tab", "").Code)
}

func TestPracticeLifecycle(t *testing.T) {
	ctl := &fakeController{}
	h := NewHandler(ctl, lick.Licks())

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/practice", "").Code)

	body := `{"lick": 1, "key": "A", "tempo": 100, "pattern": "Disco",
		"sounds": {"bass": "Sub Synth", "kick": "808"}, "volumes": {"snare": 3, "nope": 1}}`
	rec := do(t, h, http.MethodPut, "/practice", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, ctl.practice, 1)
	p := ctl.practice[0]
	assert.Equal(t, "Major Scale (G)", p.Lick.Name)
	assert.Equal(t, "A", p.Key)
	assert.Equal(t, "Disco", p.Pattern.Name)
	assert.Equal(t, string(synth.SubSynth), p.Kit.Preset(synth.Bass))
	assert.Equal(t, string(synth.Kick808), p.Kit.Preset(synth.Kick))
	assert.Equal(t, synth.MaxVolume, p.Kit.Volume(synth.Snare))

	rec = do(t, h, http.MethodGet, "/practice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tempo":100`)

	// A second PUT while playing reconfigures instead of restarting.
	rec = do(t, h, http.MethodPut, "/practice", `{"lick": 0, "tempo": 140, "pattern": "unknown"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ctl.reconfigured, 1)
	assert.Equal(t, lick.DefaultPattern().Name, ctl.reconfigured[0].(basslab.PracticeSettings).Pattern.Name)

	rec = do(t, h, http.MethodDelete, "/practice", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, ctl.stops)
}

func TestPracticeErrors(t *testing.T) {
	ctl := &fakeController{}
	h := NewHandler(ctl, lick.Licks())

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/practice", "{").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/practice", `{"lick": 42, "tempo": 90}`).Code)

	ctl.err = basslab.ErrInvalidSettings
	rec := do(t, h, http.MethodPut, "/practice", `{"lick": 0, "tempo": -1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "invalid settings")

	ctl.err = errors.New("device gone")
	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodPut, "/practice", `{"lick": 0, "tempo": 90}`).Code)
}

func TestBeatAndStatus(t *testing.T) {
	ctl := &fakeController{beat: 2}
	h := NewHandler(ctl, lick.Licks())

	rec := do(t, h, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.False(t, st.Playing)
	assert.Nil(t, st.Beat)

	rec = do(t, h, http.MethodPut, "/beat", `{"tempo": 80, "pattern": "Shuffle"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ctl.beats, 1)
	assert.Equal(t, "Shuffle", ctl.beats[0].Pattern.Name)

	rec = do(t, h, http.MethodGet, "/status", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.True(t, st.Playing)
	require.NotNil(t, st.Beat)
	assert.Equal(t, 2, *st.Beat)
	assert.Equal(t, 80.0, st.Tempo)
	assert.Len(t, st.EQ, int(effects.BandCount))
}

func TestEQ(t *testing.T) {
	ctl := &fakeController{}
	h := NewHandler(ctl, nil)

	rec := do(t, h, http.MethodPut, "/eq/low", `{"gain": 1.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float32(1.5), ctl.eq[effects.BandLow])

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/eq/ultra", `{"gain": 1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/eq/low", `{}`).Code)
}

func TestGenerate(t *testing.T) {
	h := NewHandler(&fakeController{}, lick.Licks())
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/generate", `{}`).Code)

	gen := &fakeGenerator{}
	h = NewHandler(&fakeController{}, lick.Licks(), WithGenerator(gen))
	rec := do(t, h, http.MethodPost, "/generate", `{"difficulty": "Advanced", "key": "D"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created lickSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, len(lick.Licks()), created.ID)
	assert.Equal(t, lick.Advanced, created.Difficulty)
	assert.Equal(t, "D", created.OriginalKey)
	assert.Contains(t, gen.req.Avoid, "Chromatic Warm-up")

	// The generated lick is now part of the catalog.
	rec = do(t, h, http.MethodGet, "/licks", "")
	var licks []lickSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &licks))
	assert.Equal(t, "Fresh", licks[len(licks)-1].Name)

	gen.err = lickgen.ErrGeneration
	assert.Equal(t, http.StatusBadGateway, do(t, h, http.MethodPost, "/generate", `{}`).Code)
}

func TestCORSPreflight(t *testing.T) {
	h := NewHandler(&fakeController{}, nil)
	rec := do(t, h, http.MethodOptions, "/practice", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestBeatCustomGrid(t *testing.T) {
	ctl := &fakeController{}
	h := NewHandler(ctl, nil)

	body := `{"tempo": 110, "pattern": "Disco", "steps": [
		[1, 0, 1, 0, 0], [0, 0, 1, 0, 0], [false, true, true], [0, 0, 1, 0, 0],
		[1, 0, 1, 0, 0], [1, 0, 1, 0, 0], [false, true, true], [0, 0, 1, 0, 1]]}`
	rec := do(t, h, http.MethodPut, "/beat", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, ctl.beats, 1)
	got := ctl.beats[0].Pattern
	assert.Equal(t, "Custom", got.Name)
	require.Len(t, got.Steps, 8)
	assert.Equal(t, lick.Step{lick.Kick: true, lick.HiHat: true}, got.Steps[0])
	assert.Equal(t, lick.Step{lick.Snare: true, lick.HiHat: true}, got.Steps[2])
	assert.Equal(t, "x...xx../..x...x./xxxxxxxx/......../.......x", got.Grid())

	// A grid sent while playing reconfigures the running loop.
	rec = do(t, h, http.MethodPut, "/beat", `{"tempo": 110, "steps": [[0, 1]]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ctl.reconfigured, 1)
	assert.Equal(t, "./x/././.", ctl.reconfigured[0].(basslab.BeatSettings).Pattern.Grid())

	tooWide := `{"tempo": 110, "steps": [` + strings.Repeat(`[1],`, lick.GridSteps) + `[1]]}`
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/beat", tooWide).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/beat", `{"tempo": 110, "steps": [[1, 0, 0, 0, 0, 1]]}`).Code)
	assert.Len(t, ctl.reconfigured, 1)
}

func TestLickPreview(t *testing.T) {
	ctl := &fakeController{}
	h := NewHandler(ctl, lick.Licks())

	rec := do(t, h, http.MethodPost, "/licks/1/preview", `{"key": "A", "sound": "J-Bass"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, ctl.previewed, 1)
	assert.Equal(t, "Major Scale (A)", ctl.previewed[0].Name)
	assert.Equal(t, synth.JBass, ctl.previewSound)
	assert.False(t, ctl.playing, "preview must not start the practice loop")

	rec = do(t, h, http.MethodGet, "/status", "")
	var st status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "Major Scale (A)", st.Previewing)

	rec = do(t, h, http.MethodPost, "/licks/0/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, synth.Electric, ctl.previewSound)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/licks/99/preview", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/preview", "").Code)
	assert.Equal(t, 1, ctl.previewStops)
}
