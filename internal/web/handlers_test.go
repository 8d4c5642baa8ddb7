package web

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-emotion-player/internal/catalog"
	"github.com/justestif/go-emotion-player/internal/db"
	"github.com/justestif/go-emotion-player/internal/mood"
	"github.com/justestif/go-emotion-player/internal/stabilizer"
	assets "github.com/justestif/go-emotion-player/web"
)

type fakeRecorder struct {
	mu    sync.Mutex
	plays []db.Play
}

func (f *fakeRecorder) Record(_ context.Context, p *db.Play) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays = append(f.plays, *p)
	return nil
}

func (f *fakeRecorder) all() []db.Play {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]db.Play(nil), f.plays...)
}

// client is a browser: it keeps the session cookie between requests.
type client struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func newClient(t *testing.T, plays PlayRecorder) *client {
	t.Helper()

	templates, err := fs.Sub(assets.TemplatesFS, "templates")
	require.NoError(t, err)
	static, err := fs.Sub(assets.StaticFS, "static")
	require.NoError(t, err)

	cfg := ServerConfig{
		Catalog:     catalog.Default(),
		Stabilizer:  stabilizer.DefaultConfig(),
		TemplatesFS: templates,
		StaticFS:    static,
		Plays:       plays,
	}
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	return &client{t: t, srv: srv}
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	c.srv.Handler().ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookieName {
			c.cookie = ck
		}
	}
	return rec
}

type stateBody struct {
	Mood  mood.Mood      `json:"mood"`
	Track *catalog.Track `json:"track"`
	State struct {
		Playing         bool    `json:"playing"`
		Volume          float64 `json:"volume"`
		Muted           bool    `json:"muted"`
		Looping         bool    `json:"looping"`
		Shuffle         bool    `json:"shuffle"`
		DetectionActive bool    `json:"detectionActive"`
		CurrentTime     float64 `json:"currentTime"`
		Duration        float64 `json:"duration"`
	} `json:"state"`
	Elapsed        string   `json:"elapsed"`
	LastError      string   `json:"lastError"`
	PendingIntents []Intent `json:"pendingIntents"`
	Accepted       bool     `json:"accepted"`
	To             string   `json:"to"`
	Error          string   `json:"error"`
}

func (c *client) state(method, path, body string, wantStatus int) stateBody {
	c.t.Helper()
	rec := c.do(method, path, body)
	require.Equal(c.t, wantStatus, rec.Code, rec.Body.String())
	assert.Equal(c.t, "application/json", rec.Header().Get("Content-Type"))

	var sb stateBody
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &sb))
	return sb
}

func ops(intents []Intent) []string {
	out := make([]string, len(intents))
	for i, in := range intents {
		out[i] = in.Op
	}
	return out
}

func TestHome(t *testing.T) {
	c := newClient(t, nil)

	rec := c.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Emotion Player")
	assert.Contains(t, rec.Body.String(), `id="now-playing"`)
	require.NotNil(t, c.cookie, "session cookie set")
	assert.True(t, c.cookie.HttpOnly)

	frag := c.do(http.MethodGet, "/partials/now-playing", "")
	require.Equal(t, http.StatusOK, frag.Code)
	assert.Contains(t, frag.Body.String(), `data-mood="neutral"`)
	assert.Contains(t, frag.Body.String(), "Neutral")
	assert.NotContains(t, frag.Body.String(), "<html")

	assert.Equal(t, 1, c.srv.Sessions().Len(), "cookie reused across requests")
}

func TestStaticAssets(t *testing.T) {
	c := newClient(t, nil)
	rec := c.do(http.MethodGet, "/static/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogEndpoint(t *testing.T) {
	c := newClient(t, nil)

	rec := c.do(http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries map[mood.Mood][]catalog.Track
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, len(mood.All()))
	for _, m := range mood.All() {
		assert.Len(t, entries[m], 3, m)
	}
}

func TestInitialState(t *testing.T) {
	c := newClient(t, nil)

	first := c.state(http.MethodGet, "/api/state", "", http.StatusOK)
	assert.Equal(t, mood.Neutral, first.Mood)
	require.NotNil(t, first.Track)
	assert.Equal(t, mood.Neutral, first.Track.Mood)
	assert.False(t, first.State.Playing)
	assert.InDelta(t, 0.7, first.State.Volume, 1e-9)
	assert.True(t, first.State.DetectionActive)
	assert.Equal(t, "00:00", first.Elapsed)

	require.Equal(t, []string{OpLoad}, ops(first.PendingIntents))
	assert.Equal(t, first.Track.Path, first.PendingIntents[0].Locator)

	second := c.state(http.MethodGet, "/api/state", "", http.StatusOK)
	assert.Empty(t, second.PendingIntents, "intents are delivered once")
	assert.NotNil(t, second.PendingIntents)
	assert.Equal(t, first.Track.ID, second.Track.ID)
}

func TestSamples(t *testing.T) {
	c := newClient(t, nil)
	c.state(http.MethodGet, "/api/state", "", http.StatusOK)

	changed := c.state(http.MethodPost, "/api/samples", `{"label":"Happy","confidence":0.9}`, http.StatusOK)
	assert.True(t, changed.Accepted)
	assert.Equal(t, "happy", changed.To)
	assert.Equal(t, mood.Happy, changed.Mood)
	require.NotNil(t, changed.Track)
	assert.Equal(t, mood.Happy, changed.Track.Mood)
	assert.Equal(t, []string{OpLoad}, ops(changed.PendingIntents), "no play intent while paused")

	// Inside the dwell window.
	held := c.state(http.MethodPost, "/api/samples", `{"scores":{"happy":0.1,"sad":0.8}}`, http.StatusOK)
	assert.False(t, held.Accepted)
	assert.Equal(t, mood.Happy, held.Mood)
	assert.Equal(t, changed.Track.ID, held.Track.ID)
}

func TestSampleScoresPicksStrongestExpression(t *testing.T) {
	c := newClient(t, nil)

	got := c.state(http.MethodPost, "/api/samples", `{"scores":{"happy":0.1,"angry":0.7,"fearful":0.2}}`, http.StatusOK)
	assert.True(t, got.Accepted)
	assert.Equal(t, mood.Angry, got.Mood)
}

func TestSampleWhileDetectionPaused(t *testing.T) {
	c := newClient(t, nil)

	c.state(http.MethodPost, "/api/controls/detection", `{"active":false}`, http.StatusOK)
	got := c.state(http.MethodPost, "/api/samples", `{"label":"sad","confidence":1}`, http.StatusOK)
	assert.False(t, got.Accepted)
	assert.Equal(t, mood.Neutral, got.Mood)
	assert.False(t, got.State.DetectionActive)
}

func TestControls(t *testing.T) {
	c := newClient(t, nil)
	c.state(http.MethodGet, "/api/state", "", http.StatusOK)

	played := c.state(http.MethodPost, "/api/controls/play", "", http.StatusOK)
	assert.True(t, played.State.Playing)
	assert.Equal(t, []string{OpPlay}, ops(played.PendingIntents))

	toggled := c.state(http.MethodPost, "/api/controls/toggle", "", http.StatusOK)
	assert.False(t, toggled.State.Playing)
	assert.Equal(t, []string{OpPause}, ops(toggled.PendingIntents))

	loop := c.state(http.MethodPost, "/api/controls/loop", "", http.StatusOK)
	assert.True(t, loop.State.Looping)

	shuffle := c.state(http.MethodPost, "/api/controls/shuffle", "", http.StatusOK)
	assert.True(t, shuffle.State.Shuffle)

	vol := c.state(http.MethodPost, "/api/controls/volume", `{"volume":1.5}`, http.StatusOK)
	assert.Equal(t, 1.0, vol.State.Volume)
	require.Len(t, vol.PendingIntents, 1)
	assert.Equal(t, Intent{Seq: vol.PendingIntents[0].Seq, Op: OpVolume, Volume: 1}, vol.PendingIntents[0])

	muted := c.state(http.MethodPost, "/api/controls/mute", "", http.StatusOK)
	assert.True(t, muted.State.Muted)

	c.state(http.MethodPost, "/api/transport/durationchange", `{"seconds":200}`, http.StatusOK)
	seek := c.state(http.MethodPost, "/api/controls/seek", `{"seconds":500}`, http.StatusOK)
	assert.Equal(t, 200.0, seek.State.CurrentTime)
}

func TestNavigation(t *testing.T) {
	c := newClient(t, nil)
	cat := catalog.Default()

	start := c.state(http.MethodGet, "/api/state", "", http.StatusOK)
	neutral := cat.TracksFor(mood.Neutral)
	idx, err := cat.IndexOf(*start.Track)
	require.NoError(t, err)

	next := c.state(http.MethodPost, "/api/controls/next", "", http.StatusOK)
	assert.Equal(t, neutral[(idx+1)%len(neutral)].ID, next.Track.ID)
	assert.Equal(t, []string{OpLoad}, ops(next.PendingIntents))

	prev := c.state(http.MethodPost, "/api/controls/previous", "", http.StatusOK)
	assert.Equal(t, start.Track.ID, prev.Track.ID)
}

func TestTransportEvents(t *testing.T) {
	c := newClient(t, nil)
	cat := catalog.Default()

	start := c.state(http.MethodGet, "/api/state", "", http.StatusOK)
	idx, err := cat.IndexOf(*start.Track)
	require.NoError(t, err)

	tick := c.state(http.MethodPost, "/api/transport/timeupdate", `{"seconds":61.5}`, http.StatusOK)
	assert.Equal(t, "01:01", tick.Elapsed)

	ended := c.state(http.MethodPost, "/api/transport/ended", "", http.StatusOK)
	neutral := cat.TracksFor(mood.Neutral)
	assert.Equal(t, neutral[(idx+1)%len(neutral)].ID, ended.Track.ID)
	assert.True(t, ended.State.Playing)
	assert.Equal(t, []string{OpLoad, OpPlay}, ops(ended.PendingIntents))
	assert.Equal(t, 0.0, ended.State.CurrentTime)

	failed := c.state(http.MethodPost, "/api/transport/error", `{"message":"NotAllowedError"}`, http.StatusOK)
	assert.False(t, failed.State.Playing)
	assert.Equal(t, "NotAllowedError", failed.LastError)
	assert.Equal(t, ended.Track.ID, failed.Track.ID, "failure keeps the track")
}

func TestLoopReplaysTrack(t *testing.T) {
	c := newClient(t, nil)

	start := c.state(http.MethodGet, "/api/state", "", http.StatusOK)
	c.state(http.MethodPost, "/api/controls/loop", "", http.StatusOK)

	ended := c.state(http.MethodPost, "/api/transport/ended", "", http.StatusOK)
	assert.Equal(t, start.Track.ID, ended.Track.ID)
	assert.Equal(t, []string{OpSeek, OpPlay}, ops(ended.PendingIntents))
}

func TestRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown control", "/api/controls/rewind", "", http.StatusNotFound},
		{"unknown transport event", "/api/transport/stalled", "", http.StatusNotFound},
		{"malformed seek", "/api/controls/seek", `{"seconds":`, http.StatusBadRequest},
		{"malformed sample", "/api/samples", `not json`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, nil)
			got := c.state(http.MethodPost, tt.path, tt.body, tt.status)
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestPlayHistory(t *testing.T) {
	rec := &fakeRecorder{}
	c := newClient(t, rec)

	start := c.state(http.MethodGet, "/api/state", "", http.StatusOK)
	c.state(http.MethodPost, "/api/controls/next", "", http.StatusOK)
	c.srv.Close()

	plays := rec.all()
	require.Len(t, plays, 2)
	assert.Equal(t, start.Track.ID, plays[0].TrackID)
	assert.Equal(t, "start", plays[0].Reason)
	assert.Equal(t, "next", plays[1].Reason)
	assert.Equal(t, "neutral", plays[1].Mood)
	assert.Equal(t, plays[0].SessionID, plays[1].SessionID)
	assert.Equal(t, c.cookie.Value, plays[0].SessionID.String())
	assert.False(t, plays[0].PlayedAt.IsZero())
}

// blockingRecorder holds every Record call until release is closed.
type blockingRecorder struct {
	fakeRecorder
	release chan struct{}
}

func (b *blockingRecorder) Record(ctx context.Context, p *db.Play) error {
	<-b.release
	return b.fakeRecorder.Record(ctx, p)
}

func TestPlayHistoryDoesNotBlockRequests(t *testing.T) {
	rec := &blockingRecorder{release: make(chan struct{})}
	c := newClient(t, rec)

	c.state(http.MethodGet, "/api/state", "", http.StatusOK)
	c.state(http.MethodPost, "/api/controls/next", "", http.StatusOK)
	assert.Empty(t, rec.all(), "nothing written while the database is stalled")

	close(rec.release)
	c.srv.Close()
	assert.Len(t, rec.all(), 2)
}

func TestNewServerRequiresCatalog(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}
