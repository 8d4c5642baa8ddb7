package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/justestif/go-emotion-player/internal/catalog"
	"github.com/justestif/go-emotion-player/internal/mood"
	"github.com/justestif/go-emotion-player/internal/player"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 16

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	catalog   *catalog.Catalog
	sessions  *SessionStore
	templates *Templates
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(c *catalog.Catalog, sessions *SessionStore, templates *Templates, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		catalog:   c,
		sessions:  sessions,
		templates: templates,
		logger:    logger,
	}
}

// stateResponse is returned by every session endpoint.
type stateResponse struct {
	player.Snapshot
	PendingIntents []Intent `json:"pendingIntents"`
}

// sampleRequest carries either a single labelled sample or a full
// expression score map from the classifier.
type sampleRequest struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

type sampleResponse struct {
	Accepted bool      `json:"accepted"`
	From     mood.Mood `json:"from,omitempty"`
	To       mood.Mood `json:"to,omitempty"`
	stateResponse
}

type secondsRequest struct {
	Seconds float64 `json:"seconds"`
}

type volumeRequest struct {
	Volume float64 `json:"volume"`
}

type detectionRequest struct {
	Active bool `json:"active"`
}

type errorRequest struct {
	Message string `json:"message"`
}

// Home renders the player page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	l, err := h.sessions.FromRequest(w, r)
	if err != nil {
		h.serverError(w, "creating session", err)
		return
	}

	data := HomePageData{
		PageData: PageData{
			Title:       "Emotion Player",
			CurrentPath: r.URL.Path,
		},
		Snapshot: l.Session.Snapshot(),
		Moods:    moodOptions(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "home", data); err != nil {
		h.logger.Error("rendering home", "error", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// NowPlaying renders the now-playing fragment (GET /partials/now-playing).
func (h *Handlers) NowPlaying(w http.ResponseWriter, r *http.Request) {
	l, err := h.sessions.FromRequest(w, r)
	if err != nil {
		h.serverError(w, "creating session", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.RenderPartial(w, "now_playing", l.Session.Snapshot()); err != nil {
		h.logger.Error("rendering now playing", "error", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// Catalog returns the mood-to-tracks mapping (GET /api/catalog).
func (h *Handlers) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Entries())
}

// State returns the caller's snapshot and pending intents (GET /api/state).
func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	l, err := h.sessions.FromRequest(w, r)
	if err != nil {
		h.serverError(w, "creating session", err)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(l))
}

// Sample feeds a classifier sample (POST /api/samples).
func (h *Handlers) Sample(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.sessions.FromRequest(w, r)
	if err != nil {
		h.serverError(w, "creating session", err)
		return
	}

	sample := mood.NewSample(req.Label, req.Confidence)
	if len(req.Scores) > 0 {
		sample = mood.FromScores(req.Scores)
	}

	change, ok, err := l.Session.HandleSample(sample)
	if err != nil {
		h.sessionError(w, err)
		return
	}

	resp := sampleResponse{Accepted: ok, stateResponse: stateOf(l)}
	if ok {
		resp.From, resp.To = change.From, change.To
	}
	writeJSON(w, http.StatusOK, resp)
}

// Transport receives media element events (POST /api/transport/{event}).
func (h *Handlers) Transport(w http.ResponseWriter, r *http.Request) {
	event := chi.URLParam(r, "event")

	var (
		secs secondsRequest
		fail errorRequest
	)
	switch event {
	case "ended":
	case "timeupdate", "durationchange":
		if !decode(w, r, &secs) {
			return
		}
	case "error":
		if !decode(w, r, &fail) {
			return
		}
	default:
		writeError(w, http.StatusNotFound, "unknown transport event "+event)
		return
	}

	l, err := h.sessions.FromRequest(w, r)
	if err != nil {
		h.serverError(w, "creating session", err)
		return
	}

	switch event {
	case "ended":
		err = l.Session.Ended()
	case "timeupdate":
		l.Session.TimeUpdate(secs.Seconds)
	case "durationchange":
		l.Session.DurationChange(secs.Seconds)
	case "error":
		msg := fail.Message
		if msg == "" {
			msg = "media error"
		}
		l.Session.ReportError(errors.New(msg))
	}
	if err != nil {
		h.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(l))
}

// Control applies a user control (POST /api/controls/{action}).
func (h *Handlers) Control(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	var (
		secs   secondsRequest
		vol    volumeRequest
		detect detectionRequest
	)
	switch action {
	case "play", "pause", "toggle", "next", "previous", "mute", "loop", "shuffle":
	case "seek":
		if !decode(w, r, &secs) {
			return
		}
	case "volume":
		if !decode(w, r, &vol) {
			return
		}
	case "detection":
		if !decode(w, r, &detect) {
			return
		}
	default:
		writeError(w, http.StatusNotFound, "unknown control "+action)
		return
	}

	l, err := h.sessions.FromRequest(w, r)
	if err != nil {
		h.serverError(w, "creating session", err)
		return
	}

	s := l.Session
	switch action {
	case "play":
		err = s.Play()
	case "pause":
		err = s.Pause()
	case "toggle":
		err = s.TogglePlay()
	case "next":
		err = s.Next()
	case "previous":
		err = s.Previous()
	case "seek":
		err = s.Seek(secs.Seconds)
	case "volume":
		err = s.SetVolume(vol.Volume)
	case "mute":
		err = s.ToggleMute()
	case "loop":
		s.ToggleLoop()
	case "shuffle":
		s.ToggleShuffle()
	case "detection":
		s.SetDetection(detect.Active)
	}
	if err != nil {
		h.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(l))
}

func stateOf(l *Listener) stateResponse {
	return stateResponse{
		Snapshot:       l.Session.Snapshot(),
		PendingIntents: l.Queue.Drain(),
	}
}

// sessionError maps session errors to HTTP statuses.
func (h *Handlers) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, player.ErrNoTrack):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, player.ErrPlayRejected):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrTrackNotFound), errors.Is(err, catalog.ErrUnknownMood):
		h.serverError(w, "catalog inconsistency", err)
	default:
		h.serverError(w, "session operation", err)
	}
}

func (h *Handlers) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg+" failed")
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
