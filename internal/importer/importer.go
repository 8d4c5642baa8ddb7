// Package importer turns a Spotify playlist into mood-classified catalog
// tracks and stores them.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/justestif/go-emotion-player/internal/catalog"
	"github.com/justestif/go-emotion-player/internal/clustering"
	"github.com/justestif/go-emotion-player/internal/db"
	"github.com/justestif/go-emotion-player/internal/lastfm"
	"github.com/justestif/go-emotion-player/internal/mood"
	"github.com/justestif/go-emotion-player/internal/spotify"
	"github.com/justestif/go-emotion-player/internal/tags"
)

// SourceSpotify marks catalog rows created by an import.
const SourceSpotify = "spotify"

// How a track's mood was decided.
const (
	ByFeatures = "features"
	ByTags     = "tags"
	ByFallback = "fallback"
)

// Playlists reads tracks and their audio features. *spotify.Client
// implements it.
type Playlists interface {
	PlaylistTracks(ctx context.Context, playlistID string) ([]spotify.Track, error)
	FetchAudioFeatures(ctx context.Context, tracks []spotify.Track) error
}

// TagLookup returns tags keyed by track ID. *tags.Service and *tags.Cache
// implement it.
type TagLookup interface {
	TagsForTracks(ctx context.Context, tracks []tags.Track) (map[string][]lastfm.Tag, error)
}

// Store persists catalog rows. *db.TrackRepository implements it.
type Store interface {
	NextPositions(ctx context.Context) (map[string]int, error)
	UpsertBatch(ctx context.Context, tracks []db.CatalogTrack) error
	List(ctx context.Context) ([]db.CatalogTrack, error)
}

// Classified is an imported track with its mood.
type Classified struct {
	Track spotify.Track
	Mood  mood.Mood
	By    string
}

// Result summarizes an import.
type Result struct {
	Fetched int
	Skipped int // tracks without a playable preview
	Tracks  []Classified

	// EmptyMoods lists the moods the stored catalog still has no tracks
	// for after an Import. The server cannot load such a catalog.
	EmptyMoods []mood.Mood
}

// Counts returns how many tracks landed in each mood.
func (r *Result) Counts() map[mood.Mood]int {
	counts := make(map[mood.Mood]int, len(mood.All()))
	for _, c := range r.Tracks {
		counts[c.Mood]++
	}
	return counts
}

// Service runs imports.
type Service struct {
	playlists Playlists
	tags      TagLookup
	k         int
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTags enables tag-based classification for tracks without features.
func WithTags(t TagLookup) Option {
	return func(s *Service) { s.tags = t }
}

// WithClusters sets the number of k-means clusters.
func WithClusters(k int) Option {
	return func(s *Service) { s.k = k }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an import service.
func New(playlists Playlists, opts ...Option) *Service {
	s := &Service{
		playlists: playlists,
		k:         clustering.DefaultClusters,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Classify fetches a playlist and decides a mood for every playable track:
// by clustering audio features, else by Last.fm tags, else fallback.
// Missing audio features or tag lookups degrade to the next strategy.
func (s *Service) Classify(ctx context.Context, playlistID string, fallback mood.Mood) (*Result, error) {
	if !fallback.Valid() {
		return nil, fmt.Errorf("%w: fallback %q", catalog.ErrUnknownMood, fallback)
	}

	fetched, err := s.playlists.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("fetching playlist: %w", err)
	}

	res := &Result{Fetched: len(fetched)}
	var playable []spotify.Track
	for _, t := range fetched {
		if t.PreviewURL == "" {
			res.Skipped++
			continue
		}
		playable = append(playable, t)
	}
	if len(playable) == 0 {
		return res, nil
	}

	if err := s.playlists.FetchAudioFeatures(ctx, playable); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("audio features unavailable, falling back to tags", "error", err)
	}

	decided := make(map[string]Classified, len(playable))
	byID := make(map[string]spotify.Track, len(playable))
	for _, t := range playable {
		byID[t.ID] = t
	}

	remaining, err := s.classifyByFeatures(playable, byID, decided)
	if err != nil {
		return nil, err
	}
	remaining = s.classifyByTags(ctx, remaining, decided)
	for _, t := range remaining {
		decided[t.ID] = Classified{Track: t, Mood: fallback, By: ByFallback}
	}

	for _, t := range playable {
		if c, ok := decided[t.ID]; ok {
			res.Tracks = append(res.Tracks, c)
			delete(decided, t.ID)
		}
	}
	return res, nil
}

func (s *Service) classifyByFeatures(playable []spotify.Track, byID map[string]spotify.Track, decided map[string]Classified) ([]spotify.Track, error) {
	input := make([]clustering.Track, len(playable))
	for i, t := range playable {
		input[i] = clustering.Track{ID: t.ID, Features: t.Features}
	}

	assignments, unassigned, err := clustering.InferMoods(input, s.k)
	if err != nil && !errors.Is(err, clustering.ErrNoFeatures) {
		return nil, fmt.Errorf("clustering audio features: %w", err)
	}

	for _, a := range assignments {
		s.logger.Info("cluster classified", "mood", a.Mood, "tracks", len(a.TrackIDs),
			"energy", a.Centroid.Energy, "valence", a.Centroid.Valence)
		for _, id := range a.TrackIDs {
			decided[id] = Classified{Track: byID[id], Mood: a.Mood, By: ByFeatures}
		}
	}

	remaining := make([]spotify.Track, len(unassigned))
	for i, u := range unassigned {
		remaining[i] = byID[u.ID]
	}
	return remaining, nil
}

func (s *Service) classifyByTags(ctx context.Context, remaining []spotify.Track, decided map[string]Classified) []spotify.Track {
	if s.tags == nil || len(remaining) == 0 {
		return remaining
	}

	lookup := make([]tags.Track, len(remaining))
	for i, t := range remaining {
		lookup[i] = tags.Track{ID: t.ID, Title: t.Title, Artist: t.Artist}
	}
	found, err := s.tags.TagsForTracks(ctx, lookup)
	if err != nil {
		s.logger.Warn("tag lookup incomplete", "error", err)
	}

	var rest []spotify.Track
	for _, t := range remaining {
		if m, ok := clustering.MoodFromTags(found[t.ID]); ok {
			decided[t.ID] = Classified{Track: t, Mood: m, By: ByTags}
			continue
		}
		rest = append(rest, t)
	}
	return rest
}

// Import classifies a playlist and upserts the result into store. New
// tracks are appended after each mood's existing tracks.
func (s *Service) Import(ctx context.Context, store Store, playlistID string, fallback mood.Mood) (*Result, error) {
	res, err := s.Classify(ctx, playlistID, fallback)
	if err != nil {
		return nil, err
	}
	if len(res.Tracks) > 0 {
		next, err := store.NextPositions(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading catalog positions: %w", err)
		}
		if err := store.UpsertBatch(ctx, Rows(res.Tracks, next)); err != nil {
			return nil, fmt.Errorf("storing catalog tracks: %w", err)
		}
	}

	stored, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stored catalog: %w", err)
	}
	res.EmptyMoods = EmptyMoods(stored)

	s.logger.Info("import complete", "playlist", playlistID,
		"fetched", res.Fetched, "stored", len(res.Tracks), "skipped", res.Skipped)
	if len(res.EmptyMoods) > 0 {
		s.logger.Warn("catalog incomplete", "empty_moods", res.EmptyMoods)
	}
	return res, nil
}

// EmptyMoods returns, in canonical order, the moods that have no row in
// rows.
func EmptyMoods(rows []db.CatalogTrack) []mood.Mood {
	seen := make(map[mood.Mood]bool, len(mood.All()))
	for _, r := range rows {
		seen[mood.Mood(r.Mood)] = true
	}

	var empty []mood.Mood
	for _, m := range mood.All() {
		if !seen[m] {
			empty = append(empty, m)
		}
	}
	return empty
}

// Rows converts classified tracks into catalog rows, numbering positions per
// mood from next.
func Rows(classified []Classified, next map[string]int) []db.CatalogTrack {
	pos := make(map[string]int, len(next))
	for m, p := range next {
		pos[m] = p
	}

	rows := make([]db.CatalogTrack, len(classified))
	for i, c := range classified {
		m := string(c.Mood)
		rows[i] = db.CatalogTrack{
			ID:       c.Track.ID,
			Mood:     m,
			Position: pos[m],
			Title:    c.Track.Title,
			Artist:   c.Track.Artist,
			Path:     c.Track.PreviewURL,
			Cover:    c.Track.Cover,
			Source:   SourceSpotify,
		}
		pos[m]++
	}
	return rows
}
