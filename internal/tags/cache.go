package tags

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/justestif/go-emotion-player/internal/db"
	"github.com/justestif/go-emotion-player/internal/lastfm"
)

// CacheTTL is the age after which cached tags are fetched again.
const CacheTTL = 30 * 24 * time.Hour

// Store persists tags. *db.TagRepository implements it.
type Store interface {
	GetForTracks(ctx context.Context, trackIDs []string) (map[string][]db.TrackTag, error)
	UpsertBatch(ctx context.Context, tags []db.TrackTag) error
}

// Cache serves tags from a Store and fetches misses and stale entries
// through a Service, persisting what it fetched.
type Cache struct {
	store  Store
	svc    *Service
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL overrides CacheTTL.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) { c.ttl = ttl }
}

// WithNow overrides the clock used for staleness checks.
func WithNow(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger for persistence failures.
func WithLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCache wraps svc with store.
func NewCache(store Store, svc *Service, opts ...CacheOption) *Cache {
	c := &Cache{
		store:  store,
		svc:    svc,
		ttl:    CacheTTL,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TagsForTracks returns tags keyed by track ID. Tracks whose lookup failed
// are absent from the result.
func (c *Cache) TagsForTracks(ctx context.Context, tracks []Track) (map[string][]lastfm.Tag, error) {
	result := make(map[string][]lastfm.Tag, len(tracks))
	if len(tracks) == 0 {
		return result, nil
	}

	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}

	cached, err := c.store.GetForTracks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("getting cached tags: %w", err)
	}

	staleBefore := c.now().Add(-c.ttl)
	var misses []Track
	for _, t := range tracks {
		rows := cached[t.ID]
		if len(rows) == 0 || rows[0].FetchedAt.Before(staleBefore) {
			misses = append(misses, t)
			continue
		}
		result[t.ID] = fromRows(rows)
	}
	if len(misses) == 0 {
		return result, nil
	}

	fetched, err := c.svc.Fetch(ctx, misses)
	fetchedAt := c.now()
	var rows []db.TrackTag
	for _, r := range fetched {
		if r.Err != nil {
			continue
		}
		result[r.TrackID] = r.Tags
		for _, tag := range r.Tags {
			rows = append(rows, db.TrackTag{
				TrackID:   r.TrackID,
				TagName:   tag.Name,
				TagCount:  tag.Count,
				FetchedAt: fetchedAt,
			})
		}
	}

	if perr := c.store.UpsertBatch(ctx, rows); perr != nil {
		c.logger.Warn("persisting tags failed", "tracks", len(misses), "error", perr)
	}
	return result, err
}

func fromRows(rows []db.TrackTag) []lastfm.Tag {
	tags := make([]lastfm.Tag, len(rows))
	for i, r := range rows {
		tags[i] = lastfm.Tag{Name: r.TagName, Count: r.TagCount}
	}
	return tags
}
