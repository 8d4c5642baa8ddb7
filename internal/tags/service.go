// Package tags looks up Last.fm tags for imported tracks, concurrently and
// through a database cache.
package tags

import (
	"context"
	"sync"

	"github.com/justestif/go-emotion-player/internal/lastfm"
)

// DefaultConcurrency is the default number of concurrent lookups.
const DefaultConcurrency = 5

// Track is the minimal track info needed for a tag lookup.
type Track struct {
	ID     string
	Title  string
	Artist string
}

// Result holds the tags found for one track. Err is set when the lookup
// failed; Tags is then empty.
type Result struct {
	TrackID string
	Tags    []lastfm.Tag
	Err     error
}

// Fetcher abstracts the Last.fm client.
type Fetcher interface {
	GetTags(ctx context.Context, artist, track string) ([]lastfm.Tag, error)
}

// Service fetches tags with a bounded worker pool.
type Service struct {
	fetcher     Fetcher
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency sets the number of concurrent lookups. Non-positive values
// are ignored.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates a tag service.
func NewService(fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch looks up tags for every track. Results keep the input order and a
// failed lookup does not fail the batch. The context error is returned if
// ctx ends before all tracks were processed.
func (s *Service) Fetch(ctx context.Context, tracks []Track) ([]Result, error) {
	results := make([]Result, len(tracks))
	if len(tracks) == 0 {
		return results, nil
	}

	work := make(chan int, len(tracks))
	for i := range tracks {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	for range min(s.concurrency, len(tracks)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				t := tracks[i]
				if err := ctx.Err(); err != nil {
					results[i] = Result{TrackID: t.ID, Tags: []lastfm.Tag{}, Err: err}
					continue
				}

				tags, err := s.fetcher.GetTags(ctx, t.Artist, t.Title)
				if err != nil || tags == nil {
					tags = []lastfm.Tag{}
				}
				results[i] = Result{TrackID: t.ID, Tags: tags, Err: err}
			}
		}()
	}
	wg.Wait()

	return results, ctx.Err()
}

// TagsForTracks returns the tags of every track whose lookup succeeded,
// keyed by track ID.
func (s *Service) TagsForTracks(ctx context.Context, tracks []Track) (map[string][]lastfm.Tag, error) {
	results, err := s.Fetch(ctx, tracks)
	out := make(map[string][]lastfm.Tag, len(results))
	for _, r := range results {
		if r.Err == nil {
			out[r.TrackID] = r.Tags
		}
	}
	return out, err
}
