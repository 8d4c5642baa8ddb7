// Package rotation picks tracks for a mood without repeating any of them
// until the mood's whole catalog has been dispensed once.
package rotation

import (
	"fmt"
	"math/rand/v2"

	"github.com/justestif/go-emotion-player/internal/catalog"
	"github.com/justestif/go-emotion-player/internal/mood"
)

// Policy holds the played-set for every mood. Each playback session owns its
// own Policy; a Policy is not safe for concurrent use.
type Policy struct {
	catalog *catalog.Catalog
	rng     *rand.Rand
	played  map[mood.Mood]map[string]struct{}
}

// Option configures a Policy.
type Option func(*Policy)

// WithRand sets the random source used by NextRandom. Without it the
// process-wide generator from math/rand/v2 is used.
func WithRand(r *rand.Rand) Option {
	return func(p *Policy) {
		p.rng = r
	}
}

// New creates a Policy over c with an empty played-set for every mood.
func New(c *catalog.Catalog, opts ...Option) *Policy {
	p := &Policy{
		catalog: c,
		played:  make(map[mood.Mood]map[string]struct{}, len(mood.All())),
	}
	for _, m := range mood.All() {
		p.played[m] = make(map[string]struct{})
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NextRandom returns a uniformly random track for m that has not been
// dispensed in the current cycle. Once every track for m has been returned
// the played-set is cleared and a new cycle begins.
func (p *Policy) NextRandom(m mood.Mood) (catalog.Track, error) {
	tracks := p.catalog.TracksFor(m)
	if len(tracks) == 0 {
		return catalog.Track{}, fmt.Errorf("%w: %q", catalog.ErrUnknownMood, m)
	}

	played := p.played[m]
	if len(played) >= len(tracks) {
		clear(played)
	}

	available := make([]catalog.Track, 0, len(tracks)-len(played))
	for _, t := range tracks {
		if _, ok := played[t.ID]; !ok {
			available = append(available, t)
		}
	}

	chosen := available[p.intN(len(available))]
	played[chosen.ID] = struct{}{}
	return chosen, nil
}

// Previous returns the track before t in catalog order, wrapping around.
// It ignores the played-set.
func (p *Policy) Previous(t catalog.Track) (catalog.Track, error) {
	return p.step(t, -1)
}

// Next returns the track after t in catalog order, wrapping around.
// It ignores the played-set.
func (p *Policy) Next(t catalog.Track) (catalog.Track, error) {
	return p.step(t, 1)
}

func (p *Policy) step(t catalog.Track, delta int) (catalog.Track, error) {
	i, err := p.catalog.IndexOf(t)
	if err != nil {
		return catalog.Track{}, err
	}
	tracks := p.catalog.TracksFor(t.Mood)
	n := len(tracks)
	return tracks[(i+delta+n)%n], nil
}

func (p *Policy) intN(n int) int {
	if p.rng != nil {
		return p.rng.IntN(n)
	}
	return rand.IntN(n)
}
