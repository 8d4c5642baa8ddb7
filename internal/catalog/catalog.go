// Package catalog holds the static mood-to-tracks mapping.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/justestif/go-emotion-player/internal/mood"
)

// Configuration errors. The catalog refuses to build rather than hand an
// empty or inconsistent mood list to the rotation policy.
var (
	ErrEmptyMood      = errors.New("mood has no tracks")
	ErrMoodMismatch   = errors.New("track mood does not match its catalog key")
	ErrDuplicateTrack = errors.New("duplicate track id")
	ErrTrackNotFound  = errors.New("track not found in its mood's catalog")
	ErrUnknownMood    = errors.New("unknown mood")
)

// Track is an immutable catalog entry.
type Track struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Artist string    `json:"artist"`
	Mood   mood.Mood `json:"mood"`
	Path   string    `json:"path"`  // playable resource locator
	Cover  string    `json:"cover"` // cover image locator
}

// Catalog maps every mood to an ordered, non-empty list of tracks.
// It is immutable once built.
type Catalog struct {
	tracks map[mood.Mood][]Track
	index  map[mood.Mood]map[string]int
}

// New validates entries and builds a Catalog. Every mood in the closed set
// must have at least one track, every track's Mood must equal its key and
// track IDs must be unique within a mood.
func New(entries map[mood.Mood][]Track) (*Catalog, error) {
	c := &Catalog{
		tracks: make(map[mood.Mood][]Track, len(mood.All())),
		index:  make(map[mood.Mood]map[string]int, len(mood.All())),
	}

	for key := range entries {
		if !key.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMood, key)
		}
	}

	for _, m := range mood.All() {
		list := entries[m]
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyMood, m)
		}

		idx := make(map[string]int, len(list))
		for i, t := range list {
			if t.Mood != m {
				return nil, fmt.Errorf("%w: track %q declares %q but is listed under %q", ErrMoodMismatch, t.ID, t.Mood, m)
			}
			if _, dup := idx[t.ID]; dup {
				return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateTrack, t.ID, m)
			}
			idx[t.ID] = i
		}

		c.tracks[m] = slices.Clone(list)
		c.index[m] = idx
	}

	return c, nil
}

// MustNew is like New but panics on a configuration error.
func MustNew(entries map[mood.Mood][]Track) *Catalog {
	c, err := New(entries)
	if err != nil {
		panic(err)
	}
	return c
}

// TracksFor returns the ordered tracks for m. The returned slice must not be
// modified. Unknown moods return nil.
func (c *Catalog) TracksFor(m mood.Mood) []Track {
	return c.tracks[m]
}

// Len returns the number of tracks for m.
func (c *Catalog) Len(m mood.Mood) int {
	return len(c.tracks[m])
}

// IndexOf returns the position of t within its own mood's list.
func (c *Catalog) IndexOf(t Track) (int, error) {
	i, ok := c.index[t.Mood][t.ID]
	if !ok {
		return 0, fmt.Errorf("%w: %q (%s)", ErrTrackNotFound, t.ID, t.Mood)
	}
	return i, nil
}

// Track looks up a track by ID across all moods, in canonical mood order.
func (c *Catalog) Track(id string) (Track, bool) {
	for _, m := range mood.All() {
		if i, ok := c.index[m][id]; ok {
			return c.tracks[m][i], true
		}
	}
	return Track{}, false
}

// All returns every track, grouped by mood in canonical order.
func (c *Catalog) All() []Track {
	var all []Track
	for _, m := range mood.All() {
		all = append(all, c.tracks[m]...)
	}
	return all
}

// Entries returns a copy of the mood-to-tracks mapping.
func (c *Catalog) Entries() map[mood.Mood][]Track {
	out := make(map[mood.Mood][]Track, len(c.tracks))
	for m, list := range c.tracks {
		out[m] = slices.Clone(list)
	}
	return out
}
