package db

import (
	"context"
	"fmt"
	"slices"

	"github.com/justestif/go-emotion-player/internal/catalog"
	"github.com/justestif/go-emotion-player/internal/mood"
)

// LoadCatalog reads every stored track and builds a validated catalog. An
// empty table returns ErrNotFound.
func (db *DB) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	rows, err := db.Tracks().List(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog tracks: %w", ErrNotFound)
	}
	return ToCatalog(rows)
}

// ToCatalog groups rows by mood, orders them by position and validates the
// result with catalog.New. Rows with an unknown mood are a configuration
// error.
func ToCatalog(rows []CatalogTrack) (*catalog.Catalog, error) {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b CatalogTrack) int {
		return a.Position - b.Position
	})

	entries := make(map[mood.Mood][]catalog.Track)
	for _, r := range sorted {
		m := mood.Mood(r.Mood)
		if !m.Valid() {
			return nil, fmt.Errorf("%w: %q on track %q", catalog.ErrUnknownMood, r.Mood, r.ID)
		}
		entries[m] = append(entries[m], catalog.Track{
			ID:     r.ID,
			Title:  r.Title,
			Artist: r.Artist,
			Mood:   m,
			Path:   r.Path,
			Cover:  r.Cover,
		})
	}

	c, err := catalog.New(entries)
	if err != nil {
		return nil, fmt.Errorf("building catalog from database: %w", err)
	}
	return c, nil
}
