package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TrackRepository handles catalog track database operations.
type TrackRepository struct {
	pool *pgxpool.Pool
}

// UpsertBatch inserts or updates multiple catalog tracks. Existing rows keep
// their position so re-importing does not reorder a mood's list.
func (r *TrackRepository) UpsertBatch(ctx context.Context, tracks []CatalogTrack) error {
	if len(tracks) == 0 {
		return nil
	}

	query := `
		INSERT INTO catalog_tracks (mood, id, position, title, artist, path, cover, source, created_at)
		SELECT m, i, p, t, a, pa, c, s, NOW()
		FROM unnest($1::text[], $2::text[], $3::int[], $4::text[], $5::text[], $6::text[], $7::text[], $8::text[])
			AS u(m, i, p, t, a, pa, c, s)
		ON CONFLICT (mood, id) DO UPDATE SET
			title = EXCLUDED.title,
			artist = EXCLUDED.artist,
			path = EXCLUDED.path,
			cover = EXCLUDED.cover,
			source = EXCLUDED.source
	`

	moods := make([]string, len(tracks))
	ids := make([]string, len(tracks))
	positions := make([]int, len(tracks))
	titles := make([]string, len(tracks))
	artists := make([]string, len(tracks))
	paths := make([]string, len(tracks))
	covers := make([]string, len(tracks))
	sources := make([]string, len(tracks))

	for i, t := range tracks {
		moods[i] = t.Mood
		ids[i] = t.ID
		positions[i] = t.Position
		titles[i] = t.Title
		artists[i] = t.Artist
		paths[i] = t.Path
		covers[i] = t.Cover
		sources[i] = t.Source
	}

	_, err := r.pool.Exec(ctx, query, moods, ids, positions, titles, artists, paths, covers, sources)
	if err != nil {
		return fmt.Errorf("batch upserting catalog tracks: %w", err)
	}
	return nil
}

// NextPositions returns, per mood, the position after the last stored track.
// Moods without tracks are absent from the map (position 0).
func (r *TrackRepository) NextPositions(ctx context.Context) (map[string]int, error) {
	query := `SELECT mood, MAX(position) + 1 FROM catalog_tracks GROUP BY mood`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying catalog positions: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var mood string
		var next int
		if err := rows.Scan(&mood, &next); err != nil {
			return nil, fmt.Errorf("scanning catalog position: %w", err)
		}
		result[mood] = next
	}
	return result, rows.Err()
}

// Get retrieves a catalog track by mood and ID.
func (r *TrackRepository) Get(ctx context.Context, mood, id string) (*CatalogTrack, error) {
	query := `
		SELECT mood, id, position, title, artist, path, cover, source, created_at
		FROM catalog_tracks
		WHERE mood = $1 AND id = $2
	`
	t, err := scanTrack(r.pool.QueryRow(ctx, query, mood, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying catalog track: %w", err)
	}
	return t, nil
}

// List returns every catalog track ordered by mood and position.
func (r *TrackRepository) List(ctx context.Context) ([]CatalogTrack, error) {
	query := `
		SELECT mood, id, position, title, artist, path, cover, source, created_at
		FROM catalog_tracks
		ORDER BY mood, position, id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying catalog tracks: %w", err)
	}
	defer rows.Close()

	var tracks []CatalogTrack
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning catalog track: %w", err)
		}
		tracks = append(tracks, *t)
	}
	return tracks, rows.Err()
}

// Delete removes a catalog track.
func (r *TrackRepository) Delete(ctx context.Context, mood, id string) error {
	query := `DELETE FROM catalog_tracks WHERE mood = $1 AND id = $2`
	result, err := r.pool.Exec(ctx, query, mood, id)
	if err != nil {
		return fmt.Errorf("deleting catalog track: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTrack(row pgx.Row) (*CatalogTrack, error) {
	var t CatalogTrack
	err := row.Scan(
		&t.Mood,
		&t.ID,
		&t.Position,
		&t.Title,
		&t.Artist,
		&t.Path,
		&t.Cover,
		&t.Source,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
