package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TagRepository handles cached track tags.
type TagRepository struct {
	pool *pgxpool.Pool
}

// UpsertBatch stores tags for many tracks in one statement.
func (r *TagRepository) UpsertBatch(ctx context.Context, tags []TrackTag) error {
	if len(tags) == 0 {
		return nil
	}

	query := `
		INSERT INTO track_tags (track_id, tag_name, tag_count, fetched_at)
		SELECT * FROM unnest($1::text[], $2::text[], $3::int[], $4::timestamptz[])
		ON CONFLICT (track_id, tag_name) DO UPDATE SET
			tag_count = EXCLUDED.tag_count,
			fetched_at = EXCLUDED.fetched_at
	`

	trackIDs := make([]string, len(tags))
	names := make([]string, len(tags))
	counts := make([]int, len(tags))
	fetched := make([]time.Time, len(tags))
	for i, t := range tags {
		trackIDs[i] = t.TrackID
		names[i] = t.TagName
		counts[i] = t.TagCount
		fetched[i] = t.FetchedAt
	}

	if _, err := r.pool.Exec(ctx, query, trackIDs, names, counts, fetched); err != nil {
		return fmt.Errorf("batch upserting tags: %w", err)
	}
	return nil
}

// GetForTracks returns cached tags keyed by track ID, most popular first.
func (r *TagRepository) GetForTracks(ctx context.Context, trackIDs []string) (map[string][]TrackTag, error) {
	result := make(map[string][]TrackTag)
	if len(trackIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT track_id, tag_name, tag_count, fetched_at
		FROM track_tags
		WHERE track_id = ANY($1)
		ORDER BY track_id, tag_count DESC
	`
	rows, err := r.pool.Query(ctx, query, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("querying track tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tag TrackTag
		if err := rows.Scan(&tag.TrackID, &tag.TagName, &tag.TagCount, &tag.FetchedAt); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		result[tag.TrackID] = append(result[tag.TrackID], tag)
	}
	return result, rows.Err()
}

// DeleteStale removes tags fetched before olderThan and reports how many
// rows were removed.
func (r *TagRepository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM track_tags WHERE fetched_at < $1`
	result, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("deleting stale tags: %w", err)
	}
	return result.RowsAffected(), nil
}
