package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlayRepository records listening history.
type PlayRepository struct {
	pool *pgxpool.Pool
}

// Record inserts a play, assigning an ID if the caller did not.
func (r *PlayRepository) Record(ctx context.Context, play *Play) error {
	if play.ID == uuid.Nil {
		play.ID = uuid.New()
	}

	query := `
		INSERT INTO plays (id, session_id, track_id, mood, reason, played_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		play.ID,
		play.SessionID,
		play.TrackID,
		play.Mood,
		play.Reason,
		play.PlayedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting play: %w", err)
	}
	return nil
}

// RecentForSession returns the latest plays of a session, newest first.
func (r *PlayRepository) RecentForSession(ctx context.Context, sessionID uuid.UUID, limit int) ([]Play, error) {
	query := `
		SELECT id, session_id, track_id, mood, reason, played_at
		FROM plays
		WHERE session_id = $1
		ORDER BY played_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying plays: %w", err)
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var p Play
		if err := rows.Scan(&p.ID, &p.SessionID, &p.TrackID, &p.Mood, &p.Reason, &p.PlayedAt); err != nil {
			return nil, fmt.Errorf("scanning play: %w", err)
		}
		plays = append(plays, p)
	}
	return plays, rows.Err()
}

// CountByMood aggregates plays per mood across all sessions.
func (r *PlayRepository) CountByMood(ctx context.Context) ([]MoodCount, error) {
	query := `
		SELECT mood, COUNT(*)
		FROM plays
		GROUP BY mood
		ORDER BY COUNT(*) DESC, mood
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting plays: %w", err)
	}
	defer rows.Close()

	var counts []MoodCount
	for rows.Next() {
		var c MoodCount
		if err := rows.Scan(&c.Mood, &c.Plays); err != nil {
			return nil, fmt.Errorf("scanning mood count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
