// Package db provides PostgreSQL access for the catalog, the tag cache and
// play history.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Migrate creates the schema if it does not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Tracks returns a TrackRepository.
func (db *DB) Tracks() *TrackRepository {
	return &TrackRepository{pool: db.pool}
}

// Tags returns a TagRepository.
func (db *DB) Tags() *TagRepository {
	return &TagRepository{pool: db.pool}
}

// Plays returns a PlayRepository.
func (db *DB) Plays() *PlayRepository {
	return &PlayRepository{pool: db.pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS catalog_tracks (
	mood       TEXT NOT NULL,
	id         TEXT NOT NULL,
	position   INT NOT NULL,
	title      TEXT NOT NULL,
	artist     TEXT NOT NULL,
	path       TEXT NOT NULL,
	cover      TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT 'manual',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (mood, id)
);

CREATE TABLE IF NOT EXISTS track_tags (
	track_id   TEXT NOT NULL,
	tag_name   TEXT NOT NULL,
	tag_count  INT NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (track_id, tag_name)
);

CREATE TABLE IF NOT EXISTS plays (
	id         UUID PRIMARY KEY,
	session_id UUID NOT NULL,
	track_id   TEXT NOT NULL,
	mood       TEXT NOT NULL,
	reason     TEXT NOT NULL,
	played_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS plays_session_idx ON plays (session_id, played_at DESC);
`
