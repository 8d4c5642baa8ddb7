package db

import (
	"time"

	"github.com/google/uuid"
)

// CatalogTrack is a persisted catalog entry. Position orders tracks within
// a mood.
type CatalogTrack struct {
	ID        string
	Mood      string
	Position  int
	Title     string
	Artist    string
	Path      string
	Cover     string
	Source    string // "manual", "spotify"
	CreatedAt time.Time
}

// TrackTag represents a cached Last.fm tag for a track.
type TrackTag struct {
	TrackID   string
	TagName   string
	TagCount  int
	FetchedAt time.Time
}

// Play is one entry of a session's listening history.
type Play struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	TrackID   string
	Mood      string
	Reason    string
	PlayedAt  time.Time
}

// MoodCount is the number of plays recorded for a mood.
type MoodCount struct {
	Mood  string
	Plays int
}
