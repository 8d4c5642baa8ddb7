// Package spotify reads playlists and audio features from the Spotify Web
// API for catalog imports.
package spotify

import (
	"log/slog"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-emotion-player/internal/clustering"
)

// maxIDsPerRequest is Spotify's limit for multi-ID endpoints.
const maxIDsPerRequest = 100

// Track is a playlist entry ready for mood assignment.
type Track struct {
	ID         string
	Title      string
	Artist     string // comma-separated artist names
	PreviewURL string // 30 second MP3, empty when Spotify has none
	Cover      string // largest album image
	Features   *clustering.Features
}

// Client wraps the Spotify API client. The underlying client should already
// be authenticated.
type Client struct {
	api    *spotify.Client
	logger *slog.Logger
}

// New creates a Client. A nil logger uses slog.Default.
func New(api *spotify.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api, logger: logger}
}
