package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// PlaylistTracks returns every track of a playlist in playlist order.
// Episodes and local files, which have no Spotify ID, are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(100))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}

	var tracks []Track
	for {
		for _, item := range page.Items {
			if t, ok := convertItem(item); ok {
				tracks = append(tracks, t)
			}
		}
		c.logger.Debug("fetched playlist page", "playlist", playlistID, "tracks", len(tracks), "total", page.Total)

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next playlist page: %w", err)
		}
	}

	c.logger.Info("fetched playlist", "playlist", playlistID, "tracks", len(tracks))
	return tracks, nil
}

func convertItem(item spotify.PlaylistItem) (Track, bool) {
	ft := item.Track.Track
	if ft == nil || ft.ID == "" {
		return Track{}, false
	}

	artists := make([]string, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = a.Name
	}

	return Track{
		ID:         ft.ID.String(),
		Title:      ft.Name,
		Artist:     strings.Join(artists, ", "),
		PreviewURL: ft.PreviewURL,
		Cover:      largestImage(ft.Album.Images),
	}, true
}

func largestImage(images []spotify.Image) string {
	var best spotify.Image
	for _, img := range images {
		if img.Width*img.Height >= best.Width*best.Height {
			best = img
		}
	}
	return best.URL
}
