package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-emotion-player/internal/clustering"
)

// FetchAudioFeatures fills in Features for the given tracks, batching
// requests to the API limit. Tracks Spotify has no features for keep a nil
// Features.
func (c *Client) FetchAudioFeatures(ctx context.Context, tracks []Track) error {
	if len(tracks) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(tracks))
	indexByID := make(map[string]int, len(tracks))
	for i, t := range tracks {
		ids[i] = spotify.ID(t.ID)
		indexByID[t.ID] = i
	}

	for i := 0; i < len(ids); i += maxIDsPerRequest {
		end := min(i+maxIDsPerRequest, len(ids))

		features, err := c.api.GetAudioFeatures(ctx, ids[i:end]...)
		if err != nil {
			return fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}
		applyAudioFeatures(tracks, indexByID, features)
		c.logger.Debug("fetched audio features", "from", i+1, "to", end, "total", len(ids))
	}
	return nil
}

func applyAudioFeatures(tracks []Track, indexByID map[string]int, features []*spotify.AudioFeatures) {
	for _, f := range features {
		if f == nil {
			continue
		}
		idx, ok := indexByID[f.ID.String()]
		if !ok {
			continue
		}
		tracks[idx].Features = &clustering.Features{
			Energy:       float64(f.Energy),
			Valence:      float64(f.Valence),
			Danceability: float64(f.Danceability),
			Acousticness: float64(f.Acousticness),
		}
	}
}
