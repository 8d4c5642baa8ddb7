package spotify

import (
	"testing"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-emotion-player/internal/clustering"
)

func TestConvertItem(t *testing.T) {
	tests := []struct {
		name   string
		item   spotify.PlaylistItem
		want   Track
		wantOK bool
	}{
		{
			name: "track with preview and cover",
			item: spotify.PlaylistItem{Track: spotify.PlaylistItemTrack{Track: &spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:         "track123",
					Name:       "Walking on Sunshine",
					PreviewURL: "https://p.scdn.co/mp3-preview/abc",
					Artists:    []spotify.SimpleArtist{{Name: "Katrina"}, {Name: "The Waves"}},
				},
				Album: spotify.SimpleAlbum{Images: []spotify.Image{
					{URL: "small.jpg", Width: 64, Height: 64},
					{URL: "large.jpg", Width: 640, Height: 640},
					{URL: "medium.jpg", Width: 300, Height: 300},
				}},
			}}},
			want: Track{
				ID:         "track123",
				Title:      "Walking on Sunshine",
				Artist:     "Katrina, The Waves",
				PreviewURL: "https://p.scdn.co/mp3-preview/abc",
				Cover:      "large.jpg",
			},
			wantOK: true,
		},
		{
			name: "no preview or images",
			item: spotify.PlaylistItem{Track: spotify.PlaylistItemTrack{Track: &spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{ID: "t2", Name: "Quiet", Artists: []spotify.SimpleArtist{{Name: "A"}}},
			}}},
			want:   Track{ID: "t2", Title: "Quiet", Artist: "A"},
			wantOK: true,
		},
		{
			name: "episode is skipped",
			item: spotify.PlaylistItem{Track: spotify.PlaylistItemTrack{Episode: &spotify.EpisodePage{}}},
		},
		{
			name: "local file is skipped",
			item: spotify.PlaylistItem{IsLocal: true, Track: spotify.PlaylistItemTrack{Track: &spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{Name: "ripped.mp3"},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := convertItem(tt.item)
			if ok != tt.wantOK {
				t.Fatalf("convertItem() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("convertItem() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestApplyAudioFeatures(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	index := map[string]int{"a": 0, "b": 1, "c": 2}

	applyAudioFeatures(tracks, index, []*spotify.AudioFeatures{
		{ID: "a", Energy: 0.5, Valence: 0.25, Danceability: 0.75, Acousticness: 0.125},
		nil,
		{ID: "unknown", Energy: 1},
	})

	want := clustering.Features{Energy: 0.5, Valence: 0.25, Danceability: 0.75, Acousticness: 0.125}
	if tracks[0].Features == nil || *tracks[0].Features != want {
		t.Errorf("tracks[0].Features = %+v, want %+v", tracks[0].Features, want)
	}
	for _, i := range []int{1, 2} {
		if tracks[i].Features != nil {
			t.Errorf("tracks[%d].Features = %+v, want nil", i, tracks[i].Features)
		}
	}
}
