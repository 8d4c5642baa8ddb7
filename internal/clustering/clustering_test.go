package clustering

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-emotion-player/internal/lastfm"
	"github.com/justestif/go-emotion-player/internal/mood"
)

func feat(energy, valence, dance, acoustic float64) *Features {
	return &Features{Energy: energy, Valence: valence, Danceability: dance, Acousticness: acoustic}
}

func TestMoodForCentroid(t *testing.T) {
	tests := []struct {
		name string
		f    Features
		want mood.Mood
	}{
		{"upbeat", *feat(0.75, 0.8, 0.6, 0.1), mood.Happy},
		{"intense and dark", *feat(0.9, 0.2, 0.4, 0.05), mood.Angry},
		{"chill and happy", *feat(0.3, 0.7, 0.5, 0.6), mood.Neutral},
		{"reflective", *feat(0.2, 0.1, 0.3, 0.8), mood.Sad},
		{"rave", *feat(0.95, 0.6, 0.9, 0.0), mood.Surprised},
		{"energetic but not danceable", *feat(0.95, 0.6, 0.5, 0.0), mood.Happy},
		{"boundary energy is low", *feat(0.6, 0.9, 0.5, 0.0), mood.Neutral},
		{"boundary valence is low", *feat(0.7, 0.5, 0.5, 0.0), mood.Angry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MoodForCentroid(tt.f))
		})
	}
}

func TestInferMoodsSingleCluster(t *testing.T) {
	tracks := []Track{
		{ID: "a", Features: feat(0.2, 0.1, 0.3, 0.9)},
		{ID: "b", Features: feat(0.3, 0.2, 0.2, 0.7)},
		{ID: "c"},
	}

	assignments, unassigned, err := InferMoods(tracks, 1)
	require.NoError(t, err)
	require.Len(t, assignments, 1)

	a := assignments[0]
	assert.Equal(t, mood.Sad, a.Mood)
	assert.ElementsMatch(t, []string{"a", "b"}, a.TrackIDs)
	assert.InDelta(t, 0.25, a.Centroid.Energy, 1e-9)
	assert.InDelta(t, 0.15, a.Centroid.Valence, 1e-9)

	require.Len(t, unassigned, 1)
	assert.Equal(t, "c", unassigned[0].ID)
}

func TestInferMoodsAssignsEveryTrackOnce(t *testing.T) {
	var tracks []Track
	for i, f := range []*Features{
		feat(0.9, 0.9, 0.5, 0.1), feat(0.9, 0.9, 0.5, 0.1),
		feat(0.1, 0.1, 0.2, 0.9), feat(0.1, 0.1, 0.2, 0.9),
		feat(0.9, 0.1, 0.4, 0.1), feat(0.9, 0.1, 0.4, 0.1),
	} {
		tracks = append(tracks, Track{ID: string(rune('a' + i)), Features: f})
	}

	assignments, unassigned, err := InferMoods(tracks, 3)
	require.NoError(t, err)
	assert.Empty(t, unassigned)

	moodOf := make(map[string]mood.Mood)
	for _, a := range assignments {
		for _, id := range a.TrackIDs {
			_, dup := moodOf[id]
			require.False(t, dup, "track %s assigned twice", id)
			moodOf[id] = a.Mood
		}
	}
	require.Len(t, moodOf, len(tracks))

	// Identical feature vectors always share a cluster.
	assert.Equal(t, moodOf["a"], moodOf["b"])
	assert.Equal(t, moodOf["c"], moodOf["d"])
	assert.Equal(t, moodOf["e"], moodOf["f"])
}

func TestInferMoodsClampsK(t *testing.T) {
	tracks := []Track{{ID: "only", Features: feat(0.5, 0.5, 0.5, 0.5)}}

	assignments, _, err := InferMoods(tracks, 10)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, []string{"only"}, assignments[0].TrackIDs)
}

func TestDefaultClustersCoversEveryMood(t *testing.T) {
	assert.Equal(t, len(mood.All()), DefaultClusters)
}

func TestInferMoodsNoFeatures(t *testing.T) {
	tracks := []Track{{ID: "x"}, {ID: "y"}}

	assignments, unassigned, err := InferMoods(tracks, 0)
	assert.True(t, errors.Is(err, ErrNoFeatures))
	assert.Nil(t, assignments)
	assert.Len(t, unassigned, 2)
}

func TestMoodFromTags(t *testing.T) {
	tests := []struct {
		name   string
		tags   []lastfm.Tag
		want   mood.Mood
		wantOK bool
	}{
		{
			name:   "single match",
			tags:   []lastfm.Tag{{Name: "indie"}, {Name: "Melancholy", Count: 40}},
			want:   mood.Sad,
			wantOK: true,
		},
		{
			name:   "weighted by count",
			tags:   []lastfm.Tag{{Name: "happy", Count: 10}, {Name: "metal", Count: 90}},
			want:   mood.Angry,
			wantOK: true,
		},
		{
			name:   "artist tags weigh one each",
			tags:   []lastfm.Tag{{Name: "chill"}, {Name: "ambient"}, {Name: "sad"}},
			want:   mood.Neutral,
			wantOK: true,
		},
		{
			name:   "tie goes to canonical order",
			tags:   []lastfm.Tag{{Name: "sad", Count: 5}, {Name: "happy", Count: 5}},
			want:   mood.Happy,
			wantOK: true,
		},
		{
			name: "no keyword",
			tags: []lastfm.Tag{{Name: "seen live", Count: 100}},
			want: mood.Neutral,
		},
		{
			name: "no tags",
			want: mood.Neutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MoodFromTags(tt.tags)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
