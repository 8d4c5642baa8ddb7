// Package clustering guesses a catalog mood for imported tracks, either by
// k-means clustering over audio features or from community tags.
package clustering

import (
	"errors"
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/go-emotion-player/internal/mood"
)

// DefaultClusters is the default k for InferMoods, one cluster per mood.
const DefaultClusters = 5

// ErrNoFeatures is returned when no track carries audio features.
var ErrNoFeatures = errors.New("no tracks with audio features")

// Features are the Spotify audio features used for clustering, each in [0,1].
type Features struct {
	Energy       float64
	Valence      float64
	Danceability float64
	Acousticness float64
}

// Track is an imported track awaiting a mood. Features is nil when the
// provider had none.
type Track struct {
	ID       string
	Features *Features
}

// Assignment is the mood chosen for a cluster of tracks.
type Assignment struct {
	Mood     mood.Mood
	Centroid Features
	TrackIDs []string
}

type trackObservation struct {
	id     string
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// InferMoods partitions tracks with features into at most k clusters and maps
// each cluster's centroid to a mood. Tracks without features are returned as
// unassigned. k <= 0 means DefaultClusters.
func InferMoods(tracks []Track, k int) ([]Assignment, []Track, error) {
	if k <= 0 {
		k = DefaultClusters
	}

	var obs clusters.Observations
	var unassigned []Track
	for _, t := range tracks {
		if t.Features == nil {
			unassigned = append(unassigned, t)
			continue
		}
		obs = append(obs, trackObservation{id: t.ID, coords: coordinates(*t.Features)})
	}
	if len(obs) == 0 {
		return nil, unassigned, ErrNoFeatures
	}
	k = min(k, len(obs))

	result, err := kmeans.New().Partition(obs, k)
	if err != nil {
		return nil, unassigned, fmt.Errorf("partitioning %d tracks: %w", len(obs), err)
	}

	var assignments []Assignment
	for _, cluster := range result {
		if len(cluster.Observations) == 0 {
			continue
		}
		var a Assignment
		members := make([]clusters.Coordinates, 0, len(cluster.Observations))
		for _, o := range cluster.Observations {
			if to, ok := o.(trackObservation); ok {
				a.TrackIDs = append(a.TrackIDs, to.id)
				members = append(members, to.coords)
			}
		}
		a.Centroid = mean(members)
		a.Mood = MoodForCentroid(a.Centroid)
		assignments = append(assignments, a)
	}
	return assignments, unassigned, nil
}

// MoodForCentroid maps a centroid onto the energy/valence quadrants.
// Very energetic, danceable material reads as surprised.
//
//	high energy, high valence: happy
//	high energy, low valence:  angry
//	low energy, high valence:  neutral
//	low energy, low valence:   sad
func MoodForCentroid(f Features) mood.Mood {
	highEnergy := f.Energy > 0.6
	highValence := f.Valence > 0.5

	switch {
	case f.Energy > 0.8 && f.Danceability > 0.75:
		return mood.Surprised
	case highEnergy && highValence:
		return mood.Happy
	case highEnergy:
		return mood.Angry
	case highValence:
		return mood.Neutral
	default:
		return mood.Sad
	}
}

func coordinates(f Features) clusters.Coordinates {
	return clusters.Coordinates{f.Energy, f.Valence, f.Danceability, f.Acousticness}
}

// mean averages the members of a cluster. The partitioner's own center can
// lag one recentering behind its final membership.
func mean(members []clusters.Coordinates) Features {
	var sum [4]float64
	for _, c := range members {
		for i := range sum {
			sum[i] += c[i]
		}
	}
	n := float64(len(members))
	return Features{
		Energy:       sum[0] / n,
		Valence:      sum[1] / n,
		Danceability: sum[2] / n,
		Acousticness: sum[3] / n,
	}
}
