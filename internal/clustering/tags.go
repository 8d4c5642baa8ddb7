package clustering

import (
	"strings"

	"github.com/justestif/go-emotion-player/internal/lastfm"
	"github.com/justestif/go-emotion-player/internal/mood"
)

// tagMoods maps lowercase Last.fm tags to the mood they suggest.
var tagMoods = map[string]mood.Mood{
	"happy":       mood.Happy,
	"feel good":   mood.Happy,
	"upbeat":      mood.Happy,
	"uplifting":   mood.Happy,
	"summer":      mood.Happy,
	"fun":         mood.Happy,
	"sad":         mood.Sad,
	"melancholy":  mood.Sad,
	"melancholic": mood.Sad,
	"depressing":  mood.Sad,
	"heartbreak":  mood.Sad,
	"emo":         mood.Sad,
	"angry":       mood.Angry,
	"aggressive":  mood.Angry,
	"metal":       mood.Angry,
	"hardcore":    mood.Angry,
	"punk":        mood.Angry,
	"rage":        mood.Angry,
	"energetic":   mood.Surprised,
	"epic":        mood.Surprised,
	"quirky":      mood.Surprised,
	"edm":         mood.Surprised,
	"chill":       mood.Neutral,
	"chillout":    mood.Neutral,
	"ambient":     mood.Neutral,
	"mellow":      mood.Neutral,
	"lo-fi":       mood.Neutral,
	"relaxing":    mood.Neutral,
}

// MoodFromTags scores tags against a keyword table, weighting each match by
// its tag count (artist tags, which have no count, weigh 1). It reports
// false when no tag matched.
func MoodFromTags(tags []lastfm.Tag) (mood.Mood, bool) {
	scores := make(map[string]float64)
	for _, tag := range tags {
		m, ok := tagMoods[strings.ToLower(strings.TrimSpace(tag.Name))]
		if !ok {
			continue
		}
		weight := tag.Count
		if weight <= 0 {
			weight = 1
		}
		scores[string(m)] += float64(weight)
	}
	if len(scores) == 0 {
		return mood.Neutral, false
	}
	return mood.FromScores(scores).Label, true
}
