// Package mood defines the closed set of emotions the player reacts to and
// the per-frame detection samples produced by the expression classifier.
package mood

import (
	"math"
	"slices"
	"strings"
)

// Mood is one of the five emotion categories. It is used as a key everywhere.
type Mood string

// The closed set of moods.
const (
	Happy     Mood = "happy"
	Sad       Mood = "sad"
	Angry     Mood = "angry"
	Surprised Mood = "surprised"
	Neutral   Mood = "neutral"
)

// All returns every mood in canonical order.
func All() []Mood {
	return []Mood{Happy, Sad, Angry, Surprised, Neutral}
}

// Valid reports whether m is a member of the closed set.
func (m Mood) Valid() bool {
	return slices.Contains(All(), m)
}

func (m Mood) String() string {
	return string(m)
}

// Parse maps a classifier label to a Mood. Unrecognized or malformed labels
// degrade to Neutral rather than failing.
func Parse(label string) Mood {
	m := Mood(strings.ToLower(strings.TrimSpace(label)))
	if !m.Valid() {
		return Neutral
	}
	return m
}

// Sample is one classifier output for a single frame.
type Sample struct {
	Label      Mood    `json:"label"`
	Confidence float64 `json:"confidence"`
}

// NewSample builds a sample from a raw label, clamping confidence to [0,1].
// NaN confidence is treated as 0.
func NewSample(label string, confidence float64) Sample {
	return Sample{Label: Parse(label), Confidence: clamp01(confidence)}
}

// FromScores collapses a classifier's expression-score map into a single
// sample: the highest score wins, ties go to the label seen first in
// canonical order (moods first, then any extra labels sorted by name).
// An empty map yields (Neutral, 0).
func FromScores(scores map[string]float64) Sample {
	if len(scores) == 0 {
		return Sample{Label: Neutral}
	}

	order := make([]string, 0, len(scores))
	var extra []string
	for _, m := range All() {
		if _, ok := scores[string(m)]; ok {
			order = append(order, string(m))
		}
	}
	for label := range scores {
		if !Mood(label).Valid() {
			extra = append(extra, label)
		}
	}
	slices.Sort(extra)
	order = append(order, extra...)

	best := order[0]
	for _, label := range order[1:] {
		if scores[label] > scores[best] {
			best = label
		}
	}
	return NewSample(best, scores[best])
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
