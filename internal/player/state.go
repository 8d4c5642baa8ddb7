package player

import (
	"fmt"
	"math"

	"github.com/justestif/go-emotion-player/internal/catalog"
	"github.com/justestif/go-emotion-player/internal/mood"
)

// DefaultVolume is the volume a new session starts at.
const DefaultVolume = 0.7

// State is the transport-facing playback state of a session.
type State struct {
	Playing         bool    `json:"playing"`
	CurrentTime     float64 `json:"currentTime"` // seconds
	Duration        float64 `json:"duration"`    // seconds, 0 until the transport reports it
	Volume          float64 `json:"volume"`
	Muted           bool    `json:"muted"`
	Looping         bool    `json:"looping"`
	Shuffle         bool    `json:"shuffle"`
	DetectionActive bool    `json:"detectionActive"`
}

func defaultState() State {
	return State{
		Volume:          DefaultVolume,
		DetectionActive: true,
	}
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	Mood       mood.Mood       `json:"mood"`
	Appearance mood.Appearance `json:"appearance"`
	Track      *catalog.Track  `json:"track,omitempty"`
	State      State           `json:"state"`
	Elapsed    string          `json:"elapsed"`
	Total      string          `json:"total"`
	LastError  string          `json:"lastError,omitempty"`
}

// FormatTime renders seconds as MM:SS. NaN, infinite and negative values
// render as 00:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "00:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
