package player

import (
	"time"

	"github.com/justestif/go-emotion-player/internal/catalog"
	"github.com/justestif/go-emotion-player/internal/mood"
)

// EventKind identifies what happened in a session.
type EventKind string

// Event kinds.
const (
	EventMoodChanged   EventKind = "mood_changed"
	EventTrackChanged  EventKind = "track_changed"
	EventPlaybackError EventKind = "playback_error"
)

// Reason records why a track was selected.
type Reason string

// Track selection reasons.
const (
	ReasonStart    Reason = "start"
	ReasonMood     Reason = "mood"
	ReasonShuffle  Reason = "shuffle"
	ReasonNext     Reason = "next"
	ReasonPrevious Reason = "previous"
	ReasonLoop     Reason = "loop"
)

// Event is published to observers after the session lock is released.
type Event struct {
	Kind     EventKind
	At       time.Time
	Mood     mood.Mood
	Previous mood.Mood     // set for EventMoodChanged
	Track    catalog.Track // set for EventTrackChanged
	Reason   Reason        // set for EventTrackChanged
	Err      error         // set for EventPlaybackError
}

// Observer receives session events. It must not call back into the session
// synchronously in a way that expects ordering with the triggering call.
type Observer func(Event)
