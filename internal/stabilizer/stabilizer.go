// Package stabilizer turns a noisy stream of per-frame classifier samples
// into a debounced current mood.
package stabilizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/justestif/go-emotion-player/internal/mood"
)

// DefaultDwell is the minimum time between two accepted mood changes.
const DefaultDwell = 3 * time.Second

// ErrInvalidConfig is returned by New for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid stabilizer config")

// Config holds stabilizer parameters.
type Config struct {
	Dwell         time.Duration // changes closer together than this are rejected
	MinConfidence float64       // samples below this are ignored entirely (0 disables)
}

// DefaultConfig returns the recommended configuration.
func DefaultConfig() Config {
	return Config{Dwell: DefaultDwell}
}

// Clock supplies monotonic time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads time.Now, which carries a monotonic reading.
var SystemClock Clock = systemClock{}

// MoodChanged is emitted when a sample is accepted as the new stable mood.
type MoodChanged struct {
	From       mood.Mood
	To         mood.Mood
	Confidence float64
	At         time.Time
}

// Stabilizer holds the last emitted mood and when it was accepted.
// It is not safe for concurrent use; callers serialize samples.
type Stabilizer struct {
	cfg   Config
	clock Clock

	current    mood.Mood
	lastChange time.Time
	changed    bool // false until the first accepted change, i.e. lastChange = -inf
}

// Option configures a Stabilizer.
type Option func(*Stabilizer)

// WithClock sets the clock used by Observe.
func WithClock(c Clock) Option {
	return func(s *Stabilizer) {
		if c != nil {
			s.clock = c
		}
	}
}

// New creates a Stabilizer starting at mood.Neutral.
func New(cfg Config, opts ...Option) (*Stabilizer, error) {
	if cfg.Dwell < 0 {
		return nil, fmt.Errorf("%w: dwell %s is negative", ErrInvalidConfig, cfg.Dwell)
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return nil, fmt.Errorf("%w: min confidence %v outside [0,1]", ErrInvalidConfig, cfg.MinConfidence)
	}

	s := &Stabilizer{
		cfg:     cfg,
		clock:   SystemClock,
		current: mood.Neutral,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Current returns the last stable mood. It never decays.
func (s *Stabilizer) Current() mood.Mood {
	return s.current
}

// LastChange returns when the current mood was accepted, and false if no
// change has been accepted yet.
func (s *Stabilizer) LastChange() (time.Time, bool) {
	return s.lastChange, s.changed
}

// Observe is OnSample at the stabilizer clock's current time.
func (s *Stabilizer) Observe(sample mood.Sample) (MoodChanged, bool) {
	return s.OnSample(sample, s.clock.Now())
}

// OnSample applies the transition rule for a sample observed at now:
//   - below MinConfidence: ignored, dwell timing untouched
//   - within Dwell of the last accepted change: rejected
//   - same label as the current mood: no-op, the dwell window is not extended
//   - otherwise: accepted, and a MoodChanged is returned
//
// Samples must arrive in non-decreasing time order.
func (s *Stabilizer) OnSample(sample mood.Sample, now time.Time) (MoodChanged, bool) {
	if s.cfg.MinConfidence > 0 && sample.Confidence < s.cfg.MinConfidence {
		return MoodChanged{}, false
	}

	if s.changed && now.Sub(s.lastChange) <= s.cfg.Dwell {
		return MoodChanged{}, false
	}

	label := sample.Label
	if !label.Valid() {
		label = mood.Neutral
	}
	if label == s.current {
		return MoodChanged{}, false
	}

	change := MoodChanged{
		From:       s.current,
		To:         label,
		Confidence: sample.Confidence,
		At:         now,
	}
	s.current = label
	s.lastChange = now
	s.changed = true
	return change, true
}
