// Package player implements the playback session: it feeds classifier
// samples through the stabilizer, asks the rotation policy for tracks and
// drives a media transport.
package player

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/justestif/go-emotion-player/internal/catalog"
	"github.com/justestif/go-emotion-player/internal/mood"
	"github.com/justestif/go-emotion-player/internal/rotation"
	"github.com/justestif/go-emotion-player/internal/stabilizer"
)

// ErrNoTrack is returned by navigation before any track is loaded.
var ErrNoTrack = errors.New("no track loaded")

// Session owns one listener's mood, current track and transport state.
// All methods are safe for concurrent use; calls are serialized so samples
// see the effect of earlier accepted changes.
type Session struct {
	mu sync.Mutex

	catalog    *catalog.Catalog
	rotation   *rotation.Policy
	stabilizer *stabilizer.Stabilizer
	transport  Transport
	clock      stabilizer.Clock
	logger     *slog.Logger
	observers  []Observer

	track    catalog.Track
	hasTrack bool
	state    State
	lastErr  error

	pending []Event
}

type sessionOptions struct {
	stabilizer stabilizer.Config
	rng        *rand.Rand
	clock      stabilizer.Clock
	logger     *slog.Logger
	observers  []Observer
}

// Option configures a Session.
type Option func(*sessionOptions)

// WithStabilizerConfig overrides the dwell and confidence settings.
func WithStabilizerConfig(cfg stabilizer.Config) Option {
	return func(o *sessionOptions) {
		o.stabilizer = cfg
	}
}

// WithRand seeds the session's rotation policy.
func WithRand(r *rand.Rand) Option {
	return func(o *sessionOptions) {
		o.rng = r
	}
}

// WithClock sets the clock used for dwell timing and event timestamps.
func WithClock(c stabilizer.Clock) Option {
	return func(o *sessionOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *sessionOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers an event observer.
func WithObserver(fn Observer) Option {
	return func(o *sessionOptions) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

// New creates a session with its own rotation policy and stabilizer, and
// loads a random neutral track without starting playback.
func New(c *catalog.Catalog, t Transport, opts ...Option) (*Session, error) {
	o := sessionOptions{
		stabilizer: stabilizer.DefaultConfig(),
		clock:      stabilizer.SystemClock,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if t == nil {
		t = NopTransport{}
	}

	stab, err := stabilizer.New(o.stabilizer, stabilizer.WithClock(o.clock))
	if err != nil {
		return nil, fmt.Errorf("creating stabilizer: %w", err)
	}

	var rotOpts []rotation.Option
	if o.rng != nil {
		rotOpts = append(rotOpts, rotation.WithRand(o.rng))
	}

	s := &Session{
		catalog:    c,
		rotation:   rotation.New(c, rotOpts...),
		stabilizer: stab,
		transport:  t,
		clock:      o.clock,
		logger:     o.logger,
		observers:  o.observers,
		state:      defaultState(),
	}

	err = s.do(func() error {
		tr, err := s.rotation.NextRandom(stab.Current())
		if err != nil {
			return err
		}
		s.load(tr, ReasonStart)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("selecting initial track: %w", err)
	}
	return s, nil
}

// Subscribe registers an observer for subsequent events.
func (s *Session) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Mood returns the current stable mood.
func (s *Session) Mood() mood.Mood {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stabilizer.Current()
}

// Track returns the current track, if any.
func (s *Session) Track() (catalog.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track, s.hasTrack
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.stabilizer.Current()
	snap := Snapshot{
		Mood:       m,
		Appearance: mood.Display(m),
		State:      s.state,
		Elapsed:    FormatTime(s.state.CurrentTime),
		Total:      FormatTime(s.state.Duration),
	}
	if s.hasTrack {
		tr := s.track
		snap.Track = &tr
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

// HandleSample feeds a classifier sample observed now.
func (s *Session) HandleSample(sample mood.Sample) (stabilizer.MoodChanged, bool, error) {
	return s.HandleSampleAt(sample, s.clock.Now())
}

// HandleSampleAt feeds a classifier sample observed at the given time. While
// detection is paused the sample is dropped and the mood stays frozen. On an
// accepted change a fresh track for the new mood is loaded, and played if
// the session was playing.
func (s *Session) HandleSampleAt(sample mood.Sample, at time.Time) (stabilizer.MoodChanged, bool, error) {
	var (
		change stabilizer.MoodChanged
		ok     bool
	)
	err := s.do(func() error {
		if !s.state.DetectionActive {
			return nil
		}
		change, ok = s.stabilizer.OnSample(sample, at)
		if !ok {
			return nil
		}

		s.logger.Info("mood changed",
			slog.String("from", change.From.String()),
			slog.String("to", change.To.String()),
			slog.Float64("confidence", change.Confidence))
		s.emit(Event{Kind: EventMoodChanged, Mood: change.To, Previous: change.From})

		tr, err := s.rotation.NextRandom(change.To)
		if err != nil {
			return err
		}
		s.load(tr, ReasonMood)
		if s.state.Playing {
			s.play()
		}
		return nil
	})
	return change, ok, err
}

// Ended applies the end-of-track policy: loop replays the same track,
// otherwise shuffle picks a random track for the current mood, otherwise the
// next track in catalog order plays.
func (s *Session) Ended() error {
	return s.do(func() error {
		if !s.hasTrack {
			return ErrNoTrack
		}

		switch {
		case s.state.Looping:
			s.state.CurrentTime = 0
			if err := s.transport.Seek(0); err != nil {
				s.fail(fmt.Errorf("seeking to start: %w", err))
			}
			s.emit(Event{Kind: EventTrackChanged, Track: s.track, Reason: ReasonLoop})
		case s.state.Shuffle:
			tr, err := s.rotation.NextRandom(s.stabilizer.Current())
			if err != nil {
				return err
			}
			s.load(tr, ReasonShuffle)
		default:
			tr, err := s.rotation.Next(s.track)
			if err != nil {
				return err
			}
			s.load(tr, ReasonNext)
		}

		s.play()
		return nil
	})
}

// Next skips forward: a random track for the current mood in shuffle mode,
// otherwise the next track in catalog order.
func (s *Session) Next() error {
	return s.do(func() error {
		if !s.hasTrack {
			return ErrNoTrack
		}

		var (
			tr     catalog.Track
			err    error
			reason = ReasonNext
		)
		if s.state.Shuffle {
			tr, err = s.rotation.NextRandom(s.stabilizer.Current())
			reason = ReasonShuffle
		} else {
			tr, err = s.rotation.Next(s.track)
		}
		if err != nil {
			return err
		}

		s.load(tr, reason)
		if s.state.Playing {
			s.play()
		}
		return nil
	})
}

// Previous moves to the previous track in catalog order.
func (s *Session) Previous() error {
	return s.do(func() error {
		if !s.hasTrack {
			return ErrNoTrack
		}

		tr, err := s.rotation.Previous(s.track)
		if err != nil {
			return err
		}

		s.load(tr, ReasonPrevious)
		if s.state.Playing {
			s.play()
		}
		return nil
	})
}

// Play starts playback. A transport refusal is recorded and returned
// wrapped in ErrPlayRejected; session state stays consistent.
func (s *Session) Play() error {
	return s.do(func() error {
		return s.play()
	})
}

// Pause stops playback.
func (s *Session) Pause() error {
	return s.do(func() error {
		s.pause()
		return nil
	})
}

// TogglePlay flips between playing and paused.
func (s *Session) TogglePlay() error {
	return s.do(func() error {
		if s.state.Playing {
			s.pause()
			return nil
		}
		return s.play()
	})
}

// Seek moves the playhead, clamped to [0, duration] once the duration is known.
func (s *Session) Seek(seconds float64) error {
	return s.do(func() error {
		if seconds < 0 {
			seconds = 0
		}
		if s.state.Duration > 0 && seconds > s.state.Duration {
			seconds = s.state.Duration
		}
		if err := s.transport.Seek(seconds); err != nil {
			s.fail(fmt.Errorf("seeking: %w", err))
			return nil
		}
		s.state.CurrentTime = seconds
		return nil
	})
}

// SetVolume sets the volume, clamped to [0,1], and unmutes.
func (s *Session) SetVolume(volume float64) error {
	return s.do(func() error {
		volume = min(max(volume, 0), 1)
		s.state.Volume = volume
		s.state.Muted = false
		s.applyVolume()
		return nil
	})
}

// ToggleMute flips the mute flag, keeping the volume level.
func (s *Session) ToggleMute() error {
	return s.do(func() error {
		s.state.Muted = !s.state.Muted
		s.applyVolume()
		return nil
	})
}

// ToggleLoop flips repeat-one mode.
func (s *Session) ToggleLoop() bool {
	var on bool
	_ = s.do(func() error {
		s.state.Looping = !s.state.Looping
		on = s.state.Looping
		return nil
	})
	return on
}

// ToggleShuffle flips shuffle mode.
func (s *Session) ToggleShuffle() bool {
	var on bool
	_ = s.do(func() error {
		s.state.Shuffle = !s.state.Shuffle
		on = s.state.Shuffle
		return nil
	})
	return on
}

// SetDetection pauses or resumes sample processing. Pausing freezes the
// current mood; it never resets it.
func (s *Session) SetDetection(active bool) {
	_ = s.do(func() error {
		s.state.DetectionActive = active
		return nil
	})
}

// TimeUpdate records the transport's playhead position.
func (s *Session) TimeUpdate(seconds float64) {
	_ = s.do(func() error {
		s.state.CurrentTime = seconds
		return nil
	})
}

// DurationChange records the current track's duration.
func (s *Session) DurationChange(seconds float64) {
	_ = s.do(func() error {
		s.state.Duration = seconds
		return nil
	})
}

// ReportError records a transport-side failure reported asynchronously by
// the host (for example a media element error event).
func (s *Session) ReportError(err error) {
	_ = s.do(func() error {
		s.state.Playing = false
		s.fail(err)
		return nil
	})
}

// do runs fn under the session lock and publishes the events it queued
// after the lock is released.
func (s *Session) do(fn func() error) error {
	s.mu.Lock()
	err := fn()
	events := s.pending
	s.pending = nil
	observers := s.observers
	s.mu.Unlock()

	for _, ev := range events {
		for _, obs := range observers {
			obs(ev)
		}
	}
	return err
}

func (s *Session) emit(ev Event) {
	ev.At = s.clock.Now()
	if ev.Mood == "" {
		ev.Mood = s.stabilizer.Current()
	}
	s.pending = append(s.pending, ev)
}

func (s *Session) load(tr catalog.Track, reason Reason) {
	s.track = tr
	s.hasTrack = true
	s.state.CurrentTime = 0
	s.state.Duration = 0

	s.logger.Info("track selected",
		slog.String("mood", tr.Mood.String()),
		slog.String("track_id", tr.ID),
		slog.String("reason", string(reason)))
	s.emit(Event{Kind: EventTrackChanged, Track: tr, Reason: reason})

	if err := s.transport.Load(tr.Path); err != nil {
		s.fail(fmt.Errorf("loading %q: %w", tr.ID, err))
	}
}

func (s *Session) play() error {
	if err := s.transport.Play(); err != nil {
		s.state.Playing = false
		err = fmt.Errorf("%w: %w", ErrPlayRejected, err)
		s.fail(err)
		return err
	}
	s.state.Playing = true
	s.lastErr = nil
	return nil
}

func (s *Session) pause() {
	if err := s.transport.Pause(); err != nil {
		s.fail(fmt.Errorf("pausing: %w", err))
	}
	s.state.Playing = false
}

func (s *Session) applyVolume() {
	if err := s.transport.SetVolume(s.state.Volume, s.state.Muted); err != nil {
		s.fail(fmt.Errorf("setting volume: %w", err))
	}
}

// fail records a transport failure without touching mood or rotation state.
func (s *Session) fail(err error) {
	s.lastErr = err
	s.logger.Warn("transport intent failed", slog.String("error", err.Error()))
	s.emit(Event{Kind: EventPlaybackError, Err: err})
}
