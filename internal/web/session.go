package web

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/justestif/go-emotion-player/internal/player"
)

const (
	sessionCookieName = "player_session"

	// DefaultSessionTTL is how long an idle browser session is kept.
	DefaultSessionTTL = 24 * time.Hour
)

// Listener is one browser's playback session and its intent queue.
type Listener struct {
	ID      uuid.UUID
	Session *player.Session
	Queue   *IntentQueue

	createdAt time.Time
	lastSeen  time.Time
}

// SessionFactory builds the playback session for a new listener.
type SessionFactory func(id uuid.UUID, t player.Transport) (*player.Session, error)

// SessionStore keeps listeners in memory, keyed by a cookie.
type SessionStore struct {
	mu        sync.Mutex
	listeners map[uuid.UUID]*Listener
	factory   SessionFactory
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewSessionStore creates a store. A non-positive ttl uses
// DefaultSessionTTL; a nil logger uses slog.Default.
func NewSessionStore(factory SessionFactory, ttl time.Duration, logger *slog.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		listeners: make(map[uuid.UUID]*Listener),
		factory:   factory,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
	}
}

// Len returns the number of live listeners.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Get returns the listener with the given ID if it has not expired.
func (s *SessionStore) Get(id uuid.UUID) (*Listener, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listeners[id]
	if !ok || s.expired(l, s.now()) {
		return nil, false
	}
	l.lastSeen = s.now()
	return l, true
}

// FromRequest returns the caller's listener, creating one and setting the
// cookie when the request carries no valid session.
func (s *SessionStore) FromRequest(w http.ResponseWriter, r *http.Request) (*Listener, error) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			if l, ok := s.Get(id); ok {
				return l, nil
			}
		}
	}

	l, err := s.create()
	if err != nil {
		return nil, err
	}
	s.setCookie(w, l.ID)
	return l, nil
}

func (s *SessionStore) create() (*Listener, error) {
	id := uuid.New()
	queue := NewIntentQueue()
	session, err := s.factory(id, queue)
	if err != nil {
		return nil, err
	}

	now := s.now()
	l := &Listener{
		ID:        id,
		Session:   session,
		Queue:     queue,
		createdAt: now,
		lastSeen:  now,
	}

	s.mu.Lock()
	s.listeners[id] = l
	s.mu.Unlock()

	s.logger.Info("session created", "session", id)
	return l, nil
}

// Sweep removes listeners idle longer than the TTL and returns how many
// were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, l := range s.listeners {
		if s.expired(l, now) {
			delete(s.listeners, id)
			removed++
			s.logger.Info("session expired", "session", id, "age", now.Sub(l.createdAt).Round(time.Second))
		}
	}
	return removed
}

// StartSweeper runs Sweep on a cron schedule such as "@every 10m". The
// returned function stops the schedule.
func (s *SessionStore) StartSweeper(spec string) (func(), error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.Sweep() }); err != nil {
		return nil, err
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}

func (s *SessionStore) expired(l *Listener, now time.Time) bool {
	return now.Sub(l.lastSeen) > s.ttl
}

func (s *SessionStore) setCookie(w http.ResponseWriter, id uuid.UUID) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
}
