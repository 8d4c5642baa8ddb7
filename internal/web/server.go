// Package web serves the player UI and the JSON API that drives one
// playback session per browser.
package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/justestif/go-emotion-player/internal/catalog"
	"github.com/justestif/go-emotion-player/internal/player"
	"github.com/justestif/go-emotion-player/internal/stabilizer"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

// DefaultSweepSchedule is the default cron spec for expiring sessions.
const DefaultSweepSchedule = "@every 10m"

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr          string
	Catalog       *catalog.Catalog
	Stabilizer    stabilizer.Config
	SessionTTL    time.Duration
	SweepSchedule string
	MusicDir      string       // optional directory served under /music/
	Plays         PlayRecorder // optional
	Logger        *slog.Logger
	TemplatesFS   fs.FS
	StaticFS      fs.FS
}

// Server is the HTTP server for the web application.
type Server struct {
	router   chi.Router
	server   *http.Server
	sessions *SessionStore
	handlers *Handlers
	plays    *playWriter // nil without a PlayRecorder
	sweep    string
	logger   *slog.Logger
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = DefaultSweepSchedule
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := NewTemplates(cfg.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	var plays *playWriter
	if cfg.Plays != nil {
		plays = newPlayWriter(cfg.Plays, logger)
	}
	sessions := NewSessionStore(newSessionFactory(cfg, plays, logger), cfg.SessionTTL, logger)

	s := &Server{
		router:   chi.NewRouter(),
		sessions: sessions,
		handlers: NewHandlers(cfg.Catalog, sessions, templates, logger),
		plays:    plays,
		sweep:    cfg.SweepSchedule,
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes(cfg.StaticFS, cfg.MusicDir)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// newSessionFactory builds each listener's session with its own rotation
// policy and stabilizer.
func newSessionFactory(cfg ServerConfig, plays *playWriter, logger *slog.Logger) SessionFactory {
	return func(id uuid.UUID, t player.Transport) (*player.Session, error) {
		sl := logger.With("session", id.String())
		opts := []player.Option{
			player.WithStabilizerConfig(cfg.Stabilizer),
			player.WithLogger(sl),
		}
		if plays != nil {
			opts = append(opts, player.WithObserver(playHistory(plays, id)))
		}
		return player.New(cfg.Catalog, t, opts...)
	}
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes(staticFS fs.FS, musicDir string) {
	if staticFS != nil {
		fileServer := http.FileServer(http.FS(staticFS))
		s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}
	if musicDir != "" {
		s.router.Handle("/music/*", http.StripPrefix("/music/", http.FileServer(http.Dir(musicDir))))
	}

	s.router.Get("/", s.handlers.Home)
	s.router.Get("/partials/now-playing", s.handlers.NowPlaying)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handlers.Catalog)
		r.Get("/state", s.handlers.State)
		r.Post("/samples", s.handlers.Sample)
		r.Post("/transport/{event}", s.handlers.Transport)
		r.Post("/controls/{action}", s.handlers.Control)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Close flushes pending play history. The server must not handle
// requests afterwards.
func (s *Server) Close() {
	if s.plays != nil {
		s.plays.Close()
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	stopSweep, err := s.sessions.StartSweeper(s.sweep)
	if err != nil {
		return fmt.Errorf("scheduling session sweep %q: %w", s.sweep, err)
	}
	defer stopSweep()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", "http://"+s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
