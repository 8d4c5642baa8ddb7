package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-emotion-player/internal/db"
	"github.com/justestif/go-emotion-player/internal/player"
)

const (
	recordTimeout = 2 * time.Second

	// playQueueSize bounds plays waiting for the database.
	playQueueSize = 256
)

// PlayRecorder appends to the listening history. *db.PlayRepository
// implements it.
type PlayRecorder interface {
	Record(ctx context.Context, play *db.Play) error
}

// playWriter records plays on a single background goroutine so request
// handlers never wait on the database.
type playWriter struct {
	rec    PlayRecorder
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan db.Play
	done   chan struct{}
}

func newPlayWriter(rec PlayRecorder, logger *slog.Logger) *playWriter {
	w := &playWriter{
		rec:    rec,
		logger: logger,
		queue:  make(chan db.Play, playQueueSize),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *playWriter) run() {
	defer close(w.done)
	for p := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		err := w.rec.Record(ctx, &p)
		cancel()
		if err != nil {
			w.logger.Warn("recording play failed", "session", p.SessionID, "track", p.TrackID, "error", err)
		}
	}
}

// enqueue never blocks. Plays are dropped when the queue is full or the
// writer is closed.
func (w *playWriter) enqueue(p db.Play) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	select {
	case w.queue <- p:
	default:
		w.logger.Warn("play history queue full, dropping play", "session", p.SessionID, "track", p.TrackID)
	}
}

// Close stops accepting plays and waits until the queued ones are written.
func (w *playWriter) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	<-w.done
}

// playHistory returns an observer that queues every track change of a
// session for recording. Failures are logged and never reach the listener.
func playHistory(w *playWriter, sessionID uuid.UUID) player.Observer {
	return func(ev player.Event) {
		if ev.Kind != player.EventTrackChanged {
			return
		}
		w.enqueue(db.Play{
			SessionID: sessionID,
			TrackID:   ev.Track.ID,
			Mood:      string(ev.Track.Mood),
			Reason:    string(ev.Reason),
			PlayedAt:  ev.At,
		})
	}
}
