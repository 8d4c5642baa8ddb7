package web

import (
	"sync"

	"github.com/justestif/go-emotion-player/internal/player"
)

// maxPendingIntents bounds the queue of a browser that stopped polling.
const maxPendingIntents = 64

// Intent operations executed by the browser's audio element.
const (
	OpLoad   = "load"
	OpPlay   = "play"
	OpPause  = "pause"
	OpSeek   = "seek"
	OpVolume = "volume"
)

// Intent is one media command for the browser.
type Intent struct {
	Seq     uint64  `json:"seq"`
	Op      string  `json:"op"`
	Locator string  `json:"locator,omitempty"`
	Seconds float64 `json:"seconds,omitempty"`
	Volume  float64 `json:"volume,omitempty"`
	Muted   bool    `json:"muted,omitempty"`
}

// IntentQueue is the player.Transport of a browser session. Intents are
// queued and handed to the browser with the next state response; the
// browser reports failures back through the transport endpoints.
type IntentQueue struct {
	mu      sync.Mutex
	seq     uint64
	pending []Intent
}

var _ player.Transport = (*IntentQueue)(nil)

// NewIntentQueue creates an empty queue.
func NewIntentQueue() *IntentQueue {
	return &IntentQueue{}
}

func (q *IntentQueue) push(in Intent) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	in.Seq = q.seq
	q.pending = append(q.pending, in)
	if n := len(q.pending) - maxPendingIntents; n > 0 {
		q.pending = q.pending[n:]
	}
	return nil
}

// Load queues a source change.
func (q *IntentQueue) Load(locator string) error {
	return q.push(Intent{Op: OpLoad, Locator: locator})
}

// Play queues a play intent. Autoplay rejection surfaces later as a
// transport error report.
func (q *IntentQueue) Play() error {
	return q.push(Intent{Op: OpPlay})
}

// Pause queues a pause intent.
func (q *IntentQueue) Pause() error {
	return q.push(Intent{Op: OpPause})
}

// Seek queues a seek intent.
func (q *IntentQueue) Seek(seconds float64) error {
	return q.push(Intent{Op: OpSeek, Seconds: seconds})
}

// SetVolume queues a volume change.
func (q *IntentQueue) SetVolume(volume float64, muted bool) error {
	return q.push(Intent{Op: OpVolume, Volume: volume, Muted: muted})
}

// Drain returns and clears the pending intents in order. The result is
// never nil.
func (q *IntentQueue) Drain() []Intent {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.pending
	q.pending = nil
	if out == nil {
		out = []Intent{}
	}
	return out
}
