package player

import "errors"

// ErrPlayRejected wraps a transport's refusal to start playback
// (autoplay policy, missing resource).
var ErrPlayRejected = errors.New("play rejected by transport")

// Transport is the media element the session drives. Implementations
// execute intents; they never report media bytes back.
type Transport interface {
	Load(locator string) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetVolume(volume float64, muted bool) error
}

// NopTransport accepts every intent and does nothing.
type NopTransport struct{}

func (NopTransport) Load(string) error {
	return nil
}

func (NopTransport) Play() error {
	return nil
}

func (NopTransport) Pause() error {
	return nil
}

func (NopTransport) Seek(float64) error {
	return nil
}

func (NopTransport) SetVolume(float64, bool) error {
	return nil
}

var _ Transport = NopTransport{}
