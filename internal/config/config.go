// Package config loads runtime configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/justestif/go-emotion-player/internal/stabilizer"
)

// ErrInvalid is returned when a parsed value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all runtime configuration.
type Config struct {
	Addr          string        `env:"EMOTION_PLAYER_ADDR" envDefault:"127.0.0.1:8080"`
	Dwell         time.Duration `env:"EMOTION_PLAYER_DWELL" envDefault:"3s"`
	MinConfidence float64       `env:"EMOTION_PLAYER_MIN_CONFIDENCE" envDefault:"0"`
	CatalogPath   string        `env:"EMOTION_PLAYER_CATALOG"`
	MusicDir      string        `env:"EMOTION_PLAYER_MUSIC_DIR" envDefault:"music"`
	SessionTTL    time.Duration `env:"EMOTION_PLAYER_SESSION_TTL" envDefault:"24h"`
	SweepSchedule string        `env:"EMOTION_PLAYER_SWEEP" envDefault:"@every 10m"`

	DatabaseURL string `env:"DATABASE_URL"`

	SpotifyID     string `env:"SPOTIFY_ID"`
	SpotifySecret string `env:"SPOTIFY_SECRET"`
	LastfmAPIKey  string `env:"LASTFM_API_KEY"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges that the env parser cannot express.
func (c *Config) Validate() error {
	if c.Dwell < 0 {
		return fmt.Errorf("%w: EMOTION_PLAYER_DWELL must not be negative", ErrInvalid)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("%w: EMOTION_PLAYER_MIN_CONFIDENCE must be within [0,1]", ErrInvalid)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: EMOTION_PLAYER_SESSION_TTL must be positive", ErrInvalid)
	}
	return nil
}

// Stabilizer returns the stabilizer settings.
func (c *Config) Stabilizer() stabilizer.Config {
	return stabilizer.Config{
		Dwell:         c.Dwell,
		MinConfidence: c.MinConfidence,
	}
}
