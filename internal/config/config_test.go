package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %q, want default", cfg.Addr)
	}
	if cfg.Dwell != 3*time.Second {
		t.Errorf("Dwell = %v, want 3s", cfg.Dwell)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.SweepSchedule != "@every 10m" {
		t.Errorf("SweepSchedule = %q", cfg.SweepSchedule)
	}
	if cfg.MusicDir != "music" {
		t.Errorf("MusicDir = %q, want music", cfg.MusicDir)
	}

	st := cfg.Stabilizer()
	if st.Dwell != cfg.Dwell || st.MinConfidence != 0 {
		t.Errorf("Stabilizer() = %+v", st)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantErr   error
		wantParse bool
	}{
		{
			name: "overrides",
			env: map[string]string{
				"EMOTION_PLAYER_DWELL":          "1500ms",
				"EMOTION_PLAYER_MIN_CONFIDENCE": "0.4",
			},
		},
		{
			name:      "malformed duration",
			env:       map[string]string{"EMOTION_PLAYER_DWELL": "soon"},
			wantParse: true,
		},
		{
			name:    "negative dwell",
			env:     map[string]string{"EMOTION_PLAYER_DWELL": "-1s"},
			wantErr: ErrInvalid,
		},
		{
			name:    "confidence out of range",
			env:     map[string]string{"EMOTION_PLAYER_MIN_CONFIDENCE": "1.5"},
			wantErr: ErrInvalid,
		},
		{
			name:    "zero ttl",
			env:     map[string]string{"EMOTION_PLAYER_SESSION_TTL": "0s"},
			wantErr: ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			switch {
			case tt.wantParse:
				if err == nil || !strings.Contains(err.Error(), "parse env:") {
					t.Fatalf("Load() error = %v, want parse env error", err)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err != nil {
					t.Fatalf("Load() error = %v", err)
				}
				if cfg.Dwell != 1500*time.Millisecond || cfg.MinConfidence != 0.4 {
					t.Errorf("Load() = %+v", cfg)
				}
			}
		})
	}
}
