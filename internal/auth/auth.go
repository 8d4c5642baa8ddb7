// Package auth obtains app-level Spotify API access through the OAuth2
// client credentials flow.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrMissingCredentials is returned when the client ID or secret is empty.
var ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET")

// Credentials identify the registered Spotify application.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string // defaults to Spotify's token endpoint
}

// Client returns a Spotify client whose token is fetched eagerly, so bad
// credentials fail here rather than on the first API call. The token
// refreshes itself for the lifetime of ctx.
func Client(ctx context.Context, creds Credentials, opts ...spotify.ClientOption) (*spotify.Client, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	if creds.TokenURL == "" {
		creds.TokenURL = spotifyauth.TokenURL
	}

	cfg := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.TokenURL,
	}
	if _, err := cfg.Token(ctx); err != nil {
		return nil, fmt.Errorf("fetching client credentials token: %w", err)
	}

	opts = append([]spotify.ClientOption{spotify.WithRetry(true)}, opts...)
	return spotify.New(cfg.Client(ctx), opts...), nil
}
