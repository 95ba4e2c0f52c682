// package services implements authenticated Spotify clients and the playback
// operations built on top of them
package services

import (
	"context"

	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// playbackScopes are the grants the remote needs: read and control playback,
// read and edit the Liked Songs library.
var playbackScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-library-read",
	"user-library-modify",
}

// TokenSource supplies bearer tokens for outbound Spotify calls.
//
// EnsureValid returns a token safe to use now, renewing first if needed.
// ForceRenew performs an unconditional renewal; the [Client] invokes it once
// when the provider rejects a token that was presumed valid.
type TokenSource interface {
	EnsureValid(ctx context.Context) (string, error)
	ForceRenew(ctx context.Context) (string, error)
}

// StaticTokenSource adapts a fixed token string to [TokenSource], for tests
// and one-off scripts. ForceRenew cannot mint a new token and returns the
// same string.
type StaticTokenSource string

func (s StaticTokenSource) EnsureValid(ctx context.Context) (string, error) { return string(s), nil }
func (s StaticTokenSource) ForceRenew(ctx context.Context) (string, error)  { return string(s), nil }

// OAuthConfig builds the authorization-code configuration used to link an
// account for the first time.
func OAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       playbackScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}
}

// AuthCodeURL returns the provider consent URL for the given state nonce.
func AuthCodeURL(cfg *oauth2.Config, state string) string {
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}
