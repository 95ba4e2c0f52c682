// Refresh-token grant against the Spotify accounts service
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/spr/internal/shared"
	"github.com/go-resty/resty/v2"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	exchangeTimeout  = 10 * time.Second
	exchangeMaxConns = 2
)

// TokenResponse is the provider's token-endpoint response body.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// tokenError is the provider's OAuth error body.
type tokenError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

// Exchanger performs the OAuth refresh-token grant.
type Exchanger interface {
	// Refresh trades refreshToken for a new access token. Fails with
	// [shared.ErrReauthRequired] when the provider refuses the grant and
	// [shared.ErrRefreshFailed] on transport errors or provider outages.
	Refresh(ctx context.Context, clientID, clientSecret, refreshToken string) (*TokenResponse, error)
}

// ExchangerConfig configures an [AccountsExchanger].
type ExchangerConfig struct {
	// TokenURL overrides the accounts token endpoint, for tests.
	TokenURL string

	// Timeout bounds each exchange request. Defaults to 10s.
	Timeout time.Duration
}

// AccountsExchanger implements [Exchanger] against the accounts token
// endpoint using HTTP basic authentication with the application credentials.
type AccountsExchanger struct {
	client   *resty.Client
	tokenURL string
}

// NewExchanger creates an exchanger for the Spotify accounts service.
func NewExchanger(cfg ExchangerConfig) *AccountsExchanger {
	if cfg.TokenURL == "" {
		cfg.TokenURL = spotifyTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = exchangeTimeout
	}

	client := resty.NewWithClient(&http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxConnsPerHost:     exchangeMaxConns,
			MaxIdleConnsPerHost: exchangeMaxConns,
		},
	})

	return &AccountsExchanger{client: client, tokenURL: cfg.TokenURL}
}

// Refresh implements [Exchanger].
func (e *AccountsExchanger) Refresh(ctx context.Context, clientID, clientSecret, refreshToken string) (*TokenResponse, error) {
	var (
		token    TokenResponse
		oauthErr tokenError
	)

	resp, err := e.client.R().
		SetContext(ctx).
		SetBasicAuth(clientID, clientSecret).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
		}).
		SetResult(&token).
		SetError(&oauthErr).
		Post(e.tokenURL)
	if err != nil {
		return nil, fmt.Errorf("%w: token endpoint unreachable: %v", shared.ErrRefreshFailed, err)
	}

	if resp.IsSuccess() {
		if token.AccessToken == "" {
			return nil, fmt.Errorf("%w: exchange response missing access_token", shared.ErrRefreshFailed)
		}
		return &token, nil
	}

	if oauthErr.Code == "invalid_grant" {
		return nil, fmt.Errorf("%w: provider refused the refresh token", shared.ErrReauthRequired)
	}

	return nil, fmt.Errorf("%w: token endpoint returned status %d", shared.ErrRefreshFailed, resp.StatusCode())
}
