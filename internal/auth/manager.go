package auth

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spr/internal/models"
	"github.com/desertthunder/spr/internal/shared"
	"github.com/desertthunder/spr/internal/storage"
	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	// defaultMargin is subtracted from provider-reported lifetimes so
	// renewal happens ahead of true expiry; request latency plus clock skew
	// must never let a token expire between the validity check and its use.
	defaultMargin = time.Minute

	// initialLifetime is assumed for tokens stored without a
	// provider-reported lifetime, matching the provider's usual hour.
	initialLifetime = time.Hour
)

// State describes the manager's view of the stored credentials.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateValid         State = "valid"
	StateExpiring      State = "expiring"
	StateRefreshing    State = "refreshing"
)

// ManagerConfig configures a [Manager].
type ManagerConfig struct {
	// Store holds the account's credential record. Required.
	Store storage.Store

	// Exchanger performs the refresh grant. Defaults to the Spotify
	// accounts service.
	Exchanger Exchanger

	// ClientID and ClientSecret authenticate refresh exchanges. A record
	// carrying its own credentials overrides these.
	ClientID     string
	ClientSecret string

	// Margin is the renewal safety margin. Defaults to one minute.
	Margin time.Duration

	// AccountKey scopes the single-flight refresh guard. Defaults to
	// "default"; give each account its own manager and key.
	AccountKey string

	Clock  clockwork.Clock
	Logger *log.Logger
}

// Manager keeps one account's credential record usable.
//
// The record is re-read from the store on every call, so external writes
// (manual edits, another process renewing) are picked up without restarts.
// Refresh failures never mutate stored state.
type Manager struct {
	store     storage.Store
	exchanger Exchanger
	clock     clockwork.Clock
	logger    *log.Logger

	clientID     string
	clientSecret string
	margin       time.Duration
	key          string

	group    singleflight.Group
	renewing atomic.Bool
}

// NewManager creates a token manager over the given store.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: credential store is required", shared.ErrInvalidConfig)
	}
	if cfg.Exchanger == nil {
		cfg.Exchanger = NewExchanger(ExchangerConfig{})
	}
	if cfg.Margin <= 0 {
		cfg.Margin = defaultMargin
	}
	if cfg.AccountKey == "" {
		cfg.AccountKey = "default"
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}

	return &Manager{
		store:        cfg.Store,
		exchanger:    cfg.Exchanger,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		margin:       cfg.Margin,
		key:          cfg.AccountKey,
	}, nil
}

// EnsureValid returns an access token safe to use for at least the safety
// margin, renewing it first when necessary.
func (m *Manager) EnsureValid(ctx context.Context) (string, error) {
	rec, err := m.load(ctx)
	if err != nil {
		return "", err
	}

	if m.fresh(rec) {
		return rec.AccessToken, nil
	}

	return m.renew(ctx, false)
}

// ForceRenew performs a refresh exchange regardless of the stored token's
// freshness; used for explicit re-sync after external credential changes.
// A caller arriving while an exchange is already in flight shares its result.
func (m *Manager) ForceRenew(ctx context.Context) (string, error) {
	return m.renew(ctx, true)
}

// Status reports the stored token's validity without triggering a renewal.
// ExpiresIn is negative once the token is past its stored expiry. An
// uninitialized account reports the zero status rather than an error.
func (m *Manager) Status(ctx context.Context) (*models.TokenStatus, error) {
	rec, err := m.store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.TokenStatus{}, nil
	}
	if err != nil {
		return nil, err
	}

	status := &models.TokenStatus{
		Valid:      m.fresh(rec),
		HasRefresh: rec.RefreshToken != "",
	}
	if rec.AccessToken != "" {
		status.ExpiresIn = int64(rec.Expiry().Sub(m.clock.Now()).Seconds())
	}
	return status, nil
}

// State reports which lifecycle state the account is in.
func (m *Manager) State(ctx context.Context) (State, error) {
	if m.renewing.Load() {
		return StateRefreshing, nil
	}

	rec, err := m.store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return StateUninitialized, nil
	}
	if err != nil {
		return "", err
	}

	if rec.AccessToken == "" && rec.RefreshToken == "" {
		return StateUninitialized, nil
	}
	if m.fresh(rec) {
		return StateValid, nil
	}
	return StateExpiring, nil
}

// Initialize links the account from an externally obtained token pair,
// assuming the provider's usual hour lifetime. Fields of a previously stored
// record other than the tokens are preserved.
func (m *Manager) Initialize(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return fmt.Errorf("%w: access and refresh tokens are required", shared.ErrInvalidInput)
	}
	return m.adopt(ctx, accessToken, refreshToken, m.clock.Now().Add(initialLifetime))
}

// Adopt stores a token obtained outside the refresh flow, such as the
// initial authorization-code exchange.
func (m *Manager) Adopt(ctx context.Context, tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" || tok.RefreshToken == "" {
		return fmt.Errorf("%w: authorization produced an incomplete token", shared.ErrInvalidInput)
	}

	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = m.clock.Now().Add(initialLifetime)
	}
	return m.adopt(ctx, tok.AccessToken, tok.RefreshToken, expiry)
}

func (m *Manager) adopt(ctx context.Context, accessToken, refreshToken string, expiry time.Time) error {
	var next storage.Record
	if rec, err := m.store.Load(ctx); err == nil {
		next = *rec
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	next.AccessToken = accessToken
	next.RefreshToken = refreshToken
	next.SetExpiry(m.discount(expiry))

	if err := m.store.Save(ctx, &next); err != nil {
		return err
	}

	m.logger.Info("credentials linked", "expires_at", next.Expiry())
	return nil
}

// load fetches the record, mapping an absent one to ErrNotAuthenticated.
func (m *Manager) load(ctx context.Context) (*storage.Record, error) {
	rec, err := m.store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: no credentials linked", shared.ErrNotAuthenticated)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// fresh reports whether the stored access token is still usable, i.e. more
// than the safety margin away from its stored expiry.
func (m *Manager) fresh(rec *storage.Record) bool {
	return rec.AccessToken != "" && rec.Expiry().Sub(m.clock.Now()) > m.margin
}

// renew funnels all refresh attempts for the account through one in-flight
// exchange. The winning caller's context bounds the shared exchange.
func (m *Manager) renew(ctx context.Context, force bool) (string, error) {
	v, err, _ := m.group.Do(m.key, func() (any, error) {
		return m.exchange(ctx, force)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// exchange performs one refresh grant and persists the renewed record.
func (m *Manager) exchange(ctx context.Context, force bool) (string, error) {
	m.renewing.Store(true)
	defer m.renewing.Store(false)

	rec, err := m.load(ctx)
	if err != nil {
		return "", err
	}

	// A caller queued behind a completed renewal must not trigger a second
	// exchange with the already-consumed refresh token.
	if !force && m.fresh(rec) {
		return rec.AccessToken, nil
	}

	if rec.RefreshToken == "" {
		return "", fmt.Errorf("%w: record has no refresh token", shared.ErrNotAuthenticated)
	}

	clientID, clientSecret := m.credentials(rec)
	if clientID == "" || clientSecret == "" {
		return "", fmt.Errorf("%w: client credentials for the refresh exchange", shared.ErrMissingConfig)
	}

	token, err := m.exchanger.Refresh(ctx, clientID, clientSecret, rec.RefreshToken)
	if err != nil {
		m.logger.Warn("token refresh failed", "err", err)
		return "", err
	}

	next := *rec
	next.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		next.RefreshToken = token.RefreshToken
	}

	lifetime := time.Duration(token.ExpiresIn) * time.Second
	if lifetime <= 0 {
		lifetime = initialLifetime
	}
	next.SetExpiry(m.discount(m.clock.Now().Add(lifetime)))

	if err := m.store.Save(ctx, &next); err != nil {
		return "", err
	}

	m.logger.Info("access token renewed",
		"expires_in", token.ExpiresIn,
		"rotated", token.RefreshToken != "")
	return next.AccessToken, nil
}

// credentials resolves the client id/secret pair, preferring per-record
// overrides from the stored document.
func (m *Manager) credentials(rec *storage.Record) (string, string) {
	clientID, clientSecret := m.clientID, m.clientSecret
	if rec.ClientID != "" {
		clientID = rec.ClientID
	}
	if rec.ClientSecret != "" {
		clientSecret = rec.ClientSecret
	}
	return clientID, clientSecret
}

// discount pulls the expiry ahead by the safety margin, keeping very short
// lifetimes in the future so renewal cannot loop.
func (m *Manager) discount(expiry time.Time) time.Time {
	discounted := expiry.Add(-m.margin)
	if !discounted.After(m.clock.Now()) {
		return expiry
	}
	return discounted
}
