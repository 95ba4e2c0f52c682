// Package tasks runs optional background maintenance. Its one task is the
// token keepalive: a ticker loop that renews the access token ahead of
// demand so the first request after a quiet stretch does not pay the
// exchange latency. Demand-driven renewal stays correct without it.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spr/internal/shared"
	"github.com/jonboulle/clockwork"
)

// defaultInterval keeps roughly four checks per nominal token lifetime.
const defaultInterval = 15 * time.Minute

// TokenSource is the slice of the token manager the keepalive drives;
// satisfied by [auth.Manager].
type TokenSource interface {
	EnsureValid(ctx context.Context) (string, error)
}

// RefresherConfig configures a [Refresher].
type RefresherConfig struct {
	// Tokens is the manager whose token the loop keeps warm. Required.
	Tokens TokenSource

	// Interval between checks. Defaults to 15 minutes.
	Interval time.Duration

	// Clock defaults to the wall clock.
	Clock clockwork.Clock

	// Logger defaults to the package logger.
	Logger *log.Logger
}

// Refresher periodically asks the token manager for a valid access token,
// which triggers a renewal exactly when the stored token is inside the
// safety margin.
type Refresher struct {
	tokens   TokenSource
	interval time.Duration
	clock    clockwork.Clock
	logger   *log.Logger
}

// NewRefresher creates a keepalive loop. Call [Refresher.Run] to start it.
func NewRefresher(cfg RefresherConfig) (*Refresher, error) {
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("%w: a token source is required", shared.ErrInvalidConfig)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}

	return &Refresher{
		tokens:   cfg.Tokens,
		interval: cfg.Interval,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
	}, nil
}

// Run ticks until ctx is canceled. Failures are logged and retried on the
// next tick; a slow check coalesces with the tick it overlaps.
func (r *Refresher) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("token keepalive started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("token keepalive stopped")
			return
		case <-ticker.Chan():
			r.check(ctx)
		}
	}
}

func (r *Refresher) check(ctx context.Context) {
	_, err := r.tokens.EnsureValid(ctx)
	switch {
	case err == nil:
		r.logger.Debug("token checked")
	case errors.Is(err, shared.ErrNotAuthenticated):
		// Nothing to keep warm until an account is linked.
		r.logger.Debug("keepalive idle, no linked account")
	default:
		r.logger.Warn("background renewal failed", "error", err)
	}
}
