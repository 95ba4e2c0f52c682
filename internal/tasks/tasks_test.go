package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/spr/internal/shared"
	"github.com/jonboulle/clockwork"
)

// keepaliveSource counts checks and signals each one on done.
type keepaliveSource struct {
	calls atomic.Int32
	err   error
	done  chan struct{}
}

func (s *keepaliveSource) EnsureValid(ctx context.Context) (string, error) {
	s.calls.Add(1)
	select {
	case s.done <- struct{}{}:
	default:
	}
	if s.err != nil {
		return "", s.err
	}
	return "BQD_token", nil
}

func startRefresher(t *testing.T, source *keepaliveSource, clock clockwork.Clock) (context.CancelFunc, chan struct{}) {
	t.Helper()

	refresher, err := NewRefresher(RefresherConfig{
		Tokens:   source,
		Interval: time.Minute,
		Clock:    clock,
		Logger:   shared.NewLogger(io.Discard),
	})
	if err != nil {
		t.Fatalf("failed to create refresher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		refresher.Run(ctx)
		close(stopped)
	}()
	return cancel, stopped
}

func waitForCheck(t *testing.T, source *keepaliveSource) {
	t.Helper()
	select {
	case <-source.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a keepalive check")
	}
}

func TestRefresher(t *testing.T) {
	t.Run("requires a token source", func(t *testing.T) {
		if _, err := NewRefresher(RefresherConfig{}); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("checks the token on each tick", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		source := &keepaliveSource{done: make(chan struct{}, 4)}
		cancel, stopped := startRefresher(t, source, clock)

		clock.BlockUntil(1)
		clock.Advance(time.Minute)
		waitForCheck(t, source)

		clock.Advance(time.Minute)
		waitForCheck(t, source)

		cancel()
		select {
		case <-stopped:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for the loop to stop")
		}

		if got := source.calls.Load(); got != 2 {
			t.Errorf("expected 2 checks, got %d", got)
		}
	})

	t.Run("keeps ticking through failures", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		source := &keepaliveSource{
			err:  fmt.Errorf("%w: provider outage", shared.ErrRefreshFailed),
			done: make(chan struct{}, 4),
		}
		cancel, stopped := startRefresher(t, source, clock)

		clock.BlockUntil(1)
		clock.Advance(time.Minute)
		waitForCheck(t, source)

		clock.Advance(time.Minute)
		waitForCheck(t, source)

		cancel()
		<-stopped

		if got := source.calls.Load(); got != 2 {
			t.Errorf("expected the loop to survive failures, got %d checks", got)
		}
	})

	t.Run("stops on cancellation without ticking", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		source := &keepaliveSource{done: make(chan struct{}, 1)}
		cancel, stopped := startRefresher(t, source, clock)

		clock.BlockUntil(1)
		cancel()

		select {
		case <-stopped:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for the loop to stop")
		}

		if got := source.calls.Load(); got != 0 {
			t.Errorf("expected no checks before the first tick, got %d", got)
		}
	})
}
