package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/spr/internal/shared"
)

func TestRemoteClient(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a server url", func(t *testing.T) {
		if _, err := NewRemoteClient(""); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("decodes the server envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success": true, "action": "play"}`))
		}))
		defer srv.Close()

		client, err := NewRemoteClient(srv.URL)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		resp, err := client.Get(ctx, "/play")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if !resp.Success() {
			t.Errorf("expected success, got %+v", resp)
		}
		if resp.JSON["action"] != "play" {
			t.Errorf("expected action play, got %v", resp.JSON["action"])
		}
	})

	t.Run("failed envelope is not success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success": false, "error": "No active device"}`))
		}))
		defer srv.Close()

		client, err := NewRemoteClient(srv.URL)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		resp, err := client.Get(ctx, "/play")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.Success() {
			t.Error("expected failure envelope")
		}
	})

	t.Run("non-2xx is not success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client, err := NewRemoteClient(srv.URL)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		resp, err := client.Get(ctx, "/current")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.Success() {
			t.Error("expected failure for 502")
		}
	})
}
