package storage

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRecord(t *testing.T) {
	t.Run("round trip preserves unknown fields", func(t *testing.T) {
		doc := `{
  "access_token": "BQD_access",
  "refresh_token": "AQC_refresh",
  "expires_at": 1735689600,
  "note": "edited by hand",
  "device_hint": {"name": "kitchen"}
}`

		var rec Record
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			t.Fatalf("failed to unmarshal record: %v", err)
		}

		if rec.AccessToken != "BQD_access" {
			t.Errorf("expected access token BQD_access, got %s", rec.AccessToken)
		}
		if rec.RefreshToken != "AQC_refresh" {
			t.Errorf("expected refresh token AQC_refresh, got %s", rec.RefreshToken)
		}
		if rec.ExpiresAt != 1735689600 {
			t.Errorf("expected expires_at 1735689600, got %v", rec.ExpiresAt)
		}

		rec.AccessToken = "BQD_rotated"
		out, err := json.Marshal(&rec)
		if err != nil {
			t.Fatalf("failed to marshal record: %v", err)
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(out, &raw); err != nil {
			t.Fatalf("failed to parse marshaled record: %v", err)
		}

		if string(raw["note"]) != `"edited by hand"` {
			t.Errorf("expected unknown field note to survive, got %s", raw["note"])
		}
		if !strings.Contains(string(raw["device_hint"]), "kitchen") {
			t.Errorf("expected unknown object field to survive, got %s", raw["device_hint"])
		}
		if string(raw["access_token"]) != `"BQD_rotated"` {
			t.Errorf("expected updated access token, got %s", raw["access_token"])
		}
	})

	t.Run("empty client credentials are omitted", func(t *testing.T) {
		rec := Record{AccessToken: "a", RefreshToken: "r", ExpiresAt: 100}

		out, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("failed to marshal record: %v", err)
		}

		if strings.Contains(string(out), "client_id") {
			t.Errorf("expected client_id omitted, got %s", out)
		}
		if strings.Contains(string(out), "client_secret") {
			t.Errorf("expected client_secret omitted, got %s", out)
		}
	})

	t.Run("client credentials round trip when set", func(t *testing.T) {
		rec := Record{
			AccessToken:  "a",
			RefreshToken: "r",
			ExpiresAt:    100,
			ClientID:     "cid",
			ClientSecret: "csec",
		}

		out, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("failed to marshal record: %v", err)
		}

		var parsed Record
		if err := json.Unmarshal(out, &parsed); err != nil {
			t.Fatalf("failed to unmarshal record: %v", err)
		}

		if parsed.ClientID != "cid" || parsed.ClientSecret != "csec" {
			t.Errorf("expected client credentials to round trip, got %+v", parsed)
		}
	})

	t.Run("malformed document fails", func(t *testing.T) {
		var rec Record
		if err := json.Unmarshal([]byte(`{"access_token": 42`), &rec); err == nil {
			t.Error("expected error for malformed document")
		}
	})

	t.Run("expiry conversions", func(t *testing.T) {
		var rec Record
		at := time.Unix(1735689600, 500*int64(time.Millisecond))
		rec.SetExpiry(at)

		if got := rec.Expiry(); !got.Equal(at) {
			t.Errorf("expected expiry %v, got %v", at, got)
		}
	})
}
