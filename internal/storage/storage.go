// Store contract and the credential Record document
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ErrNotFound indicates that no credential record has ever been saved.
var ErrNotFound = fmt.Errorf("credential record not found")

// Store defines whole-document persistence for a credential [Record].
type Store interface {
	// Load fetches the current record. Returns [ErrNotFound] when nothing has
	// been saved yet and wraps [shared.ErrStorageFailed] on transport or
	// deserialization failure.
	Load(ctx context.Context) (*Record, error)

	// Save overwrites the stored document with rec. Atomic from the caller's
	// perspective: the next Load observes either the full new record or the
	// prior one.
	Save(ctx context.Context, rec *Record) error
}

// Record is the credential document for one linked account.
//
// ExpiresAt is unix seconds, already discounted by the renewal safety margin
// at write time. ClientID/ClientSecret are optional per-record overrides for
// the process-wide OAuth application credentials.
type Record struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    float64
	ClientID     string
	ClientSecret string

	// extra carries document fields this version doesn't know about, so
	// external edits to the stored document survive a rewrite.
	extra map[string]json.RawMessage
}

// recordFields are the document keys owned by this schema version.
var recordFields = []string{"access_token", "refresh_token", "expires_at", "client_id", "client_secret"}

// Expiry returns ExpiresAt as a [time.Time].
func (r *Record) Expiry() time.Time {
	sec := int64(r.ExpiresAt)
	nsec := int64((r.ExpiresAt - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// SetExpiry stores t into ExpiresAt as unix seconds.
func (r *Record) SetExpiry(t time.Time) {
	r.ExpiresAt = float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}

// UnmarshalJSON fills the known fields and retains every other document key
// verbatim for round-tripping.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse credential record: %w", err)
	}

	type plain struct {
		AccessToken  string  `json:"access_token"`
		RefreshToken string  `json:"refresh_token"`
		ExpiresAt    float64 `json:"expires_at"`
		ClientID     string  `json:"client_id"`
		ClientSecret string  `json:"client_secret"`
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to parse credential record: %w", err)
	}

	r.AccessToken = p.AccessToken
	r.RefreshToken = p.RefreshToken
	r.ExpiresAt = p.ExpiresAt
	r.ClientID = p.ClientID
	r.ClientSecret = p.ClientSecret

	for _, k := range recordFields {
		delete(raw, k)
	}
	if len(raw) > 0 {
		r.extra = raw
	} else {
		r.extra = nil
	}

	return nil
}

// MarshalJSON writes the known fields over any retained unknown fields.
// Empty client credentials are omitted to keep the document minimal.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.extra)+len(recordFields))
	for k, v := range r.extra {
		out[k] = v
	}

	set := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		out[key] = b
		return nil
	}

	if err := set("access_token", r.AccessToken); err != nil {
		return nil, err
	}
	if err := set("refresh_token", r.RefreshToken); err != nil {
		return nil, err
	}
	if err := set("expires_at", r.ExpiresAt); err != nil {
		return nil, err
	}
	if r.ClientID != "" {
		if err := set("client_id", r.ClientID); err != nil {
			return nil, err
		}
	}
	if r.ClientSecret != "" {
		if err := set("client_secret", r.ClientSecret); err != nil {
			return nil, err
		}
	}

	return json.Marshal(out)
}
