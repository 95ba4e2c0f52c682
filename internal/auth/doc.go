// Package auth owns the OAuth token lifecycle for the linked Spotify account.
//
// # Token Manager
//
// The [Manager] wraps a [storage.Store] and keeps its credential record
// usable: it re-reads the record on every request, detects expiry ahead of
// time via a safety margin, performs the refresh-token exchange, and writes
// the renewed record back before handing out the access token.
//
// # States
//
// A managed account moves through four states:
//   - [StateUninitialized] : no record saved yet; the account must be linked
//   - [StateValid] : the stored access token is usable as-is
//   - [StateExpiring] : within the safety margin or past expiry; next use renews
//   - [StateRefreshing] : a refresh exchange is in flight
//
// A failed exchange leaves the stored record untouched, so the account stays
// in [StateExpiring] and the next call retries.
//
// # Single Flight
//
// Concurrent callers that observe an expiring token share one refresh
// exchange via [singleflight.Group] rather than racing: the provider accepts
// only the first exchange for a given refresh token and may rotate it away
// from any duplicate.
//
// # Error Handling
//
// The exchange distinguishes terminal from transient failures:
//   - [shared.ErrReauthRequired] : the provider refused the refresh token
//     (invalid_grant); only a new authorization fixes this
//   - [shared.ErrRefreshFailed] : network failure or provider 5xx; safe to retry
//   - [shared.ErrNotAuthenticated] : no credentials linked at all
package auth
