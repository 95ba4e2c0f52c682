// Package services talks to Spotify on behalf of the linked account.
//
// # Authenticated Client
//
// [Client.Do] is the single chokepoint for outbound Web API calls. Every
// call obtains a bearer token from the [TokenSource], passes a local rate
// limiter, and maps provider statuses into the shared error taxonomy.
//
// A 401 from the provider triggers exactly one [TokenSource.ForceRenew] and
// retry; a second 401 surfaces as [shared.ErrNotAuthenticated]. This keeps a
// permanently dead grant from looping while still absorbing the common case
// of a token revoked out from under us.
//
// Other status mappings:
//   - 429 : [RateLimitError] wrapping [shared.ErrRateLimited], with the
//     Retry-After hint preserved
//   - 403/404 on player endpoints : [shared.ErrNoActiveDevice]
//   - remaining failures : [shared.ErrAPIRequest]
//
// # Playback Proxy
//
// [Player] holds one operation per control action. Operations validate
// inputs before any provider call (seek percent and volume must be within
// [0,100]), and reshape provider responses into the models types so callers
// never see raw Web API shapes. An inactive player is a normal state:
// [Player.Current] reports it as (nil, nil).
//
// # Remote Mode
//
// [RemoteClient] is the same control surface spoken over HTTP to an already
// deployed spr server, used by the CLI's --server flag.
package services
