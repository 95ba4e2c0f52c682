// Package server exposes the playback remote over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support, and
// [BasicRouter] implements it over [http.ServeMux]. Route patterns are
// method-qualified ("GET /queue/{index}"), so the mux enforces methods and
// binds path wildcards.
//
// [Middleware] wraps handlers in reverse registration order. Per-route
// middleware goes through [Router.Use]; [CORS] must wrap the router itself
// because the mux never routes preflight OPTIONS requests to handlers.
//
// # Handlers
//
// Three [Handler] implementations cover the API surface:
//   - [PlayerHandler] : playback snapshot, transport controls, queue,
//     shuffle, volume, seek, and the Liked Songs pair
//   - [TokenHandler] : token introspection (/gettoken, /debug), forced
//     renewal, and manual initialization
//   - [RootHandler] : the index document with the endpoint map
//
// Responses share one envelope: successes are the operation's payload with
// "success": true, failures are {"success": false, "error": ...} with the
// status derived from the shared error taxonomy (validation 400, missing
// auth 401, no device 404, provider backpressure 429 with a
// retry_after_seconds hint, upstream/storage trouble 502).
//
// # OAuth Callback Handler
//
// [OAuthHandler] receives the authorization-code redirect during account
// linking: state nonce validation, single-use callback, code exchange, and
// delivery of the resulting token over a channel to the waiting CLI flow.
package server
