// package server contains the HTTP surface of the playback remote
package server

import (
	"net/http"
)

// Middleware wraps an http.Handler and returns a new http.Handler with
// additional behavior: request ids, logging, panic recovery, CORS.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows its own route patterns, so route
// definitions live next to the code serving them.
type Handler interface {
	http.Handler
	Routes() []string // method-qualified patterns, e.g. "GET /queue/{index}"
}

// Router registers handlers and applies middleware.
type Router interface {
	Use(middleware ...Middleware)                     // appends to the middleware stack
	Handle(method, path string, handler http.Handler) // registers one route
	Handler(handler Handler)                          // registers every route a Handler declares
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}
