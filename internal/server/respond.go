// JSON envelope writing and error-to-status mapping
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spr/internal/services"
	"github.com/desertthunder/spr/internal/shared"
)

// envelope is the uniform response body shape.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing useful left to send.
		return
	}
}

// writeError maps err into the uniform failure envelope. Provider-internal
// shapes never reach the caller; only the taxonomy does.
func writeError(w http.ResponseWriter, logger *log.Logger, r *http.Request, err error) {
	body := envelope{
		"success": false,
		"error":   err.Error(),
	}

	var limited *services.RateLimitError
	if errors.As(err, &limited) && limited.RetryAfter > 0 {
		body["retry_after_seconds"] = int(limited.RetryAfter.Seconds())
	}
	if errors.Is(err, shared.ErrReauthRequired) {
		body["reauth_required"] = true
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			"path", r.URL.Path,
			"status", status,
			"err", err,
			"request_id", RequestIDFrom(r.Context()))
	}

	writeJSON(w, status, body)
}

// statusFor translates the shared error taxonomy into HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrNoTrackPlaying):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrReauthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrNoActiveDevice):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, shared.ErrRefreshFailed),
		errors.Is(err, shared.ErrStorageFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
