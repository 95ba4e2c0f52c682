// Route handlers for the playback remote API
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spr/internal/auth"
	"github.com/desertthunder/spr/internal/models"
	"github.com/desertthunder/spr/internal/shared"
	"github.com/desertthunder/spr/internal/storage"
)

// PlaybackController is the slice of the playback proxy the HTTP layer
// drives; satisfied by [services.Player].
type PlaybackController interface {
	Current(ctx context.Context) (*models.PlaybackState, error)
	Queue(ctx context.Context) (*models.Queue, error)
	PlayQueueItem(ctx context.Context, index int) (*models.QueueTrack, bool, error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(ctx context.Context, percent int) (int, error)
	SetVolume(ctx context.Context, level int) error
	SetShuffle(ctx context.Context, enabled bool) error
	Like(ctx context.Context) (string, error)
	Unlike(ctx context.Context) (string, error)
}

// TokenManager is the slice of the token manager the HTTP layer drives;
// satisfied by [auth.Manager].
type TokenManager interface {
	EnsureValid(ctx context.Context) (string, error)
	ForceRenew(ctx context.Context) (string, error)
	Status(ctx context.Context) (*models.TokenStatus, error)
	State(ctx context.Context) (auth.State, error)
	Initialize(ctx context.Context, accessToken, refreshToken string) error
}

// PlayerHandler serves the playback control routes.
type PlayerHandler struct {
	player PlaybackController
	logger *log.Logger
}

// NewPlayerHandler creates the playback control handler.
func NewPlayerHandler(player PlaybackController, logger *log.Logger) *PlayerHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlayerHandler{player: player, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *PlayerHandler) Routes() []string {
	return []string{
		"GET /current",
		"GET /play",
		"GET /pause",
		"GET /next",
		"GET /prev",
		"GET /like",
		"GET /dislike",
		"GET /queue",
		"GET /queue/{index}",
		"GET /shuffle/{state}",
		"GET /volume/{level}",
		"GET /seek/{percent}",
	}
}

// ServeHTTP dispatches on the matched route pattern.
func (h *PlayerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case "GET /current":
		h.current(w, r)
	case "GET /play":
		h.control(w, r, "play", h.player.Play)
	case "GET /pause":
		h.control(w, r, "pause", h.player.Pause)
	case "GET /next":
		h.control(w, r, "next", h.player.Next)
	case "GET /prev":
		h.control(w, r, "previous", h.player.Previous)
	case "GET /like":
		h.liked(w, r, "liked", h.player.Like)
	case "GET /dislike":
		h.liked(w, r, "disliked", h.player.Unlike)
	case "GET /queue":
		h.queue(w, r)
	case "GET /queue/{index}":
		h.queueJump(w, r)
	case "GET /shuffle/{state}":
		h.shuffle(w, r)
	case "GET /volume/{level}":
		h.volume(w, r)
	case "GET /seek/{percent}":
		h.seek(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *PlayerHandler) current(w http.ResponseWriter, r *http.Request) {
	state, err := h.player.Current(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if state == nil {
		writeJSON(w, http.StatusOK, models.NewNoPlayback())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// control handles the fire-and-forget transport actions.
func (h *PlayerHandler) control(w http.ResponseWriter, r *http.Request, action string, op func(context.Context) error) {
	if err := op(r.Context()); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "action": action})
}

// liked handles the library save/remove pair.
func (h *PlayerHandler) liked(w http.ResponseWriter, r *http.Request, action string, op func(context.Context) (string, error)) {
	trackID, err := op(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "action": action, "track_id": trackID})
}

func (h *PlayerHandler) queue(w http.ResponseWriter, r *http.Request) {
	queue, err := h.player.Queue(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queue)
}

func (h *PlayerHandler) queueJump(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, h.logger, r, fmt.Errorf("%w: queue index must be a number", shared.ErrInvalidInput))
		return
	}

	track, usedContext, err := h.player.PlayQueueItem(r.Context(), index)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":      true,
		"message":      fmt.Sprintf("Now playing %s by %s", track.Track, track.Artist),
		"track_id":     track.ID,
		"used_context": usedContext,
	})
}

func (h *PlayerHandler) shuffle(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("state")
	if raw != "true" && raw != "false" {
		writeError(w, h.logger, r, fmt.Errorf("%w: shuffle state must be \"true\" or \"false\"", shared.ErrInvalidInput))
		return
	}
	enabled := raw == "true"

	if err := h.player.SetShuffle(r.Context(), enabled); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "shuffle_state": enabled})
}

func (h *PlayerHandler) volume(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(r.PathValue("level"))
	if err != nil {
		writeError(w, h.logger, r, fmt.Errorf("%w: volume level must be a number", shared.ErrInvalidInput))
		return
	}

	if err := h.player.SetVolume(r.Context(), level); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "volume_percent": level})
}

func (h *PlayerHandler) seek(w http.ResponseWriter, r *http.Request) {
	percent, err := strconv.Atoi(r.PathValue("percent"))
	if err != nil {
		writeError(w, h.logger, r, fmt.Errorf("%w: seek percent must be a number", shared.ErrInvalidInput))
		return
	}

	position, err := h.player.Seek(r.Context(), percent)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "percent": percent, "position_ms": position})
}

// TokenHandler serves the token introspection and manual-trigger routes.
type TokenHandler struct {
	manager TokenManager
	store   storage.Store

	// storageDesc is a redacted description of the credential backend,
	// safe to echo in debug output.
	storageDesc string
	logger      *log.Logger
}

// NewTokenHandler creates the token lifecycle handler.
func NewTokenHandler(manager TokenManager, store storage.Store, storageDesc string, logger *log.Logger) *TokenHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TokenHandler{manager: manager, store: store, storageDesc: storageDesc, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *TokenHandler) Routes() []string {
	return []string{
		"GET /gettoken",
		"GET /debug",
		"GET /force-renew",
		"POST /init",
	}
}

// ServeHTTP dispatches on the matched route pattern.
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case "GET /gettoken":
		h.token(w, r)
	case "GET /debug":
		h.debug(w, r)
	case "GET /force-renew":
		h.forceRenew(w, r)
	case "POST /init":
		h.initialize(w, r)
	default:
		http.NotFound(w, r)
	}
}

// token hands the frontend a usable access token so it can call the
// provider directly for anything the remote does not proxy.
func (h *TokenHandler) token(w http.ResponseWriter, r *http.Request) {
	accessToken, err := h.manager.EnsureValid(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	status, err := h.manager.Status(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":      true,
		"access_token": accessToken,
		"expires_in":   status.ExpiresIn,
	})
}

func (h *TokenHandler) forceRenew(w http.ResponseWriter, r *http.Request) {
	if _, err := h.manager.ForceRenew(r.Context()); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	status, err := h.manager.Status(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":    true,
		"message":    "Token renewed",
		"expires_in": status.ExpiresIn,
	})
}

// debug reports redacted token lifecycle details for troubleshooting a
// deployment. Token values are previewed, never echoed whole.
func (h *TokenHandler) debug(w http.ResponseWriter, r *http.Request) {
	state, err := h.manager.State(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	body := envelope{
		"success":   true,
		"state":     state,
		"storage":   h.storageDesc,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	rec, err := h.store.Load(r.Context())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		body["setup_required"] = true
	case err != nil:
		writeError(w, h.logger, r, err)
		return
	default:
		status, err := h.manager.Status(r.Context())
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}

		body["access_token_preview"] = shared.Preview(rec.AccessToken, 20)
		body["has_refresh_token"] = rec.RefreshToken != ""
		body["expires_at"] = rec.ExpiresAt
		body["expires_in_seconds"] = status.ExpiresIn
		body["is_expired"] = !status.Valid
	}

	writeJSON(w, http.StatusOK, body)
}

// initRequest is the manual-linking payload.
type initRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// initialize links the account from tokens obtained elsewhere (an OAuth
// playground, a previous deployment's storage document).
func (h *TokenHandler) initialize(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, r, fmt.Errorf("%w: request body must be JSON", shared.ErrInvalidInput))
		return
	}

	if err := h.manager.Initialize(r.Context(), req.AccessToken, req.RefreshToken); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	h.logger.Info("credentials initialized manually")
	writeJSON(w, http.StatusOK, envelope{
		"success":    true,
		"message":    "Token initialized",
		"expires_in": 3600,
	})
}

// RootHandler serves the index document: service status, storage backend,
// and the route map frontends discover the API from.
type RootHandler struct {
	storageDesc string
	store       storage.Store
}

// NewRootHandler creates the index handler.
func NewRootHandler(store storage.Store, storageDesc string) *RootHandler {
	return &RootHandler{store: store, storageDesc: storageDesc}
}

// Routes returns the HTTP routes this handler serves. The {$} pattern keeps
// the index from swallowing unmatched paths.
func (h *RootHandler) Routes() []string {
	return []string{"GET /{$}", "GET /health"}
}

func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Pattern == "GET /health" {
		h.health(w, r)
		return
	}
	h.index(w, r)
}

func (h *RootHandler) health(w http.ResponseWriter, r *http.Request) {
	authenticated := true
	if _, err := h.store.Load(r.Context()); err != nil {
		authenticated = false
	}
	writeJSON(w, http.StatusOK, envelope{"status": "ok", "authenticated": authenticated})
}

func (h *RootHandler) index(w http.ResponseWriter, r *http.Request) {
	setupRequired := false
	if _, err := h.store.Load(r.Context()); errors.Is(err, storage.ErrNotFound) {
		setupRequired = true
	}

	writeJSON(w, http.StatusOK, envelope{
		"status":  "ok",
		"service": "spr",
		"storage": h.storageDesc,
		"endpoints": map[string]string{
			"health":      "GET /health",
			"current":     "GET /current",
			"play":        "GET /play",
			"pause":       "GET /pause",
			"next":        "GET /next",
			"prev":        "GET /prev",
			"like":        "GET /like",
			"dislike":     "GET /dislike",
			"queue":       "GET /queue",
			"queue_jump":  "GET /queue/{index}",
			"shuffle":     "GET /shuffle/{state}",
			"volume":      "GET /volume/{level}",
			"seek":        "GET /seek/{percent}",
			"gettoken":    "GET /gettoken",
			"debug":       "GET /debug",
			"force_renew": "GET /force-renew",
			"init":        "POST /init",
		},
		"setup_required": setupRequired,
	})
}
