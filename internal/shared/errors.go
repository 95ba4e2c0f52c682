package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Token lifecycle errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrReauthRequired   = fmt.Errorf("reauthorization required")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and playback errors
	ErrAPIRequest     = fmt.Errorf("API request failed")
	ErrNoActiveDevice = fmt.Errorf("no active playback device")
	ErrNoTrackPlaying = fmt.Errorf("no track playing")
	ErrRateLimited    = fmt.Errorf("rate limited by upstream")

	// Credential storage errors
	ErrStorageFailed = fmt.Errorf("credential storage failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
