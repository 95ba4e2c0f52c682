// OAuth2 authorization-code callback handling for the account link flow
package server

import (
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// OAuthResult is the outcome of one authorization flow: a token or the
// reason the flow failed.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler receives the provider's authorization-code callback during
// account linking. Implements [Handler] for registration with a [Router].
//
// The handler processes exactly one callback: the state nonce is validated
// against the value baked into the consent URL, the code is exchanged for a
// token pair, and the result is delivered through [OAuthHandler.Result].
// Replays after the first callback are rejected.
type OAuthHandler struct {
	config *oauth2.Config
	state  string

	resultChan chan OAuthResult
	once       sync.Once

	mu       sync.Mutex
	consumed bool
}

// NewOAuthHandler creates a callback handler expecting the given state
// nonce. The nonce must be cryptographically random; it is the only thing
// tying the callback to the consent URL this process opened.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:     config,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"GET /callback"}
}

// ServeHTTP handles the provider redirect.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.consumed {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.consumed = true
	h.mu.Unlock()

	token, err := h.exchange(r)
	if err != nil {
		h.send(OAuthResult{err: err})
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, linkSuccessPage)
}

// exchange validates the callback parameters and trades the code for tokens.
func (h *OAuthHandler) exchange(r *http.Request) (*oauth2.Token, error) {
	query := r.URL.Query()

	if query.Get("state") != h.state {
		return nil, fmt.Errorf("state mismatch, rejecting callback")
	}

	code := query.Get("code")
	if code == "" {
		return nil, fmt.Errorf("authorization refused: %s (%s)",
			query.Get("error"), query.Get("error_description"))
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return token, nil
}

// send delivers the result exactly once.
func (h *OAuthHandler) send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel the flow outcome arrives on. It receives
// exactly one value and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

const linkSuccessPage = `<!DOCTYPE html>
<html>
<head>
    <title>Account Linked</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Spotify Account Linked</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
