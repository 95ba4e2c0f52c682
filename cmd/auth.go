package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/spr/internal/auth"
	"github.com/desertthunder/spr/internal/formatter"
	"github.com/desertthunder/spr/internal/models"
	"github.com/desertthunder/spr/internal/server"
	"github.com/desertthunder/spr/internal/services"
	"github.com/desertthunder/spr/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// stores the exchanged token pair in the configured backend.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingConfig)
	}

	manager, err := r.buildManager()
	if err != nil {
		return err
	}

	token, err := r.doOAuth()
	if err != nil {
		return err
	}

	if err := manager.Adopt(ctx, token); err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}

	_, storeDesc, err := r.buildStore()
	if err != nil {
		return err
	}

	r.writePlainln("✓ Account linked")
	r.writePlain("✓ Tokens saved to %s\n\n", storeDesc)
	r.writePlain("You can now run: spr serve\n")
	return nil
}

// AuthStatus reports the stored token state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.buildManager()
	if err != nil {
		return err
	}

	state, err := manager.State(ctx)
	if err != nil {
		return err
	}
	status, err := manager.Status(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"state": state, "status": status}, cmd.Bool("pretty"))
	}

	var snapshot *models.TokenStatus
	if state != auth.StateUninitialized {
		snapshot = status
	}

	data, err := formatter.StatusText(snapshot, string(state))
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

// AuthRenew forces a refresh exchange regardless of how much lifetime the
// stored access token has left.
func (r *Runner) AuthRenew(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.buildManager()
	if err != nil {
		return err
	}

	if _, err := manager.ForceRenew(ctx); err != nil {
		return err
	}

	status, err := manager.Status(ctx)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Token renewed (expires in %ds)\n", status.ExpiresIn)
}

// AuthInit stores a token pair obtained outside the browser flow, for
// headless machines that cannot run one.
func (r *Runner) AuthInit(ctx context.Context, cmd *cli.Command) error {
	manager, err := r.buildManager()
	if err != nil {
		return err
	}

	if err := manager.Initialize(ctx, cmd.String("access-token"), cmd.String("refresh-token")); err != nil {
		return err
	}

	r.writePlainln("✓ Tokens linked")
	return r.writePlain("The access token renews automatically as it expires.\n")
}

// doOAuth runs one authorization round trip: serve the callback route,
// send the user to the consent URL, wait for the exchanged token.
func (r *Runner) doOAuth() (*oauth2.Token, error) {
	creds := r.config.Credentials.Spotify

	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	oauthConfig := services.OAuthConfig(creds.ClientID, creds.ClientSecret, creds.RedirectURI)
	authURL := services.AuthCodeURL(oauthConfig, state)
	oauthHandler := server.NewOAuthHandler(oauthConfig, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}
