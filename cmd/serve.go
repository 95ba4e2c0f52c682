package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/spr/internal/server"
	"github.com/desertthunder/spr/internal/shared"
	"github.com/desertthunder/spr/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Serve assembles the HTTP remote and blocks until interrupted.
//
// The server exposes the playback routes, the token lifecycle routes, and a
// root route listing both, all behind the standard middleware stack. When
// auto_renew is configured, a background keepalive refreshes the stored
// token so the first phone tap after hours of idle does not pay for a
// refresh round-trip.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			r.config = loadedConfig
			r.configPath = configPath
		} else {
			r.logger.Warn("failed to load config, keeping current settings", "path", configPath, "error", err)
		}
	}

	host := r.config.Server.Host
	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	port := r.config.Server.Port
	if cmd.Int("port") != 0 {
		port = cmd.Int("port")
	}

	store, storeDesc, err := r.buildStore()
	if err != nil {
		return err
	}
	manager, err := r.buildManager()
	if err != nil {
		return err
	}
	player, err := r.buildPlayer()
	if err != nil {
		return err
	}

	router := server.NewBasicRouter()
	router.Use(server.RequestID(), server.RequestLogger(r.logger), server.Recover(r.logger))
	router.Handler(server.NewRootHandler(store, storeDesc))
	router.Handler(server.NewPlayerHandler(player, r.logger))
	router.Handler(server.NewTokenHandler(manager, store, storeDesc, r.logger))

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.CORS()(router),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if r.config.Auth.AutoRenew {
		refresher, err := tasks.NewRefresher(tasks.RefresherConfig{
			Tokens:   manager,
			Interval: r.config.Auth.RenewInterval(),
			Logger:   r.logger,
		})
		if err != nil {
			return err
		}
		go refresher.Run(ctx)
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", addr, "storage", storeDesc)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	r.writePlain("spr server listening on http://%s\n", addr)
	r.writePlain("Press Ctrl+C to stop.\n")

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}
