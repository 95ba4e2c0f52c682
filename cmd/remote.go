package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spr/internal/services"
	"github.com/desertthunder/spr/internal/shared"
	"github.com/urfave/cli/v3"
)

// remoteCall performs a GET against a running server and prints the
// envelope it answers with.
func (r *Runner) remoteCall(ctx context.Context, serverURL, path string, pretty bool) error {
	remote, err := services.NewRemoteClient(serverURL)
	if err != nil {
		return err
	}

	r.logger.Debug("calling remote server", "url", serverURL, "path", path)

	resp, err := remote.Get(ctx, path)
	if err != nil {
		return err
	}

	if !resp.Success() {
		return fmt.Errorf("%w: %s answered %d: %s", shared.ErrAPIRequest, path, resp.StatusCode, string(resp.Body))
	}

	if resp.JSON != nil {
		return r.writeJSON(resp.JSON, pretty)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// RemoteGet makes a direct GET request to a running server.
func (r *Runner) RemoteGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: a route path is required, e.g. /current", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return r.remoteCall(ctx, cmd.String("server"), path, cmd.Bool("pretty"))
}

// RemoteStatus checks that a server is reachable and lists its routes.
func (r *Runner) RemoteStatus(ctx context.Context, cmd *cli.Command) error {
	return r.remoteCall(ctx, cmd.String("server"), "/", cmd.Bool("pretty"))
}
