// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles first-run configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Prepare spr for first use",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a starter config.toml from the embedded template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles account linking and the stored token lifecycle.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Link a Spotify account and manage stored tokens",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify in the browser and store the token pair",
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the stored token state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// tokenCommand exposes the stored token lifecycle directly.
func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Inspect, renew, and seed the stored access token",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show the stored token state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "renew",
				Usage:  "Force a token refresh regardless of expiry",
				Action: r.AuthRenew,
			},
			{
				Name:  "init",
				Usage: "Store a token pair obtained outside the browser flow",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "access-token",
						Usage:    "Current access token",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "refresh-token",
						Usage:    "Long-lived refresh token",
						Required: true,
					},
				},
				Action: r.AuthInit,
			},
		},
	}
}

// playerCommand handles playback operations, either against Spotify directly
// or proxied through a running spr server with --server.
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "player",
		Aliases: []string{"p"},
		Usage:   "Inspect and control Spotify playback",
		Commands: []*cli.Command{
			{
				Name:  "current",
				Usage: "Show the currently playing track",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Base URL of a running spr server",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
					&cli.BoolFlag{
						Name:    "markdown",
						Aliases: []string{"md"},
						Usage:   "Render as Markdown",
					},
				},
				Action: r.PlayerCurrent,
			},
			{
				Name:  "play",
				Usage: "Resume playback",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Base URL of a running spr server",
					},
				},
				Action: r.PlayerPlay,
			},
			{
				Name:  "pause",
				Usage: "Pause playback",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Base URL of a running spr server",
					},
				},
				Action: r.PlayerPause,
			},
			{
				Name:  "next",
				Usage: "Skip to the next track",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Base URL of a running spr server",
					},
				},
				Action: r.PlayerNext,
			},
			{
				Name:  "prev",
				Usage: "Return to the previous track",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Base URL of a running spr server",
					},
				},
				Action: r.PlayerPrevious,
			},
			{
				Name:  "like",
				Usage: "Save the current track to your library",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Base URL of a running spr server",
					},
				},
				Action: r.PlayerLike,
			},
			{
				Name:    "unlike",
				Aliases: []string{"dislike"},
				Usage:   "Remove the current track from your library",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Base URL of a running spr server",
					},
				},
				Action: r.PlayerUnlike,
			},
			{
				Name:  "queue",
				Usage: "Show upcoming tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Base URL of a running spr server",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
					&cli.BoolFlag{
						Name:    "markdown",
						Aliases: []string{"md"},
						Usage:   "Render as Markdown",
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Write the queue to a CSV file at the given path",
					},
				},
				Action: r.PlayerQueue,
			},
			{
				Name:  "jump",
				Usage: "Play a queue entry by its number from 'spr player queue'",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "index"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Base URL of a running spr server",
					},
				},
				Action: r.PlayerJump,
			},
			{
				Name:  "shuffle",
				Usage: "Set shuffle to true or false",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "state"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Base URL of a running spr server",
					},
				},
				Action: r.PlayerShuffle,
			},
			{
				Name:  "volume",
				Usage: "Set playback volume (0-100)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "level"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Base URL of a running spr server",
					},
				},
				Action: r.PlayerVolume,
			},
			{
				Name:  "seek",
				Usage: "Seek to a position in the current track (percent, 0-100)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "percent"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server",
						Aliases: []string{"s"},
						Usage:   "Base URL of a running spr server",
					},
				},
				Action: r.PlayerSeek,
			},
		},
	}
}

// serveCommand runs the HTTP remote.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the remote-control HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Bind address, overrides config",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port, overrides config",
			},
		},
		Action: r.Serve,
	}
}

// remoteCommand talks to a running spr server's HTTP surface directly.
func remoteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "Query a running spr server",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to a server route, prints the JSON envelope",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "server",
						Aliases:  []string{"s"},
						Usage:    "Base URL of a running spr server",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.RemoteGet,
			},
			{
				Name:  "status",
				Usage: "Check that a server is reachable and list its routes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "server",
						Aliases:  []string{"s"},
						Usage:    "Base URL of a running spr server",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.RemoteStatus,
			},
		},
	}
}
