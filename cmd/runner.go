package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spr/internal/auth"
	"github.com/desertthunder/spr/internal/services"
	"github.com/desertthunder/spr/internal/shared"
	"github.com/desertthunder/spr/internal/storage"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The credential store, token manager, and playback client are built lazily
// from config on first use, so commands that never touch Spotify (setup,
// remote queries) work without credentials being present.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer

	store     storage.Store
	storeDesc string
	manager   *auth.Manager
	player    *services.Player
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      storage.Store
	Manager    *auth.Manager
	Player     *services.Player
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	storeDesc := ""
	if opts.Store != nil {
		storeDesc = "memory"
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
		storeDesc:  storeDesc,
		manager:    opts.Manager,
		player:     opts.Player,
	}
}

// buildStore resolves the credential store named by the configured backend.
//
// The store is memoized, so the serve loop and every auth command share one
// instance per process.
func (r *Runner) buildStore() (storage.Store, string, error) {
	if r.store != nil {
		return r.store, r.storeDesc, nil
	}

	cfg := r.config.Storage
	switch cfg.Backend {
	case "gist":
		store, err := storage.NewGistStore(storage.GistConfig{
			GistID:   cfg.GistID,
			Token:    cfg.GistToken,
			Filename: cfg.GistFilename,
		}, r.logger)
		if err != nil {
			return nil, "", err
		}
		r.store = store
		r.storeDesc = "gist:" + shared.Preview(cfg.GistID, 8)
	case "file":
		store, err := storage.NewFileStore(cfg.Path)
		if err != nil {
			return nil, "", err
		}
		r.store = store
		r.storeDesc = "file:" + cfg.Path
	default:
		return nil, "", fmt.Errorf("%w: unknown storage backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}

	return r.store, r.storeDesc, nil
}

// buildManager resolves the token manager on top of the configured store.
func (r *Runner) buildManager() (*auth.Manager, error) {
	if r.manager != nil {
		return r.manager, nil
	}

	store, _, err := r.buildStore()
	if err != nil {
		return nil, err
	}

	creds := r.config.Credentials.Spotify
	manager, err := auth.NewManager(auth.ManagerConfig{
		Store:        store,
		Exchanger:    auth.NewExchanger(auth.ExchangerConfig{Timeout: r.config.Auth.Timeout()}),
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Margin:       r.config.Auth.Margin(),
		Logger:       r.logger,
	})
	if err != nil {
		return nil, err
	}

	r.manager = manager
	return manager, nil
}

// buildPlayer resolves the playback client on top of the token manager.
func (r *Runner) buildPlayer() (*services.Player, error) {
	if r.player != nil {
		return r.player, nil
	}

	manager, err := r.buildManager()
	if err != nil {
		return nil, err
	}

	client, err := services.NewClient(services.ClientConfig{
		Tokens:    manager,
		Timeout:   r.config.Player.Timeout(),
		RateLimit: r.config.Player.RateLimit,
		Burst:     r.config.Player.Burst,
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}

	r.player = services.NewPlayer(client, r.logger)
	return r.player, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, tokenCommand, playerCommand, serveCommand, remoteCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
