package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/spr/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a starter configuration file from the embedded template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			r.writePlain("Config file already exists at %s, leaving it alone.\n", configPath)
			return nil
		}
		return fmt.Errorf("failed to create config file: %w", err)
	}

	r.logger.Info("config file created", "path", configPath)

	r.writePlain("✓ Created %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Add your Spotify client_id and client_secret under [credentials.spotify]\n")
	r.writePlain("2. Run 'spr auth login' to link your account\n")
	r.writePlain("3. Run 'spr serve' to control playback from other devices\n")

	return nil
}
