package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/spr/internal/formatter"
	"github.com/desertthunder/spr/internal/models"
	"github.com/desertthunder/spr/internal/services"
	"github.com/desertthunder/spr/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlayerCurrent shows the currently playing track.
func (r *Runner) PlayerCurrent(ctx context.Context, cmd *cli.Command) error {
	if serverURL := cmd.String("server"); serverURL != "" {
		return r.remoteCall(ctx, serverURL, "/current", cmd.Bool("pretty"))
	}

	player, err := r.buildPlayer()
	if err != nil {
		return err
	}

	state, err := player.Current(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if state == nil {
			return r.writeJSON(models.NewNoPlayback(), cmd.Bool("pretty"))
		}
		return r.writeJSON(state, cmd.Bool("pretty"))
	}

	var data []byte
	if cmd.Bool("markdown") {
		data, err = formatter.PlaybackMarkdown(state)
	} else {
		data, err = formatter.PlaybackText(state)
	}
	if err != nil {
		return err
	}

	_, err = r.output.Write(data)
	return err
}

// control runs a transport action locally or against a running server.
func (r *Runner) control(ctx context.Context, cmd *cli.Command, path, done string, op func(*services.Player) error) error {
	if serverURL := cmd.String("server"); serverURL != "" {
		return r.remoteCall(ctx, serverURL, path, false)
	}

	player, err := r.buildPlayer()
	if err != nil {
		return err
	}

	if err := op(player); err != nil {
		return err
	}
	return r.writePlain("✓ %s\n", done)
}

// PlayerPlay resumes playback.
func (r *Runner) PlayerPlay(ctx context.Context, cmd *cli.Command) error {
	return r.control(ctx, cmd, "/play", "Playing", func(p *services.Player) error { return p.Play(ctx) })
}

// PlayerPause pauses playback.
func (r *Runner) PlayerPause(ctx context.Context, cmd *cli.Command) error {
	return r.control(ctx, cmd, "/pause", "Paused", func(p *services.Player) error { return p.Pause(ctx) })
}

// PlayerNext skips to the next track.
func (r *Runner) PlayerNext(ctx context.Context, cmd *cli.Command) error {
	return r.control(ctx, cmd, "/next", "Skipped to next track", func(p *services.Player) error { return p.Next(ctx) })
}

// PlayerPrevious returns to the previous track.
func (r *Runner) PlayerPrevious(ctx context.Context, cmd *cli.Command) error {
	return r.control(ctx, cmd, "/prev", "Returned to previous track", func(p *services.Player) error { return p.Previous(ctx) })
}

// PlayerLike saves the current track to the library.
func (r *Runner) PlayerLike(ctx context.Context, cmd *cli.Command) error {
	if serverURL := cmd.String("server"); serverURL != "" {
		return r.remoteCall(ctx, serverURL, "/like", false)
	}

	player, err := r.buildPlayer()
	if err != nil {
		return err
	}

	trackID, err := player.Like(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Liked %s\n", trackID)
}

// PlayerUnlike removes the current track from the library.
func (r *Runner) PlayerUnlike(ctx context.Context, cmd *cli.Command) error {
	if serverURL := cmd.String("server"); serverURL != "" {
		return r.remoteCall(ctx, serverURL, "/dislike", false)
	}

	player, err := r.buildPlayer()
	if err != nil {
		return err
	}

	trackID, err := player.Unlike(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s\n", trackID)
}

// PlayerQueue shows upcoming tracks, optionally exporting them to CSV.
func (r *Runner) PlayerQueue(ctx context.Context, cmd *cli.Command) error {
	if serverURL := cmd.String("server"); serverURL != "" {
		return r.remoteCall(ctx, serverURL, "/queue", cmd.Bool("pretty"))
	}

	player, err := r.buildPlayer()
	if err != nil {
		return err
	}

	queue, err := player.Queue(ctx)
	if err != nil {
		return err
	}

	if exportPath := cmd.String("export"); exportPath != "" {
		written, err := formatter.WriteQueueCSV(queue, exportPath)
		if err != nil {
			return err
		}
		r.logger.Info("queue exported", "file", written)
		return r.writePlain("✓ Queue exported to %s\n", written)
	}

	if cmd.Bool("json") {
		return r.writeJSON(queue, cmd.Bool("pretty"))
	}

	var data []byte
	if cmd.Bool("markdown") {
		data, err = formatter.QueueMarkdown(queue)
	} else {
		data, err = formatter.QueueText(queue)
	}
	if err != nil {
		return err
	}

	_, err = r.output.Write(data)
	return err
}

// PlayerJump plays a queue entry by the number shown in the queue listing.
func (r *Runner) PlayerJump(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: queue index must be a number, got %q", shared.ErrInvalidArgument, raw)
	}

	if serverURL := cmd.String("server"); serverURL != "" {
		return r.remoteCall(ctx, serverURL, fmt.Sprintf("/queue/%d", index), false)
	}

	player, err := r.buildPlayer()
	if err != nil {
		return err
	}

	track, _, err := player.PlayQueueItem(ctx, index)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Now playing %s by %s\n", track.Track, track.Artist)
}

// PlayerShuffle sets the shuffle state.
func (r *Runner) PlayerShuffle(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("state")
	if raw != "true" && raw != "false" {
		return fmt.Errorf("%w: shuffle state must be \"true\" or \"false\", got %q", shared.ErrInvalidArgument, raw)
	}
	enabled := raw == "true"

	if serverURL := cmd.String("server"); serverURL != "" {
		return r.remoteCall(ctx, serverURL, "/shuffle/"+raw, false)
	}

	player, err := r.buildPlayer()
	if err != nil {
		return err
	}

	if err := player.SetShuffle(ctx, enabled); err != nil {
		return err
	}
	if enabled {
		return r.writePlain("✓ Shuffle on\n")
	}
	return r.writePlain("✓ Shuffle off\n")
}

// PlayerVolume sets the playback volume.
func (r *Runner) PlayerVolume(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("level")
	level, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: volume level must be a number, got %q", shared.ErrInvalidArgument, raw)
	}

	if serverURL := cmd.String("server"); serverURL != "" {
		return r.remoteCall(ctx, serverURL, fmt.Sprintf("/volume/%d", level), false)
	}

	player, err := r.buildPlayer()
	if err != nil {
		return err
	}

	if err := player.SetVolume(ctx, level); err != nil {
		return err
	}
	return r.writePlain("✓ Volume %d%%\n", level)
}

// PlayerSeek seeks to a percentage position in the current track.
func (r *Runner) PlayerSeek(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("percent")
	percent, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: seek position must be a number, got %q", shared.ErrInvalidArgument, raw)
	}

	if serverURL := cmd.String("server"); serverURL != "" {
		return r.remoteCall(ctx, serverURL, fmt.Sprintf("/seek/%d", percent), false)
	}

	player, err := r.buildPlayer()
	if err != nil {
		return err
	}

	position, err := player.Seek(ctx, percent)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Seeked to %d%% (%dms)\n", percent, position)
}
