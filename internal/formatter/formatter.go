// package formatter renders playback, queue, and token snapshots for CLI output (plain text, Markdown, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/spr/internal/models"
)

// PlaybackText renders a now-playing snapshot as labeled lines. A nil state
// renders the idle message.
func PlaybackText(state *models.PlaybackState) ([]byte, error) {
	var buf bytes.Buffer

	if state == nil {
		buf.WriteString("Nothing playing.\n")
		return buf.Bytes(), nil
	}

	label := "Now playing"
	if !state.IsPlaying {
		label = "Paused"
	}
	buf.WriteString(fmt.Sprintf("%s: %s - %s\n", label, state.Artist, state.Track))

	if state.Album != "" {
		buf.WriteString(fmt.Sprintf("Album: %s\n", state.Album))
	}
	if state.Progress != "" {
		buf.WriteString(fmt.Sprintf("Progress: %s (%s%%)\n", state.Progress, formatPercent(state.ProgressPercent)))
	}
	if state.Device != "" {
		if state.VolumePercent != nil {
			buf.WriteString(fmt.Sprintf("Device: %s (volume %d%%)\n", state.Device, *state.VolumePercent))
		} else {
			buf.WriteString(fmt.Sprintf("Device: %s\n", state.Device))
		}
	}
	buf.WriteString(fmt.Sprintf("Shuffle: %s | Repeat: %s\n", onOff(state.ShuffleState), state.RepeatState))
	if state.IsLiked != nil {
		buf.WriteString(fmt.Sprintf("Liked: %s\n", yesNo(*state.IsLiked)))
	}

	return buf.Bytes(), nil
}

// PlaybackMarkdown renders a now-playing snapshot as Markdown.
func PlaybackMarkdown(state *models.PlaybackState) ([]byte, error) {
	var buf bytes.Buffer

	if state == nil {
		buf.WriteString("_Nothing playing._\n")
		return buf.Bytes(), nil
	}

	if state.IsPlaying {
		buf.WriteString("# Now Playing\n\n")
	} else {
		buf.WriteString("# Paused\n\n")
	}

	buf.WriteString(fmt.Sprintf("**Track**: %s\n", state.Track))
	buf.WriteString(fmt.Sprintf("**Artist**: %s\n", state.Artist))
	if state.Album != "" {
		buf.WriteString(fmt.Sprintf("**Album**: %s\n", state.Album))
	}
	if state.Progress != "" {
		buf.WriteString(fmt.Sprintf("**Progress**: %s\n", state.Progress))
	}
	if state.Device != "" {
		buf.WriteString(fmt.Sprintf("**Device**: %s\n", state.Device))
	}
	buf.WriteString(fmt.Sprintf("**Shuffle**: %s\n", onOff(state.ShuffleState)))
	buf.WriteString(fmt.Sprintf("**Repeat**: %s\n", state.RepeatState))
	if state.IsLiked != nil {
		buf.WriteString(fmt.Sprintf("**Liked**: %s\n", yesNo(*state.IsLiked)))
	}

	return buf.Bytes(), nil
}

// QueueText renders the play queue as a numbered list. Entry numbers are the
// queue's own jump indexes, so a rendered line can be fed straight back to
// the jump command.
func QueueText(queue *models.Queue) ([]byte, error) {
	var buf bytes.Buffer

	if queue.CurrentlyPlaying != nil {
		buf.WriteString(fmt.Sprintf("Now playing: %s - %s\n", queue.CurrentlyPlaying.Artist, queue.CurrentlyPlaying.Track))
	}
	buf.WriteString(fmt.Sprintf("Up next: %d tracks\n", queue.Total))

	if len(queue.UpNext) > 0 {
		buf.WriteString("\n")
	}
	for _, entry := range queue.UpNext {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", entry.Index, entry.Artist, entry.Track))
	}

	return buf.Bytes(), nil
}

// QueueMarkdown renders the play queue as Markdown.
func QueueMarkdown(queue *models.Queue) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Play Queue\n\n")

	if queue.CurrentlyPlaying != nil {
		buf.WriteString(fmt.Sprintf("**Now playing**: %s - %s\n", queue.CurrentlyPlaying.Artist, queue.CurrentlyPlaying.Track))
	}
	buf.WriteString(fmt.Sprintf("**Up next**: %d tracks\n", queue.Total))

	if len(queue.UpNext) > 0 {
		buf.WriteString("\n## Up Next\n\n")
	}
	for _, entry := range queue.UpNext {
		albumPart := ""
		if entry.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", entry.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", entry.Index, entry.Artist, entry.Track, albumPart))
	}

	return buf.Bytes(), nil
}

// QueueCSV renders the play queue as CSV with columns: Index, Track, Artist, Album, ID
func QueueCSV(queue *models.Queue) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "Track", "Artist", "Album", "ID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range queue.UpNext {
		record := []string{
			strconv.Itoa(entry.Index),
			entry.Track,
			entry.Artist,
			entry.Album,
			entry.ID,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// StatusText renders token health as labeled lines. Token values never
// appear in the output.
func StatusText(status *models.TokenStatus, state string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("State: %s\n", state))
	if status == nil {
		buf.WriteString("No credentials stored.\n")
		return buf.Bytes(), nil
	}

	remaining := time.Duration(status.ExpiresIn) * time.Second
	if remaining >= 0 {
		buf.WriteString(fmt.Sprintf("Expires in: %s\n", remaining))
	} else {
		buf.WriteString(fmt.Sprintf("Expired: %s ago\n", -remaining))
	}

	if status.HasRefresh {
		buf.WriteString("Refresh token: stored\n")
	} else {
		buf.WriteString("Refresh token: missing\n")
	}

	return buf.Bytes(), nil
}

// WriteQueueCSV writes the CSV rendering of the queue to a file.
//
// Defaults to queue.csv as the filename and returns the path written.
func WriteQueueCSV(queue *models.Queue, filepath string) (string, error) {
	if filepath == "" {
		filepath = "queue.csv"
	}

	csvData, err := QueueCSV(queue)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

func formatPercent(percent float64) string {
	return strconv.FormatFloat(percent, 'f', -1, 64)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func yesNo(yes bool) string {
	if yes {
		return "yes"
	}
	return "no"
}
