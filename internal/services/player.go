// Playback operations over the authenticated client
package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spr/internal/models"
	"github.com/desertthunder/spr/internal/shared"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyDevice represents the active playback device.
type SpotifyDevice struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	VolumePercent *int   `json:"volume_percent"`
}

// SpotifyContext represents the playback context (album, playlist, ...).
type SpotifyContext struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// SpotifyPlayback represents the current-playback response. Item and Context
// are pointers: the provider omits them in several normal states.
type SpotifyPlayback struct {
	Device       SpotifyDevice   `json:"device"`
	ShuffleState bool            `json:"shuffle_state"`
	RepeatState  string          `json:"repeat_state"`
	ProgressMS   int             `json:"progress_ms"`
	IsPlaying    bool            `json:"is_playing"`
	Item         *SpotifyTrack   `json:"item"`
	Context      *SpotifyContext `json:"context"`
}

// SpotifyQueue represents the player-queue response.
type SpotifyQueue struct {
	CurrentlyPlaying *SpotifyTrack  `json:"currently_playing"`
	Queue            []SpotifyTrack `json:"queue"`
}

// Player exposes the playback control surface: each operation validates its
// inputs, issues the provider call through the authenticated [Client], and
// reshapes the response into the stable models types.
type Player struct {
	client *Client
	logger *log.Logger
}

// NewPlayer creates a playback proxy over client.
func NewPlayer(client *Client, logger *log.Logger) *Player {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Player{client: client, logger: logger}
}

// Current returns a snapshot of the active playback, or (nil, nil) when
// nothing is playing; idle is an expected state, not a failure.
func (p *Player) Current(ctx context.Context) (*models.PlaybackState, error) {
	var playback SpotifyPlayback
	status, err := p.client.Do(ctx, http.MethodGet, "/me/player", nil, nil, &playback)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || playback.Item == nil {
		return nil, nil
	}

	state := reshapePlayback(&playback)
	state.IsLiked = p.likedStatus(ctx, playback.Item.ID)
	return state, nil
}

// likedStatus checks whether the track is in Liked Songs. The flag is
// cosmetic, so a failed check degrades to unknown instead of failing the
// whole snapshot.
func (p *Player) likedStatus(ctx context.Context, trackID string) *bool {
	var contains []bool
	query := url.Values{"ids": {trackID}}

	if _, err := p.client.Do(ctx, http.MethodGet, "/me/tracks/contains", query, nil, &contains); err != nil || len(contains) == 0 {
		p.logger.Debug("liked check failed", "track_id", trackID, "err", err)
		return nil
	}
	return &contains[0]
}

// Play resumes playback on the active device.
func (p *Player) Play(ctx context.Context) error {
	_, err := p.client.Do(ctx, http.MethodPut, "/me/player/play", nil, nil, nil)
	return err
}

// Pause pauses playback on the active device.
func (p *Player) Pause(ctx context.Context) error {
	_, err := p.client.Do(ctx, http.MethodPut, "/me/player/pause", nil, nil, nil)
	return err
}

// Next skips to the next track.
func (p *Player) Next(ctx context.Context) error {
	_, err := p.client.Do(ctx, http.MethodPost, "/me/player/next", nil, nil, nil)
	return err
}

// Previous skips to the previous track.
func (p *Player) Previous(ctx context.Context) error {
	_, err := p.client.Do(ctx, http.MethodPost, "/me/player/previous", nil, nil, nil)
	return err
}

// Seek jumps to percent of the current track's duration and returns the
// resolved position in milliseconds. Percent outside [0,100] is rejected
// before any provider call.
func (p *Player) Seek(ctx context.Context, percent int) (int, error) {
	if percent < 0 || percent > 100 {
		return 0, fmt.Errorf("%w: seek percent must be between 0 and 100, got %d", shared.ErrInvalidInput, percent)
	}

	state, err := p.Current(ctx)
	if err != nil {
		return 0, err
	}
	if state == nil {
		return 0, fmt.Errorf("%w: nothing to seek within", shared.ErrNoTrackPlaying)
	}

	position := state.DurationMS * percent / 100
	query := url.Values{"position_ms": {strconv.Itoa(position)}}
	if _, err := p.client.Do(ctx, http.MethodPut, "/me/player/seek", query, nil, nil); err != nil {
		return 0, err
	}
	return position, nil
}

// SetVolume sets the active device's volume. Level outside [0,100] is
// rejected before any provider call.
func (p *Player) SetVolume(ctx context.Context, level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("%w: volume must be between 0 and 100, got %d", shared.ErrInvalidInput, level)
	}

	query := url.Values{"volume_percent": {strconv.Itoa(level)}}
	_, err := p.client.Do(ctx, http.MethodPut, "/me/player/volume", query, nil, nil)
	return err
}

// SetShuffle toggles shuffle on the active device.
func (p *Player) SetShuffle(ctx context.Context, enabled bool) error {
	query := url.Values{"state": {strconv.FormatBool(enabled)}}
	_, err := p.client.Do(ctx, http.MethodPut, "/me/player/shuffle", query, nil, nil)
	return err
}

// Like saves the currently playing track to Liked Songs and returns its id.
func (p *Player) Like(ctx context.Context) (string, error) {
	return p.setLiked(ctx, http.MethodPut)
}

// Unlike removes the currently playing track from Liked Songs and returns
// its id.
func (p *Player) Unlike(ctx context.Context) (string, error) {
	return p.setLiked(ctx, http.MethodDelete)
}

func (p *Player) setLiked(ctx context.Context, method string) (string, error) {
	var playback SpotifyPlayback
	status, err := p.client.Do(ctx, http.MethodGet, "/me/player", nil, nil, &playback)
	if err != nil {
		return "", err
	}
	if status == http.StatusNoContent || playback.Item == nil {
		return "", fmt.Errorf("%w: no track to update", shared.ErrNoTrackPlaying)
	}

	query := url.Values{"ids": {playback.Item.ID}}
	if _, err := p.client.Do(ctx, method, "/me/tracks", query, nil, nil); err != nil {
		return "", err
	}
	return playback.Item.ID, nil
}

// Queue returns the up-next list, truncated to [models.QueueLimit] entries
// indexed from 1, alongside the currently playing track.
func (p *Player) Queue(ctx context.Context) (*models.Queue, error) {
	queue, err := p.fetchQueue(ctx)
	if err != nil {
		return nil, err
	}

	result := &models.Queue{Success: true, UpNext: []models.QueueEntry{}}
	if queue.CurrentlyPlaying != nil {
		result.CurrentlyPlaying = reshapeTrack(queue.CurrentlyPlaying)
	}

	for i, track := range queue.Queue {
		if i == models.QueueLimit {
			break
		}
		result.UpNext = append(result.UpNext, models.QueueEntry{
			Index:      i + 1,
			QueueTrack: *reshapeTrack(&track),
		})
	}
	result.Total = len(result.UpNext)

	return result, nil
}

// PlayQueueItem starts playback at a queue position: index 0 is the
// currently playing track, 1..N the up-next entries as numbered by [Queue].
// When the playback context is known the jump stays inside it (so the queue
// keeps flowing afterwards); otherwise the remaining tracks are replayed as
// a one-off list. Returns the target track and whether a context was used.
func (p *Player) PlayQueueItem(ctx context.Context, index int) (*models.QueueTrack, bool, error) {
	if index < 0 {
		return nil, false, fmt.Errorf("%w: queue index must not be negative, got %d", shared.ErrInvalidInput, index)
	}

	queue, err := p.fetchQueue(ctx)
	if err != nil {
		return nil, false, err
	}
	if queue.CurrentlyPlaying == nil {
		return nil, false, fmt.Errorf("%w: queue positions are anchored to the playing track", shared.ErrNoTrackPlaying)
	}

	full := make([]SpotifyTrack, 0, len(queue.Queue)+1)
	full = append(full, *queue.CurrentlyPlaying)
	full = append(full, queue.Queue...)

	if index >= len(full) {
		return nil, false, fmt.Errorf("%w: queue index %d out of range, queue holds %d tracks", shared.ErrInvalidInput, index, len(full))
	}
	target := full[index]

	var playback SpotifyPlayback
	if _, err := p.client.Do(ctx, http.MethodGet, "/me/player", nil, nil, &playback); err != nil {
		return nil, false, err
	}

	body := map[string]any{}
	usedContext := playback.Context != nil && playback.Context.URI != ""
	if usedContext {
		body["context_uri"] = playback.Context.URI
		body["offset"] = map[string]string{"uri": target.URI}
	} else {
		uris := make([]string, 0, len(full)-index)
		for _, track := range full[index:] {
			uris = append(uris, track.URI)
		}
		body["uris"] = uris
	}

	if _, err := p.client.Do(ctx, http.MethodPut, "/me/player/play", nil, body, nil); err != nil {
		return nil, false, err
	}

	p.logger.Info("queue jump", "index", index, "track_id", target.ID, "context", usedContext)
	return reshapeTrack(&target), usedContext, nil
}

func (p *Player) fetchQueue(ctx context.Context) (*SpotifyQueue, error) {
	var queue SpotifyQueue
	if _, err := p.client.Do(ctx, http.MethodGet, "/me/player/queue", nil, nil, &queue); err != nil {
		return nil, err
	}
	return &queue, nil
}

// reshapePlayback flattens the provider's playback response into the stable
// snapshot shape. Callers guarantee playback.Item is non-nil.
func reshapePlayback(playback *SpotifyPlayback) *models.PlaybackState {
	item := playback.Item

	state := &models.PlaybackState{
		IsPlaying:     playback.IsPlaying,
		Track:         item.Name,
		Artist:        artistNames(item.Artists),
		Album:         item.Album.Name,
		Thumbnail:     thumbnail(item.Album.Images),
		DurationMS:    item.DurationMS,
		ProgressMS:    playback.ProgressMS,
		Device:        playback.Device.Name,
		VolumePercent: playback.Device.VolumePercent,
		ShuffleState:  playback.ShuffleState,
		RepeatState:   playback.RepeatState,
		TrackID:       item.ID,
	}

	if item.DurationMS > 0 {
		percent := float64(playback.ProgressMS) / float64(item.DurationMS) * 100
		state.ProgressPercent = math.Round(percent*100) / 100
	}
	if state.RepeatState == "" {
		state.RepeatState = "off"
	}
	state.Progress = fmt.Sprintf("%s / %s", formatTrackTime(playback.ProgressMS), formatTrackTime(item.DurationMS))

	return state
}

// reshapeTrack flattens a track into the queue entry shape.
func reshapeTrack(track *SpotifyTrack) *models.QueueTrack {
	return &models.QueueTrack{
		Track:     track.Name,
		Artist:    artistNames(track.Artists),
		Album:     track.Album.Name,
		Thumbnail: thumbnail(track.Album.Images),
		ID:        track.ID,
	}
}

// artistNames joins artist names the way the provider displays them.
func artistNames(artists []SpotifyArtist) string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}

// thumbnail prefers the mid-size album image, falling back to the largest
// and then to empty.
func thumbnail(images []SpotifyImage) string {
	switch {
	case len(images) > 1:
		return images[1].URL
	case len(images) == 1:
		return images[0].URL
	default:
		return ""
	}
}

// formatTrackTime renders milliseconds as MM:SS.
func formatTrackTime(ms int) string {
	totalSeconds := ms / 1000
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
