package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/desertthunder/spr/internal/models"
	"github.com/desertthunder/spr/internal/shared"
)

const playbackJSON = `{
  "device": {"id": "d1", "name": "Kitchen Speaker", "volume_percent": 65},
  "shuffle_state": true,
  "repeat_state": "context",
  "progress_ms": 30000,
  "is_playing": true,
  "context": {"type": "playlist", "uri": "spotify:playlist:pl1"},
  "item": {
    "id": "t1",
    "name": "Harvest Moon",
    "uri": "spotify:track:t1",
    "duration_ms": 120000,
    "artists": [{"id": "a1", "name": "Neil Young"}],
    "album": {
      "id": "al1",
      "name": "Harvest Moon",
      "images": [
        {"url": "https://img/large", "height": 640, "width": 640},
        {"url": "https://img/medium", "height": 300, "width": 300},
        {"url": "https://img/small", "height": 64, "width": 64}
      ]
    }
  }
}`

// fakeSpotify serves the handful of Web API endpoints the player touches
// from canned bodies, recording every request it sees.
type fakeSpotify struct {
	mu sync.Mutex

	playback string // "" answers 204
	queue    string
	contains string

	requests []string
	queries  map[string]url.Values
	playBody map[string]any
}

func (f *fakeSpotify) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		if f.queries == nil {
			f.queries = map[string]url.Values{}
		}
		f.queries[r.URL.Path] = r.URL.Query()

		switch {
		case r.URL.Path == "/me/player" && r.Method == http.MethodGet:
			if f.playback == "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, f.playback)
		case r.URL.Path == "/me/player/queue":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, f.queue)
		case r.URL.Path == "/me/tracks/contains":
			if f.contains == "" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, f.contains)
		case r.URL.Path == "/me/player/play":
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				f.playBody = body
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func (f *fakeSpotify) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeSpotify) query(path, key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[path].Get(key)
}

func newTestPlayer(t *testing.T, fake *fakeSpotify) *Player {
	t.Helper()

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL, StaticTokenSource("BQD_token"))
	return NewPlayer(client, shared.NewLogger(io.Discard))
}

func wireTrack(id, name string, artists ...string) SpotifyTrack {
	track := SpotifyTrack{
		ID:         id,
		Name:       name,
		URI:        "spotify:track:" + id,
		DurationMS: 180000,
		Album:      SpotifyAlbum{Name: name + " LP"},
	}
	for i, artist := range artists {
		track.Artists = append(track.Artists, SpotifyArtist{ID: id + "a" + string(rune('0'+i)), Name: artist})
	}
	return track
}

func queueJSON(t *testing.T, current *SpotifyTrack, upNext ...SpotifyTrack) string {
	t.Helper()

	data, err := json.Marshal(SpotifyQueue{CurrentlyPlaying: current, Queue: upNext})
	if err != nil {
		t.Fatalf("failed to build queue fixture: %v", err)
	}
	return string(data)
}

func TestPlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("current reshapes the playback snapshot", func(t *testing.T) {
		fake := &fakeSpotify{playback: playbackJSON, contains: `[true]`}
		player := newTestPlayer(t, fake)

		state, err := player.Current(ctx)
		if err != nil {
			t.Fatalf("failed to fetch current: %v", err)
		}
		if state == nil {
			t.Fatal("expected an active snapshot")
		}

		if state.Track != "Harvest Moon" || state.Artist != "Neil Young" || state.Album != "Harvest Moon" {
			t.Errorf("unexpected track fields %+v", state)
		}
		if state.Thumbnail != "https://img/medium" {
			t.Errorf("expected mid-size thumbnail, got %s", state.Thumbnail)
		}
		if state.Progress != "00:30 / 02:00" {
			t.Errorf("expected progress 00:30 / 02:00, got %s", state.Progress)
		}
		if state.ProgressPercent != 25 {
			t.Errorf("expected progress percent 25, got %v", state.ProgressPercent)
		}
		if state.Device != "Kitchen Speaker" || state.VolumePercent == nil || *state.VolumePercent != 65 {
			t.Errorf("unexpected device fields %+v", state)
		}
		if !state.ShuffleState || state.RepeatState != "context" || state.TrackID != "t1" {
			t.Errorf("unexpected flags %+v", state)
		}
		if state.IsLiked == nil || !*state.IsLiked {
			t.Errorf("expected liked track, got %v", state.IsLiked)
		}
	})

	t.Run("no active playback is a nil snapshot", func(t *testing.T) {
		player := newTestPlayer(t, &fakeSpotify{})

		state, err := player.Current(ctx)
		if err != nil {
			t.Fatalf("expected no error for idle player, got %v", err)
		}
		if state != nil {
			t.Errorf("expected nil snapshot, got %+v", state)
		}
	})

	t.Run("failed liked check degrades to unknown", func(t *testing.T) {
		fake := &fakeSpotify{playback: playbackJSON}
		player := newTestPlayer(t, fake)

		state, err := player.Current(ctx)
		if err != nil {
			t.Fatalf("failed to fetch current: %v", err)
		}
		if state.IsLiked != nil {
			t.Errorf("expected unknown liked state, got %v", *state.IsLiked)
		}
	})

	t.Run("seek validates percent before any call", func(t *testing.T) {
		fake := &fakeSpotify{playback: playbackJSON}
		player := newTestPlayer(t, fake)

		for _, percent := range []int{-1, 101} {
			if _, err := player.Seek(ctx, percent); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for %d, got %v", percent, err)
			}
		}
		if n := fake.requestCount(); n != 0 {
			t.Errorf("expected no provider calls, got %d", n)
		}
	})

	t.Run("seek resolves percent against the track duration", func(t *testing.T) {
		fake := &fakeSpotify{playback: playbackJSON, contains: `[true]`}
		player := newTestPlayer(t, fake)

		position, err := player.Seek(ctx, 50)
		if err != nil {
			t.Fatalf("failed to seek: %v", err)
		}
		if position != 60000 {
			t.Errorf("expected position 60000, got %d", position)
		}
		if got := fake.query("/me/player/seek", "position_ms"); got != "60000" {
			t.Errorf("expected position_ms 60000, got %q", got)
		}
	})

	t.Run("seek with nothing playing", func(t *testing.T) {
		player := newTestPlayer(t, &fakeSpotify{})

		if _, err := player.Seek(ctx, 50); !errors.Is(err, shared.ErrNoTrackPlaying) {
			t.Errorf("expected ErrNoTrackPlaying, got %v", err)
		}
	})

	t.Run("volume validates level before any call", func(t *testing.T) {
		fake := &fakeSpotify{}
		player := newTestPlayer(t, fake)

		if err := player.SetVolume(ctx, 150); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if n := fake.requestCount(); n != 0 {
			t.Errorf("expected no provider calls, got %d", n)
		}

		if err := player.SetVolume(ctx, 30); err != nil {
			t.Fatalf("failed to set volume: %v", err)
		}
		if got := fake.query("/me/player/volume", "volume_percent"); got != "30" {
			t.Errorf("expected volume_percent 30, got %q", got)
		}
	})

	t.Run("shuffle sends the state flag", func(t *testing.T) {
		fake := &fakeSpotify{}
		player := newTestPlayer(t, fake)

		if err := player.SetShuffle(ctx, true); err != nil {
			t.Fatalf("failed to set shuffle: %v", err)
		}
		if got := fake.query("/me/player/shuffle", "state"); got != "true" {
			t.Errorf("expected state true, got %q", got)
		}
	})

	t.Run("like targets the playing track", func(t *testing.T) {
		fake := &fakeSpotify{playback: playbackJSON}
		player := newTestPlayer(t, fake)

		trackID, err := player.Like(ctx)
		if err != nil {
			t.Fatalf("failed to like: %v", err)
		}
		if trackID != "t1" {
			t.Errorf("expected track t1, got %s", trackID)
		}
		if got := fake.query("/me/tracks", "ids"); got != "t1" {
			t.Errorf("expected ids t1, got %q", got)
		}
	})

	t.Run("like with nothing playing", func(t *testing.T) {
		player := newTestPlayer(t, &fakeSpotify{})

		if _, err := player.Like(ctx); !errors.Is(err, shared.ErrNoTrackPlaying) {
			t.Errorf("expected ErrNoTrackPlaying, got %v", err)
		}
	})

	t.Run("queue numbers entries from one", func(t *testing.T) {
		current := wireTrack("c0", "Playing Now", "Current Artist")
		fake := &fakeSpotify{queue: queueJSON(t, &current,
			wireTrack("q1", "First Up", "Artist A"),
			wireTrack("q2", "Second Up", "Artist B", "Artist C"),
		)}
		player := newTestPlayer(t, fake)

		queue, err := player.Queue(ctx)
		if err != nil {
			t.Fatalf("failed to fetch queue: %v", err)
		}

		if queue.CurrentlyPlaying == nil || queue.CurrentlyPlaying.ID != "c0" {
			t.Errorf("unexpected currently playing %+v", queue.CurrentlyPlaying)
		}
		if queue.Total != 2 || len(queue.UpNext) != 2 {
			t.Fatalf("expected two entries, got %+v", queue)
		}
		if queue.UpNext[0].Index != 1 || queue.UpNext[0].ID != "q1" {
			t.Errorf("unexpected first entry %+v", queue.UpNext[0])
		}
		if queue.UpNext[1].Index != 2 || queue.UpNext[1].Artist != "Artist B, Artist C" {
			t.Errorf("unexpected second entry %+v", queue.UpNext[1])
		}
	})

	t.Run("queue truncates to the display limit", func(t *testing.T) {
		current := wireTrack("c0", "Playing Now", "Artist")
		upNext := make([]SpotifyTrack, 0, models.QueueLimit+5)
		for i := 0; i < models.QueueLimit+5; i++ {
			upNext = append(upNext, wireTrack("q"+string(rune('a'+i)), "Track", "Artist"))
		}

		fake := &fakeSpotify{queue: queueJSON(t, &current, upNext...)}
		player := newTestPlayer(t, fake)

		queue, err := player.Queue(ctx)
		if err != nil {
			t.Fatalf("failed to fetch queue: %v", err)
		}
		if queue.Total != models.QueueLimit || len(queue.UpNext) != models.QueueLimit {
			t.Errorf("expected %d entries, got %d", models.QueueLimit, queue.Total)
		}
	})

	t.Run("queue jump keeps the playback context", func(t *testing.T) {
		current := wireTrack("c0", "Playing Now", "Artist")
		fake := &fakeSpotify{
			playback: playbackJSON,
			queue: queueJSON(t, &current,
				wireTrack("q1", "First Up", "Artist A"),
				wireTrack("q2", "Second Up", "Artist B"),
			),
		}
		player := newTestPlayer(t, fake)

		track, usedContext, err := player.PlayQueueItem(ctx, 2)
		if err != nil {
			t.Fatalf("failed to jump queue: %v", err)
		}
		if track.ID != "q2" {
			t.Errorf("expected target q2, got %s", track.ID)
		}
		if !usedContext {
			t.Error("expected the playback context to be used")
		}

		if fake.playBody["context_uri"] != "spotify:playlist:pl1" {
			t.Errorf("unexpected play body %+v", fake.playBody)
		}
		offset, ok := fake.playBody["offset"].(map[string]any)
		if !ok || offset["uri"] != "spotify:track:q2" {
			t.Errorf("unexpected offset %+v", fake.playBody["offset"])
		}
	})

	t.Run("queue jump without a context replays the tail", func(t *testing.T) {
		current := wireTrack("c0", "Playing Now", "Artist")
		playback, err := json.Marshal(SpotifyPlayback{IsPlaying: true, Item: &current})
		if err != nil {
			t.Fatalf("failed to build playback fixture: %v", err)
		}

		fake := &fakeSpotify{
			playback: string(playback),
			queue: queueJSON(t, &current,
				wireTrack("q1", "First Up", "Artist A"),
				wireTrack("q2", "Second Up", "Artist B"),
				wireTrack("q3", "Third Up", "Artist C"),
			),
		}
		player := newTestPlayer(t, fake)

		track, usedContext, err := player.PlayQueueItem(ctx, 2)
		if err != nil {
			t.Fatalf("failed to jump queue: %v", err)
		}
		if track.ID != "q2" || usedContext {
			t.Errorf("expected one-off replay of q2, got %s context=%v", track.ID, usedContext)
		}

		uris, ok := fake.playBody["uris"].([]any)
		if !ok || len(uris) != 2 {
			t.Fatalf("expected two uris, got %+v", fake.playBody["uris"])
		}
		if uris[0] != "spotify:track:q2" || uris[1] != "spotify:track:q3" {
			t.Errorf("unexpected uris %v", uris)
		}
	})

	t.Run("queue jump bounds", func(t *testing.T) {
		current := wireTrack("c0", "Playing Now", "Artist")
		fake := &fakeSpotify{queue: queueJSON(t, &current, wireTrack("q1", "First Up", "Artist A"))}
		player := newTestPlayer(t, fake)

		if _, _, err := player.PlayQueueItem(ctx, 5); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}

		before := fake.requestCount()
		if _, _, err := player.PlayQueueItem(ctx, -1); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if fake.requestCount() != before {
			t.Error("expected negative index rejected before any call")
		}
	})

	t.Run("queue jump with nothing playing", func(t *testing.T) {
		fake := &fakeSpotify{queue: queueJSON(t, nil, wireTrack("q1", "First Up", "Artist A"))}
		player := newTestPlayer(t, fake)

		if _, _, err := player.PlayQueueItem(ctx, 0); !errors.Is(err, shared.ErrNoTrackPlaying) {
			t.Errorf("expected ErrNoTrackPlaying, got %v", err)
		}
	})
}
