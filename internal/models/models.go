package models

// PlaybackState is the reshaped now-playing snapshot for an active player.
//
// IsPlaying is false while a device is active but paused; the inactive case is
// represented by [NoPlayback] instead.
type PlaybackState struct {
	IsPlaying       bool    `json:"is_playing"`
	Track           string  `json:"track"`
	Artist          string  `json:"artist"`
	Album           string  `json:"album"`
	Thumbnail       string  `json:"thumbnail"`
	DurationMS      int     `json:"duration_ms"`
	ProgressMS      int     `json:"progress_ms"`
	ProgressPercent float64 `json:"progress_percent"`
	Progress        string  `json:"progress"`
	Device          string  `json:"device"`
	VolumePercent   *int    `json:"volume_percent"`
	ShuffleState    bool    `json:"shuffle_state"`
	RepeatState     string  `json:"repeat_state"`
	TrackID         string  `json:"track_id"`
	IsLiked         *bool   `json:"is_liked,omitempty"`
}

// NoPlayback is the response variant served when the provider reports no
// active playback. It is a normal state, not an error.
type NoPlayback struct {
	IsPlaying bool   `json:"is_playing"`
	Message   string `json:"message"`
}

// NewNoPlayback returns the canonical no-active-playback response.
func NewNoPlayback() NoPlayback {
	return NoPlayback{IsPlaying: false, Message: "No active playback"}
}

// QueueTrack summarizes a single track in queue responses.
type QueueTrack struct {
	Track     string `json:"track"`
	Artist    string `json:"artist"`
	Album     string `json:"album"`
	Thumbnail string `json:"thumbnail"`
	ID        string `json:"id"`
}

// QueueEntry is an up-next track with its 1-based display index.
type QueueEntry struct {
	Index int `json:"index"`
	QueueTrack
}

// Queue is the reshaped play-queue snapshot.
//
// UpNext holds at most [QueueLimit] entries; CurrentlyPlaying is nil when the
// provider omits it.
type Queue struct {
	Success          bool         `json:"success"`
	CurrentlyPlaying *QueueTrack  `json:"currently_playing"`
	UpNext           []QueueEntry `json:"up_next"`
	Total            int          `json:"total"`
}

// QueueLimit caps the number of up-next entries returned to clients.
const QueueLimit = 20

// TokenStatus reports credential health without exposing token values.
//
// ExpiresIn is seconds until the stored expiry and is negative once past it.
type TokenStatus struct {
	Valid      bool  `json:"valid"`
	ExpiresIn  int64 `json:"expires_in"`
	HasRefresh bool  `json:"has_refresh"`
}
