// Package models defines the stable response shapes for the spr remote control service.
//
// Provider responses are reshaped into these types at the services boundary so
// that HTTP handlers, the CLI, and formatters never see Spotify's wire format.
//
// Shapes:
//   - [PlaybackState] : Full now-playing snapshot for an active player
//   - [NoPlayback] : Distinct variant for the no-active-playback state
//   - [Queue] / [QueueEntry] / [QueueTrack] : Play-queue snapshot with 1-based display indexes
//   - [TokenStatus] : Redacted credential health for introspection endpoints
//
// The two current-playback variants are intentionally separate types: a paused
// but active device yields a [PlaybackState] with IsPlaying=false, while an
// absent device yields [NoPlayback] with its fixed message.
package models
