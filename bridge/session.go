package bridge

import (
	"context"
)

// Status mirrors the playback status reported by the OS media subsystem.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusOther   Status = "other"
)

// MediaProperties is the now-playing metadata exposed by a session.
// Thumbnail is passed through from the session but is not surfaced yet.
type MediaProperties struct {
	Title     string
	Artist    string
	Album     string
	Thumbnail string
}

// Timeline carries raw end time and position values exactly as the session
// reported them. They are converted with Millis, which never fails.
type Timeline struct {
	EndTime  any
	Position any
}

// Session is a borrowed handle to one application's media control session.
// Implementations must not be cached beyond a single request, only their ID.
type Session interface {
	ID() string
	PlaybackStatus(ctx context.Context) (Status, error)
	MediaProperties(ctx context.Context) (MediaProperties, error)
	Timeline(ctx context.Context) (Timeline, error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	SkipNext(ctx context.Context) error
	SkipPrevious(ctx context.Context) error
}

// SessionManager returns the session the OS considers current. A nil Session
// with a nil error means nothing is playing anywhere.
type SessionManager interface {
	CurrentSession(ctx context.Context) (Session, error)
}

type Direction string

const (
	DirectionNext     Direction = "next"
	DirectionPrevious Direction = "previous"
)
