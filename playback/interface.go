package playback

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus-crane/mediabridge/bridge"
	"github.com/marcus-crane/mediabridge/shared"
)

type System interface {
	UpdatePlaybackState(update Update) error
	RefreshCurrentPlayback() error
	GetActivePlayback() ([]FullPlaybackEntry, error)
	DeactivateAll() error
	GetHistory(limit int) ([]FullPlaybackEntry, error)
}

type Status string

const (
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
)

// PlaybackEntry is one continuous listen of a track. Pausing and resuming the
// same track keeps the entry alive; switching tracks or apps closes it.
type PlaybackEntry struct {
	ID        int       `db:"id"`
	MediaID   string    `db:"media_id"`
	Category  string    `db:"category"`
	CreatedAt time.Time `db:"created_at"`
	Elapsed   int       `db:"elapsed"` // milliseconds
	Status    Status    `db:"status"`
	IsActive  bool      `db:"is_active"`
	UpdatedAt time.Time `db:"updated_at"`
	Source    string    `db:"source"`
}

// MediaItem is the metadata of a track as reported by the media session.
// Source is the identity of the app that played it.
type MediaItem struct {
	ID       string `db:"id"`
	Title    string `db:"title"`
	Subtitle string `db:"subtitle"`
	Album    string `db:"album"`
	Category string `db:"category"`
	Duration int    `db:"duration"`
	Source   string `db:"source"`
}

// FullPlaybackEntry reflects a single PlaybackEntry with MediaItem metadata attached
type FullPlaybackEntry struct {
	// MediaItem fields
	ID       string `db:"id" json:"id"`
	Title    string `db:"title" json:"title"`
	Subtitle string `db:"subtitle" json:"subtitle"`
	Album    string `db:"album" json:"album"`
	Category string `db:"category" json:"category"`
	Duration int    `db:"duration" json:"duration_ms"`
	Source   string `db:"source" json:"source"`

	// PlaybackEntry fields
	PlaybackID int       `db:"playback_id" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	Elapsed    int       `db:"elapsed" json:"elapsed_ms"`
	Status     Status    `db:"status" json:"status"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type Update struct {
	MediaItem MediaItem
	Elapsed   time.Duration
	Status    Status
}

// UpdateFromSnapshot converts a bridge snapshot into a history update. It
// returns false for the idle snapshot, which has nothing to record.
func UpdateFromSnapshot(snapshot bridge.TrackSnapshot) (Update, bool) {
	if snapshot.Idle() {
		return Update{}, false
	}
	status := StatusPaused
	if snapshot.IsPlaying {
		status = StatusPlaying
	}
	return Update{
		MediaItem: MediaItem{
			Title:    deref(snapshot.Name),
			Subtitle: deref(snapshot.Artist),
			Album:    deref(snapshot.Album),
			Category: shared.CATEGORY_TRACK,
			Duration: int(snapshot.DurationMS),
			Source:   deref(snapshot.AppName),
		},
		Elapsed: time.Duration(snapshot.ProgressMS) * time.Millisecond,
		Status:  status,
	}, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GenerateMediaID is deterministic so the same track from the same app always
// maps onto one media item.
func GenerateMediaID(p *Update) string {
	hashString := fmt.Sprintf("%s-%s-%s-%s-%d-%s",
		p.MediaItem.Title,
		p.MediaItem.Subtitle,
		p.MediaItem.Album,
		p.MediaItem.Category,
		p.MediaItem.Duration,
		p.MediaItem.Source,
	)
	return fmt.Sprintf(
		"%s:%s:%d",
		p.MediaItem.Source,
		p.MediaItem.Category,
		xxhash.Sum64String(hashString),
	)
}
