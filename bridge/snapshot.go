package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
)

// TrackSnapshot is a point-in-time read of what a session is playing. The zero
// value means nothing is playing and serialises with nulls, zeroes and false.
type TrackSnapshot struct {
	Name       *string `json:"name"`
	Artist     *string `json:"artist"`
	Album      *string `json:"album"`
	AppName    *string `json:"app_name"`
	IsPlaying  bool    `json:"is_playing"`
	DurationMS int64   `json:"duration_ms"`
	ProgressMS int64   `json:"progress_ms"`
	// TODO: Extract the session thumbnail stream and serve it from /static
	ImageURL *string `json:"image_url"`
}

// Idle reports whether the snapshot describes the "nothing playing" state.
func (ts TrackSnapshot) Idle() bool {
	return ts.AppName == nil
}

// BuildSnapshot reads metadata, playback status and timeline from session and
// normalises them. Only the metadata fetch can fail the snapshot; timeline
// problems degrade to zero durations.
func BuildSnapshot(ctx context.Context, session Session, timeout time.Duration) (TrackSnapshot, error) {
	props, err := WithTimeout(ctx, "media_properties", timeout, session.MediaProperties)
	if err != nil {
		return TrackSnapshot{}, metadataError(err)
	}

	status, err := WithTimeout(ctx, "playback_info", timeout, session.PlaybackStatus)
	if err != nil {
		return TrackSnapshot{}, metadataError(err)
	}

	timeline, err := WithTimeout(ctx, "timeline_properties", timeout, session.Timeline)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return TrackSnapshot{}, err
		}
		slog.Warn("Failed to read timeline properties, reporting zero progress",
			slog.String("app_name", session.ID()),
			slog.Any("error", err))
		timeline = Timeline{}
	}

	appName := session.ID()
	snapshot := TrackSnapshot{
		Name:       &props.Title,
		Artist:     &props.Artist,
		Album:      &props.Album,
		AppName:    &appName,
		IsPlaying:  status == StatusPlaying,
		DurationMS: Millis(timeline.EndTime),
		ProgressMS: Millis(timeline.Position),
	}

	slog.Info("Fetched track info",
		slog.String("name", props.Title),
		slog.String("artist", props.Artist),
		slog.String("app_name", appName),
		slog.Bool("is_playing", snapshot.IsPlaying),
		slog.Int64("progress_ms", snapshot.ProgressMS),
		slog.Int64("duration_ms", snapshot.DurationMS))

	return snapshot, nil
}

func metadataError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, ErrTimeout) {
		slog.Error("Timeout while getting media properties", slog.Any("error", err))
	} else {
		slog.Error("Error getting media properties", slog.Any("error", err))
	}
	return fmt.Errorf("%w: %w", ErrMetadata, err)
}

// Millis converts a raw timeline value to whole milliseconds. It accepts
// durations and MPRIS microsecond counts; anything else, including nil and
// negative values, converts to 0.
func Millis(v any) int64 {
	switch t := v.(type) {
	case time.Duration:
		return durationMillis(t)
	case *time.Duration:
		if t == nil {
			return 0
		}
		return durationMillis(*t)
	case types.Microseconds:
		return microsecondMillis(int64(t))
	case *types.Microseconds:
		if t == nil {
			return 0
		}
		return microsecondMillis(int64(*t))
	default:
		return 0
	}
}

func durationMillis(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return d.Milliseconds()
}

func microsecondMillis(us int64) int64 {
	if us <= 0 || us == math.MaxInt64 {
		return 0
	}
	return us / 1000
}
