package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/marcus-crane/mediabridge/bridge"
	"github.com/marcus-crane/mediabridge/config"
	"github.com/marcus-crane/mediabridge/playback"
)

type trackSource interface {
	CurrentTrack(ctx context.Context) (bridge.TrackSnapshot, error)
}

// RecordCurrentTrack polls the active session once and stores the result in
// the playback history. Failures are logged and skipped; the next tick tries again.
func RecordCurrentTrack(ctx context.Context, source trackSource, ps playback.System) {
	snapshot, err := source.CurrentTrack(ctx)
	if err != nil {
		if errors.Is(err, bridge.ErrTimeout) {
			slog.Warn("Media session did not respond in time, skipping history update", slog.Any("error", err))
			return
		}
		slog.Error("Failed to read current track for history", slog.Any("error", err))
		return
	}

	update, ok := playback.UpdateFromSnapshot(snapshot)
	if !ok {
		if err := ps.DeactivateAll(); err != nil {
			slog.Error("Failed to deactivate playback entries", slog.Any("error", err))
		}
		return
	}

	if err := ps.UpdatePlaybackState(update); err != nil {
		slog.With(slog.String("app_name", update.MediaItem.Source)).
			Error("Failed to update playback state", slog.Any("error", err))
	}
}

func SetupInBackground(ctx context.Context, cfg config.Config, source trackSource, ps playback.System) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	// A slow media session must not stack up overlapping polls
	s.SingletonModeAll()

	_, err := s.Every(cfg.History.PollInterval()).Do(RecordCurrentTrack, ctx, source, ps)
	if err != nil {
		return nil, err
	}

	// If we're restarted, we'll populate the latest state
	if err := ps.RefreshCurrentPlayback(); err != nil {
		slog.Warn("Failed to load active playback", slog.Any("error", err))
	}

	slog.Info("History recorder scheduled", slog.Duration("interval", cfg.History.PollInterval()))

	return s, nil
}
