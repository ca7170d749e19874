package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ControlOutcome describes the result of a play/pause request after the
// session was re-read. A false Success is reported to callers as data.
type ControlOutcome struct {
	Requested bool
	Observed  bool
	Success   bool
}

// SetPlaying asks session to play or pause and then checks that it did.
// Mismatches are not retried. The command is always sent, even when the
// session already looks to be in the desired state.
func SetPlaying(ctx context.Context, session Session, desired bool, budget time.Duration) (ControlOutcome, error) {
	if session == nil {
		return ControlOutcome{Requested: desired}, ErrNoActiveSession
	}
	log := slog.With(slog.String("app_name", session.ID()), slog.Bool("is_playing", desired))

	command, op := session.Pause, "pause"
	if desired {
		command, op = session.Play, "play"
	}
	log.Info("Received playback state update")
	if err := withTimeoutErr(ctx, op, budget, command); err != nil {
		log.Error("Error during playback state change", slog.Any("error", err))
		return ControlOutcome{Requested: desired}, controlError(err)
	}

	after, err := WithTimeout(ctx, "playback_info", budget, session.PlaybackStatus)
	if err != nil {
		return ControlOutcome{Requested: desired}, controlError(err)
	}
	observed := after == StatusPlaying
	outcome := ControlOutcome{Requested: desired, Observed: observed, Success: observed == desired}
	if !outcome.Success {
		log.Warn("State verification failed", slog.Bool("observed", observed))
	}
	return outcome, nil
}

// Skip moves the session to the next or previous track. There is nothing
// simple to verify afterwards so success means the command returned cleanly.
func Skip(ctx context.Context, session Session, direction Direction, budget time.Duration) error {
	if session == nil {
		return ErrNoActiveSession
	}
	var command func(context.Context) error
	switch direction {
	case DirectionNext:
		command = session.SkipNext
	case DirectionPrevious:
		command = session.SkipPrevious
	default:
		return fmt.Errorf("%w: unknown skip direction %q", ErrControl, direction)
	}

	log := slog.With(slog.String("app_name", session.ID()), slog.String("direction", string(direction)))
	if err := withTimeoutErr(ctx, "skip_"+string(direction), budget, command); err != nil {
		log.Error("Error skipping track", slog.Any("error", err))
		return controlError(err)
	}
	log.Info("Skipped track")
	return nil
}

func controlError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrControl, err)
}
