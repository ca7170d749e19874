package bridge

import (
	"context"
	"log/slog"
	"time"
)

// Timeouts are independent budgets, one per downstream call.
type Timeouts struct {
	Session  time.Duration
	Metadata time.Duration
	Control  time.Duration
}

// Service ties discovery, identity tracking, snapshots and control together
// for the HTTP handlers and the history recorder.
type Service struct {
	manager  SessionManager
	tracker  *Tracker
	timeouts Timeouts
}

func NewService(manager SessionManager, tracker *Tracker, timeouts Timeouts) *Service {
	return &Service{
		manager:  manager,
		tracker:  tracker,
		timeouts: timeouts,
	}
}

func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// CurrentTrack returns a snapshot of the active session, or the zero snapshot
// when nothing is playing.
func (s *Service) CurrentTrack(ctx context.Context) (TrackSnapshot, error) {
	session, err := Discover(ctx, s.manager, s.timeouts.Session)
	if err != nil {
		return TrackSnapshot{}, err
	}
	if session == nil {
		s.tracker.Observe("", false)
		return TrackSnapshot{}, nil
	}

	snapshot, err := BuildSnapshot(ctx, session, s.timeouts.Metadata)
	if err != nil {
		return TrackSnapshot{}, err
	}

	if s.tracker.Observe(session.ID(), true) {
		slog.Info("Active media session changed", slog.String("app_name", session.ID()))
	}
	return snapshot, nil
}

func (s *Service) SetPlaying(ctx context.Context, desired bool) (ControlOutcome, error) {
	session, err := Discover(ctx, s.manager, s.timeouts.Session)
	if err != nil {
		return ControlOutcome{Requested: desired}, err
	}
	return SetPlaying(ctx, session, desired, s.timeouts.Control)
}

func (s *Service) Skip(ctx context.Context, direction Direction) error {
	session, err := Discover(ctx, s.manager, s.timeouts.Session)
	if err != nil {
		return err
	}
	return Skip(ctx, session, direction, s.timeouts.Control)
}
