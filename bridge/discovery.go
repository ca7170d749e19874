package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Discover asks the session manager for the current session within timeout.
// A nil Session and nil error is the idle state, not a failure.
func Discover(ctx context.Context, manager SessionManager, timeout time.Duration) (Session, error) {
	session, err := WithTimeout(ctx, "session_manager", timeout, manager.CurrentSession)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			slog.Error("Timeout while getting media session", slog.Any("error", err))
			return nil, err
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		slog.Error("Error getting media session", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}
	if session == nil {
		slog.Debug("No active media session found")
		return nil, nil
	}
	return session, nil
}
