package mpris

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/marcus-crane/mediabridge/bridge"
)

// Manager finds the current MPRIS player on the session bus. MPRIS has no
// notion of a "current" session, so the first playing player wins, then the
// first paused one, then whatever is left.
type Manager struct {
	caller  Caller
	conn    *dbus.Conn
	allowed []string
}

var _ bridge.SessionManager = (*Manager)(nil)

// Connect opens a private connection to the session bus.
func Connect(allowedApps []string) (*Manager, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	m := NewManager(busCaller{conn: conn}, allowedApps)
	m.conn = conn
	return m, nil
}

// NewManager builds a manager on top of an existing caller. allowedApps is a
// list of case-insensitive substrings; an empty list allows every player.
func NewManager(caller Caller, allowedApps []string) *Manager {
	var allowed []string
	for _, app := range allowedApps {
		app = strings.ToLower(strings.TrimSpace(app))
		if app != "" {
			allowed = append(allowed, app)
		}
	}
	return &Manager{caller: caller, allowed: allowed}
}

func (m *Manager) Close() error {
	if m.conn == nil {
		return nil
	}
	return m.conn.Close()
}

func (m *Manager) CurrentSession(ctx context.Context) (bridge.Session, error) {
	names, err := m.playerNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	var best *Session
	bestRank := 3
	for _, name := range names {
		s := &Session{caller: m.caller, busName: name}
		status, err := s.PlaybackStatus(ctx)
		if err != nil {
			slog.Debug("Skipping unreadable player",
				slog.String("bus_name", name),
				slog.Any("error", err))
			continue
		}
		if r := rank(status); r < bestRank {
			best, bestRank = s, r
		}
	}
	if best == nil {
		return nil, nil
	}
	return best, nil
}

func (m *Manager) playerNames(ctx context.Context) ([]string, error) {
	body, err := m.caller.Call(ctx, dbusName, dbusPath, listNames)
	if err != nil {
		return nil, fmt.Errorf("failed to list bus names: %w", err)
	}
	if len(body) == 0 {
		return nil, nil
	}
	all, ok := body[0].([]string)
	if !ok {
		return nil, fmt.Errorf("unexpected ListNames reply %T", body[0])
	}

	var names []string
	for _, name := range all {
		if !strings.HasPrefix(name, busNamePrefix) {
			continue
		}
		if !m.isAllowed(identity(name)) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (m *Manager) isAllowed(id string) bool {
	if len(m.allowed) == 0 {
		return true
	}
	id = strings.ToLower(id)
	for _, app := range m.allowed {
		if strings.Contains(id, app) {
			return true
		}
	}
	return false
}

func rank(status bridge.Status) int {
	switch status {
	case bridge.StatusPlaying:
		return 0
	case bridge.StatusPaused:
		return 1
	default:
		return 2
	}
}
