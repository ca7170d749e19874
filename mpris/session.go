package mpris

import (
	"context"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/marcus-crane/mediabridge/bridge"
)

// Session is one MPRIS player on the session bus, addressed by bus name.
type Session struct {
	caller  Caller
	busName string
}

var _ bridge.Session = (*Session)(nil)

// ID returns the player's bus name without the MPRIS prefix or any
// ".instanceNNN" suffix, so restarts of the same app keep one identity.
func (s *Session) ID() string {
	return identity(s.busName)
}

func identity(busName string) string {
	id := strings.TrimPrefix(busName, busNamePrefix)
	if idx := strings.Index(id, instanceMarker); idx > 0 {
		id = id[:idx]
	}
	return id
}

func (s *Session) PlaybackStatus(ctx context.Context) (bridge.Status, error) {
	v, err := getProperty(ctx, s.caller, s.busName, "PlaybackStatus")
	if err != nil {
		return bridge.StatusOther, err
	}
	raw, _ := v.Value().(string)
	switch types.PlaybackStatus(raw) {
	case types.PlaybackStatusPlaying:
		return bridge.StatusPlaying, nil
	case types.PlaybackStatusPaused:
		return bridge.StatusPaused, nil
	case types.PlaybackStatusStopped:
		return bridge.StatusStopped, nil
	default:
		return bridge.StatusOther, nil
	}
}

func (s *Session) metadata(ctx context.Context) (map[string]dbus.Variant, error) {
	v, err := getProperty(ctx, s.caller, s.busName, "Metadata")
	if err != nil {
		return nil, err
	}
	md, ok := v.Value().(map[string]dbus.Variant)
	if !ok && v.Value() != nil {
		return nil, fmt.Errorf("unexpected metadata type %T from %s", v.Value(), s.busName)
	}
	return md, nil
}

func (s *Session) MediaProperties(ctx context.Context) (bridge.MediaProperties, error) {
	md, err := s.metadata(ctx)
	if err != nil {
		return bridge.MediaProperties{}, err
	}
	return bridge.MediaProperties{
		Title:     stringValue(md["xesam:title"]),
		Artist:    artistValue(md["xesam:artist"]),
		Album:     stringValue(md["xesam:album"]),
		Thumbnail: stringValue(md["mpris:artUrl"]),
	}, nil
}

// Timeline reads mpris:length and Position. Both are reported in
// microseconds; values of any other shape are passed through untouched.
func (s *Session) Timeline(ctx context.Context) (bridge.Timeline, error) {
	md, err := s.metadata(ctx)
	if err != nil {
		return bridge.Timeline{}, err
	}
	var timeline bridge.Timeline
	if length, ok := md["mpris:length"]; ok {
		timeline.EndTime = microseconds(length.Value())
	}
	// Not every player implements Position, which is fine
	if pos, err := getProperty(ctx, s.caller, s.busName, "Position"); err == nil {
		timeline.Position = microseconds(pos.Value())
	}
	return timeline, nil
}

func (s *Session) command(ctx context.Context, method string) error {
	_, err := s.caller.Call(ctx, s.busName, playerPath, playerIface+"."+method)
	return err
}

func (s *Session) Play(ctx context.Context) error         { return s.command(ctx, "Play") }
func (s *Session) Pause(ctx context.Context) error        { return s.command(ctx, "Pause") }
func (s *Session) SkipNext(ctx context.Context) error     { return s.command(ctx, "Next") }
func (s *Session) SkipPrevious(ctx context.Context) error { return s.command(ctx, "Previous") }

func stringValue(v dbus.Variant) string {
	s, _ := v.Value().(string)
	return s
}

func artistValue(v dbus.Variant) string {
	switch a := v.Value().(type) {
	case []string:
		return strings.Join(a, ", ")
	case string:
		return a
	}
	return ""
}

func microseconds(v any) any {
	switch n := v.(type) {
	case int64:
		return types.Microseconds(n)
	case uint64:
		if n > 1<<63-1 {
			return nil
		}
		return types.Microseconds(int64(n))
	case int32:
		return types.Microseconds(int64(n))
	case uint32:
		return types.Microseconds(int64(n))
	case float64:
		return types.Microseconds(int64(n))
	}
	return v
}
